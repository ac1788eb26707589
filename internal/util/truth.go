package util

import (
	"fmt"
	"strings"
)

// ParseTruth understands the y/yes/t/true/on/1 and n/no/f/false/off/0 vocabulary,
// case-insensitively.
func ParseTruth(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "t", "true", "on", "1":
		return true, nil
	case "n", "no", "f", "false", "off", "0":
		return false, nil
	}
	return false, fmt.Errorf("Неверное значение состояния: %q", s)
}
