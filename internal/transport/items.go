package transport

import (
	"bytes"
	"encoding/json"
	"errors"
)

var ErrMalformed = errors.New("неверный формат запроса")

// ItemsPayload turns the `items` parameter into raw JSON. A JSON string holding
// a document is unwrapped once.
func ItemsPayload(raw json.RawMessage) json.RawMessage {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return json.RawMessage(bytes.TrimSpace([]byte(s)))
		}
	}
	return raw
}

// SplitArray requires a JSON array and returns its elements undecoded.
func SplitArray(raw json.RawMessage) ([]json.RawMessage, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, errors.Join(ErrMalformed, err)
	}
	return elems, nil
}

// DecodeQuantityUpdates keeps only elements with integer id and quantity > 0.
func DecodeQuantityUpdates(raw json.RawMessage) ([]QuantityUpdate, error) {
	elems, err := SplitArray(raw)
	if err != nil {
		return nil, err
	}
	out := make([]QuantityUpdate, 0, len(elems))
	for _, e := range elems {
		var u QuantityUpdate
		if err := json.Unmarshal(e, &u); err != nil {
			continue
		}
		if u.ID <= 0 || u.Quantity <= 0 {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}
