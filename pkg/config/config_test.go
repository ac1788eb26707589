package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSV(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: nil},
		{name: "single", in: "kafka:9092", want: []string{"kafka:9092"}},
		{name: "trims and skips blanks", in: " a:1 , ,b:2,", want: []string{"a:1", "b:2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CSV(tt.in))
		})
	}
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("TEST_CFG_INT", "42")
	t.Setenv("TEST_CFG_BAD_INT", "forty")
	t.Setenv("TEST_CFG_DUR", "90s")
	t.Setenv("TEST_CFG_BOOL", "false")
	t.Setenv("TEST_CFG_FLOAT", "2.5")

	assert.Equal(t, 42, EnvIntDefault("TEST_CFG_INT", 1))
	assert.Equal(t, 1, EnvIntDefault("TEST_CFG_BAD_INT", 1))
	assert.Equal(t, 7, EnvIntDefault("TEST_CFG_MISSING", 7))
	assert.Equal(t, 90*time.Second, EnvDurationDefault("TEST_CFG_DUR", time.Minute))
	assert.Equal(t, time.Minute, EnvDurationDefault("TEST_CFG_MISSING", time.Minute))
	assert.False(t, EnvBoolDefault("TEST_CFG_BOOL", true))
	assert.Equal(t, 2.5, EnvFloatDefault("TEST_CFG_FLOAT", 1))
	assert.Equal(t, "def", EnvDefault("TEST_CFG_MISSING", "def"))
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("NOTIFY_DELAY", "")
	t.Setenv("JWT_SECRET", "secret")

	cfg := Load()

	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 5*time.Minute, cfg.NotifyDelay)
	assert.Equal(t, []byte("secret"), cfg.JWTAccessSecret)
	assert.Equal(t, "pgx", cfg.DatabaseDriver)
	assert.Equal(t, "order_notifications", cfg.NotifyTopic)
}
