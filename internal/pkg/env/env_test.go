package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnv(t *testing.T) {
	Env = map[string]string{"MQ_REALTIME_QUEUE": "tarot.res"}
	defer func() { Env = nil }()

	t.Setenv("APP_PORT", "8080")

	assert.Equal(t, "tarot.res", GetEnv("MQ_REALTIME_QUEUE", "realtime.res"))
	assert.Equal(t, "8080", GetEnv("APP_PORT", "4000"))
	assert.Equal(t, "fallback", GetEnv("NOT_SET", "fallback"))
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected int
	}{
		{"Valid", "5", 5},
		{"Unset", "", 3},
		{"Not a number", "many", 3},
		{"Zero", "0", 3},
		{"Negative", "-2", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Env = map[string]string{}
			if tt.value != "" {
				Env["MQ_CONSUMER_WORKERS"] = tt.value
			}
			defer func() { Env = nil }()

			assert.Equal(t, tt.expected, GetEnvInt("MQ_CONSUMER_WORKERS", 3))
		})
	}
}
