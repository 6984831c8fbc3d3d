package internal

import (
	"testing"
	"time"

	"github.com/Netflix/go-env"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	req := require.New(t)
	var config Config

	t.Setenv("BADGER_FILEPATH", t.TempDir())
	_, err := env.UnmarshalFromEnviron(&config)
	req.NoError(err)

	req.Equal(5000, config.Port)
	req.Equal("Todos", config.BroadcastTarget)
	req.Equal("User", config.UserHeader)
	req.Equal(15*time.Second, config.PresenceInterval)
	req.Equal(10*time.Second, config.PresenceTTL)
	req.Empty(config.Brokers())

	// The reference timings sweep less often than the TTL, which deserves a warning
	warnings, err := config.Validate()
	req.NoError(err)
	req.Len(warnings, 1)
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{
		Port: 5000, HealthPort: 5001, BadgerFilepath: "/tmp/db", PresenceBackend: PresenceBackendBadger,
		BroadcastTarget: "Todos", UserHeader: "User",
		PresenceInterval: 5 * time.Second, PresenceTTL: 10 * time.Second, RestartInterval: time.Second,
		SinkTimeout: time.Second, ShutdownTimeout: time.Second, EventBufferSize: 1, TimelineSize: 1,
		CharReplacement: "*",
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		invalid bool
	}{
		{"valid", func(c *Config) {}, false},
		{"redis without address", func(c *Config) { c.PresenceBackend = PresenceBackendRedis }, true},
		{"redis with address", func(c *Config) {
			c.PresenceBackend = PresenceBackendRedis
			c.RedisAddr = "localhost:6379"
		}, false},
		{"unknown backend", func(c *Config) { c.PresenceBackend = "mongo" }, true},
		{"zero ttl", func(c *Config) { c.PresenceTTL = 0 }, true},
		{"same ports", func(c *Config) { c.HealthPort = c.Port }, true},
		{"broadcast target with space", func(c *Config) { c.BroadcastTarget = "To dos" }, true},
		{"replacement of two chars", func(c *Config) { c.CharReplacement = "**" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid
			tt.mutate(&config)
			warnings, err := config.Validate()
			if tt.invalid {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Empty(t, warnings)
		})
	}
}

func TestConfig_Brokers(t *testing.T) {
	config := Config{KafkaBrokers: " kafka1:9092, ,kafka2:9092"}
	require.Equal(t, []string{"kafka1:9092", "kafka2:9092"}, config.Brokers())
}
