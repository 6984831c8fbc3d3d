package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	PresenceBackendBadger = "badger"
	PresenceBackendRedis  = "redis"
)

type Config struct {
	Host       string `env:"HOST,default=0.0.0.0"`
	Port       int    `env:"PORT,default=5000" validate:"gt=0,lt=65536"`
	HealthPort int    `env:"HEALTH_PORT,default=5001" validate:"gt=0,lt=65536,nefield=Port"`
	LogLevel   string `env:"LOG_LEVEL,default=INFO"`

	BadgerFilepath  string `env:"BADGER_FILEPATH,required=true" validate:"required"`
	PresenceBackend string `env:"PRESENCE_BACKEND,default=badger" validate:"oneof=badger redis"`
	RedisAddr       string `env:"REDIS_ADDR" validate:"required_if=PresenceBackend redis"`

	KafkaBrokers string `env:"KAFKA_BROKERS"`
	KafkaTopic   string `env:"KAFKA_TOPIC,default=chat-events"`

	BroadcastTarget string `env:"BROADCAST_TARGET,default=Todos" validate:"required,alphanum"`
	UserHeader      string `env:"USER_HEADER,default=User" validate:"required"`

	PresenceInterval time.Duration `env:"PRESENCE_INTERVAL,default=15s" validate:"gt=0"`
	PresenceTTL      time.Duration `env:"PRESENCE_TTL,default=10s" validate:"gt=0"`
	RestartInterval  time.Duration `env:"RESTART_INTERVAL,default=200ms" validate:"gt=0"`
	SinkTimeout      time.Duration `env:"SINK_TIMEOUT,default=2s" validate:"gt=0"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT,default=5s" validate:"gt=0"`
	EventBufferSize  int           `env:"EVENT_BUFFER_SIZE,default=256" validate:"gt=0"`
	TimelineSize     int           `env:"TIMELINE_SIZE,default=100" validate:"gt=0"`

	ModerationEnabled bool   `env:"MODERATION_ENABLED,default=false"`
	CharReplacement   string `env:"CHARACTER_REPLACEMENT,default=*"`
}

var validate = validator.New()

// Validate checks the loaded configuration and returns a warning when the
// sweep interval lets participants outlive their TTL by more than one period.
func (c Config) Validate() (warnings []string, err error) {
	if err := validate.Struct(c); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := CharacterRune(c.CharReplacement); err != nil {
		return nil, err
	}
	if c.PresenceInterval >= c.PresenceTTL {
		warnings = append(warnings, fmt.Sprintf(
			"PRESENCE_INTERVAL (%s) is not below PRESENCE_TTL (%s), inactive participants may linger",
			c.PresenceInterval, c.PresenceTTL))
	}
	return warnings, nil
}

// Brokers splits the comma separated KAFKA_BROKERS, empty when Kafka is disabled.
func (c Config) Brokers() []string {
	var brokers []string
	for _, broker := range strings.Split(c.KafkaBrokers, ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}
	return brokers
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
