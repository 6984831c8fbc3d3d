package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_BASE_URL points to a running server, the suite is skipped when empty
	BaseURL    string `envconfig:"E2E_BASE_URL"`
	UserHeader string `envconfig:"E2E_USER_HEADER" default:"User"`
	Broadcast  string `envconfig:"E2E_BROADCAST" default:"Todos"`
	// E2E_DEBUG_JSON dumps response bodies
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
