package e2e

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
	// E2E_TIMEOUT_UNIT is how long one "timeout minute" lasts during the
	// scenario, compressed so inactivity teardown stays observable
	TimeoutUnit time.Duration `envconfig:"E2E_TIMEOUT_UNIT" default:"50ms"`
	// E2E_STEP_TIMEOUT bounds how long a single scenario step may take
	StepTimeout time.Duration `envconfig:"E2E_STEP_TIMEOUT" default:"5s"`
	// E2E_REDACTED_WORDS is the comma-separated censored word list
	RedactedWords string `envconfig:"E2E_REDACTED_WORDS" default:"classified"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
