package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Topic      string `envconfig:"E2E_TOPIC" default:"rtchat_v4_bc"`
	BufferSize int    `envconfig:"E2E_BUFFER_SIZE" default:"16"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
