package repofs

import (
	"github.com/gobeaver/beaver-kit/config"
)

type Config struct {
	// Location of the JSON credential file. Unset means each provider's
	// standard environment variables are consumed directly.
	CloudCredentialPath string `env:"REPOFS_CLOUD_CREDENTIAL_PATH"`
}

// GetConfig returns config loaded from environment
func GetConfig() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
