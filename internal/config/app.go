package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/lembremed/lembremed/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"LEMBREMED_RUNTIME_PATH" envDefault:".lembremed"`

	// Local user profile identity. Empty means signed out: memory and
	// preferences are skipped and medication writes are rejected.
	UserID string `env:"LEMBREMED_USER_ID"`

	// Transport flags
	EnableTelegram bool `env:"ENABLE_TELEGRAM" envDefault:"false"`
	EnableCLI      bool `env:"ENABLE_CLI" envDefault:"true"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "lembremed.db")
}

// GetRuntimePath resolves the runtime directory before the env-backed config
// is available (used for .env discovery).
func GetRuntimePath() string {
	path := os.Getenv("LEMBREMED_RUNTIME_PATH")
	if path == "" {
		path = ".lembremed"
	}

	if !filepath.IsAbs(path) {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path)
	}
	return path
}
