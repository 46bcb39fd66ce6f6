package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the bot configuration, read from the environment.
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN,required,notEmpty"`
	// ApplicationID falls back to the bot user's ID when empty.
	ApplicationID string `env:"APPLICATION_ID"`
	GuildID       string `env:"GUILD_ID,required,notEmpty"`

	StoragePath    string `env:"STORAGE_PATH" envDefault:"datastore.json"`
	PluginManifest string `env:"PLUGIN_MANIFEST"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`

	MaxConcurrentHandlers int    `env:"MAX_CONCURRENT_HANDLERS" envDefault:"64"`
	QRServiceURL          string `env:"QR_SERVICE_URL" envDefault:"https://api.qrserver.com/v1/create-qr-code/"`
}

// Load reads the given dotenv files (".env" when none are given) into the process
// environment and parses it. Missing dotenv files are not an error; loaded reports
// whether any file was read.
func Load(files ...string) (cfg *Config, loaded bool, err error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		switch err := godotenv.Load(f); {
		case err == nil:
			loaded = true
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, false, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg, err = Parse()
	return cfg, loaded, err
}

// Parse builds a Config from the current environment only.
func Parse() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.MaxConcurrentHandlers < 1 {
		return nil, fmt.Errorf("MAX_CONCURRENT_HANDLERS must be positive, got %d", cfg.MaxConcurrentHandlers)
	}
	return &cfg, nil
}
