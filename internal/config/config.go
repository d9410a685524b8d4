package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken  string  `envconfig:"BOT_TOKEN" required:"true"`
	DBPath    string  `envconfig:"DB_PATH" default:"./data/tenhens.db"`
	HTTPAddr  string  `envconfig:"HTTP_ADDR" default:":8080"` // web dashboard
	LogLevel  string  `envconfig:"LOG_LEVEL" default:"info"`  // debug|info|warn|error
	AdminIDs  []int64 `envconfig:"ADMIN_IDS"`                 // comma-separated telegram IDs
	DonateURL string  `envconfig:"DONATE_URL"`                // /donate payment link, optional
}

// Load reads an optional .env file, then environment variables into Config.
func Load() (Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
