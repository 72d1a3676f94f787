package config

import (
	"log/slog"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	EnvFile    string     `env:"ENV_FILE"    envDefault:".env"`
	ConfigFile string     `env:"CONFIG_FILE" envDefault:"config.json"`
	LogLevel   slog.Level `env:"LOG_LEVEL"   envDefault:"INFO"`
}

func LoadConfig() (Config, error) {
	return env.ParseAs[Config]()
}
