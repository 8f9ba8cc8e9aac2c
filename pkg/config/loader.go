package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// DefaultEnvFile is the dotenv file read by Load when present.
const DefaultEnvFile = ".env"

// Load parses environment variables into the provided struct, after loading
// DefaultEnvFile if it exists. Variables already set in the process
// environment take precedence over the file.
//
// Example:
//
//	type Config struct {
//	    Port     int    `env:"HTTP_PORT" envDefault:"8080"`
//	    LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
//	}
func Load(cfg any) error {
	return LoadFiles(cfg, DefaultEnvFile)
}

// LoadFiles is like Load but reads the given dotenv files instead. Missing
// files are skipped.
func LoadFiles(cfg any, files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load env file %s: %w", f, err)
		}
	}
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
