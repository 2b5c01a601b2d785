// Package config loads server settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
)

type Config struct {
	Addr            string
	TLSCert         string
	TLSKey          string
	TokenKey        string
	DatabaseURL     string
	StaticDir       string
	LogLevel        string
	LogFormat       string
	RateLimit       float64
	RateBurst       int
	ShutdownTimeout time.Duration
}

// Load reads files (".env" when none are given) without overriding variables
// already set, then builds a Config. A missing file is not an error.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: loading %s: %w", f, err)
		}
	}

	c := &Config{
		Addr:        env("ADDR", ":8080"),
		TLSCert:     os.Getenv("TLS_CERT"),
		TLSKey:      os.Getenv("TLS_KEY"),
		TokenKey:    os.Getenv("TOKEN_KEY"),
		DatabaseURL: env("DATABASE_URL", "user=postgres dbname=postgres password=password sslmode=disable"),
		StaticDir:   env("STATIC_DIR", "./static/main"),
		LogLevel:    env("LOG_LEVEL", "info"),
		LogFormat:   env("LOG_FORMAT", "text"),
	}
	if c.TokenKey == "" {
		return nil, errors.New("config: TOKEN_KEY environment variable is not set")
	}

	var err error
	if c.RateLimit, err = cast.ToFloat64E(env("RATE_LIMIT", "1")); err != nil || c.RateLimit <= 0 {
		return nil, fmt.Errorf("config: RATE_LIMIT must be a positive number, got %q", os.Getenv("RATE_LIMIT"))
	}
	if c.RateBurst, err = cast.ToIntE(env("RATE_BURST", "3")); err != nil || c.RateBurst < 1 {
		return nil, fmt.Errorf("config: RATE_BURST must be a positive integer, got %q", os.Getenv("RATE_BURST"))
	}
	if c.ShutdownTimeout, err = cast.ToDurationE(env("SHUTDOWN_TIMEOUT", "5s")); err != nil {
		return nil, fmt.Errorf("config: SHUTDOWN_TIMEOUT: %w", err)
	}
	return c, nil
}

// TLS reports whether both certificate and key are configured.
func (c *Config) TLS() bool {
	return c.TLSCert != "" && c.TLSKey != ""
}

// Logger builds the process logger from LogLevel and LogFormat.
func (c *Config) Logger() (*logrus.Logger, error) {
	log := logrus.New()
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("config: LOG_LEVEL: %w", err)
	}
	log.SetLevel(lvl)
	switch strings.ToLower(c.LogFormat) {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("config: unknown LOG_FORMAT %q", c.LogFormat)
	}
	return log, nil
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
