package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

const (
	DefaultAuthEndpoint   = "https://pokedoro-backend.onrender.com/user/login"
	DefaultPostLoginRoute = "/user"

	StorageCookie = "cookie"
	StorageMongo  = "mongo"
)

// Config holds everything the login front reads from the environment.
type Config struct {
	Port           int
	AuthEndpoint   string
	AuthTimeout    time.Duration
	PostLoginRoute string

	SessionKey    string
	SessionSecure bool

	StorageBackend string
	MongoURI       string
	MongoDatabase  string

	AllowedOrigins []string
	LoginRate      float64
	LoginBurst     int

	LogLevel string
}

// Load reads the configuration from the process environment. A .env file in the
// working directory is picked up by godotenv before Load runs.
func Load() (*Config, error) {
	cfg := &Config{
		AuthEndpoint:   getEnv("AUTH_ENDPOINT", DefaultAuthEndpoint),
		PostLoginRoute: getEnv("POST_LOGIN_ROUTE", DefaultPostLoginRoute),
		SessionKey:     os.Getenv("SESSION_KEY"),
		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", StorageCookie)),
		MongoURI:       os.Getenv("MONGO_URI"),
		MongoDatabase:  getEnv("MONGO_DATABASE", "pokedoro"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.Port, err = strconv.Atoi(getEnv("PORT", "8080")); err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}
	if cfg.AuthTimeout, err = time.ParseDuration(getEnv("AUTH_TIMEOUT", "0s")); err != nil {
		return nil, fmt.Errorf("invalid AUTH_TIMEOUT: %w", err)
	}
	if cfg.SessionSecure, err = strconv.ParseBool(getEnv("SESSION_SECURE", "false")); err != nil {
		return nil, fmt.Errorf("invalid SESSION_SECURE: %w", err)
	}
	if cfg.LoginRate, err = strconv.ParseFloat(getEnv("LOGIN_RATE", "3"), 64); err != nil {
		return nil, fmt.Errorf("invalid LOGIN_RATE: %w", err)
	}
	if cfg.LoginBurst, err = strconv.Atoi(getEnv("LOGIN_BURST", "5")); err != nil {
		return nil, fmt.Errorf("invalid LOGIN_BURST: %w", err)
	}

	for _, origin := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.SessionKey == "" {
		return errors.New("SESSION_KEY is required")
	}
	if c.AuthEndpoint == "" {
		return errors.New("AUTH_ENDPOINT must not be empty")
	}
	if !strings.HasPrefix(c.PostLoginRoute, "/") {
		return fmt.Errorf("POST_LOGIN_ROUTE must be an absolute path, got %q", c.PostLoginRoute)
	}
	switch c.StorageBackend {
	case StorageCookie:
	case StorageMongo:
		if c.MongoURI == "" {
			return errors.New("MONGO_URI is required when STORAGE_BACKEND=mongo")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	if c.LoginRate <= 0 || c.LoginBurst <= 0 {
		return errors.New("LOGIN_RATE and LOGIN_BURST must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
