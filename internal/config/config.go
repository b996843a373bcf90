package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Server struct {
		Port            string `yaml:"port"`
		ReadTimeout     string `yaml:"read_timeout"`
		WriteTimeout    string `yaml:"write_timeout"`
		ShutdownTimeout string `yaml:"shutdown_timeout"`
		// AllowedOrigins feeds the CORS middleware; empty allows any origin.
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Storage struct {
		Driver string `yaml:"driver"`
		// SeedDemo fills the memory driver with a demo teacher and category.
		SeedDemo bool `yaml:"seed_demo"`
		Postgres struct {
			URL string `yaml:"url"`
		} `yaml:"postgres"`
		SQLite struct {
			Path string `yaml:"path"`
		} `yaml:"sqlite"`
	} `yaml:"storage"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Cache struct {
		CategoryTTL string `yaml:"category_ttl"`
	} `yaml:"cache"`
	Auth struct {
		JWTSecret  string `yaml:"jwt_secret"`
		SessionTTL string `yaml:"session_ttl"`
	} `yaml:"auth"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Load reads .env (if present), then the YAML file at path, then applies
// environment overrides. A missing YAML file leaves the defaults in place.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, err
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, err
			}
		}
	}
	applyEnv(&cfg)
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = DriverMemory
		if cfg.Storage.Postgres.URL != "" {
			cfg.Storage.Driver = DriverPostgres
		}
	}
	return cfg, nil
}

// Default is the configuration used when no file is present.
func Default() Config {
	var cfg Config
	cfg.Server.Port = "8080"
	cfg.Storage.SQLite.Path = "tietotesti.db"
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	return cfg
}

func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv("PORT"); ok && v != "" {
		cfg.Server.Port = v
	}
	if v, ok := os.LookupEnv("DATABASE_URL"); ok && v != "" {
		cfg.Storage.Postgres.URL = v
	}
	if v, ok := os.LookupEnv("STORAGE_DRIVER"); ok && v != "" {
		cfg.Storage.Driver = v
	}
	if v, ok := os.LookupEnv("REDIS_ADDR"); ok {
		cfg.Redis.Addr = v
	}
	if v, ok := os.LookupEnv("JWT_SECRET"); ok && v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v, ok := os.LookupEnv("LOG_LEVEL"); ok && v != "" {
		cfg.Log.Level = v
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
