// Package config loads service settings from the environment, optionally
// overlaid by a YAML file named in CONFIG_FILE.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/NREL/CoolerChips/internal/validation"
)

type Config struct {
	ListenAddr  string        `yaml:"listen_addr" validate:"required"`
	LogLevel    string        `yaml:"log_level" validate:"omitempty,oneof=debug info warn warning error DEBUG INFO WARN WARNING ERROR"`
	CyclePolicy string        `yaml:"cycle_policy" validate:"omitempty,oneof=reject break"`
	CacheTTL    time.Duration `yaml:"cache_ttl" validate:"gte=0"`
	CORSOrigins []string      `yaml:"cors_origins"`

	Mongo MongoConfig `yaml:"mongo"`
	Redis RedisConfig `yaml:"redis"`
	Neo4j Neo4jConfig `yaml:"neo4j"`
	Auth  AuthConfig  `yaml:"auth"`
}

type MongoConfig struct {
	URI      string `yaml:"uri" validate:"required"`
	Database string `yaml:"database" validate:"required"`
}

type RedisConfig struct {
	Addr string `yaml:"addr" validate:"required"`
}

// Neo4jConfig is optional; an empty URI disables the topology mirror.
type Neo4jConfig struct {
	URI      string `yaml:"uri"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type AuthConfig struct {
	JWTSecret       string        `yaml:"jwt_secret" validate:"required,min=8"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl" validate:"gt=0"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl" validate:"gt=0"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		ListenAddr:  ":8080",
		LogLevel:    "info",
		CyclePolicy: "reject",
		CacheTTL:    10 * time.Minute,
		Mongo: MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "rbd",
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Auth: AuthConfig{
			JWTSecret:       "change-me-in-production",
			AccessTokenTTL:  15 * time.Hour,
			RefreshTokenTTL: 24 * time.Hour,
		},
	}
}

// Load builds the configuration: defaults, then the YAML file if CONFIG_FILE
// is set, then individual environment variables.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	cfg := Default()

	if path := getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, getenv); err != nil {
		return Config{}, err
	}
	if err := validation.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v := getenv(key)
		if v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
		return nil
	}

	str("LISTEN_ADDR", &cfg.ListenAddr)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("CYCLE_POLICY", &cfg.CyclePolicy)
	str("MONGO_URI", &cfg.Mongo.URI)
	str("MONGO_DB", &cfg.Mongo.Database)
	str("REDIS_URI", &cfg.Redis.Addr)
	str("NEO4J_URI", &cfg.Neo4j.URI)
	str("NEO4J_USER", &cfg.Neo4j.Username)
	str("NEO4J_PASSWORD", &cfg.Neo4j.Password)
	str("JWT_SECRET", &cfg.Auth.JWTSecret)

	if v := getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	if err := dur("CACHE_TTL", &cfg.CacheTTL); err != nil {
		return err
	}
	if err := dur("ACCESS_TOKEN_TTL", &cfg.Auth.AccessTokenTTL); err != nil {
		return err
	}
	return dur("REFRESH_TOKEN_TTL", &cfg.Auth.RefreshTokenTTL)
}
