// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"PRESSROOM_DB_PATH" envDefault:"./data/pressroom.db"`
	ServerHost string `env:"PRESSROOM_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"PRESSROOM_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"PRESSROOM_ENV" envDefault:"development"`
	LogLevel   string `env:"PRESSROOM_LOG_LEVEL" envDefault:"info"`

	// Cache configuration
	RedisURL     string `env:"PRESSROOM_REDIS_URL"`                         // Optional Redis URL for distributed caching
	CachePrefix  string `env:"PRESSROOM_CACHE_PREFIX" envDefault:"pressroom:"` // Redis key prefix
	CacheTTL     int    `env:"PRESSROOM_CACHE_TTL" envDefault:"60"`         // Leaderboard/article cache TTL in seconds
	CacheMaxSize int    `env:"PRESSROOM_CACHE_MAX_SIZE" envDefault:"10000"` // Max memory cache entries

	// AI generation (optional; features degrade to pass-through when unset)
	OpenAIAPIKey string `env:"PRESSROOM_OPENAI_API_KEY"`
	OpenAIModel  string `env:"PRESSROOM_OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	// Quiz configuration
	BadgeRankThreshold int `env:"PRESSROOM_BADGE_RANK_THRESHOLD" envDefault:"10"` // "first N perfect scores" badge window
	AttemptTimeoutMS   int `env:"PRESSROOM_ATTEMPT_TIMEOUT_MS" envDefault:"5000"` // Attempt persistence deadline before degrading

	// Autosave configuration
	AutosaveIntervalSec int `env:"PRESSROOM_AUTOSAVE_INTERVAL" envDefault:"30"`

	// Legacy import (optional): MySQL DSN of a source CMS to pull articles from
	ImportMySQLDSN string `env:"PRESSROOM_IMPORT_MYSQL_DSN"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// AIEnabled returns true if AI-assisted generation is configured.
func (c Config) AIEnabled() bool {
	return c.OpenAIAPIKey != ""
}

// AttemptTimeout returns the attempt persistence deadline as a duration.
func (c Config) AttemptTimeout() time.Duration {
	return time.Duration(c.AttemptTimeoutMS) * time.Millisecond
}

// AutosaveInterval returns the autosave flush interval as a duration.
func (c Config) AutosaveInterval() time.Duration {
	return time.Duration(c.AutosaveIntervalSec) * time.Second
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.BadgeRankThreshold < 0 {
		return nil, fmt.Errorf("PRESSROOM_BADGE_RANK_THRESHOLD must not be negative, got %d", cfg.BadgeRankThreshold)
	}
	if cfg.AttemptTimeoutMS <= 0 {
		return nil, fmt.Errorf("PRESSROOM_ATTEMPT_TIMEOUT_MS must be positive, got %d", cfg.AttemptTimeoutMS)
	}

	return cfg, nil
}
