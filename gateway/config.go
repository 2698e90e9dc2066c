// Copyright 2025 DataPilot
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package gateway

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the gateway's runtime configuration.
// Values come from an optional YAML file (GATEWAY_CONFIG) overridden
// by environment variables.
type Config struct {
	// Port is the HTTP listen port
	Port string `yaml:"port"`

	// PoolSize / MaxOverflow bound each pooled engine handle
	PoolSize    int `yaml:"pool_size"`
	MaxOverflow int `yaml:"max_overflow"`

	// StatementTimeoutSeconds is the default per-statement deadline
	StatementTimeoutSeconds int `yaml:"statement_timeout_seconds"`

	// RedisAddr switches the metadata store to Redis when set
	// (host:port); empty keeps the in-process store
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	// AnthropicAPIKey enables the Claude-backed text generator; when
	// empty the deterministic fallback generator serves requests
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	AnthropicModel  string `yaml:"anthropic_model"`

	// ShutdownGraceSeconds bounds the drain of in-flight statements
	// at shutdown
	ShutdownGraceSeconds int `yaml:"shutdown_grace_seconds"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() Config {
	return Config{
		Port:                    "8080",
		PoolSize:                5,
		MaxOverflow:             10,
		StatementTimeoutSeconds: 30,
		ShutdownGraceSeconds:    15,
	}
}

// LoadConfig builds the effective configuration: defaults, then the
// YAML file named by GATEWAY_CONFIG (if any), then environment
// variables
func LoadConfig() (Config, error) {
	config := DefaultConfig()

	if path := os.Getenv("GATEWAY_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return config, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return config, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	config.Port = getEnv("PORT", config.Port)
	config.PoolSize = getEnvInt("POOL_SIZE", config.PoolSize)
	config.MaxOverflow = getEnvInt("MAX_OVERFLOW", config.MaxOverflow)
	config.StatementTimeoutSeconds = getEnvInt("STATEMENT_TIMEOUT_SECONDS", config.StatementTimeoutSeconds)
	config.RedisAddr = getEnv("REDIS_ADDR", config.RedisAddr)
	config.RedisPassword = getEnv("REDIS_PASSWORD", config.RedisPassword)
	config.RedisDB = getEnvInt("REDIS_DB", config.RedisDB)
	config.AnthropicAPIKey = getEnv("ANTHROPIC_API_KEY", config.AnthropicAPIKey)
	config.AnthropicModel = getEnv("ANTHROPIC_MODEL", config.AnthropicModel)
	config.ShutdownGraceSeconds = getEnvInt("SHUTDOWN_GRACE_SECONDS", config.ShutdownGraceSeconds)

	return config, nil
}

// StatementTimeout returns the per-statement deadline as a duration
func (c Config) StatementTimeout() time.Duration {
	return time.Duration(c.StatementTimeoutSeconds) * time.Second
}

// ShutdownGrace returns the shutdown drain bound as a duration
func (c Config) ShutdownGrace() time.Duration {
	return time.Duration(c.ShutdownGraceSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
