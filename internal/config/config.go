// Package config provides configuration for the gateway.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the gateway configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Remote agent settings
	AgentURL     string
	ProbeTimeout time.Duration // connectivity checks
	ChatTimeout  time.Duration // chat turns

	// Storage. Empty selects the in-memory store; any other value is a
	// sqlite DSN.
	DatabaseURL string

	// Frontend settings
	CORSOrigins []string
	Apps        []string

	// WebSocket settings
	PingInterval   time.Duration
	WriteTimeout   time.Duration
	ReadTimeout    time.Duration
	MaxMessageSize int64

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		HTTPPort:       getEnvInt("HTTP_PORT", 8000),
		AgentURL:       getEnv("REMOTE_AGENT_URL", "http://localhost:8080"),
		ProbeTimeout:   time.Duration(getEnvInt("AGENT_PROBE_TIMEOUT_MS", 10000)) * time.Millisecond,
		ChatTimeout:    time.Duration(getEnvInt("AGENT_CHAT_TIMEOUT_MS", 30000)) * time.Millisecond,
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		CORSOrigins:    getEnvList("CORS_ORIGINS", []string{"http://localhost:4200"}),
		Apps:           getEnvList("APP_NAMES", []string{"sample-app", "demo-agent", "test-application"}),
		PingInterval:   time.Duration(getEnvInt("WS_PING_INTERVAL_MS", 30000)) * time.Millisecond,
		WriteTimeout:   time.Duration(getEnvInt("WS_WRITE_TIMEOUT_MS", 10000)) * time.Millisecond,
		ReadTimeout:    time.Duration(getEnvInt("WS_READ_TIMEOUT_MS", 60000)) * time.Millisecond,
		MaxMessageSize: int64(getEnvInt("WS_MAX_MESSAGE_SIZE", 65536)),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvList(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	var out []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
