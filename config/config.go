package config

import (
	"fmt"
	"strconv"
)

// Config holds all application configuration.
type Config struct {
	Port           int
	Workers        int
	MaxConnections int
	Env            string
}

// New returns the default configuration with environment overrides
// applied (C10K_PORT, C10K_WORKERS, C10K_MAX_CONNECTIONS, C10K_ENV).
func New() *Config {
	m := NewManager()
	m.LoadFromEnv("C10K")

	return &Config{
		Port:           m.GetInt("port", 8080),
		Workers:        m.GetInt("workers", 0), // 0 = one per CPU
		MaxConnections: m.GetInt("max.connections", 10000),
		Env:            m.GetString("env", "development"),
	}
}

// FromArgs applies the positional CLI contract `server [port [workers]]`
// on top of the defaults. A port outside (0, 65535] is an error; a worker
// count of 0 keeps the one-per-CPU default.
func FromArgs(args []string) (*Config, error) {
	cfg := New()

	if len(args) > 0 {
		port, err := strconv.Atoi(args[0])
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("invalid port: %q", args[0])
		}
		cfg.Port = port
	}

	if len(args) > 1 {
		workers, err := strconv.Atoi(args[1])
		if err != nil || workers < 0 {
			return nil, fmt.Errorf("invalid worker count: %q", args[1])
		}
		cfg.Workers = workers
	}

	return cfg, nil
}
