// Package config loads daemon configuration from environment variables,
// optionally layered over a TOML file named by POOLD_CONFIG. Environment
// values win over file values; both win over defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds all daemon configuration.
type Config struct {
	Server  ServerConfig
	Pool    PoolConfig
	Backend BackendConfig
	Metrics MetricsConfig
	Log     LogConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	APIKey       string
	DrainTimeout time.Duration
}

type PoolConfig struct {
	MaxSize       int
	MinSize       int
	IdleTimeout   time.Duration
	ReapInterval  time.Duration
	RefreshIdle   bool
	ReturnToHead  bool
	PriorityRange int
}

type BackendConfig struct {
	Mode           string // "mysql", "valkey", "nats" or "websocket"
	MySQLDSN       string
	ValkeyAddr     string
	ValkeyPassword string
	ValkeyDB       int
	NATSURL        string
	WebSocketURL   string
}

type MetricsConfig struct {
	UpdateInterval time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// Load loads configuration with sensible defaults.
func Load() *Config {
	l := lookup{file: fileValues(os.Getenv("POOLD_CONFIG"))}

	return &Config{
		Server: ServerConfig{
			Host:         l.str("SERVER_HOST", "0.0.0.0"),
			Port:         l.integer("SERVER_PORT", 8080),
			ReadTimeout:  l.duration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: l.duration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			APIKey:       l.str("API_KEY", ""),
			DrainTimeout: l.duration("SHUTDOWN_DRAIN_TIMEOUT", 30*time.Second),
		},
		Pool: PoolConfig{
			MaxSize:       l.integer("POOL_MAX_SIZE", 1),
			MinSize:       l.integer("POOL_MIN_SIZE", 0),
			IdleTimeout:   l.duration("POOL_IDLE_TIMEOUT", 30*time.Second),
			ReapInterval:  l.duration("POOL_REAP_INTERVAL", time.Second),
			RefreshIdle:   l.boolean("POOL_REFRESH_IDLE", true),
			ReturnToHead:  l.boolean("POOL_RETURN_TO_HEAD", false),
			PriorityRange: l.integer("POOL_PRIORITY_RANGE", 10),
		},
		Backend: BackendConfig{
			Mode:           l.str("BACKEND_MODE", "valkey"),
			MySQLDSN:       l.str("MYSQL_DSN", "demo:devpass@tcp(localhost:3306)/pooldemo"),
			ValkeyAddr:     l.str("VALKEY_ADDR", "localhost:6379"),
			ValkeyPassword: l.str("VALKEY_PASSWORD", ""),
			ValkeyDB:       l.integer("VALKEY_DB", 0),
			NATSURL:        l.str("NATS_URL", "nats://localhost:4222"),
			WebSocketURL:   l.str("WS_URL", "ws://localhost:8081/ws"),
		},
		Metrics: MetricsConfig{
			UpdateInterval: l.duration("METRICS_UPDATE_INTERVAL", 5*time.Second),
		},
		Log: LogConfig{
			Level:  l.str("LOG_LEVEL", "info"),
			Format: l.str("LOG_FORMAT", "json"),
		},
	}
}

// fileValues reads a flat TOML file keyed like the environment, e.g.
//
//	POOL_MAX_SIZE = 20
//	BACKEND_MODE = "nats"
//
// A missing or unreadable file yields no overrides.
func fileValues(path string) map[string]string {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		out[k] = fmt.Sprint(v)
	}
	return out
}

// lookup resolves a key from the environment first, then the file layer.
type lookup struct {
	file map[string]string
}

func (l lookup) str(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	if value, ok := l.file[key]; ok && value != "" {
		return value
	}
	return defaultValue
}

func (l lookup) integer(key string, defaultValue int) int {
	if value := l.str(key, ""); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func (l lookup) boolean(key string, defaultValue bool) bool {
	if value := l.str(key, ""); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func (l lookup) duration(key string, defaultValue time.Duration) time.Duration {
	if value := l.str(key, ""); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
