// Package backend builds the transaction store selected by configuration
// and wraps it with the local fallback.
package backend

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fintrack/internal/config"
)

// BackendType represents the type of backend
type BackendType string

const (
	RedisBackend  BackendType = "redis"
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
	LocalBackend  BackendType = "local"
)

func (bt BackendType) String() string { return string(bt) }

func (bt BackendType) IsValid() bool {
	switch bt {
	case RedisBackend, SQLiteBackend, MemoryBackend, LocalBackend:
		return true
	default:
		return false
	}
}

// Config holds configuration for backend creation
type Config struct {
	Type  BackendType
	AppID string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string

	LocalDataDir string

	// Now is the clock used for defaults such as today's date.
	Now func() time.Time
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(c *config.Config) (Config, error) {
	if c == nil {
		return Config{}, errors.New("app config is nil")
	}
	bt := BackendType(c.DataBackend)
	if !bt.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", c.DataBackend)
	}
	return Config{
		Type:          bt,
		AppID:         c.AppID,
		RedisAddr:     c.RedisAddr,
		RedisPassword: c.RedisPassword,
		RedisDB:       c.RedisDB,
		SQLiteDBPath:  c.SQLiteDBPath,
		AMQPURL:       c.AMQPURL,
		AMQPExchange:  c.AMQPExchange,
		LocalDataDir:  c.LocalDataDir,
		Now:           c.Now,
	}, nil
}

func (c Config) Validate() error {
	var problems []string
	if !c.Type.IsValid() {
		problems = append(problems, fmt.Sprintf("invalid backend type: %q (want one of %v)", c.Type, BackendTypes()))
	}
	if strings.TrimSpace(c.LocalDataDir) == "" {
		problems = append(problems, "local data directory is required for the local fallback")
	}
	switch c.Type {
	case RedisBackend:
		if c.RedisAddr == "" {
			problems = append(problems, "redis address is required for redis backend")
		}
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			problems = append(problems, "SQLite database path is required for sqlite backend")
		}
		if c.AMQPURL != "" && c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange is required when AMQP URL is set")
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("backend config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// BackendTypes returns all valid backend types
func BackendTypes() []BackendType {
	return []BackendType{RedisBackend, SQLiteBackend, MemoryBackend, LocalBackend}
}
