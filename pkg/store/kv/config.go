// Package kv is the key-value content tier. It owns the process-wide store
// connection and exposes it as a content.Tier.
package kv

import (
	"fmt"
	"strings"
)

// Flavor selects the backing key-value implementation.
type Flavor string

const (
	// FlavorRedis speaks the Redis protocol. URL and token are both required.
	FlavorRedis Flavor = "redis"
	// FlavorSQLite keeps keys in a local SQLite table. Only the URL (a
	// database path or DSN) is required.
	FlavorSQLite Flavor = "sqlite"
)

// Config holds the store connection settings.
type Config struct {
	Flavor Flavor `mapstructure:"flavor" yaml:"flavor"`
	URL    string `mapstructure:"url" yaml:"url"`
	Token  string `mapstructure:"token" yaml:"token"`
}

// ParseFlavor maps configuration input onto a Flavor. Blank input selects
// FlavorRedis.
func ParseFlavor(raw string) (Flavor, error) {
	switch flavor := Flavor(strings.ToLower(strings.TrimSpace(raw))); flavor {
	case "":
		return FlavorRedis, nil
	case FlavorRedis, FlavorSQLite:
		return flavor, nil
	default:
		return "", fmt.Errorf("kv: unknown flavor %q", raw)
	}
}

func (c Config) flavor() Flavor {
	if c.Flavor == "" {
		return FlavorRedis
	}
	return c.Flavor
}

// Configured reports whether every setting the flavor needs is present. An
// unconfigured store is never dialled.
func (c Config) Configured() bool {
	if strings.TrimSpace(c.URL) == "" {
		return false
	}
	switch c.flavor() {
	case FlavorRedis:
		return strings.TrimSpace(c.Token) != ""
	case FlavorSQLite:
		return true
	default:
		return false
	}
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	if c.Token != "" {
		c.Token = "***"
	}
	return c
}
