package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"
)

// Client is the minimal key-value protocol the adapter needs.
type Client interface {
	// Get returns ok=false when the key does not exist.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Ping(ctx context.Context) error
	Close() error
}

// Dialer builds a Client for cfg. Tests replace it to simulate outages.
type Dialer func(ctx context.Context, cfg Config) (Client, error)

// Dial builds the client for cfg.Flavor.
func Dial(ctx context.Context, cfg Config) (Client, error) {
	switch cfg.flavor() {
	case FlavorRedis:
		return dialRedis(cfg)
	case FlavorSQLite:
		return dialSQLite(ctx, cfg)
	default:
		return nil, fmt.Errorf("kv: unknown flavor %q", cfg.Flavor)
	}
}

type redisClient struct {
	rdb *redis.Client
}

// dialRedis accepts redis:// and rediss:// URLs. The token is used as the
// password unless the URL already carries one.
func dialRedis(cfg Config) (Client, error) {
	opts, err := redis.ParseURL(normalizeRedisURL(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("kv: parse redis url: %w", err)
	}
	if opts.Password == "" {
		opts.Password = cfg.Token
	}
	return &redisClient{rdb: redis.NewClient(opts)}, nil
}

func normalizeRedisURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, "://") {
		return raw
	}
	return "redis://" + raw
}

func (c *redisClient) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (c *redisClient) Set(ctx context.Context, key string, value []byte) error {
	return c.rdb.Set(ctx, key, value, 0).Err()
}

func (c *redisClient) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *redisClient) Close() error {
	return c.rdb.Close()
}

const sqliteSchema = `CREATE TABLE IF NOT EXISTS kv (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

type sqliteClient struct {
	db *sql.DB
}

func dialSQLite(ctx context.Context, cfg Config) (Client, error) {
	dsn := strings.TrimPrefix(strings.TrimSpace(cfg.URL), "sqlite://")
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("kv: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("kv: create sqlite schema: %w", err)
	}
	return &sqliteClient{db: db}, nil
}

func (c *sqliteClient) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	err := c.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(value), true, nil
}

func (c *sqliteClient) Set(ctx context.Context, key string, value []byte) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(value))
	return err
}

func (c *sqliteClient) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *sqliteClient) Close() error {
	return c.db.Close()
}
