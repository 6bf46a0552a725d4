package kv

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrNotConfigured is returned when connecting without the settings the
// flavor requires.
var ErrNotConfigured = errors.New("kv: store not configured")

// State is the lifecycle stage of a Connection.
type State int

const (
	Disconnected State = iota
	Connecting
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "disconnected"
	}
}

// MarshalText renders the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// DefaultRetryBackoff is how long a Failed connection answers with its last
// error before dialing again.
const DefaultRetryBackoff = 5 * time.Second

// ConnectionOption configures a Connection.
type ConnectionOption func(*Connection)

// WithDialer replaces the flavor dialer.
func WithDialer(dial Dialer) ConnectionOption {
	return func(c *Connection) {
		if dial != nil {
			c.dial = dial
		}
	}
}

// WithRetryBackoff sets how long a Failed connection waits before redialing.
// Zero redials on every call.
func WithRetryBackoff(d time.Duration) ConnectionOption {
	return func(c *Connection) {
		if d >= 0 {
			c.backoff = d
		}
	}
}

// WithClock replaces time.Now for backoff decisions.
func WithClock(now func() time.Time) ConnectionOption {
	return func(c *Connection) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the connection logger.
func WithLogger(logger *zap.Logger) ConnectionOption {
	return func(c *Connection) {
		if logger != nil {
			c.logger = logger.Named("kv")
		}
	}
}

// Connection owns a single lazily established store client. A failed
// connect leaves the Connection in Failed; calls within the retry backoff
// return the last error and the first call after it redials.
type Connection struct {
	cfg     Config
	dial    Dialer
	logger  *zap.Logger
	backoff time.Duration
	now     func() time.Time

	mu       sync.Mutex
	state    State
	client   Client
	lastErr  error
	failedAt time.Time
}

// NewConnection returns a Disconnected connection for cfg.
func NewConnection(cfg Config, opts ...ConnectionOption) *Connection {
	c := &Connection{
		cfg:     cfg,
		dial:    Dial,
		logger:  zap.NewNop(),
		backoff: DefaultRetryBackoff,
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Config returns the connection settings.
func (c *Connection) Config() Config {
	return c.cfg
}

// State returns the current lifecycle stage.
func (c *Connection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the error that moved the connection into Failed.
func (c *Connection) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Connect dials and pings the store. It is a no-op when already Ready.
func (c *Connection) Connect(ctx context.Context) error {
	_, err := c.Client(ctx)
	return err
}

// Client returns the ready client, connecting first if needed.
func (c *Connection) Client(ctx context.Context) (Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Ready && c.client != nil {
		return c.client, nil
	}
	if !c.cfg.Configured() {
		return nil, ErrNotConfigured
	}
	if c.state == Failed && c.now().Sub(c.failedAt) < c.backoff {
		return nil, c.lastErr
	}

	c.state = Connecting
	client, err := c.dial(ctx, c.cfg)
	if err == nil {
		if pingErr := client.Ping(ctx); pingErr != nil {
			_ = client.Close()
			client, err = nil, pingErr
		}
	}
	if err != nil {
		c.state = Failed
		c.failedAt = c.now()
		c.lastErr = fmt.Errorf("kv: connect %s: %w", c.cfg.flavor(), err)
		c.logger.Warn("store connection failed",
			zap.String("flavor", string(c.cfg.flavor())),
			zap.Error(err),
		)
		return nil, c.lastErr
	}

	c.client = client
	c.state = Ready
	c.lastErr = nil
	c.logger.Info("store connected", zap.String("flavor", string(c.cfg.flavor())))
	return client, nil
}

// Close releases the client and returns to Disconnected.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var err error
	if c.client != nil {
		err = c.client.Close()
	}
	c.client = nil
	c.state = Disconnected
	c.lastErr = nil
	return err
}

var (
	sharedMu   sync.Mutex
	shared     *Connection
	sharedConf Config
)

// Shared returns the process-wide connection for cfg. A call with a
// different cfg closes the previous connection and replaces it.
func Shared(cfg Config, opts ...ConnectionOption) *Connection {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if shared != nil && sharedConf == cfg {
		return shared
	}
	if shared != nil {
		_ = shared.Close()
	}
	shared = NewConnection(cfg, opts...)
	sharedConf = cfg
	return shared
}

// ResetShared closes and forgets the process-wide connection.
func ResetShared() error {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if shared == nil {
		return nil
	}
	err := shared.Close()
	shared = nil
	sharedConf = Config{}
	return err
}
