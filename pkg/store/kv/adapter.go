package kv

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	content "github.com/goliatone/go-content"
)

// Adapter exposes a Connection as the store tier.
type Adapter struct {
	conn   *Connection
	logger *zap.Logger
}

// NewAdapter wraps conn. A nil logger keeps the no-op default.
func NewAdapter(conn *Connection, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{conn: conn, logger: logger.Named("kv")}
}

func (a *Adapter) Name() string { return content.SourceStore }

// Configured reports whether the connection has the settings it needs.
func (a *Adapter) Configured() bool {
	return a != nil && a.conn != nil && a.conn.Config().Configured()
}

// Connection returns the underlying connection.
func (a *Adapter) Connection() *Connection {
	return a.conn
}

// Get fetches the section key. Connection and protocol failures are
// reported as Absent.
func (a *Adapter) Get(ctx context.Context, section content.Section) content.Lookup {
	client, err := a.conn.Client(ctx)
	if err != nil {
		return content.AbsentLookup(err)
	}
	raw, ok, err := client.Get(ctx, section.StorageKey())
	if err != nil {
		a.logger.Debug("store get failed", zap.String("key", section.StorageKey()), zap.Error(err))
		return content.AbsentLookup(err)
	}
	if !ok {
		return content.AbsentLookup(nil)
	}
	doc, err := content.Decode(section, raw, content.WithSource("kv "+section.StorageKey()))
	if err != nil {
		return content.MalformedLookup(err)
	}
	return content.FoundLookup(doc)
}

// Set stores doc as JSON under the section key.
func (a *Adapter) Set(ctx context.Context, section content.Section, doc content.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("kv: encode %s: %w", section, err)
	}
	client, err := a.conn.Client(ctx)
	if err != nil {
		return err
	}
	if err := client.Set(ctx, section.StorageKey(), payload); err != nil {
		return fmt.Errorf("kv: set %s: %w", section.StorageKey(), err)
	}
	return nil
}
