package storage

import (
	"context"
	"time"
)

// KV is a durable key-value store holding opaque payloads.
type KV interface {
	// Get returns the value stored under key. The bool is false when the
	// key is absent; that is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// AuditEntry is one row of the audit log.
type AuditEntry struct {
	ID        int64
	Action    string
	RecipeID  string
	Detail    string
	SessionID string
	Timestamp time.Time
}

// Stats holds aggregate statistics about the database.
type Stats struct {
	TotalKeys         int64
	TotalAuditEntries int64
	LastWrite         time.Time
	DatabaseSizeBytes int64
	TopActions        []ActionCount
}

// ActionCount pairs an audit action with how often it was recorded.
type ActionCount struct {
	Action string
	Count  int64
}
