// Package kv provides the durable key-value backends that hold the
// session identity and the recipe mapping.
package kv

import (
	"context"
	"fmt"
	"strings"
)

// Store is a synchronous string-keyed store.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open picks a backend from a data source name:
//
//	""  or "memory"                 in-memory
//	postgres://... postgresql://...  PostgreSQL
//	sqlite://path, file:path, *.db   SQLite
func Open(ctx context.Context, dsn string) (Store, error) {
	dsn = strings.TrimSpace(dsn)
	switch {
	case dsn == "" || dsn == "memory":
		return NewMemoryStore(), nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return NewSQLStore(ctx, DriverPostgres, dsn)
	case strings.HasPrefix(dsn, "sqlite://"):
		return NewSQLStore(ctx, DriverSQLite, strings.TrimPrefix(dsn, "sqlite://"))
	case strings.HasPrefix(dsn, "file:"), strings.HasSuffix(dsn, ".db"), strings.HasSuffix(dsn, ".sqlite"):
		return NewSQLStore(ctx, DriverSQLite, dsn)
	default:
		return nil, fmt.Errorf("unsupported storage dsn %q", dsn)
	}
}
