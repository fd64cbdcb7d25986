// Package store persists generated artifacts in a keyed document store.
package store

import (
	"context"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("document not found")

// DocumentStore is a minimal collection/document store. Save merges the
// top-level keys of patch into the document, creating it when missing.
type DocumentStore interface {
	Save(ctx context.Context, collection, document string, patch map[string]any) error
	Load(ctx context.Context, collection, document string) (map[string]any, error)
	Close(ctx context.Context) error
}

// Config selects and configures a store backend.
type Config struct {
	Driver        string
	MongoURI      string
	MongoDatabase string
	SQLDSN        string
}

const (
	DriverMemory = "memory"
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// New opens the backend named by cfg.Driver.
func New(ctx context.Context, cfg Config) (DocumentStore, error) {
	switch cfg.Driver {
	case "", DriverMemory:
		return NewMemoryStore(), nil
	case DriverMongo:
		return NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case DriverSQLite, DriverMySQL:
		return OpenSQLStore(cfg.Driver, cfg.SQLDSN)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
