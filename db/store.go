// Package db persists prediction records in a document store.
package db

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// EligibilityField is the record key holding the assigned label.
const EligibilityField = "Eligibility"

// Record is one stored prediction: the client's input fields plus the label.
type Record map[string]any

// Label returns the record's eligibility label, or "" when it has none.
func (r Record) Label() string {
	label, _ := r[EligibilityField].(string)
	return label
}

// Store is the document collection holding prediction records.
type Store interface {
	// Insert stores the record as given.
	Insert(ctx context.Context, record Record) error
	// History returns every record, most recently inserted first, without
	// storage identifiers.
	History(ctx context.Context) ([]Record, error)
	// Count returns the number of records with the given label, or all
	// records when label is empty.
	Count(ctx context.Context, label string) (int64, error)
	// DeleteAll removes every record and reports how many were removed.
	DeleteAll(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

const (
	TypeMongo  = "mongo"
	TypeSQLite = "sqlite"
)

// Options selects and configures a Store backend.
type Options struct {
	Type            string
	Timeout         time.Duration
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
	SQLitePath      string
}

// Open connects to the configured backend and verifies it is reachable.
func Open(ctx context.Context, opts Options, logger *zap.Logger) (Store, error) {
	switch opts.Type {
	case TypeMongo:
		return NewMongoStore(ctx, opts.MongoURI, opts.MongoDatabase, opts.MongoCollection, opts.Timeout, logger)
	case TypeSQLite:
		return NewSQLiteStore(ctx, opts.SQLitePath, opts.Timeout, logger)
	default:
		return nil, fmt.Errorf("unsupported store type %q", opts.Type)
	}
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// Stats summarizes the collection by eligibility label.
type Stats struct {
	Total      int64
	Eligible   int64
	Ineligible int64
}

// CollectStats counts records on every call; nothing is cached.
func CollectStats(ctx context.Context, store Store, eligibleLabel string) (Stats, error) {
	total, err := store.Count(ctx, "")
	if err != nil {
		return Stats{}, err
	}
	eligible, err := store.Count(ctx, eligibleLabel)
	if err != nil {
		return Stats{}, err
	}
	return Stats{Total: total, Eligible: eligible, Ineligible: total - eligible}, nil
}
