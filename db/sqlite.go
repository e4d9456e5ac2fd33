package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS predictions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    eligibility TEXT NOT NULL DEFAULT '',
    document TEXT NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_predictions_eligibility ON predictions(eligibility);
`

// SQLiteStore keeps each record as a JSON document. AUTOINCREMENT ids never
// repeat, so they order history even across bulk deletes.
type SQLiteStore struct {
	database *sql.DB
	timeout  time.Duration
	logger   *zap.Logger
}

func NewSQLiteStore(ctx context.Context, path string, timeout time.Duration, logger *zap.Logger) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	database, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite serializes writers; one connection avoids "database is locked"
	// and keeps :memory: databases shared.
	database.SetMaxOpenConns(1)

	initCtx, cancel := withTimeout(ctx, timeout)
	defer cancel()
	if _, err := database.ExecContext(initCtx, sqliteSchema); err != nil {
		database.Close()
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}

	logger.Info("sqlite store ready", zap.String("path", path))
	return &SQLiteStore{database: database, timeout: timeout, logger: logger}, nil
}

func (s *SQLiteStore) Insert(ctx context.Context, record Record) error {
	document, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode prediction: %w", err)
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	_, err = s.database.ExecContext(ctx,
		`INSERT INTO predictions (eligibility, document) VALUES (?, ?)`,
		record.Label(), string(document))
	if err != nil {
		return fmt.Errorf("insert prediction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) History(ctx context.Context) ([]Record, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.database.QueryContext(ctx, `SELECT document FROM predictions ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		var document string
		if err := rows.Scan(&document); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		record, err := DecodeRecord(strings.NewReader(document))
		if err != nil {
			return nil, fmt.Errorf("decode prediction: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate predictions: %w", err)
	}
	return records, nil
}

func (s *SQLiteStore) Count(ctx context.Context, label string) (int64, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	var n int64
	var err error
	if label == "" {
		err = s.database.QueryRowContext(ctx, `SELECT COUNT(*) FROM predictions`).Scan(&n)
	} else {
		err = s.database.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM predictions WHERE eligibility = ?`, label).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("count predictions: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) DeleteAll(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.database.ExecContext(ctx, `DELETE FROM predictions`)
	if err != nil {
		return 0, fmt.Errorf("delete predictions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete predictions: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	return s.database.PingContext(ctx)
}

func (s *SQLiteStore) Close(context.Context) error {
	return s.database.Close()
}
