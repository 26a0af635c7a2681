package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/okian/mealmax/internal/adapters/repository/schema"
	"github.com/okian/mealmax/pkg/logger"
	"github.com/okian/mealmax/pkg/metrics"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// SQLiteStore implements Store on a single SQLite database file.
type SQLiteStore struct {
	db         *sql.DB
	schemaPath string
	logger     logger.Logger
}

var _ Store = (*SQLiteStore)(nil)

// Open opens the database at path, creating parent directories, and applies
// the create-table script.
func Open(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	s := &SQLiteStore{
		logger: logger.GetOrNop().Named("repository"),
	}
	for _, opt := range opts {
		opt(s)
	}

	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}

	dsn := cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	s.db = db

	script, err := s.schemaScript()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, script); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	s.logger.Info(ctx, "catalog store opened", logger.String("path", cleanPath))
	return s, nil
}

// Close closes the SQLite handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ClearMeals drops both tables and re-runs the create-table script.
func (s *SQLiteStore) ClearMeals(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { s.observe("clear_meals", start, err) }()

	if err = s.ready(ctx); err != nil {
		return err
	}

	script, err := s.schemaScript()
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin clear: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DROP TABLE IF EXISTS battles; DROP TABLE IF EXISTS meals;`); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	if _, err = tx.ExecContext(ctx, script); err != nil {
		return fmt.Errorf("recreate tables: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit clear: %w", err)
	}

	metrics.UpdateMealsTotal(0)
	s.logger.Info(ctx, "meals cleared")
	return nil
}

func (s *SQLiteStore) schemaScript() (string, error) {
	script := schema.CreateMealTable
	if s.schemaPath != "" {
		b, err := os.ReadFile(s.schemaPath)
		if err != nil {
			return "", fmt.Errorf("read schema %s: %w", s.schemaPath, err)
		}
		script = string(b)
	}
	if strings.TrimSpace(script) == "" {
		return "", ErrSchemaRequired
	}
	return script, nil
}

func (s *SQLiteStore) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return ErrNotConfigured
	}
	return nil
}

// observe records latency and outcome of a catalog operation.
func (s *SQLiteStore) observe(op string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		metrics.RecordErrorByComponent("repository", op)
	}
	metrics.RecordCatalogOperation(op, outcome, float64(time.Since(start).Milliseconds()))
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// sqlLimit maps 0 onto SQLite's "no limit".
func sqlLimit(limit int) (int, error) {
	if limit < 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	if limit == 0 {
		return -1, nil
	}
	return limit, nil
}
