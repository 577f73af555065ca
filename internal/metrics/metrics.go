// Package metrics persists per-engine search outcomes to SQLite. Successes
// record the result count and response time, failures the error text.
package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite"

	"github.com/vk/searchengine/internal/ctxlog"
)

// Success is one successful engine query.
type Success struct {
	bun.BaseModel `bun:"table:success"`

	ID          int64   `bun:"id,pk,autoincrement"`
	Engine      string  `bun:"engine,notnull"`
	ResultCount int     `bun:"result_count,notnull"`
	Time        float64 `bun:"time,notnull"`
}

// Error is one failed engine query.
type Error struct {
	bun.BaseModel `bun:"table:error"`

	ID     int64  `bun:"id,pk,autoincrement"`
	Engine string `bun:"engine,notnull"`
	Error  string `bun:"error,notnull"`
}

// Store writes engine metrics to a SQLite database.
type Store struct {
	db *bun.DB
}

// Open connects to the SQLite database at dsn and creates the metric tables
// when missing. Use ":memory:" for an ephemeral store.
func Open(ctx context.Context, dsn string) (*Store, error) {
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening metrics database: %w", err)
	}

	db := bun.NewDB(sqlDB, sqlitedialect.New())
	s := &Store{db: db}

	for _, model := range []any{(*Success)(nil), (*Error)(nil)} {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("creating metrics tables: %w", err)
		}
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error { return s.db.Close() }

// RecordSuccess stores one successful engine query. Failures to record are
// logged, never surfaced; metrics must not break a search.
func (s *Store) RecordSuccess(ctx context.Context, engine string, resultCount int, elapsed time.Duration) {
	row := &Success{Engine: engine, ResultCount: resultCount, Time: elapsed.Seconds()}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		ctxlog.FromContext(ctx).Warn("Failed to record success metric.", "engine", engine, "error", err)
	}
}

// RecordErrors stores one row per failed engine.
func (s *Store) RecordErrors(ctx context.Context, errs map[string]error) {
	if len(errs) == 0 {
		return
	}
	rows := make([]Error, 0, len(errs))
	for engine, err := range errs {
		rows = append(rows, Error{Engine: engine, Error: err.Error()})
	}
	if _, err := s.db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		ctxlog.FromContext(ctx).Warn("Failed to record error metrics.", "error", err)
	}
}
