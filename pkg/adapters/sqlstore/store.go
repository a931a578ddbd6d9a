// Package sqlstore persists question banks in SQLite or PostgreSQL.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite

	"github.com/aretw0/qtex/pkg/core"
)

// Driver selects the database backend.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// DefaultSQLiteDSN is used when an empty DSN is given for SQLite.
const DefaultSQLiteDSN = "file:qtex.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"

// Store implements core.Bank on database/sql.
type Store struct {
	db     *sql.DB
	driver Driver
	logger *slog.Logger

	mu    sync.RWMutex
	saves int
	loads int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Open connects to the database and ensures the schema exists.
func Open(ctx context.Context, driver Driver, dsn string, opts ...Option) (*Store, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = DefaultSQLiteDSN
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/qtex?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := New(db, driver, opts...)
	if err := s.Initialize(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database. Call Initialize before use.
func New(db *sql.DB, driver Driver, opts ...Option) *Store {
	s := &Store{db: db, driver: driver}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

// Initialize creates the tables when missing.
func (s *Store) Initialize(ctx context.Context) error {
	schema := schemaSQLite
	if s.driver == DriverPostgres {
		schema = schemaPostgres
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save replaces the content of bank in one transaction.
func (s *Store) Save(ctx context.Context, bank string, qs []core.Question) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().Unix()
	_, err = tx.ExecContext(ctx, `INSERT INTO banks (name,created_at,updated_at)
		VALUES ($1,$2,$3)
		ON CONFLICT (name) DO UPDATE SET updated_at=EXCLUDED.updated_at`,
		bank, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert bank %q: %w", bank, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE bank=$1`, bank); err != nil {
		return fmt.Errorf("failed to clear bank %q: %w", bank, err)
	}

	for i, q := range qs {
		data, err := core.MarshalQuestion(q)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO questions (id,bank,position,kind,name,data)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			uuid.NewString(), bank, i, string(q.Kind()), core.NameOf(q), string(data))
		if err != nil {
			return fmt.Errorf("failed to insert question %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.mu.Lock()
	s.saves++
	s.mu.Unlock()
	s.logger.Debug("bank saved", "bank", bank, "questions", len(qs))
	return nil
}

// List returns the questions of bank in their saved order.
func (s *Store) List(ctx context.Context, bank string) ([]core.Question, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM banks WHERE name=$1`, bank).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", core.ErrBankNotFound, bank)
		}
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT data FROM questions WHERE bank=$1 ORDER BY position`, bank)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var qs []core.Question
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		q, err := core.UnmarshalQuestion([]byte(data))
		if err != nil {
			return nil, err
		}
		qs = append(qs, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.loads++
	s.mu.Unlock()
	return qs, nil
}

// Banks returns all bank names in alphabetical order.
func (s *Store) Banks(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM banks ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Delete removes bank and its questions. Deleting a missing bank is an error.
func (s *Store) Delete(ctx context.Context, bank string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE bank=$1`, bank); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM banks WHERE name=$1`, bank)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", core.ErrBankNotFound, bank)
	}
	return tx.Commit()
}

var _ core.Bank = (*Store)(nil)
