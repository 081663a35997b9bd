package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"fleetHQ/internal/apperr"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLStore is the SQLite-backed Store.
type SQLStore struct {
	db *sql.DB
	q  dbtx
	tx bool

	drones   *DroneRepository
	missions *MissionRepository
	users    *UserRepository
}

var _ Store = (*SQLStore)(nil)

// NewSQLStore wraps an open database (see internal/db.Open).
func NewSQLStore(db *sql.DB) *SQLStore {
	return newSQLStore(db, db, false)
}

func newSQLStore(db *sql.DB, q dbtx, tx bool) *SQLStore {
	return &SQLStore{
		db:       db,
		q:        q,
		tx:       tx,
		drones:   &DroneRepository{db: q},
		missions: &MissionRepository{db: q},
		users:    &UserRepository{db: q},
	}
}

func (s *SQLStore) Drones() DroneStore     { return s.drones }
func (s *SQLStore) Missions() MissionStore { return s.missions }
func (s *SQLStore) Users() UserStore       { return s.users }

// InTx begins a transaction and runs fn. Nested calls join the outer transaction.
func (s *SQLStore) InTx(ctx context.Context, fn func(Store) error) error {
	if s.tx {
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(newSQLStore(s.db, tx, true)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

const (
	readTimeout  = 3 * time.Second
	queryTimeout = 5 * time.Second
)

var nowUTC = func() time.Time { return time.Now().UTC() }

// Timestamps are stored as unix milliseconds so that range filters compare numerically.
func toMillis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func nullMillis(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return t.UnixMilli()
}

func timePtr(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := fromMillis(v.Int64)
	return &t
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

func requireAffected(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("%s %d not found", what, id)
	}
	return nil
}
