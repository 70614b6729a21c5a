package statestore

import (
	"context"
	"database/sql"
	stderrors "errors"

	"task-planner/internal/errors"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS shared_state (
	key TEXT PRIMARY KEY,
	value BLOB NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
)`

// SQLiteStore is the durable Store shared by every open context of the
// application. Each context opens its own connection to the same database
// file; sqlite serializes the writes.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and initializes) the shared state database
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.NewStoreUnavailableError("open shared state database", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.NewStoreUnavailableError("initialize shared state schema", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Get returns the value stored under key
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM shared_state WHERE key = ?`, key).Scan(&value)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.NewStoreUnavailableError("read shared state", err)
	}
	return value, true, nil
}

// Put stores value under key
func (s *SQLiteStore) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO shared_state (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	if err != nil {
		return errors.NewStoreUnavailableError("write shared state", err)
	}
	return nil
}

// Update applies fn to the freshest persisted value inside one transaction,
// so no write is based on a stale read of the same key.
func (s *SQLiteStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewStoreUnavailableError("begin shared state update", err)
	}

	var current []byte
	exists := true
	err = tx.QueryRowContext(ctx, `SELECT value FROM shared_state WHERE key = ?`, key).Scan(&current)
	if stderrors.Is(err, sql.ErrNoRows) {
		exists = false
	} else if err != nil {
		tx.Rollback()
		return errors.NewStoreUnavailableError("read shared state", err)
	}

	next, err := fn(current, exists)
	if err != nil {
		tx.Rollback()
		return err
	}

	if next == nil {
		_, err = tx.ExecContext(ctx, `DELETE FROM shared_state WHERE key = ?`, key)
	} else {
		_, err = tx.ExecContext(ctx, `
		INSERT INTO shared_state (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
			key, next)
	}
	if err != nil {
		tx.Rollback()
		return errors.NewStoreUnavailableError("write shared state", err)
	}

	if err := tx.Commit(); err != nil {
		return errors.NewStoreUnavailableError("commit shared state update", err)
	}
	return nil
}

// Delete removes the value stored under key
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM shared_state WHERE key = ?`, key)
	if err != nil {
		return errors.NewStoreUnavailableError("delete shared state", err)
	}
	return nil
}

// Keys returns all keys with the given prefix, sorted
func (s *SQLiteStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key FROM shared_state WHERE key LIKE ? ESCAPE '\' ORDER BY key`,
		escapeLike(prefix)+"%")
	if err != nil {
		return nil, errors.NewStoreUnavailableError("list shared state keys", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, errors.NewStoreUnavailableError("scan shared state key", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreUnavailableError("iterate shared state keys", err)
	}
	return keys, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
