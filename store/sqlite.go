package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/YuminosukeSato/linearsvm/liblinear"
	perrors "github.com/YuminosukeSato/linearsvm/pkg/errors"
	"github.com/YuminosukeSato/linearsvm/pkg/log"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS models (
    handle     TEXT PRIMARY KEY,
    payload    BLOB NOT NULL,
    solver     TEXT NOT NULL,
    created_at DATETIME NOT NULL
);`

// SQLiteStore keeps envelopes in the models table of a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	owned  bool
	opts   options
	logger log.Logger
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLiteStore opens (and creates if needed) the database at path.
// Close releases it.
func OpenSQLiteStore(path string, opts ...Option) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, persistenceError("open", "", perrors.WithStack(err))
	}
	// one connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)

	s, err := NewSQLiteStore(db, opts...)
	if err != nil {
		db.Close()
		return nil, err
	}
	s.owned = true
	return s, nil
}

// NewSQLiteStore uses an existing handle; the caller keeps ownership of db.
func NewSQLiteStore(db *sql.DB, opts ...Option) (*SQLiteStore, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, persistenceError("open", "", perrors.WithStack(err))
	}
	return &SQLiteStore{
		db:   db,
		opts: o,
		logger: log.GetLoggerWithName("store").With(
			log.BackendKey, "sqlite",
			log.CompressionKey, o.codec.Compression.String(),
		),
	}, nil
}

// Close closes the database if the store opened it.
func (s *SQLiteStore) Close() error {
	if !s.owned {
		return nil
	}
	return perrors.WithStack(s.db.Close())
}

// Save inserts a new row; the primary key rejects duplicate handles.
func (s *SQLiteStore) Save(ctx context.Context, m *liblinear.Model) (Handle, error) {
	h := s.opts.generator.Next()
	payload, err := s.opts.codec.Encode(m)
	if err != nil {
		return "", persistenceError("save", h, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO models (handle, payload, solver, created_at) VALUES (?, ?, ?, ?)`,
		string(h), payload, m.Solver.String(), time.Now().UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			err = perrors.Wrap(ErrExists, err.Error())
		}
		return "", persistenceError("save", h, perrors.WithStack(err))
	}

	s.logger.Debug("model saved", log.HandleKey, string(h), log.DataSizeKey, len(payload))
	return h, nil
}

// Load selects and decodes the row for h.
func (s *SQLiteStore) Load(ctx context.Context, h Handle) (*liblinear.Model, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM models WHERE handle = ?`, string(h)).Scan(&payload)
	if err != nil {
		if perrors.Is(err, sql.ErrNoRows) {
			return nil, persistenceError("load", h, perrors.WithStack(ErrNotFound))
		}
		return nil, persistenceError("load", h, perrors.WithStack(err))
	}
	m, err := s.opts.codec.Decode(payload)
	if err != nil {
		return nil, persistenceError("load", h, err)
	}
	s.logger.Debug("model loaded", log.HandleKey, string(h))
	return m, nil
}

// Delete removes the row for h.
func (s *SQLiteStore) Delete(ctx context.Context, h Handle) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM models WHERE handle = ?`, string(h))
	if err != nil {
		return persistenceError("delete", h, perrors.WithStack(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return persistenceError("delete", h, perrors.WithStack(err))
	}
	if n == 0 {
		return persistenceError("delete", h, perrors.WithStack(ErrNotFound))
	}
	return nil
}

// Handles lists stored handles, oldest first.
func (s *SQLiteStore) Handles(ctx context.Context) ([]Handle, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT handle FROM models ORDER BY created_at, handle`)
	if err != nil {
		return nil, persistenceError("list", "", perrors.WithStack(err))
	}
	defer rows.Close()

	var out []Handle
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, persistenceError("list", "", perrors.WithStack(err))
		}
		out = append(out, Handle(h))
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceError("list", "", perrors.WithStack(err))
	}
	return out, nil
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if perrors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey || se.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
