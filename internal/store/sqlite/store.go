// Package sqlite persists the canonical dictionary in a SQLite database.
package sqlite

import (
	"database/sql"
	_ "embed"
	"errors"
	"log/slog"
	"net/url"
	"time"

	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	domainerrors "github.com/gencat/gencat/internal/errors"
)

//go:embed schema.sql
var schemaSQL string

// connPragmas are applied by the driver to every new connection.
var connPragmas = []string{
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
	"foreign_keys(ON)",
	"busy_timeout(5000)",
}

// Store keeps the canonical dictionary in a SQLite file.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

func dsn(path string) string {
	q := url.Values{}
	for _, p := range connPragmas {
		q.Add("_pragma", p)
	}
	return "file:" + path + "?" + q.Encode()
}

// Open opens or creates the database at path and applies the schema, which
// is idempotent.
func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, domainerrors.Wrapf(err, domainerrors.CodeIO, "open sqlite %s", path)
	}
	// Runs are single-threaded.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	// The first statement opens the file, so a damaged database fails here.
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, domainerrors.Wrapf(err, errorCode(err), "apply schema to %s", path)
	}

	logger.Info("SQLite dictionary opened", "path", path)
	return &Store{db: db, logger: logger}, nil
}

// errorCode reports CORRUPT for SQLite's corruption and not-a-database
// results and IO for everything else.
func errorCode(err error) domainerrors.Code {
	var se *moderncsqlite.Error
	if errors.As(err, &se) {
		switch se.Code() & 0xff {
		case sqlite3.SQLITE_CORRUPT, sqlite3.SQLITE_NOTADB:
			return domainerrors.CodeCorrupt
		}
	}
	return domainerrors.CodeIO
}

func (s *Store) Close() error {
	return s.db.Close()
}
