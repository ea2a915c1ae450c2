// Package store persists the canonical dictionary between runs.
//
// Three backends share the Backend contract: a JSON document (the default,
// readable by hand and compatible with dictionaries from earlier tooling),
// an embedded Badger key-value store, and SQLite (package store/sqlite).
package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gencat/gencat/internal/dictionary"
	domainerrors "github.com/gencat/gencat/internal/errors"
	"github.com/gencat/gencat/internal/store/sqlite"
)

// Backend loads and saves a dictionary.Store.
//
// Load fills an empty store. It returns a NOT_FOUND domain error when nothing
// was saved yet and a CORRUPT domain error when saved data cannot be read.
// Save replaces everything previously saved, preserving entry and alias order.
type Backend interface {
	Load(ctx context.Context, s *dictionary.Store) error
	Save(ctx context.Context, s *dictionary.Store) error
	Close() error
}

// StatsReader reports the decision statistics of the last saved run, keyed
// "<score>:<decision>" with the score zero-padded to three digits.
type StatsReader interface {
	Stats(ctx context.Context) (map[string]int, error)
}

// Backend names accepted in configuration.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
)

// OpenBackend opens the backend named kind at path. The JSON document is
// read lazily; sqlite and badger open their database immediately and
// create it when missing.
func OpenBackend(kind, path string, logger *slog.Logger) (Backend, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	switch kind {
	case BackendJSON, "":
		return NewDocument(path, logger), nil
	case BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, domainerrors.Wrap(err, domainerrors.CodeIO, "create dictionary dir")
		}
		db, err := sqlite.Open(path, logger)
		if err != nil {
			return nil, err
		}
		return db, nil
	case BackendBadger:
		db, err := OpenBadger(path, logger)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, domainerrors.Validationf("unknown dictionary backend %q", kind)
	}
}

// OpenOrReset opens the backend like OpenBackend, except that a sqlite or
// badger store that fails to open as CORRUPT is renamed to
// <path>.corrupt-<UTC timestamp> and replaced with an empty store. The caller
// then loads nothing and starts from empty dictionaries, as it does for a
// corrupt JSON document.
func OpenOrReset(kind, path string, logger *slog.Logger) (Backend, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	b, err := OpenBackend(kind, path, logger)
	if err == nil || !domainerrors.Is(err, domainerrors.ErrCorrupt) {
		return b, err
	}

	aside, moveErr := moveAside(path, time.Now())
	if moveErr != nil {
		return nil, domainerrors.Join(err, moveErr)
	}
	logger.Warn("Dictionary store is corrupt, starting with an empty one",
		"backend", kind,
		"path", path,
		"moved_to", aside,
		"error", err,
	)
	return OpenBackend(kind, path, logger)
}

// moveAside renames path, and the SQLite journal files next to it, to a
// timestamped .corrupt name. It returns the new name of path.
func moveAside(path string, now time.Time) (string, error) {
	aside := path + ".corrupt-" + now.UTC().Format("20060102T150405Z")
	for _, suffix := range []string{"", "-wal", "-shm"} {
		from := path + suffix
		if _, err := os.Lstat(from); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := os.Rename(from, aside+suffix); err != nil {
			return "", domainerrors.Wrapf(err, domainerrors.CodeIO, "move corrupt store %s aside", from)
		}
	}
	return aside, nil
}

// StatsKey is the top-level document key holding the run's decision statistics.
const StatsKey = "Decision Stats"

// statRecord is the persisted form of one decision statistics bucket.
type statRecord struct {
	Score    int    `json:"score"`
	Decision string `json:"decision"`
	Count    int    `json:"count"`
}

func statKeyString(score int, decision string) string {
	return fmt.Sprintf("%03d:%s", score, decision)
}

func statRecords(s *dictionary.Store) []statRecord {
	stats := s.Stats()
	out := make([]statRecord, 0, len(stats))
	for _, st := range stats {
		out = append(out, statRecord{Score: st.Score, Decision: st.Decision.Name(), Count: st.Count})
	}
	return out
}
