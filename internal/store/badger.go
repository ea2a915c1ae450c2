package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/gencat/gencat/internal/dictionary"
	domainerrors "github.com/gencat/gencat/internal/errors"
)

// badgerEntry is the value stored under an entry key.
type badgerEntry struct {
	ID         string             `json:"id"`
	Canonical  string             `json:"canonical"`
	Normalized string             `json:"normalized"`
	Aliases    []dictionary.Alias `json:"aliases"`
}

// Badger keeps the dictionary in an embedded Badger database.
// Entries live under dict:<field>:<position> so prefix iteration returns them in order.
type Badger struct {
	db     *badger.DB
	logger *slog.Logger
}

// OpenBadger opens (or creates) a Badger database in dir.
func OpenBadger(dir string, logger *slog.Logger) (*Badger, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, domainerrors.Wrapf(err, badgerOpenCode(err), "open badger db %s", dir)
	}

	logger.Info("Badger dictionary opened", "path", dir)
	return &Badger{db: db, logger: logger}, nil
}

// badgerOpenCode classifies a failed badger.Open. A held directory lock or a
// permission problem is IO; anything else means the files on disk (manifest,
// key registry, value log) cannot be replayed and is CORRUPT.
func badgerOpenCode(err error) domainerrors.Code {
	if errors.Is(err, fs.ErrPermission) || strings.Contains(err.Error(), "directory lock") {
		return domainerrors.CodeIO
	}
	return domainerrors.CodeCorrupt
}

// Close closes the database.
func (b *Badger) Close() error {
	return b.db.Close()
}

// Load reads every known field of s from the database.
func (b *Badger) Load(ctx context.Context, s *dictionary.Store) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	found := 0
	err := b.db.View(func(txn *badger.Txn) error {
		for _, field := range s.Fields() {
			prefix := fieldPrefix(field)

			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			it := txn.NewIterator(opts)

			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				var e badgerEntry
				err := it.Item().Value(func(val []byte) error {
					return json.Unmarshal(val, &e)
				})
				if err != nil {
					it.Close()
					return domainerrors.Wrapf(err, domainerrors.CodeCorrupt, "decode %s", it.Item().Key())
				}
				if err := s.Restore(field, e.ID, e.Canonical, e.Aliases); err != nil {
					it.Close()
					return err
				}
				found++
			}
			it.Close()
		}
		return nil
	})
	if err != nil {
		return err
	}

	if found == 0 {
		empty, err := b.isEmpty()
		if err != nil {
			return err
		}
		if empty {
			return domainerrors.NotFoundf("no dictionary saved")
		}
	}
	return nil
}

// Save replaces the stored dictionary and decision statistics with s.
func (b *Badger) Save(ctx context.Context, s *dictionary.Store) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := b.db.DropPrefix([]byte(dictPrefix), []byte(statsPrefix), []byte(metaPrefix)); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeIO, "clear dictionary")
	}

	wb := b.db.NewWriteBatch()
	defer wb.Cancel()

	// The marker distinguishes "saved but empty" from "never saved".
	if err := wb.Set(savedMarkerKey(), []byte{1}); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeIO, "write marker")
	}

	for _, field := range s.Fields() {
		for pos, e := range s.Dictionary(field).Entries() {
			data, err := json.Marshal(badgerEntry{
				ID:         e.ID,
				Canonical:  e.Canonical,
				Normalized: e.Normalized,
				Aliases:    e.Aliases(),
			})
			if err != nil {
				return domainerrors.Wrap(err, domainerrors.CodeInternal, "encode entry")
			}
			if err := wb.Set(entryKey(field, pos), data); err != nil {
				return domainerrors.Wrapf(err, domainerrors.CodeIO, "write %s entry %s", field, e.ID)
			}
		}
	}

	for _, st := range statRecords(s) {
		if err := wb.Set(statKey(st.Score, st.Decision), fmt.Appendf(nil, "%d", st.Count)); err != nil {
			return domainerrors.Wrap(err, domainerrors.CodeIO, "write stats")
		}
	}

	if err := wb.Flush(); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeIO, "flush dictionary")
	}

	b.logger.Debug("dictionary written to badger", "entries", s.EntryCount())
	return nil
}

// Stats returns the decision statistics written by the last Save.
func (b *Badger) Stats(ctx context.Context) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(map[string]int)
	err := b.db.View(func(txn *badger.Txn) error {
		prefix := []byte(statsPrefix)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			key := string(item.KeyCopy(nil)[len(statsPrefix):])
			err := item.Value(func(val []byte) error {
				var n int
				if _, err := fmt.Sscanf(string(val), "%d", &n); err != nil {
					return err
				}
				out[key] = n
				return nil
			})
			if err != nil {
				return domainerrors.Wrapf(err, domainerrors.CodeCorrupt, "decode stat %s", key)
			}
		}
		return nil
	})
	return out, err
}

func (b *Badger) isEmpty() (bool, error) {
	err := b.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(savedMarkerKey())
		return err
	})
	if domainerrors.Is(err, badger.ErrKeyNotFound) {
		return true, nil
	}
	if err != nil {
		return false, domainerrors.Wrap(err, domainerrors.CodeIO, "read marker")
	}
	return false, nil
}
