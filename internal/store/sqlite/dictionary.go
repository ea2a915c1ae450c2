package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gencat/gencat/internal/dictionary"
	domainerrors "github.com/gencat/gencat/internal/errors"
)

const savedKey = "saved_at"

// Load reads every known field of d from the database in stored order.
func (s *Store) Load(ctx context.Context, d *dictionary.Store) error {
	var savedAt string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, savedKey).Scan(&savedAt)
	if domainerrors.Is(err, sql.ErrNoRows) {
		return domainerrors.NotFoundf("no dictionary saved")
	}
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeIO, "read meta")
	}

	for _, field := range d.Fields() {
		aliases, err := s.loadAliases(ctx, field)
		if err != nil {
			return err
		}
		if err := s.loadEntries(ctx, d, field, aliases); err != nil {
			return err
		}
	}

	s.logger.Debug("dictionary read from sqlite", "saved_at", savedAt, "entries", d.EntryCount())
	return nil
}

func (s *Store) loadEntries(ctx context.Context, d *dictionary.Store, field string, aliases map[string][]dictionary.Alias) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, canonical FROM entries
		WHERE field = ?
		ORDER BY position`, field)
	if err != nil {
		return domainerrors.Wrapf(err, domainerrors.CodeIO, "query %s entries", field)
	}
	defer rows.Close()

	for rows.Next() {
		var entryID, canonical string
		if err := rows.Scan(&entryID, &canonical); err != nil {
			return domainerrors.Wrapf(err, domainerrors.CodeCorrupt, "scan %s entry", field)
		}
		if err := d.Restore(field, entryID, canonical, aliases[entryID]); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return domainerrors.Wrapf(err, domainerrors.CodeIO, "iterate %s entries", field)
	}
	return nil
}

func (s *Store) loadAliases(ctx context.Context, field string) (map[string][]dictionary.Alias, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT entry_id, form, count FROM aliases
		WHERE field = ?
		ORDER BY entry_id, position`, field)
	if err != nil {
		return nil, domainerrors.Wrapf(err, domainerrors.CodeIO, "query %s aliases", field)
	}
	defer rows.Close()

	out := make(map[string][]dictionary.Alias)
	for rows.Next() {
		var entryID string
		var a dictionary.Alias
		if err := rows.Scan(&entryID, &a.Form, &a.Count); err != nil {
			return nil, domainerrors.Wrapf(err, domainerrors.CodeCorrupt, "scan %s alias", field)
		}
		out[entryID] = append(out[entryID], a)
	}
	if err := rows.Err(); err != nil {
		return nil, domainerrors.Wrapf(err, domainerrors.CodeIO, "iterate %s aliases", field)
	}
	return out, nil
}

// Save replaces the stored dictionary and decision statistics with d in a single transaction.
func (s *Store) Save(ctx context.Context, d *dictionary.Store) error {
	if err := s.save(ctx, d); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeIO, "save dictionary")
	}
	s.logger.Debug("dictionary written to sqlite", "entries", d.EntryCount())
	return nil
}

func (s *Store) save(ctx context.Context, d *dictionary.Store) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"aliases", "entries", "decision_stats"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	insertEntry, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (field, position, id, canonical, normalized)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare entries: %w", err)
	}
	defer insertEntry.Close()

	insertAlias, err := tx.PrepareContext(ctx, `
		INSERT INTO aliases (field, entry_id, position, form, count)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare aliases: %w", err)
	}
	defer insertAlias.Close()

	for _, field := range d.Fields() {
		for pos, e := range d.Dictionary(field).Entries() {
			if _, err := insertEntry.ExecContext(ctx, field, pos, e.ID, e.Canonical, e.Normalized); err != nil {
				return fmt.Errorf("insert %s entry %s: %w", field, e.ID, err)
			}
			for apos, a := range e.Aliases() {
				if _, err := insertAlias.ExecContext(ctx, field, e.ID, apos, a.Form, a.Count); err != nil {
					return fmt.Errorf("insert %s alias %q: %w", field, a.Form, err)
				}
			}
		}
	}

	for _, st := range d.Stats() {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO decision_stats (score, decision, count)
			VALUES (?, ?, ?)`,
			st.Score, st.Decision.Name(), st.Count)
		if err != nil {
			return fmt.Errorf("insert decision_stats: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO meta (key, value) VALUES (?, datetime('now'))
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`, savedKey)
	if err != nil {
		return fmt.Errorf("update meta: %w", err)
	}

	return tx.Commit()
}

// Stats returns the decision counts of the last saved run, keyed "score:decision".
func (s *Store) Stats(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT score, decision, count FROM decision_stats ORDER BY score, decision`)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeIO, "query decision_stats")
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var score, count int
		var decision string
		if err := rows.Scan(&score, &decision, &count); err != nil {
			return nil, domainerrors.Wrap(err, domainerrors.CodeCorrupt, "scan decision_stats")
		}
		out[fmt.Sprintf("%03d:%s", score, decision)] = count
	}
	return out, rows.Err()
}
