// Package dictionary holds the canonical dictionary: per-field ordered sets of
// canonical entities with their observed aliases, plus the decision statistics
// of the current run.
//
// The dictionary is owned by a single run and is not safe for concurrent use.
package dictionary

import (
	"cmp"
	"context"
	"log/slog"
	"slices"

	"github.com/gencat/gencat/internal/domain"
	domainerrors "github.com/gencat/gencat/internal/errors"
	"github.com/gencat/gencat/internal/id"
	"github.com/gencat/gencat/internal/normalize"
)

// StatKey buckets disambiguation decisions by similarity score.
type StatKey struct {
	Score    int
	Decision domain.Decision
}

// Stat is one bucket of the decision statistics.
type Stat struct {
	Score    int
	Decision domain.Decision
	Count    int
}

// Store is the full canonical dictionary.
type Store struct {
	fields []string
	dicts  map[string]*FieldDictionary
	stats  map[StatKey]int
}

// New creates an empty store with a dictionary for each of fields, in order.
func New(fields []string) *Store {
	s := &Store{
		dicts: make(map[string]*FieldDictionary, len(fields)),
		stats: make(map[StatKey]int),
	}
	for _, f := range fields {
		s.Dictionary(f)
	}
	return s
}

// Loader fills an empty store from persistent storage.
// It returns a NOT_FOUND error when nothing has been saved yet and a CORRUPT
// error when the stored document cannot be read back.
type Loader interface {
	Load(ctx context.Context, s *Store) error
}

// Open creates a store for fields and loads it through loader.
// A missing or corrupt dictionary is not fatal: the run starts from empty
// dictionaries and a warning is logged. Decision statistics always start empty.
func Open(ctx context.Context, loader Loader, fields []string, logger *slog.Logger) (*Store, error) {
	s := New(fields)
	if loader == nil {
		return s, nil
	}

	err := loader.Load(ctx, s)
	switch {
	case err == nil:
		clear(s.stats)
		logger.Info("dictionary loaded", "fields", len(s.fields), "entries", s.EntryCount())
		return s, nil
	case domainerrors.Is(err, domainerrors.ErrNotFound):
		logger.Info("no saved dictionary, starting empty")
		return New(fields), nil
	case domainerrors.Is(err, domainerrors.ErrCorrupt):
		logger.Warn("saved dictionary unreadable, starting empty", "error", err)
		return New(fields), nil
	default:
		return nil, err
	}
}

// Dictionary returns the dictionary for field, creating an empty one on first use.
func (s *Store) Dictionary(field string) *FieldDictionary {
	if d, ok := s.dicts[field]; ok {
		return d
	}
	d := newFieldDictionary(field)
	s.dicts[field] = d
	s.fields = append(s.fields, field)
	return d
}

// Fields returns the field names in creation order.
func (s *Store) Fields() []string {
	return slices.Clone(s.fields)
}

// EntryCount returns the total number of entries across all fields.
func (s *Store) EntryCount() int {
	n := 0
	for _, d := range s.dicts {
		n += d.Len()
	}
	return n
}

// CreateEntry adds a new canonical entity named name and returns its id.
// The comparison form of name is seeded as its first alias.
func (s *Store) CreateEntry(field, name string) string {
	entryID := id.NewEntryID()
	form := normalize.ComparisonForm(name)
	e := newEntry(entryID, name, form)
	e.setAlias(form, 1)
	s.Dictionary(field).add(e)
	return entryID
}

// RenameCanonical replaces the display name of an entry. The id is kept.
func (s *Store) RenameCanonical(field, entryID, name string) error {
	e, err := s.entry(field, entryID)
	if err != nil {
		return err
	}
	e.Canonical = name
	e.Normalized = normalize.ComparisonForm(name)
	return nil
}

// RecordAlias counts one more sighting of form for an entry.
func (s *Store) RecordAlias(field, entryID, form string) error {
	e, err := s.entry(field, entryID)
	if err != nil {
		return err
	}
	if err := s.checkOwner(field, e, form); err != nil {
		return err
	}
	e.incrementAlias(form)
	return nil
}

// SetAlias sets the count of form on an entry, inserting it if new.
func (s *Store) SetAlias(field, entryID, form string, count int) error {
	e, err := s.entry(field, entryID)
	if err != nil {
		return err
	}
	if err := s.checkOwner(field, e, form); err != nil {
		return err
	}
	e.setAlias(form, count)
	return nil
}

// Canonical returns the current display name of an entry, or "" when unknown.
func (s *Store) Canonical(field, entryID string) string {
	d, ok := s.dicts[field]
	if !ok {
		return ""
	}
	e, ok := d.Entry(entryID)
	if !ok {
		return ""
	}
	return e.Canonical
}

// RecordDecision counts one disambiguation decision at the given score.
func (s *Store) RecordDecision(score int, decision domain.Decision) {
	s.stats[StatKey{Score: score, Decision: decision}]++
}

// Stats returns the decision statistics ordered by score, then decision.
func (s *Store) Stats() []Stat {
	out := make([]Stat, 0, len(s.stats))
	for k, n := range s.stats {
		out = append(out, Stat{Score: k.Score, Decision: k.Decision, Count: n})
	}
	slices.SortFunc(out, func(a, b Stat) int {
		if c := cmp.Compare(a.Score, b.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Decision, b.Decision)
	})
	return out
}

// Restore appends a previously saved entry. It is used by persistence backends.
// The normalized form and every alias form are re-derived with
// normalize.ComparisonForm, so files written with an older normalization
// ("grand quest") still match exactly. Aliases that collapse to the same form
// are merged at the position of the first one, with their counts summed.
// An empty or duplicate id is a CORRUPT error.
func (s *Store) Restore(field, entryID, canonical string, aliases []Alias) error {
	if entryID == "" {
		return domainerrors.Corruptf("%s: entry without id", field)
	}
	d := s.Dictionary(field)
	if _, dup := d.Entry(entryID); dup {
		return domainerrors.Corruptf("%s: duplicate entry id %s", field, entryID)
	}
	e := newEntry(entryID, canonical, normalize.ComparisonForm(canonical))
	for _, a := range aliases {
		form := normalize.ComparisonForm(a.Form)
		e.setAlias(form, e.AliasCount(form)+a.Count)
	}
	d.add(e)
	return nil
}

func (s *Store) entry(field, entryID string) (*Entry, error) {
	d, ok := s.dicts[field]
	if !ok {
		return nil, domainerrors.NotFoundf("%s: no dictionary", field)
	}
	e, ok := d.Entry(entryID)
	if !ok {
		return nil, domainerrors.NotFoundf("%s: entry %s", field, entryID)
	}
	return e, nil
}

// checkOwner enforces that a form belongs to at most one entry per field.
func (s *Store) checkOwner(field string, e *Entry, form string) error {
	if e.HasAlias(form) {
		return nil
	}
	if other := s.dicts[field].owner(form); other != nil {
		return domainerrors.Validationf("%s: alias %q already belongs to entry %s", field, form, other.ID)
	}
	return nil
}
