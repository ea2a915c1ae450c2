package sqlite

import (
	"context"
	"reflect"
	"testing"

	"github.com/gencat/gencat/internal/dictionary"
	"github.com/gencat/gencat/internal/domain"
	domainerrors "github.com/gencat/gencat/internal/errors"
)

func buildDictionary(t *testing.T) *dictionary.Store {
	t.Helper()
	d := dictionary.New(domain.ClassifyingFields[:])

	zeta := d.CreateEntry(domain.FieldGameSystem, "Zeta System")
	d.CreateEntry(domain.FieldGameSystem, "Alpha System")
	if err := d.SetAlias(domain.FieldGameSystem, zeta, "zetasys", 1); err != nil {
		t.Fatalf("set alias: %v", err)
	}
	if err := d.SetAlias(domain.FieldGameSystem, zeta, "azeta", 4); err != nil {
		t.Fatalf("set alias: %v", err)
	}
	d.CreateEntry(domain.FieldCost, "4")
	d.RecordDecision(93, domain.DecisionAdopt)
	return d
}

type flatEntry struct {
	Field, ID, Canonical string
	Aliases              []dictionary.Alias
}

func flatten(d *dictionary.Store) []flatEntry {
	var out []flatEntry
	for _, f := range d.Fields() {
		for _, e := range d.Dictionary(f).Entries() {
			out = append(out, flatEntry{f, e.ID, e.Canonical, e.Aliases()})
		}
	}
	return out
}

func TestLoad_NothingSaved(t *testing.T) {
	s := newTestStore(t)

	err := s.Load(context.Background(), dictionary.New(domain.ClassifyingFields[:]))
	if !domainerrors.Is(err, domainerrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSaveLoad_RoundTripPreservesOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	original := buildDictionary(t)
	if err := s.Save(ctx, original); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded := dictionary.New(domain.ClassifyingFields[:])
	if err := s.Load(ctx, loaded); err != nil {
		t.Fatalf("load: %v", err)
	}

	if got, want := flatten(loaded), flatten(original); !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, want)
	}
	if len(loaded.Stats()) != 0 {
		t.Errorf("expected no stats after load, got %v", loaded.Stats())
	}
}

func TestSave_ReplacesPreviousContent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.Save(ctx, buildDictionary(t)); err != nil {
		t.Fatalf("first save: %v", err)
	}

	next := dictionary.New(domain.ClassifyingFields[:])
	next.CreateEntry(domain.FieldTitle, "Grand Quest")
	if err := s.Save(ctx, next); err != nil {
		t.Fatalf("second save: %v", err)
	}

	loaded := dictionary.New(domain.ClassifyingFields[:])
	if err := s.Load(ctx, loaded); err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.EntryCount() != 1 {
		t.Errorf("expected 1 entry, got %d", loaded.EntryCount())
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("decision stats: %v", err)
	}
	if len(stats) != 0 {
		t.Errorf("expected stats cleared, got %v", stats)
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.Save(ctx, buildDictionary(t)); err != nil {
		t.Fatalf("save: %v", err)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("decision stats: %v", err)
	}
	if want := map[string]int{"093:adopt": 1}; !reflect.DeepEqual(stats, want) {
		t.Errorf("expected %v, got %v", want, stats)
	}
}

func TestLoad_IgnoresUnknownFields(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	d := dictionary.New(domain.ClassifyingFields[:])
	d.CreateEntry("Retired Field", "x")
	if err := s.Save(ctx, d); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded := dictionary.New(domain.ClassifyingFields[:])
	if err := s.Load(ctx, loaded); err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.EntryCount() != 0 {
		t.Errorf("expected unknown field to be skipped, got %d entries", loaded.EntryCount())
	}
}
