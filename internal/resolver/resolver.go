// Package resolver maps raw field values to stable canonical entry ids.
//
// A value is first looked up exactly (by comparison form, against each entry's
// normalized name and aliases). Failing that, every alias scoring at or above
// the similarity threshold is offered to a Decider, which says whether the
// value is the same entity and whether its spelling should become canonical.
// A value nobody claims becomes a new entry.
package resolver

import (
	"context"
	"log/slog"

	"github.com/gencat/gencat/internal/dictionary"
	"github.com/gencat/gencat/internal/domain"
	domainerrors "github.com/gencat/gencat/internal/errors"
	"github.com/gencat/gencat/internal/normalize"
	"github.com/gencat/gencat/internal/similarity"
)

// DefaultThreshold is the minimum similarity score that triggers a decision.
const DefaultThreshold = 90

// Candidate is a fuzzy match awaiting a decision.
type Candidate struct {
	Field     string // dictionary field being resolved
	Raw       string // value as it appeared, whitespace-collapsed
	Form      string // comparison form of Raw
	Alias     string // alias that scored at or above the threshold
	Canonical string // current canonical name of the alias's entry
	Score     int
}

// Decider answers fuzzy-match questions.
type Decider interface {
	Decide(ctx context.Context, c Candidate) (domain.Decision, error)
}

// DeciderFunc adapts a function to the Decider interface.
type DeciderFunc func(ctx context.Context, c Candidate) (domain.Decision, error)

// Decide calls f.
func (f DeciderFunc) Decide(ctx context.Context, c Candidate) (domain.Decision, error) {
	return f(ctx, c)
}

// Options configures a Resolver.
type Options struct {
	// Threshold is the minimum score (1-100) for a fuzzy candidate. Zero means DefaultThreshold.
	Threshold int
	Logger    *slog.Logger
}

// Resolver resolves values against a dictionary.Store. It mutates the store
// and is not safe for concurrent use.
type Resolver struct {
	dict      *dictionary.Store
	decider   Decider
	threshold int
	logger    *slog.Logger
}

// New creates a resolver over dict that consults decider on fuzzy matches.
func New(dict *dictionary.Store, decider Decider, opts Options) *Resolver {
	if opts.Threshold == 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{
		dict:      dict,
		decider:   decider,
		threshold: opts.Threshold,
		logger:    opts.Logger,
	}
}

// Threshold returns the active similarity threshold.
func (r *Resolver) Threshold() int {
	return r.threshold
}

// Resolve returns the entry id for raw in field, creating an entry when no
// existing one matches. The only error source is the Decider.
func (r *Resolver) Resolve(ctx context.Context, field, raw string) (string, error) {
	raw = normalize.Collapse(raw)
	form := normalize.ComparisonForm(raw)
	fd := r.dict.Dictionary(field)

	for _, e := range fd.Entries() {
		if !e.Matches(form) {
			continue
		}
		if err := r.dict.RecordAlias(field, e.ID, form); err != nil {
			// Only reachable with a dictionary loaded from older files in which
			// two entries claim the same form; the earlier entry still wins.
			r.logger.Warn("alias not recorded", "field", field, "form", form, "error", err)
		}
		r.logger.Debug("exact match", "field", field, "value", raw, "canonical", e.Canonical)
		return e.ID, nil
	}

	for _, e := range fd.Entries() {
		for _, alias := range e.Aliases() {
			score := similarity.Ratio(form, alias.Form)
			if score < r.threshold {
				continue
			}

			c := Candidate{
				Field:     field,
				Raw:       raw,
				Form:      form,
				Alias:     alias.Form,
				Canonical: e.Canonical,
				Score:     score,
			}
			decision, err := r.decide(ctx, c)
			if err != nil {
				return "", err
			}
			r.dict.RecordDecision(score, decision)
			r.logger.Debug("fuzzy match",
				"field", field, "value", raw, "alias", alias.Form,
				"canonical", e.Canonical, "score", score, "decision", decision.Name())

			switch decision {
			case domain.DecisionAdopt:
				if err := r.dict.RenameCanonical(field, e.ID, raw); err != nil {
					return "", err
				}
				if err := r.dict.SetAlias(field, e.ID, form, 1); err != nil {
					return "", err
				}
				return e.ID, nil
			case domain.DecisionKeep:
				if err := r.dict.SetAlias(field, e.ID, form, 1); err != nil {
					return "", err
				}
				return e.ID, nil
			}
			// Reject: keep scanning this entry's remaining aliases.
		}
	}

	entryID := r.dict.CreateEntry(field, raw)
	r.logger.Debug("new entry", "field", field, "value", raw, "id", entryID)
	return entryID, nil
}

func (r *Resolver) decide(ctx context.Context, c Candidate) (domain.Decision, error) {
	if r.decider == nil {
		return 0, domainerrors.Internalf("%s: fuzzy match for %q but no decider configured", c.Field, c.Raw)
	}
	d, err := r.decider.Decide(ctx, c)
	if err != nil {
		return 0, err
	}
	if !d.Valid() {
		return 0, domainerrors.Internalf("%s: decider returned invalid decision %d", c.Field, int(d))
	}
	return d, nil
}
