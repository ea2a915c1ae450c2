// Package pipeline runs the per-row catalog stages in order: sort, sanitize,
// reclassify, resolve every classifying field, and aggregate.
package pipeline

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/gencat/gencat/internal/catalog"
	"github.com/gencat/gencat/internal/domain"
	"github.com/gencat/gencat/internal/normalize"
	"github.com/gencat/gencat/internal/reclassify"
	"github.com/gencat/gencat/internal/resolver"
)

// Summary reports what a run did.
type Summary struct {
	Rows         int
	Reclassified int
	Events       int
	Sessions     int
	Elapsed      time.Duration
}

// Pipeline owns the resolver and aggregator for one run.
type Pipeline struct {
	resolver     *resolver.Resolver
	reclassifier *reclassify.Reclassifier
	aggregator   *catalog.Aggregator
	logger       *slog.Logger
}

// New wires the stages together.
func New(res *resolver.Resolver, rc *reclassify.Reclassifier, agg *catalog.Aggregator, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{
		resolver:     res,
		reclassifier: rc,
		aggregator:   agg,
		logger:       logger,
	}
}

// Aggregator returns the aggregator the pipeline feeds.
func (p *Pipeline) Aggregator() *catalog.Aggregator {
	return p.aggregator
}

// Run processes rows. The slice is reordered in place. The first error stops the run.
func (p *Pipeline) Run(ctx context.Context, rows []*domain.Row) (Summary, error) {
	started := time.Now()
	summary := Summary{Rows: len(rows)}

	SortRows(rows)

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		Sanitize(row)
		if p.reclassifier.Apply(row) {
			summary.Reclassified++
			p.logger.Debug("misfit reclassified", "session", row.GameID(), "event_type", row.Get(domain.FieldEventType))
		}

		key, err := p.resolveKey(ctx, row)
		if err != nil {
			return summary, fmt.Errorf("row %d (session %s): %w", i+1, row.GameID(), err)
		}

		if _, err := p.aggregator.Ingest(row, key); err != nil {
			return summary, fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	summary.Events = p.aggregator.Len()
	summary.Sessions = p.aggregator.SessionCount()
	summary.Elapsed = time.Since(started)

	p.logger.Info("catalog built",
		"rows", summary.Rows,
		"reclassified", summary.Reclassified,
		"events", summary.Events,
		"sessions", summary.Sessions,
		"time_blocks", len(p.aggregator.TimeBlocks()),
		"elapsed", summary.Elapsed)
	return summary, nil
}

func (p *Pipeline) resolveKey(ctx context.Context, row *domain.Row) (catalog.Key, error) {
	var key catalog.Key
	for i, field := range domain.ClassifyingFields {
		id, err := p.resolver.Resolve(ctx, field, row.Get(field))
		if err != nil {
			return key, fmt.Errorf("resolve %s: %w", field, err)
		}
		key[i] = id
	}
	return key, nil
}

// SortRows stable-sorts rows by their raw sort fields. The first spelling of an
// entity seen in this order becomes its canonical name.
func SortRows(rows []*domain.Row) {
	slices.SortStableFunc(rows, func(a, b *domain.Row) int {
		for _, f := range domain.SortFields {
			if c := cmp.Compare(a.Get(f), b.Get(f)); c != 0 {
				return c
			}
		}
		return 0
	})
}

// Sanitize cleans the display fields of row in place. Titles also lose a
// leading article.
func Sanitize(row *domain.Row) {
	for _, f := range domain.SanitizedFields {
		v := row.Get(f)
		if f == domain.FieldTitle {
			row.Set(f, normalize.Title(v))
			continue
		}
		row.Set(f, normalize.Sanitize(v))
	}
}
