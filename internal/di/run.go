package di

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/gencat/gencat/internal/config"
	"github.com/gencat/gencat/internal/di/providers"
	"github.com/gencat/gencat/internal/dictionary"
	domainerrors "github.com/gencat/gencat/internal/errors"
	"github.com/gencat/gencat/internal/ingest"
	"github.com/gencat/gencat/internal/logger"
	"github.com/gencat/gencat/internal/pipeline"
	"github.com/gencat/gencat/internal/report"
	"github.com/gencat/gencat/internal/search"
)

// Run performs one catalog run on a bootstrapped container: read the input,
// build the catalog, save the dictionary, then write the reports and the
// search index. The dictionary is saved only when every row was processed.
func Run(ctx context.Context, injector do.Injector) (pipeline.Summary, error) {
	cfg := do.MustInvoke[*config.Config](injector)
	log := do.MustInvoke[*logger.Logger](injector)
	backend := do.MustInvoke[*providers.BackendHandle](injector)
	dict := do.MustInvoke[*dictionary.Store](injector)
	p := do.MustInvoke[*pipeline.Pipeline](injector)

	rows, err := ingest.ReadFile(cfg.Input.Path, ingest.Options{Logger: log.Logger})
	if err != nil {
		return pipeline.Summary{}, err
	}

	summary, err := p.Run(ctx, rows)
	if err != nil {
		return summary, err
	}

	if err := backend.Save(ctx, dict); err != nil {
		return summary, err
	}
	log.Info("Dictionary saved", "path", cfg.Dictionary.Path, "entries", dict.EntryCount())

	for _, st := range dict.Stats() {
		log.Info("Decision stats", "score", st.Score, "decision", st.Decision.Name(), "count", st.Count)
	}

	table := report.Build(p.Aggregator(), report.Options{Layout: cfg.DateLayoutOrDefault()})

	if cfg.Output.CSVPath != "" {
		if err := report.SaveCSV(cfg.Output.CSVPath, table); err != nil {
			return summary, err
		}
		log.Info("CSV report written", "path", cfg.Output.CSVPath, "rows", len(table.Rows))
	}

	if cfg.Output.XLSXPath != "" {
		if err := report.SaveXLSX(cfg.Output.XLSXPath, table); err != nil {
			return summary, err
		}
		log.Info("XLSX report written", "path", cfg.Output.XLSXPath, "rows", len(table.Rows))
	}

	if cfg.Search.IndexPath != "" {
		if err := indexCatalog(injector, p); err != nil {
			return summary, err
		}
	}

	return summary, nil
}

// indexCatalog replaces the index contents with the run's events.
func indexCatalog(injector do.Injector, p *pipeline.Pipeline) error {
	log := do.MustInvoke[*logger.Logger](injector)

	index, err := do.Invoke[*providers.SearchIndexHandle](injector)
	if err != nil {
		return err
	}

	if err := index.Rebuild(); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeIO, "rebuild search index")
	}

	docs := search.EventsToDocuments(p.Aggregator())
	if err := index.IndexEvents(docs); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeIO, "index events")
	}

	log.Info("Search index updated", "documents", len(docs))
	return nil
}
