package providers

import (
	"github.com/samber/do/v2"

	"github.com/gencat/gencat/internal/config"
	domainerrors "github.com/gencat/gencat/internal/errors"
	"github.com/gencat/gencat/internal/logger"
	"github.com/gencat/gencat/internal/search"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.EventIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve catalog index. It fails when
// SEARCH_INDEX_PATH is empty; callers check the config first.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Search.IndexPath == "" {
		return nil, domainerrors.Validation("search index path is not configured")
	}

	index, err := search.NewEventIndex(search.Options{
		DataPath: cfg.Search.IndexPath,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeIO, "open search index")
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "path", cfg.Search.IndexPath, "documents", docCount)

	return &SearchIndexHandle{EventIndex: index}, nil
}
