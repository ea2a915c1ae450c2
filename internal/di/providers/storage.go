package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/gencat/gencat/internal/config"
	"github.com/gencat/gencat/internal/dictionary"
	"github.com/gencat/gencat/internal/domain"
	"github.com/gencat/gencat/internal/logger"
	"github.com/gencat/gencat/internal/store"
)

// BackendHandle wraps the dictionary backend with shutdown capability.
type BackendHandle struct {
	store.Backend
}

// Shutdown implements do.Shutdownable.
func (h *BackendHandle) Shutdown() error {
	return h.Close()
}

// ProvideBackend opens the configured dictionary backend. A corrupt sqlite or
// badger store is moved aside so the run starts from empty dictionaries.
func ProvideBackend(i do.Injector) (*BackendHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	backend, err := store.OpenOrReset(cfg.Dictionary.Backend, cfg.Dictionary.Path, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Dictionary backend ready", "backend", cfg.Dictionary.Backend, "path", cfg.Dictionary.Path)

	return &BackendHandle{Backend: backend}, nil
}

// ProvideDictionary loads the canonical dictionary through the backend.
func ProvideDictionary(i do.Injector) (*dictionary.Store, error) {
	backend := do.MustInvoke[*BackendHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return dictionary.Open(context.Background(), backend, domain.ClassifyingFields[:], log.Logger)
}
