// Package di provides dependency injection configuration for a gencat run.
package di

import (
	"github.com/samber/do/v2"

	"github.com/gencat/gencat/internal/config"
	"github.com/gencat/gencat/internal/di/providers"
	"github.com/gencat/gencat/internal/dictionary"
	"github.com/gencat/gencat/internal/logger"
	"github.com/gencat/gencat/internal/pipeline"
)

// NewContainer creates and configures the DI container with all providers.
// args are the command-line arguments without the program name.
func NewContainer(args []string) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.ProvideValue(injector, providers.Args(args))
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Dictionary layer
	do.Provide(injector, providers.ProvideBackend)
	do.Provide(injector, providers.ProvideDictionary)

	// Catalog layer
	do.Provide(injector, providers.ProvideDecider)
	do.Provide(injector, providers.ProvideResolver)
	do.Provide(injector, providers.ProvideReclassifier)
	do.Provide(injector, providers.ProvideAggregator)
	do.Provide(injector, providers.ProvidePipeline)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)

	return injector
}

// Bootstrap initializes the services a run needs, surfacing configuration
// and dictionary errors before any input is read. The search index opens
// lazily on first use.
func Bootstrap(injector do.Injector) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*dictionary.Store](injector); err != nil {
		return err
	}
	// Resolver, reclassifier and aggregator come with the pipeline.
	if _, err := do.Invoke[*pipeline.Pipeline](injector); err != nil {
		return err
	}
	return nil
}
