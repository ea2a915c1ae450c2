package providers

import (
	"os"

	"github.com/samber/do/v2"

	"github.com/gencat/gencat/internal/catalog"
	"github.com/gencat/gencat/internal/config"
	"github.com/gencat/gencat/internal/dictionary"
	"github.com/gencat/gencat/internal/logger"
	"github.com/gencat/gencat/internal/pipeline"
	"github.com/gencat/gencat/internal/reclassify"
	"github.com/gencat/gencat/internal/resolver"
)

// ProvideDecider provides the decision source for fuzzy candidates.
// Without a registered Console the process's stdin and stdout are used.
func ProvideDecider(i do.Injector) (resolver.Decider, error) {
	cfg := do.MustInvoke[*config.Config](i)

	console, err := do.Invoke[Console](i)
	if err != nil {
		console = Console{In: os.Stdin, Out: os.Stdout}
	}

	return resolver.NewDecider(cfg.Resolver.OnAmbiguous, console.In, console.Out)
}

// ProvideResolver provides the entity resolver over the loaded dictionary.
func ProvideResolver(i do.Injector) (*resolver.Resolver, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	dict := do.MustInvoke[*dictionary.Store](i)
	decider := do.MustInvoke[resolver.Decider](i)

	r := resolver.New(dict, decider, resolver.Options{
		Threshold: cfg.Resolver.Threshold,
		Logger:    log.Logger,
	})
	log.Debug("Resolver ready", "threshold", r.Threshold(), "on_ambiguous", cfg.Resolver.OnAmbiguous)
	return r, nil
}

// ProvideReclassifier provides the misfit reclassifier, reading RULES_PATH when set.
func ProvideReclassifier(i do.Injector) (*reclassify.Reclassifier, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	var rules []reclassify.Rule
	if cfg.Input.RulesPath != "" {
		loaded, err := reclassify.LoadRules(cfg.Input.RulesPath)
		if err != nil {
			return nil, err
		}
		rules = loaded
	}

	rc := reclassify.New(rules)
	log.Debug("Reclassification rules ready", "path", cfg.Input.RulesPath, "rules", len(rc.Rules()))
	return rc, nil
}

// ProvideAggregator provides an empty event aggregator.
func ProvideAggregator(i do.Injector) (*catalog.Aggregator, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	dict := do.MustInvoke[*dictionary.Store](i)

	return catalog.NewAggregator(dict, catalog.Options{
		Layout: cfg.DateLayoutOrDefault(),
		Logger: log.Logger,
	}), nil
}

// ProvidePipeline provides the catalog pipeline.
func ProvidePipeline(i do.Injector) (*pipeline.Pipeline, error) {
	log := do.MustInvoke[*logger.Logger](i)

	return pipeline.New(
		do.MustInvoke[*resolver.Resolver](i),
		do.MustInvoke[*reclassify.Reclassifier](i),
		do.MustInvoke[*catalog.Aggregator](i),
		log.Logger,
	), nil
}
