// Package providers contains dependency injection providers for a gencat run.
package providers

import (
	"io"

	"github.com/samber/do/v2"

	"github.com/gencat/gencat/internal/config"
	"github.com/gencat/gencat/internal/id"
	"github.com/gencat/gencat/internal/logger"
)

// Args holds the command-line arguments, excluding the program name.
type Args []string

// Console is where interactive decisions are read and asked.
type Console struct {
	In  io.Reader
	Out io.Writer
}

// LogOutput is where log records are written. Nil means stderr.
type LogOutput struct {
	io.Writer
}

// ProvideConfig provides the run configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	args := do.MustInvoke[Args](i)
	return config.LoadConfig(args)
}

// ProvideLogger provides the structured logger, tagged with a fresh run id.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)
	out, _ := do.Invoke[LogOutput](i)

	runID, err := id.Generate(id.RunPrefix)
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.Config{
		Writer:      out.Writer,
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development" && cfg.Logger.Level == "debug",
		Environment: cfg.App.Environment,
	}).WithRun(runID)

	log.Info("Starting gencat",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"input", cfg.Input.Path,
		"dictionary_backend", cfg.Dictionary.Backend,
		"dictionary_path", cfg.Dictionary.Path,
	)

	return log, nil
}
