// Package main provides the entry point for a gencat catalog run.
//
// Usage:
//
//	gencat [flags] events.csv
//	INPUT_PATH=events.csv ON_AMBIGUOUS=keep gencat
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/gencat/gencat/internal/di"
	domainerrors "github.com/gencat/gencat/internal/errors"
	"github.com/gencat/gencat/internal/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	injector := di.NewContainer(os.Args[1:])

	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "gencat: %v\n", err)
		injector.Shutdown()
		return domainerrors.ExitCode(err)
	}

	log := do.MustInvoke[*logger.Logger](injector)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := di.Run(ctx, injector)

	if report := injector.Shutdown(); len(report.Errors) > 0 {
		log.Error("Shutdown error", "error", report.Error())
	}

	if err != nil {
		log.Error("Run failed", "error", err)
		return domainerrors.ExitCode(err)
	}

	log.Info("Run complete",
		"rows", summary.Rows,
		"reclassified", summary.Reclassified,
		"events", summary.Events,
		"sessions", summary.Sessions,
		"elapsed", summary.Elapsed,
	)
	return 0
}
