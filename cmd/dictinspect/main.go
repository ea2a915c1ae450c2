// Package main provides a tool to inspect a saved canonical dictionary.
//
// Usage:
//
//	go run ./cmd/dictinspect --backend json --path dictionary.json
//	go run ./cmd/dictinspect --backend sqlite --path dictionary.db --field Title
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"slices"
	"strings"

	"github.com/gencat/gencat/internal/config"
	"github.com/gencat/gencat/internal/dictionary"
	"github.com/gencat/gencat/internal/domain"
	domainerrors "github.com/gencat/gencat/internal/errors"
	"github.com/gencat/gencat/internal/id"
	"github.com/gencat/gencat/internal/store"
)

var (
	backendFlag = flag.String("backend", "", "Dictionary backend: json, sqlite, badger (default: $DICTIONARY_BACKEND or json)")
	pathFlag    = flag.String("path", "", "Dictionary file or directory (default: $DICTIONARY_PATH or the backend default)")
	fieldFlag   = flag.String("field", "", "Only show this field")
	limitFlag   = flag.Int("limit", 0, "Show at most this many entries per field (0 = all)")
)

func main() {
	flag.Parse()

	backend := strings.ToLower(firstNonEmpty(*backendFlag, os.Getenv("DICTIONARY_BACKEND"), store.BackendJSON))
	path := firstNonEmpty(*pathFlag, os.Getenv("DICTIONARY_PATH"), config.DefaultDictionaryPath(backend))

	fields := domain.ClassifyingFields[:]
	if *fieldFlag != "" {
		if !slices.Contains(fields, *fieldFlag) {
			log.Fatalf("Unknown field %q; expected one of: %s", *fieldFlag, strings.Join(fields, ", "))
		}
		fields = []string{*fieldFlag}
	}

	b, err := store.OpenBackend(backend, path, nil)
	if err != nil {
		log.Fatalf("Failed to open dictionary: %v", err)
	}
	defer b.Close()

	ctx := context.Background()
	d := dictionary.New(domain.ClassifyingFields[:])
	if err := b.Load(ctx, d); err != nil {
		if domainerrors.Is(err, domainerrors.ErrNotFound) {
			fmt.Printf("No dictionary saved at %s\n", path)
			return
		}
		log.Fatalf("Failed to load dictionary: %v", err)
	}

	fmt.Println("=== Dictionary Inspection ===")
	fmt.Printf("Backend: %s\n", backend)
	fmt.Printf("Path: %s\n", path)
	fmt.Println()

	aliasCount, foreignIDs := 0, 0
	for _, field := range fields {
		entries := d.Dictionary(field).Entries()
		fmt.Printf("%s (%d entries)\n", field, len(entries))

		for i, e := range entries {
			aliasCount += len(e.Aliases())
			foreign := !id.IsEntryID(e.ID)
			if foreign {
				foreignIDs++
			}
			if *limitFlag > 0 && i >= *limitFlag {
				continue
			}
			marker := ""
			if foreign {
				marker = "  (non-UUID id)"
			}
			fmt.Printf("  %s  %q%s\n", e.ID, e.Canonical, marker)
			for _, a := range e.Aliases() {
				fmt.Printf("      %-40s x%d\n", a.Form, a.Count)
			}
		}
		if *limitFlag > 0 && len(entries) > *limitFlag {
			fmt.Printf("  ... and %d more entries\n", len(entries)-*limitFlag)
		}
		fmt.Println()
	}

	fmt.Println("=== Summary ===")
	fmt.Printf("Total entries: %d\n", d.EntryCount())
	fmt.Printf("Aliases: %d\n", aliasCount)
	if foreignIDs > 0 {
		fmt.Printf("Non-UUID entry ids: %d\n", foreignIDs)
	}

	if sr, ok := b.(store.StatsReader); ok {
		stats, err := sr.Stats(ctx)
		if err != nil {
			log.Printf("Error reading decision stats: %v", err)
			return
		}
		keys := make([]string, 0, len(stats))
		for k := range stats {
			keys = append(keys, k)
		}
		slices.Sort(keys)

		fmt.Println()
		fmt.Println("=== Decisions (last run) ===")
		if len(keys) == 0 {
			fmt.Println("none")
		}
		for _, k := range keys {
			fmt.Printf("%-16s %d\n", k, stats[k])
		}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
