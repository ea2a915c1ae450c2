// Package main queries the catalog index written by a gencat run.
//
// Usage:
//
//	go run ./cmd/catalog-search --index ./index "grand quest"
//	go run ./cmd/catalog-search --index ./index --type "ESC - Escape Room" --sort earliest --order asc
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gencat/gencat/internal/domain"
	"github.com/gencat/gencat/internal/search"
)

type multiFlag []string

func (m *multiFlag) String() string     { return strings.Join(*m, ",") }
func (m *multiFlag) Set(v string) error { *m = append(*m, v); return nil }

func main() {
	var types multiFlag

	indexPath := flag.String("index", os.Getenv("SEARCH_INDEX_PATH"), "Index directory (default: $SEARCH_INDEX_PATH)")
	flag.Var(&types, "type", "Event Type filter, repeatable")
	from := flag.String("from", "", "Earliest block at or after this time ("+domain.DefaultDateLayout+")")
	to := flag.String("to", "", "Earliest block at or before this time ("+domain.DefaultDateLayout+")")
	minSessions := flag.Int("min-sessions", 0, "Only events with at least this many sessions")
	limit := flag.Int("limit", 20, "Maximum hits")
	offset := flag.Int("offset", 0, "Hits to skip")
	sortBy := flag.String("sort", "relevance", "Sort by relevance, title, earliest, sessions")
	order := flag.String("order", "desc", "Sort order: asc, desc")
	asJSON := flag.Bool("json", false, "Print the raw result as JSON")
	flag.Parse()

	if *indexPath == "" {
		log.Fatal("No index directory: pass --index or set SEARCH_INDEX_PATH")
	}
	if _, err := os.Stat(*indexPath); err != nil {
		log.Fatalf("Index directory unavailable: %v", err)
	}

	params := search.DefaultSearchParams()
	params.Query = strings.Join(flag.Args(), " ")
	params.EventTypes = types
	params.MinSessions = *minSessions
	params.Limit = *limit
	params.Offset = *offset
	params.SortBy = *sortBy
	params.SortOrder = *order
	params.From = mustParseTime("from", *from)
	params.To = mustParseTime("to", *to)

	index, err := search.NewEventIndex(search.Options{DataPath: *indexPath})
	if err != nil {
		log.Fatalf("Failed to open index: %v", err)
	}
	defer index.Close()

	result, err := index.Search(context.Background(), params)
	if err != nil {
		log.Fatalf("Search failed: %v", err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			log.Fatalf("Failed to encode result: %v", err)
		}
		return
	}

	fmt.Printf("%d events (%d ms)\n\n", result.Total, result.TookMs)
	for i, hit := range result.Hits {
		fmt.Printf("%d. %s", *offset+i+1, hit.Title)
		if hit.Group != "" {
			fmt.Printf(" [%s]", hit.Group)
		}
		fmt.Println()
		fmt.Printf("   %s", hit.EventType)
		if hit.System != "" {
			fmt.Printf(" | %s", hit.System)
		}
		fmt.Printf(" | first block %s | %d sessions | score %.2f\n",
			hit.EarliestBlock.Format(time.DateTime), hit.SessionCount, hit.Score)
		if hit.ShortDescription != "" {
			fmt.Printf("   %s\n", hit.ShortDescription)
		}
	}

	if len(result.EventTypes) > 0 {
		fmt.Println()
		fmt.Println("Event types:")
		for _, f := range result.EventTypes {
			fmt.Printf("  %-40s %d\n", f.Value, f.Count)
		}
	}
}

func mustParseTime(name, value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.ParseInLocation(domain.DefaultDateLayout, value, time.UTC)
	if err != nil {
		log.Fatalf("Invalid --%s %q: %v", name, value, err)
	}
	return t
}
