// Package report lays aggregated events out as an hour-by-hour grid and writes
// it as CSV or XLSX.
package report

import (
	"cmp"
	"slices"
	"strconv"
	"time"

	"github.com/gencat/gencat/internal/catalog"
	"github.com/gencat/gencat/internal/domain"
)

// BlockDurationColumn follows the classifying columns in the header.
const BlockDurationColumn = "Block Duration"

// BlockHeaderLayout formats a time block column header.
const BlockHeaderLayout = "2006-01-02 15:04:05"

// Options configures Build.
type Options struct {
	// Layout formats session start and end times in cell descriptors.
	// Empty means domain.DefaultDateLayout.
	Layout string
}

// Table is the report grid: one row per event, one column per time block.
type Table struct {
	Header []string
	Blocks []time.Time
	Rows   []Row
}

// Row is one event line.
type Row struct {
	Key           catalog.Key
	Values        []string // canonical values, in domain.ClassifyingFields order
	BlockDuration float64
	// Cells holds, per block, the descriptors of sessions running in it.
	Cells [][]string
}

// Build lays out every event in agg.
func Build(agg *catalog.Aggregator, opts Options) *Table {
	if opts.Layout == "" {
		opts.Layout = domain.DefaultDateLayout
	}

	blocks := agg.TimeBlocks()
	header := make([]string, 0, domain.NumClassifyingFields+1+len(blocks))
	header = append(header, domain.ClassifyingFields[:]...)
	header = append(header, BlockDurationColumn)
	for _, b := range blocks {
		header = append(header, b.Format(BlockHeaderLayout))
	}

	events := agg.Events()
	slices.SortStableFunc(events, compareEvents)

	rows := make([]Row, 0, len(events))
	for _, ev := range events {
		rows = append(rows, buildRow(ev, blocks, opts.Layout))
	}

	return &Table{Header: header, Blocks: blocks, Rows: rows}
}

func buildRow(ev *catalog.Event, blocks []time.Time, layout string) Row {
	row := Row{
		Key:           ev.Key,
		Values:        make([]string, domain.NumClassifyingFields),
		BlockDuration: ev.BlockDuration,
		Cells:         make([][]string, len(blocks)),
	}
	for i, f := range domain.ClassifyingFields {
		row.Values[i] = ev.Canonical(f)
	}

	for _, s := range ev.Sessions() {
		desc := s.ID + ": " + s.Start.Format(layout) + " to " + s.End.Format(layout)
		for i, b := range blocks {
			if !b.Before(s.StartBlock) && b.Before(s.EndBlock) {
				row.Cells[i] = append(row.Cells[i], desc)
			}
		}
	}
	return row
}

// compareEvents orders by (EarliestBlock, BlockDuration, Event Type, Game System,
// Rules Edition, Group, Title, Short Description).
func compareEvents(a, b *catalog.Event) int {
	if c := a.EarliestBlock.Compare(b.EarliestBlock); c != 0 {
		return c
	}
	if c := cmp.Compare(a.BlockDuration, b.BlockDuration); c != 0 {
		return c
	}
	for _, f := range []string{
		domain.FieldEventType,
		domain.FieldGameSystem,
		domain.FieldRulesEdition,
		domain.FieldGroup,
		domain.FieldTitle,
		domain.FieldShortDescription,
	} {
		if c := cmp.Compare(a.Value(f), b.Value(f)); c != 0 {
			return c
		}
	}
	return 0
}

// FormatHours renders a block duration with at least one decimal place, e.g. "2.0" or "1.5".
func FormatHours(h float64) string {
	s := strconv.FormatFloat(h, 'f', -1, 64)
	if h == float64(int64(h)) {
		s += ".0"
	}
	return s
}
