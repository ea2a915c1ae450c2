package report

import (
	"encoding/csv"
	"io"
	"strings"

	domainerrors "github.com/gencat/gencat/internal/errors"
)

// WriteCSV writes the table with one line per event. A block cell holds its
// session descriptors separated by newlines.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeIO, "write csv header")
	}

	record := make([]string, 0, len(t.Header))
	for _, row := range t.Rows {
		record = record[:0]
		record = append(record, row.Values...)
		record = append(record, FormatHours(row.BlockDuration))
		for _, cell := range row.Cells {
			record = append(record, strings.Join(cell, "\n"))
		}
		if err := cw.Write(record); err != nil {
			return domainerrors.Wrap(err, domainerrors.CodeIO, "write csv row")
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeIO, "flush csv")
	}
	return nil
}

// SaveCSV writes the table to path.
func SaveCSV(path string, t *Table) error {
	return writeFile(path, func(w io.Writer) error { return WriteCSV(w, t) })
}
