// Package ingest reads the convention's event export into session rows.
package ingest

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/gencat/gencat/internal/domain"
	domainerrors "github.com/gencat/gencat/internal/errors"
	"github.com/gencat/gencat/internal/validation"
)

const bom = "\ufeff"

// sessionRecord is the per-row shape checked before a row enters the pipeline.
// Date-times are checked by the aggregator, which knows the layout.
type sessionRecord struct {
	GameID   string `csv:"Game ID" validate:"required"`
	Start    string `csv:"Start Date & Time" validate:"required"`
	End      string `csv:"End Date & Time" validate:"required"`
	Duration string `csv:"Duration" validate:"required,numeric"`
}

// Options configures ReadCSV.
type Options struct {
	Validator *validation.Validator
	Logger    *slog.Logger
}

// ReadFile opens path and reads it with ReadCSV.
func ReadFile(path string, opts Options) ([]*domain.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domainerrors.NotFoundf("input file %s does not exist", path)
		}
		return nil, domainerrors.Wrapf(err, domainerrors.CodeIO, "open input %s", path)
	}
	defer f.Close()

	rows, err := ReadCSV(f, opts)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

// ReadCSV parses a header row followed by session rows. Every required column
// must be present in the header; extra columns are carried along untouched.
// A leading byte order mark is stripped and invalid UTF-8 is dropped.
func ReadCSV(r io.Reader, opts Options) ([]*domain.Row, error) {
	if opts.Validator == nil {
		opts.Validator = validation.New()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	cr := csv.NewReader(skipBOM(r))
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, domainerrors.Validation("input is empty: no header row")
		}
		return nil, domainerrors.Wrap(err, domainerrors.CodeParse, "read header")
	}
	for i := range header {
		header[i] = clean(header[i])
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	var rows []*domain.Row
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, domainerrors.Wrap(err, domainerrors.CodeParse, "read row")
		}

		line, _ := cr.FieldPos(0)
		values := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(record) {
				values[name] = clean(record[i])
			}
		}
		if err := validateRow(opts.Validator, values); err != nil {
			return nil, domainerrors.Wrapf(err, domainerrors.CodeValidation, "line %d", line)
		}
		rows = append(rows, domain.NewRow(values))
	}

	opts.Logger.Info("input read", "rows", len(rows), "columns", len(header))
	return rows, nil
}

func checkHeader(header []string) error {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}

	var missing []string
	for _, col := range domain.RequiredColumns() {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return domainerrors.ValidationWithDetails(
			"input is missing required columns: "+strings.Join(missing, ", "),
			missing,
		)
	}
	return nil
}

func validateRow(v *validation.Validator, values map[string]string) error {
	return v.Validate(sessionRecord{
		GameID:   strings.TrimSpace(values[domain.FieldGameID]),
		Start:    strings.TrimSpace(values[domain.FieldStartDateTime]),
		End:      strings.TrimSpace(values[domain.FieldEndDateTime]),
		Duration: strings.TrimSpace(values[domain.FieldDuration]),
	})
}

// skipBOM drops a UTF-8 byte order mark so a quoted first header cell still parses.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(bom)); err == nil && string(b) == bom {
		_, _ = br.Discard(len(bom))
	}
	return br
}

func clean(s string) string {
	return strings.ToValidUTF8(s, "")
}
