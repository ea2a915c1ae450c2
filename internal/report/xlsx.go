package report

import (
	"io"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/gencat/gencat/internal/color"
	domainerrors "github.com/gencat/gencat/internal/errors"
)

const (
	// SheetName is the worksheet holding the grid.
	SheetName = "Catalog"
	// TableName is the Excel table spanning the grid.
	TableName = "Events"
	// FrozenColumns stay visible while scrolling right.
	FrozenColumns = 5

	blockColumnWidth = 28
)

var (
	digits    = regexp.MustCompile(`^\d+$`)
	numberish = regexp.MustCompile(`^-?\d*\.?\d+$`)
)

// WriteXLSX renders the table as a workbook. The header is bold, numeric
// strings become numbers, and each non-empty block cell holds the session
// count followed by the descriptors, wrapped and filled by text length on a
// red to green gradient. The grid is an Excel table with the first five
// columns frozen.
func WriteXLSX(w io.Writer, t *Table) error {
	f, err := buildWorkbook(t)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeIO, "write workbook")
	}
	return nil
}

// SaveXLSX writes the workbook to path.
func SaveXLSX(path string, t *Table) error {
	return writeFile(path, func(w io.Writer) error { return WriteXLSX(w, t) })
}

type workbook struct {
	f      *excelize.File
	fills  map[int]string // joined text length -> hex color
	styles map[string]int // hex color -> style id
}

func buildWorkbook(t *Table) (*excelize.File, error) {
	f := excelize.NewFile()
	wb := &workbook{
		f:      f,
		fills:  color.Gradient(cellLengths(t)),
		styles: make(map[string]int),
	}
	if err := wb.render(t); err != nil {
		_ = f.Close()
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "build workbook")
	}
	return f, nil
}

func (wb *workbook) render(t *Table) error {
	f := wb.f
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	for col, h := range t.Header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(SheetName, cell, cell, bold); err != nil {
			return err
		}
	}

	for i, row := range t.Rows {
		if err := wb.writeRow(i+2, row); err != nil {
			return err
		}
	}

	lastCell, err := excelize.CoordinatesToCellName(len(t.Header), len(t.Rows)+1)
	if err != nil {
		return err
	}
	// A table needs at least one data row.
	if len(t.Rows) > 0 {
		if err := f.AddTable(SheetName, &excelize.Table{
			Range:     "A1:" + lastCell,
			Name:      TableName,
			StyleName: "TableStyleLight9",
		}); err != nil {
			return err
		}
	}

	if len(t.Blocks) > 0 {
		first, err := excelize.ColumnNumberToName(len(t.Header) - len(t.Blocks) + 1)
		if err != nil {
			return err
		}
		last, err := excelize.ColumnNumberToName(len(t.Header))
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetName, first, last, blockColumnWidth); err != nil {
			return err
		}
	}

	topLeft, err := excelize.CoordinatesToCellName(FrozenColumns+1, 1)
	if err != nil {
		return err
	}
	return f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		XSplit:      FrozenColumns,
		TopLeftCell: topLeft,
		ActivePane:  "topRight",
	})
}

func (wb *workbook) writeRow(r int, row Row) error {
	col := 1
	next := func() string {
		cell, _ := excelize.CoordinatesToCellName(col, r)
		col++
		return cell
	}

	for _, v := range row.Values {
		if err := wb.f.SetCellValue(SheetName, next(), numeric(v)); err != nil {
			return err
		}
	}
	if err := wb.f.SetCellValue(SheetName, next(), row.BlockDuration); err != nil {
		return err
	}

	for _, descriptors := range row.Cells {
		cell := next()
		if len(descriptors) == 0 {
			continue
		}
		text := strings.Join(descriptors, "\n")
		style, err := wb.fillStyle(wb.fills[utf8.RuneCountInString(text)])
		if err != nil {
			return err
		}
		if err := wb.f.SetCellValue(SheetName, cell, strconv.Itoa(len(descriptors))+"\n"+text); err != nil {
			return err
		}
		if err := wb.f.SetCellStyle(SheetName, cell, cell, style); err != nil {
			return err
		}
	}
	return nil
}

// fillStyle returns a wrapped-text style with a solid fill, one per color.
func (wb *workbook) fillStyle(hex string) (int, error) {
	if id, ok := wb.styles[hex]; ok {
		return id, nil
	}
	id, err := wb.f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{hex}},
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return 0, err
	}
	wb.styles[hex] = id
	return id, nil
}

// cellLengths collects the joined text length of every block cell. Empty cells count as 0.
func cellLengths(t *Table) []int {
	var out []int
	for _, row := range t.Rows {
		for _, descriptors := range row.Cells {
			out = append(out, utf8.RuneCountInString(strings.Join(descriptors, "\n")))
		}
	}
	return out
}

// numeric converts integer and decimal strings to numbers so Excel can sort
// and sum them. Anything else stays text.
func numeric(s string) any {
	if digits.MatchString(s) {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	if numberish.MatchString(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return s
}
