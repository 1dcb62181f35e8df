package xlrule

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"
)

// Workbook reads cell values from an excelize file and hands them out as Sources.
type Workbook struct {
	file *excelize.File
	opts *Options
}

// Open opens an xlsx file.
func Open(path string, opts ...Option) (*Workbook, error) {
	o := buildOptions(opts)
	f, err := excelize.OpenFile(path, excelize.Options{Password: o.password})
	if err != nil {
		return nil, fmt.Errorf("open workbook %q: %w", path, err)
	}
	return &Workbook{file: f, opts: o}, nil
}

// OpenReader opens a workbook from r.
func OpenReader(r io.Reader, opts ...Option) (*Workbook, error) {
	o := buildOptions(opts)
	f, err := excelize.OpenReader(r, excelize.Options{Password: o.password})
	if err != nil {
		return nil, fmt.Errorf("open workbook reader: %w", err)
	}
	return &Workbook{file: f, opts: o}, nil
}

// NewWorkbook wraps an already open excelize file. Closing the Workbook
// closes f.
func NewWorkbook(f *excelize.File, opts ...Option) *Workbook {
	return &Workbook{file: f, opts: buildOptions(opts)}
}

func buildOptions(opts []Option) *Options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// File returns the underlying excelize file.
func (w *Workbook) File() *excelize.File { return w.file }

// Close releases the underlying file.
func (w *Workbook) Close() error { return w.file.Close() }

// Sheets returns the worksheet names in workbook order.
func (w *Workbook) Sheets() []string { return w.file.GetSheetList() }

// DefaultSheet returns the sheet used for unqualified references.
func (w *Workbook) DefaultSheet() string {
	if w.opts.defaultSheet != "" {
		return w.opts.defaultSheet
	}
	return w.file.GetSheetName(w.file.GetActiveSheetIndex())
}

// Cell returns a Source for a reference like "B7" or "Sheet1!B7". An invalid
// reference yields a Source whose Raw returns the error.
func (w *Workbook) Cell(ref string) Source {
	c, err := NewCell(w.DefaultSheet(), ref)
	if err != nil {
		return &sheetSource{wb: w, cell: Cell{Sheet: w.DefaultSheet(), Address: ref}, err: err}
	}
	return &sheetSource{wb: w, cell: c}
}

// At returns a Source for 1-based coordinates on sheet.
func (w *Workbook) At(sheet string, row, col int) Source {
	c, err := CellAt(sheet, row, col)
	return &sheetSource{wb: w, cell: c, err: err}
}

// sheetSource reads a cell lazily and remembers the result.
type sheetSource struct {
	wb   *Workbook
	cell Cell
	raw  any
	read bool
	err  error
}

func (s *sheetSource) Cell() Cell { return s.cell }

func (s *sheetSource) Raw() (any, error) {
	if s.err != nil || s.read {
		return s.raw, s.err
	}
	s.raw, s.err = s.wb.readCell(s.cell)
	s.read = true
	return s.raw, s.err
}

// readCell returns the cell text, or nil for an empty cell.
func (w *Workbook) readCell(c Cell) (any, error) {
	if c.Sheet == "" {
		return nil, fmt.Errorf("%w for %s", ErrNoSheet, c.Address)
	}
	idx, err := w.file.GetSheetIndex(c.Sheet)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c, err)
	}
	if idx < 0 {
		return nil, fmt.Errorf("read %s: %w: %q", c, ErrSheetNotFound, c.Sheet)
	}
	val, err := w.file.GetCellValue(c.Sheet, c.Address, excelize.Options{RawCellValue: !w.opts.formattedValues})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c, err)
	}
	w.opts.logger.Debug("read cell", slog.String("cell", c.String()), slog.String("value", val))
	if val == "" {
		return nil, nil
	}
	return val, nil
}
