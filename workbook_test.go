package xlrule

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// testdataDir returns the path to testdata directory, creating it if needed.
func testdataDir(t *testing.T) string {
	t.Helper()
	dir := filepath.Join("testdata")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	return dir
}

// createOrdersWorkbook builds a small order sheet:
//
//	A1: "Qty"   B1: "Price"   C1: "Status"   D1: "Note"
//	A2: 3       B2: 19.99     C2: "open"     D2: (blank)
//	A3: "x"     B3: "n/a"     C3: "lost"     D3: "  "
func createOrdersWorkbook(t *testing.T) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	sheet := "Sheet1"

	f.SetCellValue(sheet, "A1", "Qty")
	f.SetCellValue(sheet, "B1", "Price")
	f.SetCellValue(sheet, "C1", "Status")
	f.SetCellValue(sheet, "D1", "Note")

	f.SetCellValue(sheet, "A2", 3)
	f.SetCellValue(sheet, "B2", 19.99)
	f.SetCellValue(sheet, "C2", "open")

	f.SetCellValue(sheet, "A3", "x")
	f.SetCellValue(sheet, "B3", "n/a")
	f.SetCellValue(sheet, "C3", "lost")
	f.SetCellValue(sheet, "D3", "  ")

	_, err := f.NewSheet("Totals")
	require.NoError(t, err)
	f.SetCellValue("Totals", "A1", 42)
	return f
}

func TestWorkbook_ValidCells(t *testing.T) {
	wb := NewWorkbook(createOrdersWorkbook(t))
	defer wb.Close()

	qty, err := Int(wb.Cell("A2")).NotNull().NumericOnly().Must(func(v int) bool { return v > 0 }).Get()
	require.NoError(t, err)
	assert.Equal(t, 3, qty)

	price, err := Float(wb.Cell("B2")).DecimalOnly().Get()
	require.NoError(t, err)
	assert.InDelta(t, 19.99, price, 1e-9)

	status, err := String(wb.Cell("C2")).NotEmpty().Contains("open", "closed").Get()
	require.NoError(t, err)
	assert.Equal(t, "open", status)

	total, err := Int(wb.Cell("Totals!A1")).NotNull().Get()
	require.NoError(t, err)
	assert.Equal(t, 42, total)
}

func TestWorkbook_InvalidCells(t *testing.T) {
	wb := NewWorkbook(createOrdersWorkbook(t))
	defer wb.Close()

	_, err := Int(wb.Cell("A3")).NotNull().NumericOnly().Get()
	require.Error(t, err)
	assert.Equal(t, "A3 is not numeric.", err.Error())

	_, err = Float(wb.Cell("B3")).DecimalOnly().WithMessage(func(c Cell) string {
		return c.String() + " must be a price"
	}).Get()
	require.Error(t, err)
	assert.Equal(t, "Sheet1!B3 must be a price", err.Error())

	_, err = String(wb.Cell("C3")).Contains("open", "closed").Get()
	require.Error(t, err)
	assert.Equal(t, "C3 is not contains.", err.Error())

	_, err = String(wb.Cell("D2")).NotNull().Get()
	require.Error(t, err)
	assert.Equal(t, "D2 is not null.", err.Error())

	_, err = String(wb.Cell("D3")).NotNull().NotEmpty().Get()
	require.Error(t, err)
	assert.Equal(t, "D3 is not empty.", err.Error())
}

func TestWorkbook_OptionalNumericBlankCell(t *testing.T) {
	wb := NewWorkbook(createOrdersWorkbook(t))
	defer wb.Close()

	v, err := Int(wb.At("Sheet1", 2, 4)).NumericOnly().Get()
	require.NoError(t, err)
	assert.Equal(t, 0, v)
}

func TestWorkbook_BadReferences(t *testing.T) {
	wb := NewWorkbook(createOrdersWorkbook(t))
	defer wb.Close()

	b := String(wb.Cell("not a cell"))
	assert.ErrorIs(t, b.Err(), ErrInvalidCellReference)

	_, err := String(wb.Cell("Missing!A1")).NotNull().Get()
	assert.ErrorIs(t, err, ErrSheetNotFound)
	assert.ErrorContains(t, err, `sheet not found: "Missing"`)
	assert.False(t, IsValidationError(err))

	_, err = String(wb.At("", 1, 1)).Get()
	assert.ErrorIs(t, err, ErrNoSheet)
}

func TestWorkbook_DefaultSheetOption(t *testing.T) {
	wb := NewWorkbook(createOrdersWorkbook(t), WithDefaultSheet("Totals"))
	defer wb.Close()

	assert.Equal(t, "Totals", wb.DefaultSheet())
	v, err := Int(wb.Cell("A1")).Get()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, []string{"Sheet1", "Totals"}, wb.Sheets())
}

func TestOpen_FileAndReader(t *testing.T) {
	f := createOrdersWorkbook(t)
	defer f.Close()
	path := filepath.Join(testdataDir(t), "orders.xlsx")
	require.NoError(t, f.SaveAs(path))
	t.Cleanup(func() { os.Remove(path) })

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	wb, err := Open(path, WithLogger(logger))
	require.NoError(t, err)
	v, err := Int(wb.Cell("A2")).Get()
	require.NoError(t, err)
	assert.Equal(t, 3, v)
	require.NoError(t, wb.Close())
	assert.Contains(t, logs.String(), "cell=Sheet1!A2")

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	wb, err = OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer wb.Close()
	s, err := String(wb.Cell("C2")).Get()
	require.NoError(t, err)
	assert.Equal(t, "open", s)
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.ErrorContains(t, err, "open workbook")
}

func TestWorkbook_FormattedValues(t *testing.T) {
	f := excelize.NewFile()
	style, err := f.NewStyle(&excelize.Style{NumFmt: 2}) // 0.00
	require.NoError(t, err)
	f.SetCellValue("Sheet1", "A1", 5)
	f.SetCellStyle("Sheet1", "A1", "A1", style)

	raw := NewWorkbook(f)
	_, err = String(raw.Cell("A1")).NumericOnly().Get()
	assert.NoError(t, err)

	formatted := NewWorkbook(f, WithFormattedValues(true))
	defer formatted.Close()
	_, err = String(formatted.Cell("A1")).NumericOnly().Get()
	assert.Error(t, err)
	v, err := String(formatted.Cell("A1")).DecimalOnly().Get()
	require.NoError(t, err)
	assert.Equal(t, "5.00", v)
}
