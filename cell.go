package xlrule

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Cell identifies a single worksheet cell. It is created once when a rule
// chain begins and never mutated.
type Cell struct {
	Sheet   string `json:"sheet" yaml:"sheet"`     // worksheet name (empty = unknown)
	Row     int    `json:"row" yaml:"row"`         // 1-based row index
	Col     int    `json:"col" yaml:"col"`         // 1-based column index
	Address string `json:"address" yaml:"address"` // A1-style name, e.g. "B7"
}

// NewCell parses a cell reference like "B7", "$B$7" or "Sheet1!B7".
// A sheet prefix in ref overrides the sheet argument.
func NewCell(sheet, ref string) (Cell, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Cell{}, fmt.Errorf("%w: empty reference", ErrInvalidCellReference)
	}

	cellPart := ref
	if idx := strings.LastIndex(ref, "!"); idx >= 0 {
		sheet = strings.Trim(ref[:idx], "'")
		cellPart = ref[idx+1:]
	}

	cellPart = strings.ReplaceAll(cellPart, "$", "")
	col, row, err := excelize.CellNameToCoordinates(cellPart)
	if err != nil {
		return Cell{}, fmt.Errorf("%w %q: %v", ErrInvalidCellReference, ref, err)
	}
	return CellAt(sheet, row, col)
}

// CellAt builds a Cell from 1-based coordinates.
func CellAt(sheet string, row, col int) (Cell, error) {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return Cell{}, fmt.Errorf("%w (row %d, col %d): %v", ErrInvalidCellReference, row, col, err)
	}
	return Cell{Sheet: sheet, Row: row, Col: col, Address: name}, nil
}

// String formats the cell as "Sheet1!B7" or "B7" if no sheet.
func (c Cell) String() string {
	if c.Sheet != "" {
		return c.Sheet + "!" + c.Address
	}
	return c.Address
}
