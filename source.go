package xlrule

// Source locates one cell and yields its raw value. A nil raw value means the
// cell is absent or blank.
type Source interface {
	Cell() Cell
	Raw() (any, error)
}

type valueSource struct {
	cell Cell
	raw  any
}

// Value returns a Source holding an in-memory raw value.
func Value(cell Cell, raw any) Source {
	return valueSource{cell: cell, raw: raw}
}

func (s valueSource) Cell() Cell        { return s.cell }
func (s valueSource) Raw() (any, error) { return s.raw, nil }
