package xlrule

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCellReference is returned when a cell reference cannot be parsed.
	ErrInvalidCellReference = errors.New("invalid cell reference")

	// ErrNoSheet is returned when a reference has no sheet and the workbook has no default.
	ErrNoSheet = errors.New("no sheet specified")

	// ErrSheetNotFound is returned when a reference names a sheet the workbook lacks.
	ErrSheetNotFound = errors.New("sheet not found")
)

// ValidationError is returned by RuleBuilder.Get when a rule fails. It carries
// the formatted message of the first failing rule only.
type ValidationError struct {
	Cell    Cell
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ParseError is returned when a raw cell value cannot be converted to the
// requested type.
type ParseError struct {
	Cell Cell
	Raw  any
	Type string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: cannot parse %q as %s: %v", e.Cell, fmt.Sprint(e.Raw), e.Type, e.Err)
	}
	return fmt.Sprintf("%s: cannot parse %q as %s", e.Cell, fmt.Sprint(e.Raw), e.Type)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsParseError reports whether err wraps a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
