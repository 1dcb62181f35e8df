package xlrule

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Parser converts a cell's raw value to T.
type Parser[T any] interface {
	Get() (T, error)
}

// ParserFunc adapts a function to the Parser interface.
type ParserFunc[T any] func() (T, error)

func (f ParserFunc[T]) Get() (T, error) { return f() }

// timeLayouts are tried in order for textual dates.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01-02-06",
	"1/2/2006",
}

var errNotIntegral = errors.New("value has a fractional part")

// IntParser parses the source value as an int. Absent values parse to 0.
func IntParser(src Source) Parser[int] {
	return newParser(src, "int", func(raw any) (int, error) {
		switch v := raw.(type) {
		case int:
			return v, nil
		case int64:
			return int(v), nil
		case int32:
			return int(v), nil
		case float64:
			return floatToInt(v)
		case float32:
			return floatToInt(float64(v))
		}
		s := strings.TrimSpace(rawText(raw))
		n, err := strconv.Atoi(s)
		if err == nil {
			return n, nil
		}
		if errors.Is(err, strconv.ErrRange) {
			return 0, err
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, err
		}
		return floatToInt(f)
	})
}

// FloatParser parses the source value as a float64. Decimal cells use this parser.
func FloatParser(src Source) Parser[float64] {
	return newParser(src, "float", func(raw any) (float64, error) {
		switch v := raw.(type) {
		case float64:
			return v, nil
		case float32:
			return float64(v), nil
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		}
		return strconv.ParseFloat(strings.TrimSpace(rawText(raw)), 64)
	})
}

// StringParser returns the source value as text. It never fails on present values.
func StringParser(src Source) Parser[string] {
	return newParser(src, "string", func(raw any) (string, error) {
		return rawText(raw), nil
	})
}

// BoolParser parses "1", "0", "true", "FALSE" and native bools.
func BoolParser(src Source) Parser[bool] {
	return newParser(src, "bool", func(raw any) (bool, error) {
		if b, ok := raw.(bool); ok {
			return b, nil
		}
		return strconv.ParseBool(strings.TrimSpace(rawText(raw)))
	})
}

// TimeParser parses Excel date serials and common textual date layouts.
func TimeParser(src Source) Parser[time.Time] {
	return newParser(src, "time", func(raw any) (time.Time, error) {
		switch v := raw.(type) {
		case time.Time:
			return v, nil
		case float64:
			return excelize.ExcelDateToTime(v, false)
		case int:
			return excelize.ExcelDateToTime(float64(v), false)
		}
		s := strings.TrimSpace(rawText(raw))
		if serial, err := strconv.ParseFloat(s, 64); err == nil {
			return excelize.ExcelDateToTime(serial, false)
		}
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized date format")
	})
}

// newParser wraps a conversion with source reading, nil handling and
// ParseError construction.
func newParser[T any](src Source, typeName string, convert func(raw any) (T, error)) Parser[T] {
	return ParserFunc[T](func() (T, error) {
		var zero T
		raw, err := src.Raw()
		if err != nil {
			return zero, err
		}
		if raw == nil {
			return zero, nil
		}
		v, err := convert(raw)
		if err != nil {
			return zero, &ParseError{Cell: src.Cell(), Raw: raw, Type: typeName, Err: unwrapNumError(err)}
		}
		return v, nil
	})
}

// floatToInt rejects values that do not fit an int instead of letting the
// conversion wrap.
func floatToInt(f float64) (int, error) {
	if math.IsInf(f, 0) || f < math.MinInt || f >= math.MaxInt {
		return 0, strconv.ErrRange
	}
	if f != math.Trunc(f) {
		return 0, errNotIntegral
	}
	return int(f), nil
}

// unwrapNumError strips the strconv wrapper so messages read "invalid syntax"
// rather than repeating the input.
func unwrapNumError(err error) error {
	var ne *strconv.NumError
	if errors.As(err, &ne) {
		return ne.Err
	}
	return err
}

// rawText renders a raw value as text for format checks and string parsing.
func rawText(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		return fmt.Sprint(v)
	}
}
