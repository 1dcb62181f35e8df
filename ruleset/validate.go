package ruleset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/javajack/xlrule"
)

// Validate runs every check against wb. Rules for one cell stop at the first
// failure; failures across cells are collected into the report. Parse errors
// are reported as issues. Read errors, such as a missing sheet, abort the run.
func (rs *RuleSet) Validate(ctx context.Context, wb *xlrule.Workbook) (*Report, error) {
	sheet := rs.Sheet
	if sheet == "" {
		sheet = wb.DefaultSheet()
	}

	report := &Report{}
	for i := range rs.Checks {
		c := &rs.Checks[i]
		a, err := c.area(sheet)
		if err != nil {
			return nil, fmt.Errorf("check %d (%s): %w", i+1, c.target(), err)
		}
		err = a.each(func(cell xlrule.Cell) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			report.Checked++

			err := c.run(wb.At(cell.Sheet, cell.Row, cell.Col))
			var ve *xlrule.ValidationError
			var pe *xlrule.ParseError
			switch {
			case err == nil:
				slog.Debug("cell passed", "cell", cell.String())
				return nil
			case errors.As(err, &ve):
				report.add(Issue{Severity: c.Severity, Cell: cell, Message: ve.Message})
			case errors.As(err, &pe):
				report.add(Issue{Severity: SeverityError, Cell: cell, Message: pe.Error()})
			default:
				return fmt.Errorf("check %d at %s: %w", i+1, cell, err)
			}
			slog.Debug("cell failed", "cell", cell.String(), "error", err)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	slog.Info("rule set validated",
		"checked", report.Checked,
		"errors", report.Errors,
		"warnings", report.Warnings)
	return report, nil
}

// run builds the typed rule chain for src and evaluates it.
func (c *Check) run(src xlrule.Source) error {
	switch c.Type {
	case TypeInt:
		return apply(xlrule.Int(src), c.Rules, xlrule.IntParser)
	case TypeFloat:
		return apply(xlrule.Float(src), c.Rules, xlrule.FloatParser)
	case TypeBool:
		return apply(xlrule.Bool(src), c.Rules, xlrule.BoolParser)
	case TypeTime:
		return apply(xlrule.Time(src), c.Rules, xlrule.TimeParser)
	default:
		return apply(xlrule.String(src), c.Rules, xlrule.StringParser)
	}
}

func apply[T comparable](b *xlrule.RuleBuilder[T], rules []RuleDef, parser func(xlrule.Source) xlrule.Parser[T]) error {
	for _, r := range rules {
		switch r.Rule {
		case RuleNotNull:
			b.NotNull()
		case RuleNotEmpty:
			b.NotEmpty()
		case RuleNumericOnly:
			b.NumericOnly()
		case RuleDecimalOnly:
			b.DecimalOnly()
		case RuleContains:
			allowed, err := convertValues(b.Cell(), r.Values, parser)
			if err != nil {
				return err
			}
			b.Contains(allowed...)
		case RuleMust:
			b.MustExpr(r.Expr)
		}
		if r.Message != "" {
			b.WithMessageExpr(r.Message)
		}
	}
	_, err := b.Get()
	return err
}

// convertValues parses rule-file values with the same parser used for cells so
// that "1" and 1 compare equal for an int check.
func convertValues[T comparable](cell xlrule.Cell, values []any, parser func(xlrule.Source) xlrule.Parser[T]) ([]T, error) {
	out := make([]T, 0, len(values))
	for _, v := range values {
		t, err := parser(xlrule.Value(cell, v)).Get()
		if err != nil {
			return nil, fmt.Errorf("contains value %v: %w", v, err)
		}
		out = append(out, t)
	}
	return out, nil
}

// checkValues verifies at load time that contains values fit the check type.
func checkValues(typ string, values []any) error {
	var err error
	switch typ {
	case TypeInt:
		_, err = convertValues(xlrule.Cell{}, values, xlrule.IntParser)
	case TypeFloat:
		_, err = convertValues(xlrule.Cell{}, values, xlrule.FloatParser)
	case TypeBool:
		_, err = convertValues(xlrule.Cell{}, values, xlrule.BoolParser)
	case TypeTime:
		_, err = convertValues(xlrule.Cell{}, values, xlrule.TimeParser)
	}
	return err
}
