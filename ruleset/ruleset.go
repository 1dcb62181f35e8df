package ruleset

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/javajack/xlrule"
	"gopkg.in/yaml.v3"
)

// Cell value types a check can parse to.
const (
	TypeString = "string"
	TypeInt    = "int"
	TypeFloat  = "float"
	TypeBool   = "bool"
	TypeTime   = "time"
)

// Rule names accepted in a rule file.
const (
	RuleNotNull     = "notNull"
	RuleNotEmpty    = "notEmpty"
	RuleNumericOnly = "numericOnly"
	RuleDecimalOnly = "decimalOnly"
	RuleContains    = "contains"
	RuleMust        = "must"
)

// MaxRangeCells is the largest number of cells a single check may cover. One
// full column (1048576 rows) fits; a whole sheet does not.
const MaxRangeCells = 1 << 20

// ErrInvalidRuleSet is wrapped by every structural error found while loading.
var ErrInvalidRuleSet = errors.New("invalid rule set")

// RuleSet is a declarative list of cell checks, usually loaded from YAML:
//
//	sheet: Sheet1
//	checks:
//	  - range: B2:B100
//	    type: int
//	    rules:
//	      - rule: notNull
//	      - rule: must
//	        expr: value > 0
//	        message: "${address} must be positive"
type RuleSet struct {
	Sheet  string  `yaml:"sheet"`
	Checks []Check `yaml:"checks"`
}

// Check applies an ordered rule chain to one cell or to every cell of a range.
type Check struct {
	Cell     string    `yaml:"cell"`
	Range    string    `yaml:"range"`
	Type     string    `yaml:"type"`
	Severity Severity  `yaml:"severity"`
	Rules    []RuleDef `yaml:"rules"`
}

// RuleDef declares one rule. Values is used by contains, Expr by must.
// Message is an optional template with ${...} expressions.
type RuleDef struct {
	Rule    string `yaml:"rule"`
	Values  []any  `yaml:"values"`
	Expr    string `yaml:"expr"`
	Message string `yaml:"message"`
}

// Load reads and parses a rule file.
func Load(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule file %q: %w", path, err)
	}
	rs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("rule file %q: %w", path, err)
	}
	return rs, nil
}

// Parse decodes YAML rule definitions and checks them for structural errors.
// Unknown fields are rejected.
func Parse(data []byte) (*RuleSet, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var rs RuleSet
	if err := dec.Decode(&rs); err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}
	if err := rs.validate(); err != nil {
		return nil, err
	}
	return &rs, nil
}

func (rs *RuleSet) validate() error {
	if len(rs.Checks) == 0 {
		return fmt.Errorf("%w: no checks defined", ErrInvalidRuleSet)
	}
	for i := range rs.Checks {
		c := &rs.Checks[i]
		if c.Type == "" {
			c.Type = TypeString
		}
		if err := c.validate(rs.Sheet); err != nil {
			return fmt.Errorf("%w: check %d (%s): %v", ErrInvalidRuleSet, i+1, c.target(), err)
		}
	}
	return nil
}

func (c *Check) target() string {
	if c.Range != "" {
		return c.Range
	}
	return c.Cell
}

func (c *Check) validate(sheet string) error {
	if (c.Cell == "") == (c.Range == "") {
		return fmt.Errorf("exactly one of cell or range is required")
	}
	a, err := c.area(sheet)
	if err != nil {
		return err
	}
	if n := a.size(); n > MaxRangeCells {
		return fmt.Errorf("range covers %d cells, limit is %d", n, MaxRangeCells)
	}
	switch c.Type {
	case TypeString, TypeInt, TypeFloat, TypeBool, TypeTime:
	default:
		return fmt.Errorf("unknown type %q", c.Type)
	}
	if len(c.Rules) == 0 {
		return fmt.Errorf("no rules defined")
	}
	for j, r := range c.Rules {
		if err := r.validate(c.Type); err != nil {
			return fmt.Errorf("rule %d: %v", j+1, err)
		}
	}
	return nil
}

func (r RuleDef) validate(typ string) error {
	switch r.Rule {
	case RuleNotNull, RuleNotEmpty, RuleNumericOnly, RuleDecimalOnly:
	case RuleContains:
		if len(r.Values) == 0 {
			return fmt.Errorf("contains requires values")
		}
		if err := checkValues(typ, r.Values); err != nil {
			return err
		}
	case RuleMust:
		if r.Expr == "" {
			return fmt.Errorf("must requires expr")
		}
		if err := xlrule.CompileExpression(r.Expr); err != nil {
			return fmt.Errorf("invalid expression %q: %v", r.Expr, err)
		}
	default:
		return fmt.Errorf("unknown rule %q", r.Rule)
	}
	return nil
}

// area is the rectangle of cells a check covers, bounds inclusive.
type area struct {
	sheet          string
	minRow, maxRow int
	minCol, maxCol int
}

func (a area) size() int {
	return (a.maxRow - a.minRow + 1) * (a.maxCol - a.minCol + 1)
}

// each calls fn for every cell in row-major order and stops at the first error.
func (a area) each(fn func(xlrule.Cell) error) error {
	for row := a.minRow; row <= a.maxRow; row++ {
		for col := a.minCol; col <= a.maxCol; col++ {
			cell, err := xlrule.CellAt(a.sheet, row, col)
			if err != nil {
				return err
			}
			if err := fn(cell); err != nil {
				return err
			}
		}
	}
	return nil
}

// area resolves the check's cell or range against sheet.
func (c *Check) area(sheet string) (area, error) {
	if c.Cell != "" {
		cell, err := xlrule.NewCell(sheet, c.Cell)
		if err != nil {
			return area{}, err
		}
		return area{sheet: cell.Sheet, minRow: cell.Row, maxRow: cell.Row, minCol: cell.Col, maxCol: cell.Col}, nil
	}

	first, last, ok := strings.Cut(c.Range, ":")
	if !ok {
		return area{}, fmt.Errorf("invalid range %q (missing ':')", c.Range)
	}
	from, err := xlrule.NewCell(sheet, first)
	if err != nil {
		return area{}, err
	}
	// The end of a range inherits the sheet of its start.
	to, err := xlrule.NewCell(from.Sheet, last)
	if err != nil {
		return area{}, err
	}
	if to.Sheet != from.Sheet {
		return area{}, fmt.Errorf("range %q spans sheets", c.Range)
	}
	return area{
		sheet:  from.Sheet,
		minRow: min(from.Row, to.Row),
		maxRow: max(from.Row, to.Row),
		minCol: min(from.Col, to.Col),
		maxCol: max(from.Col, to.Col),
	}, nil
}
