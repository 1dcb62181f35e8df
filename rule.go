package xlrule

import (
	"regexp"
	"slices"
	"strings"
)

// Rule decides whether a cell passes one check.
type Rule interface {
	IsValid() bool
}

// Checker is implemented by rules whose evaluation can fail for reasons other
// than the value being invalid, such as a parse error. RuleBuilder prefers
// Check over IsValid so those failures reach the caller unchanged.
type Checker interface {
	Check() (bool, error)
}

var (
	integerPattern = regexp.MustCompile(`^[+-]?\d+$`)
	decimalPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)
)

// RuleFunc is a zero-argument predicate rule.
type RuleFunc func() bool

func (f RuleFunc) IsValid() bool { return f() }

// NotNullRule passes when the raw value is present.
type NotNullRule struct {
	Value any
}

func (r NotNullRule) IsValid() bool { return r.Value != nil }

// NotEmptyRule passes when the raw value is present and not blank.
type NotEmptyRule struct {
	Value any
}

func (r NotEmptyRule) IsValid() bool {
	return r.Value != nil && strings.TrimSpace(rawText(r.Value)) != ""
}

// NumericOnlyRule passes when the raw value is absent or an integer.
type NumericOnlyRule struct {
	Value any
}

func (r NumericOnlyRule) IsValid() bool {
	if r.Value == nil {
		return true
	}
	return integerPattern.MatchString(strings.TrimSpace(rawText(r.Value)))
}

// DecimalOnlyRule passes when the raw value is absent or a decimal number.
type DecimalOnlyRule struct {
	Value any
}

func (r DecimalOnlyRule) IsValid() bool {
	if r.Value == nil {
		return true
	}
	return decimalPattern.MatchString(strings.TrimSpace(rawText(r.Value)))
}

// ExpressionRule applies a predicate to a value captured at registration.
type ExpressionRule[T any] struct {
	Value     T
	Predicate func(T) bool
}

func (r ExpressionRule[T]) IsValid() bool { return r.Predicate(r.Value) }

// ContainsRule passes when the parsed value is one of Allowed. The parser is
// consulted at evaluation time.
type ContainsRule[T comparable] struct {
	Allowed []T
	Parser  Parser[T]
}

func (r ContainsRule[T]) Check() (bool, error) {
	v, err := r.Parser.Get()
	if err != nil {
		return false, err
	}
	return slices.Contains(r.Allowed, v), nil
}

func (r ContainsRule[T]) IsValid() bool {
	ok, err := r.Check()
	return err == nil && ok
}

// evaluate runs a rule, preferring Checker when implemented.
func evaluate(r Rule) (bool, error) {
	if c, ok := r.(Checker); ok {
		return c.Check()
	}
	return r.IsValid(), nil
}
