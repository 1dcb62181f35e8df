package xlrule

import "time"

// entry pairs a rule with the deferred text reported when it fails.
type entry struct {
	rule    Rule
	message func() string
}

// RuleBuilder accumulates rules for one cell and evaluates them in
// declaration order when Get is called. Chained methods mutate and return the
// same builder. A builder is meant for a single caller and a single cell.
type RuleBuilder[T comparable] struct {
	cell    Cell
	raw     any
	parser  Parser[T]
	entries []entry
	err     error
}

// NewRuleBuilder reads the source's raw value once and binds the parser.
// A read failure is kept and returned by Get.
func NewRuleBuilder[T comparable](src Source, parser Parser[T]) *RuleBuilder[T] {
	raw, err := src.Raw()
	return &RuleBuilder[T]{
		cell:   src.Cell(),
		raw:    raw,
		parser: parser,
		err:    err,
	}
}

// Int starts a rule chain for an integer cell.
func Int(src Source) *RuleBuilder[int] { return NewRuleBuilder(src, IntParser(src)) }

// Float starts a rule chain for a decimal cell.
func Float(src Source) *RuleBuilder[float64] { return NewRuleBuilder(src, FloatParser(src)) }

// String starts a rule chain for a text cell.
func String(src Source) *RuleBuilder[string] { return NewRuleBuilder(src, StringParser(src)) }

// Bool starts a rule chain for a boolean cell.
func Bool(src Source) *RuleBuilder[bool] { return NewRuleBuilder(src, BoolParser(src)) }

// Time starts a rule chain for a date cell.
func Time(src Source) *RuleBuilder[time.Time] { return NewRuleBuilder(src, TimeParser(src)) }

// Cell returns the cell this builder validates.
func (b *RuleBuilder[T]) Cell() Cell { return b.cell }

// Err returns the error recorded while building the chain, if any. It is set
// by a failed source read or by the eager parse in Must.
func (b *RuleBuilder[T]) Err() error { return b.err }

func (b *RuleBuilder[T]) add(r Rule, m Message) *RuleBuilder[T] {
	if b.err != nil {
		return b
	}
	b.entries = append(b.entries, entry{
		rule:    r,
		message: func() string { return m(b.cell) },
	})
	return b
}

// Contains requires the parsed value to be one of values.
func (b *RuleBuilder[T]) Contains(values ...T) *RuleBuilder[T] {
	return b.add(ContainsRule[T]{Allowed: values, Parser: b.parser}, msgNotContains)
}

// NotNull requires the cell to have a value.
func (b *RuleBuilder[T]) NotNull() *RuleBuilder[T] {
	return b.add(NotNullRule{Value: b.raw}, msgNotNull)
}

// NumericOnly requires the value, when present, to be an integer.
func (b *RuleBuilder[T]) NumericOnly() *RuleBuilder[T] {
	return b.add(NumericOnlyRule{Value: b.raw}, msgNotNumeric)
}

// DecimalOnly requires the value, when present, to be a decimal number.
func (b *RuleBuilder[T]) DecimalOnly() *RuleBuilder[T] {
	return b.add(DecimalOnlyRule{Value: b.raw}, msgNotDecimal)
}

// NotEmpty requires the value to be present and not blank.
func (b *RuleBuilder[T]) NotEmpty() *RuleBuilder[T] {
	return b.add(NotEmptyRule{Value: b.raw}, msgNotEmpty)
}

// Must registers a predicate over the parsed value. Unlike the other rules the
// value is parsed now, at registration. A parse failure is recorded
// immediately (see Err) and the rest of the chain becomes a no-op.
func (b *RuleBuilder[T]) Must(predicate func(T) bool) *RuleBuilder[T] {
	if b.err != nil {
		return b
	}
	v, err := b.parser.Get()
	if err != nil {
		b.err = err
		return b
	}
	return b.add(ExpressionRule[T]{Value: v, Predicate: predicate}, msgInvalid)
}

// MustHold registers a zero-argument predicate evaluated at Get time.
func (b *RuleBuilder[T]) MustHold(predicate func() bool) *RuleBuilder[T] {
	return b.add(RuleFunc(predicate), msgInvalid)
}

// MustSatisfy registers a caller-supplied rule.
func (b *RuleBuilder[T]) MustSatisfy(r Rule) *RuleBuilder[T] {
	return b.add(r, msgInvalidRule)
}

// MustExpr registers an expr-lang condition such as "value > 0 && value < 10".
// The expression sees value, raw, address, sheet, row, col and cell.
func (b *RuleBuilder[T]) MustExpr(expression string) *RuleBuilder[T] {
	return b.add(ExprRule{
		Expression: expression,
		Env: func() (map[string]any, error) {
			v, err := b.parser.Get()
			if err != nil {
				return nil, err
			}
			return cellEnv(b.cell, b.raw, v), nil
		},
	}, msgInvalidExpr)
}

// WithMessage replaces the message of the most recently added rule.
// It is a no-op when no rule has been added.
func (b *RuleBuilder[T]) WithMessage(m Message) *RuleBuilder[T] {
	return b.setMessage(func() string { return m(b.cell) })
}

// WithValueMessage is WithMessage with access to the parsed value. The zero
// value is passed when the cell cannot be parsed.
func (b *RuleBuilder[T]) WithValueMessage(m ValueMessage[T]) *RuleBuilder[T] {
	return b.setMessage(func() string {
		return m(b.cell, b.valueOrZero())
	})
}

// WithMessageExpr sets a message template with ${...} expressions, e.g.
// "${address} must be positive, got ${value}".
func (b *RuleBuilder[T]) WithMessageExpr(template string) *RuleBuilder[T] {
	return b.setMessage(func() string {
		var value any
		if v, err := b.parser.Get(); err == nil {
			value = v
		}
		return renderTemplate(template, cellEnv(b.cell, b.raw, value))
	})
}

func (b *RuleBuilder[T]) setMessage(fn func() string) *RuleBuilder[T] {
	if len(b.entries) > 0 {
		b.entries[len(b.entries)-1].message = fn
	}
	return b
}

func (b *RuleBuilder[T]) valueOrZero() T {
	v, err := b.parser.Get()
	if err != nil {
		var zero T
		return zero
	}
	return v
}

// Get evaluates the rules in order and stops at the first failure, returning
// a *ValidationError with that rule's message. When every rule passes it
// returns the parsed value. Errors from the parser propagate unchanged.
func (b *RuleBuilder[T]) Get() (T, error) {
	var zero T
	if b.err != nil {
		return zero, b.err
	}
	for _, e := range b.entries {
		ok, err := evaluate(e.rule)
		if err != nil {
			return zero, err
		}
		if !ok {
			return zero, &ValidationError{Cell: b.cell, Message: e.message()}
		}
	}
	return b.parser.Get()
}
