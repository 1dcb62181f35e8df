package xlrule

import (
	"fmt"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

const (
	notationBegin = "${"
	notationEnd   = "}"
)

// programs caches compiled expressions by source text. Variables are left
// untyped so one program serves every cell regardless of the value's Go type.
var programs sync.Map

func compileProgram(expression string) (*vm.Program, error) {
	if cached, ok := programs.Load(expression); ok {
		return cached.(*vm.Program), nil
	}
	program, err := expr.Compile(expression, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, err
	}
	programs.Store(expression, program)
	return program, nil
}

// CompileExpression checks expression syntax without evaluating it.
func CompileExpression(expression string) error {
	_, err := compileProgram(expression)
	return err
}

func runExpression(expression string, env map[string]any) (any, error) {
	program, err := compileProgram(expression)
	if err != nil {
		return nil, fmt.Errorf("expression %q: %w", expression, err)
	}
	result, err := expr.Run(program, env)
	if err != nil {
		return nil, fmt.Errorf("run %q: %w", expression, err)
	}
	return result, nil
}

// cellEnv builds the variables visible to expressions.
func cellEnv(c Cell, raw, value any) map[string]any {
	return map[string]any{
		"address": c.Address,
		"sheet":   c.Sheet,
		"row":     c.Row,
		"col":     c.Col,
		"cell":    c.String(),
		"raw":     raw,
		"value":   value,
	}
}

// ExprRule evaluates a boolean expr-lang expression lazily. Env supplies the
// variables at evaluation time; a nil Env evaluates with no variables.
type ExprRule struct {
	Expression string
	Env        func() (map[string]any, error)
}

func (r ExprRule) Check() (bool, error) {
	env := map[string]any{}
	if r.Env != nil {
		var err error
		if env, err = r.Env(); err != nil {
			return false, err
		}
	}
	if r.Expression == "" {
		return false, nil
	}
	result, err := runExpression(r.Expression, env)
	if err != nil {
		return false, err
	}
	if result == nil {
		return false, nil
	}
	ok, isBool := result.(bool)
	if !isBool {
		return false, fmt.Errorf("expression %q returned %T, want bool", r.Expression, result)
	}
	return ok, nil
}

func (r ExprRule) IsValid() bool {
	ok, err := r.Check()
	return err == nil && ok
}

// expressionSegment is a part of a message template: literal text or an expression.
type expressionSegment struct {
	isExpression bool
	text         string
}

// parseExpressions splits "Got ${value}" into [{false, "Got "}, {true, "value"}].
func parseExpressions(value string) []expressionSegment {
	var segments []expressionSegment
	remaining := value

	for {
		startIdx := strings.Index(remaining, notationBegin)
		if startIdx < 0 {
			break
		}
		searchFrom := startIdx + len(notationBegin)
		endIdx := findMatchingEnd(remaining[searchFrom:])
		if endIdx < 0 {
			break
		}
		endIdx += searchFrom

		if startIdx > 0 {
			segments = append(segments, expressionSegment{text: remaining[:startIdx]})
		}
		segments = append(segments, expressionSegment{
			isExpression: true,
			text:         remaining[searchFrom:endIdx],
		})
		remaining = remaining[endIdx+len(notationEnd):]
	}

	if remaining != "" {
		segments = append(segments, expressionSegment{text: remaining})
	}
	return segments
}

// findMatchingEnd finds the closing delimiter, skipping nested pairs such as
// map literals inside an expression.
func findMatchingEnd(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}

// renderTemplate evaluates every ${...} segment and concatenates the result.
// Segments that fail to evaluate are rendered as the error text so the
// failure is still reported against the right cell.
func renderTemplate(template string, env map[string]any) string {
	var sb strings.Builder
	for _, seg := range parseExpressions(template) {
		if !seg.isExpression {
			sb.WriteString(seg.text)
			continue
		}
		v, err := runExpression(seg.text, env)
		switch {
		case err != nil:
			sb.WriteString("<" + err.Error() + ">")
		case v == nil:
		default:
			sb.WriteString(fmt.Sprint(v))
		}
	}
	return sb.String()
}
