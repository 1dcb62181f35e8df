package xlrule

// Message formats the error text for a failed rule. It runs only on failure.
type Message func(c Cell) string

// ValueMessage is a Message that also receives the parsed value.
type ValueMessage[T any] func(c Cell, value T) string

func defaultMessage(suffix string) Message {
	return func(c Cell) string { return c.Address + " " + suffix }
}

var (
	msgNotContains = defaultMessage("is not contains.")
	msgNotNull     = defaultMessage("is not null.")
	msgNotNumeric  = defaultMessage("is not numeric.")
	msgNotDecimal  = defaultMessage("is not decimal.")
	msgNotEmpty    = defaultMessage("is not empty.")
	msgInvalid     = defaultMessage("is invalid.")
	msgInvalidRule = defaultMessage("is invalid rule.")
	msgInvalidExpr = defaultMessage("is invalid expression.")
)
