package mart

import "strings"

// Operation is the calculation applied by a formula. The set is closed:
// rendering switches over it exhaustively, so a new operation is a
// compile-time change, not a string comparison.
type Operation int

// Formula operations.
const (
	// OpSum aggregates the primary operand group.
	OpSum Operation = iota
	// OpSubtract subtracts the secondary operand sums from the primary.
	OpSubtract
	// OpMultiply multiplies the primary operand sum by the secondary sums.
	OpMultiply
	// OpDivide divides the primary by the secondary, masking zero divisors to 0.
	OpDivide
	// OpAverage takes the arithmetic mean of the primary operand group.
	OpAverage
)

// String returns the canonical label for the operation.
func (o Operation) String() string {
	switch o {
	case OpSum:
		return "SUM"
	case OpSubtract:
		return "SUBTRACT"
	case OpMultiply:
		return "MULTIPLY"
	case OpDivide:
		return "DIVIDE"
	case OpAverage:
		return "AVERAGE"
	default:
		return "UNKNOWN"
	}
}

// ParseOperation maps a free-text logic label to an Operation.
// Returns the operation and true when the label is recognized, or
// (OpSum, false) when it is not. Upstream mapping tables carry
// hand-entered labels, so common shorthands are accepted.
func ParseOperation(s string) (Operation, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SUM", "ADD", "ADDITION", "TOTAL":
		return OpSum, true
	case "SUBTRACT", "SUB", "MINUS", "SUBTRACTION", "DIFFERENCE":
		return OpSubtract, true
	case "MULTIPLY", "MULT", "TIMES", "MULTIPLICATION":
		return OpMultiply, true
	case "DIVIDE", "DIV", "DIVISION", "RATIO":
		return OpDivide, true
	case "AVERAGE", "AVG", "MEAN":
		return OpAverage, true
	default:
		return OpSum, false
	}
}
