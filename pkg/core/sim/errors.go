package sim

import "fmt"

// InvariantError signals a state the payment logic should make impossible,
// e.g. cumulative payments past the cap despite truncation. It aborts the
// run and is reported as a defect, never silently corrected.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string { return "internal invariant violation: " + e.Msg }

func invariantf(format string, args ...interface{}) *InvariantError {
	return &InvariantError{Msg: fmt.Sprintf(format, args...)}
}
