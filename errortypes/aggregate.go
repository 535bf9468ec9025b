package errortypes

import (
	"fmt"
	"strings"
)

// AggregateErrors collects the problems found in one validation pass, such as the host
// configuration checks in config.New, so they can be reported together.
type AggregateErrors struct {
	Message string
	Errors  []error
}

// NewAggregateErrors groups errs under msg.
func NewAggregateErrors(msg string, errs []error) AggregateErrors {
	return AggregateErrors{
		Message: msg,
		Errors:  errs,
	}
}

// Error lists every grouped error on its own numbered line. It is empty when there is
// nothing to report.
func (e AggregateErrors) Error() string {
	if len(e.Errors) == 0 {
		return ""
	}

	var b strings.Builder
	if len(e.Errors) == 1 {
		fmt.Fprintf(&b, "%s (1 error):\n", e.Message)
	} else {
		fmt.Fprintf(&b, "%s (%d errors):\n", e.Message, len(e.Errors))
	}
	for i, err := range e.Errors {
		fmt.Fprintf(&b, "  %d: %s\n", i+1, err.Error())
	}
	return b.String()
}

// Unwrap exposes the grouped errors to errors.Is and errors.As.
func (e AggregateErrors) Unwrap() []error {
	return e.Errors
}
