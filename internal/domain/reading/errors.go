package reading

import (
	"fmt"

	"nereus/pkg/errors"
)

// OutOfRangeError reports a sensor value outside the accepted bounds
type OutOfRangeError struct {
	Field string
	Value float64
	Min   float64
	Max   float64
}

// Error implements the error interface
func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s=%.2f outside accepted range [%.1f, %.1f]", e.Field, e.Value, e.Min, e.Max)
}

// Unwrap lets callers match via errors.Is(err, errors.ErrReadingOutOfRange)
func (e *OutOfRangeError) Unwrap() error {
	return errors.ErrReadingOutOfRange
}
