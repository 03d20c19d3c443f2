package mood

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrOutOfRange is returned when a level or range bound falls outside [MinLevel, MaxLevel].
	ErrOutOfRange = errors.New("value out of range")

	// ErrInvalidArgument is returned for caller mistakes such as a non-positive limit.
	ErrInvalidArgument = errors.New("invalid argument")
)

// OutOfRangeError describes which field was out of bounds.
type OutOfRangeError struct {
	Field string
	Value int
	Min   int
	Max   int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s %d out of range [%d, %d]", e.Field, e.Value, e.Min, e.Max)
}

func (e *OutOfRangeError) Is(target error) bool {
	return target == ErrOutOfRange
}

// InvalidArgumentError describes a rejected argument.
type InvalidArgumentError struct {
	Field  string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// InvalidArgument builds an InvalidArgumentError.
func InvalidArgument(field, reason string) error {
	return &InvalidArgumentError{Field: field, Reason: reason}
}

func checkLevel(field string, v, lo, hi int) error {
	if v < lo || v > hi {
		return &OutOfRangeError{Field: field, Value: v, Min: lo, Max: hi}
	}
	return nil
}
