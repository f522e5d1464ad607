package errors

import (
	"fmt"
)

// NilValueError occurs when a value in a Row is null
type NilValueError struct{ Name string }

// Error returns a textual representation of this NilValueError
func (e NilValueError) Error() string {
	return fmt.Sprintf("Value for field %s is nil", e.Name)
}

// UnknownFieldError occurs when a field name does not resolve against a Dataset's Schema
type UnknownFieldError struct{ Name string }

// Error returns a textual representation of this UnknownFieldError
func (e UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q", e.Name)
}

// UnknownQueryTypeError occurs when a query submission carries an unrecognized type discriminator
type UnknownQueryTypeError struct{ Type string }

// Error returns a textual representation of this UnknownQueryTypeError
func (e UnknownQueryTypeError) Error() string {
	return fmt.Sprintf("unknown query type %q", e.Type)
}

// MalformedFilterError occurs when a filter description cannot be compiled into a Predicate
type MalformedFilterError struct{ Reason string }

// Error returns a textual representation of this MalformedFilterError
func (e MalformedFilterError) Error() string {
	return fmt.Sprintf("malformed filter: %s", e.Reason)
}

// InvalidQueryError occurs when a query submission is missing a parameter, or a parameter has the wrong type
type InvalidQueryError struct{ Reason string }

// Error returns a textual representation of this InvalidQueryError
func (e InvalidQueryError) Error() string {
	return fmt.Sprintf("invalid query: %s", e.Reason)
}

// InvalidBinSpecError occurs when a BinSpec is constructed with a non-positive bin count or invalid bounds
type InvalidBinSpecError struct {
	Start   float64
	End     float64
	NumBins int
}

// Error returns a textual representation of this InvalidBinSpecError
func (e InvalidBinSpecError) Error() string {
	return fmt.Sprintf("invalid bin spec (start=%v, end=%v, numBins=%d)", e.Start, e.End, e.NumBins)
}

// VariantMismatchError occurs when a partial result of one query shape is accumulated into a query of another
type VariantMismatchError struct {
	QueryID  string
	Expected string
	Actual   string
}

// Error returns a textual representation of this VariantMismatchError
func (e VariantMismatchError) Error() string {
	return fmt.Sprintf("query %s cannot accumulate a %s partial (expected %s)", e.QueryID, e.Actual, e.Expected)
}

// DuplicatePartialError occurs when a partial result arrives for a partition which has already been merged
type DuplicatePartialError struct {
	QueryID   string
	Partition int
}

// Error returns a textual representation of this DuplicatePartialError
func (e DuplicatePartialError) Error() string {
	return fmt.Sprintf("query %s has already accumulated partition %d", e.QueryID, e.Partition)
}

// UnknownQueryError occurs when a query id is not registered
type UnknownQueryError struct{ ID string }

// Error returns a textual representation of this UnknownQueryError
func (e UnknownQueryError) Error() string {
	return fmt.Sprintf("no such query %s", e.ID)
}

// IncompatibleRowError occurs when a Row's width does not match an expected Schema
type IncompatibleRowError struct{}

// Error returns a textual representation of this IncompatibleRowError
func (e IncompatibleRowError) Error() string {
	return "Row width is not compatible with Schema"
}

// UnknownPartitionError occurs when a partial result refers to a partition outside of a query's dataset
type UnknownPartitionError struct {
	QueryID   string
	Partition int
}

// Error returns a textual representation of this UnknownPartitionError
func (e UnknownPartitionError) Error() string {
	return fmt.Sprintf("query %s has no partition %d", e.QueryID, e.Partition)
}
