// Package accumulators provides AggregateValue, the partial statistic merged by progressive queries.
package accumulators

import (
	"encoding/binary"
	"fmt"
	"math"
)

// serializedSize is the size in bytes of a serialized AggregateValue
const serializedSize = 6 * 8

// AggregateValue is a sufficient statistic for count, mean, variance and extrema over
// a set of numeric rows, plus a count of rows whose value was missing.
// AggregateValues for disjoint sets of rows Merge into the AggregateValue for their union.
// The zero value describes the empty set, and is the identity of Merge.
type AggregateValue struct {
	Sum        float64
	SumSquares float64
	Count      uint64
	Min        float64 // meaningless when Count == 0
	Max        float64 // meaningless when Count == 0
	NullCount  uint64
}

// Counted returns an AggregateValue carrying only a row count, as produced by frequency and histogram queries
func Counted(n uint64) AggregateValue {
	return AggregateValue{Count: n}
}

// Of returns the AggregateValue of a single observation
func Of(v float64) AggregateValue {
	return AggregateValue{Sum: v, SumSquares: v * v, Count: 1, Min: v, Max: v}
}

// Observe adds a single value to this AggregateValue
func (a *AggregateValue) Observe(v float64) {
	*a = Merge(*a, Of(v))
}

// ObserveNull records a missing value
func (a *AggregateValue) ObserveNull() {
	a.NullCount++
}

// Merge combines AggregateValues for two disjoint sets of rows. It is commutative and associative,
// and the zero AggregateValue is its identity: the extrema of an operand with no values are ignored.
func Merge(a AggregateValue, b AggregateValue) AggregateValue {
	result := AggregateValue{
		Sum:        a.Sum + b.Sum,
		SumSquares: a.SumSquares + b.SumSquares,
		Count:      a.Count + b.Count,
		NullCount:  a.NullCount + b.NullCount,
	}
	switch {
	case a.Count == 0 && b.Count == 0:
		// no extrema
	case a.Count == 0:
		result.Min, result.Max = b.Min, b.Max
	case b.Count == 0:
		result.Min, result.Max = a.Min, a.Max
	default:
		result.Min = math.Min(a.Min, b.Min)
		result.Max = math.Max(a.Max, b.Max)
	}
	return result
}

// IsEmpty returns true iff this AggregateValue describes no rows at all
func (a AggregateValue) IsEmpty() bool {
	return a.Count == 0 && a.NullCount == 0
}

// Mean returns the arithmetic mean of the observed values, or NaN if there are none
func (a AggregateValue) Mean() float64 {
	if a.Count == 0 {
		return math.NaN()
	}
	return a.Sum / float64(a.Count)
}

// Variance returns the population variance of the observed values, or NaN if there are none
func (a AggregateValue) Variance() float64 {
	if a.Count == 0 {
		return math.NaN()
	}
	mean := a.Mean()
	variance := a.SumSquares/float64(a.Count) - mean*mean
	if variance < 0 {
		// rounding on near-constant data
		return 0
	}
	return variance
}

// Stddev returns the population standard deviation of the observed values, or NaN if there are none
func (a AggregateValue) Stddev() float64 {
	return math.Sqrt(a.Variance())
}

// ToBytes serializes this AggregateValue
func (a AggregateValue) ToBytes() []byte {
	buff := make([]byte, serializedSize)
	binary.LittleEndian.PutUint64(buff[0:], math.Float64bits(a.Sum))
	binary.LittleEndian.PutUint64(buff[8:], math.Float64bits(a.SumSquares))
	binary.LittleEndian.PutUint64(buff[16:], a.Count)
	binary.LittleEndian.PutUint64(buff[24:], math.Float64bits(a.Min))
	binary.LittleEndian.PutUint64(buff[32:], math.Float64bits(a.Max))
	binary.LittleEndian.PutUint64(buff[40:], a.NullCount)
	return buff
}

// FromBytes produces an AggregateValue from serialized data
func FromBytes(buff []byte) (AggregateValue, error) {
	if len(buff) != serializedSize {
		return AggregateValue{}, fmt.Errorf("Serialized AggregateValue must be %d bytes, was %d", serializedSize, len(buff))
	}
	return AggregateValue{
		Sum:        math.Float64frombits(binary.LittleEndian.Uint64(buff[0:])),
		SumSquares: math.Float64frombits(binary.LittleEndian.Uint64(buff[8:])),
		Count:      binary.LittleEndian.Uint64(buff[16:]),
		Min:        math.Float64frombits(binary.LittleEndian.Uint64(buff[24:])),
		Max:        math.Float64frombits(binary.LittleEndian.Uint64(buff[32:])),
		NullCount:  binary.LittleEndian.Uint64(buff[40:]),
	}, nil
}
