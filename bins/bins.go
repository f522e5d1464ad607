// Package bins defines the bucketing of numeric values used by histogram queries.
package bins

import (
	"math"

	"github.com/go-sif/progressive/errors"
)

// BinSpec divides the half-open interval [Start, End) into NumBins evenly spaced bins
type BinSpec struct {
	Start   float64
	End     float64
	NumBins int
}

// New creates a BinSpec, failing if numBins is not positive or the bounds are not finite and ordered
func New(start float64, end float64, numBins int) (BinSpec, error) {
	spec := BinSpec{Start: start, End: end, NumBins: numBins}
	if numBins <= 0 || math.IsNaN(start) || math.IsNaN(end) || math.IsInf(start, 0) || math.IsInf(end, 0) || end < start {
		return BinSpec{}, errors.InvalidBinSpecError{Start: start, End: end, NumBins: numBins}
	}
	return spec, nil
}

// Step returns the width of each bin
func (b BinSpec) Step() float64 {
	return (b.End - b.Start) / float64(b.NumBins)
}

// Edges returns the NumBins+1 bin boundaries, Start + Step*i
func (b BinSpec) Edges() []float64 {
	step := b.Step()
	edges := make([]float64, b.NumBins+1)
	for i := range edges {
		edges[i] = b.Start + step*float64(i)
	}
	return edges
}

// Edge returns the lower boundary of bin i (or End, for i == NumBins)
func (b BinSpec) Edge(i int) float64 {
	return b.Start + b.Step()*float64(i)
}

// Bin returns the index of the bin containing v, such that Edge(i) <= v < Edge(i+1).
// Values outside [Start, End), and NaN, fall in no bin.
func (b BinSpec) Bin(v float64) (int, bool) {
	if math.IsNaN(v) || v < b.Start || v >= b.End {
		return 0, false
	}
	step := b.Step()
	if step == 0 {
		return 0, false
	}
	i := int((v - b.Start) / step)
	// division may land one bin off near an edge; the edges are authoritative
	if i >= b.NumBins {
		i = b.NumBins - 1
	}
	if i > 0 && v < b.Edge(i) {
		i--
	} else if i < b.NumBins-1 && v >= b.Edge(i+1) {
		i++
	}
	return i, true
}
