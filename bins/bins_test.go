package bins

import (
	"testing"

	"github.com/go-sif/progressive/errors"
	"github.com/stretchr/testify/require"
)

func TestEdges(t *testing.T) {
	spec, err := New(0, 10, 5)
	require.Nil(t, err)
	require.Equal(t, []float64{0, 2, 4, 6, 8, 10}, spec.Edges())
	require.Equal(t, 2.0, spec.Step())

	for _, n := range []int{1, 3, 7, 100} {
		spec, err := New(-1.5, 2.25, n)
		require.Nil(t, err)
		edges := spec.Edges()
		require.Len(t, edges, n+1)
		for i := 1; i < len(edges); i++ {
			require.True(t, edges[i] >= edges[i-1])
		}
	}
}

func TestInvalidBinSpecs(t *testing.T) {
	_, err := New(0, 10, 0)
	require.Equal(t, errors.InvalidBinSpecError{Start: 0, End: 10, NumBins: 0}, err)
	_, err = New(0, 10, -3)
	require.NotNil(t, err)
	_, err = New(10, 0, 3)
	require.NotNil(t, err)
}

func TestBinIsHalfOpen(t *testing.T) {
	spec, err := New(0, 10, 2)
	require.Nil(t, err)

	counts := make([]int, spec.NumBins)
	excluded := 0
	for _, v := range []float64{0, 4.9, 5, 9.9, 10} {
		if i, ok := spec.Bin(v); ok {
			counts[i]++
		} else {
			excluded++
		}
	}
	require.Equal(t, []int{2, 2}, counts)
	require.Equal(t, 1, excluded)

	// an internal edge belongs to the upper bin
	i, ok := spec.Bin(5)
	require.True(t, ok)
	require.Equal(t, 1, i)

	_, ok = spec.Bin(-0.0001)
	require.False(t, ok)
	_, ok = spec.Bin(10)
	require.False(t, ok)
	_, ok = spec.Bin(11)
	require.False(t, ok)
}

func TestBinEdgesWithInexactSteps(t *testing.T) {
	spec, err := New(0, 1, 10)
	require.Nil(t, err)
	for i, edge := range spec.Edges()[:spec.NumBins] {
		bin, ok := spec.Bin(edge)
		require.True(t, ok)
		require.Equal(t, i, bin, "edge %v", edge)
	}
}

func TestDegenerateBinSpec(t *testing.T) {
	spec, err := New(3, 3, 4)
	require.Nil(t, err)
	_, ok := spec.Bin(3)
	require.False(t, ok)
	require.Equal(t, []float64{3, 3, 3, 3, 3}, spec.Edges())
}
