package query

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyPartOf(t *testing.T) {
	require.True(t, KeyPartOf(nil).IsNull())
	require.True(t, KeyPartOf(math.NaN()).IsNull())
	require.True(t, KeyPartOf([]byte("x")).IsNull())
	require.Equal(t, KeyPartOf(0.0), KeyPartOf(math.Copysign(0, -1)))
	require.Equal(t, KeyPartOf(int64(3)), KeyPartOf(3))
	require.Equal(t, IntPart, KeyPartOf(3).Kind())
	require.Equal(t, "x", KeyPartOf("x").Value())
}

func TestGroupKeysAreComparable(t *testing.T) {
	counts := map[GroupKey]int{}
	counts[Key2(KeyPartOf("a"), KeyPartOf(math.NaN()))]++
	counts[Key2(KeyPartOf("a"), KeyPartOf(nil))]++
	counts[Key1(KeyPartOf("a"))]++
	require.Len(t, counts, 2)
	require.Equal(t, 2, counts[Key2(KeyPartOf("a"), NullKeyPart())])
}

func TestGroupKeyOrdering(t *testing.T) {
	keys := []GroupKey{
		Key1(KeyPartOf("b")),
		Key1(KeyPartOf(2.5)),
		Key1(KeyPartOf("a")),
		Key1(NullKeyPart()),
		Key1(KeyPartOf(-1.0)),
		Key1(KeyPartOf(true)),
		Key1(KeyPartOf(false)),
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	strs := make([]string, len(keys))
	for i, k := range keys {
		strs[i] = k.String()
	}
	require.Equal(t, []string{"(null)", "(false)", "(true)", "(-1)", "(2.5)", "(a)", "(b)"}, strs)
}

func TestKindFromType(t *testing.T) {
	for _, k := range []Kind{SelectKind, AggregateKind, Frequency1DKind, Frequency2DKind, Histogram1DKind, Histogram2DKind} {
		parsed, ok := KindFromType(k.String())
		require.True(t, ok)
		require.Equal(t, k, parsed)
	}
	_, ok := KindFromType("ScatterQuery")
	require.False(t, ok)
	require.Equal(t, 0, SelectKind.Priority())
	require.Equal(t, 1, Histogram2DKind.Priority())
}

func TestIDGenerator(t *testing.T) {
	var ids IDGenerator
	id, order := ids.Next()
	require.Equal(t, "Query1", id)
	require.Equal(t, int64(1), order)
	id, order = ids.Next()
	require.Equal(t, "Query2", id)
	require.Equal(t, int64(2), order)
}
