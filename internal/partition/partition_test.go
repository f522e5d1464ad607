package partition

import (
	"math"
	"testing"

	"github.com/go-sif/progressive"
	"github.com/go-sif/progressive/errors"
	"github.com/go-sif/progressive/schema"
	"github.com/stretchr/testify/require"
)

type evenPredicate struct{}

func (p evenPredicate) Test(row progressive.Row) bool {
	v, ok := row.GetFloat64(0)
	return ok && int(v)%2 == 0
}

func (p evenPredicate) String() string {
	return "even"
}

func createTestSchema() progressive.Schema {
	s := schema.CreateSchema()
	s.CreateField("num", &progressive.Float64FieldType{})
	s.CreateField("cat", &progressive.StringFieldType{})
	s.CreateField("count", &progressive.Int64FieldType{})
	return s
}

func TestAppendRowDataNormalizes(t *testing.T) {
	part := CreatePartition(4, createTestSchema())
	require.Nil(t, part.AppendRowData([]interface{}{1, "a", 2}))
	require.Nil(t, part.AppendRowData([]interface{}{nil, nil, int64(3)}))
	require.Equal(t, 2, part.GetNumRows())

	row := part.GetRow(0)
	require.Equal(t, float64(1), row.Get(0))
	require.Equal(t, int64(2), row.Get(2))
	require.True(t, part.GetRow(1).IsNil(0))
	require.True(t, part.GetRow(1).IsNil(1))

	v, err := row.GetByName("cat")
	require.Nil(t, err)
	require.Equal(t, "a", v)
	_, err = row.GetByName("nope")
	require.Equal(t, errors.UnknownFieldError{Name: "nope"}, err)
	require.Equal(t, "{num: 1, cat: a, count: 2}", row.ToString())
}

func TestAppendRowDataRejectsBadRows(t *testing.T) {
	part := CreatePartition(4, createTestSchema())
	require.Equal(t, errors.IncompatibleRowError{}, part.AppendRowData([]interface{}{1.0, "a"}))
	require.NotNil(t, part.AppendRowData([]interface{}{"x", "a", int64(1)}))
	require.NotNil(t, part.AppendRowData([]interface{}{1.0, 7, int64(1)}))
	require.Equal(t, 0, part.GetNumRows())
}

func TestGetFloat64TreatsNaNAsMissing(t *testing.T) {
	part := CreatePartition(1, createTestSchema())
	require.Nil(t, part.AppendRowData([]interface{}{math.NaN(), "a", int64(9)}))
	_, ok := part.GetRow(0).GetFloat64(0)
	require.False(t, ok)
	_, ok = part.GetRow(0).GetFloat64(1)
	require.False(t, ok)
	v, ok := part.GetRow(0).GetFloat64(2)
	require.True(t, ok)
	require.Equal(t, 9.0, v)
}

func TestFilterRows(t *testing.T) {
	part := CreatePartition(0, createTestSchema())
	for i := 0; i < 10; i++ {
		require.Nil(t, part.AppendRowData([]interface{}{float64(i), "a", int64(i)}))
	}
	require.Equal(t, part, part.FilterRows(nil))

	filtered := part.FilterRows(evenPredicate{})
	require.Equal(t, 5, filtered.GetNumRows())
	require.NotEqual(t, part.ID(), filtered.ID())
	var total float64
	err := filtered.ForEachRow(func(row progressive.Row) error {
		v, _ := row.GetFloat64(0)
		total += v
		return nil
	})
	require.Nil(t, err)
	require.Equal(t, 20.0, total)
	require.Equal(t, 10, part.GetNumRows())
}
