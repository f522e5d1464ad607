package progressive

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFieldTypeFromName(t *testing.T) {
	for name, expected := range map[string]string{
		"":             "string",
		"nominal":      "string",
		"Quantitative": "float64",
		"numeric":      "float64",
		"int":          "int64",
		"boolean":      "bool",
	} {
		ft, err := FieldTypeFromName(name)
		require.Nil(t, err, name)
		require.Equal(t, expected, ft.Name(), name)
	}
	_, err := FieldTypeFromName("geo")
	require.NotNil(t, err)
}

func TestParse(t *testing.T) {
	v, err := (&Float64FieldType{}).Parse(" 1.5")
	require.Nil(t, err)
	require.Equal(t, 1.5, v)
	v, err = (&Int64FieldType{}).Parse("42")
	require.Nil(t, err)
	require.Equal(t, int64(42), v)
	_, err = (&Int64FieldType{}).Parse("4.2")
	require.NotNil(t, err)
	v, err = (&BoolFieldType{}).Parse("true")
	require.Nil(t, err)
	require.Equal(t, true, v)
	require.Equal(t, "42", (&Int64FieldType{}).ToString(int64(42)))
}

func TestToFloat64(t *testing.T) {
	f, ok := ToFloat64(int64(3))
	require.True(t, ok)
	require.Equal(t, 3.0, f)
	_, ok = ToFloat64(math.NaN())
	require.False(t, ok)
	_, ok = ToFloat64(nil)
	require.False(t, ok)
	_, ok = ToFloat64("3")
	require.False(t, ok)
	require.True(t, IsNumeric(&Int64FieldType{}))
	require.False(t, IsNumeric(nil))
}
