package predicate

import (
	"math"
	"testing"

	"github.com/go-sif/progressive"
	"github.com/go-sif/progressive/errors"
	"github.com/go-sif/progressive/internal/partition"
	"github.com/go-sif/progressive/schema"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func createTestSchema() progressive.Schema {
	s := schema.CreateSchema()
	s.CreateField("age", &progressive.Int64FieldType{})
	s.CreateField("income", &progressive.Float64FieldType{})
	s.CreateField("state", &progressive.StringFieldType{})
	s.CreateField("member", &progressive.BoolFieldType{})
	return s
}

func row(s progressive.Schema, values ...interface{}) progressive.Row {
	return partition.CreateRow(s, values)
}

func TestBlankCompilesToNil(t *testing.T) {
	s := createTestSchema()
	pred, err := Compile("  ", s)
	require.Nil(t, err)
	require.Nil(t, pred)
	require.True(t, Test(pred, row(s, int64(1), 1.0, "CA", true)))

	pred, err = CompileResult(gjson.Parse(`{}`), s)
	require.Nil(t, err)
	require.Nil(t, pred)
}

func TestComparisons(t *testing.T) {
	s := createTestSchema()
	r := row(s, int64(34), 52000.5, "CA", true)
	cases := []struct {
		desc string
		want bool
	}{
		{`{"field":"age","op":">=","value":30}`, true},
		{`{"field":"age","op":"<","value":30}`, false},
		{`{"field":"age","op":"==","value":34}`, true},
		{`{"field":"income","op":">","value":52000}`, true},
		{`{"field":"income","op":"<=","value":52000}`, false},
		{`{"field":"state","op":"!=","value":"NY"}`, true},
		{`{"field":"state","op":"<","value":"D"}`, true},
		{`{"field":"member","op":"==","value":true}`, true},
		{`{"field":"member","op":"!=","value":true}`, false},
		{`{"field":"state","op":"in","values":["NY","CA"]}`, true},
		{`{"field":"age","op":"notin","values":[33,35]}`, true},
		{`{"field":"age","op":"isnull"}`, false},
		{`{"field":"age","op":"notnull"}`, true},
	}
	for _, c := range cases {
		pred, err := Compile(c.desc, s)
		require.Nil(t, err, c.desc)
		require.Equal(t, c.want, pred.Test(r), c.desc)
	}
}

func TestCombinators(t *testing.T) {
	s := createTestSchema()
	pred, err := Compile(`{"and":[
		{"field":"age","op":">=","value":30},
		{"or":[{"field":"state","op":"==","value":"CA"},{"field":"state","op":"==","value":"NY"}]},
		{"not":{"field":"member","op":"==","value":false}}
	]}`, s)
	require.Nil(t, err)
	require.True(t, pred.Test(row(s, int64(31), 1.0, "NY", true)))
	require.False(t, pred.Test(row(s, int64(29), 1.0, "NY", true)))
	require.False(t, pred.Test(row(s, int64(31), 1.0, "TX", true)))
	require.False(t, pred.Test(row(s, int64(31), 1.0, "CA", false)))
}

func TestNullsFailComparisons(t *testing.T) {
	s := createTestSchema()
	missing := row(s, nil, math.NaN(), nil, nil)
	for _, desc := range []string{
		`{"field":"age","op":"!=","value":1}`,
		`{"field":"income","op":"<","value":1e9}`,
		`{"field":"state","op":"notin","values":["CA"]}`,
		`{"field":"member","op":"!=","value":true}`,
	} {
		pred, err := Compile(desc, s)
		require.Nil(t, err, desc)
		require.False(t, pred.Test(missing), desc)
	}
	pred, err := Compile(`{"field":"income","op":"isnull"}`, s)
	require.Nil(t, err)
	require.True(t, pred.Test(missing))
}

func TestNotOfUnknownIsUnknown(t *testing.T) {
	s := createTestSchema()
	missing := row(s, nil, math.NaN(), nil, nil)
	present := row(s, int64(2), 1.0, "CA", false)
	cases := []struct {
		desc        string
		wantMissing bool
		wantPresent bool
	}{
		{`{"not":{"field":"age","op":"==","value":1}}`, false, true},
		{`{"field":"age","op":"!=","value":1}`, false, true},
		{`{"not":{"field":"state","op":"in","values":["NY"]}}`, false, true},
		{`{"not":{"not":{"field":"income","op":">","value":0}}}`, false, true},
		{`{"not":{"field":"age","op":"isnull"}}`, false, true},
		{`{"or":[{"field":"age","op":"==","value":1},{"field":"age","op":"isnull"}]}`, true, false},
		{`{"not":{"and":[{"field":"age","op":"==","value":1},{"field":"member","op":"==","value":true}]}}`, false, true},
		{`{"not":{"and":[{"field":"age","op":"==","value":2},{"field":"state","op":"==","value":"CA"}]}}`, false, false},
	}
	for _, c := range cases {
		pred, err := Compile(c.desc, s)
		require.Nil(t, err, c.desc)
		require.Equal(t, c.wantMissing, pred.Test(missing), c.desc)
		require.Equal(t, c.wantPresent, pred.Test(present), c.desc)
	}

	// a false child decides AND, and a true child decides OR, even beside an unknown one
	partial := row(s, nil, 1.0, "CA", nil)
	pred, err := Compile(`{"not":{"and":[{"field":"age","op":"==","value":1},{"field":"state","op":"==","value":"NY"}]}}`, s)
	require.Nil(t, err)
	require.True(t, pred.Test(partial))
	pred, err = Compile(`{"or":[{"field":"age","op":"==","value":1},{"field":"state","op":"==","value":"CA"}]}`, s)
	require.Nil(t, err)
	require.True(t, pred.Test(partial))
}

func TestIntegerLiteralsCompareExactly(t *testing.T) {
	s := createTestSchema()
	big := row(s, int64(9007199254740993), 1.0, "CA", true)
	neighbour := row(s, int64(9007199254740992), 1.0, "CA", true)

	pred, err := Compile(`{"field":"age","op":"==","value":9007199254740993}`, s)
	require.Nil(t, err)
	require.True(t, pred.Test(big))
	require.False(t, pred.Test(neighbour))
	require.Equal(t, "age == 9007199254740993", pred.String())

	pred, err = Compile(`{"field":"age","op":">","value":9007199254740992}`, s)
	require.Nil(t, err)
	require.True(t, pred.Test(big))
	require.False(t, pred.Test(neighbour))

	pred, err = Compile(`{"field":"age","op":"in","values":[9007199254740993, 4]}`, s)
	require.Nil(t, err)
	require.True(t, pred.Test(big))
	require.False(t, pred.Test(neighbour))

	pred, err = Compile(`{"field":"age","op":"<","value":30.5}`, s)
	require.Nil(t, err)
	require.True(t, pred.Test(row(s, int64(30), 1.0, "CA", true)))
	require.False(t, pred.Test(row(s, int64(31), 1.0, "CA", true)))
	pred, err = Compile(`{"field":"age","op":"in","values":[30.5]}`, s)
	require.Nil(t, err)
	require.False(t, pred.Test(row(s, int64(30), 1.0, "CA", true)))
}

func TestMalformedFilters(t *testing.T) {
	s := createTestSchema()
	for _, desc := range []string{
		`{"field":"age"`,
		`{"field":"age","op":"~","value":1}`,
		`{"field":"age","op":"==","value":"thirty"}`,
		`{"field":"state","op":"==","value":3}`,
		`{"field":"member","op":"<","value":true}`,
		`{"field":"age","op":"=="}`,
		`{"field":"age","op":"in","value":1}`,
		`{"and":[]}`,
		`{"or":{"field":"age","op":"isnull"}}`,
		`{"something":"else"}`,
		`{"field":"age","op":"==","value":1,"and":[{"field":"age","op":">","value":0}]}`,
		`{"and":[{"field":"age","op":"isnull"}],"or":[{"field":"age","op":"notnull"}]}`,
		`{"not":{"field":"age","op":"isnull"},"field":"state","op":"isnull"}`,
		`{"field":"age","op":"==","value":1,"limit":3}`,
		`[1,2]`,
	} {
		_, err := Compile(desc, s)
		require.NotNil(t, err, desc)
		require.IsType(t, errors.MalformedFilterError{}, err, desc)
	}
}

func TestUnknownField(t *testing.T) {
	_, err := Compile(`{"field":"height","op":">","value":1}`, createTestSchema())
	require.NotNil(t, err)
	require.IsType(t, errors.UnknownFieldError{}, err)
}

func TestCanonicalString(t *testing.T) {
	s := createTestSchema()
	a, err := Compile(`{"and":[{"field":"age","op":"gte","value":30},{"field":"state","op":"in","values":["CA","NY"]}]}`, s)
	require.Nil(t, err)
	b, err := CompileResult(gjson.Parse(`{ "and" : [ {"op":">=", "field":"age", "value":30.0}, {"field":"state", "values":["CA", "NY"], "op":"IN"} ] }`), s)
	require.Nil(t, err)
	require.Equal(t, `(age >= 30 AND state IN ["CA", "NY"])`, a.String())
	require.Equal(t, a.String(), b.String())
}

func TestFilterDescriptionAsJSONString(t *testing.T) {
	s := createTestSchema()
	pred, err := CompileResult(gjson.Parse(`"{\"field\":\"age\",\"op\":\"<\",\"value\":18}"`), s)
	require.Nil(t, err)
	require.True(t, pred.Test(row(s, int64(12), nil, nil, nil)))
}
