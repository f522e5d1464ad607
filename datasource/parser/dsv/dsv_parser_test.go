package dsv

import (
	"bytes"
	"testing"

	"github.com/go-sif/progressive"
	"github.com/go-sif/progressive/schema"
	"github.com/stretchr/testify/require"
)

func createTestSchema() progressive.Schema {
	s := schema.CreateSchema()
	s.CreateField("state", &progressive.StringFieldType{})
	s.CreateField("age", &progressive.Int64FieldType{})
	s.CreateField("income", &progressive.Float64FieldType{})
	s.CreateField("member", &progressive.BoolFieldType{})
	return s
}

func TestDSVParser(t *testing.T) {
	parser := CreateParser(&ParserConf{
		HeaderLines: 1,
		NilValue:    "null",
	})
	data := "state,age,income,member\nCA,34,52000.5,true\nNY,,null,false\n\"TX, north\",71,12,t\n"
	part, err := parser.Parse(bytes.NewBufferString(data), createTestSchema())
	require.Nil(t, err)
	require.Equal(t, 3, part.GetNumRows())

	row := part.GetRow(0)
	require.Equal(t, "CA", row.Get(0))
	require.Equal(t, int64(34), row.Get(1))
	require.Equal(t, 52000.5, row.Get(2))
	require.Equal(t, true, row.Get(3))

	row = part.GetRow(1)
	require.True(t, row.IsNil(1))
	require.True(t, row.IsNil(2))

	require.Equal(t, "TX, north", part.GetRow(2).Get(0))
}

func TestDSVParserDelimiter(t *testing.T) {
	parser := CreateParser(&ParserConf{Delimiter: '|', Comment: '#'})
	data := "# comment\nCA|1|2|false\n"
	part, err := parser.Parse(bytes.NewBufferString(data), createTestSchema())
	require.Nil(t, err)
	require.Equal(t, 1, part.GetNumRows())
	require.Equal(t, 2.0, part.GetRow(0).Get(2))
}

func TestDSVParserErrors(t *testing.T) {
	parser := CreateParser(&ParserConf{})
	_, err := parser.Parse(bytes.NewBufferString("CA,old,1,true\n"), createTestSchema())
	require.NotNil(t, err)
	_, err = parser.Parse(bytes.NewBufferString("CA,1,1\n"), createTestSchema())
	require.NotNil(t, err)
}

func TestDSVParserEmpty(t *testing.T) {
	parser := CreateParser(&ParserConf{HeaderLines: 1})
	part, err := parser.Parse(bytes.NewBufferString(""), createTestSchema())
	require.Nil(t, err)
	require.Equal(t, 0, part.GetNumRows())
}
