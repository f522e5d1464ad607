package jsonl

import (
	"context"
	"testing"

	"github.com/go-sif/progressive"
	"github.com/go-sif/progressive/datasource/memory"
	"github.com/go-sif/progressive/schema"
	"github.com/stretchr/testify/require"
)

func TestJSONLDatasourceParser(t *testing.T) {
	schema := schema.CreateSchema()
	schema.CreateField("name", &progressive.StringFieldType{})
	schema.CreateField("meta.index", &progressive.Int64FieldType{})
	schema.CreateField("meta.score", &progressive.Float64FieldType{})
	schema.CreateField("meta.active", &progressive.BoolFieldType{})

	parser := CreateParser(&ParserConf{})
	data := [][]byte{
		[]byte("{\"name\": \"Sean\", \"meta\": { \"index\": 1, \"score\": 0.5, \"active\": true}}\n\n{\"name\": \"Chris\", \"meta\": { \"index\": 3, \"score\": \"2.5\"}}"),
		[]byte("{\"name\": \"Phil\", \"meta\": { \"index\": 2, \"score\": null, \"active\": false}}\n{\"name\": \"Fahd\", \"meta\": { \"index\": 4}}"),
	}
	ds, err := memory.CreateDataSource(data, parser, schema)
	require.Nil(t, err)
	partitions := ds.ListPartitions()
	require.Len(t, partitions, 2)
	require.Equal(t, int64(2), partitions[0].NumRows)
	require.Equal(t, int64(2), partitions[1].NumRows)

	part, err := ds.ReadPartition(context.Background(), partitions[0], nil)
	require.Nil(t, err)
	row := part.GetRow(1)
	require.Equal(t, "Chris", row.Get(0))
	require.Equal(t, int64(3), row.Get(1))
	require.Equal(t, 2.5, row.Get(2))
	require.True(t, row.IsNil(3))

	part, err = ds.ReadPartition(context.Background(), partitions[1], nil)
	require.Nil(t, err)
	require.True(t, part.GetRow(0).IsNil(2))
	require.Equal(t, false, part.GetRow(0).Get(3))
}

func TestJSONLParserRejectsMistypedValues(t *testing.T) {
	schema := schema.CreateSchema()
	schema.CreateField("index", &progressive.Int64FieldType{})
	parser := CreateParser(&ParserConf{})
	_, err := memory.CreateDataSource([][]byte{[]byte(`{"index": 1.5}`)}, parser, schema)
	require.NotNil(t, err)
	_, err = memory.CreateDataSource([][]byte{[]byte(`{"index": 1`)}, parser, schema)
	require.NotNil(t, err)
}
