// Package memory provides a Dataset whose partitions are held in memory
package memory

import (
	"fmt"

	"github.com/go-sif/progressive"
	"github.com/go-sif/progressive/datasource"
)

// DataSource is a Dataset whose partitions are buffers of raw data, parsed when read,
// or blocks of rows built in advance
type DataSource struct {
	data       [][]byte
	parser     progressive.DataSourceParser
	built      []progressive.BuildablePartition
	schema     progressive.Schema
	partitions []progressive.PartitionInfo
}

// CreateDataSource is a factory for DataSources over raw partition buffers, each of which is parsed
// by parser when read. Row counts are established by parsing each buffer once, up front.
func CreateDataSource(data [][]byte, parser progressive.DataSourceParser, schema progressive.Schema) (*DataSource, error) {
	source := &DataSource{data: data, parser: parser, schema: schema}
	for i := range data {
		part, err := source.parse(i)
		if err != nil {
			return nil, err
		}
		source.partitions = append(source.partitions, progressive.PartitionInfo{
			Index:   i,
			Path:    fmt.Sprintf("memory:%d", i),
			NumRows: int64(part.GetNumRows()),
		})
	}
	return source, nil
}

// CreateDataSourceFromRows is a factory for DataSources over partitions of literal row values
func CreateDataSourceFromRows(schema progressive.Schema, partitions ...[][]interface{}) (*DataSource, error) {
	source := &DataSource{schema: schema}
	for i, rows := range partitions {
		part := datasource.CreateBuildablePartition(len(rows), schema)
		for _, row := range rows {
			if err := part.AppendRowData(row); err != nil {
				return nil, fmt.Errorf("partition %d: %w", i, err)
			}
		}
		source.built = append(source.built, part)
		source.partitions = append(source.partitions, progressive.PartitionInfo{
			Index:   i,
			Path:    fmt.Sprintf("memory:%d", i),
			NumRows: int64(len(rows)),
		})
	}
	return source, nil
}

// ListPartitions returns all partitions, ordered by Index
func (ds *DataSource) ListPartitions() []progressive.PartitionInfo {
	result := make([]progressive.PartitionInfo, len(ds.partitions))
	copy(result, ds.partitions)
	return result
}

// Schema returns the Schema of this DataSource
func (ds *DataSource) Schema() progressive.Schema {
	return ds.schema
}

// FieldByName looks up a Field of this DataSource
func (ds *DataSource) FieldByName(name string) (progressive.Field, error) {
	return ds.schema.FieldByName(name)
}
