package file

import (
	"fmt"

	"github.com/go-sif/progressive"
	"github.com/go-sif/progressive/schema"
	"github.com/tidwall/gjson"
)

// Metadata describes a partitioned dataset directory. It is stored as JSON:
//
//	{
//	  "header": [{"name": "age", "type": "integer"}, {"name": "state"}],
//	  "output_files": [{"path": "batch_0.csv", "num_rows": 1000}, ...]
//	}
//
// Partitions are indexed by their position within output_files.
type Metadata struct {
	Schema     progressive.Schema
	Partitions []progressive.PartitionInfo
	NumRows    int64
}

// ParseMetadata parses the contents of a metadata.json file
func ParseMetadata(data []byte) (*Metadata, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("dataset metadata is not valid JSON")
	}
	doc := gjson.ParseBytes(data)
	header := doc.Get("header")
	if !header.IsArray() {
		return nil, fmt.Errorf("dataset metadata has no header")
	}
	s := schema.CreateSchema()
	for i, entry := range header.Array() {
		name, typeName := entry.String(), ""
		if entry.IsObject() {
			name, typeName = entry.Get("name").String(), entry.Get("type").String()
		}
		if len(name) == 0 {
			return nil, fmt.Errorf("header entry %d has no name", i)
		}
		fieldType, err := progressive.FieldTypeFromName(typeName)
		if err != nil {
			return nil, fmt.Errorf("header entry %s: %w", name, err)
		}
		if _, err := s.CreateField(name, fieldType); err != nil {
			return nil, err
		}
	}
	outputFiles := doc.Get("output_files")
	if !outputFiles.IsArray() {
		return nil, fmt.Errorf("dataset metadata has no output_files")
	}
	meta := &Metadata{Schema: s}
	for i, entry := range outputFiles.Array() {
		path := entry.Get("path")
		if path.Type != gjson.String || len(path.Str) == 0 {
			return nil, fmt.Errorf("output file %d has no path", i)
		}
		numRows := entry.Get("num_rows")
		if numRows.Type != gjson.Number || numRows.Int() < 0 {
			return nil, fmt.Errorf("output file %s has no valid num_rows", path.Str)
		}
		meta.Partitions = append(meta.Partitions, progressive.PartitionInfo{
			Index:   i,
			Path:    path.Str,
			NumRows: numRows.Int(),
		})
		meta.NumRows += numRows.Int()
	}
	return meta, nil
}
