package partition

import (
	"fmt"
	"log"

	"github.com/go-sif/progressive"
	"github.com/go-sif/progressive/errors"
	uuid "github.com/gofrs/uuid"
)

const defaultCapacity = 128

// partitionImpl is the in-memory implementation of Partition: a block of
// Rows loaded from one partition of a Dataset.
type partitionImpl struct {
	id     string
	rows   [][]interface{}
	schema progressive.Schema
}

// createPartitionImpl creates a new, empty Partition for a schema
func createPartitionImpl(initialCapacity int, schema progressive.Schema) *partitionImpl {
	id, err := uuid.NewV4()
	if err != nil {
		log.Fatalf("failed to generate UUID for Partition: %v", err)
	}
	if initialCapacity <= 0 {
		initialCapacity = defaultCapacity
	}
	return &partitionImpl{
		id:     id.String(),
		rows:   make([][]interface{}, 0, initialCapacity),
		schema: schema,
	}
}

// CreatePartition creates a new, empty Partition for a schema
func CreatePartition(initialCapacity int, schema progressive.Schema) progressive.BuildablePartition {
	return createPartitionImpl(initialCapacity, schema)
}

// ID retrieves the ID of this Partition
func (p *partitionImpl) ID() string {
	return p.id
}

// GetNumRows retrieves the number of rows in this Partition
func (p *partitionImpl) GetNumRows() int {
	return len(p.rows)
}

// GetRow retrieves a specific row from this Partition
func (p *partitionImpl) GetRow(rowNum int) progressive.Row {
	return &rowImpl{values: p.rows[rowNum], schema: p.schema}
}

// ForEachRow iterates over Rows in a Partition. The Row passed to fn is reused, and must not be retained.
func (p *partitionImpl) ForEachRow(fn progressive.RowOperation) error {
	row := &rowImpl{schema: p.schema}
	for _, values := range p.rows {
		row.values = values
		if err := fn(row); err != nil {
			return err
		}
	}
	return nil
}

// AppendRowData adds a Row to the end of this Partition, normalizing its values to the schema's field types
func (p *partitionImpl) AppendRowData(values []interface{}) error {
	if len(values) != p.schema.NumFields() {
		return errors.IncompatibleRowError{}
	}
	fields := p.schema.Fields()
	normalized := make([]interface{}, len(values))
	for i, v := range values {
		nv, err := normalizeValue(fields[i].Type(), v)
		if err != nil {
			return fmt.Errorf("field %s: %w", fields[i].Name(), err)
		}
		normalized[i] = nv
	}
	p.rows = append(p.rows, normalized)
	return nil
}

// FilterRows produces a new Partition containing only the Rows which pass pred.
// A nil pred retains every Row, and returns this Partition unchanged.
func (p *partitionImpl) FilterRows(pred progressive.Predicate) progressive.BuildablePartition {
	if pred == nil {
		return p
	}
	result := createPartitionImpl(len(p.rows), p.schema)
	row := &rowImpl{schema: p.schema}
	for _, values := range p.rows {
		row.values = values
		if pred.Test(row) {
			result.rows = append(result.rows, values)
		}
	}
	return result
}

// normalizeValue converts a Go value to the canonical representation of a FieldType
func normalizeValue(fieldType progressive.FieldType, v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	switch fieldType.(type) {
	case *progressive.Float64FieldType:
		switch n := v.(type) {
		case float64:
			return n, nil
		case float32:
			return float64(n), nil
		case int:
			return float64(n), nil
		case int64:
			return float64(n), nil
		}
	case *progressive.Int64FieldType:
		switch n := v.(type) {
		case int64:
			return n, nil
		case int:
			return int64(n), nil
		case int32:
			return int64(n), nil
		}
	case *progressive.StringFieldType:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case *progressive.BoolFieldType:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	}
	return nil, fmt.Errorf("value %#v is not compatible with field type %s", v, fieldType.Name())
}
