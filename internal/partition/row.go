package partition

import (
	"fmt"
	"strings"

	"github.com/go-sif/progressive"
)

// rowImpl is a representation of a single row of data, (a slice of
// a Partition), along with a reference to the Schema for that row.
type rowImpl struct {
	values []interface{}      // one value per field, nil when missing
	schema progressive.Schema // schema maps field names to value positions
}

// CreateRow builds a new row from values which have already been normalized for schema
func CreateRow(schema progressive.Schema, values []interface{}) progressive.Row {
	return &rowImpl{values: values, schema: schema}
}

// Schema returns the schema for a row
func (r *rowImpl) Schema() progressive.Schema {
	return r.schema
}

// ToString returns a string representation of this row
func (r *rowImpl) ToString() string {
	var res strings.Builder
	fmt.Fprint(&res, "{")
	for i, f := range r.schema.Fields() {
		if i > 0 {
			fmt.Fprint(&res, ", ")
		}
		if r.IsNil(i) {
			fmt.Fprintf(&res, "%s: nil", f.Name())
		} else {
			fmt.Fprintf(&res, "%s: %s", f.Name(), f.Type().ToString(r.values[i]))
		}
	}
	fmt.Fprint(&res, "}")
	return res.String()
}

// Get returns the value at the given field index, or nil if it is missing
func (r *rowImpl) Get(idx int) interface{} {
	if idx < 0 || idx >= len(r.values) {
		return nil
	}
	return r.values[idx]
}

// IsNil returns true iff the value at the given field index is missing
func (r *rowImpl) IsNil(idx int) bool {
	return r.Get(idx) == nil
}

// GetByName returns the value of the named field
func (r *rowImpl) GetByName(name string) (interface{}, error) {
	f, err := r.schema.FieldByName(name)
	if err != nil {
		return nil, err
	}
	return r.Get(f.Index()), nil
}

// GetFloat64 returns a numeric value as a float64, or false if it is missing, NaN or not numeric
func (r *rowImpl) GetFloat64(idx int) (float64, bool) {
	return progressive.ToFloat64(r.Get(idx))
}

// Values returns a copy of all values in this row
func (r *rowImpl) Values() []interface{} {
	values := make([]interface{}, len(r.values))
	copy(values, r.values)
	return values
}
