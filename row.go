package progressive

// Row is a representation of a single row of data (a slice of a
// Partition), along with a reference to the Schema for that row.
// Values are addressed by Field index, which is resolved once
// (e.g. when a Predicate or Query is compiled) rather than per row.
type Row interface {
	Schema() Schema                             // Schema returns the schema for a row
	ToString() string                           // ToString returns a string representation of this row
	Get(idx int) interface{}                    // Get returns the value at the given field index, or nil if it is missing
	IsNil(idx int) bool                         // IsNil returns true iff the value at the given field index is missing
	GetByName(name string) (interface{}, error) // GetByName returns the value of the named field
	GetFloat64(idx int) (float64, bool)         // GetFloat64 returns a numeric value as a float64, or false if it is missing, NaN or not numeric
	Values() []interface{}                      // Values returns a copy of all values in this row
}
