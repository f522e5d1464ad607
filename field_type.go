package progressive

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FieldType is an interface which is implemented to define a supported field type.
// Values stored in Rows for a given FieldType always have the same Go type:
// float64, int64, string or bool respectively for the built-in types.
type FieldType interface {
	Name() string                        // Name returns the canonical name of this type, as written in dataset metadata
	IsNumeric() bool                     // IsNumeric returns true iff values of this type can be binned and aggregated
	Parse(s string) (interface{}, error) // Parse produces a value of this type from its textual representation
	ToString(v interface{}) string       // ToString produces a string representation of a value of this type
}

// IsNumeric returns true iff colType is a numeric FieldType
func IsNumeric(fieldType FieldType) bool {
	return fieldType != nil && fieldType.IsNumeric()
}

// Float64FieldType is a field type which stores a float64 value
type Float64FieldType struct{}

// Name returns the canonical name of a Float64FieldType
func (f *Float64FieldType) Name() string {
	return "float64"
}

// IsNumeric returns true
func (f *Float64FieldType) IsNumeric() bool {
	return true
}

// Parse parses a float64
func (f *Float64FieldType) Parse(s string) (interface{}, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// ToString produces a string representation of a Float64FieldType value
func (f *Float64FieldType) ToString(v interface{}) string {
	return strconv.FormatFloat(v.(float64), 'g', -1, 64)
}

// Int64FieldType is a field type which stores an int64 value
type Int64FieldType struct{}

// Name returns the canonical name of an Int64FieldType
func (i *Int64FieldType) Name() string {
	return "int64"
}

// IsNumeric returns true
func (i *Int64FieldType) IsNumeric() bool {
	return true
}

// Parse parses an int64
func (i *Int64FieldType) Parse(s string) (interface{}, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}

// ToString produces a string representation of an Int64FieldType value
func (i *Int64FieldType) ToString(v interface{}) string {
	return strconv.FormatInt(v.(int64), 10)
}

// StringFieldType is a field type which stores a categorical string value
type StringFieldType struct{}

// Name returns the canonical name of a StringFieldType
func (s *StringFieldType) Name() string {
	return "string"
}

// IsNumeric returns false
func (s *StringFieldType) IsNumeric() bool {
	return false
}

// Parse returns its input
func (s *StringFieldType) Parse(str string) (interface{}, error) {
	return str, nil
}

// ToString produces a string representation of a StringFieldType value
func (s *StringFieldType) ToString(v interface{}) string {
	return v.(string)
}

// BoolFieldType is a field type which stores a boolean value
type BoolFieldType struct{}

// Name returns the canonical name of a BoolFieldType
func (b *BoolFieldType) Name() string {
	return "bool"
}

// IsNumeric returns false
func (b *BoolFieldType) IsNumeric() bool {
	return false
}

// Parse parses a bool
func (b *BoolFieldType) Parse(s string) (interface{}, error) {
	return strconv.ParseBool(strings.TrimSpace(s))
}

// ToString produces a string representation of a BoolFieldType value
func (b *BoolFieldType) ToString(v interface{}) string {
	return strconv.FormatBool(v.(bool))
}

// FieldTypeFromName maps a type name found in dataset metadata to a FieldType.
// An empty name maps to a StringFieldType, as untyped fields are treated as categorical.
func FieldTypeFromName(name string) (FieldType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "numeric", "quantitative", "float", "float64", "double":
		return &Float64FieldType{}, nil
	case "integer", "int", "int64":
		return &Int64FieldType{}, nil
	case "", "categorical", "nominal", "ordinal", "string":
		return &StringFieldType{}, nil
	case "bool", "boolean":
		return &BoolFieldType{}, nil
	default:
		return nil, fmt.Errorf("unsupported field type %q", name)
	}
}

// ToFloat64 converts a numeric Row value to a float64. It returns false for
// nil values, non-numeric values and NaN, all of which count as missing.
func ToFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) {
			return 0, false
		}
		return n, true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
