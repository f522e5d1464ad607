package jsonl

import (
	"fmt"
	"math"

	"github.com/go-sif/progressive"
	"github.com/tidwall/gjson"
)

func parseValue(val gjson.Result, field progressive.Field) (interface{}, error) {
	if !val.Exists() || val.Type == gjson.Null {
		return nil, nil
	}
	// strings are parsed according to the field type, so that quoted numbers are accepted
	if val.Type == gjson.String {
		if _, ok := field.Type().(*progressive.StringFieldType); ok {
			return val.Str, nil
		}
		if len(val.Str) == 0 {
			return nil, nil
		}
		v, err := field.Type().Parse(val.Str)
		if err != nil {
			return nil, fmt.Errorf("field %s could not be parsed as %s. Was: %#v", field.Name(), field.Type().Name(), val.Str)
		}
		return v, nil
	}
	switch field.Type().(type) {
	case *progressive.BoolFieldType:
		if val.Type != gjson.True && val.Type != gjson.False {
			return nil, fmt.Errorf("field %s was not a boolean. Was: %s", field.Name(), val.Raw)
		}
		return val.Bool(), nil
	case *progressive.Int64FieldType:
		if val.Type != gjson.Number || val.Num != math.Trunc(val.Num) {
			return nil, fmt.Errorf("field %s was not an integer. Was: %s", field.Name(), val.Raw)
		}
		return val.Int(), nil
	case *progressive.Float64FieldType:
		if val.Type != gjson.Number {
			return nil, fmt.Errorf("field %s was not a number. Was: %s", field.Name(), val.Raw)
		}
		return val.Num, nil
	case *progressive.StringFieldType:
		return nil, fmt.Errorf("field %s was not a string. Was: %s", field.Name(), val.Raw)
	default:
		return nil, fmt.Errorf("JSONL parsing does not support field type %T", field.Type())
	}
}

// Parses a line of JSON into row values, locating each field by its gjson path
func scanRow(fields []progressive.Field, rowString string) ([]interface{}, error) {
	if !gjson.Valid(rowString) {
		return nil, fmt.Errorf("invalid JSON")
	}
	paths := make([]string, len(fields))
	for i, f := range fields {
		paths[i] = f.Name()
	}
	results := gjson.GetMany(rowString, paths...)
	values := make([]interface{}, len(fields))
	for i, field := range fields {
		v, err := parseValue(results[i], field)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}
