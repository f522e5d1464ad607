package dsv

import (
	"fmt"

	"github.com/go-sif/progressive"
)

// Parses a slice of strings into row values, according to a schema
func scanRow(conf *ParserConf, fields []progressive.Field, rowStrings []string) ([]interface{}, error) {
	values := make([]interface{}, len(fields))
	for i, field := range fields {
		fieldVal := rowStrings[i]
		// check for a nil value
		if len(fieldVal) == 0 || (len(conf.NilValue) > 0 && fieldVal == conf.NilValue) {
			continue
		}
		v, err := field.Type().Parse(fieldVal)
		if err != nil {
			return nil, fmt.Errorf("field %s could not be parsed as %s. Was: %#v", field.Name(), field.Type().Name(), fieldVal)
		}
		values[i] = v
	}
	return values, nil
}
