package schema

import (
	"fmt"
	"reflect"

	"github.com/go-sif/progressive"
	"github.com/go-sif/progressive/errors"
)

// field describes the position and type of a named value within a Row
type field struct {
	name      string
	idx       int
	fieldType progressive.FieldType
}

// Name returns the name of this Field
func (f *field) Name() string {
	return f.name
}

// Index returns the index of this Field within a Schema
func (f *field) Index() int {
	return f.idx
}

// Type returns the FieldType of this Field
func (f *field) Type() progressive.FieldType {
	return f.fieldType
}

// Schema is an ordered list of Fields, with lookup by name.
// A Schema is built once (by a Dataset) and is read-only afterwards.
type Schema struct {
	fields []*field
	byName  map[string]*field
}

// CreateSchema is a factory for Schemas
func CreateSchema() *Schema {
	return &Schema{
		fields: make([]*field, 0),
		byName: make(map[string]*field),
	}
}

// CreateField defines a new Field at the end of the Schema
func (s *Schema) CreateField(name string, fieldType progressive.FieldType) (*Schema, error) {
	if _, exists := s.byName[name]; exists {
		return nil, fmt.Errorf("Schema already contains field with name %s", name)
	}
	if fieldType == nil {
		return nil, fmt.Errorf("Field %s has no type", name)
	}
	f := &field{name: name, idx: len(s.fields), fieldType: fieldType}
	s.fields = append(s.fields, f)
	s.byName[name] = f
	return s, nil
}

// Equals returns nil iff this and another Schema have the same fields, in the same order, with the same types
func (s *Schema) Equals(otherSchema progressive.Schema) error {
	if s.NumFields() != otherSchema.NumFields() {
		return fmt.Errorf("Schemas have unequal numbers of fields")
	}
	others := otherSchema.Fields()
	for i, f := range s.fields {
		if f.name != others[i].Name() {
			return fmt.Errorf("Field %d names do not match (%s, %s)", i, f.name, others[i].Name())
		}
		if reflect.TypeOf(f.fieldType) != reflect.TypeOf(others[i].Type()) {
			return fmt.Errorf("Field %s types do not match", f.name)
		}
	}
	return nil
}

// NumFields returns the number of fields in this Schema
func (s *Schema) NumFields() int {
	return len(s.fields)
}

// Fields returns the fields in the schema, in index order
func (s *Schema) Fields() []progressive.Field {
	fields := make([]progressive.Field, len(s.fields))
	for i, f := range s.fields {
		fields[i] = f
	}
	return fields
}

// FieldNames returns the names in the schema, in index order
func (s *Schema) FieldNames() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.name
	}
	return names
}

// FieldByName returns the Field with the given name, or an UnknownFieldError
func (s *Schema) FieldByName(name string) (progressive.Field, error) {
	f, ok := s.byName[name]
	if !ok {
		return nil, errors.UnknownFieldError{Name: name}
	}
	return f, nil
}

// HasField returns true iff this schema contains a field with the given name
func (s *Schema) HasField(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// ForEachField iterates over the fields in this Schema, in index order
func (s *Schema) ForEachField(fn func(field progressive.Field) error) error {
	for _, f := range s.fields {
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}
