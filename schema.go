package progressive

// Schema is an ordered list of Fields. It allows one to obtain
// Fields by name, and maps each Field to a position within a Row.
type Schema interface {
	NumFields() int
	Fields() []Field
	FieldNames() []string
	FieldByName(name string) (field Field, err error) // err is an errors.UnknownFieldError if the name is not found
	HasField(name string) bool
	ForEachField(fn func(field Field) error) error
}
