package progressive

// Field describes a single named, typed entry in a Schema.
type Field interface {
	Name() string    // Name returns the name of this Field
	Index() int      // Index returns the position of this Field within a Schema, and of its value within a Row
	Type() FieldType // Type returns the FieldType of this Field
}
