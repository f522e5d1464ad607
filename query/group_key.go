package query

import (
	"fmt"
	"math"
	"strings"
)

// PartKind is the type of a single component of a GroupKey
type PartKind uint8

const (
	// NullPart is the canonical marker for missing and NaN values
	NullPart PartKind = iota
	// BoolPart holds a bool
	BoolPart
	// IntPart holds an int64 (also used for bin indices)
	IntPart
	// FloatPart holds a non-NaN float64
	FloatPart
	// StringPart holds a string
	StringPart
)

// KeyPart is a single, comparable component of a GroupKey
type KeyPart struct {
	kind PartKind
	s    string
	i    int64
	f    float64
	b    bool
}

// GroupKey identifies a group within a Query result. It is comparable,
// and so can be used directly as a map key.
type GroupKey struct {
	parts [2]KeyPart
	n     int
}

// NullKeyPart returns the canonical null KeyPart
func NullKeyPart() KeyPart {
	return KeyPart{}
}

// KeyPartOf converts a Row value into a KeyPart. nil, NaN and unsupported values become null.
func KeyPartOf(v interface{}) KeyPart {
	switch t := v.(type) {
	case string:
		return KeyPart{kind: StringPart, s: t}
	case int64:
		return KeyPart{kind: IntPart, i: t}
	case int:
		return KeyPart{kind: IntPart, i: int64(t)}
	case float64:
		if math.IsNaN(t) {
			return NullKeyPart()
		}
		if t == 0 {
			t = 0 // collapse -0
		}
		return KeyPart{kind: FloatPart, f: t}
	case bool:
		return KeyPart{kind: BoolPart, b: t}
	default:
		return NullKeyPart()
	}
}

// Kind returns the PartKind of this KeyPart
func (p KeyPart) Kind() PartKind {
	return p.kind
}

// IsNull returns true iff this KeyPart is the null marker
func (p KeyPart) IsNull() bool {
	return p.kind == NullPart
}

// Value returns the Go value of this KeyPart, or nil if it is null
func (p KeyPart) Value() interface{} {
	switch p.kind {
	case StringPart:
		return p.s
	case IntPart:
		return p.i
	case FloatPart:
		return p.f
	case BoolPart:
		return p.b
	default:
		return nil
	}
}

// compare orders KeyParts by kind (nulls first), then by value
func (p KeyPart) compare(other KeyPart) int {
	if p.kind != other.kind {
		if p.kind < other.kind {
			return -1
		}
		return 1
	}
	switch p.kind {
	case StringPart:
		return strings.Compare(p.s, other.s)
	case IntPart:
		return compareOrdered(p.i < other.i, p.i > other.i)
	case FloatPart:
		return compareOrdered(p.f < other.f, p.f > other.f)
	case BoolPart:
		return compareOrdered(!p.b && other.b, p.b && !other.b)
	default:
		return 0
	}
}

func compareOrdered(less bool, greater bool) int {
	if less {
		return -1
	} else if greater {
		return 1
	}
	return 0
}

// String returns a textual representation of this KeyPart
func (p KeyPart) String() string {
	if p.kind == NullPart {
		return "null"
	}
	return fmt.Sprintf("%v", p.Value())
}

// Key1 produces a single-part GroupKey
func Key1(a KeyPart) GroupKey {
	return GroupKey{parts: [2]KeyPart{a}, n: 1}
}

// Key2 produces a two-part GroupKey
func Key2(a KeyPart, b KeyPart) GroupKey {
	return GroupKey{parts: [2]KeyPart{a, b}, n: 2}
}

// Len returns the number of parts in this GroupKey
func (k GroupKey) Len() int {
	return k.n
}

// Part returns the i-th part of this GroupKey
func (k GroupKey) Part(i int) KeyPart {
	return k.parts[i]
}

// Values returns the Go values of all parts of this GroupKey, with nil for null parts
func (k GroupKey) Values() []interface{} {
	values := make([]interface{}, k.n)
	for i := 0; i < k.n; i++ {
		values[i] = k.parts[i].Value()
	}
	return values
}

// Less returns true iff k sorts before other
func (k GroupKey) Less(other GroupKey) bool {
	for i := 0; i < k.n && i < other.n; i++ {
		if c := k.parts[i].compare(other.parts[i]); c != 0 {
			return c < 0
		}
	}
	return k.n < other.n
}

// String returns a textual representation of this GroupKey
func (k GroupKey) String() string {
	if k.n == 1 {
		return "(" + k.parts[0].String() + ")"
	}
	return "(" + k.parts[0].String() + ", " + k.parts[1].String() + ")"
}
