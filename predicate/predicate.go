// Package predicate compiles client-supplied filter descriptions into Predicates.
//
// A filter description is a JSON object, built from combinators
//
//	{"and": [<filter>, ...]}
//	{"or": [<filter>, ...]}
//	{"not": <filter>}
//
// and leaves, which compare a field against literals
//
//	{"field": "age", "op": ">=", "value": 30}
//	{"field": "state", "op": "in", "values": ["CA", "NY"]}
//	{"field": "income", "op": "isnull"}
//
// Each object is exactly one combinator or one leaf; an object mixing them is malformed.
// Leaves are resolved and type-checked against a Schema once, at compile time.
//
// Filters follow SQL's three-valued logic. A comparison against a missing value (or NaN)
// is unknown, including "!=" and "notin"; only "isnull" and "notnull" are always known.
// Unknown propagates through "not", so {"not": {"field": "age", "op": "==", "value": 1}}
// does not match rows with a missing age. "and" is false if any child is false, "or" is
// true if any child is true, and otherwise an unknown child makes the result unknown.
// A row passes a Predicate only if the filter evaluates to true.
package predicate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-sif/progressive"
	"github.com/go-sif/progressive/errors"
	"github.com/tidwall/gjson"
)

// truth is a three-valued logical value
type truth int

const (
	unknown truth = iota
	isFalse
	isTrue
)

func truthOf(b bool) truth {
	if b {
		return isTrue
	}
	return isFalse
}

// node is a compiled Predicate: a closure over field indices and literals
type node struct {
	eval func(row progressive.Row) truth
	desc string
}

// Test returns true iff the row passes this Predicate
func (n *node) Test(row progressive.Row) bool {
	return n.eval(row) == isTrue
}

// String returns the canonical form of this Predicate
func (n *node) String() string {
	return n.desc
}

// Test applies pred to row, treating a nil Predicate as matching every row
func Test(pred progressive.Predicate, row progressive.Row) bool {
	return pred == nil || pred.Test(row)
}

// Compile compiles a JSON filter description against a Schema.
// A blank description compiles to a nil Predicate, which matches every row.
func Compile(description string, schema progressive.Schema) (progressive.Predicate, error) {
	if strings.TrimSpace(description) == "" {
		return nil, nil
	}
	if !gjson.Valid(description) {
		return nil, errors.MalformedFilterError{Reason: "filter is not valid JSON"}
	}
	return CompileResult(gjson.Parse(description), schema)
}

// CompileResult compiles an already-parsed filter description against a Schema.
// A null or empty-object description compiles to a nil Predicate.
func CompileResult(description gjson.Result, schema progressive.Schema) (progressive.Predicate, error) {
	switch {
	case !description.Exists() || description.Type == gjson.Null:
		return nil, nil
	case description.Type == gjson.String:
		return Compile(description.String(), schema)
	case description.IsObject() && len(description.Map()) == 0:
		return nil, nil
	}
	n, err := compileNode(description, schema)
	if err != nil {
		return nil, err
	}
	return n, nil
}

var (
	combinatorKeys = []string{"and", "or", "not"}
	leafKeys       = map[string]bool{"field": true, "op": true, "value": true, "values": true}
)

func compileNode(desc gjson.Result, schema progressive.Schema) (*node, error) {
	if !desc.IsObject() {
		return nil, errors.MalformedFilterError{Reason: fmt.Sprintf("expected a filter object, got %s", desc.Raw)}
	}
	keys := desc.Map()
	for _, name := range combinatorKeys {
		child, ok := keys[name]
		if !ok {
			continue
		}
		if len(keys) != 1 {
			return nil, errors.MalformedFilterError{Reason: fmt.Sprintf("filter %s mixes %q with other keys", desc.Raw, name)}
		}
		switch name {
		case "and":
			return compileCombinator("AND", child, schema)
		case "or":
			return compileCombinator("OR", child, schema)
		default:
			return compileNot(child, schema)
		}
	}
	if _, ok := keys["field"]; !ok {
		return nil, errors.MalformedFilterError{Reason: fmt.Sprintf("filter %s has no field or combinator", desc.Raw)}
	}
	for key := range keys {
		if !leafKeys[key] {
			return nil, errors.MalformedFilterError{Reason: fmt.Sprintf("filter %s has unexpected key %q", desc.Raw, key)}
		}
	}
	return compileLeaf(desc, schema)
}

func compileNot(desc gjson.Result, schema progressive.Schema) (*node, error) {
	child, err := compileNode(desc, schema)
	if err != nil {
		return nil, err
	}
	return &node{
		eval: func(row progressive.Row) truth {
			switch child.eval(row) {
			case isTrue:
				return isFalse
			case isFalse:
				return isTrue
			}
			return unknown
		},
		desc: "NOT " + child.desc,
	}, nil
}

func compileCombinator(name string, children gjson.Result, schema progressive.Schema) (*node, error) {
	if !children.IsArray() || len(children.Array()) == 0 {
		return nil, errors.MalformedFilterError{Reason: fmt.Sprintf("%s requires a non-empty list of filters", strings.ToLower(name))}
	}
	compiled := make([]*node, 0, len(children.Array()))
	descs := make([]string, 0, len(children.Array()))
	for _, child := range children.Array() {
		n, err := compileNode(child, schema)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, n)
		descs = append(descs, n.desc)
	}
	// AND short-circuits on false, OR on true
	decisive, otherwise := isFalse, isTrue
	if name == "OR" {
		decisive, otherwise = isTrue, isFalse
	}
	return &node{
		eval: func(row progressive.Row) truth {
			result := otherwise
			for _, c := range compiled {
				switch c.eval(row) {
				case decisive:
					return decisive
				case unknown:
					result = unknown
				}
			}
			return result
		},
		desc: "(" + strings.Join(descs, " "+name+" ") + ")",
	}, nil
}

// parseOp maps an operator name or symbol to its canonical form
func parseOp(op string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(op)) {
	case "==", "=", "eq":
		return "==", true
	case "!=", "<>", "ne":
		return "!=", true
	case "<", "lt":
		return "<", true
	case "<=", "le", "lte":
		return "<=", true
	case ">", "gt":
		return ">", true
	case ">=", "ge", "gte":
		return ">=", true
	case "in":
		return "IN", true
	case "notin", "nin", "not in":
		return "NOT IN", true
	case "isnull", "null":
		return "IS NULL", true
	case "notnull", "isnotnull":
		return "IS NOT NULL", true
	}
	return "", false
}

func compileLeaf(desc gjson.Result, schema progressive.Schema) (*node, error) {
	fieldName := desc.Get("field")
	if fieldName.Type != gjson.String {
		return nil, errors.MalformedFilterError{Reason: fmt.Sprintf("field must be a name, got %s", fieldName.Raw)}
	}
	field, err := schema.FieldByName(fieldName.String())
	if err != nil {
		return nil, err
	}
	op, ok := parseOp(desc.Get("op").String())
	if !ok {
		return nil, errors.MalformedFilterError{Reason: fmt.Sprintf("unsupported operator %q", desc.Get("op").String())}
	}
	idx := field.Index()
	isNull := func(row progressive.Row) bool { return row.IsNil(idx) }
	if progressive.IsNumeric(field.Type()) {
		isNull = func(row progressive.Row) bool {
			_, ok := row.GetFloat64(idx)
			return !ok
		}
	}
	switch op {
	case "IS NULL":
		return &node{
			eval: func(row progressive.Row) truth { return truthOf(isNull(row)) },
			desc: fmt.Sprintf("%s IS NULL", field.Name()),
		}, nil
	case "IS NOT NULL":
		return &node{
			eval: func(row progressive.Row) truth { return truthOf(!isNull(row)) },
			desc: fmt.Sprintf("%s IS NOT NULL", field.Name()),
		}, nil
	case "IN", "NOT IN":
		values := desc.Get("values")
		if !values.IsArray() {
			return nil, errors.MalformedFilterError{Reason: fmt.Sprintf("%s on %s requires a list of values", op, field.Name())}
		}
		return compileSetLeaf(field, op, values.Array())
	default:
		value := desc.Get("value")
		if !value.Exists() {
			return nil, errors.MalformedFilterError{Reason: fmt.Sprintf("%s on %s requires a value", op, field.Name())}
		}
		return compileComparisonLeaf(field, op, value)
	}
}

// intLiteral returns the exact integer value of a numeric literal, or false if it has a fractional part
func intLiteral(value gjson.Result) (int64, bool) {
	i := value.Int()
	return i, float64(i) == value.Float()
}

func compileComparisonLeaf(field progressive.Field, op string, value gjson.Result) (*node, error) {
	idx := field.Index()
	switch field.Type().(type) {
	case *progressive.Int64FieldType:
		if value.Type != gjson.Number {
			return nil, literalError(field, value)
		}
		literal, ok := intLiteral(value)
		if !ok {
			return compileFloatComparison(field, op, value.Float()), nil
		}
		cmp := compareInts(op)
		return &node{
			eval: func(row progressive.Row) truth {
				v, ok := row.Get(idx).(int64)
				if !ok {
					return unknown
				}
				return truthOf(cmp(v, literal))
			},
			desc: fmt.Sprintf("%s %s %d", field.Name(), op, literal),
		}, nil
	case *progressive.Float64FieldType:
		if value.Type != gjson.Number {
			return nil, literalError(field, value)
		}
		return compileFloatComparison(field, op, value.Float()), nil
	case *progressive.StringFieldType:
		if value.Type != gjson.String {
			return nil, literalError(field, value)
		}
		literal := value.String()
		cmp := compareStrings(op)
		return &node{
			eval: func(row progressive.Row) truth {
				v, ok := row.Get(idx).(string)
				if !ok {
					return unknown
				}
				return truthOf(cmp(v, literal))
			},
			desc: fmt.Sprintf("%s %s %s", field.Name(), op, strconv.Quote(literal)),
		}, nil
	case *progressive.BoolFieldType:
		if value.Type != gjson.True && value.Type != gjson.False {
			return nil, literalError(field, value)
		}
		if op != "==" && op != "!=" {
			return nil, errors.MalformedFilterError{Reason: fmt.Sprintf("operator %s is not supported on boolean field %s", op, field.Name())}
		}
		literal := value.Bool()
		wantEqual := op == "=="
		return &node{
			eval: func(row progressive.Row) truth {
				v, ok := row.Get(idx).(bool)
				if !ok {
					return unknown
				}
				return truthOf((v == literal) == wantEqual)
			},
			desc: fmt.Sprintf("%s %s %t", field.Name(), op, literal),
		}, nil
	}
	return nil, errors.MalformedFilterError{Reason: fmt.Sprintf("field %s has unsupported type %s", field.Name(), field.Type().Name())}
}

func compileFloatComparison(field progressive.Field, op string, literal float64) *node {
	idx := field.Index()
	cmp := compareFloats(op)
	return &node{
		eval: func(row progressive.Row) truth {
			v, ok := row.GetFloat64(idx)
			if !ok {
				return unknown
			}
			return truthOf(cmp(v, literal))
		},
		desc: fmt.Sprintf("%s %s %s", field.Name(), op, strconv.FormatFloat(literal, 'g', -1, 64)),
	}
}

func compileSetLeaf(field progressive.Field, op string, values []gjson.Result) (*node, error) {
	idx := field.Index()
	wantMember := op == "IN"
	literals := make([]string, 0, len(values))
	// member reports whether the row's value is in the set, or false if the value is missing
	var member func(row progressive.Row) (isMember bool, present bool)
	switch field.Type().(type) {
	case *progressive.Int64FieldType:
		set := make(map[int64]struct{}, len(values))
		for _, v := range values {
			if v.Type != gjson.Number {
				return nil, literalError(field, v)
			}
			// a fractional literal can never equal an integer value
			if i, ok := intLiteral(v); ok {
				set[i] = struct{}{}
				literals = append(literals, strconv.FormatInt(i, 10))
			} else {
				literals = append(literals, strconv.FormatFloat(v.Float(), 'g', -1, 64))
			}
		}
		member = func(row progressive.Row) (bool, bool) {
			v, ok := row.Get(idx).(int64)
			if !ok {
				return false, false
			}
			_, in := set[v]
			return in, true
		}
	case *progressive.Float64FieldType:
		set := make(map[float64]struct{}, len(values))
		for _, v := range values {
			if v.Type != gjson.Number {
				return nil, literalError(field, v)
			}
			set[v.Float()] = struct{}{}
			literals = append(literals, strconv.FormatFloat(v.Float(), 'g', -1, 64))
		}
		member = func(row progressive.Row) (bool, bool) {
			v, ok := row.GetFloat64(idx)
			if !ok {
				return false, false
			}
			_, in := set[v]
			return in, true
		}
	case *progressive.StringFieldType:
		set := make(map[string]struct{}, len(values))
		for _, v := range values {
			if v.Type != gjson.String {
				return nil, literalError(field, v)
			}
			set[v.String()] = struct{}{}
			literals = append(literals, strconv.Quote(v.String()))
		}
		member = func(row progressive.Row) (bool, bool) {
			v, ok := row.Get(idx).(string)
			if !ok {
				return false, false
			}
			_, in := set[v]
			return in, true
		}
	case *progressive.BoolFieldType:
		set := make(map[bool]struct{}, len(values))
		for _, v := range values {
			if v.Type != gjson.True && v.Type != gjson.False {
				return nil, literalError(field, v)
			}
			set[v.Bool()] = struct{}{}
			literals = append(literals, strconv.FormatBool(v.Bool()))
		}
		member = func(row progressive.Row) (bool, bool) {
			v, ok := row.Get(idx).(bool)
			if !ok {
				return false, false
			}
			_, in := set[v]
			return in, true
		}
	default:
		return nil, errors.MalformedFilterError{Reason: fmt.Sprintf("field %s has unsupported type %s", field.Name(), field.Type().Name())}
	}
	return &node{
		eval: func(row progressive.Row) truth {
			in, present := member(row)
			if !present {
				return unknown
			}
			return truthOf(in == wantMember)
		},
		desc: fmt.Sprintf("%s %s [%s]", field.Name(), op, strings.Join(literals, ", ")),
	}, nil
}

func literalError(field progressive.Field, value gjson.Result) error {
	return errors.MalformedFilterError{Reason: fmt.Sprintf("literal %s does not match type %s of field %s", value.Raw, field.Type().Name(), field.Name())}
}

func compareInts(op string) func(a int64, b int64) bool {
	switch op {
	case "==":
		return func(a, b int64) bool { return a == b }
	case "!=":
		return func(a, b int64) bool { return a != b }
	case "<":
		return func(a, b int64) bool { return a < b }
	case "<=":
		return func(a, b int64) bool { return a <= b }
	case ">":
		return func(a, b int64) bool { return a > b }
	default:
		return func(a, b int64) bool { return a >= b }
	}
}

func compareFloats(op string) func(a float64, b float64) bool {
	switch op {
	case "==":
		return func(a, b float64) bool { return a == b }
	case "!=":
		return func(a, b float64) bool { return a != b }
	case "<":
		return func(a, b float64) bool { return a < b }
	case "<=":
		return func(a, b float64) bool { return a <= b }
	case ">":
		return func(a, b float64) bool { return a > b }
	default:
		return func(a, b float64) bool { return a >= b }
	}
}

func compareStrings(op string) func(a string, b string) bool {
	switch op {
	case "==":
		return func(a, b string) bool { return a == b }
	case "!=":
		return func(a, b string) bool { return a != b }
	case "<":
		return func(a, b string) bool { return a < b }
	case "<=":
		return func(a, b string) bool { return a <= b }
	case ">":
		return func(a, b string) bool { return a > b }
	default:
		return func(a, b string) bool { return a >= b }
	}
}
