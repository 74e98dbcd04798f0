// Package evaluator implements the yap tree-walking evaluator.
package evaluator

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/thomasrohde/yap/pkg/ast"
)

// Value is the interface for all yap runtime values.
// Use the sealed marker method to restrict implementations to this package.
type Value interface {
	value() // sealed marker
}

// Undefined is the value of missing things: uninitialized variables,
// functions that fall off the end, out-of-range indexes.
type Undefined struct{}

func (Undefined) value() {}

// Boolean represents a boolean value.
type Boolean struct {
	Value bool
}

func (Boolean) value() {}

// Number represents a numeric value. All numbers are IEEE-754 doubles.
type Number struct {
	Value float64
}

func (Number) value() {}

// String represents a string value.
type String struct {
	Value string
}

func (String) value() {}

// Array is an ordered list of values. Arrays are shared by reference.
type Array struct {
	Elements []Value
}

func (*Array) value() {}

// Function is a user-defined function closed over its defining environment.
type Function struct {
	Name    string
	Params  []string
	Body    *ast.BlockStmt
	Closure *Env
}

func (*Function) value() {}

// NativeFunction is a built-in implemented in Go. Arity -1 means variadic.
type NativeFunction struct {
	Name  string
	Arity int
	Fn    func(args []Value) (Value, error)
}

func (*NativeFunction) value() {}

// Namespace is a named bag of members, such as the Math object.
type Namespace struct {
	Name    string
	members map[string]Value
}

func (*Namespace) value() {}

// NewUndefined returns the undefined value.
func NewUndefined() Value {
	return Undefined{}
}

// NewBool creates a boolean value.
func NewBool(b bool) Value {
	return Boolean{Value: b}
}

// NewNumber creates a numeric value.
func NewNumber(n float64) Value {
	return Number{Value: n}
}

// NewString creates a string value.
func NewString(s string) Value {
	return String{Value: s}
}

// NewArray creates an array value.
func NewArray(elems []Value) *Array {
	return &Array{Elements: elems}
}

// NewNamespace creates an empty namespace.
func NewNamespace(name string) *Namespace {
	return &Namespace{Name: name, members: make(map[string]Value)}
}

// Get returns a namespace member.
func (n *Namespace) Get(key string) (Value, bool) {
	v, ok := n.members[key]
	return v, ok
}

// Set adds or replaces a namespace member.
func (n *Namespace) Set(key string, v Value) {
	n.members[key] = v
}

// Keys returns member names in sorted order.
func (n *Namespace) Keys() []string {
	keys := make([]string, 0, len(n.members))
	for k := range n.members {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Truthiness returns the boolean interpretation of a value.
// false, 0, NaN, "" and undefined are falsy; everything else is truthy.
func Truthiness(v Value) bool {
	switch val := v.(type) {
	case Undefined:
		return false
	case Boolean:
		return val.Value
	case Number:
		return val.Value != 0 && !math.IsNaN(val.Value)
	case String:
		return val.Value != ""
	case nil:
		return false
	default:
		return true
	}
}

// ToString converts a value to its string form, as used by + and print.
func ToString(v Value) string {
	switch val := v.(type) {
	case Undefined, nil:
		return "undefined"
	case Boolean:
		return strconv.FormatBool(val.Value)
	case Number:
		return FormatNumber(val.Value)
	case String:
		return val.Value
	case *Array:
		parts := make([]string, len(val.Elements))
		for i, e := range val.Elements {
			if _, undef := e.(Undefined); !undef {
				parts[i] = ToString(e)
			}
		}
		return strings.Join(parts, ",")
	case *Function:
		return "[function " + val.Name + "]"
	case *NativeFunction:
		return "[function " + val.Name + "]"
	case *Namespace:
		return "[object " + val.Name + "]"
	}
	return ""
}

// ToNumber converts a value to a number.
func ToNumber(v Value) float64 {
	switch val := v.(type) {
	case Number:
		return val.Value
	case Boolean:
		if val.Value {
			return 1
		}
		return 0
	case String:
		return stringToNumber(val.Value)
	case *Array:
		return stringToNumber(ToString(val))
	}
	return math.NaN()
}

func stringToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return 0
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				return math.NaN()
			}
			return float64(n)
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9') && c != '.' && c != 'e' && c != 'E' && c != '+' && c != '-' {
			return math.NaN()
		}
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return n
		}
		return math.NaN()
	}
	return n
}

// StrictEqual implements ===: same variant and same value. Arrays, functions
// and namespaces compare by identity. NaN is not equal to itself.
func StrictEqual(a, b Value) bool {
	switch x := a.(type) {
	case Undefined:
		_, ok := b.(Undefined)
		return ok
	case Boolean:
		y, ok := b.(Boolean)
		return ok && x.Value == y.Value
	case Number:
		y, ok := b.(Number)
		return ok && x.Value == y.Value
	case String:
		y, ok := b.(String)
		return ok && x.Value == y.Value
	case *Array:
		y, ok := b.(*Array)
		return ok && x == y
	case *Function:
		y, ok := b.(*Function)
		return ok && x == y
	case *NativeFunction:
		y, ok := b.(*NativeFunction)
		return ok && x == y
	case *Namespace:
		y, ok := b.(*Namespace)
		return ok && x == y
	}
	return false
}

// LooseEqual implements ==, converting between numbers, strings, booleans
// and arrays before comparing. Undefined is only equal to itself.
func LooseEqual(a, b Value) bool {
	if sameVariant(a, b) {
		return StrictEqual(a, b)
	}
	switch x := a.(type) {
	case Undefined:
		return false
	case Boolean:
		return LooseEqual(NewNumber(ToNumber(x)), b)
	case Number:
		switch b.(type) {
		case String:
			return x.Value == ToNumber(b)
		case Boolean, *Array:
			return LooseEqual(b, a)
		}
	case String:
		switch b.(type) {
		case Number, Boolean, *Array:
			return LooseEqual(b, a)
		}
	case *Array:
		switch b.(type) {
		case Number, String, Boolean:
			return LooseEqual(NewString(ToString(x)), b)
		}
	}
	return false
}

func sameVariant(a, b Value) bool {
	switch a.(type) {
	case Undefined:
		_, ok := b.(Undefined)
		return ok
	case Boolean:
		_, ok := b.(Boolean)
		return ok
	case Number:
		_, ok := b.(Number)
		return ok
	case String:
		_, ok := b.(String)
		return ok
	case *Array:
		_, ok := b.(*Array)
		return ok
	case *Function:
		_, ok := b.(*Function)
		return ok
	case *NativeFunction:
		_, ok := b.(*NativeFunction)
		return ok
	case *Namespace:
		_, ok := b.(*Namespace)
		return ok
	}
	return false
}

// Inspect renders a value for display. Strings are quoted; arrays are
// rendered as [a, b, c] with their elements inspected.
func Inspect(v Value) string {
	switch val := v.(type) {
	case String:
		return strconv.Quote(val.Value)
	case *Array:
		parts := make([]string, len(val.Elements))
		for i, e := range val.Elements {
			parts[i] = Inspect(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return ToString(v)
}

// TypeName returns a short name for the value's variant, used in messages.
func TypeName(v Value) string {
	switch v.(type) {
	case Undefined, nil:
		return "undefined"
	case Boolean:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case *Array:
		return "array"
	case *Function, *NativeFunction:
		return "function"
	case *Namespace:
		return "object"
	}
	return "unknown"
}
