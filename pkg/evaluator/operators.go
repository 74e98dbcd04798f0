package evaluator

import (
	"fmt"
	"math"

	"github.com/thomasrohde/yap/pkg/ast"
	"github.com/thomasrohde/yap/pkg/diagnostics"
)

// toPrimitive turns arrays, functions and namespaces into their string form.
// Primitives are returned unchanged.
func toPrimitive(v Value) Value {
	switch v.(type) {
	case *Array, *Function, *NativeFunction, *Namespace:
		return NewString(ToString(v))
	}
	return v
}

func binaryOp(op ast.BinaryOp, left, right Value, span ast.Span) (Value, error) {
	switch op {
	case ast.OpAdd:
		l, r := toPrimitive(left), toPrimitive(right)
		_, ls := l.(String)
		_, rs := r.(String)
		if ls || rs {
			return NewString(ToString(l) + ToString(r)), nil
		}
		return NewNumber(ToNumber(l) + ToNumber(r)), nil
	case ast.OpSub:
		return NewNumber(ToNumber(left) - ToNumber(right)), nil
	case ast.OpMul:
		return NewNumber(ToNumber(left) * ToNumber(right)), nil
	case ast.OpDiv:
		return NewNumber(ToNumber(left) / ToNumber(right)), nil
	case ast.OpMod:
		return NewNumber(math.Mod(ToNumber(left), ToNumber(right))), nil
	case ast.OpLt, ast.OpGt, ast.OpLtEq, ast.OpGtEq:
		return NewBool(compare(op, toPrimitive(left), toPrimitive(right))), nil
	case ast.OpEq:
		return NewBool(LooseEqual(left, right)), nil
	case ast.OpNotEq:
		return NewBool(!LooseEqual(left, right)), nil
	case ast.OpStrictEq:
		return NewBool(StrictEqual(left, right)), nil
	case ast.OpStrictNeq:
		return NewBool(!StrictEqual(left, right)), nil
	}
	return nil, &RuntimeError{
		Code:    diagnostics.ERuntime,
		Message: fmt.Sprintf("unknown binary operator '%s'", op),
		Span:    &span,
	}
}

// compare applies a relational operator. Two strings compare
// lexicographically; anything else compares numerically, and NaN is
// never ordered.
func compare(op ast.BinaryOp, left, right Value) bool {
	if ls, ok := left.(String); ok {
		if rs, ok := right.(String); ok {
			switch op {
			case ast.OpLt:
				return ls.Value < rs.Value
			case ast.OpGt:
				return ls.Value > rs.Value
			case ast.OpLtEq:
				return ls.Value <= rs.Value
			default:
				return ls.Value >= rs.Value
			}
		}
	}
	l, r := ToNumber(left), ToNumber(right)
	switch op {
	case ast.OpLt:
		return l < r
	case ast.OpGt:
		return l > r
	case ast.OpLtEq:
		return l <= r
	default:
		return l >= r
	}
}

func unaryOp(op ast.UnaryOp, operand Value, span ast.Span) (Value, error) {
	switch op {
	case ast.OpNot:
		return NewBool(!Truthiness(operand)), nil
	case ast.OpNeg:
		return NewNumber(-ToNumber(operand)), nil
	case ast.OpPlus:
		return NewNumber(ToNumber(operand)), nil
	}
	return nil, &RuntimeError{
		Code:    diagnostics.ERuntime,
		Message: fmt.Sprintf("unknown unary operator '%s'", op),
		Span:    &span,
	}
}
