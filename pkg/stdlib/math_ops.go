package stdlib

import (
	"math"
	"math/rand"

	"github.com/thomasrohde/yap/pkg/evaluator"
)

var unaryMath = map[string]func(float64) float64{
	"abs":   math.Abs,
	"ceil":  math.Ceil,
	"floor": math.Floor,
	"round": round,
	"trunc": math.Trunc,
	"sign":  sign,
	"sqrt":  math.Sqrt,
	"cbrt":  math.Cbrt,
	"exp":   math.Exp,
	"log":   math.Log,
	"log2":  math.Log2,
	"log10": math.Log10,
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"asin":  math.Asin,
	"acos":  math.Acos,
	"atan":  math.Atan,
}

var mathConsts = map[string]float64{
	"PI":      math.Pi,
	"E":       math.E,
	"LN2":     math.Ln2,
	"LN10":    math.Ln10,
	"LOG2E":   math.Log2E,
	"LOG10E":  math.Log10E,
	"SQRT2":   math.Sqrt2,
	"SQRT1_2": 1 / math.Sqrt2,
}

func registerMath(r *Registry, rng *rand.Rand) {
	for name, f := range unaryMath {
		f := f
		r.Register(Fn{Name: "Math." + name, Arity: 1, Execute: func(args []evaluator.Value) (evaluator.Value, error) {
			return evaluator.NewNumber(f(evaluator.ToNumber(args[0]))), nil
		}})
	}

	r.Register(Fn{Name: "Math.pow", Arity: 2, Execute: func(args []evaluator.Value) (evaluator.Value, error) {
		return evaluator.NewNumber(pow(evaluator.ToNumber(args[0]), evaluator.ToNumber(args[1]))), nil
	}})
	r.Register(Fn{Name: "Math.atan2", Arity: 2, Execute: func(args []evaluator.Value) (evaluator.Value, error) {
		return evaluator.NewNumber(math.Atan2(evaluator.ToNumber(args[0]), evaluator.ToNumber(args[1]))), nil
	}})

	r.Register(Fn{Name: "Math.min", Arity: -1, Execute: fold(math.Inf(1), func(acc, x float64) float64 {
		if math.IsNaN(acc) || math.IsNaN(x) {
			return math.NaN()
		}
		return math.Min(acc, x)
	})})
	r.Register(Fn{Name: "Math.max", Arity: -1, Execute: fold(math.Inf(-1), func(acc, x float64) float64 {
		if math.IsNaN(acc) || math.IsNaN(x) {
			return math.NaN()
		}
		return math.Max(acc, x)
	})})
	r.Register(Fn{Name: "Math.hypot", Arity: -1, Execute: fold(0, math.Hypot)})

	r.Register(Fn{Name: "Math.random", Arity: 0, Execute: func(args []evaluator.Value) (evaluator.Value, error) {
		return evaluator.NewNumber(rng.Float64()), nil
	}})

	for name, v := range mathConsts {
		r.RegisterConst("Math."+name, evaluator.NewNumber(v))
	}
}

func fold(initial float64, step func(acc, x float64) float64) func(args []evaluator.Value) (evaluator.Value, error) {
	return func(args []evaluator.Value) (evaluator.Value, error) {
		acc := initial
		for _, a := range args {
			acc = step(acc, evaluator.ToNumber(a))
		}
		return evaluator.NewNumber(acc), nil
	}
}

// round rounds half up, so round(-2.5) is -2.
func round(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	r := math.Floor(x)
	if x-r >= 0.5 {
		r++
	}
	return r
}

func sign(x float64) float64 {
	switch {
	case math.IsNaN(x), x == 0:
		return x
	case x > 0:
		return 1
	default:
		return -1
	}
}

// pow differs from math.Pow where a NaN exponent or a unit base with an
// infinite exponent must give NaN.
func pow(x, y float64) float64 {
	if math.IsNaN(y) || (math.IsInf(y, 0) && math.Abs(x) == 1) {
		return math.NaN()
	}
	return math.Pow(x, y)
}
