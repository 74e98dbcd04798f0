package stdlib_test

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/thomasrohde/yap/pkg/diagnostics"
	"github.com/thomasrohde/yap/pkg/evaluator"
	"github.com/thomasrohde/yap/pkg/parser"
	"github.com/thomasrohde/yap/pkg/stdlib"
)

// run executes src against default globals, returning stdout and the result.
func run(t *testing.T, src string) (string, *evaluator.Result, error) {
	t.Helper()
	var buf bytes.Buffer
	reg := stdlib.NewRegistry()
	stdlib.RegisterDefaults(reg, stdlib.Host{Stdout: &buf, RandomSeed: 7})
	env := stdlib.NewGlobals(reg, stdlib.GlobalsOptions{Aliases: stdlib.DefaultAliases()})

	prog, diags := parser.Parse(src, "test.yap")
	if len(diags) > 0 {
		t.Fatalf("parse errors: %s", diagnostics.FormatDiagnostics(diags, true))
	}
	res, err := evaluator.Run(prog, env, evaluator.Options{})
	return buf.String(), res, err
}

func mustRun(t *testing.T, src string) (string, evaluator.Value) {
	t.Helper()
	out, res, err := run(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return out, res.Value
}

func number(t *testing.T, src string) float64 {
	t.Helper()
	_, v := mustRun(t, src)
	n, ok := v.(evaluator.Number)
	if !ok {
		t.Fatalf("%s: expected Number, got %T", src, v)
	}
	return n.Value
}

func TestPrintFormatting(t *testing.T) {
	tests := []struct {
		src, want string
	}{
		{`print("hello");`, "hello\n"},
		{`print(1, "two", true);`, "1 two true\n"},
		{`print();`, "\n"},
		{`print([1, 2, "x"]);`, "[1, 2, \"x\"]\n"},
		{`print([[1], []]);`, "[[1], []]\n"},
		{`print(0.1 + 0.2);`, "0.30000000000000004\n"},
		{`print(1 / 0, -1 / 0, 0 / 0);`, "Infinity -Infinity NaN\n"},
		{`let u; print(u);`, "undefined\n"},
		{`function f() {} print(f);`, "[function f]\n"},
		{`print(Math);`, "[object Math]\n"},
		{`yapping("slang works");`, "slang works\n"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			out, _ := mustRun(t, tt.src)
			if out != tt.want {
				t.Errorf("got %q, want %q", out, tt.want)
			}
		})
	}
}

func TestPrintReturnsUndefined(t *testing.T) {
	_, v := mustRun(t, `print("x");`)
	if _, ok := v.(evaluator.Undefined); !ok {
		t.Errorf("got %T", v)
	}
}

func TestMathFunctions(t *testing.T) {
	tests := []struct {
		src  string
		want float64
	}{
		{`Math.abs(-3);`, 3},
		{`Math.floor(2.7);`, 2},
		{`Math.ceil(2.1);`, 3},
		{`Math.round(2.5);`, 3},
		{`Math.round(-2.5);`, -2},
		{`Math.round(0.49999999999999994);`, 0},
		{`Math.trunc(-4.7);`, -4},
		{`Math.sign(-9);`, -1},
		{`Math.sqrt(16);`, 4},
		{`Math.pow(2, 10);`, 1024},
		{`Math.max(1, 5, 3);`, 5},
		{`Math.min(4, -2, 8);`, -2},
		{`Math.hypot(3, 4);`, 5},
		{`Math.hypot();`, 0},
		{`Math.exp(0);`, 1},
		{`Math.log2(8);`, 3},
		{`Math.abs("-2");`, 2},
		{`nerdShit.max(2, 9);`, 9},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			if got := number(t, tt.src); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMathEdgeCases(t *testing.T) {
	if got := number(t, `Math.min();`); !math.IsInf(got, 1) {
		t.Errorf("Math.min() = %v, want +Inf", got)
	}
	if got := number(t, `Math.max();`); !math.IsInf(got, -1) {
		t.Errorf("Math.max() = %v, want -Inf", got)
	}
	if got := number(t, `Math.max(1, "x");`); !math.IsNaN(got) {
		t.Errorf("Math.max with NaN = %v", got)
	}
	if got := number(t, `Math.pow(1, 1 / 0);`); !math.IsNaN(got) {
		t.Errorf("pow(1, Inf) = %v, want NaN", got)
	}
	if got := number(t, `Math.sqrt(-1);`); !math.IsNaN(got) {
		t.Errorf("sqrt(-1) = %v, want NaN", got)
	}
}

func TestMathConstants(t *testing.T) {
	if got := number(t, `Math.PI;`); got != math.Pi {
		t.Errorf("PI = %v", got)
	}
	if got := number(t, `Math.E + Math.LN2 + Math.LN10 + Math.SQRT2;`); got != math.E+math.Ln2+math.Ln10+math.Sqrt2 {
		t.Errorf("constants sum = %v", got)
	}
	_, v := mustRun(t, `Math.nope;`)
	if _, ok := v.(evaluator.Undefined); !ok {
		t.Errorf("missing member should be undefined, got %T", v)
	}
}

func TestMathRandomIsSeeded(t *testing.T) {
	a := number(t, `Math.random();`)
	b := number(t, `Math.random();`)
	if a != b {
		t.Errorf("same seed produced %v and %v", a, b)
	}
	if a < 0 || a >= 1 {
		t.Errorf("random out of range: %v", a)
	}
}

func TestMathArity(t *testing.T) {
	for _, src := range []string{`Math.abs();`, `Math.pow(2);`, `Math.random(1);`} {
		_, _, err := run(t, src)
		var rerr *evaluator.RuntimeError
		if !errors.As(err, &rerr) || rerr.Code != diagnostics.EArity {
			t.Errorf("%s: expected E_ARITY, got %v", src, err)
		}
	}
}

func TestNewGlobalsAliases(t *testing.T) {
	reg := stdlib.NewRegistry()
	stdlib.RegisterDefaults(reg, stdlib.Host{Stdout: &bytes.Buffer{}})

	env := stdlib.NewGlobals(reg, stdlib.GlobalsOptions{Aliases: map[string][]string{
		"print": {"say"},
	}})
	if !env.Has("say") || env.Has("print") || env.Has("yapping") {
		t.Errorf("print aliases not applied: %v", env.Names())
	}
	if !env.Has("Math") {
		t.Errorf("Math should bind under its own name: %v", env.Names())
	}
	ns, _ := env.Get("Math")
	if _, ok := ns.(*evaluator.Namespace).Get("abs"); !ok {
		t.Error("Math.abs missing")
	}
}

func TestRegistryNames(t *testing.T) {
	reg := stdlib.NewRegistry()
	stdlib.RegisterDefaults(reg, stdlib.Host{Stdout: &bytes.Buffer{}})
	names := reg.Names()
	seen := map[string]bool{}
	for _, n := range names {
		seen[n] = true
	}
	for _, want := range []string{"print", "Math.abs", "Math.random", "Math.PI"} {
		if !seen[want] {
			t.Errorf("missing %s in %v", want, names)
		}
	}
	if reg.Get("Math.max").Arity != -1 {
		t.Error("Math.max should be variadic")
	}
}
