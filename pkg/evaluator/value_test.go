package evaluator_test

import (
	"math"
	"testing"

	"github.com/thomasrohde/yap/pkg/evaluator"
)

func TestTruthiness(t *testing.T) {
	tests := []struct {
		value    evaluator.Value
		expected bool
	}{
		{evaluator.NewUndefined(), false},
		{evaluator.NewBool(false), false},
		{evaluator.NewBool(true), true},
		{evaluator.NewNumber(0), false},
		{evaluator.NewNumber(math.NaN()), false},
		{evaluator.NewNumber(1), true},
		{evaluator.NewNumber(-1), true},
		{evaluator.NewString(""), false},
		{evaluator.NewString("0"), true},
		{evaluator.NewArray(nil), true},
		{evaluator.NewNamespace("Math"), true},
	}

	for i, tt := range tests {
		got := evaluator.Truthiness(tt.value)
		if got != tt.expected {
			t.Errorf("test %d: Truthiness(%v) = %v, want %v", i, tt.value, got, tt.expected)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{42, "42"},
		{-7, "-7"},
		{3.5, "3.5"},
		{0.1 + 0.2, "0.30000000000000004"},
		{1e20, "100000000000000000000"},
		{1e21, "1e+21"},
		{1.5e-7, "1.5e-7"},
		{0.000001, "0.000001"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
	}
	for _, tt := range tests {
		if got := evaluator.FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToString(t *testing.T) {
	fn := &evaluator.Function{Name: "add"}
	tests := []struct {
		in   evaluator.Value
		want string
	}{
		{evaluator.NewUndefined(), "undefined"},
		{evaluator.NewBool(true), "true"},
		{evaluator.NewString("s"), "s"},
		{evaluator.NewArray([]evaluator.Value{evaluator.NewNumber(1), evaluator.NewString("a")}), "1,a"},
		{evaluator.NewArray([]evaluator.Value{evaluator.NewUndefined(), evaluator.NewNumber(2)}), ",2"},
		{fn, "[function add]"},
		{evaluator.NewNamespace("Math"), "[object Math]"},
	}
	for _, tt := range tests {
		if got := evaluator.ToString(tt.in); got != tt.want {
			t.Errorf("ToString(%T) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToNumber(t *testing.T) {
	tests := []struct {
		in   evaluator.Value
		want float64
	}{
		{evaluator.NewNumber(2.5), 2.5},
		{evaluator.NewBool(true), 1},
		{evaluator.NewBool(false), 0},
		{evaluator.NewString(""), 0},
		{evaluator.NewString("  7 "), 7},
		{evaluator.NewString("-1.5e2"), -150},
		{evaluator.NewString("0x1F"), 31},
		{evaluator.NewString("Infinity"), math.Inf(1)},
		{evaluator.NewArray(nil), 0},
		{evaluator.NewArray([]evaluator.Value{evaluator.NewNumber(9)}), 9},
	}
	for _, tt := range tests {
		if got := evaluator.ToNumber(tt.in); got != tt.want {
			t.Errorf("ToNumber(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}

	for _, in := range []evaluator.Value{
		evaluator.NewUndefined(),
		evaluator.NewString("abc"),
		evaluator.NewString("1_000"),
		evaluator.NewString("inf"),
		evaluator.NewString("NaN"),
		evaluator.NewArray([]evaluator.Value{evaluator.NewNumber(1), evaluator.NewNumber(2)}),
	} {
		if got := evaluator.ToNumber(in); !math.IsNaN(got) {
			t.Errorf("ToNumber(%v) = %v, want NaN", in, got)
		}
	}
}

func TestEqualityPredicates(t *testing.T) {
	one := evaluator.NewNumber(1)
	strOne := evaluator.NewString("1")
	arr := evaluator.NewArray([]evaluator.Value{one})

	if !evaluator.LooseEqual(one, strOne) {
		t.Error("1 == \"1\" should be true")
	}
	if evaluator.StrictEqual(one, strOne) {
		t.Error("1 === \"1\" should be false")
	}
	if !evaluator.StrictEqual(arr, arr) {
		t.Error("array should be strictly equal to itself")
	}
	if evaluator.StrictEqual(arr, evaluator.NewArray([]evaluator.Value{one})) {
		t.Error("distinct arrays should not be strictly equal")
	}
	if !evaluator.LooseEqual(arr, strOne) || !evaluator.LooseEqual(strOne, arr) {
		t.Error("[1] == \"1\" should be true both ways")
	}
	if evaluator.LooseEqual(evaluator.NewUndefined(), evaluator.NewNumber(0)) {
		t.Error("undefined == 0 should be false")
	}
	if !evaluator.LooseEqual(evaluator.NewBool(true), one) {
		t.Error("true == 1 should be true")
	}
	if !evaluator.StrictEqual(evaluator.NewNumber(0), evaluator.NewNumber(math.Copysign(0, -1))) {
		t.Error("0 === -0 should be true")
	}
}

func TestInspect(t *testing.T) {
	v := evaluator.NewArray([]evaluator.Value{
		evaluator.NewNumber(1),
		evaluator.NewString("x"),
		evaluator.NewArray([]evaluator.Value{evaluator.NewBool(false)}),
	})
	if got := evaluator.Inspect(v); got != `[1, "x", [false]]` {
		t.Errorf("got %s", got)
	}
	if got := evaluator.Inspect(evaluator.NewString("raw")); got != `"raw"` {
		t.Errorf("got %s", got)
	}
}

func TestValueToJSON(t *testing.T) {
	v := evaluator.NewArray([]evaluator.Value{
		evaluator.NewNumber(1),
		evaluator.NewNumber(2.5),
		evaluator.NewString("s"),
		evaluator.NewUndefined(),
		evaluator.NewNumber(math.Inf(1)),
		&evaluator.Function{Name: "f"},
	})
	got := evaluator.ValueToJSONString(v)
	want := `[1,2.5,"s",null,null,"[function f]"]`
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestEnvDeclareAssign(t *testing.T) {
	global := evaluator.NewEnv(nil)
	global.Declare("x", evaluator.NewNumber(1))
	inner := global.Child().Child()

	if !inner.Assign("x", evaluator.NewNumber(2)) {
		t.Fatal("Assign should find x in the global scope")
	}
	if v, _ := global.Get("x"); evaluator.ToNumber(v) != 2 {
		t.Errorf("global x = %v, want 2", v)
	}
	if inner.Assign("y", evaluator.NewNumber(1)) {
		t.Error("Assign to unbound name should report false")
	}
	if inner.Has("y") || global.Has("y") {
		t.Error("failed Assign must not create a binding")
	}

	inner.Declare("x", evaluator.NewString("shadow"))
	if !inner.HasLocal("x") || global.HasLocal("y") {
		t.Error("Declare should bind locally")
	}
	if v, _ := global.Get("x"); evaluator.ToNumber(v) != 2 {
		t.Errorf("shadowing changed the outer binding: %v", v)
	}
	if inner.Parent().Parent() != global || global.Parent() != nil {
		t.Error("parent chain is wrong")
	}
	if names := global.Names(); len(names) != 1 || names[0] != "x" {
		t.Errorf("Names() = %v", names)
	}
}
