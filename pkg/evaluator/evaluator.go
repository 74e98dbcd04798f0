package evaluator

import (
	"errors"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/thomasrohde/yap/pkg/ast"
	"github.com/thomasrohde/yap/pkg/diagnostics"
)

// TraceEventType identifies the type of a trace event.
type TraceEventType string

const (
	TraceRunStart   TraceEventType = "run_start"
	TraceRunEnd     TraceEventType = "run_end"
	TraceCallStart  TraceEventType = "call_start"
	TraceCallEnd    TraceEventType = "call_end"
	TraceNativeCall TraceEventType = "native_call"
	TraceLoopStart  TraceEventType = "loop_start"
	TraceLoopEnd    TraceEventType = "loop_end"
	TraceError      TraceEventType = "error"
)

// TraceEvent represents a single trace event emitted during execution.
type TraceEvent struct {
	Timestamp string            `json:"ts"`
	RunID     string            `json:"runId"`
	Event     TraceEventType    `json:"event"`
	Span      *ast.Span         `json:"span,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
}

// DefaultMaxCallDepth bounds user-function recursion when Options leaves it zero.
const DefaultMaxCallDepth = 10000

// Options configures program execution.
type Options struct {
	Trace        func(event TraceEvent)
	RunID        string
	MaxCallDepth int
}

// Result holds the outcome of a program run. Value is the argument of a
// top-level return when Returned is set, otherwise the value of the last
// top-level expression statement (undefined if there was none).
type Result struct {
	Value    Value
	Returned bool
}

// RuntimeError represents an error raised while a program executes.
type RuntimeError struct {
	Code    string
	Message string
	Span    *ast.Span
}

func (e *RuntimeError) Error() string {
	return e.Message
}

// Diagnostic converts the error to a diagnostic.
func (e *RuntimeError) Diagnostic() diagnostics.Diagnostic {
	return diagnostics.MakeDiag(e.Code, e.Message, e.Span, "")
}

func runtimeErr(code string, span ast.Span, format string, args ...any) *RuntimeError {
	return &RuntimeError{Code: code, Message: fmt.Sprintf(format, args...), Span: &span}
}

type signalKind int

const (
	sigNormal signalKind = iota
	sigBreak
	sigContinue
	sigReturn
)

// controlSignal is how statements report non-local control flow.
// Only calls consume sigReturn; only loops consume sigBreak and sigContinue.
type controlSignal struct {
	kind  signalKind
	value Value
}

var normal = controlSignal{kind: sigNormal}

type evaluator struct {
	opts  Options
	depth int
}

func (ev *evaluator) emit(event TraceEventType, span *ast.Span) {
	ev.emitWithData(event, span, nil)
}

func (ev *evaluator) emitWithData(event TraceEventType, span *ast.Span, data map[string]string) {
	if ev.opts.Trace != nil {
		ev.opts.Trace(TraceEvent{
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			RunID:     ev.opts.RunID,
			Event:     event,
			Span:      span,
			Data:      data,
		})
	}
}

// Run executes program directly in globals. A nil globals gets a fresh
// empty environment.
func Run(program *ast.Program, globals *Env, opts Options) (*Result, error) {
	if globals == nil {
		globals = NewEnv(nil)
	}
	if opts.MaxCallDepth <= 0 {
		opts.MaxCallDepth = DefaultMaxCallDepth
	}
	ev := &evaluator{opts: opts}

	span := program.Span
	ev.emit(TraceRunStart, &span)
	res, err := ev.runProgram(program, globals)
	if err != nil {
		var rerr *RuntimeError
		if errors.As(err, &rerr) {
			ev.emitWithData(TraceError, rerr.Span, map[string]string{"code": rerr.Code, "message": rerr.Message})
		}
	}
	ev.emit(TraceRunEnd, &span)
	return res, err
}

func (ev *evaluator) runProgram(program *ast.Program, env *Env) (*Result, error) {
	res := &Result{Value: NewUndefined()}
	for _, stmt := range program.Body {
		if es, ok := stmt.(*ast.ExprStmt); ok {
			val, err := ev.evalExpr(es.Expr, env)
			if err != nil {
				return nil, err
			}
			res.Value = val
			continue
		}
		sig, err := ev.exec(stmt, env)
		if err != nil {
			return nil, err
		}
		if sig.kind == sigReturn {
			return &Result{Value: sig.value, Returned: true}, nil
		}
	}
	return res, nil
}

// --- Statements ---

func (ev *evaluator) execBlock(stmts []ast.Stmt, env *Env) (controlSignal, error) {
	for _, stmt := range stmts {
		sig, err := ev.exec(stmt, env)
		if err != nil || sig.kind != sigNormal {
			return sig, err
		}
	}
	return normal, nil
}

func (ev *evaluator) exec(stmt ast.Stmt, env *Env) (controlSignal, error) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		_, err := ev.evalExpr(s.Expr, env)
		return normal, err

	case *ast.VarDecl:
		var val Value = NewUndefined()
		if s.Init != nil {
			v, err := ev.evalExpr(s.Init, env)
			if err != nil {
				return normal, err
			}
			val = v
		}
		env.Declare(s.Name, val)
		return normal, nil

	case *ast.FunctionDecl:
		env.Declare(s.Name, &Function{Name: s.Name, Params: s.Params, Body: s.Body, Closure: env})
		return normal, nil

	case *ast.BlockStmt:
		return ev.execBlock(s.Body, env.Child())

	case *ast.IfStmt:
		test, err := ev.evalExpr(s.Test, env)
		if err != nil {
			return normal, err
		}
		if Truthiness(test) {
			return ev.exec(s.Consequent, env)
		}
		if s.Alternate != nil {
			return ev.exec(s.Alternate, env)
		}
		return normal, nil

	case *ast.WhileStmt:
		return ev.execWhile(s, env)

	case *ast.ForStmt:
		return ev.execFor(s, env)

	case *ast.BreakStmt:
		return controlSignal{kind: sigBreak}, nil

	case *ast.ContinueStmt:
		return controlSignal{kind: sigContinue}, nil

	case *ast.ReturnStmt:
		var val Value = NewUndefined()
		if s.Argument != nil {
			v, err := ev.evalExpr(s.Argument, env)
			if err != nil {
				return normal, err
			}
			val = v
		}
		return controlSignal{kind: sigReturn, value: val}, nil

	default:
		return normal, runtimeErr(diagnostics.ERuntime, stmt.NodeSpan(), "unsupported statement type: %s", stmt.Kind())
	}
}

func (ev *evaluator) loopTrace(kind string, span *ast.Span) func(iterations int) {
	ev.emitWithData(TraceLoopStart, span, map[string]string{"kind": kind})
	return func(iterations int) {
		ev.emitWithData(TraceLoopEnd, span, map[string]string{"kind": kind, "iterations": strconv.Itoa(iterations)})
	}
}

func (ev *evaluator) execWhile(s *ast.WhileStmt, env *Env) (controlSignal, error) {
	span := s.Span
	iterations := 0
	done := ev.loopTrace("while", &span)
	defer func() { done(iterations) }()

	for {
		test, err := ev.evalExpr(s.Test, env)
		if err != nil {
			return normal, err
		}
		if !Truthiness(test) {
			return normal, nil
		}
		iterations++
		sig, err := ev.execBlock(s.Body.Body, env.Child())
		if err != nil {
			return normal, err
		}
		switch sig.kind {
		case sigBreak:
			return normal, nil
		case sigReturn:
			return sig, nil
		}
	}
}

func (ev *evaluator) execFor(s *ast.ForStmt, env *Env) (controlSignal, error) {
	span := s.Span
	iterations := 0
	done := ev.loopTrace("for", &span)
	defer func() { done(iterations) }()

	loopEnv := env.Child()
	if s.Init != nil {
		if _, err := ev.exec(s.Init, loopEnv); err != nil {
			return normal, err
		}
	}
	for {
		if s.Test != nil {
			test, err := ev.evalExpr(s.Test, loopEnv)
			if err != nil {
				return normal, err
			}
			if !Truthiness(test) {
				return normal, nil
			}
		}
		iterations++
		sig, err := ev.execBlock(s.Body.Body, loopEnv.Child())
		if err != nil {
			return normal, err
		}
		switch sig.kind {
		case sigBreak:
			return normal, nil
		case sigReturn:
			return sig, nil
		}
		if s.Update != nil {
			if _, err := ev.evalExpr(s.Update, loopEnv); err != nil {
				return normal, err
			}
		}
	}
}

// --- Expressions ---

func (ev *evaluator) evalExpr(expr ast.Expr, env *Env) (Value, error) {
	switch e := expr.(type) {
	case *ast.NumberLiteral:
		return NewNumber(e.Value), nil

	case *ast.StringLiteral:
		return NewString(e.Value), nil

	case *ast.BooleanLiteral:
		return NewBool(e.Value), nil

	case *ast.Identifier:
		val, ok := env.Get(e.Name)
		if !ok {
			return nil, runtimeErr(diagnostics.EReference, e.Span, "%s is not defined", e.Name)
		}
		return val, nil

	case *ast.ArrayExpr:
		elems, err := ev.evalList(e.Elements, env)
		if err != nil {
			return nil, err
		}
		return NewArray(elems), nil

	case *ast.BinaryExpr:
		left, err := ev.evalExpr(e.Left, env)
		if err != nil {
			return nil, err
		}
		right, err := ev.evalExpr(e.Right, env)
		if err != nil {
			return nil, err
		}
		return binaryOp(e.Op, left, right, e.Span)

	case *ast.LogicalExpr:
		left, err := ev.evalExpr(e.Left, env)
		if err != nil {
			return nil, err
		}
		if (e.Op == ast.OpAnd) != Truthiness(left) {
			return left, nil
		}
		return ev.evalExpr(e.Right, env)

	case *ast.UnaryExpr:
		operand, err := ev.evalExpr(e.Operand, env)
		if err != nil {
			return nil, err
		}
		return unaryOp(e.Op, operand, e.Span)

	case *ast.AssignExpr:
		val, err := ev.evalExpr(e.Value, env)
		if err != nil {
			return nil, err
		}
		if !env.Assign(e.Target.Name, val) {
			return nil, runtimeErr(diagnostics.EReference, e.Target.Span, "%s is not defined", e.Target.Name)
		}
		return val, nil

	case *ast.UpdateExpr:
		cur, ok := env.Get(e.Target.Name)
		if !ok {
			return nil, runtimeErr(diagnostics.EReference, e.Target.Span, "%s is not defined", e.Target.Name)
		}
		n := ToNumber(cur)
		if e.Op == ast.OpInc {
			n++
		} else {
			n--
		}
		updated := NewNumber(n)
		env.Assign(e.Target.Name, updated)
		return updated, nil

	case *ast.CallExpr:
		return ev.evalCall(e, env)

	case *ast.MemberExpr:
		return ev.evalMember(e, env)

	default:
		return nil, runtimeErr(diagnostics.ERuntime, expr.NodeSpan(), "unsupported expression type: %s", expr.Kind())
	}
}

func (ev *evaluator) evalList(exprs []ast.Expr, env *Env) ([]Value, error) {
	vals := make([]Value, 0, len(exprs))
	for _, e := range exprs {
		v, err := ev.evalExpr(e, env)
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	return vals, nil
}

func (ev *evaluator) evalCall(e *ast.CallExpr, env *Env) (Value, error) {
	callee, err := ev.evalExpr(e.Callee, env)
	if err != nil {
		return nil, err
	}
	args, err := ev.evalList(e.Args, env)
	if err != nil {
		return nil, err
	}

	switch fn := callee.(type) {
	case *Function:
		return ev.callFunction(fn, args, e.Span)
	case *NativeFunction:
		return ev.callNative(fn, args, e.Span)
	}
	return nil, runtimeErr(diagnostics.EType, e.Span, "%s is not a function", calleeName(e.Callee))
}

func (ev *evaluator) callFunction(fn *Function, args []Value, span ast.Span) (Value, error) {
	if len(args) != len(fn.Params) {
		return nil, runtimeErr(diagnostics.EArity, span,
			"%s expects %d argument(s), got %d", fn.Name, len(fn.Params), len(args))
	}
	if ev.depth >= ev.opts.MaxCallDepth {
		return nil, runtimeErr(diagnostics.ERuntime, span, "maximum call depth exceeded (%d)", ev.opts.MaxCallDepth)
	}

	callEnv := NewEnv(fn.Closure)
	for i, name := range fn.Params {
		callEnv.Declare(name, args[i])
	}

	ev.depth++
	ev.emitWithData(TraceCallStart, &span, map[string]string{"fn": fn.Name})
	sig, err := ev.execBlock(fn.Body.Body, callEnv)
	ev.emitWithData(TraceCallEnd, &span, map[string]string{"fn": fn.Name})
	ev.depth--

	if err != nil {
		return nil, err
	}
	if sig.kind == sigReturn {
		return sig.value, nil
	}
	return NewUndefined(), nil
}

func (ev *evaluator) callNative(fn *NativeFunction, args []Value, span ast.Span) (Value, error) {
	if fn.Arity >= 0 && len(args) != fn.Arity {
		return nil, runtimeErr(diagnostics.EArity, span,
			"%s expects %d argument(s), got %d", fn.Name, fn.Arity, len(args))
	}
	ev.emitWithData(TraceNativeCall, &span, map[string]string{"fn": fn.Name})
	val, err := fn.Fn(args)
	if err != nil {
		var rerr *RuntimeError
		if errors.As(err, &rerr) {
			if rerr.Span == nil {
				rerr.Span = &span
			}
			return nil, rerr
		}
		return nil, runtimeErr(diagnostics.ERuntime, span, "%s: %s", fn.Name, err.Error())
	}
	if val == nil {
		return NewUndefined(), nil
	}
	return val, nil
}

func calleeName(e ast.Expr) string {
	switch c := e.(type) {
	case *ast.Identifier:
		return c.Name
	case *ast.MemberExpr:
		if !c.Computed {
			if id, ok := c.Property.(*ast.Identifier); ok {
				return calleeName(c.Object) + "." + id.Name
			}
		}
		return calleeName(c.Object) + "[...]"
	case *ast.CallExpr:
		return calleeName(c.Callee) + "(...)"
	}
	return "expression"
}

func (ev *evaluator) evalMember(e *ast.MemberExpr, env *Env) (Value, error) {
	obj, err := ev.evalExpr(e.Object, env)
	if err != nil {
		return nil, err
	}

	var key Value
	if id, ok := e.Property.(*ast.Identifier); ok && !e.Computed {
		key = NewString(id.Name)
	} else {
		key, err = ev.evalExpr(e.Property, env)
		if err != nil {
			return nil, err
		}
	}

	switch o := obj.(type) {
	case Undefined:
		return nil, runtimeErr(diagnostics.EType, e.Span, "cannot read property '%s' of undefined", ToString(key))
	case *Array:
		if isLengthKey(key) {
			return NewNumber(float64(len(o.Elements))), nil
		}
		if i, ok := indexKey(key); ok && i < len(o.Elements) {
			return o.Elements[i], nil
		}
	case String:
		if isLengthKey(key) {
			return NewNumber(float64(utf8.RuneCountInString(o.Value))), nil
		}
		if i, ok := indexKey(key); ok {
			runes := []rune(o.Value)
			if i < len(runes) {
				return NewString(string(runes[i])), nil
			}
		}
	case *Namespace:
		if v, ok := o.Get(ToString(key)); ok {
			return v, nil
		}
	}
	return NewUndefined(), nil
}

func isLengthKey(key Value) bool {
	s, ok := key.(String)
	return ok && s.Value == "length"
}

// indexKey accepts non-negative integral numbers and their canonical
// string spellings.
func indexKey(key Value) (int, bool) {
	switch k := key.(type) {
	case Number:
		if k.Value >= 0 && k.Value < 1<<31 && k.Value == float64(int(k.Value)) {
			return int(k.Value), true
		}
	case String:
		i, err := strconv.Atoi(k.Value)
		if err == nil && i >= 0 && strconv.Itoa(i) == k.Value {
			return i, true
		}
	}
	return 0, false
}
