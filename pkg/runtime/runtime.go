// Package runtime provides the top-level yap runtime orchestrator.
package runtime

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/thomasrohde/yap/pkg/ast"
	"github.com/thomasrohde/yap/pkg/config"
	"github.com/thomasrohde/yap/pkg/diagnostics"
	"github.com/thomasrohde/yap/pkg/evaluator"
	"github.com/thomasrohde/yap/pkg/formatter"
	"github.com/thomasrohde/yap/pkg/lexer"
	"github.com/thomasrohde/yap/pkg/parser"
	"github.com/thomasrohde/yap/pkg/stdlib"
	"github.com/thomasrohde/yap/pkg/validator"
)

// Result holds the outcome of a program execution.
type Result struct {
	Value    evaluator.Value
	Returned bool
}

// Runtime wires together the yap components for program execution.
type Runtime struct {
	cfg      *config.Config
	stdout   io.Writer
	registry *stdlib.Registry
	trace    func(event evaluator.TraceEvent)
}

// Option is a functional option for configuring the Runtime.
type Option func(*Runtime)

// WithStdout sets the writer print sends output to.
func WithStdout(w io.Writer) Option {
	return func(rt *Runtime) {
		rt.stdout = w
	}
}

// WithTrace sets the trace callback.
func WithTrace(fn func(event evaluator.TraceEvent)) Option {
	return func(rt *Runtime) {
		rt.trace = fn
	}
}

// WithConfig replaces the default configuration.
func WithConfig(cfg *config.Config) Option {
	return func(rt *Runtime) {
		rt.cfg = cfg
	}
}

// WithRegistry supplies a prebuilt built-in registry. WithStdout and the
// configured random seed do not apply to it.
func WithRegistry(r *stdlib.Registry) Option {
	return func(rt *Runtime) {
		rt.registry = r
	}
}

// New creates a new Runtime with the given options.
// By default print writes to os.Stdout and config.Default() applies.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		cfg:    config.Default(),
		stdout: os.Stdout,
	}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.registry == nil {
		rt.registry = stdlib.NewRegistry()
		stdlib.RegisterDefaults(rt.registry, stdlib.Host{Stdout: rt.stdout, RandomSeed: rt.cfg.RandomSeed})
	}
	return rt
}

// Config returns the configuration the runtime was built with.
func (rt *Runtime) Config() *config.Config {
	return rt.cfg
}

// Globals builds a fresh global scope holding the built-ins under their
// configured names.
func (rt *Runtime) Globals() *evaluator.Env {
	return stdlib.NewGlobals(rt.registry, stdlib.GlobalsOptions{Aliases: rt.cfg.Aliases()})
}

func (rt *Runtime) parse(source, filename string) (*ast.Program, error) {
	program, diags := parser.ParseWith(source, filename, lexer.Options{Keywords: rt.cfg.KeywordMode()})
	if len(diags) > 0 {
		return nil, &DiagnosticError{Diagnostics: diags}
	}
	return program, nil
}

func (rt *Runtime) execOptions() evaluator.Options {
	return evaluator.Options{
		Trace:        rt.trace,
		RunID:        rt.cfg.RunID,
		MaxCallDepth: rt.cfg.MaxCallDepth,
	}
}

// Run parses and executes a yap program in a fresh global scope.
// Lex and syntax errors are returned as *DiagnosticError; failures during
// execution as *evaluator.RuntimeError.
func (rt *Runtime) Run(source, filename string) (*Result, error) {
	program, err := rt.parse(source, filename)
	if err != nil {
		return nil, err
	}
	return rt.exec(program, rt.Globals())
}

func (rt *Runtime) exec(program *ast.Program, env *evaluator.Env) (*Result, error) {
	res, err := evaluator.Run(program, env, rt.execOptions())
	if err != nil {
		return nil, err
	}
	return &Result{Value: res.Value, Returned: res.Returned}, nil
}

// Check parses and validates a yap program without executing it.
func (rt *Runtime) Check(source, filename string) []diagnostics.Diagnostic {
	program, diags := parser.ParseWith(source, filename, lexer.Options{Keywords: rt.cfg.KeywordMode()})
	if len(diags) > 0 {
		return diags
	}
	return validator.Validate(program, rt.Globals().Names())
}

// Format parses a yap program and prints it in the given dialect.
func (rt *Runtime) Format(source, filename string, dialect formatter.Dialect) (string, error) {
	program, err := rt.parse(source, filename)
	if err != nil {
		return "", err
	}
	return formatter.Format(program, formatter.Options{Dialect: dialect}), nil
}

// Session evaluates successive chunks of source against one global scope.
type Session struct {
	rt     *Runtime
	env    *evaluator.Env
	chunks int
}

// NewSession starts a session with fresh globals.
func (rt *Runtime) NewSession() *Session {
	return &Session{rt: rt, env: rt.Globals()}
}

// Eval parses and runs one chunk. Bindings made by earlier chunks stay
// visible; a chunk that fails keeps whatever it changed before the error.
func (s *Session) Eval(source string) (*Result, error) {
	s.chunks++
	program, err := s.rt.parse(source, fmt.Sprintf("<repl:%d>", s.chunks))
	if err != nil {
		return nil, err
	}
	return s.rt.exec(program, s.env)
}

// Names lists the bindings currently visible in the session.
func (s *Session) Names() []string {
	return s.env.Names()
}

// DiagnosticError wraps diagnostics as an error.
type DiagnosticError struct {
	Diagnostics []diagnostics.Diagnostic
}

func (e *DiagnosticError) Error() string {
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
	return strings.Join(msgs, "; ")
}
