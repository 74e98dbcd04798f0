// Package diagnostics defines yap diagnostic types for lex, syntax, validation and runtime errors.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/thomasrohde/yap/pkg/ast"
)

// Diagnostic code constants.
const (
	ELex       = "E_LEX"
	ESyntax    = "E_SYNTAX"
	EReference = "E_REFERENCE"
	EType      = "E_TYPE"
	EArity     = "E_ARITY"
	ERuntime   = "E_RUNTIME"
	EUnbound   = "E_UNBOUND"
	EDupParam  = "E_DUP_PARAM"
	EIO        = "E_IO"
	EConfig    = "E_CONFIG"
)

// Diagnostic is the user-facing form of every error the toolchain reports.
type Diagnostic struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Span    *ast.Span `json:"span,omitempty"`
	Hint    string    `json:"hint,omitempty"`
}

// MakeDiag creates a new Diagnostic.
func MakeDiag(code, message string, span *ast.Span, hint string) Diagnostic {
	return Diagnostic{
		Code:    code,
		Message: message,
		Span:    span,
		Hint:    hint,
	}
}

// FormatDiagnostic formats a single diagnostic for display.
func FormatDiagnostic(d Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(d)
		return string(b)
	}
	loc := "<unknown>"
	if d.Span != nil {
		loc = fmt.Sprintf("%s:%d:%d", d.Span.File, d.Span.StartLine, d.Span.StartCol)
	}
	out := fmt.Sprintf("error[%s]: %s\n  --> %s", d.Code, d.Message, loc)
	if d.Hint != "" {
		out += fmt.Sprintf("\n  hint: %s", d.Hint)
	}
	return out
}

// FormatDiagnostics formats a slice of diagnostics for display.
func FormatDiagnostics(diags []Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(diags)
		return string(b)
	}
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = FormatDiagnostic(d, true)
	}
	return strings.Join(parts, "\n\n")
}

// IsRuntimeCode reports whether code is raised while a program executes,
// as opposed to during lexing, parsing or validation.
func IsRuntimeCode(code string) bool {
	switch code {
	case EReference, EType, EArity, ERuntime:
		return true
	}
	return false
}
