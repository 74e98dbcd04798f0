package diagnostics_test

import (
	"strings"
	"testing"

	"github.com/thomasrohde/yap/pkg/ast"
	"github.com/thomasrohde/yap/pkg/diagnostics"
)

func TestMakeDiag(t *testing.T) {
	span := &ast.Span{File: "test.yap", StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 5}
	d := diagnostics.MakeDiag(diagnostics.ESyntax, "unexpected token", span, "check syntax")

	if d.Code != diagnostics.ESyntax {
		t.Errorf("got Code = %q, want %q", d.Code, diagnostics.ESyntax)
	}
	if d.Message != "unexpected token" {
		t.Errorf("got Message = %q, want %q", d.Message, "unexpected token")
	}
}

func TestFormatDiagnosticPretty(t *testing.T) {
	span := &ast.Span{File: "test.yap", StartLine: 3, StartCol: 5, EndLine: 3, EndCol: 10}
	d := diagnostics.MakeDiag(diagnostics.EUnbound, "unbound variable 'x'", span, "did you mean 'y'?")

	out := diagnostics.FormatDiagnostic(d, true)
	if !strings.Contains(out, "error[E_UNBOUND]") {
		t.Errorf("expected error code in output, got: %s", out)
	}
	if !strings.Contains(out, "test.yap:3:5") {
		t.Errorf("expected location in output, got: %s", out)
	}
	if !strings.Contains(out, "hint:") {
		t.Errorf("expected hint in output, got: %s", out)
	}
}

func TestFormatDiagnosticJSON(t *testing.T) {
	d := diagnostics.MakeDiag(diagnostics.ELex, "bad token", nil, "")
	out := diagnostics.FormatDiagnostic(d, false)
	if !strings.Contains(out, `"code":"E_LEX"`) {
		t.Errorf("expected JSON code in output, got: %s", out)
	}
	if strings.Contains(out, "span") {
		t.Errorf("nil span should be omitted, got: %s", out)
	}
}

func TestFormatDiagnosticsPretty(t *testing.T) {
	diags := []diagnostics.Diagnostic{
		diagnostics.MakeDiag(diagnostics.EUnbound, "a", nil, ""),
		diagnostics.MakeDiag(diagnostics.EDupParam, "b", nil, ""),
	}
	out := diagnostics.FormatDiagnostics(diags, true)
	if !strings.Contains(out, "<unknown>") {
		t.Errorf("expected unknown location, got: %s", out)
	}
	if strings.Count(out, "error[") != 2 {
		t.Errorf("expected two diagnostics, got: %s", out)
	}
}

func TestIsRuntimeCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{diagnostics.EReference, true},
		{diagnostics.EArity, true},
		{diagnostics.EType, true},
		{diagnostics.ERuntime, true},
		{diagnostics.ESyntax, false},
		{diagnostics.ELex, false},
		{diagnostics.EConfig, false},
	}
	for _, tt := range tests {
		if got := diagnostics.IsRuntimeCode(tt.code); got != tt.want {
			t.Errorf("IsRuntimeCode(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}
