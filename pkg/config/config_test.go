package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/thomasrohde/yap/pkg/diagnostics"
	"github.com/thomasrohde/yap/pkg/lexer"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.KeywordMode() != lexer.KeywordsAny {
		t.Errorf("expected keywords any, got %q", cfg.KeywordMode())
	}
	aliases := cfg.Aliases()
	if strings.Join(aliases["print"], ",") != "print,yapping" {
		t.Errorf("unexpected print aliases %v", aliases["print"])
	}
	if strings.Join(aliases["Math"], ",") != "Math,nerdShit" {
		t.Errorf("unexpected Math aliases %v", aliases["Math"])
	}
}

func TestLoadFileOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "c.yaml", "keywords: slang\npretty: true\nrandom_seed: 42\nprint_names: say\n")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.KeywordMode() != lexer.KeywordsSlang {
		t.Errorf("expected slang, got %q", cfg.Keywords)
	}
	if !cfg.Pretty || cfg.RandomSeed != 42 {
		t.Errorf("fields not decoded: %+v", cfg)
	}
	if len(cfg.PrintNames) != 1 || cfg.PrintNames[0] != "say" {
		t.Errorf("expected scalar name list, got %v", cfg.PrintNames)
	}
	if strings.Join(cfg.MathNames, ",") != "Math,nerdShit" {
		t.Errorf("math names should keep defaults, got %v", cfg.MathNames)
	}
	if cfg.RunID != "cli" || cfg.Path != path {
		t.Errorf("unexpected run id/path: %q %q", cfg.RunID, cfg.Path)
	}
}

func TestLoadFileEmpty(t *testing.T) {
	path := writeFile(t, t.TempDir(), "c.yaml", "")
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Keywords != "any" {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestLoadFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown field", "colour: red\n", "colour"},
		{"bad keywords", "keywords: gibberish\n", "keywords"},
		{"empty print names", "print_names: []\n", "print_names must not be empty"},
		{"bad identifier", "math_names: [\"2fast\"]\n", "not a valid identifier"},
		{"keyword as name", "print_names: [while]\n", "not a valid identifier"},
		{"negative depth", "max_call_depth: -1\n", "max_call_depth"},
		{"malformed", "keywords: [\n", "config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "c.yaml", tt.content)
			_, err := LoadFile(path)
			var cfgErr *Error
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *Error, got %v", err)
			}
			if !strings.Contains(cfgErr.Error(), tt.want) {
				t.Errorf("expected %q in %q", tt.want, cfgErr.Error())
			}
			d := cfgErr.Diagnostic()
			if d.Code != diagnostics.EConfig {
				t.Errorf("expected E_CONFIG, got %s", d.Code)
			}
			if d.Span == nil || d.Span.File != path {
				t.Errorf("expected span pointing at %s, got %+v", path, d.Span)
			}
		})
	}
}

func TestValidateCollectsAllIssues(t *testing.T) {
	cfg := Default()
	cfg.Keywords = "nope"
	cfg.PrintNames = nil
	cfg.MathNames = nil
	err := cfg.Validate()
	var cfgErr *Error
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if len(cfgErr.Issues) != 3 {
		t.Errorf("expected 3 issues, got %v", cfgErr.Issues)
	}
}

func TestLoadPrecedence(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	project := t.TempDir()

	cfg, err := Load(project)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Path != "" {
		t.Errorf("expected defaults, got config from %s", cfg.Path)
	}

	writeFile(t, home, filepath.FromSlash(UserFile), "run_id: user\n")
	cfg, err = Load(project)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RunID != "user" {
		t.Errorf("expected user config, got %q", cfg.RunID)
	}

	writeFile(t, project, ProjectFile, "run_id: project\n")
	cfg, err = Load(project)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RunID != "project" {
		t.Errorf("expected project config, got %q", cfg.RunID)
	}
}

func TestLoadBrokenProjectFileIsAnError(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	project := t.TempDir()
	writeFile(t, project, ProjectFile, "keywords: klingon\n")
	if _, err := Load(project); err == nil {
		t.Fatal("expected error for invalid project config")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Pretty = true
	data, err := cfg.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{"keywords: any", "pretty: true", "- yapping", "- nerdShit"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "path") {
		t.Errorf("path should not be marshaled:\n%s", out)
	}

	path := writeFile(t, t.TempDir(), "c.yaml", out)
	back, err := LoadFile(path)
	if err != nil {
		t.Fatalf("reloading marshaled config: %v", err)
	}
	if !back.Pretty || strings.Join(back.PrintNames, ",") != "print,yapping" {
		t.Errorf("round trip lost fields: %+v", back)
	}
}
