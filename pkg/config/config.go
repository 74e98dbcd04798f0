// Package config loads yap settings from YAML files.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/thomasrohde/yap/pkg/ast"
	"github.com/thomasrohde/yap/pkg/diagnostics"
	"github.com/thomasrohde/yap/pkg/lexer"
)

const (
	// ProjectFile is looked up in the working directory.
	ProjectFile = ".yap.yaml"
	// UserFile is looked up under the user's home directory.
	UserFile = ".yap/config.yaml"
)

// Config holds the effective settings for a run.
type Config struct {
	Keywords     string   `yaml:"keywords"`
	Pretty       bool     `yaml:"pretty"`
	RunID        string   `yaml:"run_id"`
	RandomSeed   int64    `yaml:"random_seed"`
	MaxCallDepth int      `yaml:"max_call_depth"`
	PrintNames   nameList `yaml:"print_names"`
	MathNames    nameList `yaml:"math_names"`

	// Path is the file the config was loaded from, empty for defaults.
	Path string `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Keywords:     string(lexer.KeywordsAny),
		RunID:        "cli",
		MaxCallDepth: 10000,
		PrintNames:   nameList{"print", "yapping"},
		MathNames:    nameList{"Math", "nerdShit"},
	}
}

// Error is a configuration failure, reported with code E_CONFIG.
type Error struct {
	Path   string
	Issues []string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("config")
	if e.Path != "" {
		b.WriteString(" ")
		b.WriteString(e.Path)
	}
	b.WriteString(": ")
	b.WriteString(strings.Join(e.Issues, "; "))
	return b.String()
}

// Diagnostic converts the error to an E_CONFIG diagnostic.
func (e *Error) Diagnostic() diagnostics.Diagnostic {
	var span *ast.Span
	if e.Path != "" {
		span = &ast.Span{File: e.Path, StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 1}
	}
	return diagnostics.MakeDiag(diagnostics.EConfig, e.Error(), span, "see `yap help config`")
}

// Load finds the effective configuration.
// Precedence: project (.yap.yaml in projectDir) → user (~/.yap/config.yaml) → defaults.
// A file that exists but cannot be parsed or validated is an error.
func Load(projectDir string) (*Config, error) {
	projectPath := filepath.Join(projectDir, ProjectFile)
	if cfg, err := LoadFile(projectPath); err == nil || !errors.Is(err, os.ErrNotExist) {
		return cfg, err
	}

	homeDir, err := os.UserHomeDir()
	if err == nil {
		userPath := filepath.Join(homeDir, filepath.FromSlash(UserFile))
		if cfg, err := LoadFile(userPath); err == nil || !errors.Is(err, os.ErrNotExist) {
			return cfg, err
		}
	}

	return Default(), nil
}

// LoadFile reads one config file, overlaying it on the defaults.
// Errors wrap os.ErrNotExist when the file is missing.
func LoadFile(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()

	cfg := Default()
	cfg.Path = path

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, &Error{Path: path, Issues: []string{err.Error()}}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field, collecting all problems into one *Error.
func (c *Config) Validate() error {
	var issues []string
	if _, err := lexer.ParseKeywords(c.Keywords); err != nil {
		issues = append(issues, "keywords: "+err.Error())
	}
	if c.MaxCallDepth < 0 {
		issues = append(issues, "max_call_depth must not be negative")
	}
	if len(c.PrintNames) == 0 {
		issues = append(issues, "print_names must not be empty")
	}
	if len(c.MathNames) == 0 {
		issues = append(issues, "math_names must not be empty")
	}
	for _, name := range append(append([]string(nil), c.PrintNames...), c.MathNames...) {
		if !isIdentifier(name) {
			issues = append(issues, fmt.Sprintf("%q is not a valid identifier", name))
		}
	}
	if len(issues) > 0 {
		return &Error{Path: c.Path, Issues: issues}
	}
	return nil
}

// KeywordMode returns the tokenizer dialect selected by Keywords.
func (c *Config) KeywordMode() lexer.Keywords {
	mode, err := lexer.ParseKeywords(c.Keywords)
	if err != nil {
		return lexer.KeywordsAny
	}
	return mode
}

// Aliases returns the global names each built-in is bound under.
func (c *Config) Aliases() map[string][]string {
	return map[string][]string{
		"print": append([]string(nil), c.PrintNames...),
		"Math":  append([]string(nil), c.MathNames...),
	}
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	tokens, err := lexer.TokenizeWith(s, "", lexer.Options{Keywords: lexer.KeywordsAny})
	return err == nil && len(tokens) == 2 && tokens[0].Kind == lexer.Identifier
}

// nameList accepts either a single name or a sequence of names.
type nameList []string

func (l *nameList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" || strings.TrimSpace(value.Value) == "" {
			*l = nil
			return nil
		}
		*l = nameList{strings.TrimSpace(value.Value)}
		return nil
	case yaml.SequenceNode:
		items := make([]string, 0, len(value.Content))
		for _, node := range value.Content {
			var str string
			if err := node.Decode(&str); err != nil {
				return err
			}
			if str = strings.TrimSpace(str); str != "" {
				items = append(items, str)
			}
		}
		*l = nameList(items)
		return nil
	case yaml.AliasNode:
		return l.UnmarshalYAML(value.Alias)
	default:
		return fmt.Errorf("expected name or list of names but found %s", value.ShortTag())
	}
}
