// Package testutil provides shared test helpers for yap tests.
package testutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ScenariosDir is the scenario directory relative to the module root.
const ScenariosDir = "testdata/scenarios"

// Scenario is one end-to-end case loaded from a YAML file.
type Scenario struct {
	Name        string         `yaml:"-"`
	Description string         `yaml:"description"`
	Cmd         string         `yaml:"cmd"`
	Args        []string       `yaml:"args,omitempty"`
	Keywords    string         `yaml:"keywords,omitempty"`
	Source      string         `yaml:"source"`
	Expect      ExpectedResult `yaml:"expect"`
}

// ExpectedResult describes the expected outcome of running a scenario.
type ExpectedResult struct {
	ExitCode       int        `yaml:"exitCode"`
	Stdout         *string    `yaml:"stdout,omitempty"`
	StdoutLines    []string   `yaml:"stdoutLines,omitempty"`
	Result         *yaml.Node `yaml:"result,omitempty"`
	ErrorCode      string     `yaml:"errorCode,omitempty"`
	StderrContains string     `yaml:"stderrContains,omitempty"`
}

// HasArg reports whether the scenario passes flag.
func (s *Scenario) HasArg(flag string) bool {
	for _, a := range s.Args {
		if a == flag {
			return true
		}
	}
	return false
}

// ResultJSON returns the expected result re-encoded as compact JSON.
func (e *ExpectedResult) ResultJSON() (string, error) {
	if e.Result == nil {
		return "", nil
	}
	var v any
	if err := e.Result.Decode(&v); err != nil {
		return "", err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// LoadScenario decodes one scenario file. Unknown fields are errors.
func LoadScenario(path string) (*Scenario, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var s Scenario
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("scenario %s: empty file", path)
		}
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if s.Cmd == "" {
		s.Cmd = "run"
	}
	return &s, nil
}

// ListScenarios returns every .yaml file under root, sorted.
func ListScenarios(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ext := filepath.Ext(e.Name()); ext == ".yaml" || ext == ".yml" {
			files = append(files, filepath.Join(root, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
