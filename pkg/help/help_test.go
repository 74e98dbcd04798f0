package help

import (
	"strings"
	"testing"
)

func TestQUICKREFNonEmpty(t *testing.T) {
	if len(QUICKREF) == 0 {
		t.Fatal("QUICKREF is empty")
	}
}

func TestQUICKREFListsTopics(t *testing.T) {
	for _, topic := range TopicList {
		if !strings.Contains(QUICKREF, topic) {
			t.Errorf("QUICKREF does not mention topic %q", topic)
		}
	}
}

func TestQUICKREFListsCommands(t *testing.T) {
	for _, cmd := range []string{"yap run", "yap check", "yap fmt", "yap gen", "yap trace", "yap repl", "yap config"} {
		if !strings.Contains(QUICKREF, cmd) {
			t.Errorf("QUICKREF does not mention %q", cmd)
		}
	}
}

func TestTopicListMatchesTopics(t *testing.T) {
	for _, name := range TopicList {
		if _, ok := Topics[name]; !ok {
			t.Errorf("TopicList entry %q not in Topics map", name)
		}
	}
	if len(Topics) != len(TopicList) {
		t.Errorf("expected %d topics, got %d", len(TopicList), len(Topics))
	}
}

func TestTopicsNonEmpty(t *testing.T) {
	for name, content := range Topics {
		if len(content) == 0 {
			t.Errorf("topic %q has empty content", name)
		}
	}
}

func TestDiagnosticsTopicListsCodes(t *testing.T) {
	for _, code := range []string{"E_LEX", "E_SYNTAX", "E_REFERENCE", "E_TYPE", "E_ARITY", "E_RUNTIME", "E_UNBOUND", "E_DUP_PARAM", "E_IO", "E_CONFIG"} {
		if !strings.Contains(Topics["diagnostics"], code) {
			t.Errorf("diagnostics topic missing %s", code)
		}
	}
}

func TestMatchTopic(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"syntax", "syntax"},
		{"diag", "diagnostics"},
		{"ex", "examples"},
		{"  SLANG ", "slang"},
		{"co", "config"},
	}
	for _, tt := range tests {
		name, content, err := MatchTopic(tt.query)
		if err != nil {
			t.Errorf("MatchTopic(%q): %v", tt.query, err)
			continue
		}
		if name != tt.want || content == "" {
			t.Errorf("MatchTopic(%q) = %q, want %q", tt.query, name, tt.want)
		}
	}
}

func TestMatchTopicErrors(t *testing.T) {
	if _, _, err := MatchTopic("nonexistent"); err == nil {
		t.Error("expected error for unknown topic")
	}
	_, _, err := MatchTopic("s")
	if err == nil || !strings.Contains(err.Error(), "ambiguous") {
		t.Errorf("expected ambiguity error, got %v", err)
	}
}

func TestStdlibIndex(t *testing.T) {
	idx := StdlibIndex()
	for _, want := range []string{"global:", "  print(...)", "Math:", "  Math.pow(x, y)", "  Math.random()", "  Math.PI"} {
		if !strings.Contains(idx, want) {
			t.Errorf("StdlibIndex missing %q:\n%s", want, idx)
		}
	}
	if !strings.Contains(idx, "Total: 25 functions, 8 constants") {
		t.Errorf("unexpected totals:\n%s", idx)
	}
}
