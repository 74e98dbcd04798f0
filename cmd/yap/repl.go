package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/thomasrohde/yap/pkg/evaluator"
	"github.com/thomasrohde/yap/pkg/lexer"
	"github.com/thomasrohde/yap/pkg/parser"
	"github.com/thomasrohde/yap/pkg/runtime"
)

const (
	historyFile = ".yap_history"
	promptMain  = "yap> "
	promptCont  = "...> "
	banner      = "yap repl - :help for commands, :quit or Ctrl-D to exit"
)

func cmdRepl(_ []string) int {
	cfg, code := loadConfig(false)
	if code != exitOK {
		return code
	}

	fmt.Println(banner)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	rt := runtime.New(runtime.WithConfig(cfg))
	session := rt.NewSession()
	opts := lexer.Options{Keywords: cfg.KeywordMode()}

	ln.SetCompleter(func(line string) []string {
		start := strings.LastIndexFunc(line, func(r rune) bool {
			return !(r == '_' || r == '$' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z')
		}) + 1
		prefix := line[start:]
		if prefix == "" {
			return nil
		}
		var out []string
		for _, name := range session.Names() {
			if strings.HasPrefix(name, prefix) {
				out = append(out, line[:start]+name)
			}
		}
		return out
	})

	for {
		src, ok := readByParseProbe(ln, opts)
		if !ok {
			fmt.Println()
			return exitOK
		}
		trimmed := strings.TrimSpace(src)
		if trimmed == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))

		if strings.HasPrefix(trimmed, ":") {
			switch strings.ToLower(trimmed) {
			case ":quit", ":q":
				return exitOK
			case ":help":
				fmt.Println(":names  list bindings   :quit  leave the repl")
			case ":names":
				fmt.Println(strings.Join(session.Names(), " "))
			default:
				fmt.Println("unknown command. Type :help for commands.")
			}
			continue
		}

		res, err := session.Eval(src)
		if err != nil {
			reportError(err, true)
			continue
		}
		if _, isUndefined := res.Value.(evaluator.Undefined); !isUndefined {
			fmt.Println(evaluator.Inspect(res.Value))
		}
	}
}

// readByParseProbe keeps prompting while the buffered input parses as an
// unfinished program.
func readByParseProbe(ln *liner.State, opts lexer.Options) (string, bool) {
	var b strings.Builder

	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		if needsMoreInput(src, opts) {
			continue
		}
		return src, true
	}
}

func needsMoreInput(src string, opts lexer.Options) bool {
	tokens, err := lexer.TokenizeWith(src, "<repl>", opts)
	if err != nil {
		return false
	}
	_, err = parser.ParseTokens(tokens)
	return err != nil && parser.IsIncomplete(err)
}
