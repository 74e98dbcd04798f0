// Command yap is the yap interpreter CLI.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/thomasrohde/yap/pkg/config"
	"github.com/thomasrohde/yap/pkg/diagnostics"
	"github.com/thomasrohde/yap/pkg/evaluator"
	"github.com/thomasrohde/yap/pkg/formatter"
	"github.com/thomasrohde/yap/pkg/help"
	"github.com/thomasrohde/yap/pkg/lexer"
	"github.com/thomasrohde/yap/pkg/runtime"
)

const (
	exitOK          = 0
	exitUsage       = 1
	exitDiagnostics = 2
	exitRuntime     = 4
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: yap <command> [options] | yap <file.yap>")
		fmt.Fprintln(os.Stderr, "commands: run, check, fmt, gen, trace, repl, config, help")
		os.Exit(exitUsage)
	}

	cmd := os.Args[1]
	switch cmd {
	case "run":
		os.Exit(cmdRun(os.Args[2:]))
	case "check":
		os.Exit(cmdCheck(os.Args[2:]))
	case "fmt":
		os.Exit(cmdFmt(os.Args[2:]))
	case "gen":
		os.Exit(cmdGen(os.Args[2:]))
	case "trace":
		os.Exit(cmdTrace(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl(os.Args[2:]))
	case "config":
		os.Exit(cmdConfig(os.Args[2:]))
	case "help", "--help", "-h":
		os.Exit(cmdHelp(os.Args[2:]))
	default:
		if strings.HasSuffix(cmd, ".yap") || fileExists(cmd) {
			os.Exit(cmdRun(os.Args[1:]))
		}
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		os.Exit(exitUsage)
	}
}

func cmdRun(args []string) int {
	var file string
	pretty := false
	jsonOutput := false
	tracePath := ""
	keywords := ""

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--pretty":
			pretty = true
		case "--json":
			jsonOutput = true
		case "--trace":
			if i+1 < len(args) {
				i++
				tracePath = args[i]
			}
		case "--keywords":
			if i+1 < len(args) {
				i++
				keywords = args[i]
			}
		default:
			if args[i] == "-" || !strings.HasPrefix(args[i], "-") {
				file = args[i]
			}
		}
	}

	if file == "" {
		fmt.Fprintln(os.Stderr, "usage: yap run <file> [--pretty] [--json] [--trace <out.jsonl>] [--keywords any|standard|slang]")
		return exitUsage
	}

	cfg, code := loadConfig(pretty)
	if code != exitOK {
		return code
	}
	pretty = pretty || cfg.Pretty
	if keywords != "" {
		if _, err := lexer.ParseKeywords(keywords); err != nil {
			fmt.Fprintf(os.Stderr, "error: --keywords: %s\n", err)
			return exitUsage
		}
		cfg.Keywords = keywords
	}

	source, filename, code := readSource(file, pretty)
	if code != exitOK {
		return code
	}

	opts := []runtime.Option{runtime.WithConfig(cfg)}
	if tracePath != "" {
		f, err := os.Create(tracePath)
		if err != nil {
			printDiag(diagnostics.MakeDiag(diagnostics.EIO, fmt.Sprintf("cannot write trace file: %s", tracePath), nil, ""), pretty)
			return exitUsage
		}
		defer f.Close()
		opts = append(opts, runtime.WithTrace(ndjsonTrace(f)))
	}
	rt := runtime.New(opts...)

	result, err := rt.Run(source, filename)
	if err != nil {
		return reportError(err, pretty)
	}

	if jsonOutput && result != nil {
		jsonBytes, err := evaluator.ValueToJSON(result.Value)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error serializing result: %s\n", err)
			return exitRuntime
		}
		fmt.Println(string(jsonBytes))
	}
	return exitOK
}

func cmdCheck(args []string) int {
	var file string
	pretty := false

	for _, arg := range args {
		switch arg {
		case "--pretty":
			pretty = true
		default:
			if arg == "-" || !strings.HasPrefix(arg, "-") {
				file = arg
			}
		}
	}

	if file == "" {
		fmt.Fprintln(os.Stderr, "usage: yap check <file> [--pretty]")
		return exitUsage
	}

	cfg, code := loadConfig(pretty)
	if code != exitOK {
		return code
	}
	pretty = pretty || cfg.Pretty

	source, filename, code := readSource(file, pretty)
	if code != exitOK {
		return code
	}

	rt := runtime.New(runtime.WithConfig(cfg), runtime.WithStdout(io.Discard))
	diags := rt.Check(source, filename)
	if len(diags) > 0 {
		fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics(diags, pretty))
		return exitDiagnostics
	}

	if pretty {
		fmt.Println("No errors found.")
	} else {
		fmt.Println("[]")
	}
	return exitOK
}

func cmdFmt(args []string) int {
	var file string
	write := false
	dialectFlag := ""

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--write":
			write = true
		case "--dialect":
			if i+1 < len(args) {
				i++
				dialectFlag = args[i]
			}
		default:
			if !strings.HasPrefix(args[i], "-") {
				file = args[i]
			}
		}
	}

	if file == "" {
		fmt.Fprintln(os.Stderr, "usage: yap fmt <file> [--write] [--dialect standard|slang]")
		return exitUsage
	}
	dialect, err := formatter.ParseDialect(dialectFlag)
	if err != nil || dialect == formatter.DialectJavaScript {
		fmt.Fprintln(os.Stderr, "error: --dialect must be standard or slang (use yap gen for JavaScript)")
		return exitUsage
	}

	return formatFile(file, dialect, write)
}

func cmdGen(args []string) int {
	var file string
	for _, arg := range args {
		if arg == "-" || !strings.HasPrefix(arg, "-") {
			file = arg
		}
	}
	if file == "" {
		fmt.Fprintln(os.Stderr, "usage: yap gen <file>")
		return exitUsage
	}
	return formatFile(file, formatter.DialectJavaScript, false)
}

func formatFile(file string, dialect formatter.Dialect, write bool) int {
	cfg, code := loadConfig(false)
	if code != exitOK {
		return code
	}

	source, filename, code := readSource(file, cfg.Pretty)
	if code != exitOK {
		return code
	}

	rt := runtime.New(runtime.WithConfig(cfg), runtime.WithStdout(io.Discard))
	formatted, err := rt.Format(source, filename, dialect)
	if err != nil {
		return reportError(err, cfg.Pretty)
	}

	if formatter.HasComments(source) {
		fmt.Fprintln(os.Stderr, "warning: comments are not preserved by the formatter")
	}

	if write && file != "-" {
		if err := os.WriteFile(file, []byte(formatted), 0644); err != nil {
			printDiag(diagnostics.MakeDiag(diagnostics.EIO, fmt.Sprintf("cannot write file: %s", file), nil, ""), cfg.Pretty)
			return exitUsage
		}
		return exitOK
	}
	fmt.Print(formatted)
	return exitOK
}

func cmdTrace(args []string) int {
	var file string
	textOutput := false

	for _, arg := range args {
		switch arg {
		case "--json":
			textOutput = false
		case "--text":
			textOutput = true
		default:
			if !strings.HasPrefix(arg, "-") {
				file = arg
			}
		}
	}

	if file == "" {
		fmt.Fprintln(os.Stderr, "usage: yap trace <file.jsonl> [--json|--text]")
		return exitUsage
	}

	f, err := os.Open(file)
	if err != nil {
		printDiag(diagnostics.MakeDiag(diagnostics.EIO, fmt.Sprintf("cannot read file: %s", file), nil, ""), false)
		return exitUsage
	}
	defer f.Close()

	summary := computeTraceSummary(f)
	if textOutput {
		printTraceSummaryText(os.Stdout, summary)
		return exitOK
	}
	b, _ := json.Marshal(summary)
	fmt.Println(string(b))
	return exitOK
}

func cmdConfig(_ []string) int {
	cfg, code := loadConfig(false)
	if code != exitOK {
		return code
	}
	data, err := cfg.Marshal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		return exitUsage
	}
	if cfg.Path != "" {
		fmt.Printf("# loaded from %s\n", cfg.Path)
	} else {
		fmt.Println("# built-in defaults")
	}
	fmt.Print(string(data))
	return exitOK
}

func cmdHelp(args []string) int {
	showIndex := false
	topic := ""
	for _, arg := range args {
		if arg == "--index" {
			showIndex = true
		} else if !strings.HasPrefix(arg, "-") {
			topic = arg
		}
	}

	if showIndex {
		if topic != "stdlib" {
			fmt.Fprintln(os.Stderr, "error: --index is only supported for the stdlib topic (yap help stdlib --index)")
			return exitUsage
		}
		fmt.Print(help.StdlibIndex())
		return exitOK
	}

	if topic == "" {
		fmt.Print(help.QUICKREF)
		return exitOK
	}

	_, content, err := help.MatchTopic(topic)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\nAvailable topics: %s\n", err, strings.Join(help.TopicList, ", "))
		return exitUsage
	}
	fmt.Print(content)
	return exitOK
}

func loadConfig(pretty bool) (*config.Config, int) {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	cfg, err := config.Load(cwd)
	if err != nil {
		var cfgErr *config.Error
		if errors.As(err, &cfgErr) {
			printDiag(cfgErr.Diagnostic(), pretty)
		} else {
			printDiag(diagnostics.MakeDiag(diagnostics.EConfig, err.Error(), nil, ""), pretty)
		}
		return nil, exitUsage
	}
	return cfg, exitOK
}

// reportError prints err as diagnostics and returns the matching exit code.
func reportError(err error, pretty bool) int {
	var diagErr *runtime.DiagnosticError
	if errors.As(err, &diagErr) {
		fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics(diagErr.Diagnostics, pretty))
		return exitDiagnostics
	}
	var rtErr *evaluator.RuntimeError
	if errors.As(err, &rtErr) {
		printDiag(rtErr.Diagnostic(), pretty)
		return exitRuntime
	}
	printDiag(diagnostics.MakeDiag(diagnostics.ERuntime, err.Error(), nil, ""), pretty)
	return exitRuntime
}

func printDiag(d diagnostics.Diagnostic, pretty bool) {
	fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics([]diagnostics.Diagnostic{d}, pretty))
}

func readSource(file string, pretty bool) (string, string, int) {
	if file == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error reading stdin: %s\n", err)
			return "", "", exitUsage
		}
		return string(data), "<stdin>", exitOK
	}

	source, err := os.ReadFile(file)
	if err != nil {
		printDiag(diagnostics.MakeDiag(diagnostics.EIO, fmt.Sprintf("cannot read file: %s", file), nil, ""), pretty)
		return "", "", exitUsage
	}
	return string(source), file, exitOK
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
