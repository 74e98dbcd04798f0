// Package help holds the text behind `yap help`.
package help

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/thomasrohde/yap/pkg/stdlib"
)

// QUICKREF is printed by `yap help` with no topic.
const QUICKREF = `yap v0.3 - a small JavaScript-flavoured scripting language

USAGE
  yap <file.yap>                 run a program
  yap run <file> [--pretty] [--json] [--trace <out.jsonl>] [--keywords any|standard|slang]
  yap check <file> [--pretty]    static checks without running
  yap fmt <file> [--write] [--dialect standard|slang]
  yap gen <file>                 print the program as JavaScript
  yap trace <file.jsonl> [--json|--text]
  yap repl                       interactive session
  yap config                     print the effective configuration
  yap help [topic]

TOPICS
  syntax       statements, expressions, operator precedence
  types        values, coercion and equality
  slang        the slang keyword set and built-in aliases
  stdlib       print and the Math namespace (see also: yap help stdlib --index)
  flow         if/else, loops, break/continue, functions and closures
  diagnostics  error codes and exit codes
  config       .yap.yaml settings
  examples     complete programs

EXIT CODES
  0 ok   1 usage, I/O or config error   2 lex/syntax/check diagnostics   4 runtime error
`

// TopicList is the display order of help topics.
var TopicList = []string{"syntax", "types", "slang", "stdlib", "flow", "diagnostics", "config", "examples"}

// Topics maps topic names to their text.
var Topics = map[string]string{
	"syntax": `SYNTAX

Statements end with a semicolon. Blocks use braces and open a new scope.

  let x = 1;                declaration (initializer optional: let y;)
  function f(a, b) { ... }  function declaration
  if (c) { ... } else if (d) { ... } else { ... }
  for (let i = 0; i < n; i++) { ... }
  while (c) { ... }
  break;  continue;  return expr;
  expr;                     expression statement

Comments: // to end of line, /* block */.
Strings: "double" or 'single' quoted with \n \t \r \\ \" \' \/ \uXXXX escapes.
Numbers: 42, 3.14, 1e9, 2.5e-3.

Precedence, loosest first:
  =          assignment (right associative, target must be a name)
  ||         logical or
  &&         logical and
  == != === !==
  < > <= >=
  + -
  * / %
  ! - +      prefix
  x++ x--    postfix, target must be a name; yields the new value
  f(x) a.b a[i]
`,

	"types": `TYPES

  undefined   the value of a missing initializer or a bare return
  boolean     true, false
  number      64-bit float; NaN and Infinity arise from arithmetic
  string      immutable text; s.length and s[i] index by character
  array       [1, "two", [3]]; a.length and a[i]; out of range is undefined
  function    user functions and built-ins; closures capture their scope

Truthiness: false, 0, NaN, "" and undefined are falsy; everything else is truthy.

Coercion follows JavaScript:
  "a" + 1     "a1"      any string operand makes + concatenate
  "6" * "2"   12        other arithmetic converts to number
  1 == "1"    true      loose equality converts
  1 === "1"   false     strict equality never converts
  [1, 2] + 1  "1,21"    arrays become comma-joined strings
`,

	"slang": `SLANG

Every keyword has a slang spelling. With keywords: any (the default) both
sets are accepted and can be mixed.

  function  skibidi        let       rizz, cooked
  if        edging         else      amogus
  for       flex           while     goon
  break     bruh           continue  grind
  return    bussin

Built-ins: print is also yapping, Math is also nerdShit.
  yap fmt --dialect slang rewrites a program into slang.
  yap fmt --dialect standard rewrites it back.
`,

	"stdlib": `STDLIB

print(...values)
  Writes the values separated by spaces, then a newline. Strings print raw;
  strings inside arrays are quoted. Returns undefined. Alias: yapping.

Math (alias nerdShit)
  abs ceil floor round trunc sign sqrt cbrt exp log log2 log10
  sin cos tan asin acos atan          one argument
  pow atan2                           two arguments
  min max hypot                       any number of arguments
  random                              no arguments; seed with random_seed
  PI E LN2 LN10 LOG2E LOG10E SQRT2 SQRT1_2

Calling a built-in with the wrong number of arguments is E_ARITY.
`,

	"flow": `FLOW

Functions are declared with function and called with parentheses. Calls must
pass exactly as many arguments as there are parameters.

  function counter() {
    let n = 0;
    function next() { n++; return n; }
    return next;
  }
  let c = counter();
  c(); c();        // 2

Loops: break leaves the nearest loop, continue skips to the next test
(and the update clause of a for loop). Using either outside a loop is a
syntax error. A return at the top level ends the program.
`,

	"diagnostics": `DIAGNOSTICS

  E_LEX        bad character, unterminated string or comment, bad number
  E_SYNTAX     unexpected token; message names what was expected
  E_REFERENCE  reading or assigning an undeclared name
  E_TYPE       calling a non-function, member access on undefined
  E_ARITY      wrong number of arguments
  E_RUNTIME    call depth exceeded or a built-in failed
  E_UNBOUND    (yap check) name not declared in any enclosing scope
  E_DUP_PARAM  (yap check) parameter listed twice
  E_IO         file could not be read or written
  E_CONFIG     configuration file is malformed

Diagnostics are JSON on stderr by default; --pretty prints
  error[E_ARITY]: add expects 2 argument(s), got 1
    --> main.yap:3:1
`,

	"config": `CONFIG

yap reads .yap.yaml from the working directory, falling back to
~/.yap/config.yaml, then to built-in defaults. Flags override the file.

  keywords: any          # any | standard | slang
  pretty: false          # pretty diagnostics by default
  run_id: cli            # run id written into trace events
  random_seed: 0         # 0 seeds Math.random from the clock
  max_call_depth: 10000  # nested user-function calls before E_RUNTIME
  print_names: [print, yapping]
  math_names: [Math, nerdShit]

Unknown fields, unknown keyword sets and empty name lists are E_CONFIG.
`,

	"examples": `EXAMPLES

FizzBuzz:
  function fizzbuzz(n) {
    for (let i = 1; i <= n; i++) {
      if (i % 15 == 0) { print("FizzBuzz"); }
      else if (i % 3 == 0) { print("Fizz"); }
      else if (i % 5 == 0) { print("Buzz"); }
      else { print(i); }
    }
  }
  fizzbuzz(15);

Slang:
  skibidi add(a, b) { bussin a + b; }
  rizz total = add(5, 10);
  yapping(total);              // 15

Arrays:
  let arr = [1, 2, 3];
  print(arr[1], arr.length);   // 2 3
`,
}

// MatchTopic resolves an exact topic name or a unique prefix.
func MatchTopic(query string) (string, string, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if content, ok := Topics[query]; ok {
		return query, content, nil
	}
	var matches []string
	for _, name := range TopicList {
		if strings.HasPrefix(name, query) {
			matches = append(matches, name)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], Topics[matches[0]], nil
	case 0:
		return "", "", fmt.Errorf("unknown help topic %q", query)
	}
	return "", "", fmt.Errorf("ambiguous help topic %q (matches %s)", query, strings.Join(matches, ", "))
}

// StdlibIndex lists every built-in with its arity, grouped by namespace.
func StdlibIndex() string {
	reg := stdlib.NewRegistry()
	stdlib.RegisterDefaults(reg, stdlib.Host{Stdout: io.Discard, RandomSeed: 1})

	groups := make(map[string][]string)
	fns, consts := 0, 0
	for _, name := range reg.Names() {
		group := "global"
		if ns, _, ok := strings.Cut(name, "."); ok {
			group = ns
		}
		fn := reg.Get(name)
		if fn == nil {
			consts++
			groups[group] = append(groups[group], name)
			continue
		}
		fns++
		groups[group] = append(groups[group], name+"("+arityLabel(fn.Arity)+")")
	}

	names := make([]string, 0, len(groups))
	for g := range groups {
		names = append(names, g)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, g := range names {
		fmt.Fprintf(&b, "%s:\n", g)
		for _, entry := range groups[g] {
			fmt.Fprintf(&b, "  %s\n", entry)
		}
	}
	fmt.Fprintf(&b, "Total: %d functions, %d constants\n", fns, consts)
	return b.String()
}

func arityLabel(n int) string {
	switch n {
	case -1:
		return "..."
	case 0:
		return ""
	case 1:
		return "x"
	case 2:
		return "x, y"
	}
	return fmt.Sprintf("%d args", n)
}
