// Package lexer implements the yap language tokenizer.
package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/thomasrohde/yap/pkg/ast"
	"github.com/thomasrohde/yap/pkg/diagnostics"
)

// TokenKind identifies the kind of a lexer token.
type TokenKind int

const (
	Keyword TokenKind = iota
	Identifier
	Number
	String
	Punctuation
	EOF
)

func (k TokenKind) String() string {
	switch k {
	case Keyword:
		return "keyword"
	case Identifier:
		return "identifier"
	case Number:
		return "number"
	case String:
		return "string"
	case Punctuation:
		return "punctuation"
	case EOF:
		return "end of input"
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// Token represents a single lexer token. For Keyword tokens Text is always
// the canonical keyword, whichever dialect spelling appeared in the source.
// For String tokens Text is the decoded value.
type Token struct {
	Kind TokenKind
	Text string
	Span ast.Span
}

// Is reports whether the token is the keyword or punctuation text.
func (t Token) Is(kind TokenKind, text string) bool {
	return t.Kind == kind && t.Text == text
}

// Keywords selects which keyword vocabulary the scanner recognizes.
type Keywords string

const (
	KeywordsAny      Keywords = "any"
	KeywordsStandard Keywords = "standard"
	KeywordsSlang    Keywords = "slang"
)

// ParseKeywords maps a config or flag value to a Keywords mode.
func ParseKeywords(s string) (Keywords, error) {
	switch Keywords(s) {
	case "", KeywordsAny:
		return KeywordsAny, nil
	case KeywordsStandard, KeywordsSlang:
		return Keywords(s), nil
	}
	return "", fmt.Errorf("unknown keyword set %q (want any, standard or slang)", s)
}

// Options configures the scanner.
type Options struct {
	Keywords Keywords
}

var standardKeywords = map[string]string{
	"function": "function",
	"let":      "let",
	"if":       "if",
	"else":     "else",
	"for":      "for",
	"while":    "while",
	"break":    "break",
	"continue": "continue",
	"return":   "return",
	"true":     "true",
	"false":    "false",
}

// SlangKeywords maps each slang spelling to its canonical keyword.
// true and false have no slang spelling and stay reserved in every dialect.
var SlangKeywords = map[string]string{
	"skibidi": "function",
	"rizz":    "let",
	"cooked":  "let",
	"edging":  "if",
	"amogus":  "else",
	"flex":    "for",
	"goon":    "while",
	"bruh":    "break",
	"grind":   "continue",
	"bussin":  "return",
	"true":    "true",
	"false":   "false",
}

func keywordTable(mode Keywords) map[string]string {
	switch mode {
	case KeywordsStandard:
		return standardKeywords
	case KeywordsSlang:
		return SlangKeywords
	}
	all := make(map[string]string, len(standardKeywords)+len(SlangKeywords))
	for k, v := range standardKeywords {
		all[k] = v
	}
	for k, v := range SlangKeywords {
		all[k] = v
	}
	return all
}

// punctuators is ordered longest first so the scanner takes the longest match.
var punctuators = []string{
	"===", "!==",
	"==", "!=", "<=", ">=", "&&", "||", "++", "--",
	"(", ")", "{", "}", "[", "]", ";", ",", ".", "=", "<", ">", "+", "-", "*", "/", "%", "!",
}

type scanner struct {
	source   string
	filename string
	pos      int
	line     int
	col      int
	keywords map[string]string
}

func newScanner(source, filename string, opts Options) *scanner {
	return &scanner{
		source:   source,
		filename: filename,
		pos:      0,
		line:     1,
		col:      1,
		keywords: keywordTable(opts.Keywords),
	}
}

func (s *scanner) atEnd() bool {
	return s.pos >= len(s.source)
}

func (s *scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.source[s.pos]
}

func (s *scanner) peekAt(offset int) byte {
	p := s.pos + offset
	if p >= len(s.source) {
		return 0
	}
	return s.source[p]
}

func (s *scanner) advance() byte {
	ch := s.source[s.pos]
	s.pos++
	if ch == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return ch
}

func (s *scanner) span(startLine, startCol int) ast.Span {
	return ast.Span{
		File:      s.filename,
		StartLine: startLine,
		StartCol:  startCol,
		EndLine:   s.line,
		EndCol:    s.col,
	}
}

func (s *scanner) skipWhitespaceAndComments() error {
	for !s.atEnd() {
		ch := s.peek()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			s.advance()
		case ch == '/' && s.peekAt(1) == '/':
			for !s.atEnd() && s.peek() != '\n' {
				s.advance()
			}
		case ch == '/' && s.peekAt(1) == '*':
			startLine, startCol := s.line, s.col
			s.advance()
			s.advance()
			for {
				if s.atEnd() {
					return s.lexError(startLine, startCol, "unterminated block comment")
				}
				if s.peek() == '*' && s.peekAt(1) == '/' {
					s.advance()
					s.advance()
					break
				}
				s.advance()
			}
		default:
			return nil
		}
	}
	return nil
}

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_' || ch == '$'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isAlphaNumeric(ch byte) bool {
	return isAlpha(ch) || isDigit(ch)
}

func (s *scanner) scanString() (Token, error) {
	startLine, startCol := s.line, s.col
	quote := s.advance()

	var buf strings.Builder
	for !s.atEnd() {
		ch := s.peek()
		if ch == quote {
			s.advance()
			return Token{
				Kind: String,
				Text: buf.String(),
				Span: s.span(startLine, startCol),
			}, nil
		}
		if ch == '\\' {
			s.advance()
			if s.atEnd() {
				return Token{}, s.lexError(startLine, startCol, "unterminated string escape")
			}
			esc := s.advance()
			switch esc {
			case '"':
				buf.WriteByte('"')
			case '\'':
				buf.WriteByte('\'')
			case '\\':
				buf.WriteByte('\\')
			case 'n':
				buf.WriteByte('\n')
			case 'r':
				buf.WriteByte('\r')
			case 't':
				buf.WriteByte('\t')
			case '/':
				buf.WriteByte('/')
			case 'u':
				if s.pos+4 > len(s.source) {
					return Token{}, s.lexError(startLine, startCol, "incomplete unicode escape")
				}
				hexStr := s.source[s.pos : s.pos+4]
				codepoint, err := strconv.ParseUint(hexStr, 16, 32)
				if err != nil {
					return Token{}, s.lexError(startLine, startCol, fmt.Sprintf("invalid unicode escape: \\u%s", hexStr))
				}
				buf.WriteRune(rune(codepoint))
				for i := 0; i < 4; i++ {
					s.advance()
				}
			default:
				return Token{}, s.lexError(startLine, startCol, fmt.Sprintf("invalid escape character: \\%c", esc))
			}
		} else if ch == '\n' {
			return Token{}, s.lexError(startLine, startCol, "unterminated string literal")
		} else {
			r, size := utf8.DecodeRuneInString(s.source[s.pos:])
			if r == utf8.RuneError && size == 1 {
				return Token{}, s.lexError(startLine, startCol, "invalid UTF-8 character in string")
			}
			buf.WriteRune(r)
			for i := 0; i < size; i++ {
				s.advance()
			}
		}
	}
	return Token{}, s.lexError(startLine, startCol, "unterminated string literal")
}

func (s *scanner) scanNumber() (Token, error) {
	startLine, startCol := s.line, s.col
	startPos := s.pos

	for !s.atEnd() && isDigit(s.peek()) {
		s.advance()
	}

	if s.peek() == '.' && isDigit(s.peekAt(1)) {
		s.advance()
		for !s.atEnd() && isDigit(s.peek()) {
			s.advance()
		}
	}

	if s.peek() == 'e' || s.peek() == 'E' {
		next := s.peekAt(1)
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(s.peekAt(2))) {
			s.advance()
			if s.peek() == '+' || s.peek() == '-' {
				s.advance()
			}
			for !s.atEnd() && isDigit(s.peek()) {
				s.advance()
			}
		}
	}

	if isAlpha(s.peek()) {
		return Token{}, s.lexError(startLine, startCol, fmt.Sprintf("invalid number literal %q", s.source[startPos:s.pos+1]))
	}

	return Token{
		Kind: Number,
		Text: s.source[startPos:s.pos],
		Span: s.span(startLine, startCol),
	}, nil
}

func (s *scanner) scanIdentOrKeyword() Token {
	startLine, startCol := s.line, s.col
	startPos := s.pos

	for !s.atEnd() && isAlphaNumeric(s.peek()) {
		s.advance()
	}

	text := s.source[startPos:s.pos]
	if canonical, ok := s.keywords[text]; ok {
		return Token{Kind: Keyword, Text: canonical, Span: s.span(startLine, startCol)}
	}
	return Token{Kind: Identifier, Text: text, Span: s.span(startLine, startCol)}
}

func (s *scanner) lexError(line, col int, msg string) error {
	diag := diagnostics.MakeDiag(
		diagnostics.ELex,
		msg,
		&ast.Span{File: s.filename, StartLine: line, StartCol: col, EndLine: line, EndCol: col + 1},
		"",
	)
	return &LexError{Diag: diag}
}

// LexError wraps a diagnostic for lex errors.
type LexError struct {
	Diag diagnostics.Diagnostic
}

func (e *LexError) Error() string {
	return e.Diag.Message
}

func (s *scanner) nextToken() (Token, error) {
	if err := s.skipWhitespaceAndComments(); err != nil {
		return Token{}, err
	}

	if s.atEnd() {
		return Token{Kind: EOF, Span: s.span(s.line, s.col)}, nil
	}

	ch := s.peek()
	startLine, startCol := s.line, s.col

	switch {
	case isDigit(ch):
		return s.scanNumber()
	case ch == '"' || ch == '\'':
		return s.scanString()
	case isAlpha(ch):
		return s.scanIdentOrKeyword(), nil
	}

	rest := s.source[s.pos:]
	for _, p := range punctuators {
		if strings.HasPrefix(rest, p) {
			for i := 0; i < len(p); i++ {
				s.advance()
			}
			return Token{Kind: Punctuation, Text: p, Span: s.span(startLine, startCol)}, nil
		}
	}

	r, _ := utf8.DecodeRuneInString(rest)
	s.advance()
	return Token{}, s.lexError(startLine, startCol, fmt.Sprintf("unexpected character '%c'", r))
}

// Tokenize breaks source code into a slice of tokens using every keyword
// dialect. The result always ends with an EOF token.
func Tokenize(source, filename string) ([]Token, error) {
	return TokenizeWith(source, filename, Options{})
}

// TokenizeWith is Tokenize with an explicit keyword dialect.
func TokenizeWith(source, filename string, opts Options) ([]Token, error) {
	s := newScanner(source, filename, opts)
	var tokens []Token

	for {
		tok, err := s.nextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == EOF {
			break
		}
	}

	return tokens, nil
}
