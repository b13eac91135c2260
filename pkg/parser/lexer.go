package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sandrolain/goformula/pkg/types"
)

const eof = -1

// Lexer converts a formula into a sequence of tokens.
// The implementation is based on Rob Pike's "Lexical Scanning in Go" technique,
// extended with line/column tracking for error reporting.
type Lexer struct {
	input   string         // Input string being scanned
	length  int            // Length of input string
	start   int            // Start offset of current token
	startAt types.Position // Start position of current token
	current int            // Current offset in input
	line    int            // Current line (1-based)
	column  int            // Current column (1-based, in runes)
	width   int            // Width of last rune read
	prevCol int            // Column before the last rune read
	prevLn  int            // Line before the last rune read
}

// NewLexer creates a new lexer from the provided input string.
// The input is tokenized by successive calls to the Next method.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input:  input,
		length: len(input),
		line:   1,
		column: 1,
	}
	l.ignore()
	return l
}

// Tokenize scans the whole source and returns its tokens, always terminated
// by a TokenEOF. It fails with a SyntaxError on the first illegal input.
func Tokenize(source string) ([]Token, error) {
	l := NewLexer(source)
	tokens := make([]Token, 0, len(source)/2+1)
	for {
		t, err := l.Next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
		if t.Type == TokenEOF {
			return tokens, nil
		}
	}
}

// Next returns the next token from the input.
// When the end of the input is reached, Next returns TokenEOF for all subsequent calls.
func (l *Lexer) Next() (Token, error) {
	l.skipWhitespace()

	ch := l.nextRune()
	if ch == eof {
		return l.newToken(TokenEOF), nil
	}

	switch {
	case ch == '(':
		return l.newToken(TokenLParen), nil
	case ch == ')':
		return l.newToken(TokenRParen), nil
	case ch == ',':
		return l.newToken(TokenComma), nil
	case ch == '"':
		return l.scanString()
	case isDigit(ch):
		return l.scanNumber(false)
	case ch == '.' && isDigit(l.peek()):
		return l.scanNumber(true)
	case isIdentStart(ch):
		l.backup()
		return l.scanIdentifier(), nil
	}

	// Two-character operators first (e.g. >=, ==, !=)
	if second, ok := operators2[ch]; ok && l.acceptRune(second) {
		return l.newToken(TokenOperator), nil
	}

	if isOperator1(ch) {
		return l.newToken(TokenOperator), nil
	}

	switch ch {
	case '=':
		return Token{}, l.error("unexpected '='").WithHint("did you mean '=='?")
	case '&':
		if l.acceptRune('&') {
			return Token{}, l.error("unexpected '&&'").WithHint("use and(a, b) to combine conditions")
		}
	case '|':
		if l.acceptRune('|') {
			return Token{}, l.error("unexpected '||'").WithHint("use or(a, b) to combine conditions")
		}
	case '\'':
		return Token{}, l.error("unexpected single quote").WithHint("string literals use double quotes, e.g. dimension(\"fluency\")")
	}

	return Token{}, l.error(fmt.Sprintf("unexpected character %q", ch))
}

// scanString reads a string literal. The opening quote has already been consumed.
// The only escape sequence is \" for an embedded quote.
func (l *Lexer) scanString() (Token, error) {
	var sb strings.Builder
Loop:
	for {
		switch r := l.nextRune(); r {
		case '"':
			break Loop
		case '\\':
			if l.acceptRune('"') {
				sb.WriteByte('"')
				continue
			}
			sb.WriteByte('\\')
		case eof:
			return Token{}, l.error("unterminated string literal").WithHint("add the closing '\"'")
		default:
			sb.WriteRune(r)
		}
	}

	t := l.newToken(TokenString)
	t.Str = sb.String()
	return t, nil
}

// scanNumber reads a number literal. The first digit, or the leading '.',
// has already been consumed.
// Format: ([0-9]+(\.[0-9]+)? | \.[0-9]+)([eE][+-]?[0-9]+)?
func (l *Lexer) scanNumber(leadingDot bool) (Token, error) {
	l.acceptAll(isDigit)

	// Decimal part
	if !leadingDot && l.acceptRune('.') {
		if !l.acceptAll(isDigit) {
			return Token{}, l.error("expected digit after decimal point")
		}
	}

	// Exponent part
	if l.acceptRunes2('e', 'E') {
		l.acceptRunes2('+', '-')
		if !l.acceptAll(isDigit) {
			return Token{}, l.error("malformed exponent in number literal")
		}
	}

	t := l.newToken(TokenNumber)
	val, err := strconv.ParseFloat(t.Text, 64)
	if err != nil {
		msg := fmt.Sprintf("invalid number: %s", t.Text)
		if errors.Is(err, strconv.ErrRange) {
			msg = fmt.Sprintf("number out of range: %s", t.Text)
		}
		return Token{}, types.NewError(types.ErrSyntax, msg, t.Pos).WithToken(t.Text).WithCause(err)
	}
	if val == 0 && nonZeroMantissa(t.Text) {
		return Token{}, types.NewError(types.ErrSyntax, fmt.Sprintf("number out of range: %s", t.Text), t.Pos).
			WithToken(t.Text).
			WithHint("the value is too small to represent and would round to 0")
	}
	t.Num = val
	return t, nil
}

// nonZeroMantissa reports whether the digits before the exponent of a number
// literal contain anything other than zeros.
func nonZeroMantissa(text string) bool {
	if i := strings.IndexAny(text, "eE"); i >= 0 {
		text = text[:i]
	}
	return strings.ContainsAny(text, "123456789")
}

// scanIdentifier reads an identifier: [A-Za-z_][A-Za-z0-9_]*
func (l *Lexer) scanIdentifier() Token {
	l.acceptAll(isIdentPart)
	return l.newToken(TokenIdentifier)
}

// Helper methods

func (l *Lexer) error(message string) *types.Error {
	return types.NewError(types.ErrSyntax, message, l.startAt).WithToken(l.input[l.start:l.current])
}

func (l *Lexer) newToken(tt TokenType) Token {
	t := Token{
		Type: tt,
		Text: l.input[l.start:l.current],
		Pos:  l.startAt,
	}
	l.ignore()
	return t
}

func (l *Lexer) nextRune() rune {
	if l.current >= l.length {
		l.width = 0
		return eof
	}

	r, w := utf8.DecodeRuneInString(l.input[l.current:])
	l.width = w
	l.current += w
	l.prevLn, l.prevCol = l.line, l.column
	if r == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return r
}

func (l *Lexer) peek() rune {
	r := l.nextRune()
	l.backup()
	return r
}

// backup steps back one rune. It can be called only once per call of nextRune.
func (l *Lexer) backup() {
	if l.width == 0 {
		return
	}
	l.current -= l.width
	l.line, l.column = l.prevLn, l.prevCol
	l.width = 0
}

func (l *Lexer) ignore() {
	l.start = l.current
	l.startAt = types.Position{Line: l.line, Column: l.column, Offset: l.current}
}

func (l *Lexer) acceptRune(r rune) bool {
	return l.accept(func(c rune) bool {
		return c == r
	})
}

func (l *Lexer) acceptRunes2(r1, r2 rune) bool {
	return l.accept(func(c rune) bool {
		return c == r1 || c == r2
	})
}

func (l *Lexer) accept(isValid func(rune) bool) bool {
	if isValid(l.nextRune()) {
		return true
	}
	l.backup()
	return false
}

func (l *Lexer) acceptAll(isValid func(rune) bool) bool {
	var matched bool
	for l.accept(isValid) {
		matched = true
	}
	return matched
}

func (l *Lexer) skipWhitespace() {
	l.acceptAll(isWhitespace)
	l.ignore()
}

// Character classification functions

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r':
		return true
	default:
		return false
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || isDigit(r)
}
