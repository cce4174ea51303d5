package lexer

import (
	"github.com/gianged/cindex/pkg/types"
)

// multiPunct lists multi-character operators, longest first. Angle brackets
// are deliberately absent: '<' and '>' are always emitted as single-character
// tokens so the parser can disambiguate template brackets from comparison
// operators by context.
var multiPunct = []string{
	"...", "::", "->", "++", "--",
	"+=", "-=", "*=", "/=", "%=",
	"==", "!=", "&&", "||",
	"&=", "|=", "^=",
}

// Lexer converts raw source text into a sequence of classified tokens. It
// never fails: malformed constructs degrade to best-effort tokens with the
// Unterminated flag set.
type Lexer struct {
	src  []byte
	off  int
	line int
	col  int
}

// New creates a Lexer over the full source buffer. The returned lexer reads
// from the start of the buffer; tokens are consumed in a single forward pass.
func New(src []byte) *Lexer {
	return &Lexer{src: src, line: 1, col: 1}
}

// Tokenize runs a fresh lexer over src and collects every token up to end
// of input. The end-of-input token itself is not included.
func Tokenize(src []byte) []types.Token {
	lx := New(src)
	var toks []types.Token
	for {
		tok := lx.Next()
		if tok.IsEOF() {
			return toks
		}
		toks = append(toks, tok)
	}
}

// Next returns the next token. After end of input it always returns an EOF
// token at the final position.
func (lx *Lexer) Next() types.Token {
	lx.skipWhitespace()

	if lx.eof() {
		p := lx.pos()
		return types.Token{Kind: types.TokenEOF, Span: types.Span{Start: p, End: p}}
	}

	ch := lx.peek()
	switch {
	case ch == '/' && (lx.peekAt(1) == '/' || lx.peekAt(1) == '*'):
		return lx.scanComment()
	case ch == '#':
		return lx.scanDirective()
	case ch == '"':
		return lx.scanQuoted('"', types.TokenString)
	case ch == '\'':
		return lx.scanQuoted('\'', types.TokenChar)
	case isDigit(ch):
		return lx.scanNumber()
	case ch == '~' && isIdentStart(lx.peekAt(1)):
		// Destructor names lex as a single identifier token
		return lx.scanIdentOrKeyword()
	case isIdentStart(ch):
		return lx.scanIdentOrKeyword()
	default:
		return lx.scanPunct()
	}
}

func (lx *Lexer) eof() bool {
	return lx.off >= len(lx.src)
}

func (lx *Lexer) peek() byte {
	if lx.eof() {
		return 0
	}
	return lx.src[lx.off]
}

// peekAt looks n bytes past the cursor without advancing
func (lx *Lexer) peekAt(n int) byte {
	if lx.off+n >= len(lx.src) {
		return 0
	}
	return lx.src[lx.off+n]
}

// bump advances one byte, maintaining line/column counters
func (lx *Lexer) bump() byte {
	b := lx.src[lx.off]
	lx.off++
	if b == '\n' {
		lx.line++
		lx.col = 1
	} else {
		lx.col++
	}
	return b
}

func (lx *Lexer) pos() types.Position {
	return types.Position{Offset: lx.off, Line: lx.line, Column: lx.col}
}

func (lx *Lexer) skipWhitespace() {
	for !lx.eof() {
		switch lx.peek() {
		case ' ', '\t', '\r', '\n':
			lx.bump()
		default:
			return
		}
	}
}

func (lx *Lexer) token(kind types.TokenKind, start types.Position, unterminated bool) types.Token {
	end := lx.pos()
	return types.Token{
		Kind:         kind,
		Text:         string(lx.src[start.Offset:end.Offset]),
		Span:         types.Span{Start: start, End: end},
		Unterminated: unterminated,
	}
}

func (lx *Lexer) scanIdentOrKeyword() types.Token {
	start := lx.pos()
	if lx.peek() == '~' {
		lx.bump()
	}
	for !lx.eof() && isIdentContinue(lx.peek()) {
		lx.bump()
	}
	tok := lx.token(types.TokenIdent, start, false)
	if IsKeyword(tok.Text) {
		tok.Kind = types.TokenKeyword
	}
	return tok
}

func (lx *Lexer) scanNumber() types.Token {
	start := lx.pos()
	// Loose scan: digits plus anything that can continue a numeric literal
	// (hex digits, exponents, suffixes, decimal points). No numeric value is
	// ever computed, so over-acceptance is harmless.
	for !lx.eof() {
		ch := lx.peek()
		if isIdentContinue(ch) || ch == '.' {
			lx.bump()
			continue
		}
		break
	}
	return lx.token(types.TokenNumber, start, false)
}

// scanQuoted scans a string or char literal from the opening quote to the
// matching unescaped closing quote of the same kind. A backslash suppresses
// interpretation of the following character, including an escaped quote. An
// unterminated literal spans to end of input and is flagged.
func (lx *Lexer) scanQuoted(quote byte, kind types.TokenKind) types.Token {
	start := lx.pos()
	lx.bump() // opening quote
	for !lx.eof() {
		ch := lx.bump()
		if ch == '\\' && !lx.eof() {
			lx.bump()
			continue
		}
		if ch == quote {
			return lx.token(kind, start, false)
		}
	}
	return lx.token(kind, start, true)
}

func (lx *Lexer) scanComment() types.Token {
	start := lx.pos()
	lx.bump() // '/'
	if lx.peek() == '/' {
		for !lx.eof() && lx.peek() != '\n' {
			lx.bump()
		}
		return lx.token(types.TokenLineComment, start, false)
	}

	lx.bump() // '*'
	for !lx.eof() {
		if lx.peek() == '*' && lx.peekAt(1) == '/' {
			lx.bump()
			lx.bump()
			return lx.token(types.TokenBlockComment, start, false)
		}
		lx.bump()
	}
	return lx.token(types.TokenBlockComment, start, true)
}

// scanDirective consumes a preprocessor line from '#' to end of line,
// honoring backslash line continuations
func (lx *Lexer) scanDirective() types.Token {
	start := lx.pos()
	for !lx.eof() {
		ch := lx.peek()
		if ch == '\n' {
			break
		}
		if ch == '\\' && lx.peekAt(1) == '\n' {
			lx.bump()
			lx.bump()
			continue
		}
		lx.bump()
	}
	return lx.token(types.TokenDirective, start, false)
}

func (lx *Lexer) scanPunct() types.Token {
	start := lx.pos()
	// Longest match first, except angle brackets which stay single-char
	for _, op := range multiPunct {
		if lx.matches(op) {
			for range op {
				lx.bump()
			}
			return lx.token(types.TokenPunct, start, false)
		}
	}
	lx.bump()
	return lx.token(types.TokenPunct, start, false)
}

func (lx *Lexer) matches(op string) bool {
	if lx.off+len(op) > len(lx.src) {
		return false
	}
	for i := 0; i < len(op); i++ {
		if lx.src[lx.off+i] != op[i] {
			return false
		}
	}
	return true
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return ch == '_' ||
		(ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') ||
		ch >= 0x80
}

func isIdentContinue(ch byte) bool {
	return ch == '_' || isDigit(ch) ||
		(ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') ||
		ch >= 0x80
}
