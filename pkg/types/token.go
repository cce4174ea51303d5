package types

// TokenKind classifies a lexical token produced by the tokenizer
type TokenKind string

const (
	TokenIdent        TokenKind = "ident"
	TokenKeyword      TokenKind = "keyword"
	TokenString       TokenKind = "string"
	TokenChar         TokenKind = "char"
	TokenNumber       TokenKind = "number"
	TokenPunct        TokenKind = "punct"
	TokenLineComment  TokenKind = "line_comment"
	TokenBlockComment TokenKind = "block_comment"
	TokenDirective    TokenKind = "directive"
	TokenEOF          TokenKind = "eof"
)

// Position is a location in source text. Offset is a byte offset from the
// start of the buffer; Line and Column are 1-based.
type Position struct {
	Offset int
	Line   int
	Column int
}

// Span covers a half-open byte range [Start.Offset, End.Offset) of source text
type Span struct {
	Start Position
	End   Position
}

// Token is one classified lexical unit. Tokens are immutable once produced.
type Token struct {
	Kind TokenKind
	Text string
	Span Span

	// Unterminated is set on string/char literals and block comments that
	// reach end-of-input before their closing delimiter. Downstream stages
	// treat such tokens as opaque rather than failing.
	Unterminated bool
}

// IsComment reports whether the token is a line or block comment
func (t Token) IsComment() bool {
	return t.Kind == TokenLineComment || t.Kind == TokenBlockComment
}

// IsEOF reports whether the token marks end of input
func (t Token) IsEOF() bool {
	return t.Kind == TokenEOF
}

// Is reports whether the token is punctuation with the given text
func (t Token) Is(punct string) bool {
	return t.Kind == TokenPunct && t.Text == punct
}

// IsKeyword reports whether the token is the given keyword
func (t Token) IsKeyword(kw string) bool {
	return t.Kind == TokenKeyword && t.Text == kw
}
