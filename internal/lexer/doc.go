// Package lexer tokenizes raw C-family source text.
//
// The lexer classifies runs of bytes into identifiers, keywords, literals,
// punctuation, comments, and preprocessor directives, tracking byte offsets
// and line/column positions for every token. It is deliberately forgiving:
// there is no error path. Unterminated string, char, and block-comment
// constructs are emitted as single flagged tokens spanning to end of input,
// and downstream stages treat them as opaque.
//
// Angle brackets are always emitted as single-character punctuation tokens,
// even where '<<' or '>>' would otherwise form an operator. The parser
// decides from context (only after the template keyword) whether they
// delimit a template parameter list, which keeps comparison and shift
// operators inside function bodies from ever being mistaken for scope
// delimiters.
package lexer
