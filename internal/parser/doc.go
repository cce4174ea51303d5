// Package parser extracts structural symbol trees from C-family source
// files without compiling them.
//
// The parser makes a single forward pass over the token stream produced by
// internal/lexer, maintaining a stack of open scopes and pattern-matching
// token windows against declaration shapes: namespaces, classes and structs,
// enums, functions, methods, constructors, destructors, templates, and
// fields. Function bodies are treated as opaque brace-matched regions and
// are never decomposed into symbols.
//
// Recognition is best-effort. A token run that matches no declaration shape
// is skipped up to the next `;`, `{`, or `}` and the parse continues; the
// result is simply missing symbols for regions the parser did not
// understand. Parse never returns an error for malformed input.
//
// Documentation comments directly above a declaration attach to the symbol
// that follows, including structured @param/@return/@brief tags. Each
// comment run attaches to at most one symbol.
package parser
