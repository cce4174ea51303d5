package parser

import (
	"strings"

	"github.com/gianged/cindex/pkg/types"
)

// docRun is a candidate documentation block: a contiguous run of comment
// tokens with nothing but whitespace between them. It attaches to at most
// one declaration; if code intervenes before a declaration is recognized,
// the candidate is discarded.
type docRun struct {
	tokens []types.Token
}

// collectComment feeds one comment token into the pending candidate.
// A block comment always starts a fresh candidate, so a comment block
// followed by another comment block is never attached to anything. Line
// comments extend the candidate across whitespace-only gaps; only an
// intervening non-comment token breaks the run, via discardPending.
func (r *parseRun) collectComment(tok types.Token) {
	if tok.Kind == types.TokenBlockComment {
		r.pending = &docRun{tokens: []types.Token{tok}}
		return
	}
	if r.pending != nil {
		r.pending.tokens = append(r.pending.tokens, tok)
		return
	}
	r.pending = &docRun{tokens: []types.Token{tok}}
}

// takePending claims the pending candidate for a recognized declaration.
// Ownership is exclusive: the candidate is cleared so no later declaration
// can claim the same comment.
func (r *parseRun) takePending() string {
	if r.pending == nil {
		return ""
	}
	parts := make([]string, 0, len(r.pending.tokens))
	for _, tok := range r.pending.tokens {
		parts = append(parts, cleanComment(tok))
	}
	r.pending = nil
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

// cleanComment strips the comment delimiters and, for block comments, the
// leading asterisk gutter on every line. Interior blank lines survive as
// paragraph breaks.
func cleanComment(tok types.Token) string {
	text := tok.Text
	if tok.Kind == types.TokenLineComment {
		text = strings.TrimPrefix(text, "//")
		text = strings.TrimPrefix(text, "/") // doxygen-style ///
		return strings.TrimSpace(text)
	}
	text = strings.TrimPrefix(text, "/*")
	text = strings.TrimPrefix(text, "*") // /** openers
	if !tok.Unterminated {
		text = strings.TrimSuffix(text, "*/")
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = trimCommentDecoration(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// discardPending drops the candidate when a non-comment token intervenes
// before any declaration
func (r *parseRun) discardPending() {
	r.pending = nil
}
