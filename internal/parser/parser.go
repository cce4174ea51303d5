package parser

import (
	"fmt"
	"os"
	"strings"

	"github.com/gianged/cindex/internal/lexer"
	"github.com/gianged/cindex/pkg/types"
)

// maxHeaderLookahead bounds how many tokens the recognizer may scan ahead
// while matching a declaration header. Headers longer than this are treated
// as recognition misses and skipped.
const maxHeaderLookahead = 256

// Parser extracts a structural symbol tree from C-family source text. It
// performs no semantic analysis: no type checking, no macro expansion, no
// overload resolution. Malformed input never fails a parse; unrecognized
// regions are skipped and the tree is simply missing their symbols.
type Parser struct{}

// New creates a new Parser instance
func New() *Parser {
	return &Parser{}
}

// ParseFile reads a source file and parses its contents
func (p *Parser) ParseFile(filePath string) (*types.ParseResult, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return p.Parse(filePath, content), nil
}

// Parse extracts the symbol tree from one in-memory source buffer. The
// filename is attached to the root scope as metadata only. Parse always
// returns a result with a non-nil root scope; an empty buffer yields an
// empty file scope.
func (p *Parser) Parse(filename string, src []byte) *types.ParseResult {
	result := &types.ParseResult{Root: types.NewFileScope(filename)}

	run := &parseRun{
		src:    src,
		cur:    newCursor(lexer.New(src)),
		result: result,
	}
	run.pushFile(result.Root)
	run.execute()

	return result
}

// parseRun holds the state of a single forward pass: the token cursor, the
// scope stack, and the pending documentation candidate.
type parseRun struct {
	src    []byte
	cur    *cursor
	result *types.ParseResult

	frames  []*frame
	pending *docRun
}

// execute drives the single forward pass over the token stream
func (r *parseRun) execute() {
	for {
		tok := r.cur.at(0)
		if tok.IsEOF() {
			break
		}

		if r.top().opaque {
			r.consumeOpaque(tok)
			continue
		}

		switch {
		case tok.IsComment():
			r.collectComment(tok)
			r.cur.next()

		case tok.Kind == types.TokenDirective:
			r.consumeDirective(tok)

		case tok.Is("}"):
			r.cur.next()
			r.pop(tok.Span.End)
			r.discardPending()

		case tok.Is("{"):
			// Bare block with no recognized header: contents are opaque
			r.cur.next()
			r.pushOpaque(tok.Span.Start)
			r.discardPending()

		case r.isAccessLabel(tok):
			r.consumeAccessLabel(tok)

		default:
			if !r.recognize() {
				r.skipToBoundary()
			}
		}
	}

	// Unclosed scopes at end of input auto-close
	end := r.cur.at(0).Span.End
	for len(r.frames) > 1 {
		r.pop(end)
	}
	r.result.Root.Span.End = end
}

// consumeOpaque skips tokens inside a function body or anonymous block,
// tracking only brace nesting. Statements are not decomposed into symbols
// and their comments never become documentation candidates.
func (r *parseRun) consumeOpaque(tok types.Token) {
	switch {
	case tok.Is("{"):
		r.cur.next()
		r.pushOpaque(tok.Span.Start)
	case tok.Is("}"):
		r.cur.next()
		r.pop(tok.Span.End)
	default:
		r.cur.next()
	}
}

// consumeDirective records include targets and skips other preprocessor
// lines. A directive is an intervening code token, so it discards any
// pending documentation candidate.
func (r *parseRun) consumeDirective(tok types.Token) {
	r.cur.next()
	r.discardPending()

	text := strings.TrimSpace(strings.TrimPrefix(tok.Text, "#"))
	if !strings.HasPrefix(text, "include") {
		return
	}
	target := strings.TrimSpace(strings.TrimPrefix(text, "include"))
	if len(target) < 2 {
		return
	}
	switch {
	case target[0] == '"':
		if end := strings.IndexByte(target[1:], '"'); end >= 0 {
			r.result.Includes = append(r.result.Includes, types.Include{Path: target[1 : 1+end]})
		}
	case target[0] == '<':
		if end := strings.IndexByte(target, '>'); end > 0 {
			r.result.Includes = append(r.result.Includes, types.Include{Path: target[1:end], System: true})
		}
	}
}

// skipToBoundary implements recovery for recognition misses: tokens are
// dropped one at a time until the next `;`, `{`, or `}`. The parse never
// aborts on unrecognized regions.
func (r *parseRun) skipToBoundary() {
	r.discardPending()
	for {
		tok := r.cur.at(0)
		if tok.IsEOF() || tok.Is("{") || tok.Is("}") {
			return
		}
		r.cur.next()
		if tok.Is(";") {
			return
		}
	}
}

// text returns the raw source slice covered by a span
func (r *parseRun) text(start, end types.Position) string {
	s, e := start.Offset, end.Offset
	if s < 0 || e > len(r.src) || s > e {
		return ""
	}
	return string(r.src[s:e])
}

// note records a non-fatal parse anomaly
func (r *parseRun) note(pos types.Position, format string, args ...interface{}) {
	r.result.AddError(r.result.Root.Filename, pos.Line, pos.Column, fmt.Sprintf(format, args...))
}

// cursor is a bounded-lookahead window over the lexer's token stream.
// Tokens are produced once and consumed once; the window only grows while
// the recognizer scans a declaration header.
type cursor struct {
	lx  *lexer.Lexer
	buf []types.Token
}

func newCursor(lx *lexer.Lexer) *cursor {
	return &cursor{lx: lx}
}

// at returns the token i positions ahead without consuming anything
func (c *cursor) at(i int) types.Token {
	for len(c.buf) <= i {
		c.buf = append(c.buf, c.lx.Next())
	}
	return c.buf[i]
}

// next consumes and returns the current token
func (c *cursor) next() types.Token {
	tok := c.at(0)
	if !tok.IsEOF() {
		c.buf = c.buf[1:]
	}
	return tok
}

// drop consumes n tokens
func (c *cursor) drop(n int) {
	for i := 0; i < n; i++ {
		c.next()
	}
}
