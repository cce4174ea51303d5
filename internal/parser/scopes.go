package parser

import (
	"github.com/gianged/cindex/pkg/types"
)

// frame is one open nesting context on the scope stack. A frame's scope is
// fixed at creation; popping the frame seals the scope's child list.
type frame struct {
	scope *types.Scope

	// sym is the container symbol being built in this scope, nil for the
	// file frame and for opaque block frames
	sym *types.Symbol

	// access is the current member visibility inside a type scope, updated
	// by public:/private:/protected: labels
	access types.Visibility

	// opaque marks function bodies and bare blocks whose contents are not
	// decomposed into symbols
	opaque bool
}

func (r *parseRun) top() *frame {
	return r.frames[len(r.frames)-1]
}

func (r *parseRun) pushFile(root *types.Scope) {
	r.frames = append(r.frames, &frame{scope: root})
}

// pushContainer opens a scope for a namespace or type symbol. The symbol is
// emitted into the current scope first, so its owner and visibility reflect
// the enclosing context rather than its own body.
func (r *parseRun) pushContainer(sym *types.Symbol, kind types.ScopeKind) {
	r.emit(sym)
	scope := &types.Scope{
		Kind:   kind,
		Name:   sym.Name,
		Parent: r.top().scope,
		Span:   types.Span{Start: sym.Span.Start},
	}
	r.frames = append(r.frames, &frame{scope: scope, sym: sym})
}

// pushOpaque opens a bare block scope
func (r *parseRun) pushOpaque(start types.Position) {
	scope := &types.Scope{
		Kind:   types.ScopeFunction,
		Parent: r.top().scope,
		Span:   types.Span{Start: start},
	}
	r.frames = append(r.frames, &frame{scope: scope, opaque: true})
}

// pushOpaqueFor opens a callable's body scope. Popping it closes the
// symbol's span at the closing brace.
func (r *parseRun) pushOpaqueFor(sym *types.Symbol, start types.Position) {
	scope := &types.Scope{
		Kind:   types.ScopeFunction,
		Name:   sym.Name,
		Parent: r.top().scope,
		Span:   types.Span{Start: start},
	}
	r.frames = append(r.frames, &frame{scope: scope, sym: sym, opaque: true})
}

// pop closes the current scope, sealing its symbol list into the container
// symbol it was built for. Excess closing braces never pop the file frame;
// they are treated as no-ops so partial input cannot unbalance the stack.
func (r *parseRun) pop(end types.Position) {
	if len(r.frames) <= 1 {
		return
	}
	f := r.frames[len(r.frames)-1]
	r.frames = r.frames[:len(r.frames)-1]

	f.scope.Span.End = end
	if f.sym != nil {
		f.sym.Children = f.scope.Symbols
		f.sym.Span.End = end
	}
}

// emit appends a leaf symbol to the current scope, applying the frame's
// current member visibility when the scope is a type body
func (r *parseRun) emit(sym *types.Symbol) {
	f := r.top()
	if f.scope.Kind == types.ScopeType && sym.Visibility == "" {
		sym.Visibility = f.access
	}
	if sym.Visibility == "" {
		sym.Visibility = types.VisibilityUnspecified
	}
	f.scope.Append(sym)
}

// insideType reports whether the current scope is a class/struct body, and
// returns the type's name when it is
func (r *parseRun) insideType() (string, bool) {
	f := r.top()
	if f.scope.Kind == types.ScopeType && f.sym != nil &&
		(f.sym.Kind == types.KindClass || f.sym.Kind == types.KindStruct ||
			f.sym.Kind == types.KindTemplateClass) {
		return f.sym.Name, true
	}
	return "", false
}

// isAccessLabel reports whether the current token starts an access label
// (public:/private:/protected:) inside a type scope
func (r *parseRun) isAccessLabel(tok types.Token) bool {
	if _, ok := r.insideType(); !ok {
		return false
	}
	if tok.Kind != types.TokenKeyword {
		return false
	}
	switch tok.Text {
	case "public", "private", "protected":
		return r.cur.at(1).Is(":")
	}
	return false
}

// consumeAccessLabel updates the current type frame's visibility state.
// The label applies to subsequently declared members until the next label.
func (r *parseRun) consumeAccessLabel(tok types.Token) {
	r.cur.drop(2) // keyword and ':'
	r.discardPending()
	switch tok.Text {
	case "public":
		r.top().access = types.VisibilityPublic
	case "protected":
		r.top().access = types.VisibilityProtected
	case "private":
		r.top().access = types.VisibilityPrivate
	}
}
