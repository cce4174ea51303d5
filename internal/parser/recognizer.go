package parser

import (
	"strings"

	"github.com/gianged/cindex/pkg/types"
)

// templateInfo carries a consumed template parameter list to the header
// that follows it
type templateInfo struct {
	params string
	start  types.Position
}

// recognize pattern-matches the token window at the current position against
// declaration shapes, first match wins. It returns false on a recognition
// miss, leaving recovery to the caller.
func (r *parseRun) recognize() bool {
	tok := r.cur.at(0)

	if tok.Kind == types.TokenKeyword {
		switch tok.Text {
		case "template":
			return r.recognizeTemplate()
		case "namespace":
			return r.recognizeNamespace()
		case "class", "struct":
			return r.recognizeClassOrStruct(nil)
		case "enum":
			return r.recognizeEnum()
		}
	}

	return r.recognizeCallableOrField(nil)
}

// recognizeTemplate consumes `template < ... >` and dispatches on the header
// that follows: class/struct yields a template-class, anything callable
// yields a template-function.
func (r *parseRun) recognizeTemplate() bool {
	start := r.cur.at(0).Span.Start

	if !r.cur.at(1).Is("<") {
		return false
	}

	// Angle brackets delimit a template parameter list only here, directly
	// after the template keyword. Nested '<'/'>' pairs are matched by depth.
	depth := 0
	end := -1
	for j := 1; j < maxHeaderLookahead; j++ {
		tok := r.cur.at(j)
		if tok.IsEOF() {
			return false
		}
		if tok.Is("<") {
			depth++
		} else if tok.Is(">") {
			depth--
			if depth == 0 {
				end = j
				break
			}
		}
	}
	if end < 0 {
		return false
	}

	tmpl := &templateInfo{
		params: r.text(start, r.cur.at(end).Span.End),
		start:  start,
	}
	r.cur.drop(end + 1)

	next := r.cur.at(0)
	if next.IsKeyword("class") || next.IsKeyword("struct") {
		return r.recognizeClassOrStruct(tmpl)
	}
	return r.recognizeCallableOrField(tmpl)
}

// recognizeNamespace matches `namespace IDENT {` and the anonymous form
// `namespace {`
func (r *parseRun) recognizeNamespace() bool {
	start := r.cur.at(0).Span.Start
	name := ""
	open := 1

	if r.cur.at(1).Kind == types.TokenIdent {
		name = r.cur.at(1).Text
		open = 2
	}
	if !r.cur.at(open).Is("{") {
		return false
	}

	sym := &types.Symbol{
		Name:       name,
		Kind:       types.KindNamespace,
		Signature:  strings.TrimSpace("namespace " + name),
		Doc:        r.takePending(),
		Visibility: types.VisibilityUnspecified,
		Span:       types.Span{Start: start},
	}
	sym.DocTags = ParseDocTags(sym.Doc)

	r.cur.drop(open + 1)
	r.pushContainer(sym, types.ScopeNamespace)
	return true
}

// recognizeClassOrStruct matches `class|struct IDENT ... {` with an optional
// base list, and the forward-declaration form `class IDENT ;`
func (r *parseRun) recognizeClassOrStruct(tmpl *templateInfo) bool {
	head := r.cur.at(0)
	isClass := head.Text == "class"
	start := head.Span.Start
	if tmpl != nil {
		start = tmpl.start
	}

	if r.cur.at(1).Kind != types.TokenIdent {
		return false
	}
	name := r.cur.at(1).Text

	kind := types.KindStruct
	if isClass {
		kind = types.KindClass
	}
	if tmpl != nil {
		kind = types.KindTemplateClass
	}

	// Forward declaration: no body, no child scope
	if r.cur.at(2).Is(";") {
		sym := &types.Symbol{
			Name:            name,
			Kind:            kind,
			Signature:       r.text(start, r.cur.at(1).Span.End),
			Doc:             r.takePending(),
			DeclarationOnly: true,
			Span:            types.Span{Start: start, End: r.cur.at(2).Span.End},
		}
		sym.DocTags = ParseDocTags(sym.Doc)
		r.cur.drop(3)
		r.emit(sym)
		return true
	}

	// Base list tokens are kept verbatim in the signature up to the body
	open := -1
	for j := 2; j < maxHeaderLookahead; j++ {
		tok := r.cur.at(j)
		if tok.IsEOF() || tok.Is(";") || tok.Is("}") {
			return false
		}
		if tok.Is("{") {
			open = j
			break
		}
	}
	if open < 0 {
		return false
	}

	sym := &types.Symbol{
		Name:      name,
		Kind:      kind,
		Signature: strings.TrimSpace(r.text(start, r.cur.at(open-1).Span.End)),
		Doc:       r.takePending(),
		Span:      types.Span{Start: start},
	}
	sym.DocTags = ParseDocTags(sym.Doc)

	r.cur.drop(open + 1)
	r.pushContainer(sym, types.ScopeType)

	// Struct members default to public, class members to private, until
	// the first access label
	if isClass {
		r.top().access = types.VisibilityPrivate
	} else {
		r.top().access = types.VisibilityPublic
	}
	return true
}

// recognizeEnum matches `enum [class|struct] IDENT { commalist }` and emits
// one enumerator child per comma-separated identifier. Value expressions
// after `=` are stored verbatim; no arithmetic is evaluated.
func (r *parseRun) recognizeEnum() bool {
	start := r.cur.at(0).Span.Start
	i := 1

	// Scoped enum form
	if r.cur.at(i).IsKeyword("class") || r.cur.at(i).IsKeyword("struct") {
		i++
	}

	name := ""
	if r.cur.at(i).Kind == types.TokenIdent {
		name = r.cur.at(i).Text
		i++
	}

	// Forward declaration (`enum Color : int;`) or underlying-type clause
	open := -1
	for j := i; j < maxHeaderLookahead; j++ {
		tok := r.cur.at(j)
		if tok.IsEOF() || tok.Is("}") {
			return false
		}
		if tok.Is(";") {
			sym := &types.Symbol{
				Name:            name,
				Kind:            types.KindEnum,
				Signature:       strings.TrimSpace(r.text(start, r.cur.at(j-1).Span.End)),
				Doc:             r.takePending(),
				DeclarationOnly: true,
				Span:            types.Span{Start: start, End: r.cur.at(j).Span.End},
			}
			sym.DocTags = ParseDocTags(sym.Doc)
			r.cur.drop(j + 1)
			r.emit(sym)
			return true
		}
		if tok.Is("{") {
			open = j
			break
		}
	}
	if open < 0 {
		return false
	}

	sym := &types.Symbol{
		Name:      name,
		Kind:      types.KindEnum,
		Signature: strings.TrimSpace(r.text(start, r.cur.at(open-1).Span.End)),
		Doc:       r.takePending(),
		Span:      types.Span{Start: start},
	}
	sym.DocTags = ParseDocTags(sym.Doc)

	r.cur.drop(open + 1)
	r.pushContainer(sym, types.ScopeType)
	r.top().access = types.VisibilityPublic

	r.consumeEnumerators()
	return true
}

// consumeEnumerators streams the enum body, emitting one enumerator per
// comma-separated identifier until the closing brace or end of input
func (r *parseRun) consumeEnumerators() {
	for {
		tok := r.cur.at(0)
		switch {
		case tok.IsEOF():
			r.pop(tok.Span.End)
			return

		case tok.Is("}"):
			end := tok.Span.End
			r.cur.next()
			if r.cur.at(0).Is(";") {
				end = r.cur.next().Span.End
			}
			r.pop(end)
			r.discardPending()
			return

		case tok.IsComment():
			r.collectComment(tok)
			r.cur.next()

		case tok.Kind == types.TokenIdent:
			r.consumeEnumerator(tok)

		default:
			// Stray commas or unrecognized tokens between enumerators
			r.cur.next()
			r.discardPending()
		}
	}
}

func (r *parseRun) consumeEnumerator(nameTok types.Token) {
	end := nameTok.Span.End
	r.cur.next()

	// Optional value expression after '=', stored verbatim
	for {
		tok := r.cur.at(0)
		if tok.IsEOF() || tok.Is(",") || tok.Is("}") {
			break
		}
		end = tok.Span.End
		r.cur.next()
	}
	if r.cur.at(0).Is(",") {
		r.cur.next()
	}

	sym := &types.Symbol{
		Name:      nameTok.Text,
		Kind:      types.KindEnumerator,
		Signature: r.text(nameTok.Span.Start, end),
		Doc:       r.takePending(),
		Span:      types.Span{Start: nameTok.Span.Start, End: end},
	}
	sym.DocTags = ParseDocTags(sym.Doc)
	r.emit(sym)
}

// recognizeCallableOrField matches rule patterns 5 and 6: a type-like token
// run followed by IDENT ( ... ) and either a body or `;` is a callable; any
// other token run inside a type scope ending in `;` is a field.
func (r *parseRun) recognizeCallableOrField(tmpl *templateInfo) bool {
	// Collect header tokens up to the first structural boundary
	boundary := -1
	for j := 0; j < maxHeaderLookahead; j++ {
		tok := r.cur.at(j)
		if tok.IsEOF() || tok.Is("{") || tok.Is("}") {
			return false
		}
		if tok.Is("(") || tok.Is(";") {
			boundary = j
			break
		}
	}
	if boundary < 0 {
		return false
	}

	if r.cur.at(boundary).Is(";") {
		return r.recognizeField(boundary)
	}
	return r.recognizeCallable(tmpl, boundary)
}

// recognizeCallable handles function/method/constructor/destructor headers.
// The paren index is the position of the opening parenthesis; the token just
// before it must be the declared name.
func (r *parseRun) recognizeCallable(tmpl *templateInfo, paren int) bool {
	if paren == 0 {
		return false
	}
	nameTok := r.cur.at(paren - 1)
	if nameTok.Kind != types.TokenIdent {
		return false
	}

	// Match the parameter list by paren depth
	depth := 0
	rparen := -1
	for j := paren; j < maxHeaderLookahead; j++ {
		tok := r.cur.at(j)
		if tok.IsEOF() {
			return false
		}
		if tok.Is("(") {
			depth++
		} else if tok.Is(")") {
			depth--
			if depth == 0 {
				rparen = j
				break
			}
		}
	}
	if rparen < 0 {
		return false
	}

	// After the parameter list: trailing qualifiers, an optional constructor
	// initializer list (parens matched by depth), then `{` or `;`
	terminator := -1
	depth = 0
	for j := rparen + 1; j < maxHeaderLookahead; j++ {
		tok := r.cur.at(j)
		if tok.IsEOF() {
			return false
		}
		if tok.Is("(") {
			depth++
			continue
		}
		if tok.Is(")") {
			depth--
			continue
		}
		if depth > 0 {
			continue
		}
		if tok.Is("{") || tok.Is(";") {
			terminator = j
			break
		}
		if tok.Is("}") {
			return false
		}
	}
	if terminator < 0 {
		return false
	}

	name := nameTok.Text
	typeName, inType := r.insideType()
	leading := paren - 1 // tokens before the name: return type, qualifiers

	kind := types.KindFunction
	switch {
	case tmpl != nil:
		kind = types.KindTemplateFunction
	case inType && strings.HasPrefix(name, "~") && name[1:] == typeName:
		kind = types.KindDestructor
	case inType && name == typeName && leading == 0:
		kind = types.KindConstructor
	case inType:
		kind = types.KindMethod
	}

	start := r.cur.at(0).Span.Start
	if tmpl != nil {
		start = tmpl.start
	}

	sym := &types.Symbol{
		Name:      name,
		Kind:      kind,
		Signature: r.text(r.cur.at(paren).Span.Start, r.cur.at(rparen).Span.End),
		Doc:       r.takePending(),
		Span:      types.Span{Start: start},
	}
	sym.DocTags = ParseDocTags(sym.Doc)

	endTok := r.cur.at(terminator)
	hasBody := endTok.Is("{")
	sym.DeclarationOnly = !hasBody
	if !hasBody {
		sym.Span.End = endTok.Span.End
	}

	r.cur.drop(terminator + 1)
	r.emit(sym)

	if hasBody {
		// The body is an opaque scope: statements are never decomposed
		r.pushOpaqueFor(sym, endTok.Span.Start)
	}
	return true
}

// recognizeField records any other token run ending in `;` inside a type
// scope as a field, using the raw token text as its signature
func (r *parseRun) recognizeField(semi int) bool {
	if _, inType := r.insideType(); !inType || semi == 0 {
		return false
	}

	// The declared name is the last identifier before any initializer,
	// array extent, or bit-field width
	limit := semi
	for j := 0; j < semi; j++ {
		tok := r.cur.at(j)
		if tok.Is("=") || tok.Is("[") || tok.Is(":") {
			limit = j
			break
		}
	}
	name := ""
	for j := limit - 1; j >= 0; j-- {
		if r.cur.at(j).Kind == types.TokenIdent {
			name = r.cur.at(j).Text
			break
		}
	}
	if name == "" {
		return false
	}

	sym := &types.Symbol{
		Name:      name,
		Kind:      types.KindField,
		Signature: r.text(r.cur.at(0).Span.Start, r.cur.at(semi-1).Span.End),
		Doc:       r.takePending(),
		Span:      types.Span{Start: r.cur.at(0).Span.Start, End: r.cur.at(semi).Span.End},
	}
	sym.DocTags = ParseDocTags(sym.Doc)

	r.cur.drop(semi + 1)
	r.emit(sym)
	return true
}
