package types

// ScopeKind classifies a nesting context opened by a brace or template
// parameter list
type ScopeKind string

const (
	ScopeFile           ScopeKind = "file"
	ScopeNamespace      ScopeKind = "namespace"
	ScopeType           ScopeKind = "type"
	ScopeFunction       ScopeKind = "function"
	ScopeTemplateParams ScopeKind = "template_params"
)

// Scope is a nesting context that owns an ordered list of declared symbols.
// The parent reference is a lookup-only relation; ownership flows strictly
// parent to child. A Scope's parent is fixed at creation.
type Scope struct {
	Kind    ScopeKind
	Name    string // empty for anonymous scopes
	Parent  *Scope  `json:"-"`
	Symbols []*Symbol
	Span    Span

	// Filename is metadata attached to the root (file) scope only; it is
	// never interpreted by the parser.
	Filename string `json:",omitempty"`
}

// NewFileScope creates the root scope for one parsed buffer
func NewFileScope(filename string) *Scope {
	return &Scope{Kind: ScopeFile, Filename: filename}
}

// Path returns the qualified path down from the root: the names of every
// named ancestor scope plus this scope's own name. The path is recomputed on
// each call by walking parent references, never cached.
func (s *Scope) Path() []string {
	if s == nil {
		return nil
	}
	var parts []string
	for cur := s; cur != nil; cur = cur.Parent {
		if cur.Name != "" {
			parts = append(parts, cur.Name)
		}
	}
	// reverse into root-first order
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return parts
}

// Append adds a symbol to the scope's ordered child list and records the
// scope as the symbol's owner
func (s *Scope) Append(sym *Symbol) {
	sym.Owner = s
	s.Symbols = append(s.Symbols, sym)
}

// Walk visits every symbol owned by the scope in declaration order,
// descending into container symbols. Visiting stops when fn returns false.
func (s *Scope) Walk(fn func(*Symbol) bool) {
	for _, sym := range s.Symbols {
		if !sym.walk(fn) {
			return
		}
	}
}

// Flatten returns every symbol in the tree in declaration order
func (s *Scope) Flatten() []*Symbol {
	var out []*Symbol
	s.Walk(func(sym *Symbol) bool {
		out = append(out, sym)
		return true
	})
	return out
}
