package types

import (
	"errors"
	"strings"
)

// SymbolKind represents the kind of declaration a symbol records
type SymbolKind string

const (
	KindNamespace        SymbolKind = "namespace"
	KindClass            SymbolKind = "class"
	KindStruct           SymbolKind = "struct"
	KindEnum             SymbolKind = "enum"
	KindEnumerator       SymbolKind = "enumerator"
	KindFunction         SymbolKind = "function"
	KindMethod           SymbolKind = "method"
	KindConstructor      SymbolKind = "constructor"
	KindDestructor       SymbolKind = "destructor"
	KindField            SymbolKind = "field"
	KindTemplateFunction SymbolKind = "template_function"
	KindTemplateClass    SymbolKind = "template_class"
)

// Visibility represents member access as declared by access labels
type Visibility string

const (
	VisibilityPublic      Visibility = "public"
	VisibilityProtected   Visibility = "protected"
	VisibilityPrivate     Visibility = "private"
	VisibilityUnspecified Visibility = "unspecified"
)

// DocTag is one documentation-marker tag (@param, @return, ...) parsed from
// an attached documentation block
type DocTag struct {
	Name string // tag name without the marker, e.g. "param"
	Arg  string // first word after the tag for tags that take one, e.g. the parameter name
	Text string // remaining tag text
}

// Symbol is one recognized declaration extracted from source text
type Symbol struct {
	// Identification
	Name string
	Kind SymbolKind

	// Content
	Signature string // raw parameter list for callables, raw declaration text otherwise
	Doc       string // attached documentation block, empty if none
	DocTags   []DocTag

	// Visibility within the enclosing type, or unspecified at file and
	// namespace level
	Visibility Visibility

	// DeclarationOnly marks forward declarations and bodiless function
	// declarations; such symbols never own children.
	DeclarationOnly bool

	// Location
	Span Span

	// Children holds nested declarations for container kinds (namespace,
	// class, struct, enum). Sealed when the container's closing brace is
	// consumed.
	Children []*Symbol

	// Owner is the scope the symbol was declared in. Lookup-only back
	// reference; the scope's child list owns the symbol.
	Owner *Scope `json:"-"`

	// StoredPath is the precomputed "::" qualified name for symbols
	// rehydrated from the index, where scope ownership links are not
	// rebuilt. Empty on freshly parsed symbols.
	StoredPath string `json:",omitempty"`
}

// Path returns the qualified path of enclosing scope names down from the
// root, recomputed by walking ownership
func (s *Symbol) Path() []string {
	return s.Owner.Path()
}

// QualifiedName joins the symbol's path and name with "::". Symbols loaded
// back from the index carry no scope links; for those the stored path is
// returned as-is.
func (s *Symbol) QualifiedName() string {
	if s.Owner == nil && s.StoredPath != "" {
		return s.StoredPath
	}
	parts := append(s.Path(), s.Name)
	return strings.Join(parts, "::")
}

// IsContainer reports whether the symbol kind may own child symbols
func (s *Symbol) IsContainer() bool {
	switch s.Kind {
	case KindNamespace, KindClass, KindStruct, KindEnum, KindTemplateClass:
		return true
	default:
		return false
	}
}

// IsCallable reports whether the symbol is a function-like declaration
func (s *Symbol) IsCallable() bool {
	switch s.Kind {
	case KindFunction, KindMethod, KindConstructor, KindDestructor, KindTemplateFunction:
		return true
	default:
		return false
	}
}

// ValidateKind checks if the symbol kind is valid
func (s *Symbol) ValidateKind() error {
	switch s.Kind {
	case KindNamespace, KindClass, KindStruct, KindEnum, KindEnumerator,
		KindFunction, KindMethod, KindConstructor, KindDestructor,
		KindField, KindTemplateFunction, KindTemplateClass:
		return nil
	default:
		return errors.New("invalid symbol kind")
	}
}

// ValidateVisibility checks if the symbol visibility is valid
func (s *Symbol) ValidateVisibility() error {
	switch s.Visibility {
	case VisibilityPublic, VisibilityProtected, VisibilityPrivate, VisibilityUnspecified:
		return nil
	default:
		return errors.New("invalid symbol visibility")
	}
}

// Validate performs comprehensive validation of the symbol
func (s *Symbol) Validate() error {
	if s.Name == "" && s.Kind != KindNamespace {
		return errors.New("symbol name is required")
	}

	if err := s.ValidateKind(); err != nil {
		return err
	}

	if err := s.ValidateVisibility(); err != nil {
		return err
	}

	if !s.IsContainer() && len(s.Children) > 0 {
		return errors.New("only container symbols can have children")
	}

	if s.DeclarationOnly && len(s.Children) > 0 {
		return errors.New("declaration-only symbols cannot have children")
	}

	if s.Span.Start.Offset > s.Span.End.Offset {
		return errors.New("invalid span: start must not exceed end")
	}

	return nil
}

func (s *Symbol) walk(fn func(*Symbol) bool) bool {
	if !fn(s) {
		return false
	}
	for _, child := range s.Children {
		if !child.walk(fn) {
			return false
		}
	}
	return true
}
