package lexer

// keywords is the fixed set of identifiers retagged as keyword tokens.
// Declaration recognition only depends on a handful of these; the rest are
// included so downstream stages never mistake them for declaration names.
var keywords = map[string]bool{
	"namespace": true,
	"class":     true,
	"struct":    true,
	"enum":      true,
	"union":     true,
	"template":  true,
	"typename":  true,
	"typedef":   true,
	"using":     true,

	"public":    true,
	"private":   true,
	"protected": true,

	"const":     true,
	"constexpr": true,
	"static":    true,
	"virtual":   true,
	"inline":    true,
	"friend":    true,
	"operator":  true,
	"explicit":  true,
	"extern":    true,
	"mutable":   true,

	"void":     true,
	"auto":     true,
	"bool":     true,
	"char":     true,
	"int":      true,
	"long":     true,
	"short":    true,
	"float":    true,
	"double":   true,
	"signed":   true,
	"unsigned": true,

	"return":   true,
	"if":       true,
	"else":     true,
	"for":      true,
	"while":    true,
	"do":       true,
	"switch":   true,
	"case":     true,
	"default":  true,
	"break":    true,
	"continue": true,
	"goto":     true,
	"throw":    true,
	"try":      true,
	"catch":    true,
	"new":      true,
	"delete":   true,
	"sizeof":   true,
	"this":     true,
	"nullptr":  true,
	"true":     true,
	"false":    true,
}

// IsKeyword reports whether an identifier belongs to the keyword set
func IsKeyword(ident string) bool {
	return keywords[ident]
}
