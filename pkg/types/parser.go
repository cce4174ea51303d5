package types

// ParseResult represents the output of parsing one source buffer
type ParseResult struct {
	// Root is the file-kind scope owning the symbol tree. Never nil, even
	// for empty or unparsable input.
	Root *Scope

	// Includes lists include directives found in the buffer, in order
	Includes []Include

	// Errors records non-fatal anomalies encountered during parsing
	Errors []ParseError
}

// Include represents one include directive
type Include struct {
	Path   string // include target without quotes or angle brackets
	System bool   // true for <...> form, false for "..." form
}

// ParseError represents a non-fatal anomaly noted during parsing. The parser
// never aborts; these describe regions it degraded or skipped.
type ParseError struct {
	File    string
	Line    int
	Column  int
	Message string
}

// Error implements the error interface
func (pe *ParseError) Error() string {
	return pe.Message
}

// Symbols returns every symbol in the tree in declaration order
func (pr *ParseResult) Symbols() []*Symbol {
	if pr.Root == nil {
		return nil
	}
	return pr.Root.Flatten()
}

// HasErrors returns true if any parsing anomalies were recorded
func (pr *ParseResult) HasErrors() bool {
	return len(pr.Errors) > 0
}

// AddError records a parsing anomaly
func (pr *ParseResult) AddError(file string, line, col int, msg string) {
	pr.Errors = append(pr.Errors, ParseError{
		File:    file,
		Line:    line,
		Column:  col,
		Message: msg,
	})
}
