package parser

import (
	"strings"

	"github.com/gianged/cindex/pkg/types"
)

// tags that take a first-word argument, like `@param name description`
var taggedWithArg = map[string]bool{
	"param":  true,
	"tparam": true,
}

// ParseDocTags extracts structured tags (@brief, @param, @return, @throws)
// from a documentation comment. Lines before the first tag belong to the
// free-text body and are ignored here; a tag's text runs until the next tag
// or the end of the comment.
func ParseDocTags(doc string) []types.DocTag {
	if doc == "" || !strings.ContainsRune(doc, '@') {
		return nil
	}

	var tags []types.DocTag
	var open *types.DocTag

	flush := func() {
		if open != nil {
			open.Text = strings.TrimSpace(open.Text)
			tags = append(tags, *open)
			open = nil
		}
	}

	for _, line := range strings.Split(doc, "\n") {
		line = trimCommentDecoration(line)

		if strings.HasPrefix(line, "@") {
			flush()
			name, rest := splitWord(line[1:])
			if name == "" {
				continue
			}
			open = &types.DocTag{Name: name}
			if taggedWithArg[name] {
				open.Arg, rest = splitWord(rest)
			}
			open.Text = rest
			continue
		}

		// Continuation line of the open tag
		if open != nil {
			open.Text += " " + line
		}
	}
	flush()

	return tags
}

// trimCommentDecoration strips the leading asterisk gutter that block
// comments conventionally carry on every line
func trimCommentDecoration(line string) string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "*")
	return strings.TrimSpace(line)
}

func splitWord(s string) (word, rest string) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i], strings.TrimSpace(s[i+1:])
	}
	return s, ""
}
