package cluster

import (
	"strings"
	"unicode"
)

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "but": {},
	"by": {}, "can": {}, "cannot": {}, "do": {}, "does": {}, "for": {}, "from": {},
	"get": {}, "how": {}, "i": {}, "if": {}, "in": {}, "is": {}, "it": {}, "me": {},
	"my": {}, "no": {}, "not": {}, "of": {}, "on": {}, "or": {}, "so": {}, "the": {},
	"this": {}, "to": {}, "twice": {}, "was": {}, "we": {}, "what": {}, "when": {},
	"where": {}, "why": {}, "with": {}, "you": {}, "your": {},
}

// Tokens lowercases text and returns its content words in order, with
// stopwords removed and a trailing plural "s" trimmed.
func Tokens(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	out := fields[:0]
	for _, f := range fields {
		if _, stop := stopwords[f]; stop || len(f) < 2 {
			continue
		}
		if len(f) > 3 && strings.HasSuffix(f, "s") && !strings.HasSuffix(f, "ss") {
			f = f[:len(f)-1]
		}
		out = append(out, f)
	}
	return out
}
