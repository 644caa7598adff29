package repository

import (
	"fmt"
	"strings"
	"unicode"
)

// Subject prefixes accepted in front of "By" in a derived query method name.
var finderVerbs = []string{"find", "read", "get", "query", "search", "stream"}

// ParseFinder resolves a derived query method such as "findByLastName" to the
// property it filters on ("lastName"). Only single-property equality is derived.
func ParseFinder(method string) (string, error) {
	var rest string
	for _, verb := range finderVerbs {
		if !strings.HasPrefix(method, verb) {
			continue
		}
		// find...By: anything between the verb and "By" is ignored, e.g. findAllBy
		if idx := strings.Index(method[len(verb):], "By"); idx >= 0 {
			rest = method[len(verb)+idx+len("By"):]
			break
		}
	}
	if rest == "" {
		return "", fmt.Errorf("%q is not a derived finder: %w", method, ErrOperationNotSupported)
	}
	if hasKeyword(rest, "And") || hasKeyword(rest, "Or") {
		return "", fmt.Errorf("compound finder %q: %w", method, ErrOperationNotSupported)
	}

	r := []rune(rest)
	r[0] = unicode.ToLower(r[0])
	return string(r), nil
}

// hasKeyword reports whether kw appears as a camel-case word inside s,
// so "Order" or "Andrews" don't count as "Or" or "And".
func hasKeyword(s, kw string) bool {
	for i := 1; i+len(kw) <= len(s); i++ {
		if s[i:i+len(kw)] != kw {
			continue
		}
		end := i + len(kw)
		if end < len(s) && unicode.IsUpper(rune(s[end])) {
			return true
		}
	}
	return false
}
