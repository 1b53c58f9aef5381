/*
Package query parses watchlist search expressions into a small AST and
evaluates listing titles against them.

A query is free text with three token kinds: a plain term is required, a
`-`-prefixed term is excluded, and a parenthesized comma-separated list of
quoted literals is an OR-group ("at least one of these must appear").
Matching is case-insensitive substring containment throughout.
*/
package query

import (
	"regexp"
	"strings"
)

var (
	groupRe   = regexp.MustCompile(`\(([^()]*)\)`)
	literalRe = regexp.MustCompile(`['"]([^'"]*)['"]`)
)

// Query is a parsed search expression. All terms are lower-cased at parse
// time so Matches never re-normalizes them.
type Query struct {
	Raw      string
	Required []string
	Excluded []string
	Groups   [][]string
}

// Parse builds the AST once; the result is immutable and safe to share.
func Parse(raw string) Query {
	q := Query{Raw: raw}

	rest := groupRe.ReplaceAllStringFunc(raw, func(m string) string {
		lits := literalRe.FindAllStringSubmatch(m, -1)
		var group []string
		for _, l := range lits {
			alt := strings.ToLower(strings.TrimSpace(l[1]))
			if alt != "" {
				group = append(group, alt)
			}
		}
		if len(group) == 0 {
			// Parens without quoted literals are not a group; leave the
			// text for plain tokenization.
			return m
		}
		q.Groups = append(q.Groups, group)
		return " "
	})

	for _, tok := range strings.Fields(strings.ToLower(rest)) {
		if strings.HasPrefix(tok, "-") {
			if term := tok[1:]; term != "" {
				q.Excluded = append(q.Excluded, term)
			}
			continue
		}
		q.Required = append(q.Required, tok)
	}

	return q
}

// Matches reports whether the title satisfies every group (OR within,
// AND across), contains every required term and none of the excluded ones.
// Order of terms never affects the result.
func (q Query) Matches(title string) bool {
	t := strings.ToLower(title)

	for _, group := range q.Groups {
		satisfied := false
		for _, alt := range group {
			if strings.Contains(t, alt) {
				satisfied = true
				break
			}
		}
		if !satisfied {
			return false
		}
	}

	for _, term := range q.Excluded {
		if strings.Contains(t, term) {
			return false
		}
	}

	for _, term := range q.Required {
		if !strings.Contains(t, term) {
			return false
		}
	}

	return true
}

// Plain returns just the required terms joined by spaces. This is what gets
// typed into the marketplace search box and what sold-price keys derive
// from; exclusions and OR-groups are evaluator-side refinements.
func (q Query) Plain() string {
	return strings.Join(q.Required, " ")
}
