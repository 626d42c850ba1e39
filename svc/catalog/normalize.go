package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeQuery trims q, folds compatibility forms and case, and collapses
// inner whitespace, so equivalent searches share a cache entry.
func NormalizeQuery(q string) string {
	q = norm.NFKC.String(q)
	q = cases.Fold().String(q)
	return strings.Join(strings.Fields(q), " ")
}
