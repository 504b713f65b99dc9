package results

import (
	"strings"

	"github.com/EmpoweredVote/election-results/internal/results/provider"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// FilterResults returns the results whose name contains query ignoring case,
// or whose number contains it verbatim. Both sides are NFC normalized so
// precomposed and decomposed Bengali input match. An empty query returns a
// copy of all results. Order is preserved.
func FilterResults(results []provider.ConstituencyResult, query string) []provider.ConstituencyResult {
	out := make([]provider.ConstituencyResult, 0, len(results))
	if query == "" {
		return append(out, results...)
	}

	// Casers are stateful; one per call.
	fold := cases.Fold()
	q := norm.NFC.String(query)
	folded := fold.String(q)

	for _, r := range results {
		if strings.Contains(fold.String(norm.NFC.String(r.ConstituencyName)), folded) ||
			strings.Contains(norm.NFC.String(r.ConstituencyNo), q) {
			out = append(out, r)
		}
	}
	return out
}
