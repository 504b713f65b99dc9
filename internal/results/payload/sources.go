package payload

import (
	"strconv"
	"strings"

	"github.com/EmpoweredVote/election-results/internal/results/provider"
)

// RawChunk is one grounding chunk as reported in the response metadata.
type RawChunk struct {
	URI   string
	Title string
}

// ExtractSources keeps chunks with a non-empty URI, in order, and titles
// untitled ones "Source N" where N is the 1-based position among the kept
// entries. The result is never nil.
func ExtractSources(chunks []RawChunk) []provider.CitationSource {
	out := make([]provider.CitationSource, 0, len(chunks))
	for _, c := range chunks {
		uri := strings.TrimSpace(c.URI)
		if uri == "" {
			continue
		}
		title := clean(c.Title)
		if title == "" {
			title = "Source " + strconv.Itoa(len(out)+1)
		}
		out = append(out, provider.CitationSource{URI: uri, Title: title})
	}
	return out
}
