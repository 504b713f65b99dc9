package payload

import (
	"time"

	"github.com/EmpoweredVote/election-results/internal/results/provider"
	"github.com/google/uuid"
)

// Snapshot assembles an immutable snapshot from a valid payload.
func (p Payload) Snapshot(providerName string, sources []provider.CitationSource, now time.Time) provider.Snapshot {
	if sources == nil {
		sources = []provider.CitationSource{}
	}
	return provider.Snapshot{
		ID:               uuid.New(),
		Summary:          p.Summary,
		FeaturedResults:  p.FeaturedResults,
		NewsFlash:        p.NewsFlash,
		GroundingSources: sources,
		RetrievedAt:      now,
		Provider:         providerName,
	}
}

// Build runs Parse over text and returns either the resulting snapshot or the
// degraded snapshot together with the rejection reason. It never fails.
func Build(providerName, text string, chunks []RawChunk, degradedFlash string, now time.Time) (provider.Snapshot, error) {
	v := Parse(text)
	if !v.Valid() {
		return provider.DegradedSnapshot(providerName, degradedFlash, v.Reason(), now), v.Reason()
	}
	return v.Payload().Snapshot(providerName, ExtractSources(chunks), now), nil
}
