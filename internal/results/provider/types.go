package provider

import (
	"time"

	"github.com/google/uuid"
)

// DefaultTotalSeats is the size of the national parliament. It is used when
// the source reports no (or a non-positive) seat total.
const DefaultTotalSeats = 300

// Status is the counting state of a single constituency.
type Status string

const (
	StatusPublished Status = "Published"
	StatusCounting  Status = "Counting"
	StatusPending   Status = "Pending"
)

// Snapshot is one complete, self-consistent dashboard state produced by a
// single refresh. It is never mutated after construction; a refresh replaces
// it wholesale.
type Snapshot struct {
	ID               uuid.UUID            `json:"id"`
	Summary          NationalSummary      `json:"summary"`
	FeaturedResults  []ConstituencyResult `json:"featuredResults"`
	NewsFlash        string               `json:"newsFlash"`
	GroundingSources []CitationSource     `json:"groundingSources"`
	RetrievedAt      time.Time            `json:"retrievedAt"`

	// Source tracking
	Provider       string `json:"provider"`
	Degraded       bool   `json:"degraded"`
	DegradedReason string `json:"degradedReason,omitempty"`
}

// NationalSummary is the national aggregate.
type NationalSummary struct {
	TotalSeats       int             `json:"totalSeats"`
	ResultsPublished int             `json:"resultsPublished"`
	PartyStandings   []PartyStanding `json:"partyStandings"`
}

// Progress returns the published fraction of seats in [0, 1].
func (s NationalSummary) Progress() float64 {
	total := s.TotalSeats
	if total <= 0 {
		total = DefaultTotalSeats
	}
	p := float64(s.ResultsPublished) / float64(total)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// PartyStanding is one party's national position. Order is display order.
type PartyStanding struct {
	Party        string `json:"party"`
	SeatsWon     int    `json:"seatsWon"`
	SeatsLeading int    `json:"seatsLeading"`
	Color        string `json:"color"`
}

// Total is seats won plus seats where the party currently leads.
func (p PartyStanding) Total() int {
	return p.SeatsWon + p.SeatsLeading
}

// Share returns Total as a fraction of totalSeats, clamped to [0, 1]. The
// source does not guarantee won+leading <= totalSeats.
func (p PartyStanding) Share(totalSeats int) float64 {
	if totalSeats <= 0 {
		totalSeats = DefaultTotalSeats
	}
	s := float64(p.Total()) / float64(totalSeats)
	if s > 1 {
		return 1
	}
	if s < 0 {
		return 0
	}
	return s
}

// ConstituencyResult is the per-seat report.
type ConstituencyResult struct {
	ConstituencyName string      `json:"constituencyName"`
	ConstituencyNo   string      `json:"constituencyNo"` // e.g. "ঢাকা-১০", not necessarily numeric
	Status           Status      `json:"status"`
	Candidates       []Candidate `json:"candidates"`
}

// Leader returns the candidate flagged as leading, falling back to the
// highest vote count. ok is false when there are no candidates.
func (r ConstituencyResult) Leader() (c Candidate, ok bool) {
	best := -1
	for i, cand := range r.Candidates {
		if cand.IsLeading {
			return cand, true
		}
		if best < 0 || cand.Votes > r.Candidates[best].Votes {
			best = i
		}
	}
	if best < 0 {
		return Candidate{}, false
	}
	return r.Candidates[best], true
}

// Candidate is one contender in a constituency.
type Candidate struct {
	Name      string `json:"name"`
	Party     string `json:"party"`
	Votes     int    `json:"votes"`
	Symbol    string `json:"symbol"` // ballot symbol label
	IsLeading bool   `json:"isLeading"`
}

// CitationSource is a grounding URI the AI service claims it used.
type CitationSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}
