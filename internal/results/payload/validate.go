package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/EmpoweredVote/election-results/internal/results/provider"
)

var fenceRe = regexp.MustCompile("(?i)```(?:json)?[ \t]*\n?")

// StripFences removes markdown code-fence markers around (or inside) the
// model's answer and trims surrounding whitespace.
func StripFences(text string) string {
	return strings.TrimSpace(fenceRe.ReplaceAllString(text, ""))
}

// Payload is the normalized content of one valid response.
type Payload struct {
	Summary         provider.NationalSummary
	FeaturedResults []provider.ConstituencyResult
	NewsFlash       string

	// Dropped counts list entries that could not be decoded and were skipped.
	Dropped int
}

// Validation is the tagged outcome of Parse: either a valid Payload or the
// reason it was rejected.
type Validation struct {
	payload Payload
	reason  error
}

// Valid reports whether the response passed validation.
func (v Validation) Valid() bool { return v.reason == nil }

// Reason is nil for valid responses, otherwise it wraps one of
// provider.ErrEmptyResponse, ErrMalformedPayload or ErrSchemaViolation.
func (v Validation) Reason() error { return v.reason }

// Payload returns the normalized data. It is the zero Payload when !Valid().
func (v Validation) Payload() Payload { return v.payload }

func invalid(err error) Validation { return Validation{reason: err} }

// Parse validates the raw text of one AI response.
func Parse(text string) Validation {
	if strings.TrimSpace(text) == "" {
		return invalid(provider.ErrEmptyResponse)
	}

	cleaned := []byte(StripFences(text))
	if len(cleaned) == 0 {
		return invalid(provider.ErrEmptyResponse)
	}
	if !json.Valid(cleaned) {
		return invalid(fmt.Errorf("%w: not valid JSON", provider.ErrMalformedPayload))
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(cleaned, &top); err != nil || top == nil {
		return invalid(fmt.Errorf("%w: top level is not an object", provider.ErrSchemaViolation))
	}

	var summary map[string]json.RawMessage
	if err := json.Unmarshal(top["summary"], &summary); err != nil || summary == nil {
		return invalid(fmt.Errorf("%w: missing summary object", provider.ErrSchemaViolation))
	}
	standingsRaw, ok := summary["partyStandings"]
	if !ok || !isArray(standingsRaw) {
		return invalid(fmt.Errorf("%w: summary.partyStandings is not an array", provider.ErrSchemaViolation))
	}

	return Validation{payload: normalize(summary, standingsRaw, top)}
}

func normalize(summary map[string]json.RawMessage, standingsRaw json.RawMessage, top map[string]json.RawMessage) Payload {
	var p Payload

	var rs rawSummary
	_ = json.Unmarshal(summary["totalSeats"], &rs.TotalSeats)
	_ = json.Unmarshal(summary["resultsPublished"], &rs.ResultsPublished)

	total := int(rs.TotalSeats)
	if total <= 0 {
		total = provider.DefaultTotalSeats
	}
	published := int(rs.ResultsPublished)
	if published > total {
		published = total
	}
	p.Summary = provider.NationalSummary{
		TotalSeats:       total,
		ResultsPublished: published,
		PartyStandings:   []provider.PartyStanding{},
	}

	for _, item := range elements(standingsRaw) {
		var s rawStanding
		if err := json.Unmarshal(item, &s); err != nil {
			p.Dropped++
			continue
		}
		party := clean(string(s.Party))
		if party == "" {
			p.Dropped++
			continue
		}
		p.Summary.PartyStandings = append(p.Summary.PartyStandings, provider.PartyStanding{
			Party:        party,
			SeatsWon:     int(s.SeatsWon),
			SeatsLeading: int(s.SeatsLeading),
			Color:        color(string(s.Color)),
		})
	}

	p.FeaturedResults = []provider.ConstituencyResult{}
	for _, item := range elements(top["featuredResults"]) {
		var r rawResult
		if err := json.Unmarshal(item, &r); err != nil {
			p.Dropped++
			continue
		}
		result := provider.ConstituencyResult{
			ConstituencyName: clean(string(r.ConstituencyName)),
			ConstituencyNo:   clean(string(r.ConstituencyNo)),
			Status:           status(string(r.Status)),
			Candidates:       []provider.Candidate{},
		}
		for _, citem := range elements(r.Candidates) {
			var c rawCandidate
			if err := json.Unmarshal(citem, &c); err != nil {
				p.Dropped++
				continue
			}
			result.Candidates = append(result.Candidates, provider.Candidate{
				Name:      clean(string(c.Name)),
				Party:     clean(string(c.Party)),
				Votes:     int(c.Votes),
				Symbol:    clean(string(c.Symbol)),
				IsLeading: bool(c.IsLeading),
			})
		}
		p.FeaturedResults = append(p.FeaturedResults, result)
	}

	var flash Text
	_ = json.Unmarshal(top["newsFlash"], &flash)
	p.NewsFlash = clean(string(flash))

	return p
}

func isArray(raw json.RawMessage) bool {
	b := bytes.TrimSpace(raw)
	return len(b) > 0 && b[0] == '['
}

// elements splits a JSON array into its items. Non-arrays yield nothing.
func elements(raw json.RawMessage) []json.RawMessage {
	if !isArray(raw) {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := items[:0]
	for _, item := range items {
		if string(bytes.TrimSpace(item)) == "null" {
			continue
		}
		out = append(out, item)
	}
	return out
}

func status(s string) provider.Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "published":
		return provider.StatusPublished
	case "counting":
		return provider.StatusCounting
	default:
		return provider.StatusPending
	}
}
