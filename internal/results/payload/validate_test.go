package payload_test

import (
	"errors"
	"testing"
	"time"

	"github.com/EmpoweredVote/election-results/internal/results/payload"
	"github.com/EmpoweredVote/election-results/internal/results/provider"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validJSON = `{
  "summary": {
    "totalSeats": 300,
    "resultsPublished": 150,
    "partyStandings": [
      {"party": "BNP", "seatsWon": 120, "seatsLeading": 30, "color": "#006a4e"},
      {"party": "Jamaat-e-Islami", "seatsWon": 20, "seatsLeading": 5, "color": "green"}
    ]
  },
  "featuredResults": [
    {
      "constituencyName": "Dhaka 10",
      "constituencyNo": "ঢাকা-১০",
      "status": "Counting",
      "candidates": [
        {"name": "Candidate A", "party": "BNP", "votes": 52000, "symbol": "Sheaf of Paddy", "isLeading": true},
        {"name": "Candidate B", "party": "Jamaat-e-Islami", "votes": 31000, "symbol": "Scales", "isLeading": false}
      ]
    }
  ],
  "newsFlash": "Counting continues in Dhaka"
}`

func TestParse_Valid(t *testing.T) {
	v := payload.Parse(validJSON)
	require.True(t, v.Valid(), "reason: %v", v.Reason())

	p := v.Payload()
	assert.Equal(t, 300, p.Summary.TotalSeats)
	assert.Equal(t, 150, p.Summary.ResultsPublished)
	require.Len(t, p.Summary.PartyStandings, 2)
	assert.Equal(t, "BNP", p.Summary.PartyStandings[0].Party)
	assert.Equal(t, "green", p.Summary.PartyStandings[1].Color)

	require.Len(t, p.FeaturedResults, 1)
	r := p.FeaturedResults[0]
	assert.Equal(t, "ঢাকা-১০", r.ConstituencyNo)
	assert.Equal(t, provider.StatusCounting, r.Status)
	require.Len(t, r.Candidates, 2)
	assert.True(t, r.Candidates[0].IsLeading)
	assert.Equal(t, 52000, r.Candidates[0].Votes)
	assert.Equal(t, "Counting continues in Dhaka", p.NewsFlash)
	assert.Zero(t, p.Dropped)
}

func TestParse_FenceRoundTrip(t *testing.T) {
	plain := payload.Parse(validJSON)
	require.True(t, plain.Valid())

	wrapped := []string{
		"```json\n" + validJSON + "\n```",
		"```\n" + validJSON + "\n```",
		"```JSON " + validJSON + "```",
		"\n\n```json\n" + validJSON + "\n```\n",
	}
	for _, text := range wrapped {
		got := payload.Parse(text)
		require.True(t, got.Valid(), "reason: %v", got.Reason())
		if diff := cmp.Diff(plain.Payload(), got.Payload()); diff != "" {
			t.Errorf("fenced payload differs (-plain +fenced):\n%s", diff)
		}
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		text string
		want error
	}{
		{"empty", "", provider.ErrEmptyResponse},
		{"blank", "  \n\t ", provider.ErrEmptyResponse},
		{"only fences", "```json\n```", provider.ErrEmptyResponse},
		{"not json", "The results are not yet available.", provider.ErrMalformedPayload},
		{"truncated", `{"summary": {"partyStandings": [`, provider.ErrMalformedPayload},
		{"top level array", `[1, 2, 3]`, provider.ErrSchemaViolation},
		{"top level null", `null`, provider.ErrSchemaViolation},
		{"no summary", `{"featuredResults": []}`, provider.ErrSchemaViolation},
		{"summary not object", `{"summary": "300 seats"}`, provider.ErrSchemaViolation},
		{"summary null", `{"summary": null}`, provider.ErrSchemaViolation},
		{"standings missing", `{"summary": {"totalSeats": 300}}`, provider.ErrSchemaViolation},
		{"standings object", `{"summary": {"partyStandings": {"BNP": 10}}}`, provider.ErrSchemaViolation},
		{"standings null", `{"summary": {"partyStandings": null}}`, provider.ErrSchemaViolation},
		{"standings string", `{"summary": {"partyStandings": "none"}}`, provider.ErrSchemaViolation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := payload.Parse(tt.text)
			assert.False(t, v.Valid())
			assert.True(t, errors.Is(v.Reason(), tt.want), "got %v, want %v", v.Reason(), tt.want)
		})
	}
}

func TestParse_TolerantFields(t *testing.T) {
	text := `{
	  "summary": {
	    "totalSeats": "300",
	    "resultsPublished": 42.0,
	    "partyStandings": [
	      {"party": "BNP", "seatsWon": "১২০", "seatsLeading": -3, "color": "url(javascript:alert(1))"},
	      {"party": "", "seatsWon": 1},
	      "garbage",
	      null,
	      {"party": "<b>Jatiya Party</b>", "seatsWon": null, "seatsLeading": "n/a"}
	    ]
	  },
	  "featuredResults": [
	    {"constituencyName": "Bagerhat-1", "constituencyNo": 91, "status": "published",
	     "candidates": [{"name": "X", "votes": "1,234", "isLeading": "true"}, 5]},
	    {"constituencyName": "Bagerhat-2", "status": "Unknown", "candidates": "none"},
	    7
	  ],
	  "newsFlash": {"text": "not a string"}
	}`

	v := payload.Parse(text)
	require.True(t, v.Valid(), "reason: %v", v.Reason())
	p := v.Payload()

	assert.Equal(t, 300, p.Summary.TotalSeats)
	assert.Equal(t, 42, p.Summary.ResultsPublished)

	require.Len(t, p.Summary.PartyStandings, 2)
	assert.Equal(t, provider.PartyStanding{Party: "BNP", SeatsWon: 120, SeatsLeading: 0, Color: payload.DefaultColor}, p.Summary.PartyStandings[0])
	assert.Equal(t, "Jatiya Party", p.Summary.PartyStandings[1].Party)
	assert.Zero(t, p.Summary.PartyStandings[1].Total())

	require.Len(t, p.FeaturedResults, 2)
	first := p.FeaturedResults[0]
	assert.Equal(t, "91", first.ConstituencyNo)
	assert.Equal(t, provider.StatusPublished, first.Status)
	require.Len(t, first.Candidates, 1)
	assert.Equal(t, 1234, first.Candidates[0].Votes)
	assert.True(t, first.Candidates[0].IsLeading)

	second := p.FeaturedResults[1]
	assert.Equal(t, provider.StatusPending, second.Status)
	assert.NotNil(t, second.Candidates)
	assert.Empty(t, second.Candidates)

	assert.Empty(t, p.NewsFlash)
	// empty party, "garbage", candidate 5, result 7
	assert.Equal(t, 4, p.Dropped)
}

func TestParse_MissingTotalDefaults(t *testing.T) {
	v := payload.Parse(`{"summary": {"partyStandings": []}}`)
	require.True(t, v.Valid())
	assert.Equal(t, provider.DefaultTotalSeats, v.Payload().Summary.TotalSeats)
	assert.NotNil(t, v.Payload().FeaturedResults)
}

func TestParse_OverReportedStandingsTolerated(t *testing.T) {
	v := payload.Parse(`{"summary": {"totalSeats": 300, "partyStandings": [{"party": "A", "seatsWon": 290, "seatsLeading": 40}]}}`)
	require.True(t, v.Valid())
	s := v.Payload().Summary.PartyStandings[0]
	assert.Equal(t, 330, s.Total())
	assert.Equal(t, 1.0, s.Share(300))
}

func TestParse_RejectsImpossibleNumbers(t *testing.T) {
	v := payload.Parse(`{"summary": {"totalSeats": 300, "resultsPublished": "Infinity", "partyStandings": [
	  {"party": "BNP", "seatsWon": 2.7, "seatsLeading": 1e12},
	  {"party": "AL", "seatsWon": "4.0", "seatsLeading": "-Infinity"}
	]}}`)
	require.True(t, v.Valid(), "reason: %v", v.Reason())
	sum := v.Payload().Summary
	assert.Zero(t, sum.ResultsPublished)
	require.Len(t, sum.PartyStandings, 2)
	assert.Zero(t, sum.PartyStandings[0].SeatsWon)
	assert.Zero(t, sum.PartyStandings[0].SeatsLeading)
	assert.Equal(t, 4, sum.PartyStandings[1].SeatsWon)
	assert.Zero(t, sum.PartyStandings[1].SeatsLeading)
}

func TestParse_PublishedBoundedByTotal(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		wantTotal     int
		wantPublished int
	}{
		{"over total", `{"summary": {"totalSeats": 300, "resultsPublished": 500, "partyStandings": []}}`, 300, 300},
		{"at total", `{"summary": {"totalSeats": 300, "resultsPublished": 300, "partyStandings": []}}`, 300, 300},
		{"default total", `{"summary": {"resultsPublished": 1000, "partyStandings": []}}`, provider.DefaultTotalSeats, provider.DefaultTotalSeats},
		{"negative", `{"summary": {"totalSeats": 300, "resultsPublished": -5, "partyStandings": []}}`, 300, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := payload.Parse(tt.text)
			require.True(t, v.Valid())
			assert.Equal(t, tt.wantTotal, v.Payload().Summary.TotalSeats)
			assert.Equal(t, tt.wantPublished, v.Payload().Summary.ResultsPublished)
		})
	}
}

func TestParse_StripsMarkup(t *testing.T) {
	v := payload.Parse(`{"summary": {"partyStandings": []}, "newsFlash": "<script>alert(1)</script>BNP &amp; allies <i>lead</i>"}`)
	require.True(t, v.Valid())
	assert.Equal(t, "BNP & allies lead", v.Payload().NewsFlash)
}

func TestBuild_NeverFails(t *testing.T) {
	now := time.Date(2026, 2, 12, 21, 0, 0, 0, time.UTC)
	for _, text := range []string{"", "nope", `{"summary": {}}`} {
		snap, reason := payload.Build("gemini", text, nil, "", now)
		assert.Error(t, reason)
		assert.True(t, snap.Degraded)
		assert.Equal(t, provider.DefaultTotalSeats, snap.Summary.TotalSeats)
		assert.Empty(t, snap.FeaturedResults)
		assert.Equal(t, now, snap.RetrievedAt)
	}

	snap, reason := payload.Build("gemini", validJSON, []payload.RawChunk{{URI: "https://example.com"}}, "", now)
	require.NoError(t, reason)
	assert.False(t, snap.Degraded)
	assert.Equal(t, "gemini", snap.Provider)
	assert.Equal(t, []provider.CitationSource{{URI: "https://example.com", Title: "Source 1"}}, snap.GroundingSources)
}
