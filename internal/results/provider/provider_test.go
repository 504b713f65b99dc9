package provider_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/EmpoweredVote/election-results/internal/results/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct{}

func (stubProvider) Name() string { return "stub" }
func (stubProvider) FetchSnapshot(context.Context) (provider.Snapshot, error) {
	return provider.Snapshot{Provider: "stub"}, nil
}
func (stubProvider) HealthCheck(context.Context) error { return nil }

func TestNewProvider_ValidatesConfig(t *testing.T) {
	_, err := provider.NewProvider(provider.Config{Provider: provider.ProviderGemini})
	require.Error(t, err)
	assert.True(t, errors.Is(err, provider.ErrMissingAPIKey))

	_, err = provider.NewProvider(provider.Config{Provider: provider.ProviderStatic})
	assert.True(t, errors.Is(err, provider.ErrMissingStaticPath))
}

func TestNewProvider_Unknown(t *testing.T) {
	_, err := provider.NewProvider(provider.Config{Provider: "nope"})
	assert.True(t, errors.Is(err, provider.ErrUnknownProvider))
}

func TestNewProvider_Registered(t *testing.T) {
	provider.RegisterProvider("stub", func(provider.Config) (provider.SnapshotProvider, error) {
		return stubProvider{}, nil
	})
	p, err := provider.NewProvider(provider.Config{Provider: "stub"})
	require.NoError(t, err)
	assert.Equal(t, "stub", p.Name())
}

func TestDegradedSnapshot(t *testing.T) {
	now := time.Date(2026, 2, 12, 20, 0, 0, 0, time.UTC)
	s := provider.DegradedSnapshot("gemini", "", provider.ErrSchemaViolation, now)

	assert.True(t, s.Degraded)
	assert.Equal(t, provider.DefaultTotalSeats, s.Summary.TotalSeats)
	assert.Zero(t, s.Summary.ResultsPublished)
	assert.NotNil(t, s.Summary.PartyStandings)
	assert.Empty(t, s.Summary.PartyStandings)
	assert.Empty(t, s.FeaturedResults)
	assert.Empty(t, s.GroundingSources)
	assert.Equal(t, provider.DefaultDegradedNewsFlash, s.NewsFlash)
	assert.Equal(t, provider.ErrSchemaViolation.Error(), s.DegradedReason)
	assert.Equal(t, now, s.RetrievedAt)
}

func TestNationalSummary_Progress(t *testing.T) {
	tests := []struct {
		name    string
		summary provider.NationalSummary
		want    float64
	}{
		{"half", provider.NationalSummary{TotalSeats: 300, ResultsPublished: 150}, 0.5},
		{"none", provider.NationalSummary{TotalSeats: 300}, 0},
		{"missing total falls back to 300", provider.NationalSummary{ResultsPublished: 75}, 0.25},
		{"over-reported clamps", provider.NationalSummary{TotalSeats: 300, ResultsPublished: 310}, 1},
		{"negative clamps", provider.NationalSummary{TotalSeats: 300, ResultsPublished: -4}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.summary.Progress())
		})
	}
}

func TestPartyStanding_Share(t *testing.T) {
	p := provider.PartyStanding{Party: "BNP", SeatsWon: 100, SeatsLeading: 50}
	assert.Equal(t, 150, p.Total())
	assert.Equal(t, 0.5, p.Share(300))
	assert.Equal(t, 0.5, p.Share(0))

	over := provider.PartyStanding{Party: "X", SeatsWon: 250, SeatsLeading: 100}
	assert.Equal(t, 1.0, over.Share(300))
}

func TestConstituencyResult_Leader(t *testing.T) {
	r := provider.ConstituencyResult{Candidates: []provider.Candidate{
		{Name: "A", Votes: 10},
		{Name: "B", Votes: 30},
		{Name: "C", Votes: 20},
	}}
	c, ok := r.Leader()
	require.True(t, ok)
	assert.Equal(t, "B", c.Name)

	r.Candidates[2].IsLeading = true
	c, _ = r.Leader()
	assert.Equal(t, "C", c.Name)

	_, ok = provider.ConstituencyResult{}.Leader()
	assert.False(t, ok)
}
