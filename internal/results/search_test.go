package results

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/EmpoweredVote/election-results/internal/results/provider"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var featured = []provider.ConstituencyResult{
	{ConstituencyName: "ঢাকা", ConstituencyNo: "ঢাকা-১০"},
	{ConstituencyName: "রাজশাহী", ConstituencyNo: "রাজশাহী-২"},
	{ConstituencyName: "Dhaka North", ConstituencyNo: "D-1"},
	{ConstituencyName: "Chattogram", ConstituencyNo: "চট্টগ্রাম-১০"},
}

func names(rs []provider.ConstituencyResult) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ConstituencyName)
	}
	return out
}

func TestFilterResults(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"ঢাকা", "রাজশাহী", "Dhaka North", "Chattogram"}},
		{"ঢাকা", []string{"ঢাকা"}},
		{"রাজশাহী", []string{"রাজশাহী"}},
		{"১০", []string{"ঢাকা", "Chattogram"}},
		{"dhaka", []string{"Dhaka North"}},
		{"NORTH", []string{"Dhaka North"}},
		{"d-1", []string{}}, // number match is exact-case
		{"D-1", []string{"Dhaka North"}},
		{"সিলেট", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := FilterResults(featured, tt.query)
			if diff := cmp.Diff(tt.want, names(got)); diff != "" {
				t.Errorf("FilterResults(%q) mismatch (-want +got):\n%s", tt.query, diff)
			}
		})
	}
}

func TestFilterResults_EmptyQueryCopies(t *testing.T) {
	got := FilterResults(featured, "")
	assert.Equal(t, featured, got)
	got[0].ConstituencyName = "changed"
	assert.Equal(t, "ঢাকা", featured[0].ConstituencyName)
	assert.NotNil(t, FilterResults(nil, ""))
}

func TestFilterResults_Idempotent(t *testing.T) {
	for _, q := range []string{"", "ঢাকা", "১০", "a"} {
		once := FilterResults(featured, q)
		assert.Equal(t, once, FilterResults(once, q), q)
	}
}

func TestFilterResults_Normalization(t *testing.T) {
	results := []provider.ConstituencyResult{{ConstituencyName: norm.NFC.String("ময়মনসিংহ")}}
	decomposed := norm.NFD.String("ময়মনসিংহ")
	assert.Len(t, FilterResults(results, decomposed), 1)
}

func TestClockFormat(t *testing.T) {
	dhaka, err := time.LoadLocation("Asia/Dhaka")
	if err != nil {
		t.Fatal(err)
	}
	at := time.Date(2026, 2, 12, 8, 30, 5, 0, time.UTC)

	bn := ClockFormat{Tag: language.MustParse("bn-BD"), Location: dhaka}
	assert.Equal(t, "২:৩০:০৫ PM", bn.Format(at))

	en := ClockFormat{Tag: language.English}
	assert.Equal(t, "8:30:05 AM", en.Format(at))
	assert.Empty(t, en.Format(time.Time{}))
}
