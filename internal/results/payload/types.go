// Package payload turns the free-form text returned by the AI service into
// validated election data. Model output is untrusted: every field is decoded
// tolerantly and every string is stripped of markup.
package payload

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Int decodes a JSON number, a numeric string (ASCII or Bengali digits) or
// null. Non-integral, non-finite and out-of-range values become 0, as does
// anything it cannot read; negative values clamp to 0.
type Int int

func (n *Int) UnmarshalJSON(b []byte) error {
	*n = 0
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		return nil
	}
	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return nil
		}
		s = strings.ReplaceAll(strings.TrimSpace(AsciiDigits(str)), ",", "")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || f <= 0 || f > math.MaxInt32 || f != math.Trunc(f) {
		return nil
	}
	*n = Int(f)
	return nil
}

// Bool decodes true/false, their string forms, or 1/0.
type Bool bool

func (v *Bool) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	switch strings.ToLower(s) {
	case "true", "1", "yes":
		*v = true
	default:
		*v = false
	}
	return nil
}

// Text decodes a string. Numbers keep their literal form (constituency
// numbers sometimes arrive unquoted); objects, arrays and null become "".
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	*t = ""
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		return nil
	}
	switch s[0] {
	case '"':
		var str string
		if err := json.Unmarshal(b, &str); err == nil {
			*t = Text(str)
		}
	case '{', '[':
	default:
		*t = Text(s)
	}
	return nil
}

type rawStanding struct {
	Party        Text `json:"party"`
	SeatsWon     Int  `json:"seatsWon"`
	SeatsLeading Int  `json:"seatsLeading"`
	Color        Text `json:"color"`
}

type rawCandidate struct {
	Name      Text `json:"name"`
	Party     Text `json:"party"`
	Votes     Int  `json:"votes"`
	Symbol    Text `json:"symbol"`
	IsLeading Bool `json:"isLeading"`
}

type rawResult struct {
	ConstituencyName Text            `json:"constituencyName"`
	ConstituencyNo   Text            `json:"constituencyNo"`
	Status           Text            `json:"status"`
	Candidates       json.RawMessage `json:"candidates"`
}

type rawSummary struct {
	TotalSeats       Int `json:"totalSeats"`
	ResultsPublished Int `json:"resultsPublished"`
}

// bengaliZero is U+09E6 BENGALI DIGIT ZERO; the ten digits are contiguous.
const bengaliZero = '০'

// AsciiDigits replaces Bengali digits with their ASCII equivalents.
func AsciiDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= bengaliZero && r <= bengaliZero+9 {
			return '0' + (r - bengaliZero)
		}
		return r
	}, s)
}

// BengaliDigits replaces ASCII digits with Bengali ones.
func BengaliDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return bengaliZero + (r - '0')
		}
		return r
	}, s)
}
