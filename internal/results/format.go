package results

import (
	"time"

	"github.com/EmpoweredVote/election-results/internal/results/payload"
	"golang.org/x/text/language"
)

// ClockFormat renders the "last updated" wall-clock text.
type ClockFormat struct {
	Tag      language.Tag
	Location *time.Location
}

var bengali, _ = language.Bengali.Base()

// Format returns t as h:mm:ss AM/PM in the configured zone, with Bengali
// digits for Bengali locales. The zero time formats as "".
func (f ClockFormat) Format(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	loc := f.Location
	if loc == nil {
		loc = time.UTC
	}
	s := t.In(loc).Format("3:04:05 PM")
	if base, _ := f.Tag.Base(); base == bengali {
		s = payload.BengaliDigits(s)
	}
	return s
}
