package results

import (
	"time"

	"github.com/EmpoweredVote/election-results/internal/results/provider"
)

// Phase is the controller's lifecycle state.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
	PhaseFailed  Phase = "failed"
)

// State is what the presentation layer reads. Values are never modified
// after they are published by the controller.
type State struct {
	Phase    Phase
	Snapshot *provider.Snapshot // nil until the first refresh resolves with data

	// Error is the localized message of the last transport failure.
	Error string
	// Notice is set when a degraded response was ignored in favour of the
	// current snapshot.
	Notice string
	// Stale marks a snapshot older than the last refresh attempt.
	Stale bool

	LastUpdate     time.Time
	LastUpdateText string
}

func (s State) Loading() bool { return s.Phase == PhaseLoading }

// Progress is the published fraction of seats, 0 without a snapshot.
func (s State) Progress() float64 {
	if s.Snapshot == nil {
		return 0
	}
	return s.Snapshot.Summary.Progress()
}

// DataStatus classifies the state for the X-Data-Status header.
func (s State) DataStatus() string {
	switch {
	case s.Snapshot == nil:
		return "empty"
	case s.Snapshot.Degraded:
		return "degraded"
	case s.Stale:
		return "stale"
	default:
		return "fresh"
	}
}
