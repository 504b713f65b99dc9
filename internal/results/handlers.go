package results

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/EmpoweredVote/election-results/internal/results/provider"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const healthTimeout = 5 * time.Second

// HistoryStore lists archived snapshots.
type HistoryStore interface {
	Recent(ctx context.Context, limit int) ([]SnapshotRecord, error)
}

// Service serves the dashboard API on top of a Controller.
type Service struct {
	Controller *Controller

	provider provider.SnapshotProvider
	limiter  *rate.Limiter
	history  HistoryStore // nil when the archive is disabled
	log      *zap.Logger
}

// NewService wires handlers for c. history may be nil.
func NewService(c *Controller, p provider.SnapshotProvider, limiter *rate.Limiter, history HistoryStore, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}
	return &Service{
		Controller: c,
		provider:   p,
		limiter:    limiter,
		history:    history,
		log:        log.Named("results"),
	}
}

// StateResponse is the JSON envelope of a State.
type StateResponse struct {
	Phase          Phase              `json:"phase"`
	Loading        bool               `json:"loading"`
	Error          *string            `json:"error"`
	Notice         string             `json:"notice,omitempty"`
	Stale          bool               `json:"stale"`
	LastUpdate     *time.Time         `json:"lastUpdate"`
	LastUpdateText string             `json:"lastUpdateText"`
	Progress       float64            `json:"progress"`
	Snapshot       *provider.Snapshot `json:"snapshot"`
}

func NewStateResponse(s State) StateResponse {
	out := StateResponse{
		Phase:          s.Phase,
		Loading:        s.Loading(),
		Notice:         s.Notice,
		Stale:          s.Stale,
		LastUpdateText: s.LastUpdateText,
		Progress:       s.Progress(),
		Snapshot:       s.Snapshot,
	}
	if s.Error != "" {
		msg := s.Error
		out.Error = &msg
	}
	if !s.LastUpdate.IsZero() {
		t := s.LastUpdate
		out.LastUpdate = &t
	}
	return out
}

type SearchResponse struct {
	Query   string                        `json:"query"`
	Count   int                           `json:"count"`
	Results []provider.ConstituencyResult `json:"results"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Provider string `json:"provider"`
	Phase    Phase  `json:"phase"`
	Error    string `json:"error,omitempty"`
}

func (s *Service) writeState(w http.ResponseWriter, status int, st State, t0 time.Time) {
	w.Header().Set("X-Data-Status", st.DataStatus())
	addNoStore(w)
	addServerTiming(w, [2]string{"total", sinceMs(t0)})
	writeJSONStatus(w, status, NewStateResponse(st))
}

// GetState serves the current dashboard state.
func (s *Service) GetState(w http.ResponseWriter, r *http.Request) {
	s.writeState(w, http.StatusOK, s.Controller.State(), time.Now())
}

// Search filters the featured results by ?q=.
func (s *Service) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	results := s.Controller.Search(q)
	addNoStore(w)
	writeJSON(w, SearchResponse{Query: q, Count: len(results), Results: results})
}

// GetSources lists the grounding citations of the current snapshot.
func (s *Service) GetSources(w http.ResponseWriter, r *http.Request) {
	sources := []provider.CitationSource{}
	if snap := s.Controller.State().Snapshot; snap != nil {
		sources = snap.GroundingSources
	}
	addNoStore(w)
	writeJSON(w, sources)
}

// PostRefresh runs a manual refresh and waits for it. Calls beyond the
// configured burst get 429 with Retry-After.
func (s *Service) PostRefresh(w http.ResponseWriter, r *http.Request) {
	t0 := time.Now()

	res := s.limiter.Reserve()
	if !res.OK() {
		writeError(w, http.StatusTooManyRequests, "manual refresh disabled")
		return
	}
	if delay := res.Delay(); delay > 0 {
		res.Cancel()
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
		writeError(w, http.StatusTooManyRequests, "refresh requested too often")
		return
	}

	st := s.Controller.Retry(r.Context())
	status := http.StatusOK
	if st.Phase == PhaseFailed {
		status = http.StatusBadGateway
	}
	s.log.Info("manual refresh",
		zap.String("phase", string(st.Phase)),
		zap.String("data_status", st.DataStatus()),
		zap.Duration("duration", time.Since(t0)))
	s.writeState(w, status, st, t0)
}

// GetHistory lists archived snapshots, newest first.
func (s *Service) GetHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, "archive disabled")
		return
	}

	limit := DefaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = clampLimit(n)
	}

	t0 := time.Now()
	records, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		s.log.Error("read history", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not read history")
		return
	}
	addServerTiming(w, [2]string{"dbread", sinceMs(t0)})
	addNoStore(w)
	writeJSON(w, records)
}

// GetPrivacy serves the static privacy policy.
func (s *Service) GetPrivacy(w http.ResponseWriter, r *http.Request) {
	addCacheHeaders(w, 3600)
	writeJSON(w, Privacy)
}

// GetHealth checks that the provider can reach its source.
func (s *Service) GetHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:   "ok",
		Provider: s.provider.Name(),
		Phase:    s.Controller.State().Phase,
	}
	status := http.StatusOK
	if err := s.provider.HealthCheck(ctx); err != nil {
		resp.Status = "unavailable"
		resp.Error = err.Error()
		status = http.StatusServiceUnavailable
		if errors.Is(err, context.DeadlineExceeded) {
			resp.Error = "health check timed out"
		}
	}
	addNoStore(w)
	writeJSONStatus(w, status, resp)
}
