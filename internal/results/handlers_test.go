package results

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/EmpoweredVote/election-results/internal/config"
	"github.com/EmpoweredVote/election-results/internal/results/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type fakeHistory struct {
	records []SnapshotRecord
	limit   int
	err     error
}

func (h *fakeHistory) Recent(_ context.Context, limit int) ([]SnapshotRecord, error) {
	h.limit = limit
	return h.records, h.err
}

type unhealthyProvider struct{ fakeProvider }

func (*unhealthyProvider) HealthCheck(context.Context) error { return errors.New("no route to host") }

func newTestService(t *testing.T, p provider.SnapshotProvider, limiter *rate.Limiter, history HistoryStore) (*Service, http.Handler) {
	t.Helper()
	svc := NewService(newTestController(p, nil), p, limiter, history, nil)
	return svc, SetupRoutes(svc)
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestGetState_Empty(t *testing.T) {
	_, h := newTestService(t, &fakeProvider{outcomes: []outcome{{snap: goodSnapshot(1)}}}, nil, nil)

	rr := do(t, h, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "empty", rr.Header().Get("X-Data-Status"))
	assert.Contains(t, rr.Header().Get("Cache-Control"), "no-store")
	assert.NotEmpty(t, rr.Header().Get("Server-Timing"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "idle", body["phase"])
	assert.Nil(t, body["snapshot"])
	assert.Nil(t, body["error"])
	assert.Nil(t, body["lastUpdate"])
}

func TestGetState_AfterRefresh(t *testing.T) {
	svc, h := newTestService(t, &fakeProvider{outcomes: []outcome{{snap: goodSnapshot(150)}}}, nil, nil)
	svc.Controller.Refresh(context.Background())

	rr := do(t, h, http.MethodGet, "/")
	assert.Equal(t, "fresh", rr.Header().Get("X-Data-Status"))

	body := decode[StateResponse](t, rr)
	assert.Equal(t, PhaseReady, body.Phase)
	assert.Equal(t, 0.5, body.Progress)
	require.NotNil(t, body.Snapshot)
	assert.Len(t, body.Snapshot.FeaturedResults, 2)
	require.NotNil(t, body.LastUpdate)
	assert.Equal(t, "2:05:09 PM", body.LastUpdateText)
}

func TestSearchHandler(t *testing.T) {
	svc, h := newTestService(t, &fakeProvider{outcomes: []outcome{{snap: goodSnapshot(1)}}}, nil, nil)
	svc.Controller.Refresh(context.Background())

	rr := do(t, h, http.MethodGet, "/search?q=%E0%A7%A7%E0%A7%A6") // ১০
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode[SearchResponse](t, rr)
	assert.Equal(t, "১০", body.Query)
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, "ঢাকা-১০", body.Results[0].ConstituencyNo)

	body = decode[SearchResponse](t, do(t, h, http.MethodGet, "/search"))
	assert.Equal(t, 2, body.Count)
}

func TestGetSources(t *testing.T) {
	snap := goodSnapshot(1)
	snap.GroundingSources = []provider.CitationSource{{URI: "https://example.com/a", Title: "Source 1"}}
	svc, h := newTestService(t, &fakeProvider{outcomes: []outcome{{snap: snap}}}, nil, nil)

	rr := do(t, h, http.MethodGet, "/sources")
	assert.JSONEq(t, `[]`, rr.Body.String())

	svc.Controller.Refresh(context.Background())
	got := decode[[]provider.CitationSource](t, do(t, h, http.MethodGet, "/sources"))
	assert.Equal(t, snap.GroundingSources, got)
}

func TestPostRefresh_RateLimited(t *testing.T) {
	p := &fakeProvider{outcomes: []outcome{{snap: goodSnapshot(3)}}}
	_, h := newTestService(t, p, rate.NewLimiter(rate.Every(time.Minute), 2), nil)

	for i := 0; i < 2; i++ {
		rr := do(t, h, http.MethodPost, "/refresh")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "fresh", rr.Header().Get("X-Data-Status"))
	}

	rr := do(t, h, http.MethodPost, "/refresh")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))
	assert.Equal(t, int32(2), p.calls.Load())
}

func TestPostRefresh_Failure(t *testing.T) {
	_, h := newTestService(t, &fakeProvider{outcomes: []outcome{{err: errNetwork}}}, nil, nil)

	rr := do(t, h, http.MethodPost, "/refresh")
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	body := decode[StateResponse](t, rr)
	assert.Equal(t, PhaseFailed, body.Phase)
	require.NotNil(t, body.Error)
	assert.Equal(t, "failed", *body.Error)
}

func TestPostRefresh_MethodNotAllowed(t *testing.T) {
	_, h := newTestService(t, &fakeProvider{outcomes: []outcome{{snap: goodSnapshot(3)}}}, nil, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodGet, "/refresh").Code)
}

func TestGetHistory(t *testing.T) {
	p := &fakeProvider{outcomes: []outcome{{snap: goodSnapshot(1)}}}

	_, h := newTestService(t, p, nil, nil)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/history").Code)

	rec, err := NewSnapshotRecord(goodSnapshot(9))
	require.NoError(t, err)
	hist := &fakeHistory{records: []SnapshotRecord{rec}}
	_, h = newTestService(t, p, nil, hist)

	rr := do(t, h, http.MethodGet, "/history")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, DefaultHistoryLimit, hist.limit)
	got := decode[[]SnapshotRecord](t, rr)
	require.Len(t, got, 1)
	assert.Equal(t, 9, got[0].ResultsPublished)

	do(t, h, http.MethodGet, "/history?limit=500")
	assert.Equal(t, MaxHistoryLimit, hist.limit)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/history?limit=abc").Code)

	hist.err = errors.New("db down")
	assert.Equal(t, http.StatusInternalServerError, do(t, h, http.MethodGet, "/history").Code)
}

func TestGetPrivacy(t *testing.T) {
	_, h := newTestService(t, &fakeProvider{outcomes: []outcome{{snap: goodSnapshot(1)}}}, nil, nil)

	rr := do(t, h, http.MethodGet, "/privacy")
	require.Equal(t, http.StatusOK, rr.Code)
	got := decode[PrivacyPolicy](t, rr)
	assert.Equal(t, Privacy, got)
	require.Len(t, got.Sections, 4)
	assert.Equal(t, "জরুরি যোগাযোগ", got.Sections[3].Title)
	assert.Contains(t, got.Sections[3].Body, "Walid@Taksid.com")
	assert.Contains(t, got.Sections[3].Body, "+8809649999143")
}

func TestGetHealth(t *testing.T) {
	_, h := newTestService(t, &fakeProvider{outcomes: []outcome{{snap: goodSnapshot(1)}}}, nil, nil)
	rr := do(t, h, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decode[HealthResponse](t, rr).Status)

	_, h = newTestService(t, &unhealthyProvider{}, nil, nil)
	rr = do(t, h, http.MethodGet, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	body := decode[HealthResponse](t, rr)
	assert.Equal(t, "unavailable", body.Status)
	assert.Equal(t, "no route to host", body.Error)
}

func TestSetup_StaticProvider(t *testing.T) {
	cfg := config.Default()
	cfg.Results.Provider = "static"
	cfg.Results.StaticPath = "testdata/results.json"
	cfg.Results.ManualRefresh = config.RateConfig{Every: config.Duration(time.Minute), Burst: 1}

	svc, err := Setup(cfg, nil, nil)
	require.NoError(t, err)
	h := SetupRoutes(svc)

	rr := do(t, h, http.MethodPost, "/refresh")
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode[StateResponse](t, rr)
	require.NotNil(t, body.Snapshot)
	assert.False(t, body.Snapshot.Degraded)
	assert.Equal(t, "static", body.Snapshot.Provider)
	assert.Equal(t, 0.5, body.Progress)
	assert.Equal(t, provider.StatusCounting, body.Snapshot.FeaturedResults[1].Status)
	assert.Equal(t, 12500, body.Snapshot.FeaturedResults[0].Candidates[0].Votes)
	assert.NotEmpty(t, body.LastUpdateText)

	assert.Equal(t, http.StatusTooManyRequests, do(t, h, http.MethodPost, "/refresh").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/history").Code)
}

func TestSetup_InvalidProvider(t *testing.T) {
	cfg := config.Default()
	cfg.Results.Provider = "carrier-pigeon"
	_, err := Setup(cfg, nil, nil)
	assert.ErrorIs(t, err, provider.ErrUnknownProvider)
}

func TestNewLimiter(t *testing.T) {
	assert.Equal(t, rate.Inf, newLimiter(config.RateConfig{}).Limit())
	l := newLimiter(config.RateConfig{Every: config.Duration(time.Second), Burst: 0})
	assert.Equal(t, 1, l.Burst())
}
