package results

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/EmpoweredVote/election-results/internal/results/provider"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	ErrAlreadyStarted = errors.New("controller already started")
	ErrStopped        = errors.New("controller stopped")
)

const (
	DefaultInterval     = 3 * time.Minute
	DefaultFetchTimeout = 90 * time.Second
)

// DefaultTransportErrorMessage is shown when the source could not be reached.
const DefaultTransportErrorMessage = "তথ্য সংগ্রহ করতে সমস্যা হচ্ছে। অনুগ্রহ করে ইন্টারনেট কানেকশন চেক করুন।"

// Recorder receives every non-degraded snapshot the controller accepts.
type Recorder interface {
	Record(ctx context.Context, snap provider.Snapshot) error
}

type Options struct {
	Interval     time.Duration
	FetchTimeout time.Duration

	// TransportErrorMessage becomes State.Error after a failed fetch.
	TransportErrorMessage string
	Clock                 ClockFormat

	Recorder Recorder // optional
	Logger   *zap.Logger
	Now      func() time.Time
}

// Controller owns the current dashboard state. It is the only writer; any
// number of goroutines may read State or Search concurrently.
type Controller struct {
	provider provider.SnapshotProvider
	opts     Options
	log      *zap.Logger

	state atomic.Pointer[State]
	group singleflight.Group

	// life bounds every fetch; Stop cancels it.
	life   context.Context
	cancel context.CancelFunc

	mu      sync.Mutex // guards writes to state and the flags below
	started bool
	stopped bool
	wg      sync.WaitGroup
}

func NewController(p provider.SnapshotProvider, opts Options) *Controller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	if opts.TransportErrorMessage == "" {
		opts.TransportErrorMessage = DefaultTransportErrorMessage
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	c := &Controller{
		provider: p,
		opts:     opts,
		log:      opts.Logger.Named("controller"),
	}
	c.life, c.cancel = context.WithCancel(context.Background())
	c.state.Store(&State{Phase: PhaseIdle})
	return c
}

// Start fires an immediate refresh and then one every Interval until ctx is
// done or Stop is called.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.stopped:
		return ErrStopped
	case c.started:
		return ErrAlreadyStarted
	}
	c.started = true

	c.wg.Add(1)
	go c.loop(ctx)
	return nil
}

func (c *Controller) loop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.opts.Interval)
	defer ticker.Stop()

	c.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.life.Done():
			return
		case <-ticker.C:
			c.Refresh(ctx)
		}
	}
}

// Stop ends the ticker, cancels any in-flight fetch and waits for both.
// Fetches resolving afterwards do not change the state. Safe to call more
// than once.
func (c *Controller) Stop() {
	c.mu.Lock()
	c.stopped = true
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}

// State returns the current state without blocking.
func (c *Controller) State() State {
	return *c.state.Load()
}

// Refresh fetches a new snapshot and returns the resulting state. Concurrent
// calls share one fetch. The fetch is not tied to ctx; if ctx ends first the
// current state is returned and the fetch still completes.
func (c *Controller) Refresh(ctx context.Context) State {
	ch := c.group.DoChan("refresh", func() (any, error) {
		return c.refresh(), nil
	})
	select {
	case res := <-ch:
		return res.Val.(State)
	case <-ctx.Done():
		return c.State()
	}
}

// Retry is the user-triggered refresh.
func (c *Controller) Retry(ctx context.Context) State {
	return c.Refresh(ctx)
}

// Search filters the current snapshot's featured results. It never waits for
// a refresh.
func (c *Controller) Search(query string) []provider.ConstituencyResult {
	s := c.State()
	if s.Snapshot == nil {
		return []provider.ConstituencyResult{}
	}
	return FilterResults(s.Snapshot.FeaturedResults, query)
}

func (c *Controller) refresh() State {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return c.State()
	}
	c.wg.Add(1)
	defer c.wg.Done()
	c.update(func(s *State) { s.Phase = PhaseLoading })
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(c.life, c.opts.FetchTimeout)
	defer cancel()

	start := time.Now()
	snap, err := c.provider.FetchSnapshot(ctx)
	elapsed := time.Since(start)

	next, accepted := c.apply(snap, err)

	switch {
	case err != nil:
		c.log.Warn("refresh failed",
			zap.String("provider", c.provider.Name()),
			zap.Duration("duration", elapsed),
			zap.Error(err))
	case snap.Degraded:
		c.log.Warn("refresh degraded",
			zap.String("provider", c.provider.Name()),
			zap.Duration("duration", elapsed),
			zap.String("reason", snap.DegradedReason),
			zap.Bool("kept_previous", !accepted))
	default:
		c.log.Info("refresh complete",
			zap.String("provider", c.provider.Name()),
			zap.Duration("duration", elapsed),
			zap.Int("results_published", snap.Summary.ResultsPublished),
			zap.Int("featured", len(snap.FeaturedResults)),
			zap.Int("sources", len(snap.GroundingSources)))
	}

	if accepted && err == nil && !snap.Degraded && c.opts.Recorder != nil {
		if rerr := c.opts.Recorder.Record(ctx, snap); rerr != nil {
			c.log.Error("archive snapshot", zap.Stringer("id", snap.ID), zap.Error(rerr))
		}
	}
	return next
}

// apply folds one fetch outcome into the state. accepted reports whether snap
// became the current snapshot.
func (c *Controller) apply(snap provider.Snapshot, err error) (next State, accepted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return c.State(), false
	}

	prev := c.State()
	next = prev
	next.Error = ""
	next.Notice = ""

	switch {
	case err != nil:
		next.Phase = PhaseFailed
		next.Error = c.opts.TransportErrorMessage
		next.Stale = prev.Snapshot != nil
	case snap.Degraded && prev.Snapshot != nil && !prev.Snapshot.Degraded:
		next.Phase = PhaseReady
		next.Notice = snap.NewsFlash
		next.Stale = true
	default:
		now := c.opts.Now()
		next.Phase = PhaseReady
		next.Snapshot = &snap
		next.Stale = false
		next.LastUpdate = now
		next.LastUpdateText = c.opts.Clock.Format(now)
		accepted = true
	}

	c.state.Store(&next)
	return next, accepted
}

// update must be called with mu held.
func (c *Controller) update(fn func(*State)) {
	next := c.State()
	fn(&next)
	c.state.Store(&next)
}
