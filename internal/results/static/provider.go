// Package static serves a results payload from a JSON file on disk. It goes
// through the same validation as live responses, which makes it useful for
// demos, local development and rehearsing the dashboard before polling opens.
package static

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/EmpoweredVote/election-results/internal/results/payload"
	"github.com/EmpoweredVote/election-results/internal/results/provider"
)

// StaticProvider implements the SnapshotProvider interface using a file.
type StaticProvider struct {
	path          string
	degradedFlash string
	now           func() time.Time
}

// Ensure StaticProvider implements SnapshotProvider.
var _ provider.SnapshotProvider = (*StaticProvider)(nil)

func init() {
	provider.RegisterProvider(provider.ProviderStatic, func(cfg provider.Config) (provider.SnapshotProvider, error) {
		return NewProvider(cfg), nil
	})
}

// NewProvider creates a StaticProvider reading cfg.StaticPath.
func NewProvider(cfg provider.Config) *StaticProvider {
	return &StaticProvider{
		path:          cfg.StaticPath,
		degradedFlash: cfg.DegradedNewsFlash,
		now:           cfg.Clock(),
	}
}

// Name returns the provider name.
func (p *StaticProvider) Name() string {
	return "static"
}

// FetchSnapshot re-reads the file on every call so edits show up on the
// next refresh. A missing or unreadable file is reported like a transport
// failure.
func (p *StaticProvider) FetchSnapshot(ctx context.Context) (provider.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return provider.Snapshot{}, fmt.Errorf("%w: %w", provider.ErrTransport, err)
	}

	start := time.Now()
	b, err := os.ReadFile(p.path)
	if err != nil {
		provider.LogError(p.Name(), "read", err)
		return provider.Snapshot{}, fmt.Errorf("%w: %w", provider.ErrTransport, err)
	}

	snap, reason := payload.Build(p.Name(), string(b), nil, p.degradedFlash, p.now())
	if reason != nil {
		provider.LogDegraded(p.Name(), reason)
		return snap, nil
	}
	provider.LogTransform(p.Name(), len(snap.FeaturedResults), 0, time.Since(start))
	return snap, nil
}

// HealthCheck verifies the file is readable.
func (p *StaticProvider) HealthCheck(ctx context.Context) error {
	if _, err := os.Stat(p.path); err != nil {
		return fmt.Errorf("static payload: %w", err)
	}
	return nil
}
