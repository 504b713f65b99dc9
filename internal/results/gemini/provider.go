package gemini

import (
	"context"
	"fmt"
	"time"

	"github.com/EmpoweredVote/election-results/internal/results/payload"
	"github.com/EmpoweredVote/election-results/internal/results/provider"
)

// GeminiProvider implements the SnapshotProvider interface on top of Gemini
// with Google Search grounding.
type GeminiProvider struct {
	transport          Transport
	model              string
	prompt             string
	degradeOnTransport bool
	degradedFlash      string
	now                func() time.Time
}

// Ensure GeminiProvider implements SnapshotProvider.
var _ provider.SnapshotProvider = (*GeminiProvider)(nil)

// init registers the Gemini provider in the provider registry.
func init() {
	provider.RegisterProvider(provider.ProviderGemini, func(cfg provider.Config) (provider.SnapshotProvider, error) {
		model := cfg.Model
		if model == "" {
			model = provider.DefaultModel
		}
		client, err := NewClient(context.Background(), cfg.GeminiKey, model)
		if err != nil {
			return nil, err
		}
		cfg.Model = model
		return NewProvider(client, cfg), nil
	})
}

// NewProvider creates a GeminiProvider that queries through t.
func NewProvider(t Transport, cfg provider.Config) *GeminiProvider {
	prompt := cfg.Prompt
	if prompt == "" {
		prompt = DefaultPrompt
	}
	return &GeminiProvider{
		transport:          t,
		model:              cfg.Model,
		prompt:             prompt,
		degradeOnTransport: cfg.DegradeOnTransportError,
		degradedFlash:      cfg.DegradedNewsFlash,
		now:                cfg.Clock(),
	}
}

// Name returns the provider name.
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// FetchSnapshot runs the fixed query once. Empty, malformed and
// schema-violating answers become the degraded snapshot.
func (p *GeminiProvider) FetchSnapshot(ctx context.Context) (provider.Snapshot, error) {
	start := time.Now()
	provider.LogRequest(p.Name(), "generate", p.model)

	resp, err := p.transport.Query(ctx, p.prompt)
	if err != nil {
		provider.LogError(p.Name(), "generate", err)
		err = fmt.Errorf("%w: %w", provider.ErrTransport, err)
		if p.degradeOnTransport {
			return provider.DegradedSnapshot(p.Name(), p.degradedFlash, err, p.now()), nil
		}
		return provider.Snapshot{}, err
	}
	provider.LogResponse(p.Name(), time.Since(start), len(resp.Text), len(resp.Chunks))

	tTransform := time.Now()
	snap, reason := payload.Build(p.Name(), resp.Text, resp.Chunks, p.degradedFlash, p.now())
	if reason != nil {
		provider.LogDegraded(p.Name(), reason)
		return snap, nil
	}
	provider.LogTransform(p.Name(), len(snap.FeaturedResults), len(snap.GroundingSources), time.Since(tTransform))

	return snap, nil
}

// HealthCheck verifies the API key and model are usable.
func (p *GeminiProvider) HealthCheck(ctx context.Context) error {
	return p.transport.Ping(ctx)
}
