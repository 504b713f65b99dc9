package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrMissingAPIKey     = errors.New("GEMINI_API_KEY (or API_KEY) environment variable is required for gemini provider")
	ErrMissingStaticPath = errors.New("results.static_path is required for static provider")
	ErrUnknownProvider   = errors.New("unknown provider type")

	// Response validation failures. These never cross the adapter boundary as
	// errors; they end up as the DegradedReason of a degraded snapshot.
	ErrEmptyResponse    = errors.New("empty response from AI")
	ErrMalformedPayload = errors.New("malformed payload")
	ErrSchemaViolation  = errors.New("schema violation")

	// ErrTransport wraps failures of the external call itself (network, auth,
	// rate limit).
	ErrTransport = errors.New("transport failure")
)

// SnapshotProvider is the interface every election data source implements.
type SnapshotProvider interface {
	// Name returns the provider name for logging purposes.
	Name() string

	// FetchSnapshot runs one query against the source. Invalid responses yield a
	// degraded snapshot and a nil error; only transport failures are returned,
	// wrapped in ErrTransport. Calls share no state.
	FetchSnapshot(ctx context.Context) (Snapshot, error)

	// HealthCheck verifies the provider can reach its data source.
	HealthCheck(ctx context.Context) error
}

var providerRegistry = make(map[ProviderType]func(Config) (SnapshotProvider, error))

// RegisterProvider registers a provider constructor for a given provider type.
// This should be called from init() in each provider package.
func RegisterProvider(providerType ProviderType, constructor func(Config) (SnapshotProvider, error)) {
	providerRegistry[providerType] = constructor
}

// NewProvider creates a new SnapshotProvider based on the configuration.
func NewProvider(cfg Config) (SnapshotProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	constructor, ok := providerRegistry[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}

	return constructor(cfg)
}

// DefaultDegradedNewsFlash is shown when the live source could not be read.
const DefaultDegradedNewsFlash = "লাইভ সোর্স থেকে ডাটা লোড হতে বিলম্ব হচ্ছে। পুনরায় চেষ্টা করা হচ্ছে..."

// DegradedSnapshot is the fixed safe fallback: zero seats published, empty
// lists and an apology as the news flash. reason may be nil.
func DegradedSnapshot(providerName, newsFlash string, reason error, now time.Time) Snapshot {
	if newsFlash == "" {
		newsFlash = DefaultDegradedNewsFlash
	}
	s := Snapshot{
		ID: uuid.New(),
		Summary: NationalSummary{
			TotalSeats:       DefaultTotalSeats,
			ResultsPublished: 0,
			PartyStandings:   []PartyStanding{},
		},
		FeaturedResults:  []ConstituencyResult{},
		NewsFlash:        newsFlash,
		GroundingSources: []CitationSource{},
		RetrievedAt:      now,
		Provider:         providerName,
		Degraded:         true,
	}
	if reason != nil {
		s.DegradedReason = reason.Error()
	}
	return s
}
