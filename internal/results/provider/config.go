package provider

import "time"

// ProviderType identifies which data provider to use.
type ProviderType string

const (
	ProviderGemini ProviderType = "gemini"
	ProviderStatic ProviderType = "static"
)

// DefaultModel is the Gemini model queried when none is configured.
const DefaultModel = "gemini-3-flash-preview"

// Config holds configuration for the election data provider.
type Config struct {
	// Provider type: "gemini" or "static"
	Provider ProviderType

	// Gemini-specific config
	GeminiKey string
	Model     string
	// Prompt replaces the built-in instruction when non-empty.
	Prompt string

	// Static-specific config
	StaticPath string

	// DegradeOnTransportError makes transport failures collapse into the
	// degraded snapshot too, so FetchSnapshot never returns an error.
	DegradeOnTransportError bool

	// DegradedNewsFlash is the apology shown in degraded snapshots.
	DegradedNewsFlash string

	// Now is the clock used for RetrievedAt. Defaults to time.Now.
	Now func() time.Time
}

// Validate checks that the configuration is valid for the selected provider.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderGemini:
		if c.GeminiKey == "" {
			return ErrMissingAPIKey
		}
	case ProviderStatic:
		if c.StaticPath == "" {
			return ErrMissingStaticPath
		}
	}
	return nil
}

// Clock returns the configured clock or time.Now.
func (c Config) Clock() func() time.Time {
	if c.Now != nil {
		return c.Now
	}
	return time.Now
}
