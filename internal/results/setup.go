package results

import (
	"fmt"

	"github.com/EmpoweredVote/election-results/internal/config"
	"github.com/EmpoweredVote/election-results/internal/results/provider"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	// Import providers to register them via init()
	_ "github.com/EmpoweredVote/election-results/internal/results/gemini"
	_ "github.com/EmpoweredVote/election-results/internal/results/static"
)

// Setup builds the provider, controller and service from cfg. gdb may be
// nil, in which case nothing is archived and /history answers 404. The
// controller is not started.
func Setup(cfg config.Config, gdb *gorm.DB, log *zap.Logger) (*Service, error) {
	if log == nil {
		log = zap.NewNop()
	}

	pc, err := cfg.Results.ProviderConfig()
	if err != nil {
		return nil, err
	}
	p, err := provider.NewProvider(pc)
	if err != nil {
		return nil, fmt.Errorf("init %s provider: %w", pc.Provider, err)
	}
	log.Info("initialized provider", zap.String("provider", p.Name()), zap.String("model", pc.Model))

	opts := Options{
		Interval:              cfg.Results.RefreshInterval.Std(),
		FetchTimeout:          cfg.Results.FetchTimeout.Std(),
		TransportErrorMessage: cfg.Results.Messages.TransportError,
		Clock:                 ClockFormat{Tag: cfg.Results.Tag(), Location: cfg.Results.Location()},
		Logger:                log,
	}

	var history HistoryStore
	if gdb != nil {
		archive, err := NewArchive(gdb, cfg.Archive.Schema)
		if err != nil {
			return nil, err
		}
		opts.Recorder = archive
		history = archive
		log.Info("snapshot archive enabled", zap.String("table", archive.table))
	}

	c := NewController(p, opts)
	return NewService(c, p, newLimiter(cfg.Results.ManualRefresh), history, log), nil
}

func newLimiter(rc config.RateConfig) *rate.Limiter {
	if rc.Every <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := rc.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Every(rc.Every.Std()), burst)
}
