// Package registry tracks assessed tokens and exposes point-in-time
// snapshots of what the monitor has seen.
package registry

import (
	"context"
	"fmt"
	"log"

	"solana-token-sentinel/internal/domain"
	"solana-token-sentinel/internal/storage"
)

// Registry fronts the token store and the optional detection history log.
type Registry struct {
	store   storage.TokenStore
	history storage.DetectionHistoryStore // nil disables history
	logger  *log.Logger
}

// New creates a registry. history may be nil when no detection log is
// configured.
func New(store storage.TokenStore, history storage.DetectionHistoryStore, logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.Default()
	}
	return &Registry{store: store, history: history, logger: logger}
}

// Record upserts an assessed token and appends it to the detection history.
// A history append failure is logged and does not fail the record: the
// registry entry is the source of truth, history is best effort.
func (r *Registry) Record(ctx context.Context, t *domain.MonitoredToken) error {
	if t == nil || t.TokenInfo.Mint == "" {
		return storage.ErrInvalidInput
	}

	if err := r.store.Upsert(ctx, t); err != nil {
		return fmt.Errorf("record token %s: %w", t.TokenInfo.Mint, err)
	}

	if r.history != nil {
		if err := r.history.Insert(ctx, domain.NewDetectionRecord(t)); err != nil {
			r.logger.Printf("[registry] history append failed for %s: %v", t.TokenInfo.Mint, err)
		}
	}
	return nil
}

// Get retrieves a monitored token by mint. Returns storage.ErrNotFound if
// the mint has not been recorded.
func (r *Registry) Get(ctx context.Context, mint string) (*domain.MonitoredToken, error) {
	return r.store.GetByMint(ctx, mint)
}

// Stats returns a snapshot of all recorded tokens.
func (r *Registry) Stats(ctx context.Context) (*domain.RegistryStats, error) {
	tokens, err := r.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot registry: %w", err)
	}

	stats := &domain.RegistryStats{
		TotalCount: len(tokens),
		Entries:    make([]domain.TokenSummary, 0, len(tokens)),
	}
	for _, t := range tokens {
		stats.Entries = append(stats.Entries, domain.TokenSummary{
			Mint:           t.TokenInfo.Mint,
			Score:          t.Report.OverallScore,
			Recommendation: t.Report.Recommendation,
			Platform:       t.Platform,
			DetectedAt:     t.DetectedAt,
		})
	}
	return stats, nil
}
