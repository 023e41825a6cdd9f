package storage

import (
	"context"

	"solana-token-sentinel/internal/domain"
)

// TokenStore provides access to monitored token storage, keyed by mint.
type TokenStore interface {
	// Upsert inserts a token or replaces the existing entry for its mint.
	Upsert(ctx context.Context, t *domain.MonitoredToken) error

	// GetByMint retrieves a token by mint address. Returns ErrNotFound if not exists.
	GetByMint(ctx context.Context, mint string) (*domain.MonitoredToken, error)

	// Snapshot retrieves all tokens in insertion order.
	Snapshot(ctx context.Context) ([]*domain.MonitoredToken, error)

	// Count returns the number of tokens held.
	Count(ctx context.Context) (int, error)
}

// DetectionHistoryStore provides access to the append-only detection log.
type DetectionHistoryStore interface {
	// Insert appends a detection record. Re-detections of the same mint
	// append new rows; history is never replaced.
	Insert(ctx context.Context, r *domain.DetectionRecord) error

	// InsertBulk appends multiple records in one batch.
	InsertBulk(ctx context.Context, records []*domain.DetectionRecord) error

	// GetByTimeRange retrieves records detected within [start, end]
	// (inclusive, Unix milliseconds), ordered by detected_at ASC.
	GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.DetectionRecord, error)
}
