package clickhouse

import (
	"context"
	"fmt"

	"solana-token-sentinel/internal/domain"
	"solana-token-sentinel/internal/storage"
)

// DetectionHistoryStore implements storage.DetectionHistoryStore using
// ClickHouse. The table is append-only; the same mint accumulates one row
// per detection.
type DetectionHistoryStore struct {
	conn *Conn
}

// NewDetectionHistoryStore creates a new DetectionHistoryStore.
func NewDetectionHistoryStore(conn *Conn) *DetectionHistoryStore {
	return &DetectionHistoryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.DetectionHistoryStore = (*DetectionHistoryStore)(nil)

const insertDetectionQuery = `
	INSERT INTO token_detections (
		mint, platform, signature, score, recommendation,
		mint_auth_status, freeze_auth_status, metadata_status,
		liquidity_status, top_holders_status,
		top_holder_pct, detected_at
	)
`

// Insert appends a detection record.
func (s *DetectionHistoryStore) Insert(ctx context.Context, r *domain.DetectionRecord) error {
	if r == nil || r.Mint == "" {
		return storage.ErrInvalidInput
	}

	query := insertDetectionQuery + ` VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	err := s.conn.Exec(ctx, query,
		r.Mint, r.Platform, r.Signature, int32(r.Score), string(r.Recommendation),
		string(r.MintAuthorityStatus), string(r.FreezeAuthorityStatus), string(r.MetadataStatus),
		string(r.LiquidityStatus), string(r.TopHoldersStatus),
		r.TopHolderPercent, r.DetectedAt,
	)
	if err != nil {
		return fmt.Errorf("insert detection: %w", err)
	}
	return nil
}

// InsertBulk appends multiple records in one batch.
func (s *DetectionHistoryStore) InsertBulk(ctx context.Context, records []*domain.DetectionRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, insertDetectionQuery)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range records {
		if r == nil || r.Mint == "" {
			return storage.ErrInvalidInput
		}
		err = batch.Append(
			r.Mint, r.Platform, r.Signature, int32(r.Score), string(r.Recommendation),
			string(r.MintAuthorityStatus), string(r.FreezeAuthorityStatus), string(r.MetadataStatus),
			string(r.LiquidityStatus), string(r.TopHoldersStatus),
			r.TopHolderPercent, r.DetectedAt,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByTimeRange retrieves records detected within [start, end] (inclusive),
// ordered by detected_at ASC.
func (s *DetectionHistoryStore) GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.DetectionRecord, error) {
	query := `
		SELECT
			mint, platform, signature, score, recommendation,
			mint_auth_status, freeze_auth_status, metadata_status,
			liquidity_status, top_holders_status,
			top_holder_pct, detected_at
		FROM token_detections
		WHERE detected_at >= ? AND detected_at <= ?
		ORDER BY detected_at ASC, mint ASC
	`

	rows, err := s.conn.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("query detections by time range: %w", err)
	}
	defer rows.Close()

	var records []*domain.DetectionRecord
	for rows.Next() {
		var r domain.DetectionRecord
		var score int32
		var recommendation string
		var mintAuth, freezeAuth, metadata, liquidity, topHolders string

		err := rows.Scan(
			&r.Mint, &r.Platform, &r.Signature, &score, &recommendation,
			&mintAuth, &freezeAuth, &metadata,
			&liquidity, &topHolders,
			&r.TopHolderPercent, &r.DetectedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan detection row: %w", err)
		}

		r.Score = int(score)
		r.Recommendation = domain.Recommendation(recommendation)
		r.MintAuthorityStatus = domain.CheckStatus(mintAuth)
		r.FreezeAuthorityStatus = domain.CheckStatus(freezeAuth)
		r.MetadataStatus = domain.CheckStatus(metadata)
		r.LiquidityStatus = domain.CheckStatus(liquidity)
		r.TopHoldersStatus = domain.CheckStatus(topHolders)
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate detection rows: %w", err)
	}
	return records, nil
}
