package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-token-sentinel/internal/domain"
	"solana-token-sentinel/internal/storage"
)

// TokenStore implements storage.TokenStore using PostgreSQL.
type TokenStore struct {
	pool *Pool
}

// NewTokenStore creates a new TokenStore.
func NewTokenStore(pool *Pool) *TokenStore {
	return &TokenStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TokenStore = (*TokenStore)(nil)

const tokenColumns = `
	mint, pool, creator, signature, platform, detected_at,
	overall_score, recommendation,
	mint_auth_status, mint_auth_message, mint_auth_addr,
	freeze_auth_status, freeze_auth_message, freeze_auth_addr,
	metadata_status, metadata_message, metadata_addr,
	liquidity_status, liquidity_message,
	top_holders_status, top_holders_message, top_holder_pct, top_holder_addr
`

// Upsert inserts a token or replaces the existing row for its mint.
func (s *TokenStore) Upsert(ctx context.Context, t *domain.MonitoredToken) error {
	if t == nil || t.TokenInfo.Mint == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO monitored_tokens (` + tokenColumns + `)
		VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8,
			$9, $10, $11,
			$12, $13, $14,
			$15, $16, $17,
			$18, $19,
			$20, $21, $22, $23
		)
		ON CONFLICT (mint) DO UPDATE SET
			pool = EXCLUDED.pool,
			creator = EXCLUDED.creator,
			signature = EXCLUDED.signature,
			platform = EXCLUDED.platform,
			detected_at = EXCLUDED.detected_at,
			overall_score = EXCLUDED.overall_score,
			recommendation = EXCLUDED.recommendation,
			mint_auth_status = EXCLUDED.mint_auth_status,
			mint_auth_message = EXCLUDED.mint_auth_message,
			mint_auth_addr = EXCLUDED.mint_auth_addr,
			freeze_auth_status = EXCLUDED.freeze_auth_status,
			freeze_auth_message = EXCLUDED.freeze_auth_message,
			freeze_auth_addr = EXCLUDED.freeze_auth_addr,
			metadata_status = EXCLUDED.metadata_status,
			metadata_message = EXCLUDED.metadata_message,
			metadata_addr = EXCLUDED.metadata_addr,
			liquidity_status = EXCLUDED.liquidity_status,
			liquidity_message = EXCLUDED.liquidity_message,
			top_holders_status = EXCLUDED.top_holders_status,
			top_holders_message = EXCLUDED.top_holders_message,
			top_holder_pct = EXCLUDED.top_holder_pct,
			top_holder_addr = EXCLUDED.top_holder_addr,
			updated_at = now()
	`

	r := t.Report
	_, err := s.pool.Exec(ctx, query,
		t.TokenInfo.Mint, t.TokenInfo.Pool, t.TokenInfo.Creator, t.Signature, t.Platform, t.DetectedAt,
		r.OverallScore, string(r.Recommendation),
		string(r.MintAuthority.Status), r.MintAuthority.Message, r.MintAuthority.Address,
		string(r.FreezeAuthority.Status), r.FreezeAuthority.Message, r.FreezeAuthority.Address,
		string(r.Metadata.Status), r.Metadata.Message, r.Metadata.Address,
		string(r.Liquidity.Status), r.Liquidity.Message,
		string(r.TopHolders.Status), r.TopHolders.Message, r.TopHolders.Value, r.TopHolders.Address,
	)
	if err != nil {
		return fmt.Errorf("upsert monitored token: %w", err)
	}
	return nil
}

// GetByMint retrieves a token by mint. Returns ErrNotFound if not exists.
func (s *TokenStore) GetByMint(ctx context.Context, mint string) (*domain.MonitoredToken, error) {
	query := `
		SELECT ` + tokenColumns + `
		FROM monitored_tokens
		WHERE mint = $1
	`

	row := s.pool.QueryRow(ctx, query, mint)
	t, err := scanToken(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get token by mint: %w", err)
	}
	return t, nil
}

// Snapshot retrieves all tokens in insertion order.
func (s *TokenStore) Snapshot(ctx context.Context) ([]*domain.MonitoredToken, error) {
	query := `
		SELECT ` + tokenColumns + `
		FROM monitored_tokens
		ORDER BY created_at ASC, mint ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("snapshot tokens: %w", err)
	}
	defer rows.Close()

	var tokens []*domain.MonitoredToken
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, fmt.Errorf("scan token row: %w", err)
		}
		tokens = append(tokens, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate token rows: %w", err)
	}
	return tokens, nil
}

// Count returns the number of tokens held.
func (s *TokenStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM monitored_tokens`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count tokens: %w", err)
	}
	return count, nil
}

// scanToken scans a single row into a MonitoredToken.
func scanToken(row pgx.Row) (*domain.MonitoredToken, error) {
	var t domain.MonitoredToken
	var recommendation string
	var mintAuthStatus, freezeAuthStatus, metadataStatus, liquidityStatus, topHoldersStatus string

	err := row.Scan(
		&t.TokenInfo.Mint, &t.TokenInfo.Pool, &t.TokenInfo.Creator, &t.Signature, &t.Platform, &t.DetectedAt,
		&t.Report.OverallScore, &recommendation,
		&mintAuthStatus, &t.Report.MintAuthority.Message, &t.Report.MintAuthority.Address,
		&freezeAuthStatus, &t.Report.FreezeAuthority.Message, &t.Report.FreezeAuthority.Address,
		&metadataStatus, &t.Report.Metadata.Message, &t.Report.Metadata.Address,
		&liquidityStatus, &t.Report.Liquidity.Message,
		&topHoldersStatus, &t.Report.TopHolders.Message, &t.Report.TopHolders.Value, &t.Report.TopHolders.Address,
	)
	if err != nil {
		return nil, err
	}

	t.Report.Recommendation = domain.Recommendation(recommendation)
	t.Report.MintAuthority.Status = domain.CheckStatus(mintAuthStatus)
	t.Report.FreezeAuthority.Status = domain.CheckStatus(freezeAuthStatus)
	t.Report.Metadata.Status = domain.CheckStatus(metadataStatus)
	t.Report.Liquidity.Status = domain.CheckStatus(liquidityStatus)
	t.Report.TopHolders.Status = domain.CheckStatus(topHoldersStatus)
	return &t, nil
}
