package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-token-sentinel/internal/domain"
	"solana-token-sentinel/internal/storage"
)

func sampleToken(mint string, score int) *domain.MonitoredToken {
	return &domain.MonitoredToken{
		TokenInfo: domain.TokenInfo{
			Mint:    mint,
			Creator: ptr("creator1111"),
		},
		Report: domain.SafetyReport{
			MintAuthority:   domain.CheckResult{Status: domain.StatusPass, Message: "mint authority revoked"},
			FreezeAuthority: domain.CheckResult{Status: domain.StatusPass, Message: "freeze authority revoked"},
			Metadata:        domain.CheckResult{Status: domain.StatusWarning, Message: "no metadata account found for mint"},
			Liquidity:       domain.CheckResult{Status: domain.StatusUnknown, Message: "liquidity verification requires a resolved pool address"},
			TopHolders:      domain.CheckResult{Status: domain.StatusPass, Message: "top holder owns 8.0% of supply", Value: ptr(8.0), Address: ptr("holder1111")},
			OverallScore:    score,
			Recommendation:  domain.RecommendationSafe,
		},
		Signature:  "sig-" + mint,
		Platform:   "Raydium",
		DetectedAt: 1700000000000,
	}
}

func TestTokenStoreUpsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTokenStore(pool)
	ctx := context.Background()

	token := sampleToken("mintAAAA", 88)
	require.NoError(t, store.Upsert(ctx, token))

	got, err := store.GetByMint(ctx, "mintAAAA")
	require.NoError(t, err)

	assert.Equal(t, "mintAAAA", got.TokenInfo.Mint)
	require.NotNil(t, got.TokenInfo.Creator)
	assert.Equal(t, "creator1111", *got.TokenInfo.Creator)
	assert.Nil(t, got.TokenInfo.Pool)
	assert.Equal(t, 88, got.Report.OverallScore)
	assert.Equal(t, domain.RecommendationSafe, got.Report.Recommendation)
	assert.Equal(t, domain.StatusPass, got.Report.MintAuthority.Status)
	assert.Equal(t, domain.StatusWarning, got.Report.Metadata.Status)
	require.NotNil(t, got.Report.TopHolders.Value)
	assert.Equal(t, 8.0, *got.Report.TopHolders.Value)
	assert.Equal(t, "sig-mintAAAA", got.Signature)
	assert.Equal(t, int64(1700000000000), got.DetectedAt)
}

func TestTokenStoreUpsertReplaces(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTokenStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, sampleToken("mintAAAA", 40)))

	updated := sampleToken("mintAAAA", 90)
	updated.Report.MintAuthority = domain.CheckResult{
		Status:  domain.StatusFail,
		Message: "mint authority is still active, supply can be inflated",
		Address: ptr("authority1111"),
	}
	require.NoError(t, store.Upsert(ctx, updated))

	got, err := store.GetByMint(ctx, "mintAAAA")
	require.NoError(t, err)
	assert.Equal(t, 90, got.Report.OverallScore)
	assert.Equal(t, domain.StatusFail, got.Report.MintAuthority.Status)
	require.NotNil(t, got.Report.MintAuthority.Address)
	assert.Equal(t, "authority1111", *got.Report.MintAuthority.Address)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestTokenStoreGetByMintNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTokenStore(pool)
	_, err := store.GetByMint(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTokenStoreSnapshot(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTokenStore(pool)
	ctx := context.Background()

	for _, mint := range []string{"mintAAAA", "mintBBBB", "mintCCCC"} {
		require.NoError(t, store.Upsert(ctx, sampleToken(mint, 70)))
	}

	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap, 3)
	assert.Equal(t, "mintAAAA", snap[0].TokenInfo.Mint)
	assert.Equal(t, "mintBBBB", snap[1].TokenInfo.Mint)
	assert.Equal(t, "mintCCCC", snap[2].TokenInfo.Mint)
}

func TestTokenStoreUpsertInvalidInput(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTokenStore(pool)
	ctx := context.Background()

	assert.ErrorIs(t, store.Upsert(ctx, nil), storage.ErrInvalidInput)
	assert.ErrorIs(t, store.Upsert(ctx, &domain.MonitoredToken{}), storage.ErrInvalidInput)
}
