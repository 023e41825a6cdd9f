package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"solana-token-sentinel/internal/domain"
	"solana-token-sentinel/internal/storage"
)

func testToken(mint string, score int) *domain.MonitoredToken {
	return &domain.MonitoredToken{
		TokenInfo: domain.TokenInfo{Mint: mint},
		Report: domain.SafetyReport{
			OverallScore:   score,
			Recommendation: domain.RecommendationCaution,
		},
		Platform:   "Raydium",
		DetectedAt: 1700000000000,
	}
}

func TestTokenStoreUpsertAndGet(t *testing.T) {
	store := NewTokenStore(0)
	ctx := context.Background()

	if err := store.Upsert(ctx, testToken("mintA", 75)); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := store.GetByMint(ctx, "mintA")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Report.OverallScore != 75 {
		t.Errorf("score = %d, want 75", got.Report.OverallScore)
	}

	_, err = store.GetByMint(ctx, "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTokenStoreUpsertReplaces(t *testing.T) {
	store := NewTokenStore(0)
	ctx := context.Background()

	if err := store.Upsert(ctx, testToken("mintA", 40)); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := store.Upsert(ctx, testToken("mintA", 85)); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := store.GetByMint(ctx, "mintA")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Report.OverallScore != 85 {
		t.Errorf("score = %d, want 85 after replacement", got.Report.OverallScore)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestTokenStoreInvalidInput(t *testing.T) {
	store := NewTokenStore(0)
	ctx := context.Background()

	if err := store.Upsert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("nil token: expected ErrInvalidInput, got %v", err)
	}
	if err := store.Upsert(ctx, &domain.MonitoredToken{}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("empty mint: expected ErrInvalidInput, got %v", err)
	}
}

func TestTokenStoreCapacityEviction(t *testing.T) {
	store := NewTokenStore(2)
	ctx := context.Background()

	for _, mint := range []string{"mintA", "mintB", "mintC"} {
		if err := store.Upsert(ctx, testToken(mint, 50)); err != nil {
			t.Fatalf("upsert %s: %v", mint, err)
		}
	}

	if _, err := store.GetByMint(ctx, "mintA"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("oldest entry should be evicted, got %v", err)
	}
	for _, mint := range []string{"mintB", "mintC"} {
		if _, err := store.GetByMint(ctx, mint); err != nil {
			t.Errorf("get %s: %v", mint, err)
		}
	}

	// Replacing an existing mint must not evict anything.
	if err := store.Upsert(ctx, testToken("mintC", 99)); err != nil {
		t.Fatalf("replace upsert: %v", err)
	}
	if _, err := store.GetByMint(ctx, "mintB"); err != nil {
		t.Errorf("mintB evicted by a replacement upsert: %v", err)
	}
}

func TestTokenStoreSnapshotOrderAndIsolation(t *testing.T) {
	store := NewTokenStore(0)
	ctx := context.Background()

	for i, mint := range []string{"mintA", "mintB", "mintC"} {
		if err := store.Upsert(ctx, testToken(mint, i*10)); err != nil {
			t.Fatalf("upsert %s: %v", mint, err)
		}
	}

	snap, err := store.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snap) != 3 {
		t.Fatalf("snapshot length = %d, want 3", len(snap))
	}
	for i, want := range []string{"mintA", "mintB", "mintC"} {
		if snap[i].TokenInfo.Mint != want {
			t.Errorf("snapshot[%d] = %s, want %s", i, snap[i].TokenInfo.Mint, want)
		}
	}

	// Mutating the snapshot must not affect the store.
	snap[0].Report.OverallScore = -1
	got, err := store.GetByMint(ctx, "mintA")
	if err != nil {
		t.Fatalf("get after snapshot mutation: %v", err)
	}
	if got.Report.OverallScore == -1 {
		t.Error("snapshot mutation leaked into the store")
	}
}

func TestTokenStoreConcurrentUpserts(t *testing.T) {
	store := NewTokenStore(0)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			mint := fmt.Sprintf("mint%02d", n%5)
			if err := store.Upsert(ctx, testToken(mint, n)); err != nil {
				t.Errorf("upsert %s: %v", mint, err)
			}
			if _, err := store.Snapshot(ctx); err != nil {
				t.Errorf("snapshot: %v", err)
			}
		}(i)
	}
	wg.Wait()

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 5 {
		t.Errorf("count = %d, want 5 distinct mints", count)
	}
}
