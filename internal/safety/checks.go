package safety

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"

	"solana-token-sentinel/internal/domain"
	"solana-token-sentinel/internal/solana"
)

// Config tunes the check thresholds.
type Config struct {
	// MaxTopHolderPercent fails the top-holder check when the largest
	// holder owns more than this share of supply. Defaults to 50.
	MaxTopHolderPercent float64
	// MinLiquidity is the minimum pool liquidity in SOL. Unused until
	// pool resolution lands; kept so operators can set it ahead of time.
	MinLiquidity float64
	// MinHolderCount is the minimum number of distinct holders.
	MinHolderCount int
}

// DefaultMaxTopHolderPercent is the concentration threshold applied when
// Config.MaxTopHolderPercent is unset.
const DefaultMaxTopHolderPercent = 50.0

// Engine runs the five safety checks for a mint concurrently and scores
// the resulting report.
type Engine struct {
	rpc    solana.RPCClient
	cfg    Config
	logger *log.Logger
}

// NewEngine creates a check engine. Zero-valued config fields fall back
// to defaults.
func NewEngine(rpc solana.RPCClient, cfg Config, logger *log.Logger) *Engine {
	if cfg.MaxTopHolderPercent <= 0 {
		cfg.MaxTopHolderPercent = DefaultMaxTopHolderPercent
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{rpc: rpc, cfg: cfg, logger: logger}
}

// Assess runs all five checks concurrently and returns the scored report.
// Every slot is always populated: a check that returns an error is recorded
// as StatusError and simply earns no score weight, so one failing RPC call
// never aborts the assessment.
func (e *Engine) Assess(ctx context.Context, token *domain.TokenInfo) *domain.SafetyReport {
	report := &domain.SafetyReport{}

	checks := []struct {
		name string
		slot *domain.CheckResult
		run  func(context.Context, *domain.TokenInfo) (domain.CheckResult, error)
	}{
		{"mint_authority", &report.MintAuthority, e.checkMintAuthority},
		{"freeze_authority", &report.FreezeAuthority, e.checkFreezeAuthority},
		{"metadata", &report.Metadata, e.checkMetadata},
		{"liquidity", &report.Liquidity, e.checkLiquidity},
		{"top_holders", &report.TopHolders, e.checkTopHolders},
	}

	var wg sync.WaitGroup
	for _, c := range checks {
		wg.Add(1)
		go func(name string, slot *domain.CheckResult, run func(context.Context, *domain.TokenInfo) (domain.CheckResult, error)) {
			defer wg.Done()
			result, err := run(ctx, token)
			if err != nil {
				e.logger.Printf("[safety] %s check errored for %s: %v", name, token.Mint, err)
				result = domain.CheckResult{
					Status:  domain.StatusError,
					Message: err.Error(),
				}
			}
			*slot = result
		}(c.name, c.slot, c.run)
	}
	wg.Wait()

	report.OverallScore, report.Recommendation = Score(report)
	return report
}

// fetchMint retrieves and decodes the mint account. Shared by the two
// authority checks; each runs its own fetch so a transient failure on one
// does not poison the other.
func (e *Engine) fetchMint(ctx context.Context, mint string) (*MintAccount, error) {
	info, err := e.rpc.GetAccountInfo(ctx, mint)
	if err != nil {
		return nil, fmt.Errorf("fetch mint account: %w", err)
	}
	if info == nil {
		return nil, fmt.Errorf("mint account %s does not exist", mint)
	}
	return ParseMintAccount(info.Data)
}

func (e *Engine) checkMintAuthority(ctx context.Context, token *domain.TokenInfo) (domain.CheckResult, error) {
	m, err := e.fetchMint(ctx, token.Mint)
	if err != nil {
		return domain.CheckResult{}, err
	}
	if m.MintAuthority != nil {
		return domain.CheckResult{
			Status:  domain.StatusFail,
			Message: "mint authority is still active, supply can be inflated",
			Address: m.MintAuthority,
		}, nil
	}
	return domain.CheckResult{
		Status:  domain.StatusPass,
		Message: "mint authority revoked",
	}, nil
}

func (e *Engine) checkFreezeAuthority(ctx context.Context, token *domain.TokenInfo) (domain.CheckResult, error) {
	m, err := e.fetchMint(ctx, token.Mint)
	if err != nil {
		return domain.CheckResult{}, err
	}
	if m.FreezeAuthority != nil {
		return domain.CheckResult{
			Status:  domain.StatusFail,
			Message: "freeze authority is still active, holder accounts can be frozen",
			Address: m.FreezeAuthority,
		}, nil
	}
	return domain.CheckResult{
		Status:  domain.StatusPass,
		Message: "freeze authority revoked",
	}, nil
}

func (e *Engine) checkMetadata(ctx context.Context, token *domain.TokenInfo) (domain.CheckResult, error) {
	addr, err := solana.FindMetadataAddress(token.Mint)
	if err != nil {
		return domain.CheckResult{}, fmt.Errorf("derive metadata address: %w", err)
	}
	info, err := e.rpc.GetAccountInfo(ctx, addr)
	if err != nil {
		return domain.CheckResult{}, fmt.Errorf("fetch metadata account: %w", err)
	}
	if info == nil || len(info.Data) == 0 {
		return domain.CheckResult{
			Status:  domain.StatusWarning,
			Message: "no metadata account found for mint",
			Address: &addr,
		}, nil
	}
	return domain.CheckResult{
		Status:  domain.StatusPass,
		Message: "metadata account exists",
		Address: &addr,
	}, nil
}

// checkLiquidity reports unknown until pool accounts are resolved from the
// launch transaction. TODO: decode the Raydium AMM pool state once the
// extractor surfaces the pool address.
func (e *Engine) checkLiquidity(_ context.Context, _ *domain.TokenInfo) (domain.CheckResult, error) {
	return domain.CheckResult{
		Status:  domain.StatusUnknown,
		Message: "liquidity verification requires a resolved pool address",
	}, nil
}

func (e *Engine) checkTopHolders(ctx context.Context, token *domain.TokenInfo) (domain.CheckResult, error) {
	largest, err := e.rpc.GetTokenLargestAccounts(ctx, token.Mint)
	if err != nil {
		return domain.CheckResult{}, fmt.Errorf("fetch largest accounts: %w", err)
	}
	if len(largest) == 0 {
		return domain.CheckResult{
			Status:  domain.StatusUnknown,
			Message: "no holder accounts reported for mint",
		}, nil
	}

	supply, err := e.rpc.GetTokenSupply(ctx, token.Mint)
	if err != nil {
		return domain.CheckResult{}, fmt.Errorf("fetch token supply: %w", err)
	}
	if supply == nil {
		return domain.CheckResult{}, fmt.Errorf("no supply reported for mint %s", token.Mint)
	}

	total, err := strconv.ParseFloat(supply.Amount, 64)
	if err != nil || total <= 0 {
		return domain.CheckResult{}, fmt.Errorf("invalid supply amount %q", supply.Amount)
	}
	top, err := strconv.ParseFloat(largest[0].Amount, 64)
	if err != nil {
		return domain.CheckResult{}, fmt.Errorf("invalid holder amount %q", largest[0].Amount)
	}

	pct := top / total * 100
	if pct > e.cfg.MaxTopHolderPercent {
		return domain.CheckResult{
			Status:  domain.StatusFail,
			Message: fmt.Sprintf("top holder owns %.1f%% of supply (limit %.1f%%)", pct, e.cfg.MaxTopHolderPercent),
			Value:   &pct,
			Address: &largest[0].Address,
		}, nil
	}
	return domain.CheckResult{
		Status:  domain.StatusPass,
		Message: fmt.Sprintf("top holder owns %.1f%% of supply", pct),
		Value:   &pct,
		Address: &largest[0].Address,
	}, nil
}
