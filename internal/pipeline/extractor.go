package pipeline

import (
	"context"
	"log"

	"solana-token-sentinel/internal/domain"
	"solana-token-sentinel/internal/solana"
)

// Extractor identifies the token mint involved in a launch transaction
// by inspecting the accounts referenced in its message.
type Extractor struct {
	rpc    solana.RPCClient
	logger *log.Logger
}

// NewExtractor creates a new token extractor.
func NewExtractor(rpc solana.RPCClient, logger *log.Logger) *Extractor {
	if logger == nil {
		logger = log.Default()
	}
	return &Extractor{rpc: rpc, logger: logger}
}

// Extract scans the transaction's account keys in order and returns the
// first account that is an SPL token mint: owned by the token program and
// exactly the mint account size. Accounts that fail to fetch are skipped.
// Returns (nil, nil) when no mint account is found.
//
// The transaction's fee payer (the first account key) is recorded as the
// creator. The pool address is not derivable from account inspection alone
// and is left unset.
func (e *Extractor) Extract(ctx context.Context, tx *solana.Transaction) (*domain.TokenInfo, error) {
	if tx == nil || tx.Message == nil || len(tx.Message.AccountKeys) == 0 {
		return nil, nil
	}

	keys := tx.Message.AccountKeys
	creator := keys[0]

	for _, key := range keys {
		acct, err := e.rpc.GetAccountInfo(ctx, key)
		if err != nil {
			e.logger.Printf("[extractor] account %s fetch failed, skipping: %v", key, err)
			continue
		}
		if acct == nil {
			continue
		}
		if acct.Owner == solana.TokenProgramID && len(acct.Data) == solana.MintAccountSize {
			return &domain.TokenInfo{
				Mint:    key,
				Creator: &creator,
			}, nil
		}
	}
	return nil, nil
}
