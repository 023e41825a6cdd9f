// Package pipeline contains the per-event stages between a classified
// launch notification and the safety check engine: transaction resolution
// and token info extraction.
package pipeline

import (
	"context"
	"fmt"

	"solana-token-sentinel/internal/solana"
)

// Resolver fetches the finalized transaction record for a launch event.
type Resolver struct {
	rpc solana.RPCClient
}

// NewResolver creates a new transaction resolver.
func NewResolver(rpc solana.RPCClient) *Resolver {
	return &Resolver{rpc: rpc}
}

// Resolve fetches the transaction for a signature at confirmed commitment.
// Returns (nil, nil) when the transaction is not found; a non-nil error is
// reported by the caller and treated the same as not found.
func (r *Resolver) Resolve(ctx context.Context, signature string) (*solana.Transaction, error) {
	tx, err := r.rpc.GetTransaction(ctx, signature)
	if err != nil {
		return nil, fmt.Errorf("get transaction %s: %w", signature, err)
	}
	return tx, nil
}
