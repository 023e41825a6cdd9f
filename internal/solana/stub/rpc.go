package stub

import (
	"context"
	"errors"
	"sync"

	"solana-token-sentinel/internal/solana"
)

// RPCClient implements solana.RPCClient for testing. Lookups against
// addresses with a configured error return that error; unknown addresses
// behave as not-found (nil, nil), matching the real client.
type RPCClient struct {
	mu sync.Mutex

	Transactions    map[string]*solana.Transaction
	Accounts        map[string]*solana.AccountInfo
	LargestAccounts map[string][]solana.TokenAccountBalance
	Supplies        map[string]*solana.TokenAmount
	Errors          map[string]error // per-address/signature injected failures
}

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		Transactions:    make(map[string]*solana.Transaction),
		Accounts:        make(map[string]*solana.AccountInfo),
		LargestAccounts: make(map[string][]solana.TokenAccountBalance),
		Supplies:        make(map[string]*solana.TokenAmount),
		Errors:          make(map[string]error),
	}
}

// GetTransaction retrieves a transaction by signature from the stub store.
func (c *RPCClient) GetTransaction(_ context.Context, signature string) (*solana.Transaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.Errors[signature]; err != nil {
		return nil, err
	}
	return c.Transactions[signature], nil
}

// GetAccountInfo retrieves account state from the stub store.
func (c *RPCClient) GetAccountInfo(_ context.Context, pubkey string) (*solana.AccountInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.Errors[pubkey]; err != nil {
		return nil, err
	}
	return c.Accounts[pubkey], nil
}

// GetTokenLargestAccounts retrieves largest holders from the stub store.
func (c *RPCClient) GetTokenLargestAccounts(_ context.Context, mint string) ([]solana.TokenAccountBalance, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.Errors["largest:"+mint]; err != nil {
		return nil, err
	}
	return c.LargestAccounts[mint], nil
}

// GetTokenSupply retrieves a mint supply from the stub store.
func (c *RPCClient) GetTokenSupply(_ context.Context, mint string) (*solana.TokenAmount, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.Errors["supply:"+mint]; err != nil {
		return nil, err
	}
	return c.Supplies[mint], nil
}

// AddTransaction adds a transaction to the stub store.
func (c *RPCClient) AddTransaction(tx *solana.Transaction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Transactions[tx.Signature] = tx
}

// AddAccount adds account state for an address to the stub store.
func (c *RPCClient) AddAccount(pubkey string, info *solana.AccountInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Accounts[pubkey] = info
}

// FailWith injects an error for a given key: an address, a signature,
// "largest:<mint>" or "supply:<mint>".
func (c *RPCClient) FailWith(key string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Errors[key] = err
}

// ErrUnavailable is a generic injectable transport error.
var ErrUnavailable = errors.New("rpc unavailable")

// Compile-time interface check.
var _ solana.RPCClient = (*RPCClient)(nil)
