package solana

import "context"

// Well-known program identifiers and account layouts.
const (
	// TokenProgramID is the SPL Token program.
	TokenProgramID = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	// MetadataProgramID is the Metaplex Token Metadata program.
	MetadataProgramID = "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s"
	// MintAccountSize is the byte size of an SPL Token mint account.
	MintAccountSize = 82
)

// RPCClient defines the Solana RPC HTTP interface consumed by the pipeline.
type RPCClient interface {
	// GetTransaction retrieves a transaction by signature at confirmed
	// commitment. Returns nil when the transaction is not found.
	GetTransaction(ctx context.Context, signature string) (*Transaction, error)

	// GetAccountInfo retrieves account state for an address.
	// Returns nil when the account does not exist.
	GetAccountInfo(ctx context.Context, pubkey string) (*AccountInfo, error)

	// GetTokenLargestAccounts retrieves the largest holder accounts for a mint.
	GetTokenLargestAccounts(ctx context.Context, mint string) ([]TokenAccountBalance, error)

	// GetTokenSupply retrieves the total supply of a mint.
	GetTokenSupply(ctx context.Context, mint string) (*TokenAmount, error)
}

// Transaction represents a Solana transaction.
type Transaction struct {
	Slot      int64
	Signature string
	BlockTime int64 // Unix timestamp (seconds)
	Meta      *TransactionMeta
	Message   *TransactionMessage
}

// TransactionMeta contains transaction metadata.
type TransactionMeta struct {
	Err         interface{}
	LogMessages []string
}

// TransactionMessage contains the parsed transaction message.
type TransactionMessage struct {
	AccountKeys []string
}

// AccountInfo represents Solana account state.
type AccountInfo struct {
	Lamports   uint64
	Owner      string
	Data       []byte // raw account data, base64-decoded
	Executable bool
	RentEpoch  uint64
}

// TokenAmount is a raw token amount with its decimal scale.
type TokenAmount struct {
	Amount   string // raw integer amount as string (u64 range)
	Decimals int
	UIAmount float64
}

// TokenAccountBalance is one entry from getTokenLargestAccounts.
type TokenAccountBalance struct {
	Address string
	TokenAmount
}
