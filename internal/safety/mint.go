// Package safety runs on-chain safety checks against a token mint and
// folds the results into a weighted score and recommendation.
package safety

import (
	"encoding/binary"
	"fmt"

	"github.com/mr-tron/base58"

	"solana-token-sentinel/internal/solana"
)

// MintAccount is the decoded state of an SPL Token mint account.
type MintAccount struct {
	MintAuthority   *string // nil when revoked
	Supply          uint64
	Decimals        uint8
	IsInitialized   bool
	FreezeAuthority *string // nil when revoked
}

// ParseMintAccount decodes the 82-byte SPL Token mint layout:
// a COption<Pubkey> mint authority, u64 supply, u8 decimals, a bool
// initialized flag and a COption<Pubkey> freeze authority. COption is a
// u32 little-endian tag (0 = none, 1 = some) followed by the 32-byte key.
func ParseMintAccount(data []byte) (*MintAccount, error) {
	if len(data) != solana.MintAccountSize {
		return nil, fmt.Errorf("mint account data is %d bytes, want %d", len(data), solana.MintAccountSize)
	}

	m := &MintAccount{}

	mintAuthTag := binary.LittleEndian.Uint32(data[0:4])
	switch mintAuthTag {
	case 0:
	case 1:
		addr := base58.Encode(data[4:36])
		m.MintAuthority = &addr
	default:
		return nil, fmt.Errorf("invalid mint authority option tag %d", mintAuthTag)
	}

	m.Supply = binary.LittleEndian.Uint64(data[36:44])
	m.Decimals = data[44]
	m.IsInitialized = data[45] != 0

	freezeAuthTag := binary.LittleEndian.Uint32(data[46:50])
	switch freezeAuthTag {
	case 0:
	case 1:
		addr := base58.Encode(data[50:82])
		m.FreezeAuthority = &addr
	default:
		return nil, fmt.Errorf("invalid freeze authority option tag %d", freezeAuthTag)
	}

	return m, nil
}
