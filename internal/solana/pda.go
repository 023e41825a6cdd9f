package solana

import (
	"crypto/sha256"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// pdaMarker is appended to the hash input during PDA derivation.
const pdaMarker = "ProgramDerivedAddress"

// FindProgramAddress derives a Program Derived Address for the given seeds
// under programID, searching bump seeds from 255 downward until the derived
// point falls off the ed25519 curve.
func FindProgramAddress(seeds [][]byte, programID string) (string, error) {
	programBytes, err := base58.Decode(programID)
	if err != nil {
		return "", fmt.Errorf("decode program id: %w", err)
	}
	if len(programBytes) != 32 {
		return "", fmt.Errorf("program id is %d bytes, want 32", len(programBytes))
	}

	for bump := byte(255); bump > 0; bump-- {
		data := make([]byte, 0, 128)
		for _, seed := range seeds {
			data = append(data, seed...)
		}
		data = append(data, bump)
		data = append(data, programBytes...)
		data = append(data, []byte(pdaMarker)...)

		hash := sha256.Sum256(data)

		if !isOnCurve(hash[:]) {
			return base58.Encode(hash[:]), nil
		}
	}

	return "", fmt.Errorf("no valid bump seed found")
}

// FindMetadataAddress derives the Metaplex token metadata account for a mint.
// Seeds: ["metadata", metadata_program_id, mint] under the metadata program.
func FindMetadataAddress(mint string) (string, error) {
	mintBytes, err := base58.Decode(mint)
	if err != nil {
		return "", fmt.Errorf("decode mint: %w", err)
	}
	if len(mintBytes) != 32 {
		return "", fmt.Errorf("mint is %d bytes, want 32", len(mintBytes))
	}

	programBytes, err := base58.Decode(MetadataProgramID)
	if err != nil {
		return "", fmt.Errorf("decode metadata program id: %w", err)
	}

	seeds := [][]byte{
		[]byte("metadata"),
		programBytes,
		mintBytes,
	}

	return FindProgramAddress(seeds, MetadataProgramID)
}

// isOnCurve reports whether the 32-byte point decodes as a valid ed25519
// curve point. PDAs must be off-curve so no private key can exist for them.
func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
