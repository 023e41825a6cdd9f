package domain

// TokenInfo identifies a token extracted from a launch transaction.
type TokenInfo struct {
	Mint    string  // token mint address, always set
	Pool    *string // pool address (nullable, resolution not implemented)
	Creator *string // fee-payer/signer of the launch transaction (nullable)
}

// MonitoredToken is a fully assessed token held by the registry.
// Owned exclusively by the registry once inserted.
type MonitoredToken struct {
	TokenInfo  TokenInfo
	Report     SafetyReport
	Signature  string // transaction signature of the detection
	Platform   string // platform label (e.g. "Raydium", "PumpFun")
	DetectedAt int64  // Unix timestamp in milliseconds
}
