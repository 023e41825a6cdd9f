package domain

// TokenSummary is one registry entry in a stats snapshot.
type TokenSummary struct {
	Mint           string
	Score          int
	Recommendation Recommendation
	Platform       string
	DetectedAt     int64 // Unix timestamp in milliseconds
}

// RegistryStats is a point-in-time snapshot of the token registry.
// Entries are in insertion order; no ordering is guaranteed beyond that.
type RegistryStats struct {
	TotalCount int
	Entries    []TokenSummary
}
