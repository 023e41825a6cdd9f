package discovery

import (
	"strings"

	"solana-token-sentinel/internal/solana"
)

// Known DEX program IDs.
const (
	// RaydiumAMMV4 is the Raydium AMM v4 program ID.
	RaydiumAMMV4 = "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8"
	// PumpFun is the pump.fun program ID.
	PumpFun = "6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P"
)

// DefaultInitKeywords are the substrings that mark a notification as a
// pool-initialization candidate. Deliberately broad: false positives are
// absorbed downstream when no mint can be extracted.
var DefaultInitKeywords = []string{"initialize", "init", "create"}

// LaunchClassifier decides whether a log notification looks like a
// pool-creation transaction. Implementations must be safe for concurrent
// use; the subscriber calls Match from multiple goroutines.
type LaunchClassifier interface {
	Match(notif solana.LogNotification) bool
}

// KeywordClassifier matches notifications whose concatenated, lowercased
// log lines contain any of the configured keywords. It is a stand-in for
// structured instruction-discriminator decoding.
type KeywordClassifier struct {
	keywords []string
}

// NewKeywordClassifier creates a classifier for the given keyword set.
// Keywords are lowercased once at construction; an empty set falls back
// to DefaultInitKeywords.
func NewKeywordClassifier(keywords []string) *KeywordClassifier {
	if len(keywords) == 0 {
		keywords = DefaultInitKeywords
	}

	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		lowered[i] = strings.ToLower(kw)
	}

	return &KeywordClassifier{keywords: lowered}
}

// Match reports whether any configured keyword appears in the notification
// logs. Notifications for failed transactions never match.
func (c *KeywordClassifier) Match(notif solana.LogNotification) bool {
	if notif.Err != nil {
		return false
	}
	if len(notif.Logs) == 0 {
		return false
	}

	joined := strings.ToLower(strings.Join(notif.Logs, "\n"))
	for _, kw := range c.keywords {
		if strings.Contains(joined, kw) {
			return true
		}
	}
	return false
}

// Compile-time interface check.
var _ LaunchClassifier = (*KeywordClassifier)(nil)
