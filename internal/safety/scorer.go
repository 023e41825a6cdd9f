package safety

import (
	"math"

	"solana-token-sentinel/internal/domain"
)

// Check weights, totalling 100. Authority checks dominate because a live
// mint or freeze authority is the most direct rug vector.
const (
	weightMintAuthority   = 30.0
	weightFreezeAuthority = 30.0
	weightMetadata        = 10.0
	weightLiquidity       = 15.0
	weightTopHolders      = 15.0
)

// contribution maps a check status to its share of the check's weight:
// a pass earns full weight, an indeterminate result (warning or unknown)
// earns half, a fail or errored check earns nothing.
func contribution(status domain.CheckStatus, weight float64) float64 {
	switch status {
	case domain.StatusPass:
		return weight
	case domain.StatusWarning, domain.StatusUnknown:
		return weight / 2
	default:
		return 0
	}
}

// Score computes the weighted overall score and recommendation tier for a
// report. The score is rounded half away from zero and clamped to [0,100].
func Score(r *domain.SafetyReport) (int, domain.Recommendation) {
	total := contribution(r.MintAuthority.Status, weightMintAuthority) +
		contribution(r.FreezeAuthority.Status, weightFreezeAuthority) +
		contribution(r.Metadata.Status, weightMetadata) +
		contribution(r.Liquidity.Status, weightLiquidity) +
		contribution(r.TopHolders.Status, weightTopHolders)

	score := int(math.Round(total))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, RecommendationForScore(score)
}

// RecommendationForScore maps an overall score onto its tier.
func RecommendationForScore(score int) domain.Recommendation {
	switch {
	case score >= 80:
		return domain.RecommendationSafe
	case score >= 60:
		return domain.RecommendationCaution
	case score >= 40:
		return domain.RecommendationRisky
	default:
		return domain.RecommendationDanger
	}
}
