package domain

// CheckStatus represents the outcome of a single safety check.
type CheckStatus string

const (
	StatusPass    CheckStatus = "pass"
	StatusFail    CheckStatus = "fail"
	StatusWarning CheckStatus = "warning"
	StatusError   CheckStatus = "error"
	StatusUnknown CheckStatus = "unknown"
)

// String returns the string representation of CheckStatus.
func (s CheckStatus) String() string {
	return string(s)
}

// IsValid checks if the status is a valid value.
func (s CheckStatus) IsValid() bool {
	switch s {
	case StatusPass, StatusFail, StatusWarning, StatusError, StatusUnknown:
		return true
	}
	return false
}

// Recommendation is the qualitative tier derived from the overall score.
type Recommendation string

const (
	RecommendationSafe    Recommendation = "SAFE"
	RecommendationCaution Recommendation = "CAUTION"
	RecommendationRisky   Recommendation = "RISKY"
	RecommendationDanger  Recommendation = "DANGER"
)

// String returns the string representation of Recommendation.
func (r Recommendation) String() string {
	return string(r)
}

// CheckResult is the outcome of one safety dimension.
type CheckResult struct {
	Status  CheckStatus
	Message string
	Value   *float64 // numeric detail (e.g. top-holder percent, nullable)
	Address *string  // address detail (e.g. remaining authority, nullable)
}

// SafetyReport aggregates the five check results with the derived score.
// All five slots are always populated: a check that cannot complete
// degrades to StatusError or StatusUnknown, it is never left unset.
type SafetyReport struct {
	MintAuthority   CheckResult
	FreezeAuthority CheckResult
	Metadata        CheckResult
	Liquidity       CheckResult
	TopHolders      CheckResult

	OverallScore   int // integer in [0,100]
	Recommendation Recommendation
}
