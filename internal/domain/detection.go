package domain

// DetectionRecord is a flattened assessment row for the append-only
// detection history log. Corresponds to token_detections in ClickHouse.
type DetectionRecord struct {
	Mint                  string
	Platform              string
	Signature             string
	Score                 int
	Recommendation        Recommendation
	MintAuthorityStatus   CheckStatus
	FreezeAuthorityStatus CheckStatus
	MetadataStatus        CheckStatus
	LiquidityStatus       CheckStatus
	TopHoldersStatus      CheckStatus
	TopHolderPercent      *float64 // nullable, absent when the check errored
	DetectedAt            int64    // Unix timestamp in milliseconds
}

// NewDetectionRecord flattens a monitored token into a history row.
func NewDetectionRecord(t *MonitoredToken) *DetectionRecord {
	return &DetectionRecord{
		Mint:                  t.TokenInfo.Mint,
		Platform:              t.Platform,
		Signature:             t.Signature,
		Score:                 t.Report.OverallScore,
		Recommendation:        t.Report.Recommendation,
		MintAuthorityStatus:   t.Report.MintAuthority.Status,
		FreezeAuthorityStatus: t.Report.FreezeAuthority.Status,
		MetadataStatus:        t.Report.Metadata.Status,
		LiquidityStatus:       t.Report.Liquidity.Status,
		TopHoldersStatus:      t.Report.TopHolders.Status,
		TopHolderPercent:      t.Report.TopHolders.Value,
		DetectedAt:            t.DetectedAt,
	}
}
