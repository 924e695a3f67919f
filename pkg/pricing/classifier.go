package pricing

import "math"

// Tier is the profitability bucket assigned to a zone.
type Tier string

const (
	TierExcellent  Tier = "excellent"
	TierGood       Tier = "good"
	TierAcceptable Tier = "acceptable"
	TierWarning    Tier = "warning"
	TierDanger     Tier = "danger"
)

// noThreshold disables a check in a TierRule.
var noThreshold = math.Inf(-1)

// TierRule is one row of the ordered classification table. A zone qualifies
// only when it clears every enabled threshold; rules are evaluated top-down
// and the first match wins.
type TierRule struct {
	Label Tier
	// MinMargin and MinROI are fractions; MinProfitOrigin is an absolute
	// after-refund profit floor in the seller's home currency. -Inf
	// disables a check.
	MinMargin       float64
	MinROI          float64
	MinProfitOrigin float64
}

func (r TierRule) matches(margin, roi, profitOrigin float64) bool {
	return margin >= r.MinMargin && roi >= r.MinROI && profitOrigin >= r.MinProfitOrigin
}

// ClassifierConfig holds the tier thresholds. Thresholds are data; the
// ordered AND-of-three evaluation is the structural contract.
type ClassifierConfig struct {
	TargetMargin      float64 `json:"target_margin"`
	ExcellentMargin   float64 `json:"excellent_margin"`
	AcceptableMargin  float64 `json:"acceptable_margin"`
	ExcellentROI      float64 `json:"excellent_roi"`
	GoodROI           float64 `json:"good_roi"`
	AcceptableROI     float64 `json:"acceptable_roi"`
	ProfitFloorOrigin float64 `json:"profit_floor_origin"`
}

// DefaultClassifierConfig returns the stock thresholds: 20%/50%, target/30%,
// 10%/20%, with a 3000-unit absolute profit floor.
func DefaultClassifierConfig(targetMargin float64) ClassifierConfig {
	return ClassifierConfig{
		TargetMargin:      targetMargin,
		ExcellentMargin:   0.20,
		AcceptableMargin:  0.10,
		ExcellentROI:      0.50,
		GoodROI:           0.30,
		AcceptableROI:     0.20,
		ProfitFloorOrigin: 3000,
	}
}

// Rules expands the config into the ordered rule list. Danger is the
// catch-all and is implicit: Classify falls through to it.
func (c ClassifierConfig) Rules() []TierRule {
	return []TierRule{
		{Label: TierExcellent, MinMargin: c.ExcellentMargin, MinROI: c.ExcellentROI, MinProfitOrigin: c.ProfitFloorOrigin},
		{Label: TierGood, MinMargin: c.TargetMargin, MinROI: c.GoodROI, MinProfitOrigin: c.ProfitFloorOrigin},
		{Label: TierAcceptable, MinMargin: c.AcceptableMargin, MinROI: c.AcceptableROI, MinProfitOrigin: c.ProfitFloorOrigin},
		{Label: TierWarning, MinMargin: noThreshold, MinROI: noThreshold, MinProfitOrigin: c.ProfitFloorOrigin},
	}
}

// Classify assigns the first tier whose every threshold the zone clears.
// Inputs are the after-refund margin (fraction), ROI (fraction), and
// after-refund absolute profit in the origin currency. A zone clearing no
// rule is danger, which also covers all negative-profit zones.
func Classify(margin, roi, profitOrigin float64, rules []TierRule) Tier {
	for _, r := range rules {
		if r.matches(margin, roi, profitOrigin) {
			return r.Label
		}
	}
	return TierDanger
}
