package pricing_test

import (
	"testing"

	"github.com/resellkit/pricing/pkg/pricing"
	"github.com/stretchr/testify/assert"
)

func defaultRules() []pricing.TierRule {
	return pricing.DefaultClassifierConfig(0.15).Rules()
}

func TestClassify_Tiers(t *testing.T) {
	rules := defaultRules()

	tests := []struct {
		name         string
		margin       float64
		roi          float64
		profitOrigin float64
		want         pricing.Tier
	}{
		{"clears every excellent threshold", 0.25, 0.60, 5000, pricing.TierExcellent},
		{"excellent margin but good ROI", 0.25, 0.40, 5000, pricing.TierGood},
		{"target margin and good ROI", 0.15, 0.30, 3000, pricing.TierGood},
		{"acceptable on all three", 0.12, 0.25, 3500, pricing.TierAcceptable},
		{"profit floor only", 0.05, 0.10, 3200, pricing.TierWarning},
		{"below profit floor", 0.30, 0.80, 2999, pricing.TierDanger},
		{"negative profit", 0.10, 0.15, -120, pricing.TierDanger},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pricing.Classify(tt.margin, tt.roi, tt.profitOrigin, rules)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_NegativeProfitIsAlwaysDanger(t *testing.T) {
	rules := defaultRules()

	// No margin or ROI value rescues a zone below the profit floor.
	for _, margin := range []float64{-0.5, 0, 0.2, 0.9} {
		for _, roi := range []float64{-1, 0, 0.5, 3} {
			got := pricing.Classify(margin, roi, -120, rules)
			assert.Equal(t, pricing.TierDanger, got,
				"margin=%.2f roi=%.2f", margin, roi)
		}
	}
}

func TestClassify_FirstMatchWins(t *testing.T) {
	rules := defaultRules()

	// A zone clearing the excellent row also clears good and acceptable;
	// it must land on exactly the first matching tier.
	got := pricing.Classify(0.30, 0.70, 10000, rules)
	assert.Equal(t, pricing.TierExcellent, got)
}

func TestClassify_RequiresAllThreeThresholds(t *testing.T) {
	rules := defaultRules()

	// Each single failing criterion demotes the zone out of excellent.
	assert.NotEqual(t, pricing.TierExcellent, pricing.Classify(0.19, 0.70, 10000, rules))
	assert.NotEqual(t, pricing.TierExcellent, pricing.Classify(0.30, 0.49, 10000, rules))
	assert.NotEqual(t, pricing.TierExcellent, pricing.Classify(0.30, 0.70, 2000, rules))
}

func TestClassify_ThresholdsAreConfiguration(t *testing.T) {
	cfg := pricing.DefaultClassifierConfig(0.15)
	cfg.ProfitFloorOrigin = 500
	cfg.ExcellentMargin = 0.10
	cfg.ExcellentROI = 0.10

	got := pricing.Classify(0.12, 0.15, 600, cfg.Rules())
	assert.Equal(t, pricing.TierExcellent, got)
}

func TestClassify_EmptyRulesFallThroughToDanger(t *testing.T) {
	assert.Equal(t, pricing.TierDanger, pricing.Classify(0.5, 0.5, 1e6, nil))
}

func TestDefaultClassifierConfig_TargetMarginFlowsIntoGoodTier(t *testing.T) {
	rules := pricing.DefaultClassifierConfig(0.25).Rules()

	// At target 25%, a 20% margin no longer qualifies as good even though
	// it clears the stock excellent-margin value.
	got := pricing.Classify(0.20, 0.35, 4000, rules)
	assert.Equal(t, pricing.TierAcceptable, got)
}
