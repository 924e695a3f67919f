package pricing

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ZoneEconomics is the full realized economics of one zone at the shared
// listing price. Before- and after-refund figures are always produced
// together; downstream consumers compare both.
type ZoneEconomics struct {
	ZoneCode string   `json:"zone_code"`
	ZoneName string   `json:"zone_name"`
	ZoneType ZoneType `json:"zone_type"`

	ProductPriceUSD    float64 `json:"product_price_usd"`
	DisplayShippingUSD float64 `json:"display_shipping_usd"`
	HandlingFeeUSD     float64 `json:"handling_fee_usd"`
	TotalRevenueUSD    float64 `json:"total_revenue_usd"`

	Costs             CostBreakdown `json:"costs"`
	MarketplaceFeeUSD float64       `json:"marketplace_fee_usd"`
	ProcessingFeeUSD  float64       `json:"processing_fee_usd"`
	CurrencyLossUSD   float64       `json:"currency_loss_usd"`
	TotalCostsUSD     float64       `json:"total_costs_usd"`

	ProfitUSD    float64 `json:"profit_usd"`
	ProfitMargin float64 `json:"profit_margin"`
	ROI          float64 `json:"roi"`

	// ShippingRefund flows one way only: it exists when the carrier billed
	// more than the buyer was charged, and the marketplace fee paid on that
	// shortfall is recoverable with it.
	ShippingRefundUSD float64 `json:"shipping_refund_usd"`
	FeeRefundUSD      float64 `json:"fee_refund_usd"`
	TotalRefundUSD    float64 `json:"total_refund_usd"`

	ProfitWithRefundUSD    float64 `json:"profit_with_refund_usd"`
	ProfitMarginWithRefund float64 `json:"profit_margin_with_refund"`

	// ProfitWithRefundOrigin is the after-refund profit converted back to
	// the origin currency, which is what the classifier's absolute floor is
	// expressed in.
	ProfitWithRefundOrigin float64 `json:"profit_with_refund_origin"`

	// Deficit is a hard do-not-list signal, not a low-confidence warning.
	Deficit bool `json:"deficit"`

	Tier Tier `json:"tier"`
}

// evaluateZone re-derives the complete economics of one zone at the solved
// price. Pure arithmetic; no failure mode.
func evaluateZone(in costInputs, policy ShippingPolicy, zone Zone, priceUSD, exchangeRate float64) ZoneEconomics {
	costs := buildCosts(in, policy, zone)

	revenue := priceUSD + zone.DisplayShippingUSD + policy.HandlingFeeUSD
	marketplaceFee := revenue * costs.FVFRate
	processingFee := revenue * costs.ProcessingRate
	currencyLoss := revenue * costs.CurrencyLossRate
	totalCosts := costs.FixedUSD + marketplaceFee + processingFee + currencyLoss
	profit := revenue - totalCosts

	margin := 0.0
	if revenue != 0 {
		margin = profit / revenue
	}
	roi := 0.0
	if in.sourcingUSD > 0 {
		roi = profit / in.sourcingUSD
	}

	shippingRefund := zone.ActualShippingUSD - zone.DisplayShippingUSD
	if shippingRefund < 0 {
		shippingRefund = 0
	}
	feeRefund := shippingRefund * costs.FVFRate
	totalRefund := shippingRefund + feeRefund

	profitWithRefund := profit + totalRefund
	marginWithRefund := 0.0
	if revenue != 0 {
		marginWithRefund = profitWithRefund / revenue
	}

	return ZoneEconomics{
		ZoneCode:           zone.Code,
		ZoneName:           zone.Name,
		ZoneType:           zone.Type,
		ProductPriceUSD:    priceUSD,
		DisplayShippingUSD: zone.DisplayShippingUSD,
		HandlingFeeUSD:     policy.HandlingFeeUSD,
		TotalRevenueUSD:    revenue,
		Costs:              costs,
		MarketplaceFeeUSD:  marketplaceFee,
		ProcessingFeeUSD:   processingFee,
		CurrencyLossUSD:    currencyLoss,
		TotalCostsUSD:      totalCosts,
		ProfitUSD:          profit,
		ProfitMargin:       margin,
		ROI:                roi,

		ShippingRefundUSD:      shippingRefund,
		FeeRefundUSD:           feeRefund,
		TotalRefundUSD:         totalRefund,
		ProfitWithRefundUSD:    profitWithRefund,
		ProfitMarginWithRefund: marginWithRefund,
		ProfitWithRefundOrigin: profitWithRefund * exchangeRate,

		Deficit: profit < 0,
	}
}

// evaluatePolicy maps evaluateZone over every zone of the policy at the
// shared solved price. Zones are independent given the price, so they run
// in parallel; results land in zone order. The price must be final before
// this is called, since all zones share one listing price.
func evaluatePolicy(ctx context.Context, in costInputs, policy ShippingPolicy, priceUSD, exchangeRate float64, rules []TierRule) ([]ZoneEconomics, error) {
	if len(policy.Zones) == 0 {
		return nil, ErrNoZones
	}

	results := make([]ZoneEconomics, len(policy.Zones))
	g, _ := errgroup.WithContext(ctx)

	for i, zone := range policy.Zones {
		i, zone := i, zone
		g.Go(func() error {
			e := evaluateZone(in, policy, zone, priceUSD, exchangeRate)
			e.Tier = Classify(e.ProfitMarginWithRefund, e.ROI, e.ProfitWithRefundOrigin, rules)
			results[i] = e
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
