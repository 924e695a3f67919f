package pricing_test

import (
	"context"
	"testing"

	"github.com/resellkit/pricing/pkg/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func testEngine() *pricing.Engine {
	return pricing.New(testCatalog(), pricing.Options{}, otelzap.New(zap.NewNop()), nil)
}

func usDDPPolicy() pricing.ShippingPolicy {
	return pricing.ShippingPolicy{
		Name:           "USA DDP 1.0-1.5kg",
		Basis:          pricing.BasisDDP,
		DDP:            &pricing.DDPTerms{DutiableZoneType: pricing.ZoneDomestic},
		Carrier:        "cpass",
		HandlingFeeUSD: 5,
		Zones: []pricing.Zone{
			{Code: "US", Name: "United States", Type: pricing.ZoneDomestic, DisplayShippingUSD: 25, ActualShippingUSD: 20},
			{Code: "EU", Name: "Europe", Type: pricing.ZoneWorld, DisplayShippingUSD: 30, ActualShippingUSD: 28},
			{Code: "AS", Name: "Asia", Type: pricing.ZoneWorld, DisplayShippingUSD: 18, ActualShippingUSD: 22},
		},
	}
}

func testRequest() pricing.Request {
	return pricing.Request{
		Item: pricing.Item{
			CostOrigin:    15000,
			WeightKg:      1.0,
			HSCode:        "9503.00.00",
			OriginCountry: "JP",
		},
		Policies:     []pricing.ShippingPolicy{usDDPPolicy()},
		StoreTier:    pricing.TierNone,
		TargetMargin: 0.15,
		ExchangeRate: 150,
	}
}

func TestEngine_Price_HitsTargetMarginAtReferenceZone(t *testing.T) {
	res, err := testEngine().Price(context.Background(), testRequest())
	require.NoError(t, err)

	chosen := res.Chosen()
	assert.Zero(t, int64(chosen.Solved.ProductPriceUSD)%5, "price floored to the increment")

	var ref *pricing.ZoneResult
	for i := range chosen.Zones {
		if chosen.Zones[i].ZoneCode == chosen.Solved.ReferenceZoneCode {
			ref = &chosen.Zones[i]
		}
	}
	require.NotNil(t, ref)

	// Re-deriving the reference zone at the floored price lands within one
	// price increment of the requested margin.
	tolerance := 5.0 / ref.TotalRevenueUSD
	assert.InDelta(t, 0.15, ref.ProfitMargin, tolerance)
	assert.LessOrEqual(t, ref.ProfitMargin, 0.15+1e-9,
		"flooring can only leave margin at or below the exact solution")
}

func TestEngine_Price_EveryZoneEvaluated(t *testing.T) {
	res, err := testEngine().Price(context.Background(), testRequest())
	require.NoError(t, err)

	chosen := res.Chosen()
	require.Len(t, chosen.Zones, 3)
	for _, z := range chosen.Zones {
		assert.Equal(t, chosen.Solved.ProductPriceUSD, z.ProductPriceUSD,
			"a single listing price applies uniformly across zones")
		assert.NotEmpty(t, z.Tier)
		assert.NotEmpty(t, z.Trace, "every zone carries its audit trace")
	}

	// Duty only at the domestic zone of a DDP policy.
	assert.True(t, chosen.Zones[0].Costs.Dutiable)
	assert.False(t, chosen.Zones[1].Costs.Dutiable)
	assert.False(t, chosen.Zones[2].Costs.Dutiable)

	require.NotNil(t, res.Tariff)
	assert.InDelta(t, 0.065, res.Tariff.BaseRate, 1e-9)
	assert.NotEmpty(t, res.ID)
}

func TestEngine_Price_Deterministic(t *testing.T) {
	eng := testEngine()

	a, err := eng.Price(context.Background(), testRequest())
	require.NoError(t, err)
	b, err := eng.Price(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, a.Chosen().Solved, b.Chosen().Solved)
	for i := range a.Chosen().Zones {
		assert.Equal(t, a.Chosen().Zones[i].ZoneEconomics, b.Chosen().Zones[i].ZoneEconomics)
	}
}

func TestEngine_Price_MarginMonotonicInTarget(t *testing.T) {
	eng := testEngine()

	prev := -1.0
	for _, target := range []float64{0.05, 0.15, 0.25, 0.40} {
		req := testRequest()
		req.TargetMargin = target
		res, err := eng.Price(context.Background(), req)
		require.NoError(t, err)
		price := res.Chosen().Solved.ProductPriceUSD
		assert.GreaterOrEqual(t, price, prev)
		prev = price
	}
}

func TestEngine_Price_DDURequestNeedsNoTariffData(t *testing.T) {
	req := testRequest()
	req.Item.HSCode = "" // no HS mapping at all
	req.Item.OriginCountry = ""
	req.Policies = []pricing.ShippingPolicy{{
		Name:    "DDU worldwide",
		Basis:   pricing.BasisDDU,
		Carrier: "jppost",
		Zones: []pricing.Zone{
			{Code: "FH", Name: "Europe Heavy", Type: pricing.ZoneWorld, DisplayShippingUSD: 35, ActualShippingUSD: 40},
			{Code: "AS", Name: "Asia", Type: pricing.ZoneWorld, DisplayShippingUSD: 20, ActualShippingUSD: 15},
		},
	}}

	res, err := testEngine().Price(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, res.Tariff)
	assert.Equal(t, "FH", res.Chosen().Solved.ReferenceZoneCode,
		"DDU reference is the zone with the largest carrier cost")
}

func TestEngine_Price_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*pricing.Request)
		want   error
	}{
		{
			"non-positive cost",
			func(r *pricing.Request) { r.Item.CostOrigin = 0 },
			pricing.ErrInvalidInput,
		},
		{
			"non-positive weight",
			func(r *pricing.Request) { r.Item.WeightKg = -1 },
			pricing.ErrInvalidInput,
		},
		{
			"unknown store tier",
			func(r *pricing.Request) { r.StoreTier = pricing.TierAnchor },
			pricing.ErrMissingRateData,
		},
		{
			"unknown HS code under DDP",
			func(r *pricing.Request) { r.Item.HSCode = "6402.99.31" },
			pricing.ErrMissingRateData,
		},
		{
			"infeasible margin",
			func(r *pricing.Request) { r.TargetMargin = 0.90 },
			pricing.ErrInfeasibleMargin,
		},
		{
			"policy without zones",
			func(r *pricing.Request) { r.Policies[0].Zones = nil },
			pricing.ErrNoZones,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testRequest()
			tt.mutate(&req)
			res, err := testEngine().Price(context.Background(), req)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, res, "errors must block the whole result, never partial zones")
		})
	}
}

func TestEngine_Price_WeightBandFiltering(t *testing.T) {
	light := usDDPPolicy()
	light.Name = "light band"
	light.MaxWeightKg = 0.5

	heavy := usDDPPolicy()
	heavy.Name = "heavy band"
	heavy.MinWeightKg = 0.5
	heavy.MaxWeightKg = 2.0
	for i := range heavy.Zones {
		heavy.Zones[i].ActualShippingUSD += 10
		heavy.Zones[i].DisplayShippingUSD += 10
	}

	req := testRequest() // 1.0 kg
	req.Policies = []pricing.ShippingPolicy{light, heavy}

	res, err := testEngine().Price(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "heavy band", res.Selection.ChosenPolicy,
		"the light band cannot carry a 1.0 kg item")

	req.Item.WeightKg = 5
	_, err = testEngine().Price(context.Background(), req)
	assert.ErrorIs(t, err, pricing.ErrNoPolicies)
}

func TestEngine_Price_VolumetricWeightSelectsBand(t *testing.T) {
	small := usDDPPolicy()
	small.Name = "small band"
	small.MaxWeightKg = 2

	big := usDDPPolicy()
	big.Name = "big band"
	big.MinWeightKg = 2
	big.MaxWeightKg = 20

	req := testRequest()
	req.Policies = []pricing.ShippingPolicy{small, big}
	// 1 kg physical but 60000 cm3: 12 kg chargeable at divisor 5000.
	req.Item.LengthCm, req.Item.WidthCm, req.Item.HeightCm = 50, 40, 30

	res, err := testEngine().Price(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "big band", res.Selection.ChosenPolicy)
	assert.InDelta(t, 12, res.ChargeableWeightKg, 1e-9)
}

func TestEngine_Price_CheapestPolicyWinsUnlessStrictlyWorse(t *testing.T) {
	cheap := pricing.ShippingPolicy{
		Name:    "cheap",
		Basis:   pricing.BasisDDU,
		Carrier: "jppost",
		Zones: []pricing.Zone{
			// Over-charges shipping: no refund potential.
			{Code: "Z1", Name: "Zone 1", Type: pricing.ZoneWorld, DisplayShippingUSD: 30, ActualShippingUSD: 20},
		},
	}
	costly := pricing.ShippingPolicy{
		Name:    "costly",
		Basis:   pricing.BasisDDU,
		Carrier: "jppost",
		Zones: []pricing.Zone{
			// Under-charges shipping: a 20 USD refund flows back post-sale.
			{Code: "Z1", Name: "Zone 1", Type: pricing.ZoneWorld, DisplayShippingUSD: 5, ActualShippingUSD: 25},
		},
	}

	req := testRequest()
	req.Item.HSCode, req.Item.OriginCountry = "", ""
	req.Policies = []pricing.ShippingPolicy{cheap, costly}

	res, err := testEngine().Price(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "cheap", res.Selection.CheapestPolicy)
	assert.Equal(t, "costly", res.Selection.ChosenPolicy)
	assert.True(t, res.Selection.Overridden)
	assert.NotEmpty(t, res.Selection.Reason)
	require.Len(t, res.Candidates, 2, "both candidates fully evaluated for audit")
}

func TestEngine_Price_IdenticalCandidatesKeepCheapest(t *testing.T) {
	a := usDDPPolicy()
	a.Name = "policy-a"
	b := usDDPPolicy()
	b.Name = "policy-b"

	req := testRequest()
	req.Policies = []pricing.ShippingPolicy{a, b}

	res, err := testEngine().Price(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, res.Selection.Overridden, "ties go to the cheapest candidate")
	assert.Equal(t, res.Selection.CheapestPolicy, res.Selection.ChosenPolicy)
}

func TestEngine_Price_DeficitZoneFlagged(t *testing.T) {
	policy := usDDPPolicy()
	// A zone whose carrier cost dwarfs anything the price can recover.
	policy.Zones = append(policy.Zones, pricing.Zone{
		Code: "XX", Name: "Remote", Type: pricing.ZoneWorld,
		DisplayShippingUSD: 5, ActualShippingUSD: 500,
	})

	req := testRequest()
	req.Policies = []pricing.ShippingPolicy{policy}

	res, err := testEngine().Price(context.Background(), req)
	require.NoError(t, err, "an unprofitable zone is a result, not an error")

	var remote *pricing.ZoneResult
	for i := range res.Chosen().Zones {
		if res.Chosen().Zones[i].ZoneCode == "XX" {
			remote = &res.Chosen().Zones[i]
		}
	}
	require.NotNil(t, remote)
	assert.Negative(t, remote.ProfitUSD)
	assert.True(t, remote.Deficit)
	assert.Equal(t, pricing.TierDanger, remote.Tier)
	assert.True(t, res.HasDeficitZone())
}

func TestEngine_PriceBatch(t *testing.T) {
	good := testRequest()
	bad := testRequest()
	bad.Item.CostOrigin = -1

	items := testEngine().PriceBatch(context.Background(), []pricing.Request{good, bad, good})
	require.Len(t, items, 3)

	assert.NoError(t, items[0].Err)
	assert.NotNil(t, items[0].Result)
	assert.ErrorIs(t, items[1].Err, pricing.ErrInvalidInput)
	assert.Nil(t, items[1].Result)
	assert.NoError(t, items[2].Err)
}
