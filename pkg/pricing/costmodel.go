package pricing

import "fmt"

// CostBreakdown is the fixed-cost vector and variable-rate vector for one
// zone of one policy, in USD. Fixed costs are spent regardless of the sale
// price; variable costs scale with total revenue.
type CostBreakdown struct {
	SourcingUSD       float64 `json:"sourcing_usd"`
	ActualShippingUSD float64 `json:"actual_shipping_usd"`
	// DutyableValueUSD is the CIF-style customs base: sourcing cost plus
	// the actual carrier cost into the zone.
	DutyableValueUSD float64 `json:"dutyable_value_usd"`
	TariffUSD        float64 `json:"tariff_usd"`
	ImportTaxUSD     float64 `json:"import_tax_usd"`
	MPFUSD           float64 `json:"mpf_usd"`
	DDPSurchargeUSD  float64 `json:"ddp_surcharge_usd"`
	InsertionFeeUSD  float64 `json:"insertion_fee_usd"`
	OverheadUSD      float64 `json:"overhead_usd"`
	FixedUSD         float64 `json:"fixed_usd"`

	FVFRate          float64 `json:"fvf_rate"`
	ProcessingRate   float64 `json:"processing_rate"`
	CurrencyLossRate float64 `json:"currency_loss_rate"`
	VariableRate     float64 `json:"variable_rate"`

	// Dutiable records whether duty applied to this zone.
	Dutiable bool `json:"dutiable"`
}

// costInputs is the currency-normalized slice of a Request shared by every
// zone computation.
type costInputs struct {
	sourcingUSD float64
	overheadUSD float64
	tariff      TariffRule
	fees        FeeSchedule
}

// normalizeRequest validates the request and converts origin-currency inputs
// to USD exactly once.
func normalizeRequest(req Request) (costInputs, error) {
	switch {
	case req.Item.CostOrigin <= 0:
		return costInputs{}, fmt.Errorf("%w: sourcing cost must be positive, got %.2f",
			ErrInvalidInput, req.Item.CostOrigin)
	case req.Item.WeightKg <= 0:
		return costInputs{}, fmt.Errorf("%w: weight must be positive, got %.3f kg",
			ErrInvalidInput, req.Item.WeightKg)
	case req.ExchangeRate <= 0:
		return costInputs{}, fmt.Errorf("%w: exchange rate must be positive, got %.4f",
			ErrInvalidInput, req.ExchangeRate)
	case req.TargetMargin < 0:
		return costInputs{}, fmt.Errorf("%w: target margin must not be negative, got %.4f",
			ErrInvalidInput, req.TargetMargin)
	case req.OverheadOrigin < 0:
		return costInputs{}, fmt.Errorf("%w: overhead must not be negative, got %.2f",
			ErrInvalidInput, req.OverheadOrigin)
	case len(req.Policies) == 0:
		return costInputs{}, fmt.Errorf("%w: at least one shipping policy is required", ErrNoPolicies)
	}
	return costInputs{
		sourcingUSD: req.Item.CostOrigin / req.ExchangeRate,
		overheadUSD: req.OverheadOrigin / req.ExchangeRate,
	}, nil
}

// buildCosts produces the cost vectors for one zone. Pure: same inputs, same
// output, no lookups.
//
// Duty only exists under the DDP basis, and only for zones of the policy's
// dutiable type. The import sales tax is levied on the duty-inclusive value,
// so the combined burden equals dutyableValue x EffectiveDDPRate.
func buildCosts(in costInputs, policy ShippingPolicy, zone Zone) CostBreakdown {
	b := CostBreakdown{
		SourcingUSD:       in.sourcingUSD,
		ActualShippingUSD: zone.ActualShippingUSD,
		DutyableValueUSD:  in.sourcingUSD + zone.ActualShippingUSD,
		InsertionFeeUSD:   in.fees.InsertionFeeUSD,
		OverheadUSD:       in.overheadUSD,
		FVFRate:           in.fees.FinalFVFRate(),
		ProcessingRate:    in.fees.ProcessingRate,
		CurrencyLossRate:  in.fees.CurrencyLossRate,
		VariableRate:      in.fees.VariableRate(),
	}

	if policy.Dutiable(zone) {
		b.Dutiable = true
		b.TariffUSD = b.DutyableValueUSD * in.tariff.TotalRate()
		b.ImportTaxUSD = (b.DutyableValueUSD + b.TariffUSD) * in.tariff.SalesTaxRate
		b.MPFUSD = b.DutyableValueUSD * in.tariff.MPFRate
		b.DDPSurchargeUSD = in.fees.DDPSurchargeUSD
	}

	b.FixedUSD = b.SourcingUSD + b.ActualShippingUSD +
		b.TariffUSD + b.ImportTaxUSD + b.MPFUSD + b.DDPSurchargeUSD +
		b.InsertionFeeUSD + b.OverheadUSD
	return b
}
