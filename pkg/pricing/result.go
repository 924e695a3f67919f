package pricing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TraceStep is one audited intermediate value with the formula that produced
// it, for display and export.
type TraceStep struct {
	Label    string  `json:"label"`
	Formula  string  `json:"formula"`
	ValueUSD float64 `json:"value_usd"`
}

// ZoneResult is a zone's realized economics plus its audit trace.
type ZoneResult struct {
	ZoneEconomics
	Trace []TraceStep `json:"trace"`
}

// PolicyCandidate is the full evaluation of one candidate policy: its solved
// price and every zone priced at it.
type PolicyCandidate struct {
	Solved SolvedPrice `json:"solved"`
	// ReferenceProfitUSD is the realized after-refund profit at the
	// reference zone, the quantity candidates compete on.
	ReferenceProfitUSD float64      `json:"reference_profit_usd"`
	Zones              []ZoneResult `json:"zones"`
}

// Result is the aggregate output of one pricing invocation. It is computed
// fresh every call and never persisted by the engine.
type Result struct {
	ID          string    `json:"id"`
	GeneratedAt time.Time `json:"generated_at"`

	TargetMargin       float64 `json:"target_margin"`
	ExchangeRate       float64 `json:"exchange_rate"`
	ChargeableWeightKg float64 `json:"chargeable_weight_kg"`

	// Tariff echoes the rule the catalog resolved, for auditability.
	// Nil when no DDP candidate needed one.
	Tariff *TariffRule `json:"tariff,omitempty"`

	Selection   PolicySelection   `json:"selection"`
	Candidates  []PolicyCandidate `json:"candidates"`
	ChosenIndex int               `json:"chosen_index"`
}

// Chosen returns the selected candidate.
func (r *Result) Chosen() *PolicyCandidate {
	return &r.Candidates[r.ChosenIndex]
}

// HasDeficitZone reports whether any zone of the chosen policy loses money
// before refund. Downstream consumers must treat this as a hard do-not-list
// signal.
func (r *Result) HasDeficitZone() bool {
	for _, z := range r.Chosen().Zones {
		if z.Deficit {
			return true
		}
	}
	return false
}

// assembleResult packages candidates, traces, and selection metadata into
// the final record.
func assembleResult(req Request, weightKg float64, tariff *TariffRule, candidates []PolicyCandidate, chosen int, sel PolicySelection) *Result {
	for ci := range candidates {
		for zi := range candidates[ci].Zones {
			candidates[ci].Zones[zi].Trace = zoneTrace(candidates[ci].Zones[zi].ZoneEconomics)
		}
	}
	return &Result{
		ID:                 uuid.New().String(),
		GeneratedAt:        time.Now().UTC(),
		TargetMargin:       req.TargetMargin,
		ExchangeRate:       req.ExchangeRate,
		ChargeableWeightKg: weightKg,
		Tariff:             tariff,
		Selection:          sel,
		Candidates:         candidates,
		ChosenIndex:        chosen,
	}
}

// zoneTrace renders every intermediate value of a zone with its generating
// formula.
func zoneTrace(e ZoneEconomics) []TraceStep {
	c := e.Costs
	steps := []TraceStep{
		{
			Label:    "total revenue",
			Formula:  fmt.Sprintf("%.2f product + %.2f shipping + %.2f handling", e.ProductPriceUSD, e.DisplayShippingUSD, e.HandlingFeeUSD),
			ValueUSD: e.TotalRevenueUSD,
		},
		{
			Label:    "dutyable value",
			Formula:  fmt.Sprintf("%.2f sourcing + %.2f actual shipping", c.SourcingUSD, c.ActualShippingUSD),
			ValueUSD: c.DutyableValueUSD,
		},
	}
	if c.Dutiable {
		steps = append(steps,
			TraceStep{
				Label:    "tariff",
				Formula:  fmt.Sprintf("%.2f dutyable x total tariff rate", c.DutyableValueUSD),
				ValueUSD: c.TariffUSD,
			},
			TraceStep{
				Label:    "import tax",
				Formula:  fmt.Sprintf("(%.2f dutyable + %.2f tariff) x sales tax rate", c.DutyableValueUSD, c.TariffUSD),
				ValueUSD: c.ImportTaxUSD,
			},
			TraceStep{
				Label:    "ddp surcharge",
				Formula:  "fixed import-compliance fee",
				ValueUSD: c.DDPSurchargeUSD,
			},
		)
	}
	steps = append(steps,
		TraceStep{
			Label:    "fixed costs",
			Formula:  fmt.Sprintf("%.2f sourcing + %.2f shipping + %.2f duty&tax + %.2f surcharge + %.2f insertion + %.2f overhead", c.SourcingUSD, c.ActualShippingUSD, c.TariffUSD+c.ImportTaxUSD+c.MPFUSD, c.DDPSurchargeUSD, c.InsertionFeeUSD, c.OverheadUSD),
			ValueUSD: c.FixedUSD,
		},
		TraceStep{
			Label:    "marketplace fee",
			Formula:  fmt.Sprintf("%.2f revenue x %.4f final FVF rate", e.TotalRevenueUSD, c.FVFRate),
			ValueUSD: e.MarketplaceFeeUSD,
		},
		TraceStep{
			Label:    "processing fee",
			Formula:  fmt.Sprintf("%.2f revenue x %.4f processing rate", e.TotalRevenueUSD, c.ProcessingRate),
			ValueUSD: e.ProcessingFeeUSD,
		},
		TraceStep{
			Label:    "profit",
			Formula:  fmt.Sprintf("%.2f revenue - %.2f total costs", e.TotalRevenueUSD, e.TotalCostsUSD),
			ValueUSD: e.ProfitUSD,
		},
		TraceStep{
			Label:    "shipping refund",
			Formula:  fmt.Sprintf("max(0, %.2f actual - %.2f displayed)", c.ActualShippingUSD, e.DisplayShippingUSD),
			ValueUSD: e.ShippingRefundUSD,
		},
		TraceStep{
			Label:    "fee refund",
			Formula:  fmt.Sprintf("%.2f shipping refund x %.4f final FVF rate", e.ShippingRefundUSD, c.FVFRate),
			ValueUSD: e.FeeRefundUSD,
		},
		TraceStep{
			Label:    "profit with refund",
			Formula:  fmt.Sprintf("%.2f profit + %.2f total refund", e.ProfitUSD, e.TotalRefundUSD),
			ValueUSD: e.ProfitWithRefundUSD,
		},
	)
	return steps
}
