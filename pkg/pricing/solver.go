package pricing

import (
	"fmt"
	"math"
)

// SolvedPrice is the outcome of inverting the cost model for one policy: the
// revenue needed at the reference zone to hit the target margin, and the
// listing price backed out of it.
type SolvedPrice struct {
	PolicyName         string        `json:"policy_name"`
	ReferenceZoneCode  string        `json:"reference_zone_code"`
	RequiredRevenueUSD float64       `json:"required_revenue_usd"`
	ProductPriceUSD    float64       `json:"product_price_usd"`
	ReferenceCosts     CostBreakdown `json:"reference_costs"`
}

// referenceZone designates the single zone whose economics anchor the
// policy-wide listing price. Under DDP it is the policy's home market (the
// dutiable zone type); under DDU it is the zone with the largest actual
// carrier cost, so the price survives the most expensive destination.
func referenceZone(p ShippingPolicy) (Zone, error) {
	if len(p.Zones) == 0 {
		return Zone{}, fmt.Errorf("%w: policy %q", ErrNoZones, p.Name)
	}

	if p.Basis == BasisDDP && p.DDP != nil {
		for _, z := range p.Zones {
			if z.Type == p.DDP.DutiableZoneType {
				return z, nil
			}
		}
		return Zone{}, fmt.Errorf("%w: policy %q has no zone of type %q",
			ErrNoReferenceZone, p.Name, p.DDP.DutiableZoneType)
	}

	ref := p.Zones[0]
	for _, z := range p.Zones[1:] {
		if z.ActualShippingUSD > ref.ActualShippingUSD {
			ref = z
		}
	}
	return ref, nil
}

// solvePolicy finds the revenue R at the reference zone such that
//
//	R - fixedCosts - variableRate*R = targetMargin * R
//	R = fixedCosts / (1 - variableRate - targetMargin)
//
// then backs the listing price out of R and floors it to the price
// increment. Flooring (never rounding to nearest) keeps the realized margin
// at or above target.
func solvePolicy(in costInputs, policy ShippingPolicy, targetMargin, incrementUSD float64) (SolvedPrice, error) {
	ref, err := referenceZone(policy)
	if err != nil {
		return SolvedPrice{}, err
	}

	costs := buildCosts(in, policy, ref)

	denominator := 1 - costs.VariableRate - targetMargin
	if denominator <= 0 {
		return SolvedPrice{}, fmt.Errorf(
			"%w: variable rate %.4f + target margin %.4f >= 1",
			ErrInfeasibleMargin, costs.VariableRate, targetMargin)
	}

	required := costs.FixedUSD / denominator
	price := floorToIncrement(required-ref.DisplayShippingUSD-policy.HandlingFeeUSD, incrementUSD)

	return SolvedPrice{
		PolicyName:         policy.Name,
		ReferenceZoneCode:  ref.Code,
		RequiredRevenueUSD: required,
		ProductPriceUSD:    price,
		ReferenceCosts:     costs,
	}, nil
}

// floorToIncrement rounds v down to the nearest multiple of inc.
// A non-positive increment disables rounding.
func floorToIncrement(v, inc float64) float64 {
	if inc <= 0 {
		return v
	}
	return math.Floor(v/inc) * inc
}

// PolicySelection records which candidate the solver chose and why. The
// cheapest feasible candidate always wins unless its realized landed profit
// at its reference zone is strictly worse than an alternative's; ties go to
// the cheapest.
type PolicySelection struct {
	ChosenPolicy   string `json:"chosen_policy"`
	CheapestPolicy string `json:"cheapest_policy"`
	Overridden     bool   `json:"overridden"`
	Reason         string `json:"reason"`
}

// selectPolicy picks the winning candidate index. Candidates must be sorted
// cheapest first (by reference-zone actual carrier cost); profits are the
// realized reference-zone profits at each candidate's own solved price.
func selectPolicy(candidates []SolvedPrice, profits []float64) (int, PolicySelection) {
	best := 0
	for i := 1; i < len(profits); i++ {
		// Strictly greater only: ties stay with the cheaper policy.
		if profits[i] > profits[best] {
			best = i
		}
	}

	sel := PolicySelection{
		ChosenPolicy:   candidates[best].PolicyName,
		CheapestPolicy: candidates[0].PolicyName,
	}
	if best != 0 {
		sel.Overridden = true
		sel.Reason = fmt.Sprintf(
			"cheapest policy %q yields %.2f USD at its reference zone; %q yields %.2f USD",
			candidates[0].PolicyName, profits[0],
			candidates[best].PolicyName, profits[best])
	}
	return best, sel
}
