// Package pricing implements a landed-cost reverse-pricing and
// zone-profitability engine for cross-border marketplace listings.
//
// Given an item, a set of candidate shipping policies, a fee schedule, and a
// tariff regime, the engine solves for the listing price that hits a target
// profit margin at each policy's reference zone, then re-derives the full
// realized economics of that price for every destination zone, including
// duties, marketplace fees, and post-sale shipping/fee refunds.
//
// The engine is purely computational: all rate data arrives as an immutable
// Catalog snapshot, nothing is fetched or persisted, and every entry point
// is deterministic over its inputs.
package pricing

import (
	"context"
	"fmt"
	"sort"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Options are the engine's tunables.
type Options struct {
	// PriceIncrementUSD is the flooring increment for solved prices.
	PriceIncrementUSD float64
	// DefaultVolumetricDivisor applies when a policy's carrier has no
	// profile in the catalog.
	DefaultVolumetricDivisor float64
	Classifier               ClassifierConfig
}

func (o Options) withDefaults(targetMargin float64) Options {
	if o.PriceIncrementUSD == 0 {
		o.PriceIncrementUSD = 5
	}
	if o.DefaultVolumetricDivisor <= 0 {
		o.DefaultVolumetricDivisor = 5000
	}
	if o.Classifier == (ClassifierConfig{}) {
		o.Classifier = DefaultClassifierConfig(targetMargin)
	}
	return o
}

// Engine prices listings against a catalog snapshot.
type Engine struct {
	catalog *Catalog
	opts    Options
	logger  *otelzap.Logger
	tracer  trace.Tracer
}

// New creates an engine bound to one immutable catalog snapshot.
func New(catalog *Catalog, opts Options, logger *otelzap.Logger, tracer trace.Tracer) *Engine {
	return &Engine{
		catalog: catalog,
		opts:    opts,
		logger:  logger,
		tracer:  tracer,
	}
}

// Price runs one full pricing invocation: validate, resolve rates, solve
// each candidate policy, evaluate every zone, select the winner, classify,
// and assemble the audited result.
//
// Any error blocks the result for the whole request; the engine never
// returns partially evaluated policies.
func (e *Engine) Price(ctx context.Context, req Request) (*Result, error) {
	if e.tracer != nil {
		var span trace.Span
		ctx, span = e.tracer.Start(ctx, "pricing.Price")
		defer span.End()
	}

	in, err := normalizeRequest(req)
	if err != nil {
		return nil, err
	}

	fees, err := e.catalog.FeesFor(req.StoreTier)
	if err != nil {
		return nil, err
	}
	in.fees = fees

	// The tariff regime is only consulted when some candidate prepays
	// duties; a pure-DDU request needs no HS mapping.
	var tariffEcho *TariffRule
	if anyDDP(req.Policies) {
		tariff, err := e.catalog.TariffFor(req.Item.HSCode, req.Item.OriginCountry)
		if err != nil {
			return nil, err
		}
		in.tariff = tariff
		tariffEcho = &tariff
	}

	opts := e.opts.withDefaults(req.TargetMargin)
	candidates, weightKg, err := e.eligibleCandidates(req, opts)
	if err != nil {
		return nil, err
	}

	solved := make([]SolvedPrice, len(candidates))
	evaluated := make([]PolicyCandidate, len(candidates))
	profits := make([]float64, len(candidates))

	rules := opts.Classifier.Rules()
	for i, policy := range candidates {
		s, err := solvePolicy(in, policy, req.TargetMargin, opts.PriceIncrementUSD)
		if err != nil {
			return nil, err
		}
		zones, err := evaluatePolicy(ctx, in, policy, s.ProductPriceUSD, req.ExchangeRate, rules)
		if err != nil {
			return nil, err
		}

		ref := referenceEconomics(zones, s.ReferenceZoneCode)
		solved[i] = s
		profits[i] = ref.ProfitWithRefundUSD
		evaluated[i] = PolicyCandidate{
			Solved:             s,
			ReferenceProfitUSD: ref.ProfitWithRefundUSD,
			Zones:              wrapZones(zones),
		}
	}

	chosen, sel := selectPolicy(solved, profits)
	result := assembleResult(req, weightKg, tariffEcho, evaluated, chosen, sel)

	if e.logger != nil {
		e.logger.Ctx(ctx).Info("priced listing",
			zap.String("result_id", result.ID),
			zap.String("chosen_policy", sel.ChosenPolicy),
			zap.Bool("overridden", sel.Overridden),
			zap.Float64("product_price_usd", result.Chosen().Solved.ProductPriceUSD),
			zap.Bool("deficit", result.HasDeficitZone()),
		)
	}
	return result, nil
}

// BatchItem pairs one request of a batch with its outcome.
type BatchItem struct {
	Index  int     `json:"index"`
	Result *Result `json:"result,omitempty"`
	Err    error   `json:"-"`
}

// PriceBatch prices many requests concurrently. Individual failures do not
// abort the batch; each item carries its own error.
func (e *Engine) PriceBatch(ctx context.Context, reqs []Request) []BatchItem {
	items := make([]BatchItem, len(reqs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			res, err := e.Price(ctx, req)
			items[i] = BatchItem{Index: i, Result: res, Err: err}
			return nil
		})
	}

	g.Wait()
	return items
}

// eligibleCandidates filters the supplied policies down to those whose
// carrier band covers the item's chargeable weight, ordered cheapest first
// by reference-zone actual carrier cost.
func (e *Engine) eligibleCandidates(req Request, opts Options) ([]ShippingPolicy, float64, error) {
	maxWeight := 0.0
	type ranked struct {
		policy ShippingPolicy
		refUSD float64
	}
	eligible := make([]ranked, 0, len(req.Policies))

	for _, policy := range req.Policies {
		divisor, ok := e.catalog.DivisorFor(policy.Carrier)
		if !ok {
			divisor = opts.DefaultVolumetricDivisor
		}
		kg := ChargeableWeightKg(req.Item, divisor)
		if kg > maxWeight {
			maxWeight = kg
		}
		if !policy.CoversWeight(kg) {
			continue
		}
		ref, err := referenceZone(policy)
		if err != nil {
			return nil, 0, err
		}
		eligible = append(eligible, ranked{policy: policy, refUSD: ref.ActualShippingUSD})
	}

	if len(eligible) == 0 {
		return nil, 0, fmt.Errorf("%w: no policy covers chargeable weight %.3f kg",
			ErrNoPolicies, maxWeight)
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].refUSD < eligible[j].refUSD
	})
	out := make([]ShippingPolicy, len(eligible))
	for i, r := range eligible {
		out[i] = r.policy
	}
	return out, maxWeight, nil
}

func anyDDP(policies []ShippingPolicy) bool {
	for _, p := range policies {
		if p.Basis == BasisDDP {
			return true
		}
	}
	return false
}

func referenceEconomics(zones []ZoneEconomics, refCode string) ZoneEconomics {
	for _, z := range zones {
		if z.ZoneCode == refCode {
			return z
		}
	}
	return zones[0]
}

func wrapZones(zones []ZoneEconomics) []ZoneResult {
	out := make([]ZoneResult, len(zones))
	for i, z := range zones {
		out[i] = ZoneResult{ZoneEconomics: z}
	}
	return out
}
