package pricing

import (
	"fmt"
	"strings"
)

// Catalog is an immutable snapshot of the reference rate data: tariff rules,
// marketplace fee schedules, and carrier profiles. Callers build one from
// whatever store they keep rates in and pass it into every engine call;
// the engine never mutates it and never fetches anything.
type Catalog struct {
	tariffs  map[tariffKey]TariffRule
	fees     map[StoreTier]FeeSchedule
	carriers map[string]CarrierProfile
}

type tariffKey struct {
	hs     string
	origin string
}

// NewCatalog builds a catalog snapshot from rate slices. Later entries with
// the same key override earlier ones.
func NewCatalog(tariffs []TariffRule, fees []FeeSchedule, carriers []CarrierProfile) *Catalog {
	c := &Catalog{
		tariffs:  make(map[tariffKey]TariffRule, len(tariffs)),
		fees:     make(map[StoreTier]FeeSchedule, len(fees)),
		carriers: make(map[string]CarrierProfile, len(carriers)),
	}
	for _, t := range tariffs {
		c.tariffs[tariffKey{normalizeHS(t.HSCode), t.OriginCountry}] = t
	}
	for _, f := range fees {
		c.fees[f.Tier] = f
	}
	for _, p := range carriers {
		c.carriers[p.Name] = p
	}
	return c
}

// TariffFor looks up the tariff rule for an HS code and origin country.
// HS codes are matched exactly first, then by 6-, 4-, and 2-digit prefix,
// since rate tables are often loaded at chapter or heading granularity.
// A miss is an error, never a zero rate.
func (c *Catalog) TariffFor(hsCode, originCountry string) (TariffRule, error) {
	hs := normalizeHS(hsCode)
	if hs == "" || originCountry == "" {
		return TariffRule{}, fmt.Errorf("%w: HS code and origin country are required", ErrInvalidInput)
	}

	for _, candidate := range hsPrefixes(hs) {
		if rule, ok := c.tariffs[tariffKey{candidate, originCountry}]; ok {
			return rule, nil
		}
	}
	return TariffRule{}, fmt.Errorf("%w: no tariff rule for HS %s from %s",
		ErrMissingRateData, hsCode, originCountry)
}

// FeesFor looks up the fee schedule for a store tier.
func (c *Catalog) FeesFor(tier StoreTier) (FeeSchedule, error) {
	if f, ok := c.fees[tier]; ok {
		return f, nil
	}
	return FeeSchedule{}, fmt.Errorf("%w: no fee schedule for store tier %q",
		ErrMissingRateData, tier)
}

// DivisorFor returns the volumetric divisor for a carrier, or ok=false when
// the carrier is unknown and the engine default should apply.
func (c *Catalog) DivisorFor(carrier string) (float64, bool) {
	p, ok := c.carriers[carrier]
	if !ok || p.VolumetricDivisor <= 0 {
		return 0, false
	}
	return p.VolumetricDivisor, true
}

func normalizeHS(code string) string {
	return strings.ReplaceAll(strings.TrimSpace(code), ".", "")
}

// hsPrefixes returns the code followed by its 6/4/2-digit fallbacks,
// longest first, without duplicates.
func hsPrefixes(hs string) []string {
	out := []string{hs}
	for _, n := range []int{6, 4, 2} {
		if len(hs) > n {
			out = append(out, hs[:n])
		}
	}
	return out
}
