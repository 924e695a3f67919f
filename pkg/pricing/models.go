package pricing

// PricingBasis determines who pays import duties for a shipping policy.
type PricingBasis string

const (
	// BasisDDP means the seller prepays duties (Delivered Duty Paid).
	BasisDDP PricingBasis = "DDP"
	// BasisDDU means the buyer is billed duties on delivery (Delivered Duty Unpaid).
	BasisDDU PricingBasis = "DDU"
)

// ZoneType classifies a destination zone within a policy.
type ZoneType string

const (
	// ZoneDomestic is the policy's home market, where DDP duty applies.
	ZoneDomestic ZoneType = "domestic"
	// ZoneWorld is a rest-of-world destination.
	ZoneWorld ZoneType = "world"
)

// StoreTier is the seller's marketplace subscription tier.
type StoreTier string

const (
	TierNone    StoreTier = "none"
	TierBasic   StoreTier = "basic"
	TierPremium StoreTier = "premium"
	TierAnchor  StoreTier = "anchor"
)

// Item is the physical good being priced. Sourcing cost and overheads are in
// the origin currency; everything downstream is computed in the marketplace
// settlement currency (USD) after a single conversion at the boundary.
type Item struct {
	CostOrigin    float64 `json:"cost_origin"`
	WeightKg      float64 `json:"weight_kg"`
	LengthCm      float64 `json:"length_cm"`
	WidthCm       float64 `json:"width_cm"`
	HeightCm      float64 `json:"height_cm"`
	HSCode        string  `json:"hs_code"`
	OriginCountry string  `json:"origin_country"`
}

// Zone is one destination within a shipping policy. Displayed and actual
// shipping are independent: displayed is what the buyer pays, actual is what
// the carrier bills the seller. Their divergence drives the shipping refund.
type Zone struct {
	Code               string   `json:"code"`
	Name               string   `json:"name"`
	Type               ZoneType `json:"type"`
	DisplayShippingUSD float64  `json:"display_shipping_usd"`
	ActualShippingUSD  float64  `json:"actual_shipping_usd"`
}

// DDPTerms carries the fields that only exist under the DDP basis. A DDU
// policy has no DDPTerms, so duty logic cannot be applied to it by
// construction.
type DDPTerms struct {
	// DutiableZoneType selects which zones of the policy carry import duty.
	// Zones of any other type are priced duty-free even under DDP.
	DutiableZoneType ZoneType `json:"dutiable_zone_type"`
}

// ShippingPolicy is a named bundle of zones sharing one listing price,
// one handling fee, and one pricing basis. WeightKg bounds are the carrier
// band the policy covers; MaxWeightKg of zero means unbounded.
type ShippingPolicy struct {
	Name           string       `json:"name"`
	Basis          PricingBasis `json:"basis"`
	DDP            *DDPTerms    `json:"ddp,omitempty"`
	Carrier        string       `json:"carrier"`
	HandlingFeeUSD float64      `json:"handling_fee_usd"`
	MinWeightKg    float64      `json:"min_weight_kg"`
	MaxWeightKg    float64      `json:"max_weight_kg"`
	Zones          []Zone       `json:"zones"`
}

// Dutiable reports whether duty applies to the given zone under this policy.
func (p ShippingPolicy) Dutiable(z Zone) bool {
	return p.Basis == BasisDDP && p.DDP != nil && z.Type == p.DDP.DutiableZoneType
}

// CoversWeight reports whether the policy's carrier band can carry the given
// chargeable weight.
func (p ShippingPolicy) CoversWeight(kg float64) bool {
	if kg < p.MinWeightKg {
		return false
	}
	return p.MaxWeightKg == 0 || kg <= p.MaxWeightKg
}

// FeeSchedule is the marketplace fee structure for one store tier.
type FeeSchedule struct {
	Tier             StoreTier `json:"tier"`
	BaseFVFRate      float64   `json:"base_fvf_rate"`
	TierDiscount     float64   `json:"tier_discount"`
	InsertionFeeUSD  float64   `json:"insertion_fee_usd"`
	ProcessingRate   float64   `json:"processing_rate"`
	CurrencyLossRate float64   `json:"currency_loss_rate"`
	// DDPSurchargeUSD is the fixed per-order import-compliance fee,
	// charged only when the policy basis is DDP.
	DDPSurchargeUSD float64 `json:"ddp_surcharge_usd"`
}

// FinalFVFRate is the take rate after the store-tier discount, floored at zero.
func (f FeeSchedule) FinalFVFRate() float64 {
	r := f.BaseFVFRate - f.TierDiscount
	if r < 0 {
		return 0
	}
	return r
}

// VariableRate is the total revenue-proportional cost rate.
func (f FeeSchedule) VariableRate() float64 {
	return f.FinalFVFRate() + f.ProcessingRate + f.CurrencyLossRate
}

// TariffRule is the duty regime for one (HS code, origin country) pair.
type TariffRule struct {
	HSCode        string `json:"hs_code"`
	OriginCountry string `json:"origin_country"`
	// BaseRate is the ad-valorem duty rate; AdditionalRate is any punitive
	// or trade-remedy surcharge on top of it.
	BaseRate       float64 `json:"base_rate"`
	AdditionalRate float64 `json:"additional_rate"`
	// SalesTaxRate is the destination import sales tax, applied to the
	// duty-inclusive value.
	SalesTaxRate float64 `json:"sales_tax_rate"`
	// MPFRate is the merchandise-processing rate on the dutyable value.
	MPFRate     float64 `json:"mpf_rate"`
	Description string  `json:"description,omitempty"`
}

// TotalRate is the combined ad-valorem duty rate.
func (t TariffRule) TotalRate() float64 {
	return t.BaseRate + t.AdditionalRate
}

// EffectiveDDPRate folds the sales tax in multiplicatively: tax is levied on
// the duty-inclusive value, so the effective rate is not a plain sum.
func (t TariffRule) EffectiveDDPRate() float64 {
	return (1+t.TotalRate())*(1+t.SalesTaxRate) - 1
}

// CarrierProfile holds per-carrier rating parameters.
type CarrierProfile struct {
	Name string `json:"name"`
	// VolumetricDivisor converts cm3 to kg for chargeable weight. Carriers
	// disagree on this constant (5000 and 6000 are both in the wild), so it
	// is data, not code.
	VolumetricDivisor float64 `json:"volumetric_divisor"`
}

// Request is one pricing invocation: an item, the candidate policies that
// could carry it, and the commercial parameters.
type Request struct {
	Item      Item             `json:"item"`
	Policies  []ShippingPolicy `json:"policies"`
	StoreTier StoreTier        `json:"store_tier"`
	// TargetMargin is the profit fraction of revenue to solve for.
	TargetMargin float64 `json:"target_margin"`
	// ExchangeRate is origin-currency units per USD.
	ExchangeRate float64 `json:"exchange_rate"`
	// OverheadOrigin is packaging and labor cost, in the origin currency.
	OverheadOrigin float64 `json:"overhead_origin"`
}
