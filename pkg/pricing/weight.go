package pricing

// VolumetricWeightKg converts package dimensions to a carrier billing weight
// using the carrier's divisor (typically 5000 or 6000 cm3/kg).
func VolumetricWeightKg(lengthCm, widthCm, heightCm, divisor float64) float64 {
	if divisor <= 0 {
		return 0
	}
	return lengthCm * widthCm * heightCm / divisor
}

// ChargeableWeightKg is the weight a carrier actually bills: the greater of
// the physical weight and the volumetric weight, so large-but-light packages
// are not under-rated.
func ChargeableWeightKg(item Item, divisor float64) float64 {
	vol := VolumetricWeightKg(item.LengthCm, item.WidthCm, item.HeightCm, divisor)
	if vol > item.WeightKg {
		return vol
	}
	return item.WeightKg
}
