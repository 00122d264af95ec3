package booking

// FinalPrice computes the recorded charge for a booking: base price
// times the optional rush multiplier, minus the optional discount,
// floored at zero. A zero multiplier means "no rush" and is treated
// as 1.
func FinalPrice(basePrice, rushMultiplier, discountAmount float64) float64 {
	if rushMultiplier <= 0 {
		rushMultiplier = 1
	}
	price := basePrice*rushMultiplier - discountAmount
	if price < 0 {
		return 0
	}
	return price
}
