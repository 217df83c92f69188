package savings

// KWhPerToken is the energy attributed to processing one token.
const KWhPerToken = 0.0003 / 1000

// DefaultGridIntensity is kg CO₂ emitted per kWh when nothing is configured.
const DefaultGridIntensity = 0.45

// Savings is the outcome of a before/after comparison.
type Savings struct {
	TokensSaved int
	KWhSaved    float64
	CO2SavedKg  float64
}

// Calculator converts token deltas using a configured grid intensity.
type Calculator struct {
	GridIntensity float64
}

func NewCalculator(gridIntensity float64) *Calculator {
	return &Calculator{GridIntensity: gridIntensity}
}

// Compute derives savings from a before/after token pair. Counts below zero
// are treated as zero so every output is non-negative.
func (c *Calculator) Compute(tokensBefore, tokensAfter int) Savings {
	saved := max(0, max(0, tokensBefore)-max(0, tokensAfter))
	kwh := float64(saved) * KWhPerToken
	return Savings{
		TokensSaved: saved,
		KWhSaved:    kwh,
		CO2SavedKg:  kwh * max(0, c.GridIntensity),
	}
}

// EnergyFromCO2 inverts the grid conversion: kWh that would have emitted
// co2Kg at the configured intensity. A zero intensity yields 0.
func (c *Calculator) EnergyFromCO2(co2Kg float64) float64 {
	if c.GridIntensity == 0 {
		return 0
	}
	return co2Kg / c.GridIntensity
}
