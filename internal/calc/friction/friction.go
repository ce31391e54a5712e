package friction

import "math"

type Regime string

const (
	RegimeLaminar      Regime = "laminar"
	RegimeTransitional Regime = "transitional"
	RegimeTurbulent    Regime = "turbulent"

	LaminarLimit   = 2300.0
	TurbulentLimit = 4000.0

	// keeps 64/Re finite
	minReynolds = 1e-9
)

// Reynolds returns Re = ρvD/μ from the mass flux G = ρv.
func Reynolds(massFlux, diameter, viscosity float64) float64 {
	if viscosity <= 0 || diameter <= 0 {
		return 0
	}
	return math.Abs(massFlux) * diameter / viscosity
}

func Classify(re float64) Regime {
	switch {
	case re < LaminarLimit:
		return RegimeLaminar
	case re <= TurbulentLimit:
		return RegimeTransitional
	default:
		return RegimeTurbulent
	}
}

// DarcyFactor is Churchill's (1977) single correlation. It is continuous over
// laminar, transitional and turbulent flow and reduces to 64/Re for small Re.
func DarcyFactor(re, relativeRoughness float64) float64 {
	if re < minReynolds {
		re = minReynolds
	}
	if relativeRoughness < 0 || math.IsNaN(relativeRoughness) {
		relativeRoughness = 0
	}

	a := math.Pow(2.457*math.Log(1/(math.Pow(7/re, 0.9)+0.27*relativeRoughness)), 16)
	b := math.Pow(37530/re, 16)
	turb := math.Pow(a+b, -1.5)
	if math.IsNaN(turb) {
		turb = 0
	}

	// f = 8[(8/Re)^12 + (A+B)^-1.5]^(1/12), factored around the laminar term
	// so that (8/Re)^12 never overflows.
	ratio := math.Pow(re/8, 12) * turb
	if math.IsInf(ratio, 1) || math.IsNaN(ratio) {
		// turbulent term dominates completely
		return 8 * math.Pow(turb, 1.0/12)
	}
	return 64 / re * math.Pow(1+ratio, 1.0/12)
}
