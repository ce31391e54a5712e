package gas

import "math"

type FlowRegime string

const (
	RegimeSubsonic   FlowRegime = "subsonic"
	RegimeTransonic  FlowRegime = "transonic"
	RegimeSupersonic FlowRegime = "supersonic"
	RegimeHypersonic FlowRegime = "hypersonic"
)

// ClassifyMach buckets a Mach number the usual aerodynamic way.
func ClassifyMach(m float64) FlowRegime {
	switch {
	case m < 0.8:
		return RegimeSubsonic
	case m <= 1.2:
		return RegimeTransonic
	case m < 5:
		return RegimeSupersonic
	default:
		return RegimeHypersonic
	}
}

// IdealGas is the gas description used by the isentropic calculators. When
// GasConstant is zero it is derived from MolecularWeight.
type IdealGas struct {
	Gamma           float64 `json:"gamma" yaml:"gamma"`
	GasConstant     float64 `json:"gasConstant,omitempty" yaml:"gasConstant"`
	MolecularWeight float64 `json:"molecularWeight,omitempty" yaml:"molecularWeight"`
}

func (g IdealGas) resolve() (thermo, error) {
	r := g.GasConstant
	if r == 0 && g.MolecularWeight > 0 {
		r = UniversalGasConstant / g.MolecularWeight
	}
	if err := positive("gasConstant", r); err != nil {
		return thermo{}, err
	}
	if err := checkThermo(1, g.Gamma); err != nil {
		return thermo{}, err
	}
	return thermo{gamma: g.Gamma, zr: r}, nil
}

type CompressibleFlowInput struct {
	Temperature   float64  `json:"temperature"`
	Pressure      float64  `json:"pressure"`
	GasProperties IdealGas `json:"gasProperties"`
	MachNumber    *float64 `json:"machNumber,omitempty"`
	Velocity      *float64 `json:"velocity,omitempty"`
}

type CompressibleFlowResult struct {
	MachNumber            float64    `json:"machNumber"`
	Velocity              float64    `json:"velocity"`
	SpeedOfSound          float64    `json:"speedOfSound"`
	StagnationTemperature float64    `json:"stagnationTemperature"`
	StagnationPressure    float64    `json:"stagnationPressure"`
	Density               float64    `json:"density"`
	FlowRegime            FlowRegime `json:"flowRegime"`
	PressureRatio         float64    `json:"pressureRatio"`
	TemperatureRatio      float64    `json:"temperatureRatio"`
	DensityRatio          float64    `json:"densityRatio"`
}

// CompressibleFlow applies the isentropic relations to a static state. The
// Mach number wins when both it and a velocity are given.
func CompressibleFlow(in CompressibleFlowInput) (CompressibleFlowResult, error) {
	th, err := in.GasProperties.resolve()
	if err != nil {
		return CompressibleFlowResult{}, err
	}
	if err := positive("pressure", in.Pressure); err != nil {
		return CompressibleFlowResult{}, err
	}
	if err := checkThermo(in.Temperature, th.gamma); err != nil {
		return CompressibleFlowResult{}, err
	}

	a := th.sound(in.Temperature)
	var m float64
	switch {
	case in.MachNumber != nil:
		m = *in.MachNumber
	case in.Velocity != nil:
		m = MachNumber(*in.Velocity, a)
	default:
		return CompressibleFlowResult{}, &InvalidInputError{Field: "machNumber", Reason: "machNumber or velocity is required"}
	}
	if m < 0 || math.IsNaN(m) || math.IsInf(m, 1) {
		return CompressibleFlowResult{}, &InvalidInputError{Field: "machNumber", Value: m, Reason: "must not be negative"}
	}

	s := th.state(in.Pressure, in.Temperature, m)
	tr := s.Temperature / s.StagnationTemperature
	pr := s.Pressure / s.StagnationPressure
	return CompressibleFlowResult{
		MachNumber:            m,
		Velocity:              s.Velocity,
		SpeedOfSound:          a,
		StagnationTemperature: s.StagnationTemperature,
		StagnationPressure:    s.StagnationPressure,
		Density:               s.Density,
		FlowRegime:            ClassifyMach(m),
		PressureRatio:         pr,
		TemperatureRatio:      tr,
		DensityRatio:          pr / tr,
	}, nil
}

type NormalShockInput struct {
	MachNumber1 float64 `json:"machNumber1"`
	Gamma       float64 `json:"gamma"`
}

type NormalShockResult struct {
	MachNumber1             float64 `json:"machNumber1"`
	MachNumber2             float64 `json:"machNumber2"`
	PressureRatio           float64 `json:"pressureRatio"`
	DensityRatio            float64 `json:"densityRatio"`
	TemperatureRatio        float64 `json:"temperatureRatio"`
	StagnationPressureRatio float64 `json:"stagnationPressureRatio"`
}

// NormalShock returns the jump conditions across a stationary normal shock.
// Gamma defaults to 1.4.
func NormalShock(in NormalShockInput) (NormalShockResult, error) {
	g := in.Gamma
	if g == 0 {
		g = DefaultSpecificHeatRatio
	}
	if err := checkThermo(1, g); err != nil {
		return NormalShockResult{}, err
	}
	m1 := in.MachNumber1
	if !(m1 > 1) || math.IsInf(m1, 1) {
		return NormalShockResult{}, &InvalidInputError{Field: "machNumber1", Value: m1, Reason: "normal shock requires supersonic upstream flow"}
	}

	m1s := m1 * m1
	m2 := math.Sqrt((1 + (g-1)/2*m1s) / (g*m1s - (g-1)/2))
	pr := 1 + 2*g/(g+1)*(m1s-1)
	dr := (g + 1) * m1s / (2 + (g-1)*m1s)
	tr := pr / dr

	// p02/p01 from the static jump and both isentropic stagnation factors
	up := math.Pow(1+(g-1)/2*m1s, g/(g-1))
	down := math.Pow(1+(g-1)/2*m2*m2, g/(g-1))
	return NormalShockResult{
		MachNumber1:             m1,
		MachNumber2:             m2,
		PressureRatio:           pr,
		DensityRatio:            dr,
		TemperatureRatio:        tr,
		StagnationPressureRatio: pr * down / up,
	}, nil
}

type ChokedFlowInput struct {
	StagnationTemperature float64 `json:"stagnationTemperature"`
	StagnationPressure    float64 `json:"stagnationPressure"`
	Gamma                 float64 `json:"gamma"`
	GasConstant           float64 `json:"gasConstant"`
}

// ChokedFlowResult holds sonic conditions. MassFlux is per unit throat area
// in kg/(s·m²).
type ChokedFlowResult struct {
	CriticalTemperature float64 `json:"criticalTemperature"`
	CriticalPressure    float64 `json:"criticalPressure"`
	CriticalDensity     float64 `json:"criticalDensity"`
	CriticalVelocity    float64 `json:"criticalVelocity"`
	MassFlux            float64 `json:"massFlowRate"`
}

// ChokedFlow returns the critical state reached by isentropic expansion from
// the given stagnation conditions. Gamma defaults to 1.4 and the gas constant
// to that of air.
func ChokedFlow(in ChokedFlowInput) (ChokedFlowResult, error) {
	gas := IdealGas{Gamma: in.Gamma, GasConstant: in.GasConstant}
	if gas.Gamma == 0 {
		gas.Gamma = DefaultSpecificHeatRatio
	}
	if gas.GasConstant == 0 {
		gas.GasConstant = 287
	}
	th, err := gas.resolve()
	if err != nil {
		return ChokedFlowResult{}, err
	}
	if err := positive("stagnationPressure", in.StagnationPressure); err != nil {
		return ChokedFlowResult{}, err
	}
	if err := checkThermo(in.StagnationTemperature, th.gamma); err != nil {
		return ChokedFlowResult{}, err
	}

	t := in.StagnationTemperature / (1 + th.k())
	p := in.StagnationPressure * math.Pow(1+th.k(), -th.gamma/(th.gamma-1))
	s := th.state(p, t, 1)
	return ChokedFlowResult{
		CriticalTemperature: t,
		CriticalPressure:    p,
		CriticalDensity:     s.Density,
		CriticalVelocity:    s.Velocity,
		MassFlux:            s.Density * s.Velocity,
	}, nil
}
