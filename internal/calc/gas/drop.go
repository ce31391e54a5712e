package gas

import (
	"math"

	"github.com/Luqman-Ismat/engivault-api-sub002/internal/calc/friction"
)

type Model string

const (
	ModelIsothermal Model = "isothermal"
	ModelAdiabatic  Model = "adiabatic"
)

type DropInput struct {
	Gas           GasProperties `json:"gas" yaml:"gas"`
	Pipe          PipeGeometry  `json:"pipe" yaml:"pipe"`
	InletPressure float64       `json:"inletPressure" yaml:"inletPressure"`
	MassFlowRate  float64       `json:"massFlowRate" yaml:"massFlowRate"`
	Temperature   float64       `json:"temperature" yaml:"temperature"`
	Model         Model         `json:"model" yaml:"model"`
}

type DropParameters struct {
	Model                 Model   `json:"model"`
	SonicVelocity         float64 `json:"sonicVelocity"`
	RelativeRoughness     float64 `json:"relativeRoughness"`
	CompressibilityFactor float64 `json:"compressibilityFactor"`
	SpecificHeatRatio     float64 `json:"specificHeatRatio"`
	GasConstant           float64 `json:"gasConstant"`
}

// Diagnostics describe the implicit solve behind a result.
type Diagnostics struct {
	Iterations int  `json:"iterations"`
	Converged  bool `json:"converged"`
}

type DropResult struct {
	InletPressure       float64        `json:"inletPressure"`
	OutletPressure      float64        `json:"outletPressure"`
	OutletTemperature   float64        `json:"outletTemperature"`
	PressureDrop        float64        `json:"pressureDrop"`
	PressureDropPercent float64        `json:"pressureDropPercent"`
	Velocity            float64        `json:"velocity"`
	MachNumber          float64        `json:"machNumber"`
	IsChoked            bool           `json:"isChoked"`
	FrictionFactor      float64        `json:"frictionFactor"`
	ReynoldsNumber      float64        `json:"reynoldsNumber"`
	Warnings            Warnings       `json:"warnings"`
	Parameters          DropParameters `json:"calculationParameters"`
	Diagnostics         Diagnostics    `json:"diagnostics"`
}

// CalculateDrop returns the outlet state of a gas pipeline for fixed geometry
// and mass flow. Velocity and Mach number are reported at the outlet, where
// they are largest. A choked isothermal result reports the limiting state
// M = 1/√γ; a choked adiabatic result reports M = 1.
func CalculateDrop(in DropInput, opts Options) (DropResult, error) {
	opts = opts.normalized()
	if in.Model == "" {
		in.Model = ModelIsothermal
	}
	if err := validateDrop(in); err != nil {
		return DropResult{}, err
	}

	gas := in.Gas
	switch in.Model {
	case ModelAdiabatic:
		if !(gas.SpecificHeatRatio > 1) {
			return DropResult{}, &InvalidModelParameterError{
				Model:     in.Model,
				Parameter: "specificHeatRatio",
				Reason:    "adiabatic model requires γ > 1",
			}
		}
	case ModelIsothermal:
		if gas.SpecificHeatRatio == 0 {
			gas.SpecificHeatRatio = opts.DefaultGamma
		}
	default:
		return DropResult{}, &InvalidModelParameterError{
			Model:     in.Model,
			Parameter: "model",
			Reason:    "expected isothermal or adiabatic",
		}
	}
	th, err := newThermo(gas)
	if err != nil {
		return DropResult{}, err
	}

	g := in.MassFlowRate / in.Pipe.Area()
	re := friction.Reynolds(g, in.Pipe.Diameter, gas.Viscosity)
	f := friction.DarcyFactor(re, in.Pipe.RelativeRoughness())
	fld := f * in.Pipe.Length / in.Pipe.Diameter

	var out outlet
	if in.Model == ModelIsothermal {
		out = isothermalOutlet(th, in, g, fld, opts)
	} else {
		out = adiabaticOutlet(th, in, g, fld, opts)
	}

	res := DropResult{
		InletPressure:     in.InletPressure,
		OutletPressure:    out.pressure,
		OutletTemperature: out.temperature,
		Velocity:          out.velocity,
		MachNumber:        out.mach,
		IsChoked:          out.choked,
		FrictionFactor:    f,
		ReynoldsNumber:    re,
		Parameters: DropParameters{
			Model:                 in.Model,
			SonicVelocity:         th.sound(out.temperature),
			RelativeRoughness:     in.Pipe.RelativeRoughness(),
			CompressibilityFactor: gas.Z(),
			SpecificHeatRatio:     th.gamma,
			GasConstant:           gas.GasConstant(),
		},
		Diagnostics: Diagnostics{Iterations: out.iterations, Converged: out.converged},
	}
	if out.choked {
		res.OutletPressure = 0
		res.PressureDrop = in.InletPressure
	} else {
		res.PressureDrop = in.InletPressure - out.pressure
	}
	res.PressureDropPercent = res.PressureDrop / in.InletPressure * 100

	var c collector
	c.mach(res.MachNumber)
	c.choked(res.IsChoked)
	c.reynolds(re)
	c.convergence(out.converged, out.iterations)
	res.Warnings = c.result()
	return res, nil
}

func validateDrop(in DropInput) error {
	checks := []struct {
		field string
		v     float64
	}{
		{"gas.density", in.Gas.Density},
		{"gas.viscosity", in.Gas.Viscosity},
		{"gas.molecularWeight", in.Gas.MolecularWeight},
		{"pipe.diameter", in.Pipe.Diameter},
		{"pipe.length", in.Pipe.Length},
		{"inletPressure", in.InletPressure},
		{"massFlowRate", in.MassFlowRate},
		{"temperature", in.Temperature},
	}
	for _, c := range checks {
		if err := positive(c.field, c.v); err != nil {
			return err
		}
	}
	if in.Pipe.Roughness < 0 || math.IsNaN(in.Pipe.Roughness) {
		return &InvalidInputError{Field: "pipe.roughness", Value: in.Pipe.Roughness, Reason: "must not be negative"}
	}
	if in.Gas.CompressibilityFactor < 0 {
		return &InvalidInputError{Field: "gas.compressibilityFactor", Value: in.Gas.CompressibilityFactor}
	}
	return nil
}

type outlet struct {
	pressure, temperature, velocity, mach float64
	choked                                bool
	iterations                            int
	converged                             bool
}

func isothermalOutlet(th thermo, in DropInput, g, fld float64, opts Options) outlet {
	t := in.Temperature
	k := g * g * th.zr * t
	// Darcy drop with the reference density, used only as the first guess
	start := in.InletPressure - fld*g*g/(2*in.Gas.Density)

	p2, choked, it, ok := solveIsothermal(in.InletPressure, k, fld, start, opts)
	if choked {
		// isothermal limit: M = 1/√γ, v = √(ZRT)
		return outlet{
			temperature: t,
			velocity:    math.Sqrt(th.zr * t),
			mach:        1 / math.Sqrt(th.gamma),
			choked:      true,
			iterations:  it,
			converged:   ok,
		}
	}
	v := g * th.zr * t / p2
	return outlet{
		pressure:    p2,
		temperature: t,
		velocity:    v,
		mach:        v / th.sound(t),
		iterations:  it,
		converged:   ok,
	}
}

// solveIsothermal finds P2 in P1² − P2² = K[fL/D + 2 ln(P1/P2)], K = G²ZRT,
// on the subsonic branch P2 > √K. It is a Newton iteration kept inside a
// shrinking bracket.
func solveIsothermal(p1, k, fld, start float64, opts Options) (p2 float64, choked bool, iterations int, converged bool) {
	if p1*p1-k*fld < 0 {
		return 0, true, 0, true
	}
	pc := math.Sqrt(k)
	if pc >= p1 {
		return 0, true, 0, true
	}
	residual := func(p float64) float64 {
		return p1*p1 - p*p - k*(fld+2*math.Log(p1/p))
	}
	if residual(pc) <= 0 {
		return 0, true, 0, true
	}

	lo, hi := pc, p1
	x := start
	if !(x > lo && x < hi) {
		x = math.Sqrt(p1*p1 - k*fld)
	}
	if !(x > lo && x < hi) {
		x = (lo + hi) / 2
	}
	for iterations < opts.MaxIterations {
		iterations++
		fx := residual(x)
		if fx > 0 {
			lo = x
		} else {
			hi = x
		}
		next := x - fx/(-2*x+2*k/x)
		if !(next > lo && next < hi) {
			next = (lo + hi) / 2
		}
		if math.Abs(next-x) <= opts.Tolerance*p1 {
			x = next
			converged = true
			break
		}
		x = next
	}
	if !(x > 0) {
		return 0, true, iterations, converged
	}
	return x, false, iterations, converged
}

func adiabaticOutlet(th thermo, in DropInput, g, fld float64, opts Options) outlet {
	t1 := in.Temperature
	rho1 := in.InletPressure / (th.zr * t1)
	m1 := g / rho1 / th.sound(t1)
	k := th.k()
	if m1 >= 1 {
		// no subsonic Fanno line passes through the inlet
		return outlet{temperature: t1, velocity: th.sound(t1), mach: 1, choked: true, converged: true}
	}
	target := FannoParameter(m1, th.gamma) - fld
	if target <= 0 {
		// sonic temperature of the Fanno line through the inlet
		tStar := t1 * (1 + k*m1*m1) / (1 + k)
		return outlet{temperature: tStar, velocity: th.sound(tStar), mach: 1, choked: true, converged: true}
	}

	m2, it, ok := solveFannoMach(target, m1, th.gamma, opts)
	t2 := t1 * (1 + k*m1*m1) / (1 + k*m2*m2)
	p2 := in.InletPressure * (m1 / m2) * math.Sqrt((1+k*m1*m1)/(1+k*m2*m2))
	return outlet{
		pressure:    p2,
		temperature: t2,
		velocity:    m2 * th.sound(t2),
		mach:        m2,
		iterations:  it,
		converged:   ok,
	}
}

// FannoParameter is fL*/D (Darcy f): the friction length needed to bring a
// flow at Mach m to the sonic point.
func FannoParameter(m, gamma float64) float64 {
	m2 := m * m
	return (1-m2)/(gamma*m2) + (gamma+1)/(2*gamma)*math.Log((gamma+1)*m2/(2+(gamma-1)*m2))
}

func fannoSlope(m, gamma float64) float64 {
	return -4 * (1 - m*m) / (gamma * m * m * m * (2 + (gamma-1)*m*m))
}

// solveFannoMach inverts FannoParameter on the subsonic branch [from, 1).
func solveFannoMach(target, from, gamma float64, opts Options) (m float64, iterations int, converged bool) {
	lo, hi := from, 1.0
	x := from
	for iterations < opts.MaxIterations {
		iterations++
		fx := FannoParameter(x, gamma) - target
		if fx > 0 {
			lo = x
		} else {
			hi = x
		}
		next := x - fx/fannoSlope(x, gamma)
		if !(next > lo && next < hi) {
			next = (lo + hi) / 2
		}
		if math.Abs(next-x) <= opts.Tolerance {
			x = next
			converged = true
			break
		}
		x = next
	}
	return x, iterations, converged
}
