package gas

import "math"

type MarchMode string

const (
	ModeFanno    MarchMode = "fanno"
	ModeRayleigh MarchMode = "rayleigh"
)

type Termination string

const (
	TerminationTarget Termination = "target_reached"
	TerminationSonic  Termination = "sonic_point"
)

type FannoInput struct {
	State0                GasState `json:"state0" yaml:"state0"`
	Length                float64  `json:"length" yaml:"length"`
	Diameter              float64  `json:"diameter" yaml:"diameter"`
	FrictionFactor        float64  `json:"frictionFactor" yaml:"frictionFactor"`
	SpecificHeatRatio     float64  `json:"specificHeatRatio" yaml:"specificHeatRatio"`
	MolecularWeight       float64  `json:"molecularWeight" yaml:"molecularWeight"`
	CompressibilityFactor float64  `json:"compressibilityFactor,omitempty" yaml:"compressibilityFactor"`
}

// RayleighInput marches over HeatTransferRate, the total heat added per unit
// mass (J/kg). Negative values remove heat.
type RayleighInput struct {
	State0                GasState `json:"state0" yaml:"state0"`
	HeatTransferRate      float64  `json:"heatTransferRate" yaml:"heatTransferRate"`
	Diameter              float64  `json:"diameter" yaml:"diameter"`
	SpecificHeatRatio     float64  `json:"specificHeatRatio" yaml:"specificHeatRatio"`
	MolecularWeight       float64  `json:"molecularWeight" yaml:"molecularWeight"`
	CompressibilityFactor float64  `json:"compressibilityFactor,omitempty" yaml:"compressibilityFactor"`
}

// DuctFlowResult is the trajectory of one march. Positions[i] is the length
// (Fanno) or cumulative heat per unit mass (Rayleigh) of States[i].
type DuctFlowResult struct {
	Mode            MarchMode   `json:"mode"`
	States          []GasState  `json:"states"`
	Positions       []float64   `json:"positions"`
	MaxLength       float64     `json:"maxLength,omitempty"`
	MaxHeatTransfer float64     `json:"maxHeatTransfer,omitempty"`
	MassFlowRate    float64     `json:"massFlowRate"`
	IsChoked        bool        `json:"isChoked"`
	Termination     Termination `json:"termination"`
	Warnings        Warnings    `json:"warnings"`
}

// MarchFanno integrates adiabatic frictional flow along the duct.
func MarchFanno(in FannoInput, opts Options) (DuctFlowResult, error) {
	opts = opts.normalized()
	gas := GasProperties{
		MolecularWeight:       in.MolecularWeight,
		SpecificHeatRatio:     in.SpecificHeatRatio,
		CompressibilityFactor: in.CompressibilityFactor,
	}
	for _, c := range []struct {
		field string
		v     float64
	}{{"length", in.Length}, {"diameter", in.Diameter}, {"frictionFactor", in.FrictionFactor}} {
		if err := positive(c.field, c.v); err != nil {
			return DuctFlowResult{}, err
		}
	}
	th, s0, err := initialState(in.State0, gas)
	if err != nil {
		return DuctFlowResult{}, err
	}
	if s0.MachNumber >= 1 {
		return DuctFlowResult{}, &SupersonicInitialConditionError{Mode: ModeFanno, MachNumber: s0.MachNumber}
	}

	d := &fannoDuct{
		th:  th,
		t0:  s0.StagnationTemperature,
		g:   s0.Density * s0.Velocity,
		fod: in.FrictionFactor / in.Diameter,
		opt: opts,
	}
	res := march(d, s0, in.Length, opts)
	res.Mode = ModeFanno
	res.MassFlowRate = d.g * math.Pi * in.Diameter * in.Diameter / 4
	if res.IsChoked {
		res.MaxLength = res.Positions[len(res.Positions)-1]
	} else {
		res.MaxLength = d.toSonic(0, s0.MachNumber*s0.MachNumber)
	}
	return res, nil
}

// MarchRayleigh integrates frictionless flow with heat transfer. Positive heat
// moves a subsonic state away from the sonic point: Mach number falls and
// static temperature rises. Removing heat reverses both and may choke.
func MarchRayleigh(in RayleighInput, opts Options) (DuctFlowResult, error) {
	opts = opts.normalized()
	gas := GasProperties{
		MolecularWeight:       in.MolecularWeight,
		SpecificHeatRatio:     in.SpecificHeatRatio,
		CompressibilityFactor: in.CompressibilityFactor,
	}
	if err := positive("diameter", in.Diameter); err != nil {
		return DuctFlowResult{}, err
	}
	if math.IsNaN(in.HeatTransferRate) || math.IsInf(in.HeatTransferRate, 0) {
		return DuctFlowResult{}, &InvalidInputError{Field: "heatTransferRate", Value: in.HeatTransferRate, Reason: "must be finite"}
	}
	th, s0, err := initialState(in.State0, gas)
	if err != nil {
		return DuctFlowResult{}, err
	}
	if s0.MachNumber >= 1 {
		return DuctFlowResult{}, &SupersonicInitialConditionError{Mode: ModeRayleigh, MachNumber: s0.MachNumber}
	}

	d := &rayleighDuct{
		th:  th,
		t00: s0.StagnationTemperature,
		g:   s0.Density * s0.Velocity,
		cp:  th.cp(),
		opt: opts,
	}
	res := march(d, s0, in.HeatTransferRate, opts)
	res.Mode = ModeRayleigh
	res.MassFlowRate = d.g * math.Pi * in.Diameter * in.Diameter / 4
	if res.IsChoked {
		res.MaxHeatTransfer = res.Positions[len(res.Positions)-1]
	} else {
		res.MaxHeatTransfer = d.toSonic(0, s0.MachNumber*s0.MachNumber)
	}
	return res, nil
}

// initialState rebuilds state0 from pressure, temperature and Mach number so
// that every derived field is consistent. Velocity is only used when no Mach
// number is given.
func initialState(s GasState, gas GasProperties) (thermo, GasState, error) {
	th, err := newThermo(gas)
	if err != nil {
		return thermo{}, GasState{}, err
	}
	if err := positive("state0.pressure", s.Pressure); err != nil {
		return thermo{}, GasState{}, err
	}
	if err := positive("state0.temperature", s.Temperature); err != nil {
		return thermo{}, GasState{}, err
	}
	m := s.MachNumber
	if m == 0 && s.Velocity > 0 {
		m = s.Velocity / th.sound(s.Temperature)
	}
	if !(m > 0) || math.IsInf(m, 1) {
		return thermo{}, GasState{}, &InvalidInputError{Field: "state0.machNumber", Value: m, Reason: "flow must be moving"}
	}
	return th, th.state(s.Pressure, s.Temperature, m), nil
}

// duct is one family of 1-D flows written in y = M² against an independent
// variable x (length or heat per unit mass).
type duct interface {
	slope(x, y float64) float64
	// toSonic is the signed change of x that brings the flow to M = 1,
	// or +Inf when no finite change does.
	toSonic(x, y float64) float64
	// exact advances y by h using the closed-form invariant of the flow.
	exact(x, y, h float64) float64
	state(x, y float64) GasState
}

type marchPhase interface {
	point() (x, y float64)
}

type ongoing struct {
	x, y float64
}

type terminated struct {
	reason Termination
	x, y   float64
}

func (p ongoing) point() (float64, float64)    { return p.x, p.y }
func (p terminated) point() (float64, float64) { return p.x, p.y }

func march(d duct, s0 GasState, total float64, opts Options) DuctFlowResult {
	n := opts.MarchSteps
	res := DuctFlowResult{
		States:    make([]GasState, 0, n+1),
		Positions: make([]float64, 0, n+1),
	}
	res.States = append(res.States, s0)
	res.Positions = append(res.Positions, 0)

	var ph marchPhase = ongoing{x: 0, y: s0.MachNumber * s0.MachNumber}
	for i := 1; i <= n; i++ {
		ph = advance(d, ph.(ongoing), total*float64(i)/float64(n), opts.SonicTolerance)
		x, y := ph.point()
		res.States = append(res.States, d.state(x, y))
		res.Positions = append(res.Positions, x)
		if _, done := ph.(terminated); done {
			break
		}
	}
	if p, ok := ph.(ongoing); ok {
		ph = terminated{reason: TerminationTarget, x: p.x, y: p.y}
	}

	end := ph.(terminated)
	res.Termination = end.reason
	res.IsChoked = end.reason == TerminationSonic

	maxMach := 0.0
	for _, s := range res.States {
		maxMach = math.Max(maxMach, s.MachNumber)
	}
	var c collector
	c.mach(maxMach)
	c.choked(res.IsChoked)
	res.Warnings = c.result()
	return res
}

func advance(d duct, cur ongoing, to float64, sonicTol float64) marchPhase {
	h := to - cur.x
	dist := d.toSonic(cur.x, cur.y)
	sonic := terminated{reason: TerminationSonic, x: cur.x + dist, y: 1}
	if dist*h > 0 && math.Abs(dist) <= math.Abs(h) {
		return sonic
	}

	// expected sign of the change in y over this step
	dir := d.slope(cur.x, cur.y) * h
	y, ok := rk4(d, cur.x, cur.y, h)
	if !ok || (y-cur.y)*dir < 0 {
		y = d.exact(cur.x, cur.y, h)
		if (y-cur.y)*dir < 0 {
			y = cur.y
		}
	}
	if math.Sqrt(y) >= 1-sonicTol {
		return sonic
	}
	return ongoing{x: to, y: y}
}

// rk4 is one classic Runge-Kutta step. ok is false when a stage leaves the
// subsonic interval 0 < y < 1, where the slope is not meaningful.
func rk4(d duct, x, y, h float64) (float64, bool) {
	inside := func(v float64) bool { return v > 0 && v < 1 }
	k1 := d.slope(x, y)
	y2 := y + h/2*k1
	if !inside(y2) {
		return 0, false
	}
	k2 := d.slope(x+h/2, y2)
	y3 := y + h/2*k2
	if !inside(y3) {
		return 0, false
	}
	k3 := d.slope(x+h/2, y3)
	y4 := y + h*k3
	if !inside(y4) {
		return 0, false
	}
	k4 := d.slope(x+h, y4)
	next := y + h/6*(k1+2*k2+2*k3+k4)
	return next, inside(next)
}

type fannoDuct struct {
	th  thermo
	t0  float64
	g   float64
	fod float64 // f/D
	opt Options
}

func (d *fannoDuct) slope(_, y float64) float64 {
	return d.fod * d.th.gamma * y * y * (1 + d.th.k()*y) / (1 - y)
}

func (d *fannoDuct) toSonic(_, y float64) float64 {
	return FannoParameter(math.Sqrt(y), d.th.gamma) / d.fod
}

func (d *fannoDuct) exact(_, y, h float64) float64 {
	target := FannoParameter(math.Sqrt(y), d.th.gamma) - d.fod*h
	if target <= 0 {
		return 1
	}
	m, _, _ := solveFannoMach(target, math.Sqrt(y), d.th.gamma, d.opt)
	return m * m
}

func (d *fannoDuct) state(_, y float64) GasState {
	return massFluxState(d.th, d.g, d.t0, y)
}

type rayleighDuct struct {
	th  thermo
	t00 float64 // stagnation temperature at q = 0
	g   float64
	cp  float64
	opt Options
}

func (d *rayleighDuct) t0(q float64) float64 {
	return d.t00 + q/d.cp
}

func (d *rayleighDuct) slope(q, y float64) float64 {
	g := d.th.gamma
	return -y * (1 + g*y) * (1 + d.th.k()*y) / (1 - y) / (d.cp * d.t0(q))
}

// phi is T0/T0* of the Rayleigh line. Along the march T0·phi stays constant
// and phi(1) = 1.
func (d *rayleighDuct) phi(y float64) float64 {
	g := d.th.gamma
	return 2 * (g + 1) * y * (1 + d.th.k()*y) / ((1 + g*y) * (1 + g*y))
}

func (d *rayleighDuct) toSonic(q, y float64) float64 {
	t0 := d.t0(q)
	return d.cp * (t0*d.phi(y) - t0)
}

func (d *rayleighDuct) exact(q, y, h float64) float64 {
	target := d.phi(y) * d.t0(q) / d.t0(q+h)
	if target >= 1 {
		return 1
	}
	// phi is increasing on 0 < y < 1
	lo, hi := 0.0, 1.0
	for i := 0; i < d.opt.MaxIterations; i++ {
		mid := (lo + hi) / 2
		if d.phi(mid) < target {
			lo = mid
		} else {
			hi = mid
		}
		if hi-lo <= d.opt.Tolerance*hi {
			break
		}
	}
	return (lo + hi) / 2
}

func (d *rayleighDuct) state(q, y float64) GasState {
	return massFluxState(d.th, d.g, d.t0(q), y)
}

// massFluxState recovers a full state from the conserved mass flux, the local
// stagnation temperature and y = M².
func massFluxState(th thermo, g, t0, y float64) GasState {
	m := math.Sqrt(y)
	t := t0 / (1 + th.k()*y)
	v := m * th.sound(t)
	p := g / v * th.zr * t
	return th.state(p, t, m)
}
