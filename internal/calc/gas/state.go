package gas

import "math"

const (
	// UniversalGasConstant in J/(kmol·K).
	UniversalGasConstant = 8314.462618

	DefaultSpecificHeatRatio = 1.4
)

type GasProperties struct {
	Density               float64 `json:"density" yaml:"density"`
	Viscosity             float64 `json:"viscosity" yaml:"viscosity"`
	MolecularWeight       float64 `json:"molecularWeight" yaml:"molecularWeight"`
	SpecificHeatRatio     float64 `json:"specificHeatRatio,omitempty" yaml:"specificHeatRatio"`
	CompressibilityFactor float64 `json:"compressibilityFactor,omitempty" yaml:"compressibilityFactor"`
}

// GasConstant is the specific gas constant R = Ru/MW in J/(kg·K).
func (g GasProperties) GasConstant() float64 {
	return UniversalGasConstant / g.MolecularWeight
}

// Z returns the compressibility factor, 1 when unset.
func (g GasProperties) Z() float64 {
	if g.CompressibilityFactor == 0 {
		return 1
	}
	return g.CompressibilityFactor
}

type PipeGeometry struct {
	Diameter  float64 `json:"diameter" yaml:"diameter"`
	Length    float64 `json:"length" yaml:"length"`
	Roughness float64 `json:"roughness" yaml:"roughness"`
}

func (p PipeGeometry) Area() float64 {
	return math.Pi * p.Diameter * p.Diameter / 4
}

func (p PipeGeometry) RelativeRoughness() float64 {
	return p.Roughness / p.Diameter
}

// GasState is one point of a flow. Values are never modified after
// construction; marching produces new states.
type GasState struct {
	Pressure              float64 `json:"pressure" yaml:"pressure"`
	Temperature           float64 `json:"temperature" yaml:"temperature"`
	Density               float64 `json:"density" yaml:"density"`
	Velocity              float64 `json:"velocity" yaml:"velocity"`
	MachNumber            float64 `json:"machNumber" yaml:"machNumber"`
	StagnationPressure    float64 `json:"stagnationPressure" yaml:"stagnationPressure"`
	StagnationTemperature float64 `json:"stagnationTemperature" yaml:"stagnationTemperature"`
}

func SpeedOfSound(temperature, gamma, gasConstant float64) (float64, error) {
	if err := checkThermo(temperature, gamma); err != nil {
		return 0, err
	}
	return math.Sqrt(gamma * gasConstant * temperature), nil
}

func MachNumber(velocity, speedOfSound float64) float64 {
	if speedOfSound <= 0 {
		return 0
	}
	return velocity / speedOfSound
}

func StagnationTemperature(temperature, mach, gamma float64) (float64, error) {
	if err := checkThermo(temperature, gamma); err != nil {
		return 0, err
	}
	return temperature * (1 + (gamma-1)/2*mach*mach), nil
}

func StagnationPressure(pressure, mach, gamma float64) (float64, error) {
	if err := checkThermo(1, gamma); err != nil {
		return 0, err
	}
	return pressure * math.Pow(1+(gamma-1)/2*mach*mach, gamma/(gamma-1)), nil
}

func checkThermo(temperature, gamma float64) error {
	if !(gamma > 1) || math.IsInf(gamma, 1) {
		return &InvalidGasPropertyError{Property: "specificHeatRatio", Value: gamma}
	}
	if !(temperature > 0) || math.IsInf(temperature, 1) {
		return &InvalidGasPropertyError{Property: "temperature", Value: temperature}
	}
	return nil
}

// NewGasState builds a consistent state from pressure, temperature and Mach
// number. density follows p = ρZRT, velocity = M·a.
func NewGasState(pressure, temperature, mach float64, gas GasProperties) (GasState, error) {
	th, err := newThermo(gas)
	if err != nil {
		return GasState{}, err
	}
	if err := positive("pressure", pressure); err != nil {
		return GasState{}, err
	}
	if err := checkThermo(temperature, th.gamma); err != nil {
		return GasState{}, err
	}
	if mach < 0 || math.IsNaN(mach) {
		return GasState{}, &InvalidInputError{Field: "machNumber", Value: mach, Reason: "must not be negative"}
	}
	return th.state(pressure, temperature, mach), nil
}

// thermo holds the per-call gas constants used by every solver.
type thermo struct {
	gamma float64
	// zr is Z·R, the effective gas constant of the equation of state
	zr float64
}

func newThermo(gas GasProperties) (thermo, error) {
	if err := positive("molecularWeight", gas.MolecularWeight); err != nil {
		return thermo{}, err
	}
	if gas.CompressibilityFactor < 0 {
		return thermo{}, &InvalidInputError{Field: "compressibilityFactor", Value: gas.CompressibilityFactor}
	}
	if err := checkThermo(1, gas.SpecificHeatRatio); err != nil {
		return thermo{}, err
	}
	return thermo{gamma: gas.SpecificHeatRatio, zr: gas.Z() * gas.GasConstant()}, nil
}

func (t thermo) k() float64 { return (t.gamma - 1) / 2 }

func (t thermo) sound(temperature float64) float64 {
	return math.Sqrt(t.gamma * t.zr * temperature)
}

// cp is chosen as γZR/(γ−1) so that cp·T0 = cp·T + v²/2 reproduces
// T0 = T(1 + (γ−1)M²/2).
func (t thermo) cp() float64 {
	return t.gamma * t.zr / (t.gamma - 1)
}

func (t thermo) state(pressure, temperature, mach float64) GasState {
	a := t.sound(temperature)
	f := 1 + t.k()*mach*mach
	return GasState{
		Pressure:              pressure,
		Temperature:           temperature,
		Density:               pressure / (t.zr * temperature),
		Velocity:              mach * a,
		MachNumber:            mach,
		StagnationPressure:    pressure * math.Pow(f, t.gamma/(t.gamma-1)),
		StagnationTemperature: temperature * f,
	}
}
