package gas

// Options are the numeric tunables of the engine. Zero fields fall back to
// DefaultOptions.
type Options struct {
	// MarchSteps is the number of equal sub-steps of a Fanno/Rayleigh march.
	MarchSteps int
	// MaxIterations caps every implicit solve.
	MaxIterations int
	// Tolerance is the relative convergence tolerance of implicit solves.
	Tolerance float64
	// SonicTolerance is how close to 1 a Mach number counts as sonic.
	SonicTolerance float64
	// DefaultGamma is used by the isothermal model when no γ is supplied.
	DefaultGamma float64
}

func DefaultOptions() Options {
	return Options{
		MarchSteps:     200,
		MaxIterations:  100,
		Tolerance:      1e-10,
		SonicTolerance: 1e-6,
		DefaultGamma:   DefaultSpecificHeatRatio,
	}
}

func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.MarchSteps <= 0 {
		o.MarchSteps = d.MarchSteps
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = d.MaxIterations
	}
	if o.Tolerance <= 0 {
		o.Tolerance = d.Tolerance
	}
	if o.SonicTolerance <= 0 {
		o.SonicTolerance = d.SonicTolerance
	}
	if o.DefaultGamma <= 1 {
		o.DefaultGamma = d.DefaultGamma
	}
	return o
}
