package gas

import (
	"errors"
	"testing"
)

func fannoCase(length float64) FannoInput {
	return FannoInput{
		State0:            GasState{Pressure: 2e5, Temperature: 300, MachNumber: 0.3},
		Length:            length,
		Diameter:          0.05,
		FrictionFactor:    0.02,
		SpecificHeatRatio: 1.4,
		MolecularWeight:   28.97,
	}
}

func rayleighCase(q float64) RayleighInput {
	return RayleighInput{
		State0:            GasState{Pressure: 2e5, Temperature: 300, MachNumber: 0.3},
		HeatTransferRate:  q,
		Diameter:          0.05,
		SpecificHeatRatio: 1.4,
		MolecularWeight:   28.97,
	}
}

// sonicHeat is the heat per unit mass that brings the Rayleigh case to M=1.
func sonicHeat(in RayleighInput) float64 {
	g := in.SpecificHeatRatio
	r := UniversalGasConstant / in.MolecularWeight
	cp := g * r / (g - 1)
	y := in.State0.MachNumber * in.State0.MachNumber
	t0 := in.State0.Temperature * (1 + (g-1)/2*y)
	phi := 2 * (g + 1) * y * (1 + (g-1)/2*y) / ((1 + g*y) * (1 + g*y))
	return cp * t0 * (phi - 1)
}

func checkShape(t *testing.T, res DuctFlowResult) {
	t.Helper()
	if len(res.States) < 2 {
		t.Fatalf("got %d states, want at least 2", len(res.States))
	}
	if len(res.States) != len(res.Positions) {
		t.Fatalf("%d states but %d positions", len(res.States), len(res.Positions))
	}
	if res.Positions[0] != 0 {
		t.Errorf("first position %g, want 0", res.Positions[0])
	}
}

func TestMarchFannoSubsonic(t *testing.T) {
	res, err := MarchFanno(fannoCase(5), Options{})
	if err != nil {
		t.Fatal(err)
	}
	checkShape(t, res)
	if res.IsChoked || res.Termination != TerminationTarget {
		t.Fatalf("choked=%v termination=%q", res.IsChoked, res.Termination)
	}
	if n := len(res.States); n != DefaultOptions().MarchSteps+1 {
		t.Errorf("got %d states, want %d", n, DefaultOptions().MarchSteps+1)
	}
	if last := res.Positions[len(res.Positions)-1]; !near(last, 5, 1e-12) {
		t.Errorf("last position %g, want 5", last)
	}
	for i := 1; i < len(res.States); i++ {
		prev, cur := res.States[i-1], res.States[i]
		if cur.MachNumber < prev.MachNumber {
			t.Fatalf("Mach fell at %d: %g -> %g", i, prev.MachNumber, cur.MachNumber)
		}
		if cur.Velocity < prev.Velocity {
			t.Fatalf("velocity fell at %d: %g -> %g", i, prev.Velocity, cur.Velocity)
		}
		if cur.Pressure > prev.Pressure {
			t.Fatalf("pressure rose at %d: %g -> %g", i, prev.Pressure, cur.Pressure)
		}
	}
	for i, s := range res.States {
		if !near(s.StagnationTemperature, res.States[0].StagnationTemperature, 1e-9) {
			t.Fatalf("stagnation temperature drifted at %d: %g", i, s.StagnationTemperature)
		}
	}

	// 0.4 is f/D of the case
	if want := FannoParameter(0.3, 1.4) / 0.4; !near(res.MaxLength, want, 1e-12) {
		t.Errorf("maxLength %g, want %g", res.MaxLength, want)
	}
	if !res.Warnings.Has(WarnHighMach) {
		t.Errorf("Mach above 0.3 without warning: %v", res.Warnings)
	}
	wantFlow := res.States[0].Density * res.States[0].Velocity * 0.25 * 3.141592653589793 * 0.05 * 0.05
	if !near(res.MassFlowRate, wantFlow, 1e-9) {
		t.Errorf("mass flow %g, want %g", res.MassFlowRate, wantFlow)
	}
}

func TestMarchFannoChokes(t *testing.T) {
	in := fannoCase(20)
	res, err := MarchFanno(in, Options{})
	if err != nil {
		t.Fatal(err)
	}
	checkShape(t, res)
	if !res.IsChoked || res.Termination != TerminationSonic {
		t.Fatalf("choked=%v termination=%q", res.IsChoked, res.Termination)
	}
	last := res.States[len(res.States)-1]
	if !near(last.MachNumber, 1, 1e-6) {
		t.Errorf("last Mach %g, want 1", last.MachNumber)
	}
	lastPos := res.Positions[len(res.Positions)-1]
	if res.MaxLength != lastPos {
		t.Errorf("maxLength %g differs from sonic position %g", res.MaxLength, lastPos)
	}
	if want := FannoParameter(0.3, 1.4) / 0.4; !near(res.MaxLength, want, 1e-3) {
		t.Errorf("maxLength %g, want ≈%g", res.MaxLength, want)
	}
	if lastPos > in.Length {
		t.Errorf("sonic point %g beyond duct length %g", lastPos, in.Length)
	}
	if !res.Warnings.Has(WarnChoked) {
		t.Errorf("missing choked warning: %v", res.Warnings)
	}
	for i := 1; i < len(res.States); i++ {
		if res.States[i].MachNumber < res.States[i-1].MachNumber {
			t.Fatalf("Mach fell at %d", i)
		}
	}
}

func TestMarchFannoRejects(t *testing.T) {
	sup := fannoCase(5)
	sup.State0.MachNumber = 1.5
	_, err := MarchFanno(sup, Options{})
	var se *SupersonicInitialConditionError
	if !errors.As(err, &se) || se.Mode != ModeFanno {
		t.Errorf("M0=1.5: err=%v", err)
	}

	sonic := fannoCase(5)
	sonic.State0.MachNumber = 1
	if _, err := MarchFanno(sonic, Options{}); !errors.As(err, &se) {
		t.Errorf("M0=1: err=%v", err)
	}

	cases := []struct {
		name   string
		mutate func(*FannoInput)
		want   string
	}{
		{"zero Mach", func(in *FannoInput) { in.State0.MachNumber = 0 }, "InvalidInputError"},
		{"zero length", func(in *FannoInput) { in.Length = 0 }, "InvalidInputError"},
		{"zero friction", func(in *FannoInput) { in.FrictionFactor = 0 }, "InvalidInputError"},
		{"negative pressure", func(in *FannoInput) { in.State0.Pressure = -1 }, "InvalidInputError"},
		{"gamma one", func(in *FannoInput) { in.SpecificHeatRatio = 1 }, "InvalidGasPropertyError"},
	}
	for _, c := range cases {
		in := fannoCase(5)
		c.mutate(&in)
		_, err := MarchFanno(in, Options{})
		if got := ErrorType(err); got != c.want {
			t.Errorf("%s: got %q (%v), want %q", c.name, got, err, c.want)
		}
	}
}

func TestMarchFannoFromVelocity(t *testing.T) {
	in := fannoCase(5)
	in.State0 = GasState{Pressure: 2e5, Temperature: 300, Velocity: 100}
	res, err := MarchFanno(in, Options{MarchSteps: 10})
	if err != nil {
		t.Fatal(err)
	}
	a, _ := SpeedOfSound(300, 1.4, UniversalGasConstant/28.97)
	if !near(res.States[0].MachNumber, 100/a, 1e-12) {
		t.Errorf("initial Mach %g, want %g", res.States[0].MachNumber, 100/a)
	}
	if len(res.States) != 11 {
		t.Errorf("got %d states with 10 steps", len(res.States))
	}
}

func TestMarchRayleighHeating(t *testing.T) {
	in := rayleighCase(1e5)
	res, err := MarchRayleigh(in, Options{})
	if err != nil {
		t.Fatal(err)
	}
	checkShape(t, res)
	if res.IsChoked {
		t.Fatal("heating a subsonic flow should not choke")
	}
	for i := 1; i < len(res.States); i++ {
		prev, cur := res.States[i-1], res.States[i]
		if cur.Temperature < prev.Temperature {
			t.Fatalf("temperature fell at %d: %g -> %g", i, prev.Temperature, cur.Temperature)
		}
		if cur.MachNumber > prev.MachNumber {
			t.Fatalf("Mach rose at %d: %g -> %g", i, prev.MachNumber, cur.MachNumber)
		}
	}
	if !near(res.MaxHeatTransfer, sonicHeat(in), 1e-9) {
		t.Errorf("maxHeatTransfer %g, want %g", res.MaxHeatTransfer, sonicHeat(in))
	}
}

func TestMarchRayleighCooling(t *testing.T) {
	in := rayleighCase(-1e5)
	res, err := MarchRayleigh(in, Options{})
	if err != nil {
		t.Fatal(err)
	}
	checkShape(t, res)
	if res.IsChoked {
		t.Fatalf("q=%g should stay short of the sonic heat %g", in.HeatTransferRate, sonicHeat(in))
	}
	for i := 1; i < len(res.States); i++ {
		prev, cur := res.States[i-1], res.States[i]
		if cur.Temperature > prev.Temperature {
			t.Fatalf("temperature rose at %d: %g -> %g", i, prev.Temperature, cur.Temperature)
		}
		if cur.MachNumber < prev.MachNumber {
			t.Fatalf("Mach fell at %d: %g -> %g", i, prev.MachNumber, cur.MachNumber)
		}
	}
}

func TestMarchRayleighChokes(t *testing.T) {
	in := rayleighCase(-3e5)
	res, err := MarchRayleigh(in, Options{})
	if err != nil {
		t.Fatal(err)
	}
	checkShape(t, res)
	if !res.IsChoked || res.Termination != TerminationSonic {
		t.Fatalf("choked=%v termination=%q", res.IsChoked, res.Termination)
	}
	last := res.States[len(res.States)-1]
	if !near(last.MachNumber, 1, 1e-6) {
		t.Errorf("last Mach %g, want 1", last.MachNumber)
	}
	if !near(res.MaxHeatTransfer, sonicHeat(in), 1e-3) {
		t.Errorf("maxHeatTransfer %g, want ≈%g", res.MaxHeatTransfer, sonicHeat(in))
	}
	if !res.Warnings.Has(WarnChoked) || !res.Warnings.Has(WarnHighMach) {
		t.Errorf("warnings %v", res.Warnings)
	}
}

func TestMarchRayleighZeroHeat(t *testing.T) {
	res, err := MarchRayleigh(rayleighCase(0), Options{MarchSteps: 4})
	if err != nil {
		t.Fatal(err)
	}
	for i, s := range res.States {
		if !near(s.MachNumber, 0.3, 1e-12) {
			t.Errorf("state %d Mach %g, want 0.3", i, s.MachNumber)
		}
	}
}

func TestMarchRayleighRejects(t *testing.T) {
	in := rayleighCase(1e5)
	in.State0.MachNumber = 2
	_, err := MarchRayleigh(in, Options{})
	var se *SupersonicInitialConditionError
	if !errors.As(err, &se) || se.Mode != ModeRayleigh {
		t.Errorf("M0=2: err=%v", err)
	}

	in = rayleighCase(1e5)
	in.Diameter = 0
	if _, err := MarchRayleigh(in, Options{}); ErrorType(err) != "InvalidInputError" {
		t.Errorf("zero diameter: err=%v", err)
	}
}
