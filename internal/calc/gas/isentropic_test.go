package gas

import "testing"

func TestCompressibleFlowFromVelocity(t *testing.T) {
	v := 100.0
	res, err := CompressibleFlow(CompressibleFlowInput{
		Temperature:   288,
		Pressure:      101325,
		GasProperties: IdealGas{Gamma: 1.4, GasConstant: 287, MolecularWeight: 28.97},
		Velocity:      &v,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !near(res.SpeedOfSound, 340.17, 1e-3) {
		t.Errorf("speed of sound %g", res.SpeedOfSound)
	}
	if !near(res.MachNumber, 100/res.SpeedOfSound, 1e-12) {
		t.Errorf("Mach %g", res.MachNumber)
	}
	if res.FlowRegime != RegimeSubsonic {
		t.Errorf("regime %q", res.FlowRegime)
	}
	if !near(res.StagnationTemperature, 288+v*v/(2*1004.5), 1e-6) {
		t.Errorf("T0 %g", res.StagnationTemperature)
	}
	if !near(res.DensityRatio, res.PressureRatio/res.TemperatureRatio, 1e-12) {
		t.Errorf("density ratio %g", res.DensityRatio)
	}
}

func TestCompressibleFlowNeedsMachOrVelocity(t *testing.T) {
	_, err := CompressibleFlow(CompressibleFlowInput{
		Temperature:   288,
		Pressure:      101325,
		GasProperties: IdealGas{Gamma: 1.4, MolecularWeight: 28.97},
	})
	if !IsInputError(err) {
		t.Errorf("err=%v", err)
	}
}

func TestClassifyMach(t *testing.T) {
	cases := []struct {
		m    float64
		want FlowRegime
	}{
		{0.1, RegimeSubsonic},
		{0.95, RegimeTransonic},
		{1.2, RegimeTransonic},
		{2, RegimeSupersonic},
		{7, RegimeHypersonic},
	}
	for _, c := range cases {
		if got := ClassifyMach(c.m); got != c.want {
			t.Errorf("M=%g: %q, want %q", c.m, got, c.want)
		}
	}
}

func TestNormalShock(t *testing.T) {
	res, err := NormalShock(NormalShockInput{MachNumber1: 2})
	if err != nil {
		t.Fatal(err)
	}
	checks := []struct {
		name      string
		got, want float64
	}{
		{"M2", res.MachNumber2, 0.57735},
		{"p2/p1", res.PressureRatio, 4.5},
		{"rho2/rho1", res.DensityRatio, 2.6667},
		{"T2/T1", res.TemperatureRatio, 1.6875},
		{"p02/p01", res.StagnationPressureRatio, 0.72087},
	}
	for _, c := range checks {
		if !near(c.got, c.want, 1e-4) {
			t.Errorf("%s=%g, want %g", c.name, c.got, c.want)
		}
	}

	if _, err := NormalShock(NormalShockInput{MachNumber1: 0.8, Gamma: 1.4}); !IsInputError(err) {
		t.Errorf("subsonic shock: err=%v", err)
	}
}

func TestChokedFlow(t *testing.T) {
	res, err := ChokedFlow(ChokedFlowInput{StagnationTemperature: 300, StagnationPressure: 2e5})
	if err != nil {
		t.Fatal(err)
	}
	if !near(res.CriticalTemperature, 250, 1e-12) {
		t.Errorf("T*=%g", res.CriticalTemperature)
	}
	if !near(res.CriticalPressure, 105657, 1e-4) {
		t.Errorf("p*=%g", res.CriticalPressure)
	}
	if !near(res.CriticalVelocity, 316.94, 1e-4) {
		t.Errorf("a*=%g", res.CriticalVelocity)
	}
	if !near(res.MassFlux, res.CriticalDensity*res.CriticalVelocity, 1e-12) {
		t.Errorf("mass flux %g", res.MassFlux)
	}
	if _, err := ChokedFlow(ChokedFlowInput{StagnationTemperature: -1, StagnationPressure: 2e5}); !IsInputError(err) {
		t.Errorf("negative T0: err=%v", err)
	}
}
