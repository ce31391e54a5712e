package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Luqman-Ismat/engivault-api-sub002/internal/calc/batch"
	"github.com/Luqman-Ismat/engivault-api-sub002/internal/calc/gas"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.ini")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

const dropYAML = `
gas:
  density: 1.225
  viscosity: 1.81e-5
  molecularWeight: 28.97
pipe:
  diameter: 0.1
  length: 100
  roughness: 4.5e-5
inletPressure: 101325
massFlowRate: 0.1
temperature: 273.15
model: isothermal
`

func TestDropCommand(t *testing.T) {
	dir := t.TempDir()
	pdf := filepath.Join(dir, "drop.pdf")
	out, err := run(t, dropYAML, "drop", "-", "--report", pdf)
	if err != nil {
		t.Fatalf("%v: %s", err, out)
	}
	var res gas.DropResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("%v: %s", err, out)
	}
	if res.IsChoked || res.OutletPressure <= 0 {
		t.Errorf("result %+v", res)
	}
	if info, err := os.Stat(pdf); err != nil || info.Size() == 0 {
		t.Errorf("report not written: %v", err)
	}
}

func TestDropCommandRejectsUnknownField(t *testing.T) {
	if _, err := run(t, dropYAML+"colour: blue\n", "drop", "-"); err == nil {
		t.Error("expected unknown field to fail")
	}
}

func TestFannoCommandWritesWorkbook(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "case.yaml")
	data := `
state0:
  pressure: 200000
  temperature: 300
  machNumber: 0.3
length: 20
diameter: 0.05
frictionFactor: 0.02
specificHeatRatio: 1.4
molecularWeight: 28.97
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	xlsx := filepath.Join(dir, "states.xlsx")
	out, err := run(t, "", "fanno", path, "--xlsx", xlsx)
	if err != nil {
		t.Fatalf("%v: %s", err, out)
	}
	var res gas.DuctFlowResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatal(err)
	}
	if !res.IsChoked {
		t.Error("20 m at M=0.3 should choke")
	}
	if _, err := os.Stat(xlsx); err != nil {
		t.Errorf("workbook not written: %v", err)
	}
}

func TestRayleighCommandError(t *testing.T) {
	data := "state0: {pressure: 200000, temperature: 300, machNumber: 2}\nheatTransferRate: 1000\ndiameter: 0.05\nspecificHeatRatio: 1.4\nmolecularWeight: 28.97\n"
	_, err := run(t, data, "rayleigh", "-")
	if gas.ErrorType(err) != "SupersonicInitialConditionError" {
		t.Errorf("err=%v", err)
	}
}

func TestBatchCommand(t *testing.T) {
	item := strings.ReplaceAll(strings.TrimSpace(dropYAML), "\n", "\n    ")
	data := "items:\n  - " + item + "\n  - " + item + "\n"
	out, err := run(t, data, "batch", "-", "--workers", "2")
	if err != nil {
		t.Fatalf("%v: %s", err, out)
	}
	var res batch.DropBatchResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatal(err)
	}
	if res.Count != 2 || res.Failed != 0 {
		t.Errorf("batch %+v", res)
	}
}
