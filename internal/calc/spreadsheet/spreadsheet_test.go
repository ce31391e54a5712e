package spreadsheet

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Luqman-Ismat/engivault-api-sub002/internal/calc/batch"
	"github.com/Luqman-Ismat/engivault-api-sub002/internal/calc/gas"
	"github.com/xuri/excelize/v2"
)

func dropWorkbook(t *testing.T) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	rows := [][]interface{}{
		{"model", "inletPressure", "massFlowRate", "temperature", "diameter", "length", "roughness", "density", "viscosity", "molecularWeight", "specificHeatRatio"},
		{"isothermal", 101325, 0.1, 273.15, 0.1, 100, 4.5e-5, 1.225, 1.81e-5, 28.97},
		{"Adiabatic", 500000, 0.5, 300, 0.1, 100, 4.5e-5, 1.225, 1.81e-5, 28.97, 1.4},
		{"isothermal", "lots", 0.1, 273.15, 0.1, 100, 0, 1.225, 1.81e-5, 28.97},
		{"isothermal", 101325},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}
	return &buf
}

func TestReadDrops(t *testing.T) {
	cases, bad, err := ReadDrops(dropWorkbook(t))
	if err != nil {
		t.Fatal(err)
	}
	if len(cases) != 2 {
		t.Fatalf("got %d cases", len(cases))
	}
	if cases[1].Model != gas.ModelAdiabatic || cases[1].Gas.SpecificHeatRatio != 1.4 {
		t.Errorf("second case %+v", cases[1])
	}
	if cases[0].Pipe.Diameter != 0.1 || cases[0].InletPressure != 101325 {
		t.Errorf("first case %+v", cases[0])
	}
	if len(bad) != 2 || bad[0].Row != 4 || bad[1].Row != 5 {
		t.Errorf("bad rows %+v", bad)
	}
}

func TestWriteMarchRoundTrip(t *testing.T) {
	res, err := gas.MarchFanno(gas.FannoInput{
		State0:            gas.GasState{Pressure: 2e5, Temperature: 300, MachNumber: 0.3},
		Length:            20,
		Diameter:          0.05,
		FrictionFactor:    0.02,
		SpecificHeatRatio: 1.4,
		MolecularWeight:   28.97,
	}, gas.Options{MarchSteps: 50})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteMarch(&buf, res); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := f.GetRows("States")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != len(res.States)+1 {
		t.Errorf("got %d rows for %d states", len(rows), len(res.States))
	}
	if rows[0][0] != "length" || rows[0][5] != "machNumber" {
		t.Errorf("header %v", rows[0])
	}
	choked, err := f.GetCellValue("Summary", "B2")
	if err != nil || choked != "TRUE" {
		t.Errorf("isChoked cell %q (%v)", choked, err)
	}
}

func TestImportHandler(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "cases.xlsx")
	if err != nil {
		t.Fatal(err)
	}
	part.Write(dropWorkbook(t).Bytes())
	mw.Close()

	h := &Handler{Runner: &batch.Runner{Workers: 2}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/gas/pressure-drop/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ImportDrops(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	if !strings.Contains(rec.Body.String(), `"rows":2`) {
		t.Errorf("body %s", rec.Body)
	}
}

func TestExportRayleighHandler(t *testing.T) {
	h := &Handler{Options: gas.Options{MarchSteps: 10}}
	body := `{"state0":{"pressure":2e5,"temperature":300,"machNumber":0.3},"heatTransferRate":50000,"diameter":0.05,"specificHeatRatio":1.4,"molecularWeight":28.97}`
	rec := httptest.NewRecorder()
	h.ExportRayleigh(rec, httptest.NewRequest(http.MethodPost, "/api/v1/gas/rayleigh/export", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	f, err := excelize.OpenReader(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if v, _ := f.GetCellValue("States", "A1"); v != "heatTransfer" {
		t.Errorf("position header %q", v)
	}
}
