package gas

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func post(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/gas/test", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestHandlerPressureDrop(t *testing.T) {
	h := &Handler{}
	rec := post(h.PressureDrop, `{
		"gas": {"density": 1.225, "viscosity": 1.81e-5, "molecularWeight": 28.97},
		"pipe": {"diameter": 0.1, "length": 100, "roughness": 4.5e-5},
		"inletPressure": 101325, "massFlowRate": 0.1, "temperature": 273.15,
		"model": "isothermal"
	}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	var res DropResult
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if res.IsChoked || res.OutletPressure <= 0 {
		t.Errorf("unexpected result %+v", res)
	}
	if rec.Header().Get(ChokedHeader) != "" {
		t.Error("choked header on subsonic result")
	}
}

func TestHandlerPressureDropChoked(t *testing.T) {
	h := &Handler{}
	rec := post(h.PressureDrop, `{
		"gas": {"density": 1.225, "viscosity": 1.81e-5, "molecularWeight": 28.97, "specificHeatRatio": 1.32},
		"pipe": {"diameter": 0.01, "length": 1000, "roughness": 4.5e-5},
		"inletPressure": 101325, "massFlowRate": 100, "temperature": 273.15,
		"model": "adiabatic"
	}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	if rec.Header().Get(ChokedHeader) != "true" {
		t.Error("missing choked header")
	}
	var body map[string]any
	json.NewDecoder(rec.Body).Decode(&body)
	if body["outletPressure"] != 0.0 || body["isChoked"] != true {
		t.Errorf("body %v", body)
	}
	if _, ok := body["calculationParameters"]; !ok {
		t.Error("missing calculationParameters")
	}
}

func TestHandlerErrors(t *testing.T) {
	h := &Handler{}
	cases := []struct {
		name string
		fn   http.HandlerFunc
		body string
		code int
		typ  string
	}{
		{"bad json", h.PressureDrop, `{`, http.StatusBadRequest, ""},
		{"zero diameter", h.PressureDrop, `{"gas":{"density":1.2,"viscosity":1.8e-5,"molecularWeight":29},"pipe":{"diameter":0,"length":1},"inletPressure":1e5,"massFlowRate":1,"temperature":300}`, http.StatusUnprocessableEntity, "InvalidInputError"},
		{"supersonic fanno", h.Fanno, `{"state0":{"pressure":1e5,"temperature":300,"machNumber":2},"length":1,"diameter":0.1,"frictionFactor":0.02,"specificHeatRatio":1.4,"molecularWeight":28.97}`, http.StatusUnprocessableEntity, "SupersonicInitialConditionError"},
		{"subsonic shock", h.NormalShock, `{"machNumber1":0.5}`, http.StatusUnprocessableEntity, "InvalidInputError"},
	}
	for _, c := range cases {
		rec := post(c.fn, c.body)
		if rec.Code != c.code {
			t.Errorf("%s: status %d, want %d", c.name, rec.Code, c.code)
			continue
		}
		var body errorBody
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Errorf("%s: %v", c.name, err)
			continue
		}
		if body.Type != c.typ {
			t.Errorf("%s: type %q, want %q", c.name, body.Type, c.typ)
		}
	}
}

func TestHandlerRayleigh(t *testing.T) {
	h := &Handler{Options: Options{MarchSteps: 20}}
	rec := post(h.Rayleigh, `{"state0":{"pressure":2e5,"temperature":300,"machNumber":0.3},"heatTransferRate":50000,"diameter":0.05,"specificHeatRatio":1.4,"molecularWeight":28.97}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	var res DuctFlowResult
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if res.Mode != ModeRayleigh || len(res.States) != 21 {
		t.Errorf("mode %q with %d states", res.Mode, len(res.States))
	}
}
