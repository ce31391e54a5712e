package gas

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// ChokedHeader is set on responses whose flow reached Mach 1.
const ChokedHeader = "X-Flow-Choked"

type Handler struct {
	Options Options
}

type errorBody struct {
	Error string `json:"error"`
	Type  string `json:"type,omitempty"`
}

// WriteError answers 422 for a rejected calculation and 500 for anything else.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	if IsInputError(err) {
		status = http.StatusUnprocessableEntity
	}
	log.WithFields(log.Fields{
		"path":  r.URL.Path,
		"type":  ErrorType(err),
		"error": err,
	}).Warn("calculation rejected")
	WriteJSON(w, status, errorBody{Error: err.Error(), Type: ErrorType(err)})
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid request payload"})
		return false
	}
	return true
}

func markChoked(w http.ResponseWriter, r *http.Request, choked bool, fields log.Fields) {
	if !choked {
		return
	}
	w.Header().Set(ChokedHeader, "true")
	fields["path"] = r.URL.Path
	log.WithFields(fields).Info("choked flow")
}

func (h *Handler) PressureDrop(w http.ResponseWriter, r *http.Request) {
	var in DropInput
	if !decode(w, r, &in) {
		return
	}
	res, err := CalculateDrop(in, h.Options)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	markChoked(w, r, res.IsChoked, log.Fields{"model": res.Parameters.Model, "inletPressure": in.InletPressure})
	WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) Fanno(w http.ResponseWriter, r *http.Request) {
	var in FannoInput
	if !decode(w, r, &in) {
		return
	}
	res, err := MarchFanno(in, h.Options)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	markChoked(w, r, res.IsChoked, log.Fields{"maxLength": res.MaxLength})
	WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) Rayleigh(w http.ResponseWriter, r *http.Request) {
	var in RayleighInput
	if !decode(w, r, &in) {
		return
	}
	res, err := MarchRayleigh(in, h.Options)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	markChoked(w, r, res.IsChoked, log.Fields{"maxHeatTransfer": res.MaxHeatTransfer})
	WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) CompressibleFlow(w http.ResponseWriter, r *http.Request) {
	var in CompressibleFlowInput
	if !decode(w, r, &in) {
		return
	}
	res, err := CompressibleFlow(in)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) NormalShock(w http.ResponseWriter, r *http.Request) {
	var in NormalShockInput
	if !decode(w, r, &in) {
		return
	}
	res, err := NormalShock(in)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) ChokedFlow(w http.ResponseWriter, r *http.Request) {
	var in ChokedFlowInput
	if !decode(w, r, &in) {
		return
	}
	res, err := ChokedFlow(in)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, res)
}
