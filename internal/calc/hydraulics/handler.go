package hydraulics

import (
	"encoding/json"
	"net/http"

	"github.com/Luqman-Ismat/engivault-api-sub002/internal/calc/gas"
)

type Handler struct{}

func (h *Handler) PressureDrop(w http.ResponseWriter, r *http.Request) {
	var input DropInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := PressureDrop(input)
	if err != nil {
		gas.WriteError(w, r, err)
		return
	}
	gas.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) FlowRate(w http.ResponseWriter, r *http.Request) {
	var input FlowInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := FlowRate(input)
	if err != nil {
		gas.WriteError(w, r, err)
		return
	}
	gas.WriteJSON(w, http.StatusOK, res)
}
