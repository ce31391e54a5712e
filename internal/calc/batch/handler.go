package batch

import (
	"encoding/json"
	"net/http"

	"github.com/Luqman-Ismat/engivault-api-sub002/internal/calc/gas"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	Runner *Runner
}

func (h *Handler) PressureDrop(w http.ResponseWriter, r *http.Request) {
	var input DropBatchInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := h.Runner.Run(r.Context(), input)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	log.WithFields(log.Fields{
		"count":  res.Count,
		"failed": res.Failed,
		"choked": res.Choked,
	}).Info("batch solved")
	if res.Choked > 0 {
		w.Header().Set(gas.ChokedHeader, "true")
	}
	gas.WriteJSON(w, http.StatusOK, res)
}
