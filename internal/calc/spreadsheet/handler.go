package spreadsheet

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Luqman-Ismat/engivault-api-sub002/internal/calc/batch"
	"github.com/Luqman-Ismat/engivault-api-sub002/internal/calc/gas"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	Runner      *batch.Runner
	Options     gas.Options
	MaxUploadMB int64
}

type ImportResult struct {
	Rows    int                   `json:"rows"`
	Skipped []RowError            `json:"skipped"`
	Batch   batch.DropBatchResult `json:"batch"`
}

func (h *Handler) maxUpload() int64 {
	if h.MaxUploadMB <= 0 {
		return 10 << 20
	}
	return h.MaxUploadMB << 20
}

func (h *Handler) ImportDrops(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload())
	if err := r.ParseMultipartForm(h.maxUpload()); err != nil {
		http.Error(w, "File too big", http.StatusBadRequest)
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	cases, skipped, err := ReadDrops(file)
	if err != nil {
		http.Error(w, "Invalid file", http.StatusBadRequest)
		return
	}
	if len(cases) == 0 {
		http.Error(w, "No valid rows", http.StatusBadRequest)
		return
	}
	res, err := h.Runner.Run(r.Context(), batch.DropBatchInput{Items: cases})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if skipped == nil {
		skipped = []RowError{}
	}
	log.WithFields(log.Fields{"rows": len(cases), "skipped": len(skipped)}).Info("spreadsheet imported")
	if res.Choked > 0 {
		w.Header().Set(gas.ChokedHeader, "true")
	}
	gas.WriteJSON(w, http.StatusOK, ImportResult{Rows: len(cases), Skipped: skipped, Batch: res})
}

func (h *Handler) ExportFanno(w http.ResponseWriter, r *http.Request) {
	var input gas.FannoInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := gas.MarchFanno(input, h.Options)
	if err != nil {
		gas.WriteError(w, r, err)
		return
	}
	h.writeWorkbook(w, r, res)
}

func (h *Handler) ExportRayleigh(w http.ResponseWriter, r *http.Request) {
	var input gas.RayleighInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := gas.MarchRayleigh(input, h.Options)
	if err != nil {
		gas.WriteError(w, r, err)
		return
	}
	h.writeWorkbook(w, r, res)
}

func (h *Handler) writeWorkbook(w http.ResponseWriter, r *http.Request, res gas.DuctFlowResult) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", res.Mode))
	if res.IsChoked {
		w.Header().Set(gas.ChokedHeader, "true")
	}
	if err := WriteMarch(w, res); err != nil {
		log.WithFields(log.Fields{"path": r.URL.Path, "error": err}).Error("workbook not written")
	}
}
