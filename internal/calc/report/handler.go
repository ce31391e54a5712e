package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Luqman-Ismat/engivault-api-sub002/internal/calc/gas"
	log "github.com/sirupsen/logrus"
)

type Kind string

const (
	KindPressureDrop Kind = "pressure-drop"
	KindFanno        Kind = "fanno"
	KindRayleigh     Kind = "rayleigh"
)

// Input carries exactly the case selected by Kind.
type Input struct {
	Meta
	Kind         Kind               `json:"kind"`
	PressureDrop *gas.DropInput     `json:"pressureDrop,omitempty"`
	Fanno        *gas.FannoInput    `json:"fanno,omitempty"`
	Rayleigh     *gas.RayleighInput `json:"rayleigh,omitempty"`
}

type Handler struct {
	Options gas.Options
}

// Render solves the selected case and writes its PDF.
func Render(buf *bytes.Buffer, input Input, opts gas.Options) (choked bool, err error) {
	switch {
	case input.Kind == KindPressureDrop && input.PressureDrop != nil:
		res, err := gas.CalculateDrop(*input.PressureDrop, opts)
		if err != nil {
			return false, err
		}
		return res.IsChoked, RenderDrop(buf, input.Meta, *input.PressureDrop, res)
	case input.Kind == KindFanno && input.Fanno != nil:
		res, err := gas.MarchFanno(*input.Fanno, opts)
		if err != nil {
			return false, err
		}
		return res.IsChoked, RenderMarch(buf, input.Meta, res)
	case input.Kind == KindRayleigh && input.Rayleigh != nil:
		res, err := gas.MarchRayleigh(*input.Rayleigh, opts)
		if err != nil {
			return false, err
		}
		return res.IsChoked, RenderMarch(buf, input.Meta, res)
	}
	return false, &gas.InvalidInputError{Field: "kind", Reason: fmt.Sprintf("%q needs its matching case", input.Kind)}
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	choked, err := Render(&buf, input, h.Options)
	if gas.IsInputError(err) {
		gas.WriteError(w, r, err)
		return
	}
	if err != nil {
		log.WithFields(log.Fields{"kind": input.Kind, "error": err}).Error("report generation failed")
		http.Error(w, "Report generation error", http.StatusInternalServerError)
		return
	}

	if choked {
		w.Header().Set(gas.ChokedHeader, "true")
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s-report.pdf\"", input.Kind))
	w.Write(buf.Bytes())
}
