// Package report renders calculation results as PDF documents.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/Luqman-Ismat/engivault-api-sub002/internal/calc/gas"
	"github.com/phpdave11/gofpdf"
)

type Meta struct {
	Project string `json:"project" yaml:"project"`
	Author  string `json:"author" yaml:"author"`
	Title   string `json:"title" yaml:"title"`
	Notes   string `json:"notes" yaml:"notes"`
}

// maxTableRows keeps long marches to a few pages; rows are sampled evenly and
// the last state is always printed.
const maxTableRows = 60

func newDocument(meta Meta, fallback string) *gofpdf.Fpdf {
	if meta.Title == "" {
		meta.Title = fallback
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, meta.Title)
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Project: %s", meta.Project))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Author: %s", meta.Author))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", time.Now().Format("2006-01-02")))
	pdf.Ln(10)
	if meta.Notes != "" {
		pdf.MultiCell(0, 6, meta.Notes, "", "L", false)
		pdf.Ln(4)
	}
	return pdf
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, title)
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 10)
}

func pairs(pdf *gofpdf.Fpdf, rows [][2]string) {
	for _, r := range rows {
		pdf.CellFormat(70, 6, r[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(90, 6, r[1], "1", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func warnings(pdf *gofpdf.Fpdf, ws gas.Warnings) {
	section(pdf, "Warnings")
	if len(ws) == 0 {
		pdf.Cell(0, 6, "none")
		pdf.Ln(8)
		return
	}
	for _, w := range ws {
		pdf.MultiCell(0, 6, fmt.Sprintf("[%s] %s", w.Code, w.Message), "", "L", false)
	}
	pdf.Ln(4)
}

func RenderDrop(w io.Writer, meta Meta, in gas.DropInput, res gas.DropResult) error {
	pdf := newDocument(meta, "Gas Pressure Drop Report")

	section(pdf, "Inputs")
	pairs(pdf, [][2]string{
		{"Model", string(res.Parameters.Model)},
		{"Inlet pressure", fmt.Sprintf("%.1f Pa", in.InletPressure)},
		{"Temperature", fmt.Sprintf("%.2f K", in.Temperature)},
		{"Mass flow rate", fmt.Sprintf("%.4g kg/s", in.MassFlowRate)},
		{"Pipe D x L", fmt.Sprintf("%.4g m x %.4g m", in.Pipe.Diameter, in.Pipe.Length)},
		{"Roughness", fmt.Sprintf("%.3g m", in.Pipe.Roughness)},
		{"Molecular weight", fmt.Sprintf("%.3f kg/kmol", in.Gas.MolecularWeight)},
		{"Specific heat ratio", fmt.Sprintf("%.3f", res.Parameters.SpecificHeatRatio)},
	})

	section(pdf, "Results")
	pairs(pdf, [][2]string{
		{"Outlet pressure", fmt.Sprintf("%.1f Pa", res.OutletPressure)},
		{"Pressure drop", fmt.Sprintf("%.1f Pa (%.2f %%)", res.PressureDrop, res.PressureDropPercent)},
		{"Outlet temperature", fmt.Sprintf("%.2f K", res.OutletTemperature)},
		{"Outlet velocity", fmt.Sprintf("%.2f m/s", res.Velocity)},
		{"Outlet Mach number", fmt.Sprintf("%.4f", res.MachNumber)},
		{"Choked", fmt.Sprintf("%v", res.IsChoked)},
		{"Reynolds number", fmt.Sprintf("%.0f", res.ReynoldsNumber)},
		{"Friction factor", fmt.Sprintf("%.5f", res.FrictionFactor)},
		{"Solver", fmt.Sprintf("%d iterations, converged=%v", res.Diagnostics.Iterations, res.Diagnostics.Converged)},
	})
	warnings(pdf, res.Warnings)
	return pdf.Output(w)
}

func RenderMarch(w io.Writer, meta Meta, res gas.DuctFlowResult) error {
	title, position, limit := "Fanno Flow Report", "x [m]", fmt.Sprintf("%.4g m", res.MaxLength)
	if res.Mode == gas.ModeRayleigh {
		title, position, limit = "Rayleigh Flow Report", "q [J/kg]", fmt.Sprintf("%.4g J/kg", res.MaxHeatTransfer)
	}
	pdf := newDocument(meta, title)

	section(pdf, "Summary")
	pairs(pdf, [][2]string{
		{"Mode", string(res.Mode)},
		{"Mass flow rate", fmt.Sprintf("%.4g kg/s", res.MassFlowRate)},
		{"Choked", fmt.Sprintf("%v", res.IsChoked)},
		{"Termination", string(res.Termination)},
		{"Limit to sonic point", limit},
		{"States", fmt.Sprintf("%d", len(res.States))},
	})
	warnings(pdf, res.Warnings)

	section(pdf, "States")
	header := []string{position, "p [Pa]", "T [K]", "rho [kg/m3]", "v [m/s]", "M"}
	pdf.SetFont("Helvetica", "B", 9)
	for _, h := range header {
		pdf.CellFormat(30, 6, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 9)
	for _, i := range sampleRows(len(res.States), maxTableRows) {
		s := res.States[i]
		for _, v := range []string{
			fmt.Sprintf("%.4g", res.Positions[i]),
			fmt.Sprintf("%.1f", s.Pressure),
			fmt.Sprintf("%.2f", s.Temperature),
			fmt.Sprintf("%.4f", s.Density),
			fmt.Sprintf("%.2f", s.Velocity),
			fmt.Sprintf("%.4f", s.MachNumber),
		} {
			pdf.CellFormat(30, 6, v, "1", 0, "R", false, 0, "")
		}
		pdf.Ln(-1)
	}
	return pdf.Output(w)
}

// sampleRows picks at most limit indices of n, always including the first
// and last.
func sampleRows(n, limit int) []int {
	if n <= limit {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	idx := make([]int, 0, limit)
	for k := 0; k < limit; k++ {
		idx = append(idx, k*(n-1)/(limit-1))
	}
	return idx
}
