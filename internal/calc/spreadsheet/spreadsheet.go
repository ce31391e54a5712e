// Package spreadsheet moves calculation cases and march results in and out of
// XLSX workbooks.
package spreadsheet

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Luqman-Ismat/engivault-api-sub002/internal/calc/gas"
	"github.com/xuri/excelize/v2"
)

// DropColumns is the header of an import sheet. Columns after temperature are
// optional.
var DropColumns = []string{
	"model", "inletPressure", "massFlowRate", "temperature",
	"diameter", "length", "roughness",
	"density", "viscosity", "molecularWeight", "specificHeatRatio", "compressibilityFactor",
}

type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// ReadDrops parses the first sheet of a workbook into drop cases. Rows that
// cannot be parsed are reported, not fatal. Row numbers are 1-based as shown
// in a spreadsheet program.
func ReadDrops(r io.Reader) ([]gas.DropInput, []RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, nil, err
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("empty sheet")
	}

	var (
		cases []gas.DropInput
		bad   []RowError
	)
	for i := 1; i < len(rows); i++ {
		if blank(rows[i]) {
			continue
		}
		in, err := parseDropRow(rows[i])
		if err != nil {
			bad = append(bad, RowError{Row: i + 1, Error: err.Error()})
			continue
		}
		cases = append(cases, in)
	}
	return cases, bad, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseDropRow(row []string) (gas.DropInput, error) {
	if len(row) < 10 {
		return gas.DropInput{}, fmt.Errorf("expected at least 10 columns, got %d", len(row))
	}
	vals := make([]float64, len(DropColumns))
	for c := 1; c < len(DropColumns); c++ {
		if c >= len(row) || strings.TrimSpace(row[c]) == "" {
			continue
		}
		v, err := toFloat(row[c])
		if err != nil {
			return gas.DropInput{}, fmt.Errorf("column %s: %w", DropColumns[c], err)
		}
		vals[c] = v
	}
	return gas.DropInput{
		Model:         gas.Model(strings.ToLower(strings.TrimSpace(row[0]))),
		InletPressure: vals[1],
		MassFlowRate:  vals[2],
		Temperature:   vals[3],
		Pipe: gas.PipeGeometry{
			Diameter:  vals[4],
			Length:    vals[5],
			Roughness: vals[6],
		},
		Gas: gas.GasProperties{
			Density:               vals[7],
			Viscosity:             vals[8],
			MolecularWeight:       vals[9],
			SpecificHeatRatio:     vals[10],
			CompressibilityFactor: vals[11],
		},
	}, nil
}

func toFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

var stateColumns = []string{
	"position", "pressure", "temperature", "density", "velocity",
	"machNumber", "stagnationPressure", "stagnationTemperature",
}

// WriteMarch writes a Summary sheet and a States sheet for one march.
func WriteMarch(w io.Writer, res gas.DuctFlowResult) error {
	f := excelize.NewFile()
	defer f.Close()

	const summary, states = "Summary", "States"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return err
	}
	if _, err := f.NewSheet(states); err != nil {
		return err
	}

	position, limit := "length", res.MaxLength
	if res.Mode == gas.ModeRayleigh {
		position, limit = "heatTransfer", res.MaxHeatTransfer
	}
	rows := [][]interface{}{
		{"mode", string(res.Mode)},
		{"isChoked", res.IsChoked},
		{"termination", string(res.Termination)},
		{"massFlowRate", res.MassFlowRate},
		{"limit_" + position, limit},
	}
	for _, wn := range res.Warnings {
		rows = append(rows, []interface{}{"warning", wn.Code, wn.Message})
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summary, cell, &row); err != nil {
			return err
		}
	}

	header := make([]interface{}, len(stateColumns))
	for i, c := range stateColumns {
		header[i] = c
	}
	header[0] = position
	if err := f.SetSheetRow(states, "A1", &header); err != nil {
		return err
	}
	for i, s := range res.States {
		row := []interface{}{
			res.Positions[i], s.Pressure, s.Temperature, s.Density, s.Velocity,
			s.MachNumber, s.StagnationPressure, s.StagnationTemperature,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(states, cell, &row); err != nil {
			return err
		}
	}
	return f.Write(w)
}
