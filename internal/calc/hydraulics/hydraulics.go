// Package hydraulics sizes incompressible pipe flow with the Darcy-Weisbach
// equation.
package hydraulics

import (
	"math"

	"github.com/Luqman-Ismat/engivault-api-sub002/internal/calc/friction"
	"github.com/Luqman-Ismat/engivault-api-sub002/internal/calc/gas"
)

// DefaultRoughness is commercial steel, in metres.
const DefaultRoughness = 0.00015

type Pipe struct {
	PipeDiameter   float64 `json:"pipeDiameter"`
	PipeLength     float64 `json:"pipeLength"`
	FluidDensity   float64 `json:"fluidDensity"`
	FluidViscosity float64 `json:"fluidViscosity"`
	PipeRoughness  float64 `json:"pipeRoughness,omitempty"`
}

type DropInput struct {
	FlowRate float64 `json:"flowRate"`
	Pipe
}

type DropResult struct {
	PressureDrop   float64         `json:"pressureDrop"`
	ReynoldsNumber float64         `json:"reynoldsNumber"`
	FrictionFactor float64         `json:"frictionFactor"`
	Velocity       float64         `json:"velocity"`
	Regime         friction.Regime `json:"flowRegime"`
}

type FlowInput struct {
	PressureDrop float64 `json:"pressureDrop"`
	Pipe
}

type FlowResult struct {
	FlowRate       float64         `json:"flowRate"`
	Velocity       float64         `json:"velocity"`
	ReynoldsNumber float64         `json:"reynoldsNumber"`
	FrictionFactor float64         `json:"frictionFactor"`
	Regime         friction.Regime `json:"flowRegime"`
	Iterations     int             `json:"iterations"`
	Converged      bool            `json:"converged"`
}

func (p Pipe) validate() error {
	for _, c := range []struct {
		field string
		v     float64
	}{
		{"pipeDiameter", p.PipeDiameter},
		{"pipeLength", p.PipeLength},
		{"fluidDensity", p.FluidDensity},
		{"fluidViscosity", p.FluidViscosity},
	} {
		if !(c.v > 0) || math.IsInf(c.v, 1) {
			return &gas.InvalidInputError{Field: c.field, Value: c.v}
		}
	}
	if p.PipeRoughness < 0 || math.IsNaN(p.PipeRoughness) {
		return &gas.InvalidInputError{Field: "pipeRoughness", Value: p.PipeRoughness, Reason: "must not be negative"}
	}
	return nil
}

func (p Pipe) area() float64 { return math.Pi * p.PipeDiameter * p.PipeDiameter / 4 }

func (p Pipe) relativeRoughness() float64 {
	e := p.PipeRoughness
	if e == 0 {
		e = DefaultRoughness
	}
	return e / p.PipeDiameter
}

// factor returns Re and the Darcy factor for a mean velocity.
func (p Pipe) factor(v float64) (float64, float64) {
	re := friction.Reynolds(p.FluidDensity*v, p.PipeDiameter, p.FluidViscosity)
	return re, friction.DarcyFactor(re, p.relativeRoughness())
}

func PressureDrop(in DropInput) (DropResult, error) {
	if err := in.validate(); err != nil {
		return DropResult{}, err
	}
	if !(in.FlowRate > 0) || math.IsInf(in.FlowRate, 1) {
		return DropResult{}, &gas.InvalidInputError{Field: "flowRate", Value: in.FlowRate}
	}
	v := in.FlowRate / in.area()
	re, f := in.factor(v)
	return DropResult{
		PressureDrop:   f * in.PipeLength / in.PipeDiameter * in.FluidDensity * v * v / 2,
		ReynoldsNumber: re,
		FrictionFactor: f,
		Velocity:       v,
		Regime:         friction.Classify(re),
	}, nil
}

// FlowRate inverts PressureDrop by fixed-point iteration on the velocity,
// starting from a fully turbulent guess.
func FlowRate(in FlowInput) (FlowResult, error) {
	if err := in.validate(); err != nil {
		return FlowResult{}, err
	}
	if !(in.PressureDrop > 0) || math.IsInf(in.PressureDrop, 1) {
		return FlowResult{}, &gas.InvalidInputError{Field: "pressureDrop", Value: in.PressureDrop}
	}
	opts := gas.DefaultOptions()
	head := 2 * in.PressureDrop * in.PipeDiameter / (in.PipeLength * in.FluidDensity)

	res := FlowResult{FrictionFactor: 0.02}
	v := math.Sqrt(head / res.FrictionFactor)
	for res.Iterations < opts.MaxIterations {
		res.Iterations++
		res.ReynoldsNumber, res.FrictionFactor = in.factor(v)
		next := math.Sqrt(head / res.FrictionFactor)
		if math.Abs(next-v) <= 1e-9*v {
			v = next
			res.Converged = true
			break
		}
		v = next
	}
	res.Velocity = v
	res.FlowRate = v * in.area()
	res.Regime = friction.Classify(res.ReynoldsNumber)
	return res, nil
}
