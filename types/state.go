package types

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// FlowState is the uniform initial state of a block
type FlowState struct {
	Species  []float64 // Ns species concentrations
	Velocity r3.Vec
	Pressure float64
	Density  float64
	Gamma    float64 // ratio of specific heats
}

// NumVars is the number of scalars stored per cell: species, u, v, w, p, rho, gamma
func (fs FlowState) NumVars() int { return len(fs.Species) + 6 }

// Pack appends the per-cell state vector to dst in output field order
func (fs FlowState) Pack(dst []float64) []float64 {
	dst = append(dst, fs.Species...)
	return append(dst, fs.Velocity.X, fs.Velocity.Y, fs.Velocity.Z,
		fs.Pressure, fs.Density, fs.Gamma)
}

func (fs FlowState) Clone() FlowState {
	c := fs
	c.Species = append([]float64(nil), fs.Species...)
	return c
}

// Check validates the species count and the thermodynamic values
func (fs FlowState) Check(ns int) error {
	if len(fs.Species) != ns {
		return fmt.Errorf("state has %d species concentrations, species file defines %d",
			len(fs.Species), ns)
	}
	if fs.Density <= 0 || fs.Pressure <= 0 {
		return fmt.Errorf("state must have positive pressure and density, have p = %v, rho = %v",
			fs.Pressure, fs.Density)
	}
	if fs.Gamma <= 1 {
		return fmt.Errorf("ratio of specific heats must exceed 1, have %v", fs.Gamma)
	}
	return nil
}
