// ABOUTME: Layer velocity builders for assembling starting models.
// ABOUTME: Fills layers with constant, gradient, or stretched profiles.
package vm

import (
	"fmt"
	"math"
)

// FromAbove marks a velocity to be taken from the adjacent layer.
var FromAbove = math.NaN()

// LayerBuilder assigns velocities within layer ilyr of a model.
type LayerBuilder func(m *Model, ilyr int) error

// Constant returns a builder that fills a layer with a single velocity.
func Constant(v float64) LayerBuilder {
	return func(m *Model, ilyr int) error {
		return m.DefineStretchedLayerVelocities(ilyr, []float64{v})
	}
}

// Gradient returns a builder that fills a layer with a linear velocity
// gradient dvdz starting from v0 at the layer top. Pass FromAbove as v0
// to continue from the base of the overlying layer.
func Gradient(v0, dvdz float64) LayerBuilder {
	return func(m *Model, ilyr int) error {
		return m.DefineConstantLayerGradient(ilyr, dvdz, v0)
	}
}

// Stretched returns a builder that stretches a 1D velocity profile across
// the layer height. FromAbove entries take the neighboring layer's value.
func Stretched(vel ...float64) LayerBuilder {
	return func(m *Model, ilyr int) error {
		return m.DefineStretchedLayerVelocities(ilyr, vel)
	}
}

// AddLayers inserts a flat interface at each depth and runs the matching
// builder on the new layer below it. A nil builder leaves velocities alone.
func (m *Model) AddLayers(depths []float64, builders []LayerBuilder) error {
	if builders != nil && len(builders) != len(depths) {
		return fmt.Errorf("got %d builders for %d depths", len(builders), len(depths))
	}
	irefs := make([]int, len(depths))
	for i, z := range depths {
		iref, err := m.InsertConstantInterface(z)
		if err != nil {
			return err
		}
		irefs[i] = iref
	}
	for i, iref := range irefs {
		if builders == nil || builders[i] == nil {
			continue
		}
		if err := builders[i](m, iref+1); err != nil {
			return fmt.Errorf("layer below interface %d: %w", iref, err)
		}
	}
	return nil
}

// DefineConstantLayerVelocity sets every node in a layer to velocity v.
func (m *Model) DefineConstantLayerVelocity(ilyr int, v float64) error {
	return m.DefineStretchedLayerVelocities(ilyr, []float64{v})
}

// DefineConstantLayerGradient replaces a layer's velocities with a constant
// vertical gradient. v0 is the velocity at the layer top; FromAbove uses
// the value at the base of the overlying layer.
func (m *Model) DefineConstantLayerGradient(ilyr int, dvdz, v0 float64) error {
	if ilyr < 0 || ilyr > m.Nr {
		return fmt.Errorf("layer %d does not exist", ilyr)
	}
	for ix := 0; ix < m.Nx; ix++ {
		for iy := 0; iy < m.Ny; iy++ {
			z0, z1, err := m.LayerBounds(ilyr, ix, iy)
			if err != nil {
				return err
			}
			iz0, iz1 := m.ZRange(z0, z1)
			if iz1 < iz0 {
				continue // pinchout
			}
			vtop := v0
			if math.IsNaN(vtop) {
				if iz0 == 0 {
					vtop = 0
				} else {
					vtop = m.VelocityAt(ix, iy, iz0-1)
				}
			}
			for iz := iz0; iz <= iz1; iz++ {
				dz := m.IToZ(iz) - m.IToZ(iz0)
				m.SetVelocity(ix, iy, iz, vtop+dz*dvdz)
			}
		}
	}
	return nil
}

// DefineStretchedLayerVelocities distributes a 1D velocity profile
// proportionally across the layer height at every horizontal node and
// linearly interpolates it onto the depth grid. FromAbove endpoints take
// the velocity of the adjacent layer.
func (m *Model) DefineStretchedLayerVelocities(ilyr int, vel []float64) error {
	if ilyr < 0 || ilyr > m.Nr {
		return fmt.Errorf("layer %d does not exist", ilyr)
	}
	if len(vel) == 0 {
		return fmt.Errorf("no velocities given")
	}
	nvel := len(vel)
	for ix := 0; ix < m.Nx; ix++ {
		for iy := 0; iy < m.Ny; iy++ {
			z0, z1, err := m.LayerBounds(ilyr, ix, iy)
			if err != nil {
				return err
			}
			iz0, iz1 := m.ZRange(z0, z1)
			if iz1 < iz0 {
				continue // pinchout
			}
			prof := make([]float64, nvel)
			copy(prof, vel)
			if math.IsNaN(prof[0]) {
				prof[0] = m.VelocityAt(ix, iy, max(iz0-1, 0))
			}
			if nvel > 1 && math.IsNaN(prof[nvel-1]) {
				prof[nvel-1] = m.VelocityAt(ix, iy, min(iz1+1, m.Nz-1))
			}
			if nvel == 1 {
				for iz := iz0; iz <= iz1; iz++ {
					m.SetVelocity(ix, iy, iz, prof[0])
				}
				continue
			}
			for iz := iz0; iz <= iz1; iz++ {
				m.SetVelocity(ix, iy, iz, interpProfile(z0, z1, prof, m.IToZ(iz)))
			}
		}
	}
	return nil
}

// interpProfile evaluates a velocity profile whose samples are spread
// evenly between z0 and z1, clamping outside the span.
func interpProfile(z0, z1 float64, prof []float64, z float64) float64 {
	n := len(prof)
	if z <= z0 || z1 <= z0 {
		return prof[0]
	}
	if z >= z1 {
		return prof[n-1]
	}
	t := (z - z0) / (z1 - z0) * float64(n-1)
	i := int(t)
	if i >= n-1 {
		return prof[n-1]
	}
	f := t - float64(i)
	return prof[i]*(1-f) + prof[i+1]*f
}
