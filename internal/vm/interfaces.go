// ABOUTME: Interface surface editing: insert, remove, and slowness jumps.
// ABOUTME: Keeps the 0-based inversion flag indices consistent across edits.
package vm

import "fmt"

// InsertInterface adds a new interface with the given depth at every
// horizontal node and returns its index. The new interface is placed
// below every existing interface that is entirely shallower, jumps start
// at zero, and the inversion flags point at the new interface.
func (m *Model) InsertInterface(depths []float64) (int, error) {
	nplane := m.Nx * m.Ny
	if len(depths) != nplane {
		return 0, fmt.Errorf("depth grid has %d nodes, want %d", len(depths), nplane)
	}

	maxDepth := depths[0]
	for _, z := range depths {
		if z > maxDepth {
			maxDepth = z
		}
	}
	iref := 0
	for r := 0; r < m.Nr; r++ {
		refMax := m.RfAt(r, 0, 0)
		for ix := 0; ix < m.Nx; ix++ {
			for iy := 0; iy < m.Ny; iy++ {
				if z := m.RfAt(r, ix, iy); z > refMax {
					refMax = z
				}
			}
		}
		if maxDepth >= refMax {
			iref++
		}
	}

	rf := make([]float32, nplane)
	for i, z := range depths {
		rf[i] = float32(z)
	}
	jp := make([]float32, nplane)
	flags := make([]int32, nplane)
	for i := range flags {
		flags[i] = int32(iref)
	}

	at := iref * nplane
	m.Rf = spliceF32(m.Rf, at, rf)
	m.Jp = spliceF32(m.Jp, at, jp)
	m.Ir = spliceI32(m.Ir, at, flags)
	m.Ij = spliceI32(m.Ij, at, append([]int32(nil), flags...))
	m.Nr++

	// Interfaces that were at or below the insertion point now sit one
	// index deeper; renumber flags that referenced them.
	for r := iref + 1; r < m.Nr; r++ {
		base := r * nplane
		for i := base; i < base+nplane; i++ {
			if m.Ir[i] >= int32(iref) {
				m.Ir[i]++
			}
			if m.Ij[i] >= int32(iref) {
				m.Ij[i]++
			}
		}
	}
	return iref, nil
}

// InsertConstantInterface adds a flat interface at depth z.
func (m *Model) InsertConstantInterface(z float64) (int, error) {
	depths := make([]float64, m.Nx*m.Ny)
	for i := range depths {
		depths[i] = z
	}
	return m.InsertInterface(depths)
}

// RemoveInterface deletes an interface. With applyJumps, the interface's
// slowness jumps are folded into the grid first.
func (m *Model) RemoveInterface(iref int, applyJumps bool) error {
	if iref < 0 || iref >= m.Nr {
		return fmt.Errorf("interface %d does not exist", iref)
	}
	if applyJumps {
		m.applyJumps([]int{iref}, false)
	}
	nplane := m.Nx * m.Ny
	at := iref * nplane
	m.Rf = append(m.Rf[:at], m.Rf[at+nplane:]...)
	m.Jp = append(m.Jp[:at], m.Jp[at+nplane:]...)
	m.Ir = append(m.Ir[:at], m.Ir[at+nplane:]...)
	m.Ij = append(m.Ij[:at], m.Ij[at+nplane:]...)
	m.Nr--

	for r := iref; r < m.Nr; r++ {
		base := r * nplane
		for i := base; i < base+nplane; i++ {
			if m.Ir[i] >= int32(iref) {
				m.Ir[i]--
			}
			if m.Ij[i] >= int32(iref) {
				m.Ij[i]--
			}
		}
	}
	return nil
}

// ApplyJumps adds the slowness jumps of the given interfaces (all of them
// when irefs is nil) to every grid node at and below each interface.
func (m *Model) ApplyJumps(irefs []int) {
	m.applyJumps(irefs, false)
}

// RemoveJumps subtracts the slowness jumps of the given interfaces (all of
// them when irefs is nil) from every grid node at and below each interface.
func (m *Model) RemoveJumps(irefs []int) {
	m.applyJumps(irefs, true)
}

func (m *Model) applyJumps(irefs []int, remove bool) {
	if irefs == nil {
		irefs = make([]int, m.Nr)
		for i := range irefs {
			irefs[i] = i
		}
	}
	for _, iref := range irefs {
		for ix := 0; ix < m.Nx; ix++ {
			for iy := 0; iy < m.Ny; iy++ {
				iz0 := m.ZToI(m.RfAt(iref, ix, iy))
				jp := float32(m.JpAt(iref, ix, iy))
				if remove {
					jp = -jp
				}
				for iz := iz0; iz < m.Nz; iz++ {
					m.Sl[m.gridIndex(ix, iy, iz)] += jp
				}
			}
		}
	}
}

func spliceF32(s []float32, at int, block []float32) []float32 {
	out := make([]float32, 0, len(s)+len(block))
	out = append(out, s[:at]...)
	out = append(out, block...)
	return append(out, s[at:]...)
}

func spliceI32(s []int32, at int, block []int32) []int32 {
	out := make([]int32, 0, len(s)+len(block))
	out = append(out, s[:at]...)
	out = append(out, block...)
	return append(out, s[at:]...)
}
