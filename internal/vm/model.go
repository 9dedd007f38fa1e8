// ABOUTME: In-memory representation of a VM Tomography velocity model.
// ABOUTME: Holds the slowness grid, interface surfaces, and inversion flags.
package vm

import (
	"fmt"
	"math"
	"strings"
)

// FlagExcluded marks an interface node as excluded from the inversion.
// The on-disk format uses 0 for excluded nodes and 1-based interface
// indices otherwise; the codec shifts by one in both directions.
const FlagExcluded = -1

// Model is a VM Tomography velocity model: a regular slowness grid plus
// zero or more interface surfaces with slowness jumps and inversion flags.
//
// The slowness grid Sl is stored x-major: index (ix*Ny+iy)*Nz+iz. The
// interface arrays Rf, Jp, Ir, Ij are stored per interface: index
// (iref*Nx+ix)*Ny+iy. These layouts match the on-disk ordering.
type Model struct {
	Nx, Ny, Nz int
	Nr         int
	R1, R2     [3]float64
	Dx, Dy, Dz float64

	Sl     []float32
	Rf, Jp []float32
	Ir, Ij []int32
}

// New creates a model spanning r1 to r2 with the given node spacings and
// nr interface surfaces. Interfaces start at depth zero with no jumps and
// all nodes excluded from the inversion.
func New(r1, r2 [3]float64, dx, dy, dz float64, nr int) *Model {
	m := &Model{
		Nx: int(math.Round((r2[0]-r1[0])/dx)) + 1,
		Ny: int(math.Round((r2[1]-r1[1])/dy)) + 1,
		Nz: int(math.Round((r2[2]-r1[2])/dz)) + 1,
		Nr: nr,
		R1: r1,
		R2: r2,
		Dx: dx, Dy: dy, Dz: dz,
	}
	m.Sl = make([]float32, m.Nx*m.Ny*m.Nz)
	nintf := nr * m.Nx * m.Ny
	m.Rf = make([]float32, nintf)
	m.Jp = make([]float32, nintf)
	m.Ir = make([]int32, nintf)
	m.Ij = make([]int32, nintf)
	for i := range m.Ir {
		m.Ir[i] = FlagExcluded
		m.Ij[i] = FlagExcluded
	}
	return m
}

// Default returns a model with the conventional default domain of
// 0-250 km in x, a single y plane, and 0-30 km in z.
func Default() *Model {
	return New([3]float64{0, 0, 0}, [3]float64{250, 0, 30}, 0.5, 1, 0.1, 0)
}

func (m *Model) gridIndex(ix, iy, iz int) int {
	return (ix*m.Ny+iy)*m.Nz + iz
}

func (m *Model) intfIndex(iref, ix, iy int) int {
	return (iref*m.Nx+ix)*m.Ny + iy
}

// SlAt returns the slowness at a grid node.
func (m *Model) SlAt(ix, iy, iz int) float64 {
	return float64(m.Sl[m.gridIndex(ix, iy, iz)])
}

// SetSl sets the slowness at a grid node.
func (m *Model) SetSl(ix, iy, iz int, sl float64) {
	m.Sl[m.gridIndex(ix, iy, iz)] = float32(sl)
}

// VelocityAt returns the velocity (1/slowness) at a grid node.
func (m *Model) VelocityAt(ix, iy, iz int) float64 {
	return 1.0 / m.SlAt(ix, iy, iz)
}

// SetVelocity sets the slowness at a grid node from a velocity.
func (m *Model) SetVelocity(ix, iy, iz int, v float64) {
	m.SetSl(ix, iy, iz, 1.0/v)
}

// RfAt returns the depth of interface iref at a horizontal node.
func (m *Model) RfAt(iref, ix, iy int) float64 {
	return float64(m.Rf[m.intfIndex(iref, ix, iy)])
}

// SetRf sets the depth of interface iref at a horizontal node.
func (m *Model) SetRf(iref, ix, iy int, z float64) {
	m.Rf[m.intfIndex(iref, ix, iy)] = float32(z)
}

// JpAt returns the slowness jump across interface iref at a horizontal node.
func (m *Model) JpAt(iref, ix, iy int) float64 {
	return float64(m.Jp[m.intfIndex(iref, ix, iy)])
}

// SetJp sets the slowness jump across interface iref at a horizontal node.
func (m *Model) SetJp(iref, ix, iy int, jp float64) {
	m.Jp[m.intfIndex(iref, ix, iy)] = float32(jp)
}

// IrAt returns the reflector inversion flag at a horizontal node.
func (m *Model) IrAt(iref, ix, iy int) int {
	return int(m.Ir[m.intfIndex(iref, ix, iy)])
}

// IjAt returns the jump inversion flag at a horizontal node.
func (m *Model) IjAt(iref, ix, iy int) int {
	return int(m.Ij[m.intfIndex(iref, ix, iy)])
}

// String formats a plain-text overview of the model grid.
func (m *Model) String() string {
	var b strings.Builder
	b.WriteString("Grid Dimensions:\n")
	fmt.Fprintf(&b, " xmin = %7.3f, xmax = %7.3f, dx = %7.3f, nx = %5d\n",
		m.R1[0], m.R2[0], m.Dx, m.Nx)
	fmt.Fprintf(&b, " ymin = %7.3f, ymax = %7.3f, dy = %7.3f, ny = %5d\n",
		m.R1[1], m.R2[1], m.Dy, m.Ny)
	fmt.Fprintf(&b, " zmin = %7.3f, zmax = %7.3f, dz = %7.3f, nz = %5d\n",
		m.R1[2], m.R2[2], m.Dz, m.Nz)
	fmt.Fprintf(&b, "Interfaces: nr = %d\n", m.Nr)
	return b.String()
}

// Copy returns a deep copy of the model.
func (m *Model) Copy() *Model {
	c := *m
	c.Sl = append([]float32(nil), m.Sl...)
	c.Rf = append([]float32(nil), m.Rf...)
	c.Jp = append([]float32(nil), m.Jp...)
	c.Ir = append([]int32(nil), m.Ir...)
	c.Ij = append([]int32(nil), m.Ij...)
	return &c
}
