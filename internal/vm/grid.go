// ABOUTME: Coordinate and index conversions on the model grid.
// ABOUTME: Also resolves layer bounds and layer membership for grid nodes.
package vm

import (
	"fmt"
	"math"
)

func clamp(i, lo, hi int) int {
	if i < lo {
		return lo
	}
	if i > hi {
		return hi
	}
	return i
}

// XToI returns the index of the nearest x node for a coordinate, clipped
// to the grid.
func (m *Model) XToI(x float64) int {
	return clamp(int(math.Round((x-m.R1[0])/m.Dx)), 0, m.Nx-1)
}

// YToI returns the index of the nearest y node for a coordinate, clipped
// to the grid.
func (m *Model) YToI(y float64) int {
	return clamp(int(math.Round((y-m.R1[1])/m.Dy)), 0, m.Ny-1)
}

// ZToI returns the index of the nearest z node for a coordinate, clipped
// to the grid.
func (m *Model) ZToI(z float64) int {
	return clamp(int(math.Round((z-m.R1[2])/m.Dz)), 0, m.Nz-1)
}

// IToX returns the x coordinate of a node index.
func (m *Model) IToX(ix int) float64 {
	return m.R1[0] + float64(ix)*m.Dx
}

// IToY returns the y coordinate of a node index.
func (m *Model) IToY(iy int) float64 {
	return m.R1[1] + float64(iy)*m.Dy
}

// IToZ returns the z coordinate of a node index.
func (m *Model) IToZ(iz int) float64 {
	return m.R1[2] + float64(iz)*m.Dz
}

// XRange returns the inclusive node index range covering [xmin, xmax],
// clipped to the model domain. NaN bounds select the full domain.
func (m *Model) XRange(xmin, xmax float64) (int, int) {
	if math.IsNaN(xmin) {
		xmin = m.R1[0]
	} else {
		xmin = math.Max(m.R1[0], xmin)
	}
	if math.IsNaN(xmax) {
		xmax = m.R2[0]
	} else {
		xmax = math.Min(m.R2[0], xmax)
	}
	return m.XToI(xmin), m.XToI(xmax)
}

// YRange returns the inclusive node index range covering [ymin, ymax],
// clipped to the model domain. NaN bounds select the full domain.
func (m *Model) YRange(ymin, ymax float64) (int, int) {
	if math.IsNaN(ymin) {
		ymin = m.R1[1]
	} else {
		ymin = math.Max(m.R1[1], ymin)
	}
	if math.IsNaN(ymax) {
		ymax = m.R2[1]
	} else {
		ymax = math.Min(m.R2[1], ymax)
	}
	return m.YToI(ymin), m.YToI(ymax)
}

// ZRange returns the inclusive node index range covering [zmin, zmax],
// clipped to the model domain. NaN bounds select the full domain.
func (m *Model) ZRange(zmin, zmax float64) (int, int) {
	if math.IsNaN(zmin) {
		zmin = m.R1[2]
	} else {
		zmin = math.Max(m.R1[2], zmin)
	}
	if math.IsNaN(zmax) {
		zmax = m.R2[2]
	} else {
		zmax = math.Min(m.R2[2], zmax)
	}
	return m.ZToI(zmin), m.ZToI(zmax)
}

// FullDomain is a NaN bound selecting the model's full extent in range
// queries and layer builders.
var FullDomain = math.NaN()

// LayerBounds returns the top and bottom depth of layer ilyr at a
// horizontal node. Layer 0 is bounded above by the model top; layer Nr is
// bounded below by the model bottom.
func (m *Model) LayerBounds(ilyr, ix, iy int) (z0, z1 float64, err error) {
	if ilyr < 0 || ilyr > m.Nr {
		return 0, 0, fmt.Errorf("layer %d does not exist", ilyr)
	}
	if ilyr == 0 {
		z0 = m.R1[2]
	} else {
		z0 = m.RfAt(ilyr-1, ix, iy)
	}
	if ilyr >= m.Nr {
		z1 = m.R2[2]
	} else {
		z1 = m.RfAt(ilyr, ix, iy)
	}
	return z0, z1, nil
}

// LayerAt returns the index of the layer containing a point, or -1 when
// the point is outside the model.
func (m *Model) LayerAt(x, y, z float64) int {
	ix := m.XToI(x)
	iy := m.YToI(y)
	for ilyr := 0; ilyr <= m.Nr; ilyr++ {
		z0, z1, _ := m.LayerBounds(ilyr, ix, iy)
		if z >= z0 && z <= z1 {
			return ilyr
		}
	}
	return -1
}

// Layers returns the layer index of every node in the slowness grid,
// in the same x-major layout as Sl.
func (m *Model) Layers() []int {
	lyr := make([]int, m.Nx*m.Ny*m.Nz)
	for ilyr := 0; ilyr <= m.Nr; ilyr++ {
		for ix := 0; ix < m.Nx; ix++ {
			for iy := 0; iy < m.Ny; iy++ {
				z0, z1, _ := m.LayerBounds(ilyr, ix, iy)
				iz0, iz1 := m.ZRange(z0, z1)
				for iz := iz0; iz <= iz1; iz++ {
					lyr[m.gridIndex(ix, iy, iz)] = ilyr
				}
			}
		}
	}
	return lyr
}
