// ABOUTME: Tests for velocity model construction and grid arithmetic.
// ABOUTME: Covers coordinate conversion, layer queries, and interface edits.
package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testModel builds a small 3-layer model with flat interfaces at 5 and 10 km.
func testModel(t *testing.T) *Model {
	t.Helper()
	m := New([3]float64{0, 0, 0}, [3]float64{100, 0, 30}, 1, 1, 0.5, 0)
	require.NoError(t, m.DefineConstantLayerVelocity(0, 1.5))
	err := m.AddLayers([]float64{5, 10}, []LayerBuilder{
		Constant(3.0),
		Gradient(5.0, 0.1),
	})
	require.NoError(t, err)
	return m
}

func TestNewDimensions(t *testing.T) {
	m := New([3]float64{0, 0, 0}, [3]float64{250, 0, 30}, 0.5, 1, 0.1, 2)
	assert.Equal(t, 501, m.Nx)
	assert.Equal(t, 1, m.Ny)
	assert.Equal(t, 301, m.Nz)
	assert.Equal(t, 2, m.Nr)
	assert.Len(t, m.Sl, 501*1*301)
	assert.Len(t, m.Rf, 2*501*1)

	// new interfaces start with raytracing and inversion excluded
	for _, f := range m.Ir {
		assert.Equal(t, int32(FlagExcluded), f)
	}
}

func TestCoordinateRoundTrip(t *testing.T) {
	m := Default()
	for _, ix := range []int{0, 1, 250, m.Nx - 1} {
		assert.Equal(t, ix, m.XToI(m.IToX(ix)))
	}
	for _, iz := range []int{0, 17, m.Nz - 1} {
		assert.Equal(t, iz, m.ZToI(m.IToZ(iz)))
	}
	// out-of-domain coordinates clip to the grid
	assert.Equal(t, 0, m.XToI(-999))
	assert.Equal(t, m.Nx-1, m.XToI(9999))
}

func TestVelocitySlownessAccessors(t *testing.T) {
	m := Default()
	m.SetVelocity(3, 0, 7, 8.0)
	assert.InDelta(t, 0.125, m.SlAt(3, 0, 7), 1e-9)
	assert.InDelta(t, 8.0, m.VelocityAt(3, 0, 7), 1e-6)
}

func TestInsertInterfaceOrdering(t *testing.T) {
	m := New([3]float64{0, 0, 0}, [3]float64{10, 0, 20}, 1, 1, 1, 0)

	iref, err := m.InsertConstantInterface(10)
	require.NoError(t, err)
	assert.Equal(t, 0, iref)

	// a shallower surface slots in above the existing one
	iref, err = m.InsertConstantInterface(5)
	require.NoError(t, err)
	assert.Equal(t, 0, iref)
	assert.Equal(t, 2, m.Nr)
	assert.InDelta(t, 5.0, m.RfAt(0, 0, 0), 1e-6)
	assert.InDelta(t, 10.0, m.RfAt(1, 0, 0), 1e-6)

	// the deeper interface's flags were renumbered to follow it down
	assert.Equal(t, 1, m.IrAt(1, 0, 0))
	assert.Equal(t, 1, m.IjAt(1, 0, 0))
	assert.Equal(t, 0, m.IrAt(0, 0, 0))

	// a deeper surface goes to the bottom
	iref, err = m.InsertConstantInterface(15)
	require.NoError(t, err)
	assert.Equal(t, 2, iref)
	assert.Equal(t, 3, m.Nr)
}

func TestRemoveInterface(t *testing.T) {
	m := New([3]float64{0, 0, 0}, [3]float64{10, 0, 20}, 1, 1, 1, 0)
	for _, z := range []float64{5, 10, 15} {
		_, err := m.InsertConstantInterface(z)
		require.NoError(t, err)
	}

	require.NoError(t, m.RemoveInterface(1, false))
	assert.Equal(t, 2, m.Nr)
	assert.InDelta(t, 5.0, m.RfAt(0, 0, 0), 1e-6)
	assert.InDelta(t, 15.0, m.RfAt(1, 0, 0), 1e-6)
	assert.Equal(t, 1, m.IrAt(1, 0, 0))

	assert.Error(t, m.RemoveInterface(5, false))
}

func TestLayerBounds(t *testing.T) {
	m := testModel(t)

	z0, z1, err := m.LayerBounds(0, 0, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, z0, 1e-6)
	assert.InDelta(t, 5.0, z1, 1e-6)

	z0, z1, err = m.LayerBounds(2, 0, 0)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, z0, 1e-6)
	assert.InDelta(t, 30.0, z1, 1e-6)

	_, _, err = m.LayerBounds(3, 0, 0)
	assert.Error(t, err)
}

func TestLayerAt(t *testing.T) {
	m := testModel(t)
	assert.Equal(t, 0, m.LayerAt(50, 0, 2))
	assert.Equal(t, 1, m.LayerAt(50, 0, 7))
	assert.Equal(t, 2, m.LayerAt(50, 0, 25))
}

func TestLayerVelocityBuilders(t *testing.T) {
	m := testModel(t)

	// layer 0: constant 1.5
	assert.InDelta(t, 1.5, m.VelocityAt(10, 0, 0), 1e-5)
	// layer 1: constant 3.0
	assert.InDelta(t, 3.0, m.VelocityAt(10, 0, m.ZToI(7)), 1e-5)
	// layer 2: 5.0 at top, gradient 0.1/km
	top := m.ZToI(10)
	assert.InDelta(t, 5.0, m.VelocityAt(10, 0, top), 1e-5)
	assert.InDelta(t, 5.0+0.1*10, m.VelocityAt(10, 0, m.ZToI(20)), 1e-4)
}

func TestStretchedProfile(t *testing.T) {
	m := New([3]float64{0, 0, 0}, [3]float64{10, 0, 10}, 1, 1, 1, 0)
	require.NoError(t, m.DefineStretchedLayerVelocities(0, []float64{2, 4}))
	assert.InDelta(t, 2.0, m.VelocityAt(0, 0, 0), 1e-5)
	assert.InDelta(t, 3.0, m.VelocityAt(0, 0, 5), 1e-5)
	assert.InDelta(t, 4.0, m.VelocityAt(0, 0, 10), 1e-5)
}

func TestApplyRemoveJumps(t *testing.T) {
	m := New([3]float64{0, 0, 0}, [3]float64{10, 0, 10}, 1, 1, 1, 0)
	require.NoError(t, m.DefineConstantLayerVelocity(0, 2.0))
	iref, err := m.InsertConstantInterface(5)
	require.NoError(t, err)
	m.SetJp(iref, 3, 0, 0.1)

	before := m.SlAt(3, 0, 7)
	m.ApplyJumps(nil)
	assert.InDelta(t, before+0.1, m.SlAt(3, 0, 7), 1e-6)
	// above the interface unchanged
	assert.InDelta(t, 0.5, m.SlAt(3, 0, 2), 1e-6)

	m.RemoveJumps([]int{iref})
	assert.InDelta(t, before, m.SlAt(3, 0, 7), 1e-6)
}

func TestCopyIsIndependent(t *testing.T) {
	m := testModel(t)
	c := m.Copy()
	c.SetVelocity(0, 0, 0, 9.9)
	c.SetRf(0, 0, 0, 1.0)
	assert.NotEqual(t, m.SlAt(0, 0, 0), c.SlAt(0, 0, 0))
	assert.NotEqual(t, m.RfAt(0, 0, 0), c.RfAt(0, 0, 0))
}
