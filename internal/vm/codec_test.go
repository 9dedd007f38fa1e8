// ABOUTME: Tests for the VM binary codec.
// ABOUTME: Exercises round trips, flag conventions, and corrupt headers.
package vm

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadRoundTrip(t *testing.T) {
	m := New([3]float64{0, 0, 0}, [3]float64{20, 0, 10}, 1, 1, 0.5, 0)
	require.NoError(t, m.DefineConstantLayerVelocity(0, 1.5))
	iref, err := m.InsertConstantInterface(4)
	require.NoError(t, err)
	m.SetJp(iref, 2, 0, 0.05)
	require.NoError(t, m.DefineConstantLayerGradient(1, 0.2, 4.0))

	path := filepath.Join(t.TempDir(), "test.vm")
	require.NoError(t, m.WriteFile(path))

	got, err := ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, m.Nx, got.Nx)
	assert.Equal(t, m.Ny, got.Ny)
	assert.Equal(t, m.Nz, got.Nz)
	assert.Equal(t, m.Nr, got.Nr)
	assert.Equal(t, m.R1, got.R1)
	assert.Equal(t, m.R2, got.R2)
	assert.InDelta(t, m.Dz, got.Dz, 1e-9)
	assert.Equal(t, m.Sl, got.Sl)
	assert.Equal(t, m.Rf, got.Rf)
	assert.Equal(t, m.Jp, got.Jp)
	assert.Equal(t, m.Ir, got.Ir)
	assert.Equal(t, m.Ij, got.Ij)
}

func TestFlagConventionOnDisk(t *testing.T) {
	m := New([3]float64{0, 0, 0}, [3]float64{2, 0, 2}, 1, 1, 1, 1)
	// all flags start excluded (-1 in memory, 0 on disk)
	var buf bytes.Buffer
	require.NoError(t, m.Write(&buf, binary.LittleEndian))

	raw := buf.Bytes()
	// header: 4 int32 dims + 9 float32 coords
	off := 4*4 + 9*4
	off += len(m.Sl) * 4 // slowness
	off += len(m.Rf) * 4 // depths
	off += len(m.Jp) * 4 // jumps
	ir := int32(binary.LittleEndian.Uint32(raw[off:]))
	assert.Equal(t, int32(0), ir)

	got, err := Read(bytes.NewReader(raw), binary.LittleEndian)
	require.NoError(t, err)
	assert.Equal(t, FlagExcluded, got.IrAt(0, 0, 0))
}

func TestReadHeaderOnly(t *testing.T) {
	m := Default()
	path := filepath.Join(t.TempDir(), "head.vm")
	require.NoError(t, m.WriteFile(path))

	got, err := ReadFileHeader(path)
	require.NoError(t, err)
	assert.Equal(t, m.Nx, got.Nx)
	assert.Equal(t, m.Nz, got.Nz)
	assert.Nil(t, got.Sl)
}

func TestReadBigEndian(t *testing.T) {
	m := New([3]float64{0, 0, 0}, [3]float64{5, 0, 5}, 1, 1, 1, 0)
	var buf bytes.Buffer
	require.NoError(t, m.Write(&buf, binary.BigEndian))

	got, err := Read(bytes.NewReader(buf.Bytes()), binary.BigEndian)
	require.NoError(t, err)
	assert.Equal(t, m.Nx, got.Nx)
	assert.Equal(t, m.Sl, got.Sl)

	// wrong byte order is rejected by the dimension check
	_, err = Read(bytes.NewReader(buf.Bytes()), binary.LittleEndian)
	assert.Error(t, err)
}

func TestReadGarbageHeader(t *testing.T) {
	raw := []byte{0xff, 0xff, 0xff, 0xff, 1, 2, 3, 4}
	_, err := Read(bytes.NewReader(raw), binary.LittleEndian)
	assert.Error(t, err)

	_, err = Read(bytes.NewReader(nil), binary.LittleEndian)
	assert.Error(t, err)
}
