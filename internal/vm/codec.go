// ABOUTME: Binary codec for the VM Tomography velocity-model format.
// ABOUTME: Fixed layout of int32/float32 arrays with selectable endianness.
package vm

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// NativeEndian is the byte order used when no explicit order is given.
// The Fortran toolchain writes files in the machine's native order, which
// is little-endian on every platform this code targets.
var NativeEndian binary.ByteOrder = binary.LittleEndian

// maxGridNodes guards against reading a garbage header and then trying to
// allocate the moon.
const maxGridNodes = 1 << 30

// ReadFile reads a VM model from a file on disk.
func ReadFile(path string) (*Model, error) {
	return readFile(path, NativeEndian, false)
}

// ReadFileHeader reads only the grid dimensions of a VM model file. The
// returned model has no grid data.
func ReadFileHeader(path string) (*Model, error) {
	return readFile(path, NativeEndian, true)
}

func readFile(path string, endian binary.ByteOrder, headOnly bool) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vm file: %w", err)
	}
	defer f.Close()
	m, err := read(bufio.NewReader(f), endian, headOnly)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return m, nil
}

// Read reads a full VM model from r.
func Read(r io.Reader, endian binary.ByteOrder) (*Model, error) {
	return read(r, endian, false)
}

func read(r io.Reader, endian binary.ByteOrder, headOnly bool) (*Model, error) {
	var dims [4]int32
	if err := binary.Read(r, endian, dims[:]); err != nil {
		return nil, fmt.Errorf("read grid dimensions: %w", err)
	}
	nx, ny, nz, nr := int(dims[0]), int(dims[1]), int(dims[2]), int(dims[3])
	if nx <= 0 || ny <= 0 || nz <= 0 || nr < 0 {
		return nil, fmt.Errorf("invalid grid dimensions %dx%dx%d (nr=%d)", nx, ny, nz, nr)
	}
	if nx*ny*nz > maxGridNodes {
		return nil, fmt.Errorf("grid of %dx%dx%d nodes is implausibly large", nx, ny, nz)
	}

	var coords [9]float32
	if err := binary.Read(r, endian, coords[:]); err != nil {
		return nil, fmt.Errorf("read grid coordinates: %w", err)
	}

	m := &Model{
		Nx: nx, Ny: ny, Nz: nz, Nr: nr,
		R1: [3]float64{float64(coords[0]), float64(coords[1]), float64(coords[2])},
		R2: [3]float64{float64(coords[3]), float64(coords[4]), float64(coords[5])},
		Dx: float64(coords[6]), Dy: float64(coords[7]), Dz: float64(coords[8]),
	}
	if headOnly {
		return m, nil
	}

	m.Sl = make([]float32, nx*ny*nz)
	if err := binary.Read(r, endian, m.Sl); err != nil {
		return nil, fmt.Errorf("read slowness grid: %w", err)
	}

	nintf := nr * nx * ny
	m.Rf = make([]float32, nintf)
	m.Jp = make([]float32, nintf)
	m.Ir = make([]int32, nintf)
	m.Ij = make([]int32, nintf)
	if err := binary.Read(r, endian, m.Rf); err != nil {
		return nil, fmt.Errorf("read interface depths: %w", err)
	}
	if err := binary.Read(r, endian, m.Jp); err != nil {
		return nil, fmt.Errorf("read slowness jumps: %w", err)
	}
	if err := binary.Read(r, endian, m.Ir); err != nil {
		return nil, fmt.Errorf("read reflector flags: %w", err)
	}
	if err := binary.Read(r, endian, m.Ij); err != nil {
		return nil, fmt.Errorf("read jump flags: %w", err)
	}

	// The Fortran codes index interfaces from 1 and use 0 for excluded
	// nodes; in memory we index from 0 and use -1.
	for i := range m.Ir {
		m.Ir[i]--
		m.Ij[i]--
	}
	return m, nil
}

// WriteFile writes the model to a file in the native VM format.
func (m *Model) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create vm file: %w", err)
	}
	w := bufio.NewWriter(f)
	if err := m.Write(w, NativeEndian); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// Write writes the model to w in the native VM format.
func (m *Model) Write(w io.Writer, endian binary.ByteOrder) error {
	dims := [4]int32{int32(m.Nx), int32(m.Ny), int32(m.Nz), int32(m.Nr)}
	if err := binary.Write(w, endian, dims[:]); err != nil {
		return fmt.Errorf("write grid dimensions: %w", err)
	}
	coords := [9]float32{
		float32(m.R1[0]), float32(m.R1[1]), float32(m.R1[2]),
		float32(m.R2[0]), float32(m.R2[1]), float32(m.R2[2]),
		float32(m.Dx), float32(m.Dy), float32(m.Dz),
	}
	if err := binary.Write(w, endian, coords[:]); err != nil {
		return fmt.Errorf("write grid coordinates: %w", err)
	}
	if err := binary.Write(w, endian, m.Sl); err != nil {
		return fmt.Errorf("write slowness grid: %w", err)
	}
	if err := binary.Write(w, endian, m.Rf); err != nil {
		return fmt.Errorf("write interface depths: %w", err)
	}
	if err := binary.Write(w, endian, m.Jp); err != nil {
		return fmt.Errorf("write slowness jumps: %w", err)
	}

	// Shift flags back to the 1-based Fortran convention.
	flags := make([]int32, len(m.Ir))
	for i, v := range m.Ir {
		flags[i] = v + 1
	}
	if err := binary.Write(w, endian, flags); err != nil {
		return fmt.Errorf("write reflector flags: %w", err)
	}
	for i, v := range m.Ij {
		flags[i] = v + 1
	}
	if err := binary.Write(w, endian, flags); err != nil {
		return fmt.Errorf("write jump flags: %w", err)
	}
	return nil
}
