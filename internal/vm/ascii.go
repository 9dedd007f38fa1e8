// ABOUTME: ASCII export of the velocity model grid.
// ABOUTME: Writes x y z value rows suitable for plotting tools.
package vm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"
)

// ASCIIOptions control the ASCII grid export.
type ASCIIOptions struct {
	// Meters scales coordinates from kilometers to meters.
	Meters bool
	// Velocity writes 1/slowness instead of slowness.
	Velocity bool
	// Source names the model in the file header.
	Source string
}

// WriteASCIIGridFile writes the slowness grid as ASCII rows to path.
func (m *Model) WriteASCIIGridFile(path string, opts ASCIIOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	if err := m.WriteASCIIGrid(w, opts); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteASCIIGrid writes one "x y z value" row per grid node.
func (m *Model) WriteASCIIGrid(w io.Writer, opts ASCIIOptions) error {
	scale := 1.0
	units := "x_km y_km z_km"
	if opts.Meters {
		scale = 1000.0
		units = "x_m y_m z_m"
	}
	quantity := "sl"
	if opts.Velocity {
		quantity = "velocity"
	}
	source := opts.Source
	if source == "" {
		source = "memory"
	}
	_, err := fmt.Fprintf(w, "# VM Tomography velocity model grid\n# %s %s\n#\n# Exported from: %s\n# Created on: %s\n",
		units, quantity, source, time.Now().Format(time.RFC3339))
	if err != nil {
		return err
	}
	for ix := 0; ix < m.Nx; ix++ {
		x := m.IToX(ix) * scale
		for iy := 0; iy < m.Ny; iy++ {
			y := m.IToY(iy) * scale
			for iz := 0; iz < m.Nz; iz++ {
				z := m.IToZ(iz) * scale
				v := m.SlAt(ix, iy, iz)
				if opts.Velocity {
					v = 1.0 / v
				}
				if _, err := fmt.Fprintf(w, "%20.3f %20.3f %20.3f %10.5f\n", x, y, z, v); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
