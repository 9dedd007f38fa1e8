// ABOUTME: Wrapper for the shortest-path raytracer.
// ABOUTME: Writes pick database exports and traces rays one instrument at a time.
package tomo

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rvbelefonte/rockfish/internal/pickdb"
	"github.com/rvbelefonte/rockfish/internal/vm"
)

// RaytraceOptions control a raytracing run. Start from
// DefaultRaytraceOptions and override what you need.
type RaytraceOptions struct {
	// InputDir receives the instrument, pick, and shot files built from
	// the pick database.
	InputDir string
	// Cleanup removes the input files after the run.
	Cleanup bool
	// GridSize is the graphing grid (nx, ny, nz); zero matches the model.
	GridSize [3]int
	// ForwardStarSize sets the search stencil. The y size is forced to 0
	// for 2D models.
	ForwardStarSize [3]int
	// MinAngle is the minimum angle between search directions, degrees.
	MinAngle float64
	// MinVelocity bounds the velocities rays are traced through.
	MinVelocity float64
	// MaxNodeSize is the average node allocation per raypath.
	MaxNodeSize int
	// TopLayer and BottomLayer bound the layers to trace through.
	// BottomLayer < 0 means the deepest layer in the model.
	TopLayer    int
	BottomLayer int
	// Filter selects which picks to trace.
	Filter pickdb.Filter

	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// DefaultRaytraceOptions returns the standard raytracing parameters.
func DefaultRaytraceOptions() RaytraceOptions {
	return RaytraceOptions{
		InputDir:        "forward",
		Cleanup:         true,
		ForwardStarSize: [3]int{12, 12, 24},
		MinAngle:        0.5,
		MinVelocity:     1.4,
		MaxNodeSize:     620,
		TopLayer:        0,
		BottomLayer:     -1,
	}
}

// Raytrace traces rays through a velocity model for every instrument with
// picks in the database, appending all rayfans to rayfile.
func Raytrace(ctx context.Context, db *pickdb.DB, vmfile, rayfile string, opts RaytraceOptions) error {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("run_id", uuid.NewString()[:8])

	if opts.InputDir == "" {
		opts.InputDir = "forward"
	}
	if err := os.MkdirAll(opts.InputDir, 0o755); err != nil {
		return fmt.Errorf("creating input dir: %w", err)
	}
	files := pickdb.DefaultVMTomoFiles()
	if err := db.WriteVMTomoInputs(opts.InputDir, files, opts.Filter); err != nil {
		return err
	}

	vmfile, err := filepath.Abs(vmfile)
	if err != nil {
		return err
	}
	rayfile, err = filepath.Abs(rayfile)
	if err != nil {
		return err
	}

	model, err := vm.ReadFileHeader(vmfile)
	if err != nil {
		return err
	}
	grid := opts.GridSize
	if grid == [3]int{} {
		grid = [3]int{model.Nx, model.Ny, model.Nz}
	}
	star := opts.ForwardStarSize
	if model.Nx == 1 {
		star[0] = 0
	} else if model.Ny == 1 {
		star[1] = 0
	}
	bottom := opts.BottomLayer
	if bottom < 0 {
		bottom = model.Nr
	}

	instruments, err := db.Ensembles(opts.Filter)
	if err != nil {
		return err
	}
	if len(instruments) == 0 {
		return fmt.Errorf("no picks match the search criteria")
	}
	log.Info("raytracing", "instruments", len(instruments), "vmfile", vmfile)

	// The tracer appends fans, so stale output has to go first.
	if err := os.Remove(rayfile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing old rayfile: %w", err)
	}

	start := time.Now()
	for i, inst := range instruments {
		pos, err := db.InstrumentPosition(inst)
		if err != nil {
			return fmt.Errorf("instrument %d: %w", inst, err)
		}
		stdin := buildRaytraceInput(vmfile, rayfile, inst, pos, grid, star, bottom, i > 0, opts)

		log.Info("tracing rays", "instrument", inst, "n", i+1, "of", len(instruments))
		size0 := fileSize(rayfile)
		t0 := time.Now()
		if err := runProgram(ctx, RaytraceProgram, stdin, opts.Stdout, opts.Stderr); err != nil {
			return err
		}
		if fileSize(rayfile) == size0 {
			log.Warn("no rays traced for instrument", "instrument", inst)
		}
		log.Debug("instrument done", "instrument", inst, "elapsed", time.Since(t0))
	}
	log.Info("raytracing complete", "elapsed", time.Since(start), "rayfile", rayfile)

	if fileSize(rayfile) == 0 {
		log.Warn("raytracer did not create a rayfile", "rayfile", rayfile)
	}
	if opts.Cleanup {
		for _, name := range []string{files.Inst, files.Picks, files.Shots} {
			_ = os.Remove(filepath.Join(opts.InputDir, name))
		}
		_ = os.Remove(opts.InputDir)
	}
	return nil
}

// buildRaytraceInput renders the stdin block the raytracer reads for a
// single instrument.
func buildRaytraceInput(vmfile, rayfile string, inst int, pos [3]float64,
	grid, star [3]int, bottomLayer int, rayfileExists bool, opts RaytraceOptions) string {

	files := pickdb.DefaultVMTomoFiles()
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", vmfile)
	fmt.Fprintf(&b, "%d\n", inst)
	fmt.Fprintf(&b, "%d,%d,%d\n", grid[0], grid[1], grid[2])
	fmt.Fprintf(&b, "%s\n", ff(1.0/opts.MinVelocity))
	fmt.Fprintf(&b, "%d\n", opts.MaxNodeSize)
	fmt.Fprintf(&b, "%-10.5f %-10.5f %-10.5f\n", pos[0], pos[1], pos[2])
	fmt.Fprintf(&b, "%d,%d\n", opts.TopLayer, bottomLayer)
	fmt.Fprintf(&b, "%d,%d,%d\n", star[0], star[1], star[2])
	fmt.Fprintf(&b, "%s\n", ff(opts.MinAngle))
	fmt.Fprintf(&b, "%s\n", filepath.Join(opts.InputDir, files.Shots))
	fmt.Fprintf(&b, "%s\n", filepath.Join(opts.InputDir, files.Picks))
	fmt.Fprintf(&b, "%s\n", rayfile)
	fmt.Fprintf(&b, "%d\n", boolInt(rayfileExists))
	// instrument static, always zero here: statics come from the inversion
	b.WriteString("0.0\n")
	return b.String()
}
