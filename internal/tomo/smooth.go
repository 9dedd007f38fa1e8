// ABOUTME: Wrapper for the model smoothing program.
// ABOUTME: Applies a running-average window to a slowness model on disk.
package tomo

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SmoothOptions control a smoothing run.
type SmoothOptions struct {
	// Window is the smoothing window in nodes along x, y, and z.
	Window [3]int
	// Passes is the number of smoothing passes to apply.
	Passes int

	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// DefaultSmoothOptions returns the standard smoothing parameters.
func DefaultSmoothOptions() SmoothOptions {
	return SmoothOptions{
		Window: [3]int{5, 1, 5},
		Passes: 1,
	}
}

// Smooth runs the smoothing program on a model file, writing the smoothed
// model to outfile.
func Smooth(ctx context.Context, vmfile, outfile string, opts SmoothOptions) error {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("run_id", uuid.NewString()[:8])

	if opts.Passes < 1 {
		opts.Passes = 1
	}
	stdin := buildSmoothInput(vmfile, outfile, opts)
	log.Info("smoothing model", "vmfile", vmfile, "window", opts.Window,
		"passes", opts.Passes)
	start := time.Now()
	if err := runProgram(ctx, SmoothProgram, stdin, opts.Stdout, opts.Stderr); err != nil {
		return err
	}
	log.Info("smoothing complete", "elapsed", time.Since(start), "outfile", outfile)
	if fileSize(outfile) == 0 {
		log.Warn("smoother did not write an output model", "outfile", outfile)
	}
	return nil
}

// buildSmoothInput renders the stdin block for the smoothing program.
func buildSmoothInput(vmfile, outfile string, opts SmoothOptions) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", vmfile)
	fmt.Fprintf(&b, "%d,%d,%d\n", opts.Window[0], opts.Window[1], opts.Window[2])
	fmt.Fprintf(&b, "%d\n", opts.Passes)
	fmt.Fprintf(&b, "%s\n", outfile)
	return b.String()
}
