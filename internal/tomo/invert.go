// ABOUTME: Wrapper for the tomographic inversion program.
// ABOUTME: Renders the long stdin parameter block and collects diagnostics.
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

	"github.com/rvbelefonte/rockfish/internal/vm"
)

// Fixed inversion switches. These match the build of the inversion
// program this wrapper targets and are not exposed as options.
const (
	useNewFrechet           = true
	useCombinationSmoothing = true
	printFortranDebug       = false
)

// InvertOptions control an inversion run. Start from DefaultInvertOptions
// and override what you need.
type InvertOptions struct {
	TargetChiSquared          float64
	Damping                   float64
	FirstDerivativeSmoothing  float64
	SecondDerivativeSmoothing float64

	// NGrid is the inversion grid (nx, ny, nz); zero matches the model.
	NGrid [3]int
	// Dz0 is the vertical grid spacing at the top of the inversion grid;
	// zero uses the model spacing.
	Dz0 float64
	// ZUniform is the depth below which vertical spacing grows linearly;
	// zero uses the model bottom, keeping the spacing constant.
	ZUniform float64

	SlownessScale       float64
	SlownessJumpScale   float64
	ReflectorDepthScale float64

	TopLayer int
	// BottomLayer < 0 means the deepest layer in the model.
	BottomLayer int

	StationCorrection       bool
	StationCorrectionScale  float64
	StationCorrectionWeight float64
	StationCorrectionFile   string

	Headwaves       bool
	StrictLayers    bool
	ExtrapolateGrid bool

	RaySkipInterval        int
	HorizontalRayExtension float64
	VerticalRayExtension   float64

	SlownessReferenceScale float64
	VScalePow              int
	MatrixTerms            int
	PenaltyTerms           int
	ReflectorDepthWeight   float64
	SlownessJumpWeight     float64
	AspectRatio            float64

	// DiagnosticDir receives the Frechet matrix and grid dumps.
	DiagnosticDir string

	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// DefaultInvertOptions returns the standard inversion parameters.
func DefaultInvertOptions() InvertOptions {
	return InvertOptions{
		TargetChiSquared:          1.0,
		Damping:                   0.1,
		FirstDerivativeSmoothing:  0.1,
		SecondDerivativeSmoothing: 0.5,
		SlownessScale:             0.02,
		SlownessJumpScale:         0.005,
		ReflectorDepthScale:       2.0,
		TopLayer:                  0,
		BottomLayer:               -1,
		StationCorrection:         true,
		StationCorrectionScale:    0.04,
		StationCorrectionWeight:   0.0,
		StationCorrectionFile:     "station_statics.dat",
		Headwaves:                 true,
		StrictLayers:              true,
		ExtrapolateGrid:           true,
		RaySkipInterval:           1,
		HorizontalRayExtension:    20,
		VerticalRayExtension:      5,
		SlownessReferenceScale:    0.2,
		VScalePow:                 2,
		MatrixTerms:               2,
		PenaltyTerms:              2,
		ReflectorDepthWeight:      0.5,
		SlownessJumpWeight:        10,
		AspectRatio:               1.0,
		DiagnosticDir:             "inverse",
	}
}

// Invert runs the inversion program on a starting model and a rayfile,
// writing the updated model to outfile.
func Invert(ctx context.Context, vmfile, rayfile, outfile string, opts InvertOptions) error {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("run_id", uuid.NewString()[:8])

	model, err := vm.ReadFileHeader(vmfile)
	if err != nil {
		return err
	}
	if opts.DiagnosticDir == "" {
		opts.DiagnosticDir = "inverse"
	}
	if err := os.MkdirAll(opts.DiagnosticDir, 0o755); err != nil {
		return fmt.Errorf("creating diagnostic dir: %w", err)
	}

	stdin := buildInvertInput(vmfile, rayfile, outfile, model, opts)
	log.Info("inverting", "vmfile", vmfile, "rayfile", rayfile,
		"target_chi2", opts.TargetChiSquared)
	start := time.Now()
	if err := runProgram(ctx, InvertProgram, stdin, opts.Stdout, opts.Stderr); err != nil {
		return err
	}
	log.Info("inversion complete", "elapsed", time.Since(start), "outfile", outfile)
	if fileSize(outfile) == 0 {
		log.Warn("inversion did not write an output model", "outfile", outfile)
	}
	return nil
}

// buildInvertInput renders the stdin parameter block for the inversion
// program. The line order is part of the program's input contract.
func buildInvertInput(vmfile, rayfile, outfile string, model *vm.Model, opts InvertOptions) string {
	ngrid := opts.NGrid
	if ngrid == [3]int{} {
		ngrid = [3]int{model.Nx, model.Ny, model.Nz}
	}
	dz0 := opts.Dz0
	if dz0 == 0 {
		dz0 = model.Dz
	}
	zuniform := opts.ZUniform
	if zuniform == 0 {
		zuniform = model.R2[2]
	}
	bottom := opts.BottomLayer
	if bottom < 0 {
		bottom = model.Nr
	}
	diag := func(name string) string {
		return filepath.Join(opts.DiagnosticDir, name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s %d\n", fortranBool(useNewFrechet),
		fortranBool(useCombinationSmoothing),
		fortranBool(opts.StationCorrection), boolInt(printFortranDebug))
	fmt.Fprintf(&b, "%s\n", fortranBool(opts.Headwaves))
	fmt.Fprintf(&b, "%s %s\n", fortranBool(opts.StrictLayers), fortranBool(opts.ExtrapolateGrid))
	fmt.Fprintf(&b, "%s\n", vmfile)
	fmt.Fprintf(&b, "%d %d %d\n", ngrid[0], ngrid[1], ngrid[2])
	fmt.Fprintf(&b, "%s %s\n", ff(dz0), ff(zuniform))
	fmt.Fprintf(&b, "%d %d\n", opts.TopLayer, bottom)
	fmt.Fprintf(&b, "%s\n", rayfile)
	fmt.Fprintf(&b, "%s\n", diag("frechet_matrix.bin"))
	fmt.Fprintf(&b, "%d\n", opts.RaySkipInterval)
	fmt.Fprintf(&b, "%s %s\n", ff(opts.HorizontalRayExtension), ff(opts.VerticalRayExtension))
	fmt.Fprintf(&b, "%s\n", diag("sl.dat"))
	fmt.Fprintf(&b, "%s\n", diag("sl.ext.dat"))
	fmt.Fprintf(&b, "%s\n", diag("rf.dat"))
	fmt.Fprintf(&b, "%s\n", diag("rf.ext.dat"))
	fmt.Fprintf(&b, "%s\n", diag("jp.dat"))
	fmt.Fprintf(&b, "%s\n", diag("jp.ext.dat"))
	fmt.Fprintf(&b, "%s %s %s\n", ff(opts.Damping),
		ff(opts.FirstDerivativeSmoothing), ff(opts.SecondDerivativeSmoothing))
	fmt.Fprintf(&b, "%s\n", ff(opts.StationCorrectionWeight))
	fmt.Fprintf(&b, "%s %s %s %s\n", ff(opts.SlownessScale), ff(opts.SlownessJumpScale),
		ff(opts.ReflectorDepthScale), ff(opts.StationCorrectionScale))
	fmt.Fprintf(&b, "%s %d %d %d\n", ff(opts.SlownessReferenceScale),
		opts.VScalePow, opts.MatrixTerms, opts.PenaltyTerms)
	fmt.Fprintf(&b, "%s %s\n", ff(opts.ReflectorDepthWeight), ff(opts.SlownessJumpWeight))
	fmt.Fprintf(&b, "%s\n", ff(opts.AspectRatio))
	fmt.Fprintf(&b, "%s\n", diag("dws.sl.dat"))
	fmt.Fprintf(&b, "%s\n", diag("dws.rf.dat"))
	fmt.Fprintf(&b, "%s\n", diag("dws.jp.dat"))
	fmt.Fprintf(&b, "%s\n", diag("nlr.dat"))
	fmt.Fprintf(&b, "%s\n", diag("inz.dat"))
	fmt.Fprintf(&b, "%s\n", diag("anz.dat"))
	fmt.Fprintf(&b, "%s\n", diag("sol.dat"))
	fmt.Fprintf(&b, "%s\n", ff(opts.TargetChiSquared))
	fmt.Fprintf(&b, "%s\n", opts.StationCorrectionFile)
	fmt.Fprintf(&b, "%s\n", outfile)
	return b.String()
}
