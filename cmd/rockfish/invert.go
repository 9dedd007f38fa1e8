// ABOUTME: CLI command for tomographic inversion of traced rays.
// ABOUTME: Drives the vm_tomo executable through the tomo wrapper.
package main

import (
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rvbelefonte/rockfish/internal/tomo"
)

var (
	invChi2      float64
	invDamping   float64
	invSmooth1   float64
	invSmooth2   float64
	invNoStatics bool
	invDiagDir   string
)

var invertCmd = &cobra.Command{
	Use:   "invert <model.vm> <rays.ray> <out.vm>",
	Short: "Invert traced rays for an updated velocity model",
	Long: `Run the tomographic inversion on a starting model and a rayfile.

The inversion perturbs slowness, slowness jumps, and reflector depths to
move the data misfit toward the target chi-squared value. Diagnostic
files land in the diagnostic directory.

Examples:
  rockfish invert start.vm out.ray next.vm
  rockfish invert start.vm out.ray next.vm --chi2 2 --damping 0.2`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := tomo.DefaultInvertOptions()
		opts.TargetChiSquared = invChi2
		opts.Damping = invDamping
		opts.FirstDerivativeSmoothing = invSmooth1
		opts.SecondDerivativeSmoothing = invSmooth2
		opts.StationCorrection = !invNoStatics
		opts.DiagnosticDir = invDiagDir
		opts.Logger = slog.Default()

		if err := tomo.Invert(cmd.Context(), args[0], args[1], args[2], opts); err != nil {
			return err
		}
		color.Green("✓ Updated model written to %s", args[2])
		return nil
	},
}

func init() {
	invertCmd.Flags().Float64Var(&invChi2, "chi2", 1.0, "target chi-squared misfit")
	invertCmd.Flags().Float64Var(&invDamping, "damping", 0.1, "model perturbation damping weight")
	invertCmd.Flags().Float64Var(&invSmooth1, "smoothing1", 0.1, "first-derivative smoothing weight")
	invertCmd.Flags().Float64Var(&invSmooth2, "smoothing2", 0.5, "second-derivative smoothing weight")
	invertCmd.Flags().BoolVar(&invNoStatics, "no-statics", false, "disable station static corrections")
	invertCmd.Flags().StringVar(&invDiagDir, "diagnostic-dir", "inverse", "directory for diagnostic files")

	rootCmd.AddCommand(invertCmd)
}
