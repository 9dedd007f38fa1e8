// ABOUTME: CLI command for smoothing a velocity model on disk.
// ABOUTME: Drives the vm_smooth_model executable through the tomo wrapper.
package main

import (
	"fmt"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rvbelefonte/rockfish/internal/tomo"
)

var (
	smoothWindow string
	smoothPasses int
)

var smoothCmd = &cobra.Command{
	Use:   "smooth <model.vm> <out.vm>",
	Short: "Smooth a velocity model",
	Long: `Apply a running-average window to a slowness model.

Smoothing between inversion steps keeps short-wavelength structure from
accumulating where ray coverage is poor.

Examples:
  rockfish smooth next.vm next_smooth.vm
  rockfish smooth next.vm next_smooth.vm --window 9,1,9 --passes 2`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := tomo.DefaultSmoothOptions()
		opts.Logger = slog.Default()
		if smoothWindow != "" {
			var w [3]int
			if _, err := fmt.Sscanf(smoothWindow, "%d,%d,%d", &w[0], &w[1], &w[2]); err != nil {
				return fmt.Errorf("invalid --window: want nx,ny,nz, got %q", smoothWindow)
			}
			opts.Window = w
		}
		if smoothPasses > 0 {
			opts.Passes = smoothPasses
		}

		if err := tomo.Smooth(cmd.Context(), args[0], args[1], opts); err != nil {
			return err
		}
		color.Green("✓ Smoothed model written to %s", args[1])
		return nil
	},
}

func init() {
	smoothCmd.Flags().StringVar(&smoothWindow, "window", "", "smoothing window in nodes, nx,ny,nz")
	smoothCmd.Flags().IntVar(&smoothPasses, "passes", 0, "number of smoothing passes")

	rootCmd.AddCommand(smoothCmd)
}
