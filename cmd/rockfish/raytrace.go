// ABOUTME: CLI command for raytracing a velocity model against the pick database.
// ABOUTME: Drives the slim_rays executable through the tomo wrapper.
package main

import (
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rvbelefonte/rockfish/internal/pickdb"
	"github.com/rvbelefonte/rockfish/internal/tomo"
)

var (
	rtInputDir  string
	rtKeepInput bool
	rtEvent     string
	rtMinAngle  float64
	rtMinVel    float64
	rtTopLayer  int
	rtBotLayer  int
)

var raytraceCmd = &cobra.Command{
	Use:   "raytrace <model.vm> <out.ray>",
	Short: "Trace rays through a velocity model",
	Long: `Trace rays for every instrument with picks in the database.

Builds the raytracer input files from the pick database, runs slim_rays
once per instrument, and appends all rayfans to the output file.

Examples:
  rockfish raytrace start.vm out.ray
  rockfish raytrace start.vm out.ray --event Pg --min-velocity 1.5`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		opts := tomo.DefaultRaytraceOptions()
		opts.InputDir = rtInputDir
		opts.Cleanup = !rtKeepInput
		opts.MinAngle = rtMinAngle
		opts.MinVelocity = rtMinVel
		opts.TopLayer = rtTopLayer
		opts.BottomLayer = rtBotLayer
		opts.Filter = pickdb.Filter{Event: rtEvent}
		opts.Logger = slog.Default()

		if err := tomo.Raytrace(cmd.Context(), db, args[0], args[1], opts); err != nil {
			return err
		}
		color.Green("✓ Rayfile written to %s", args[1])
		return nil
	},
}

func init() {
	raytraceCmd.Flags().StringVar(&rtInputDir, "input-dir", "forward", "directory for raytracer input files")
	raytraceCmd.Flags().BoolVar(&rtKeepInput, "keep-input", false, "keep the generated input files")
	raytraceCmd.Flags().StringVarP(&rtEvent, "event", "e", "", "trace picks for this event only")
	raytraceCmd.Flags().Float64Var(&rtMinAngle, "min-angle", 0.5, "minimum forward-star angle in degrees")
	raytraceCmd.Flags().Float64Var(&rtMinVel, "min-velocity", 1.4, "minimum velocity to trace through")
	raytraceCmd.Flags().IntVar(&rtTopLayer, "top-layer", 0, "shallowest layer to trace through")
	raytraceCmd.Flags().IntVar(&rtBotLayer, "bottom-layer", -1, "deepest layer to trace through (-1 for all)")

	rootCmd.AddCommand(raytraceCmd)
}
