// ABOUTME: CLI commands for creating and inspecting velocity models.
// ABOUTME: Covers model creation, header info, interface edits, and ASCII export.
package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rvbelefonte/rockfish/internal/vm"
)

var (
	newR1         string
	newR2         string
	newDx         float64
	newDy         float64
	newDz         float64
	newDepths     string
	newVelocities string

	asciiVelocity bool
	asciiMeters   bool

	insertDepth float64
	removeJumps bool
)

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Create and inspect velocity models",
}

var modelNewCmd = &cobra.Command{
	Use:   "new <file>",
	Short: "Create a starting velocity model",
	Long: `Create a layered starting model and write it in the VM binary format.

The --depths flag lists flat interface depths; --velocities lists one
constant velocity per layer, so it needs one more value than --depths.

Examples:
  rockfish model new start.vm
  rockfish model new start.vm --r2 250,0,30 --depths 5,10 --velocities 1.5,3.0,6.0`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r1, err := parseTriple(newR1)
		if err != nil {
			return fmt.Errorf("invalid --r1: %w", err)
		}
		r2, err := parseTriple(newR2)
		if err != nil {
			return fmt.Errorf("invalid --r2: %w", err)
		}

		m := vm.New(r1, r2, newDx, newDy, newDz, 0)

		depths, err := parseFloats(newDepths)
		if err != nil {
			return fmt.Errorf("invalid --depths: %w", err)
		}
		velocities, err := parseFloats(newVelocities)
		if err != nil {
			return fmt.Errorf("invalid --velocities: %w", err)
		}
		if len(velocities) > 0 {
			if len(velocities) != len(depths)+1 {
				return fmt.Errorf("need %d velocities for %d interfaces, got %d",
					len(depths)+1, len(depths), len(velocities))
			}
			if err := m.DefineConstantLayerVelocity(0, velocities[0]); err != nil {
				return err
			}
			builders := make([]vm.LayerBuilder, len(depths))
			for i := range depths {
				builders[i] = vm.Constant(velocities[i+1])
			}
			if err := m.AddLayers(depths, builders); err != nil {
				return err
			}
		} else if len(depths) > 0 {
			if err := m.AddLayers(depths, nil); err != nil {
				return err
			}
		}

		if err := m.WriteFile(args[0]); err != nil {
			return err
		}
		color.Green("✓ Wrote %s", args[0])
		fmt.Print(m.String())
		return nil
	},
}

var modelInfoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Print the grid overview of a model file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := vm.ReadFileHeader(args[0])
		if err != nil {
			return err
		}
		fmt.Print(m.String())
		return nil
	},
}

var modelASCIICmd = &cobra.Command{
	Use:   "ascii <in.vm> <out.txt>",
	Short: "Export the model grid as ASCII rows",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := vm.ReadFile(args[0])
		if err != nil {
			return err
		}
		opts := vm.ASCIIOptions{
			Meters:   asciiMeters,
			Velocity: asciiVelocity,
			Source:   args[0],
		}
		if err := m.WriteASCIIGridFile(args[1], opts); err != nil {
			return err
		}
		color.Green("✓ Wrote %s", args[1])
		return nil
	},
}

var modelInsertCmd = &cobra.Command{
	Use:   "insert-interface <in.vm> <out.vm>",
	Short: "Insert a flat interface into a model",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := vm.ReadFile(args[0])
		if err != nil {
			return err
		}
		iref, err := m.InsertConstantInterface(insertDepth)
		if err != nil {
			return err
		}
		if err := m.WriteFile(args[1]); err != nil {
			return err
		}
		color.Green("✓ Inserted interface %d at %.3f km, wrote %s", iref, insertDepth, args[1])
		return nil
	},
}

var modelRemoveCmd = &cobra.Command{
	Use:   "remove-interface <in.vm> <out.vm> <index>",
	Short: "Remove an interface from a model",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		iref, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid interface index: %s", args[2])
		}
		m, err := vm.ReadFile(args[0])
		if err != nil {
			return err
		}
		if err := m.RemoveInterface(iref, removeJumps); err != nil {
			return err
		}
		if err := m.WriteFile(args[1]); err != nil {
			return err
		}
		color.Green("✓ Removed interface %d, wrote %s", iref, args[1])
		return nil
	},
}

// parseFloats parses a comma-separated list of floats; empty means none.
func parseFloats(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("bad value %q", p)
		}
		out[i] = v
	}
	return out, nil
}

func init() {
	modelNewCmd.Flags().StringVar(&newR1, "r1", "0,0,0", "minimum x,y,z of the grid")
	modelNewCmd.Flags().StringVar(&newR2, "r2", "250,0,30", "maximum x,y,z of the grid")
	modelNewCmd.Flags().Float64Var(&newDx, "dx", 0.5, "x node spacing")
	modelNewCmd.Flags().Float64Var(&newDy, "dy", 1, "y node spacing")
	modelNewCmd.Flags().Float64Var(&newDz, "dz", 0.1, "z node spacing")
	modelNewCmd.Flags().StringVar(&newDepths, "depths", "", "flat interface depths, comma separated")
	modelNewCmd.Flags().StringVar(&newVelocities, "velocities", "", "constant layer velocities, comma separated")

	modelASCIICmd.Flags().BoolVar(&asciiVelocity, "velocity", false, "write velocity instead of slowness")
	modelASCIICmd.Flags().BoolVar(&asciiMeters, "meters", false, "write coordinates in meters")

	modelInsertCmd.Flags().Float64Var(&insertDepth, "depth", 0, "interface depth in km")
	modelRemoveCmd.Flags().BoolVar(&removeJumps, "apply-jumps", false, "fold slowness jumps into the grid first")

	modelCmd.AddCommand(modelNewCmd)
	modelCmd.AddCommand(modelInfoCmd)
	modelCmd.AddCommand(modelASCIICmd)
	modelCmd.AddCommand(modelInsertCmd)
	modelCmd.AddCommand(modelRemoveCmd)
	rootCmd.AddCommand(modelCmd)
}
