// ABOUTME: Root Cobra command for the rockfish CLI.
// ABOUTME: Wires configuration, logging, and the pick database for subcommands.
package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/rvbelefonte/rockfish/internal/config"
	"github.com/rvbelefonte/rockfish/internal/logging"
	"github.com/rvbelefonte/rockfish/internal/pickdb"
)

var (
	cfg       *config.Config
	flagDB    string
	flagLevel string
	flagJSON  bool
)

var rootCmd = &cobra.Command{
	Use:   "rockfish",
	Short: "Travel-time picks and velocity-model tomography",
	Long: `Rockfish manages active-source seismic travel-time picks and drives
the VM Tomography toolchain around them.

QUICK START:

  $ rockfish pick add Pg 16 201 4.552 --source 10,0,0.006 --receiver 40,0,4.5
  $ rockfish pick list --event Pg
  $ rockfish export vmtomo --dir forward     # inst.dat, picks.dat, shots.dat
  $ rockfish model new start.vm --depths 5,10 --velocities 1.5,3.0,5.0
  $ rockfish raytrace start.vm out.ray       # runs slim_rays
  $ rockfish invert start.vm out.ray next.vm # runs vm_tomo
  $ rockfish rayfan info out.ray             # residual misfit summary

TOOLCHAIN:

  The raytrace, invert, and smooth commands shell out to the slim_rays,
  vm_tomo, and vm_smooth_model executables, which must be on PATH.

DATA STORAGE:

  Picks live in a SQLite database, picks.sqlite in the data directory by
  default. Override per-invocation with --db or persistently in
  ~/.config/rockfish/config.json.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if flagDB != "" {
			cfg.DBPath = flagDB
		}
		level := cfg.LogLevel
		if cmd.Flags().Changed("log-level") || level == "" {
			level = flagLevel
		}
		format := ""
		if flagJSON {
			format = "json"
		}
		slog.SetDefault(logging.New(level, format))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "path to the pick database")
	rootCmd.PersistentFlags().StringVar(&flagLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "log-json", false, "log as JSON instead of colored text")
}

// openDB opens the configured pick database. Callers own the returned
// handle and must close it.
func openDB() (*pickdb.DB, error) {
	return cfg.OpenDB()
}
