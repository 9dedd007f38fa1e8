// ABOUTME: CLI commands for exporting pick data.
// ABOUTME: VM Tomography input files plus JSON and YAML dumps.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rvbelefonte/rockfish/internal/pickdb"
)

var (
	exportDir    string
	exportEvent  string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export pick data",
}

var exportVMTomoCmd = &cobra.Command{
	Use:   "vmtomo",
	Short: "Write VM Tomography input files",
	Long: `Write the instrument, pick, and shot files the raytracer reads.

Creates inst.dat, picks.dat, and shots.dat in the output directory.

Examples:
  rockfish export vmtomo --dir forward
  rockfish export vmtomo --dir forward --event Pg`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := os.MkdirAll(exportDir, 0o755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
		files := pickdb.DefaultVMTomoFiles()
		f := pickdb.Filter{Event: exportEvent}
		if err := db.WriteVMTomoInputs(exportDir, files, f); err != nil {
			return fmt.Errorf("failed to export: %w", err)
		}

		color.Green("✓ Wrote %s, %s, %s in %s", files.Inst, files.Picks, files.Shots, exportDir)
		return nil
	},
}

var exportJSONCmd = &cobra.Command{
	Use:   "json",
	Short: "Dump all picks as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		return dumpPicks("json")
	},
}

var exportYAMLCmd = &cobra.Command{
	Use:   "yaml",
	Short: "Dump all picks as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		return dumpPicks("yaml")
	},
}

func dumpPicks(format string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	var data []byte
	if format == "yaml" {
		data, err = db.ExportYAML()
	} else {
		data, err = db.ExportJSON()
	}
	if err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}

	if exportOutput == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(exportOutput, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", exportOutput, err)
	}
	color.Green("✓ Exported picks to %s", exportOutput)
	return nil
}

func init() {
	exportVMTomoCmd.Flags().StringVar(&exportDir, "dir", ".", "output directory")
	exportVMTomoCmd.Flags().StringVarP(&exportEvent, "event", "e", "", "filter by event name")
	exportCmd.PersistentFlags().StringVarP(&exportOutput, "output", "o", "", "write to a file instead of stdout")

	exportCmd.AddCommand(exportVMTomoCmd)
	exportCmd.AddCommand(exportJSONCmd)
	exportCmd.AddCommand(exportYAMLCmd)
	rootCmd.AddCommand(exportCmd)
}
