// ABOUTME: CLI commands for adding, listing, and removing travel-time picks.
// ABOUTME: Thin layer over the pick database with comma-separated geometry flags.
package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rvbelefonte/rockfish/internal/models"
	"github.com/rvbelefonte/rockfish/internal/pickdb"
)

var (
	addSource   string
	addReceiver string
	addError    float64
	addMethod   string
	addBranch   int
	addSubID    int
	addDataFile string

	listEvent    string
	listEnsemble int
	listLimit    int
)

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Manage travel-time picks",
}

var pickAddCmd = &cobra.Command{
	Use:   "add <event> <ensemble> <trace> <time>",
	Short: "Add a travel-time pick",
	Long: `Add a travel-time pick for one trace.

The event is the phase name (Pg, Pn, PmP, ...), the ensemble identifies the
instrument, and the trace identifies the shot. Time is in seconds.

Examples:
  rockfish pick add Pg 16 201 4.552 --source 10,0,0.006 --receiver 40,0,4.5
  rockfish pick add Pn 16 202 9.213 --source 60,0,0.006 --receiver 40,0,4.5 \
      --error 0.05 --method stingray --branch 2`,
	Args: cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		ensemble, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid ensemble: %s", args[1])
		}
		trace, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid trace: %s", args[2])
		}
		t, err := strconv.ParseFloat(args[3], 64)
		if err != nil {
			return fmt.Errorf("invalid time: %s", args[3])
		}
		src, err := parseTriple(addSource)
		if err != nil {
			return fmt.Errorf("invalid --source: %w", err)
		}
		rcv, err := parseTriple(addReceiver)
		if err != nil {
			return fmt.Errorf("invalid --receiver: %w", err)
		}

		p := models.NewPick(args[0], ensemble, trace, t).
			WithGeometry(src[0], src[1], src[2], rcv[0], rcv[1], rcv[2]).
			WithError(addError)
		if addMethod != "" {
			p = p.WithMethod(addMethod)
		}
		if cmd.Flags().Changed("branch") {
			p = p.WithBranch(addBranch, addSubID)
		}
		if addDataFile != "" {
			p = p.WithDataFile(addDataFile)
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.AddPick(p); err != nil {
			return fmt.Errorf("failed to add pick: %w", err)
		}

		color.Green("✓ Added %s pick", p.Event)
		fmt.Printf("  ensemble %d trace %d at %.4f s\n", p.Ensemble, p.Trace, p.Time)
		return nil
	},
}

var pickListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List travel-time picks",
	Long: `List picks from the database.

Each line shows: EVENT ENSEMBLE TRACE TIME ERROR METHOD

Examples:
  rockfish pick list
  rockfish pick list --event Pg
  rockfish pick list --ensemble 16 -n 50`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		f := pickdb.Filter{Event: listEvent}
		if cmd.Flags().Changed("ensemble") {
			f.Ensemble = &listEnsemble
		}
		picks, err := db.GetPicks(f)
		if err != nil {
			return fmt.Errorf("failed to list picks: %w", err)
		}
		if len(picks) == 0 {
			fmt.Println("No picks found.")
			return nil
		}
		if listLimit > 0 && len(picks) > listLimit {
			picks = picks[:listLimit]
		}

		faint := color.New(color.Faint)
		for _, p := range picks {
			fmt.Printf("%s %5d %5d %10.4f %7.4f %s\n",
				padRight(p.Event, 8), p.Ensemble, p.Trace, p.Time, p.Error,
				faint.Sprint(p.Method))
		}
		return nil
	},
}

var pickRemoveCmd = &cobra.Command{
	Use:     "remove <event> <ensemble> <trace>",
	Aliases: []string{"rm"},
	Short:   "Remove a travel-time pick",
	Args:    cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ensemble, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid ensemble: %s", args[1])
		}
		trace, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid trace: %s", args[2])
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.RemovePick(args[0], ensemble, trace); err != nil {
			return fmt.Errorf("failed to remove pick: %w", err)
		}
		color.Green("✓ Removed %s %d/%d", args[0], ensemble, trace)
		return nil
	},
}

// parseTriple parses "x,y,z" into three floats.
func parseTriple(s string) ([3]float64, error) {
	var out [3]float64
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return out, fmt.Errorf("want x,y,z, got %q", s)
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return out, fmt.Errorf("bad coordinate %q", p)
		}
		out[i] = v
	}
	return out, nil
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}

func init() {
	pickAddCmd.Flags().StringVar(&addSource, "source", "0,0,0", "source position x,y,z")
	pickAddCmd.Flags().StringVar(&addReceiver, "receiver", "0,0,0", "receiver position x,y,z")
	pickAddCmd.Flags().Float64Var(&addError, "error", 0, "pick uncertainty in seconds")
	pickAddCmd.Flags().StringVar(&addMethod, "method", "", "picking method")
	pickAddCmd.Flags().IntVar(&addBranch, "branch", 0, "velocity model branch for the event")
	pickAddCmd.Flags().IntVar(&addSubID, "subid", 0, "velocity model sub-branch for the event")
	pickAddCmd.Flags().StringVar(&addDataFile, "data-file", "", "data file the pick was made on")

	pickListCmd.Flags().StringVarP(&listEvent, "event", "e", "", "filter by event name")
	pickListCmd.Flags().IntVar(&listEnsemble, "ensemble", 0, "filter by ensemble")
	pickListCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "limit the number of rows")

	pickCmd.AddCommand(pickAddCmd)
	pickCmd.AddCommand(pickListCmd)
	pickCmd.AddCommand(pickRemoveCmd)
	rootCmd.AddCommand(pickCmd)
}
