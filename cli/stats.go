// ABOUTME: Dashboard and export CLI commands
// ABOUTME: Summary stats, the call-center priority list, and CSV exports
package cli

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/redpdv/redpdv/models"
	"github.com/redpdv/redpdv/state"
)

// StatsCommand prints collection totals and the pipeline breakdown.
func StatsCommand(app *state.App, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	_ = fs.Parse(args)

	st := app.Stats()
	fmt.Printf("Distributors: %d (%d active)\n", st.Distributors, st.ActiveDistributors)
	fmt.Printf("Sales operations YTD: %d\n", st.SalesOperationsYTD)
	fmt.Printf("Visits: %d\n", st.Visits)
	fmt.Println("Pipeline:")
	for _, stage := range models.Stages {
		fmt.Printf("  %-12s %d\n", stage, st.Pipeline[stage])
	}
	return nil
}

// CallCenterCommand prints distributors ranked by priority with the
// driver breakdown.
func CallCenterCommand(app *state.App, args []string) error {
	fs := flag.NewFlagSet("call-center", flag.ExitOnError)
	limit := fs.Int("limit", 20, "Maximum rows")
	_ = fs.Parse(args)

	entries := app.CallCenter()
	if len(entries) > *limit {
		entries = entries[:*limit]
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tLEVEL\tNAME\tTRAFFIC\tSALES 90D\tLAST VISIT")
	for _, e := range entries {
		lastVisit := "never"
		if e.Drivers.LastVisitDays >= 0 {
			lastVisit = fmt.Sprintf("%dd ago", e.Drivers.LastVisitDays)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%d\t%s\n",
			e.Score, e.Level, e.Distributor.Name,
			e.Drivers.Traffic, e.Drivers.SalesLast90Days, lastVisit)
	}
	return w.Flush()
}

// ExportCommand writes a collection as CSV to a file or stdout.
func ExportCommand(app *state.App, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	collection := fs.String("collection", "distributors", "Collection to export (distributors, sales)")
	output := fs.String("output", "", "Output file (default: stdout)")
	_ = fs.Parse(args)

	out := os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", *output, err)
		}
		defer f.Close()
		out = f
	}

	switch *collection {
	case "distributors":
		if err := app.ExportDistributorsCSV(out); err != nil {
			return err
		}
	case "sales":
		if err := app.ExportSalesCSV(out); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown collection: %s", *collection)
	}

	if *output != "" {
		fmt.Printf("✓ Exported %s to %s\n", *collection, *output)
	}
	return nil
}
