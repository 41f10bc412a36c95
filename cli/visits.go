// ABOUTME: Visit and sale CLI commands
// ABOUTME: Record field visits with reminders and sales operations
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/redpdv/redpdv/state"
)

// AddVisitCommand records a visit to a distributor or candidate.
func AddVisitCommand(app *state.App, args []string) error {
	fs := flag.NewFlagSet("add-visit", flag.ExitOnError)
	distributorID := fs.String("distributor", "", "Distributor ID")
	candidateID := fs.String("candidate", "", "Candidate ID")
	date := fs.String("date", "", "Visit date YYYY-MM-DD (required)")
	objective := fs.String("objective", "", "Visit objective")
	summary := fs.String("summary", "", "Visit summary")
	result := fs.String("result", "", "Result (pendiente, completada, reprogramar, cancelada)")
	minutesBefore := fs.Int("remind-minutes", 0, "Reminder lead time in minutes (default: one day)")
	_ = fs.Parse(args)

	if *date == "" {
		return fmt.Errorf("--date is required")
	}
	if *distributorID == "" && *candidateID == "" {
		return fmt.Errorf("--distributor or --candidate is required")
	}

	raw := map[string]interface{}{
		"distributor_id": *distributorID,
		"candidate_id":   *candidateID,
		"date":           *date,
		"objective":      *objective,
		"summary":        *summary,
		"result":         *result,
	}
	if *minutesBefore > 0 {
		raw["reminder"] = map[string]interface{}{"minutes_before": *minutesBefore}
	}

	v := app.Visits.Add(context.Background(), raw)

	fmt.Printf("✓ Visit recorded: %s (ID: %s)\n", v.Date.Format("2006-01-02"), v.ID)
	if v.Reminder.Enabled {
		fmt.Printf("  Reminder: %s\n", v.Reminder.ScheduledAt.Format(time.RFC3339))
	}
	return nil
}

// ListVisitsCommand lists visits, optionally filtered by linked entity.
func ListVisitsCommand(app *state.App, args []string) error {
	fs := flag.NewFlagSet("list-visits", flag.ExitOnError)
	distributorID := fs.String("distributor", "", "Filter by distributor ID")
	_ = fs.Parse(args)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tLINKED\tRESULT\tOBJECTIVE")
	for _, v := range app.Visits.List() {
		if *distributorID != "" && v.DistributorID != *distributorID {
			continue
		}
		linked := v.DistributorID
		if linked == "" {
			linked = v.CandidateID
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			v.ID, v.Date.Format("2006-01-02"), linked, v.Result, v.Objective)
	}
	return w.Flush()
}

// UpdateVisitCommand patches a visit; moving the date reschedules its reminder.
func UpdateVisitCommand(app *state.App, args []string) error {
	fs := flag.NewFlagSet("update-visit", flag.ExitOnError)
	id := fs.String("id", "", "Visit ID (required)")
	date := fs.String("date", "", "New date YYYY-MM-DD")
	result := fs.String("result", "", "New result")
	summary := fs.String("summary", "", "New summary")
	_ = fs.Parse(args)

	if *id == "" {
		return fmt.Errorf("--id is required")
	}
	patch := map[string]interface{}{}
	setIfGiven(patch, "date", *date)
	setIfGiven(patch, "result", *result)
	setIfGiven(patch, "summary", *summary)
	if len(patch) == 0 {
		return fmt.Errorf("nothing to update")
	}

	v, ok := app.Visits.Update(context.Background(), *id, patch)
	if !ok {
		return fmt.Errorf("visit not found: %s", *id)
	}

	fmt.Printf("✓ Visit updated: %s\n", v.Date.Format("2006-01-02"))
	if v.Reminder.Enabled {
		fmt.Printf("  Reminder: %s\n", v.Reminder.ScheduledAt.Format(time.RFC3339))
	}
	return nil
}

// AddSaleCommand records a sales operation for a distributor.
func AddSaleCommand(app *state.App, args []string) error {
	fs := flag.NewFlagSet("add-sale", flag.ExitOnError)
	distributorID := fs.String("distributor", "", "Distributor ID (required)")
	date := fs.String("date", "", "Sale date YYYY-MM-DD (default: today)")
	brand := fs.String("brand", "", "Brand (silbo, lowi)")
	family := fs.String("family", "", "Product family")
	operations := fs.Int("operations", 1, "Number of operations")
	notes := fs.String("notes", "", "Notes")
	_ = fs.Parse(args)

	if *distributorID == "" {
		return fmt.Errorf("--distributor is required")
	}
	if *date == "" {
		*date = time.Now().UTC().Format("2006-01-02")
	}

	s := app.Sales.Add(context.Background(), map[string]interface{}{
		"distributor_id": *distributorID,
		"date":           *date,
		"brand":          *brand,
		"family":         *family,
		"operations":     *operations,
		"notes":          *notes,
	})

	fmt.Printf("✓ Sale recorded: %d operation(s) on %s (ID: %s)\n", s.Operations, s.Date.Format("2006-01-02"), s.ID)
	return nil
}

// ListSalesCommand lists sales, optionally filtered by distributor.
func ListSalesCommand(app *state.App, args []string) error {
	fs := flag.NewFlagSet("list-sales", flag.ExitOnError)
	distributorID := fs.String("distributor", "", "Filter by distributor ID")
	_ = fs.Parse(args)

	sales := app.Sales.List()
	if *distributorID != "" {
		sales = app.Sales.ByDistributor(*distributorID)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tDISTRIBUTOR\tBRAND\tOPS")
	total := 0
	for _, s := range sales {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
			s.ID, s.Date.Format("2006-01-02"), s.DistributorID, s.Brand, s.Operations)
		total += s.Operations
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d operation(s) total\n", total)
	return nil
}
