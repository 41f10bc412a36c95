// ABOUTME: Distributor CLI commands
// ABOUTME: Human-friendly commands for managing points of sale
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/redpdv/redpdv/state"
)

// AddDistributorCommand adds a new distributor.
func AddDistributorCommand(app *state.App, args []string) error {
	fs := flag.NewFlagSet("add-distributor", flag.ExitOnError)
	name := fs.String("name", "", "Point of sale name (required)")
	code := fs.String("code", "", "Business code (drives category and brand policy)")
	channel := fs.String("channel", "", "Channel type (tienda, locutorio, estanco, kiosco)")
	city := fs.String("city", "", "City")
	province := fs.String("province", "", "Province")
	postal := fs.String("postal-code", "", "Postal code")
	phone := fs.String("phone", "", "Phone number")
	email := fs.String("email", "", "Email address")
	taxID := fs.String("tax-id", "", "NIF/CIF")
	fiscalName := fs.String("fiscal-name", "", "Fiscal name")
	_ = fs.Parse(args)

	if *name == "" {
		return fmt.Errorf("--name is required")
	}

	d := app.Distributors.Add(context.Background(), map[string]interface{}{
		"name":         *name,
		"code":         *code,
		"channel_type": *channel,
		"city":         *city,
		"province":     *province,
		"postal_code":  *postal,
		"phone":        *phone,
		"email":        *email,
		"tax_id":       *taxID,
		"fiscal_name":  *fiscalName,
	})

	fmt.Printf("✓ Distributor created: %s (ID: %s)\n", d.Name, d.ID)
	fmt.Printf("  Category: %s\n", d.Category)
	fmt.Printf("  Brands: %s\n", strings.Join(d.Brands, ", "))
	if !d.ChecklistComplete {
		fmt.Printf("  Checklist incomplete (%.0f%% data)\n", d.Completion*100)
	}
	return nil
}

// ListDistributorsCommand lists distributors.
func ListDistributorsCommand(app *state.App, args []string) error {
	fs := flag.NewFlagSet("list-distributors", flag.ExitOnError)
	status := fs.String("status", "", "Filter by status (active, pending, blocked)")
	query := fs.String("query", "", "Search by name")
	_ = fs.Parse(args)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tSTATUS\tBRANDS\tPRIORITY")
	count := 0
	for _, d := range app.Distributors.List() {
		if *status != "" && d.Status != *status {
			continue
		}
		if *query != "" && !strings.Contains(strings.ToLower(d.Name), strings.ToLower(*query)) {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d (%s)\n",
			d.ID, d.Name, d.Category, d.Status,
			strings.Join(d.Brands, ","), d.PriorityScore, d.PriorityLevel)
		count++
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d distributor(s)\n", count)
	return nil
}

// UpdateDistributorCommand patches an existing distributor.
func UpdateDistributorCommand(app *state.App, args []string) error {
	fs := flag.NewFlagSet("update-distributor", flag.ExitOnError)
	id := fs.String("id", "", "Distributor ID (required)")
	name := fs.String("name", "", "New name")
	code := fs.String("code", "", "New business code")
	status := fs.String("status", "", "New status")
	city := fs.String("city", "", "New city")
	phone := fs.String("phone", "", "New phone")
	email := fs.String("email", "", "New email")
	_ = fs.Parse(args)

	if *id == "" {
		return fmt.Errorf("--id is required")
	}

	patch := map[string]interface{}{}
	setIfGiven(patch, "name", *name)
	setIfGiven(patch, "code", *code)
	setIfGiven(patch, "status", *status)
	setIfGiven(patch, "city", *city)
	setIfGiven(patch, "phone", *phone)
	setIfGiven(patch, "email", *email)
	if len(patch) == 0 {
		return fmt.Errorf("nothing to update")
	}

	d, ok := app.Distributors.Update(context.Background(), *id, patch)
	if !ok {
		return fmt.Errorf("distributor not found: %s", *id)
	}

	fmt.Printf("✓ Distributor updated: %s\n", d.Name)
	return nil
}

// DeleteDistributorCommand removes a distributor and its linked records.
func DeleteDistributorCommand(app *state.App, args []string) error {
	fs := flag.NewFlagSet("delete-distributor", flag.ExitOnError)
	id := fs.String("id", "", "Distributor ID (required)")
	_ = fs.Parse(args)

	if *id == "" {
		return fmt.Errorf("--id is required")
	}
	if !app.DeleteDistributor(context.Background(), *id) {
		return fmt.Errorf("distributor not found: %s", *id)
	}

	fmt.Printf("✓ Distributor deleted: %s\n", *id)
	return nil
}

func setIfGiven(patch map[string]interface{}, key, value string) {
	if value != "" {
		patch[key] = value
	}
}
