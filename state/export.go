// ABOUTME: CSV export of the local distributor and sales collections
// ABOUTME: Column order is stable so downstream spreadsheets keep working
package state

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// ExportDistributorsCSV writes the distributor collection as CSV.
func (a *App) ExportDistributorsCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := []string{
		"id", "name", "code", "category", "channel_type", "status",
		"brands", "city", "province", "postal_code", "phone", "email",
		"tax_id", "completion", "priority_score", "priority_level",
		"sales_ytd", "created_at",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write distributor header: %w", err)
	}

	for _, d := range a.Distributors.List() {
		row := []string{
			d.ID, d.Name, d.Code, d.Category, d.ChannelType, d.Status,
			strings.Join(d.Brands, "|"),
			d.City, d.Province, d.PostalCode, d.Phone, d.Email, d.TaxID,
			strconv.FormatFloat(d.Completion, 'f', 2, 64),
			strconv.Itoa(d.PriorityScore), d.PriorityLevel,
			strconv.Itoa(d.SalesYTD),
			d.CreatedAt.Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write distributor %s: %w", d.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportSalesCSV writes the sales collection as CSV.
func (a *App) ExportSalesCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "distributor_id", "date", "brand", "family", "operations", "notes"}); err != nil {
		return fmt.Errorf("failed to write sales header: %w", err)
	}

	for _, s := range a.Sales.List() {
		row := []string{
			s.ID, s.DistributorID,
			s.Date.Format("2006-01-02"),
			s.Brand, s.Family,
			strconv.Itoa(s.Operations),
			s.Notes,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write sale %s: %w", s.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
