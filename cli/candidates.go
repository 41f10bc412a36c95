// ABOUTME: Candidate pipeline CLI commands
// ABOUTME: Manage pipeline candidates and move them between stages
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/redpdv/redpdv/models"
	"github.com/redpdv/redpdv/state"
)

// AddCandidateCommand adds a new pipeline candidate.
func AddCandidateCommand(app *state.App, args []string) error {
	fs := flag.NewFlagSet("add-candidate", flag.ExitOnError)
	name := fs.String("name", "", "Candidate name (required)")
	stage := fs.String("stage", "", "Pipeline stage (default: new)")
	code := fs.String("channel-code", "", "Channel business code")
	contactName := fs.String("contact", "", "Contact person")
	phone := fs.String("phone", "", "Contact phone")
	email := fs.String("email", "", "Contact email")
	notes := fs.String("notes", "", "Notes")
	_ = fs.Parse(args)

	if *name == "" {
		return fmt.Errorf("--name is required")
	}

	c := app.Candidates.Add(context.Background(), map[string]interface{}{
		"name":         *name,
		"stage":        *stage,
		"channel_code": *code,
		"notes":        *notes,
		"contact": map[string]interface{}{
			"name":  *contactName,
			"phone": *phone,
			"email": *email,
		},
	})

	fmt.Printf("✓ Candidate created: %s (ID: %s)\n", c.Name, c.ID)
	fmt.Printf("  Stage: %s (position %d)\n", c.Stage, c.Position)
	return nil
}

// ListCandidatesCommand lists candidates grouped by stage.
func ListCandidatesCommand(app *state.App, args []string) error {
	fs := flag.NewFlagSet("list-candidates", flag.ExitOnError)
	stage := fs.String("stage", "", "Only this stage")
	_ = fs.Parse(args)

	stages := models.Stages
	if *stage != "" {
		stages = []string{*stage}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, s := range stages {
		cands := app.Candidates.ByStage(s)
		fmt.Fprintf(w, "%s (%d)\n", s, len(cands))
		for _, c := range cands {
			fmt.Fprintf(w, "  %d\t%s\t%s\t%s\n", c.Position, c.ID, c.Name, c.Category)
		}
	}
	return w.Flush()
}

// MoveCandidateCommand moves a candidate to a stage and position.
func MoveCandidateCommand(app *state.App, args []string) error {
	fs := flag.NewFlagSet("move-candidate", flag.ExitOnError)
	id := fs.String("id", "", "Candidate ID (required)")
	stage := fs.String("stage", "", "Target stage (required)")
	position := fs.Int("position", 1<<30, "Target position (default: end of stage)")
	_ = fs.Parse(args)

	if *id == "" || *stage == "" {
		return fmt.Errorf("--id and --stage are required")
	}
	if !app.Candidates.Move(context.Background(), *id, *stage, *position) {
		return fmt.Errorf("move failed: unknown candidate or stage")
	}

	c, _ := app.Candidates.Get(*id)
	fmt.Printf("✓ Candidate moved: %s to %s position %d\n", c.Name, c.Stage, c.Position)
	return nil
}

// DeleteCandidateCommand removes a candidate and its linked visits.
func DeleteCandidateCommand(app *state.App, args []string) error {
	fs := flag.NewFlagSet("delete-candidate", flag.ExitOnError)
	id := fs.String("id", "", "Candidate ID (required)")
	_ = fs.Parse(args)

	if *id == "" {
		return fmt.Errorf("--id is required")
	}
	if !app.DeleteCandidate(context.Background(), *id) {
		return fmt.Errorf("candidate not found: %s", *id)
	}

	fmt.Printf("✓ Candidate deleted: %s\n", *id)
	return nil
}
