// ABOUTME: Sync CLI commands
// ABOUTME: Force a queue replay and inspect sync health
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/redpdv/redpdv/state"
)

// SyncCommand forces a replay of the pending queue.
func SyncCommand(app *state.App, args []string) error {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	_ = fs.Parse(args)

	if err := app.Queue.ForceSync(context.Background()); err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	status := app.SyncStatus()
	fmt.Printf("✓ Sync finished: %d operation(s) still pending\n", status.Pending)
	return nil
}

// StatusCommand prints queue health and the pending operations.
func StatusCommand(app *state.App, args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	verbose := fs.Bool("verbose", false, "List every pending operation")
	_ = fs.Parse(args)

	status := app.SyncStatus()
	connectivity := "online"
	if !status.Online {
		connectivity = "offline"
	}
	fmt.Printf("Connectivity: %s\n", connectivity)
	fmt.Printf("Pending operations: %d\n", status.Pending)
	fmt.Printf("Replay errors: %d\n", status.Errors)
	if status.LastSync.IsZero() {
		fmt.Println("Last sync: never")
	} else {
		fmt.Printf("Last sync: %s\n", status.LastSync.Format("2006-01-02 15:04:05"))
	}

	if *verbose && status.Pending > 0 {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "\nID\tTYPE\tTABLE\tQUEUED AT")
		for _, op := range app.Queue.Snapshot() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", op.ID, op.Type, op.Table, op.Timestamp.Format("2006-01-02 15:04:05"))
		}
		return w.Flush()
	}
	return nil
}

// NotificationsCommand prints the recent notification log.
func NotificationsCommand(app *state.App, args []string) error {
	fs := flag.NewFlagSet("notifications", flag.ExitOnError)
	_ = fs.Parse(args)

	recent := app.Notifications.Recent()
	if len(recent) == 0 {
		fmt.Println("No notifications")
		return nil
	}
	for _, n := range recent {
		fmt.Printf("[%s] %s %s\n", n.Level, n.At.Format("15:04:05"), n.Message)
	}
	return nil
}
