// ABOUTME: Entry point for the redpdv CLI
// ABOUTME: Routes commands to the offline-first CRM state layer
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/redpdv/redpdv/cli"
	"github.com/redpdv/redpdv/config"
	"github.com/redpdv/redpdv/remote"
	"github.com/redpdv/redpdv/state"
	"github.com/redpdv/redpdv/store"
)

const version = "0.1.0"

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	dataDir := flag.String("data-dir", "", "Local store directory (default: XDG data dir)")
	offline := flag.Bool("offline", false, "Skip backend connectivity; queue every write")

	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("redpdv version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}

	dir, err := cfg.ResolveDataDir()
	if err != nil {
		log.Fatalf("Failed to prepare data dir: %v", err)
	}

	s, err := store.Open(dir)
	if err != nil {
		log.Fatalf("Failed to open local store: %v", err)
	}
	defer func() { _ = s.Close() }()

	var backend remote.Backend
	if cfg.BackendURL == "" || *offline {
		backend = remote.NewFake()
	} else {
		backend = remote.NewClient(cfg.BackendURL, cfg.BackendKey)
	}

	app := state.New(s, backend, cfg.SettleDelay)
	if *offline || cfg.BackendURL == "" {
		app.Queue.SetOnline(false)
	} else {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		online := backend.Ping(ctx) == nil
		app.Queue.SetOnline(online)
		if cfg.AutoSync {
			// Operations left over from a previous offline session would
			// otherwise sit in the queue until a manual sync.
			if online && app.Queue.Pending() > 0 {
				if err := app.Queue.Sync(ctx); err != nil {
					log.Printf("Startup sync failed: %v", err)
				}
			}
			go app.Queue.Watch(ctx, cfg.PingInterval)
		}
	}

	command := args[0]
	commandArgs := args[1:]

	var cmdErr error
	switch command {
	// Distributor commands
	case "add-distributor":
		cmdErr = cli.AddDistributorCommand(app, commandArgs)
	case "list-distributors":
		cmdErr = cli.ListDistributorsCommand(app, commandArgs)
	case "update-distributor":
		cmdErr = cli.UpdateDistributorCommand(app, commandArgs)
	case "delete-distributor":
		cmdErr = cli.DeleteDistributorCommand(app, commandArgs)

	// Candidate commands
	case "add-candidate":
		cmdErr = cli.AddCandidateCommand(app, commandArgs)
	case "list-candidates":
		cmdErr = cli.ListCandidatesCommand(app, commandArgs)
	case "move-candidate":
		cmdErr = cli.MoveCandidateCommand(app, commandArgs)
	case "delete-candidate":
		cmdErr = cli.DeleteCandidateCommand(app, commandArgs)

	// Visit commands
	case "add-visit":
		cmdErr = cli.AddVisitCommand(app, commandArgs)
	case "list-visits":
		cmdErr = cli.ListVisitsCommand(app, commandArgs)
	case "update-visit":
		cmdErr = cli.UpdateVisitCommand(app, commandArgs)

	// Sale commands
	case "add-sale":
		cmdErr = cli.AddSaleCommand(app, commandArgs)
	case "list-sales":
		cmdErr = cli.ListSalesCommand(app, commandArgs)

	// Sync commands
	case "sync":
		cmdErr = cli.SyncCommand(app, commandArgs)
	case "status":
		cmdErr = cli.StatusCommand(app, commandArgs)
	case "notifications":
		cmdErr = cli.NotificationsCommand(app, commandArgs)

	// Dashboard commands
	case "stats":
		cmdErr = cli.StatsCommand(app, commandArgs)
	case "call-center":
		cmdErr = cli.CallCenterCommand(app, commandArgs)
	case "export":
		cmdErr = cli.ExportCommand(app, commandArgs)

	// User commands
	case "add-user":
		cmdErr = cli.AddUserCommand(app, commandArgs)
	case "list-users":
		cmdErr = cli.ListUsersCommand(app, commandArgs)
	case "use-user":
		cmdErr = cli.UseUserCommand(app, commandArgs)
	case "logout":
		cmdErr = cli.LogoutCommand(app, commandArgs)
	case "preferences":
		cmdErr = cli.PreferencesCommand(app, commandArgs)

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if cmdErr != nil {
		log.Fatalf("Error: %v", cmdErr)
	}
}

func printUsage() {
	fmt.Printf(`redpdv v%s - Offline-first wholesale CRM

USAGE:
  redpdv [global flags] <command> [flags]

GLOBAL FLAGS:
  -version        Show version and exit
  -data-dir       Local store directory (default: XDG data dir)
  -offline        Skip backend connectivity; queue every write

DISTRIBUTORS:
  add-distributor      -name NAME [-code CODE] [-channel TYPE] ...
  list-distributors    [-status STATUS] [-query TEXT]
  update-distributor   -id ID [-name NAME] [-code CODE] ...
  delete-distributor   -id ID

CANDIDATES:
  add-candidate        -name NAME [-stage STAGE] [-channel-code CODE] ...
  list-candidates      [-stage STAGE]
  move-candidate       -id ID -stage STAGE [-position N]
  delete-candidate     -id ID

VISITS AND SALES:
  add-visit            -date YYYY-MM-DD (-distributor ID | -candidate ID) ...
  list-visits          [-distributor ID]
  update-visit         -id ID [-date YYYY-MM-DD] [-result RESULT] ...
  add-sale             -distributor ID [-date YYYY-MM-DD] [-brand BRAND] [-operations N]
  list-sales           [-distributor ID]

SYNC:
  sync                 Force a replay of the pending queue
  status               [-verbose] Queue health and pending operations
  notifications        Recent notification log

DASHBOARD:
  stats                Collection totals and pipeline breakdown
  call-center          [-limit N] Distributors ranked by priority
  export               -collection distributors|sales [-output FILE]

USERS:
  add-user             -name NAME [-email EMAIL] [-role ROLE]
  list-users
  use-user             -id ID
  logout
  preferences          [-theme THEME] [-language LANG] [-province NAME]
`, version)
}
