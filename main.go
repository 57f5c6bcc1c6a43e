// ABOUTME: Entry point for the crmsync MCP server, CLI, board, and web server
// ABOUTME: Loads config, opens the configured backend, and routes to a command
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/harperreed/crmsync/charm"
	"github.com/harperreed/crmsync/cli"
	"github.com/harperreed/crmsync/config"
	"github.com/harperreed/crmsync/records"
	"github.com/harperreed/crmsync/service"
	"github.com/harperreed/crmsync/session"
	"github.com/harperreed/crmsync/tui"
	"github.com/harperreed/crmsync/web"
)

const version = "0.2.0"

func main() {
	showVersion := flag.Bool("version", false, "Show version and exit")
	backend := flag.String("backend", "", "Backend override: remote, sqlite, charm, or mock")
	dbPath := flag.String("db-path", "", "SQLite database path (default: ~/.local/share/crmsync/crm.db)")
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("crmsync version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}
	command, commandArgs := args[0], args[1:]

	// Commands that never touch a backend.
	switch command {
	case "configure":
		if err := cli.ConfigureCommand(commandArgs, os.Stdin, os.Stdout); err != nil {
			fatal(err)
		}
		return
	case "sync":
		if err := charm.SyncCommand(commandArgs, os.Stdout); err != nil {
			fatal(err)
		}
		return
	case "help":
		printUsage()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fatal(err)
	}
	if *backend != "" {
		cfg.Backend = *backend
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if err := cfg.Validate(); err != nil {
		fatal(err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if command == "serve" {
		if err := serve(ctx, cfg, logger); err != nil {
			logger.Fatal("web server failed", zap.Error(err))
		}
		return
	}

	svc, err := service.Open(cfg, logger)
	if err != nil {
		logger.Fatal("failed to open backend", zap.Error(err))
	}
	defer func() { _ = svc.Close() }()

	ws := session.New(svc, session.Options{Logger: logger})
	defer ws.Close()

	switch command {
	case "mcp":
		if err := cli.MCPCommand(ctx, ws, version, logger); err != nil {
			logger.Fatal("MCP server failed", zap.Error(err))
		}

	case "crm":
		if err := cli.Run(ctx, ws, commandArgs, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "board":
		p := tea.NewProgram(tui.NewModel(ctx, ws), tea.WithAltScreen(), tea.WithContext(ctx))
		if _, err := p.Run(); err != nil {
			logger.Fatal("board failed", zap.Error(err))
		}

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// serve hosts the configured local store for remote clients when there is
// one; remote and mock backends get the read-only views only.
func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	opts := web.Options{Logger: logger}
	var svc *service.Services

	switch name := cfg.ResolvedBackend(); name {
	case config.BackendSQLite, config.BackendCharm:
		store, closer, err := service.OpenBackend(cfg, name)
		if err != nil {
			return err
		}
		if closer != nil {
			defer func() { _ = closer() }()
		}
		svc = service.FromBackend(store, logger)
		opts.Backend = store
		opts.Access = records.HandlerOptions{ProjectID: cfg.ProjectID, PublicKey: cfg.PublicKey}
	default:
		var err error
		if svc, err = service.Open(cfg, logger); err != nil {
			return err
		}
		defer func() { _ = svc.Close() }()
	}

	ws := session.New(svc, session.Options{Logger: logger})
	defer ws.Close()

	server, err := web.NewServer(ws, opts)
	if err != nil {
		return err
	}
	return server.Start(ctx, cfg.Listen)
}

// newLogger writes to stderr so the MCP stdio transport keeps stdout.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zc := zap.NewProductionConfig()
	if lvl == zapcore.DebugLevel {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Printf(`crmsync v%s - CRM data sync with MCP, CLI, board, and web views

USAGE:
  crmsync [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --backend <name>       remote, sqlite, charm, or mock (default: remote with credentials, else mock)
  --db-path <path>       SQLite database path (default: ~/.local/share/crmsync/crm.db)

COMMANDS:
  mcp                    Start MCP server on stdio
  crm                    CRM management commands
  board                  Interactive pipeline board
  serve                  Web dashboard, JSON API, /metrics, and hosted record service
  sync                   Charm sync: status, now, wipe, auto
  configure              Write the config file

CRM COMMANDS:
  crmsync crm add-contact     --name <name> [--email] [--phone] [--company] [--tags a,b]
  crmsync crm list-contacts   [--query <text>] [--tag <tag>] [--limit <n>]
  crmsync crm update-contact  [flags] <id>
  crmsync crm delete-contact  <id>

  crmsync crm add-deal        --title <title> [--value <n>] [--contact <id>] [--stage <stage>]
                              [--probability <0-100>] [--close YYYY-MM-DD]
  crmsync crm list-deals      [--stage <stage>]
  crmsync crm move-deal       --stage <stage> <id>
  crmsync crm delete-deal     <id>

  crmsync crm add-task        --title <title> --due YYYY-MM-DD [--priority low|medium|high] [--contact <id>]
  crmsync crm list-tasks      [--filter all|pending|completed|overdue]
  crmsync crm toggle-task     <id>
  crmsync crm delete-task     <id>

  crmsync crm log-activity    --type email|call|meeting|note --description <text> [--contact <id>] [--deal <id>]
  crmsync crm list-activities [--limit <n>]

  crmsync crm dashboard       Metrics, tasks due today, recent activity
  crmsync crm report          Pipeline value by stage and activity counts
  crmsync crm graph pipeline  [--output <file>]
  crmsync crm graph contact <id> [--output <file>]

STAGES:
  lead, qualified, proposal, negotiation, closed-won, closed-lost

EXAMPLES:
  # Start MCP server for a desktop agent
  crmsync mcp

  # Move a deal forward
  crmsync crm move-deal --stage proposal 42

  # Host a local SQLite store on :8080 for remote clients
  crmsync --backend sqlite serve

`, version)
}
