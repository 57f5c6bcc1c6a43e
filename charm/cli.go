// ABOUTME: CLI commands for Charm KV sync of the crmsync record store
// ABOUTME: status, now, wipe, and auto subcommands; auth is handled by charm's SSH keys

package charm

import (
	"flag"
	"fmt"
	"io"

	"github.com/charmbracelet/charm/client"
)

// SyncCommand dispatches "crmsync sync <subcommand>".
func SyncCommand(args []string, out io.Writer) error {
	if len(args) == 0 {
		return SyncStatusCommand(nil, out)
	}
	switch args[0] {
	case "status":
		return SyncStatusCommand(args[1:], out)
	case "now":
		return SyncNowCommand(args[1:], out)
	case "wipe":
		return SyncWipeCommand(args[1:], out)
	case "auto":
		return SetAutoSyncCommand(args[1:], out)
	default:
		return fmt.Errorf("unknown sync command: %s", args[0])
	}
}

// SyncStatusCommand shows current sync configuration and status.
func SyncStatusCommand(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("sync status", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Fprintln(out, "Charm Sync Status")
	fmt.Fprintln(out, "─────────────────")
	fmt.Fprintf(out, "Server:    %s\n", cfg.Host)
	fmt.Fprintf(out, "Auto-sync: %v\n", cfg.AutoSync)

	cc, err := client.NewClientWithDefaults()
	if err != nil {
		fmt.Fprintln(out, "\nStatus: Not connected")
		return nil //nolint:nilerr // not being connected is a state, not a failure
	}
	if id, err := cc.ID(); err != nil {
		fmt.Fprintln(out, "\nStatus: Connected (ID unavailable)")
	} else {
		fmt.Fprintln(out, "\nStatus: Connected to Charm Cloud")
		fmt.Fprintf(out, "ID:        %s\n", id)
	}
	return nil
}

// SyncNowCommand performs an immediate sync.
func SyncNowCommand(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("sync now", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, err := openConfigured()
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Sync(); err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	fmt.Fprintln(out, "✓ Synced")
	return nil
}

// SyncWipeCommand resets the KV store. WARNING: this deletes all CRM records.
func SyncWipeCommand(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("sync wipe", flag.ContinueOnError)
	confirm := fs.Bool("confirm", false, "Confirm data wipe")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !*confirm {
		fmt.Fprintln(out, "WARNING: This will delete ALL contacts, deals, tasks, and activities!")
		fmt.Fprintln(out, "\nTo confirm, run:\n  crmsync sync wipe --confirm")
		return nil
	}

	c, err := openConfigured()
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Reset(); err != nil {
		return fmt.Errorf("failed to reset KV store: %w", err)
	}
	fmt.Fprintln(out, "✓ All data wiped")
	return nil
}

// SetAutoSyncCommand enables or disables auto-sync.
func SetAutoSyncCommand(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("sync auto", flag.ContinueOnError)
	enable := fs.Bool("enable", false, "Enable auto-sync")
	disable := fs.Bool("disable", false, "Disable auto-sync")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *enable == *disable {
		return fmt.Errorf("usage: crmsync sync auto --enable|--disable")
	}

	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.SetAutoSync(*enable); err != nil {
		return fmt.Errorf("failed to save auto-sync: %w", err)
	}
	if *enable {
		fmt.Fprintln(out, "✓ Auto-sync enabled")
	} else {
		fmt.Fprintln(out, "✓ Auto-sync disabled")
	}
	return nil
}

func openConfigured() (*Client, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c, err := NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize client: %w", err)
	}
	return c, nil
}
