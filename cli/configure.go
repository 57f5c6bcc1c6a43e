// ABOUTME: Configure command writing the record service credentials to the config file
// ABOUTME: Prompts for the public key without echo when run on a terminal
package cli

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/harperreed/crmsync/config"
)

// ConfigureCommand stores backend settings: configure [--backend b] [--project id] [--url u].
// The public key is read from stdin, hidden when stdin is a terminal.
func ConfigureCommand(args []string, in *os.File, out io.Writer) error {
	fs := flag.NewFlagSet("configure", flag.ContinueOnError)
	fs.SetOutput(out)
	backend := fs.String("backend", "", "remote, sqlite, charm, or mock")
	project := fs.String("project", "", "Record service project ID")
	url := fs.String("url", "", "Record service API URL")
	dbPath := fs.String("db-path", "", "SQLite database path")
	path := fs.String("config", config.Path(), "Config file to write")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.Default()
	if err := config.LoadFile(*path, cfg); err != nil {
		return err
	}

	set := setFlags(fs)
	if set["backend"] {
		cfg.Backend = *backend
	}
	if set["project"] {
		cfg.ProjectID = *project
	}
	if set["url"] {
		cfg.APIURL = *url
	}
	if set["db-path"] {
		cfg.DBPath = *dbPath
	}

	if cfg.ResolvedBackend() == config.BackendRemote || cfg.ProjectID != "" {
		key, err := readSecret(in, out, "Public key (leave empty to keep current): ")
		if err != nil {
			return err
		}
		if key != "" {
			cfg.PublicKey = key
		}
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Save(*path); err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Configuration saved to %s (backend: %s)\n", *path, cfg.ResolvedBackend())
	return nil
}

func readSecret(in *os.File, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	if term.IsTerminal(int(in.Fd())) {
		b, err := term.ReadPassword(int(in.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("failed to read key: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read key: %w", err)
	}
	return strings.TrimSpace(line), nil
}
