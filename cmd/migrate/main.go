// ABOUTME: Migration utility copying a CRM dataset from one backend into another
// ABOUTME: Remaps contact and deal ids so links survive the copy; supports dry runs and SQLite backups

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/harperreed/crmsync/config"
	"github.com/harperreed/crmsync/mockstore"
	"github.com/harperreed/crmsync/seed"
	"github.com/harperreed/crmsync/service"
)

func main() {
	from := flag.String("from", "seed", "Source: seed, remote, sqlite, or charm")
	to := flag.String("to", config.BackendSQLite, "Target: remote, sqlite, or charm")
	dbPath := flag.String("db", "", "SQLite database path for the target (defaults to the configured path)")
	dryRun := flag.Bool("dry-run", false, "Show what would happen without making changes")
	backup := flag.Bool("backup", true, "Back up an existing SQLite target before migration")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	if *from == *to && *from != "seed" {
		logger.Fatal("source and target must differ", zap.String("backend", *from))
	}

	src, closeSource, err := openSource(cfg, *from, logger)
	if err != nil {
		logger.Fatal("failed to open source", zap.Error(err))
	}
	if closeSource != nil {
		defer func() { _ = closeSource() }()
	}

	targetCfg := *cfg
	if *dbPath != "" {
		targetCfg.DBPath = *dbPath
	}
	if *to == config.BackendSQLite && *backup && !*dryRun {
		if err := backupFile(targetCfg.DBPath, logger); err != nil {
			logger.Fatal("backup failed", zap.Error(err))
		}
	}

	var dst *service.Services
	if !*dryRun {
		store, closer, err := service.OpenBackend(&targetCfg, *to)
		if err != nil {
			logger.Fatal("failed to open target", zap.Error(err))
		}
		if closer != nil {
			defer func() { _ = closer() }()
		}
		dst = service.FromBackend(store, logger)
	}

	stats, err := Migrate(context.Background(), src, dst, logger)
	if err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}

	verb := "Migrated"
	if *dryRun {
		verb = "Would migrate"
	}
	fmt.Printf("%s %d contacts, %d deals, %d tasks, %d activities\n",
		verb, stats.Contacts, stats.Deals, stats.Tasks, stats.Activities)
}

// openSource returns the facades to read from and an optional closer.
func openSource(cfg *config.Config, name string, logger *zap.Logger) (*service.Services, func() error, error) {
	if name == "seed" {
		ds, err := seed.Load(time.Now())
		if err != nil {
			return nil, nil, err
		}
		return service.NewMock(ds, mockstore.Options{Logger: logger}, logger), nil, nil
	}
	store, closer, err := service.OpenBackend(cfg, name)
	if err != nil {
		return nil, nil, err
	}
	return service.FromBackend(store, logger), closer, nil
}

func backupFile(path string, logger *zap.Logger) error {
	input, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read database: %w", err)
	}

	backupPath := fmt.Sprintf("%s.backup.%s", path, time.Now().Format("20060102-150405"))
	if err := os.WriteFile(backupPath, input, 0600); err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}
	logger.Info("backup created", zap.String("path", backupPath))
	return nil
}
