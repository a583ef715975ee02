// Package main is the entry point for the Atlas Tasks database migration
// tool. It applies embedded schema migrations for either backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/atlas-tasks/internal/config"
	"github.com/prn-tf/atlas-tasks/internal/store"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "version":
		fmt.Printf("Atlas Tasks Migration Tool\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "up":
		if err := runUp(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "status":
		if err := runStatus(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func open(args []string, name string) (*store.Store, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	configPath := fs.String("config", "", "path to configuration file")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	st, err := store.Open(ctx, cfg.Database, zerolog.Nop())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return st, nil
}

// runUp applies all pending migrations.
func runUp(args []string) error {
	st, err := open(args, "up")
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	version, err := st.Version(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Migrations applied. Schema version: %d\n", version)
	return nil
}

// runStatus prints the current schema version.
func runStatus(args []string) error {
	st, err := open(args, "status")
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	version, err := st.Version(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Schema version: %d\n", version)
	return nil
}

func printUsage() {
	fmt.Println(`Atlas Tasks Migration Tool

Usage:
  atlas-migrate <command> [arguments]

Commands:
  up          Apply all pending migrations
  status      Show the current schema version
  version     Print version information
  help        Show this help message

Examples:
  atlas-migrate up --config ./configs/config.yaml
  atlas-migrate status

Configuration is read from the ATLAS_* environment variables or the file
given with --config, the same way the server reads it.`)
}
