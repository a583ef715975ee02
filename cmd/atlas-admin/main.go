// Package main is the entry point for the Atlas Tasks admin CLI.
// This tool bootstraps the first administrator account and inspects
// existing accounts directly against the database, bypassing the API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/prn-tf/atlas-tasks/internal/config"
	"github.com/prn-tf/atlas-tasks/internal/domain"
	"github.com/prn-tf/atlas-tasks/internal/repository"
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
		fmt.Printf("Atlas Tasks Admin CLI\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "create-admin":
		if err := runCreateAdmin(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "list-users":
		if err := runListUsers(os.Args[2:]); err != nil {
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

// openStore loads configuration, connects, and applies migrations.
func openStore(ctx context.Context, configPath string) (*store.Store, *config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	st, err := store.Open(ctx, cfg.Database, zerolog.Nop())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return st, cfg, nil
}

// runCreateAdmin inserts an administrator account. Account creation over
// the API requires an existing administrator, so the very first one has
// to come from here.
func runCreateAdmin(args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ExitOnError)
	configPath := fs.String("config", "", "path to configuration file")
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email address (login identifier)")
	password := fs.String("password", "", "password (min 8 characters)")
	fs.Parse(args)

	if *name == "" || *email == "" || *password == "" {
		return fmt.Errorf("--name, --email and --password are required")
	}
	if len(*password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	st, cfg, err := openStore(ctx, *configPath)
	if err != nil {
		return err
	}
	defer st.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), cfg.Auth.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := domain.NewUser(*name, *email, string(hash))
	user.Role = domain.RoleAdmin

	if err := st.Repos.Users.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to create administrator: %w", err)
	}

	fmt.Printf("Administrator created\n")
	fmt.Printf("  ID:    %s\n", user.ID)
	fmt.Printf("  Name:  %s\n", user.Name)
	fmt.Printf("  Email: %s\n", user.Email)
	return nil
}

// runListUsers prints all accounts with their roles.
func runListUsers(args []string) error {
	fs := flag.NewFlagSet("list-users", flag.ExitOnError)
	configPath := fs.String("config", "", "path to configuration file")
	limit := fs.Int("limit", 100, "maximum number of accounts to list")
	fs.Parse(args)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	st, _, err := openStore(ctx, *configPath)
	if err != nil {
		return err
	}
	defer st.Close()

	result, err := st.Repos.Users.List(ctx, repository.ListOptions{Limit: *limit})
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	fmt.Printf("%-36s  %-6s  %-30s  %s\n", "ID", "ROLE", "EMAIL", "NAME")
	for _, u := range result.Items {
		fmt.Printf("%-36s  %-6s  %-30s  %s\n", u.ID, u.Role, u.Email, u.Name)
	}
	fmt.Printf("\n%d of %d account(s)\n", len(result.Items), result.Total)
	return nil
}

func printUsage() {
	fmt.Println(`Atlas Tasks Admin CLI

Usage:
  atlas-admin <command> [arguments]

Commands:
  create-admin   Create an administrator account (bootstrap)
  list-users     List accounts with their roles
  version        Print version information
  help           Show this help message

Examples:
  atlas-admin create-admin --name "Root" --email root@example.com --password secret123
  atlas-admin list-users --limit 50

Configuration is read from the ATLAS_* environment variables or the file
given with --config, the same way the server reads it.`)
}
