package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/yourorg/phonebook/internal/domain"
	"github.com/yourorg/phonebook/internal/infrastructure/logger"
	"github.com/yourorg/phonebook/internal/repository"
	"github.com/yourorg/phonebook/pkg/config"
	"github.com/yourorg/phonebook/pkg/database"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "migrate":
		runMigrate()
	case "createsuperuser":
		runCreateSuperuser(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Usage: phonebook <command>

Commands:
  migrate           Create the database schema if it does not exist
  createsuperuser   Create a superuser account
  help              Show this help`)
}

func connect(ctx context.Context) (*database.ConnectionPool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.NewLogger("warn")
	return database.NewConnectionPool(ctx, cfg.Database, log)
}

func runMigrate() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := connect(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Migrate(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("schema up to date")
}

func runCreateSuperuser(args []string) {
	fs := flag.NewFlagSet("createsuperuser", flag.ExitOnError)
	username := fs.String("username", "", "username (required)")
	email := fs.String("email", "", "email (required)")
	password := fs.String("password", "", "password (required, min 8 characters)")
	firstName := fs.String("first-name", "", "first name")
	lastName := fs.String("last-name", "", "last name")
	_ = fs.Parse(args)

	if *username == "" || *email == "" || len(*password) < 8 {
		fmt.Fprintln(os.Stderr, "username, email and a password of at least 8 characters are required")
		fs.Usage()
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := connect(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}

	users := repository.NewPostgresUserRepository(pool.GetDB(), logger.NewLogger("warn"))
	user := &domain.User{
		Username:     *username,
		Email:        *email,
		PasswordHash: string(hash),
		FirstName:    *firstName,
		LastName:     *lastName,
		IsSuperuser:  true,
	}
	if err := users.Create(user); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create superuser: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("superuser %q created (id %d)\n", user.Username, user.ID)
}
