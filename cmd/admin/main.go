// Command admin creates a verified account directly in the database, typically the first
// super_admin of a fresh deployment.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"golang.org/x/term"

	"github.com/dtroode/account-service/internal/config"
	"github.com/dtroode/account-service/internal/logger"
	"github.com/dtroode/account-service/internal/model"
	"github.com/dtroode/account-service/internal/password"
	"github.com/dtroode/account-service/internal/repository/postgres"
	"github.com/dtroode/account-service/internal/service"
)

// readPassword is swapped in tests.
var readPassword = func() ([]byte, error) {
	return term.ReadPassword(int(os.Stdin.Fd()))
}

type options struct {
	email     string
	firstName string
	lastName  string
	role      model.Role
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatalf("invalid arguments: %v", err)
	}

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	if cfg.Database.Driver != config.DriverPostgres {
		log.Fatalf("database driver %q keeps no data across processes", cfg.Database.Driver)
	}
	logger := logger.New(cfg.LogLevel)

	pass, err := promptPassword(os.Stdout)
	if err != nil {
		logger.Fatal("failed to read password", "error", err)
	}

	conn, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer conn.Close()

	credentials := service.NewCredentials(postgres.NewAccountRepository(conn), password.NewBcrypt(cfg.Security.BcryptCost), logger)
	account, err := credentials.Create(ctx, model.AccountDraft{
		Email:         opts.email,
		Password:      pass,
		FirstName:     opts.firstName,
		LastName:      opts.lastName,
		Role:          opts.role,
		EmailVerified: true,
	}, nil)
	if err != nil {
		_ = conn.Close()
		logger.Fatal("failed to create account", "error", err)
	}

	fmt.Fprintf(os.Stdout, "created %s account %s (%s)\n", account.Role, account.Email, account.ID)
}

func parseFlags(args []string, output io.Writer) (options, error) {
	fs := flag.NewFlagSet("admin", flag.ContinueOnError)
	fs.SetOutput(output)

	var opts options
	var role string
	fs.StringVar(&opts.email, "email", "", "account email (required)")
	fs.StringVar(&opts.firstName, "first-name", "Admin", "first name")
	fs.StringVar(&opts.lastName, "last-name", "User", "last name")
	fs.StringVar(&role, "role", string(model.RoleSuperAdmin), "one of user, admin, super_admin")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	opts.email = strings.ToLower(strings.TrimSpace(opts.email))
	opts.firstName = strings.TrimSpace(opts.firstName)
	opts.lastName = strings.TrimSpace(opts.lastName)
	opts.role = model.Role(role)

	switch {
	case opts.email == "":
		return options{}, errors.New("-email is required")
	case opts.firstName == "" || opts.lastName == "":
		return options{}, errors.New("names must not be empty")
	case !opts.role.Valid():
		return options{}, fmt.Errorf("unknown role %q", role)
	}
	return opts, nil
}

func promptPassword(w io.Writer) (string, error) {
	fmt.Fprint(w, "Password: ")
	first, err := readPassword()
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}

	fmt.Fprint(w, "Repeat password: ")
	second, err := readPassword()
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}

	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	if len(first) < 8 {
		return "", errors.New("password must be at least 8 characters")
	}
	return string(first), nil
}
