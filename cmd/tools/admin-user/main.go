// cmd/tools/admin-user/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"hr-backoffice/internal/common/auth"
	"hr-backoffice/internal/common/config"
	"hr-backoffice/internal/common/database"
	"hr-backoffice/internal/models"
	"hr-backoffice/internal/store"
)

type adminStore interface {
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
	Upsert(ctx context.Context, email, passwordHash string) (*models.Admin, error)
}

func main() {
	setCmd := flag.NewFlagSet("set-password", flag.ExitOnError)
	verifyCmd := flag.NewFlagSet("verify", flag.ExitOnError)

	setEmail := setCmd.String("email", "", "Admin email")
	setPassword := setCmd.String("password", "", "New password (defaults to $ADMIN_PASSWORD)")
	verifyEmail := verifyCmd.String("email", "", "Admin email")
	verifyPassword := verifyCmd.String("password", "", "Password to check (defaults to $ADMIN_PASSWORD)")

	if len(os.Args) < 2 {
		help(os.Stdout)
		os.Exit(1)
	}

	var (
		cmd      *flag.FlagSet
		email    *string
		password *string
	)
	switch os.Args[1] {
	case "set-password":
		cmd, email, password = setCmd, setEmail, setPassword
	case "verify":
		cmd, email, password = verifyCmd, verifyEmail, verifyPassword
	default:
		help(os.Stdout)
		return
	}
	cmd.Parse(os.Args[2:])
	if *password == "" {
		*password = os.Getenv("ADMIN_PASSWORD")
	}
	if *email == "" || *password == "" {
		fmt.Println("Error: email and password are required.")
		cmd.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fatal(fmt.Errorf("load config: %w", err))
	}
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		fatal(err)
	}
	defer pg.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.Migrate(ctx, pg); err != nil {
		fatal(fmt.Errorf("migrate: %w", err))
	}
	admins := store.NewAdminStore(pg)

	switch os.Args[1] {
	case "set-password":
		if err := setAdminPassword(ctx, admins, *email, *password); err != nil {
			fatal(err)
		}
		fmt.Printf("Password set for %s\n", *email)
	case "verify":
		ok, err := verifyAdminPassword(ctx, admins, *email, *password)
		if err != nil {
			fatal(err)
		}
		if !ok {
			fmt.Println("Password does NOT match.")
			os.Exit(2)
		}
		fmt.Println("Password matches.")
	}
}

func setAdminPassword(ctx context.Context, admins adminStore, email, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = admins.Upsert(ctx, email, hash)
	return err
}

func verifyAdminPassword(ctx context.Context, admins adminStore, email, password string) (bool, error) {
	admin, err := admins.GetByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return false, fmt.Errorf("no admin account for %s", email)
	}
	if err != nil {
		return false, err
	}
	return auth.CheckPassword(admin.PasswordHash, password), nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func help(w io.Writer) {
	fmt.Fprintln(w, `Admin account tool

Usage:
  admin-user set-password -email EMAIL [-password PASSWORD]
  admin-user verify       -email EMAIL [-password PASSWORD]

The password may also be supplied through ADMIN_PASSWORD.`)
}
