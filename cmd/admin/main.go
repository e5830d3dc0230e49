// Command admin bootstraps administrator accounts directly against the
// database.
//
//	admin create -email a@b.vn -name "Nguyễn Văn A" -phone 0912345678
//	admin promote -email a@b.vn
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/term"

	"github.com/hongminglow/elearn-be/internal/auth"
	"github.com/hongminglow/elearn-be/internal/config"
	"github.com/hongminglow/elearn-be/internal/logging"
	"github.com/hongminglow/elearn-be/internal/models"
	"github.com/hongminglow/elearn-be/internal/models/dto"
	"github.com/hongminglow/elearn-be/internal/service"
	"github.com/hongminglow/elearn-be/internal/storage"
	"github.com/hongminglow/elearn-be/internal/storage/postgres"
)

// readPassword is swapped out in tests.
var readPassword = func() (string, error) {
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	return string(pw), err
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadForCLI()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	store, err := postgres.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	defer store.Close()

	if err := run(ctx, os.Args[1:], os.Stdout, store, cfg.BcryptCost); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer, users storage.UserStore, bcryptCost int) error {
	if len(args) == 0 {
		return errors.New("usage: admin <create|promote> [flags]")
	}

	switch args[0] {
	case "create":
		return create(ctx, args[1:], out, users, bcryptCost)
	case "promote":
		return promote(ctx, args[1:], out, users)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func create(ctx context.Context, args []string, out io.Writer, users storage.UserStore, bcryptCost int) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(out)
	email := fs.String("email", "", "admin email")
	name := fs.String("name", "", "full name")
	phone := fs.String("phone", "", "phone number")
	school := fs.String("school", "", "school (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	fmt.Fprint(out, "Password: ")
	password, err := readPassword()
	fmt.Fprintln(out)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	// The CLI never issues tokens.
	accounts := service.NewAccounts(users, auth.NewTokenManager("unused", "cli", 0), auth.NewPasswordHasher(bcryptCost), logging.Discard())
	user, err := accounts.RegisterAdmin(ctx, dto.RegisterRequest{
		Email:       *email,
		Password:    password,
		FullName:    *name,
		PhoneNumber: *phone,
		School:      *school,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "created admin %s (id=%d)\n", user.Email, user.ID)
	return nil
}

func promote(ctx context.Context, args []string, out io.Writer, users storage.UserStore) error {
	fs := flag.NewFlagSet("promote", flag.ContinueOnError)
	fs.SetOutput(out)
	email := fs.String("email", "", "email of the user to promote")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*email) == "" {
		return errors.New("-email is required")
	}

	user, err := users.FindUserByEmail(ctx, strings.TrimSpace(*email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("no user with email %s", *email)
		}
		return err
	}
	if err := users.UpdateRole(ctx, user.ID, models.RoleAdmin); err != nil {
		return fmt.Errorf("grant admin role: %w", err)
	}

	fmt.Fprintf(out, "promoted %s (id=%d) to admin\n", user.Email, user.ID)
	return nil
}
