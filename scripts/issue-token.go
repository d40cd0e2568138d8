// issue-token mints a development JWT with the claim layout the external
// auth service uses. With -database-url it also mirrors the user row so
// alerts and reminders have a name and email to work with.
//
//	go run scripts/issue-token.go -user-id u-123 -email ama@example.com
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/evansachie/lifeguard/internal/auth"
	"github.com/evansachie/lifeguard/internal/model"
	"github.com/evansachie/lifeguard/internal/repository"
)

type output struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func main() {
	var (
		secret      = flag.String("secret", os.Getenv("JWT_SECRET"), "HS256 signing secret")
		issuer      = flag.String("issuer", os.Getenv("JWT_ISSUER"), "Token issuer")
		audience    = flag.String("audience", os.Getenv("JWT_AUDIENCE"), "Token audience")
		databaseURL = flag.String("database-url", "", "Optional PostgreSQL connection string to mirror the user")
		userID      = flag.String("user-id", "", "User ID (defaults to a new ULID)")
		email       = flag.String("email", "dev@lifeguard.local", "User email")
		firstName   = flag.String("first-name", "Dev", "User first name")
		lastName    = flag.String("last-name", "User", "User last name")
		ttl         = flag.Duration("ttl", 24*time.Hour, "Token lifetime")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET is required")
		os.Exit(1)
	}
	if *userID == "" {
		*userID = repository.NewID()
	}

	principal := auth.Principal{
		UserID: *userID,
		Email:  *email,
		Name:   strings.TrimSpace(*firstName + " " + *lastName),
	}

	if *databaseURL != "" {
		if err := mirrorUser(*databaseURL, principal, *firstName, *lastName); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
	}

	token, err := auth.NewIssuer(*secret, *issuer, *audience).Issue(principal, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "issue token:", err)
		os.Exit(1)
	}

	out := output{
		UserID:    principal.UserID,
		Email:     principal.Email,
		Token:     token,
		ExpiresAt: time.Now().Add(*ttl).UTC(),
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.Token)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

func mirrorUser(databaseURL string, p auth.Principal, firstName, lastName string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer repo.Close()

	user := &model.User{
		ID:        p.UserID,
		Email:     p.Email,
		FirstName: firstName,
		LastName:  lastName,
	}
	if err := repo.UpsertUser(ctx, user); err != nil {
		return fmt.Errorf("mirror user: %w", err)
	}
	return nil
}
