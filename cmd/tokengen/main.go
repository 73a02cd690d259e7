// Command tokengen mints a signed identity token for the storefront API.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/auth"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "tokengen:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	_ = godotenv.Load()

	flags := pflag.NewFlagSet("tokengen", pflag.ContinueOnError)
	user := flags.String("user", "", "user id as a 24 character hex ObjectID (random when empty)")
	name := flags.String("name", "Admin User", "display name carried in the token")
	admin := flags.Bool("admin", false, "grant the admin flag")
	secret := flags.String("secret", "", "signing secret (defaults to STOREFRONT_JWT_SECRET or JWT_SECRET)")
	ttl := flags.Duration("ttl", 30*24*time.Hour, "token lifetime")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if *secret == "" {
		*secret = firstEnv("STOREFRONT_JWT_SECRET", "JWT_SECRET")
	}
	if *secret == "" {
		return errors.New("a signing secret is required")
	}

	id := primitive.NewObjectID()
	if *user != "" {
		parsed, err := primitive.ObjectIDFromHex(*user)
		if err != nil {
			return fmt.Errorf("invalid --user: %w", err)
		}
		id = parsed
	}

	token, err := auth.NewTokens(*secret, *ttl).Issue(auth.Identity{UserID: id, Name: *name, IsAdmin: *admin})
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
