// Command usergen emits a ready-to-paste users.json record with a hashed
// password. When no password is supplied it generates a random one and
// prints it to stderr.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/sethvargo/go-password/password"
	"golang.org/x/crypto/bcrypt"

	"streamwave/models"
)

func main() {
	var (
		id       = flag.Int("id", 1, "user id")
		username = flag.String("username", "", "username (required)")
		pass     = flag.String("password", "", "password (generated when empty)")
		fullName = flag.String("full-name", "", "display name")
		email    = flag.String("email", "", "email address")
		userType = flag.String("type", models.TypeRegisteredUser, "user variant: RegisteredUser, Artist or Admin")
		premium  = flag.Bool("premium", false, "premium account")
	)
	flag.Parse()

	if *username == "" {
		fmt.Fprintln(os.Stderr, "usage: usergen -username <name> [-password <pw>] [-type Admin]")
		os.Exit(1)
	}

	plaintext := *pass
	if plaintext == "" {
		generated, err := password.Generate(16, 4, 2, false, false)
		if err != nil {
			fmt.Fprintf(os.Stderr, "generate password: %v\n", err)
			os.Exit(1)
		}
		plaintext = generated
		fmt.Fprintf(os.Stderr, "generated password: %s\n", plaintext)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash password: %v\n", err)
		os.Exit(1)
	}

	base := models.RegisteredUser{
		User: models.User{
			ID:       *id,
			Username: *username,
			FullName: *fullName,
			Email:    *email,
		},
		HashedPassword: string(hash),
		IsPremium:      *premium,
	}

	var user models.Principal
	switch *userType {
	case models.TypeRegisteredUser:
		user = &base
	case models.TypeArtist:
		user = &models.Artist{RegisteredUser: base}
	case models.TypeAdmin:
		user = &models.Admin{RegisteredUser: base}
	default:
		fmt.Fprintf(os.Stderr, "unknown user type %q\n", *userType)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "    ")
	if err := enc.Encode(user.Flatten()); err != nil {
		fmt.Fprintf(os.Stderr, "encode record: %v\n", err)
		os.Exit(1)
	}
}
