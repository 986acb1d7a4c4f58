// Command devtoken mints a bearer token for local testing of the API.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"eventrsvp/config"
	"eventrsvp/internal/adapters/auth"
)

func main() {
	userID := flag.String("user", "", "user id to put in the token subject (required)")
	email := flag.String("email", "", "email claim, used for reservation emails")
	expiry := flag.Duration("expiry", 0, "token lifetime (defaults to JWT_EXPIRY)")
	flag.Parse()

	if *userID == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	ttl := cfg.JWTExpiry
	if *expiry > 0 {
		ttl = *expiry
	}

	token, err := auth.NewJWTIssuer(cfg.JWTSecret).Issue(*userID, *email, ttl)
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}
	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires %s\n", time.Now().Add(ttl).Format(time.RFC3339))
}
