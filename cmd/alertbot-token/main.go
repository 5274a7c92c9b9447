// Command alertbot-token mints a bearer token for the monitoring API.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"crypto-alert-bot/internal/auth"
)

func main() {
	secret := flag.String("secret", os.Getenv("JWT_SECRET"), "JWT signing secret (defaults to JWT_SECRET)")
	subject := flag.String("subject", "operator", "token subject")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if *secret == "" {
		fmt.Fprintln(os.Stderr, "error: a signing secret is required (use -secret or JWT_SECRET)")
		os.Exit(1)
	}

	manager := auth.NewJWTManager(*secret, *ttl)
	token, err := manager.GenerateToken(*subject)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(token)
}
