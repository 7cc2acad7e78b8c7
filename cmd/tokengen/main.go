// Package main provides a CLI tool for generating operator tokens for the
// fraudgate admin API. These tokens use the dev signing key by default and
// will NOT work against a production deployment.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"fraudgate/internal/jwtoken"
)

const (
	// Dev signing key - matches config.go when FRAUDGATE_JWT_SIGNING_KEY is not set
	devSigningKey = "dev-secret-key-change-in-production"

	defaultTokenTTL = 24 * time.Hour
)

type tokenOutput struct {
	Token     string            `json:"token"`
	Subject   string            `json:"subject"`
	Role      string            `json:"role"`
	ExpiresIn string            `json:"expires_in"`
	Usage     map[string]string `json:"usage"`
}

func main() {
	subject := flag.String("subject", "", "Operator identifier (required)")
	role := flag.String("role", "operator", "Operator role claim")
	ttl := flag.Duration("ttl", defaultTokenTTL, "Token time-to-live")
	key := flag.String("key", devSigningKey, "JWT signing key (must match the server's)")
	jsonOutput := flag.Bool("json", false, "Output as JSON")
	flag.Usage = printUsage
	flag.Parse()

	if *subject == "" {
		fmt.Fprintln(os.Stderr, "Error: -subject is required")
		printUsage()
		os.Exit(1)
	}

	svc := jwtoken.NewService(*key, *ttl)
	token, err := svc.GenerateOperatorToken(*subject, *role)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
		os.Exit(1)
	}

	if *jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(tokenOutput{
			Token:     token,
			Subject:   *subject,
			Role:      *role,
			ExpiresIn: ttl.String(),
			Usage: map[string]string{
				"header": "Authorization: Bearer <token>",
			},
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Println("Operator Token (JWT)")
	fmt.Println("====================")
	fmt.Printf("Subject:    %s\n", *subject)
	fmt.Printf("Role:       %s\n", *role)
	fmt.Printf("Expires In: %s\n", *ttl)
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  curl -H \"Authorization: Bearer <token>\" http://localhost:8080/ruleset")
}

func printUsage() {
	fmt.Println(`tokengen - Generate operator tokens for the fraudgate admin API

WARNING: The default signing key only works against a dev server.
         Pass -key to match a deployed FRAUDGATE_JWT_SIGNING_KEY.

Usage:
  tokengen -subject <operator> [flags]

Examples:
  # Generate a 24h operator token
  tokengen -subject alice@example.com

  # Custom role and TTL
  tokengen -subject alice@example.com -role admin -ttl 1h

  # Output as JSON
  tokengen -subject alice@example.com -json`)
	flag.PrintDefaults()
}
