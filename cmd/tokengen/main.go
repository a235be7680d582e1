// Package main mints and inspects session tokens for local development.
// Tokens signed with the development secret are rejected by any deployment
// that sets SESSION_SECRET.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"jamsession/internal/auth/models"
	authService "jamsession/internal/auth/service"
	jwttoken "jamsession/internal/jwt_token"
	"jamsession/internal/platform/config"
	"jamsession/pkg/domain"
)

type tokenOutput struct {
	Token     string            `json:"token"`
	ExpiresAt string            `json:"expires_at"`
	Claims    jwttoken.Claims   `json:"claims"`
	Usage     map[string]string `json:"usage"`
}

func main() {
	sessionCmd := flag.NewFlagSet("session", flag.ExitOnError)
	sessionUser := sessionCmd.String("user", "installer@example.com", "Session subject (identifier)")
	sessionRole := sessionCmd.String("role", "", "Role override (admin|installer). Derived from -user if empty.")
	sessionProjects := sessionCmd.String("projects", "", "Comma-separated project names")
	sessionCSRF := sessionCmd.String("csrf", "dev-csrf-token", "CSRF token bound to the session")
	sessionTTL := sessionCmd.Duration("ttl", models.SessionTTL, "Token time-to-live")
	sessionSecret := sessionCmd.String("secret", "", "Signing secret (defaults to SESSION_SECRET, then the dev secret)")
	sessionJSON := sessionCmd.Bool("json", false, "Output as JSON")

	verifyCmd := flag.NewFlagSet("verify", flag.ExitOnError)
	verifySecret := verifyCmd.String("secret", "", "Signing secret (defaults to SESSION_SECRET, then the dev secret)")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "session":
		sessionCmd.Parse(os.Args[2:]) //nolint:errcheck // ExitOnError
		generateSession(*sessionUser, *sessionRole, *sessionProjects, *sessionCSRF, *sessionTTL, resolveSecret(*sessionSecret), *sessionJSON)
	case "verify":
		verifyCmd.Parse(os.Args[2:]) //nolint:errcheck // ExitOnError
		if verifyCmd.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "verify takes exactly one token argument")
			os.Exit(1)
		}
		verifyToken(verifyCmd.Arg(0), resolveSecret(*verifySecret))
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`tokengen - Mint and inspect jamsession session tokens

WARNING: Tokens signed with the development secret only work against a
         server running without SESSION_SECRET.

Usage:
  tokengen <command> [flags]

Commands:
  session   Mint a session token (the dj_session cookie value)
  verify    Verify a token and print its claims

Examples:
  # Installer session with two projects
  tokengen session -user jane@example.com -projects "Acme Corp,Globex"

  # Admin session, short-lived
  tokengen session -user ops@data-jam.com -ttl 10m

  # Check a cookie value copied from the browser
  tokengen verify eyJhbGciOi...

Use "tokengen <command> -h" for more information about a command.`)
}

func resolveSecret(flagValue string) []byte {
	if flagValue != "" {
		return []byte(flagValue)
	}
	if env := os.Getenv("SESSION_SECRET"); env != "" {
		return []byte(env)
	}
	return []byte(config.DevSessionSecret)
}

func buildClaims(user, role, projects, csrf string, ttl time.Duration, now time.Time) jwttoken.Claims {
	derived := authService.DeriveRole(user)
	if role != "" {
		derived = domain.Role(role)
	}
	resources := []domain.Resource{}
	for _, name := range strings.Split(projects, ",") {
		if name = strings.TrimSpace(name); name != "" {
			resources = append(resources, domain.StringResource(name))
		}
	}
	return jwttoken.Claims{
		Subject:   user,
		Role:      derived,
		Projects:  resources,
		CSRF:      csrf,
		IssuedAt:  now.UnixMilli(),
		ExpiresAt: now.Add(ttl).UnixMilli(),
	}
}

func generateSession(user, role, projects, csrf string, ttl time.Duration, secret []byte, jsonOutput bool) {
	claims := buildClaims(user, role, projects, csrf, ttl, time.Now())
	token, err := jwttoken.Mint(claims, secret)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error minting token: %v\n", err)
		os.Exit(1)
	}
	expiresAt := models.FormatExpiresAt(claims.Expiry())

	if jsonOutput {
		printJSON(tokenOutput{
			Token:     token,
			ExpiresAt: expiresAt,
			Claims:    claims,
			Usage: map[string]string{
				"cookie": "dj_session=<token>",
				"csrf":   csrf,
			},
		})
		return
	}

	fmt.Println("Session Token")
	fmt.Println("=============")
	fmt.Printf("User:       %s\n", claims.Subject)
	fmt.Printf("Role:       %s\n", claims.Role)
	fmt.Printf("Projects:   %v\n", domain.ResourceNames(claims.Projects))
	fmt.Printf("CSRF:       %s\n", claims.CSRF)
	fmt.Printf("Expires At: %s\n", expiresAt)
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  curl -b \"dj_session=<token>\" http://localhost:8080/session/validate")
}

func verifyToken(token string, secret []byte) {
	claims, err := jwttoken.Verify(token, secret, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid token (%s): %v\n", jwttoken.ReasonOf(err), err)
		os.Exit(1)
	}
	printJSON(claims)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}
