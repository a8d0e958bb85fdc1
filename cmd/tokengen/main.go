// Package main provides a CLI tool for minting portal session tokens, for
// local development and for sibling services that need a session without
// going through /api/login.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"mayaportal/pkg/gate"
)

type tokenOutput struct {
	Token     string            `json:"token"`
	Cookie    string            `json:"cookie"`
	ExpiresAt string            `json:"expires_at"`
	Usage     map[string]string `json:"usage"`
}

func main() {
	secret := flag.String("secret", os.Getenv("SHARED_JWT_SECRET"), "Signing secret. Defaults to SHARED_JWT_SECRET.")
	ttl := flag.Duration("ttl", 7*24*time.Hour, "Token time-to-live")
	asJSON := flag.Bool("json", false, "Output as JSON")
	flag.Parse()

	if *secret == "" {
		fmt.Fprintln(os.Stderr, "error: no signing secret; pass -secret or set SHARED_JWT_SECRET")
		os.Exit(1)
	}

	now := time.Now()
	codec := gate.NewCodec(*secret, *ttl)
	token, err := codec.Issue(now)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: issue token: %v\n", err)
		os.Exit(1)
	}

	cookie := fmt.Sprintf("%s=%s", gate.CookieName, token)
	expiresAt := now.Add(*ttl).UTC().Format(time.RFC3339)

	if *asJSON {
		out := tokenOutput{
			Token:     token,
			Cookie:    cookie,
			ExpiresAt: expiresAt,
			Usage: map[string]string{
				"curl": fmt.Sprintf(`curl --cookie "%s" http://localhost:8000/api/verify`, cookie),
			},
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
		return
	}

	fmt.Printf("Token:      %s\n", token)
	fmt.Printf("Expires at: %s\n", expiresAt)
	fmt.Printf("Cookie:     %s\n", cookie)
	fmt.Println()
	fmt.Printf("Usage:\n  curl --cookie \"%s\" http://localhost:8000/api/verify\n", cookie)
}
