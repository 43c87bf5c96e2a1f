package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/polkiloo/deliverydesk/internal/pkg/auth"
)

// issueToken prints a partner bearer token signed with the console secret.
func issueToken(args []string, lookup func(string) (string, bool), out io.Writer) error {
	secret, _ := lookup("JWT_SECRET")

	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		partnerID string
		ttl       time.Duration
	)
	fs.StringVar(&partnerID, "partner", "", "Partner id the token is issued for")
	fs.StringVar(&secret, "secret", secret, "Secret shared with the console (JWT_SECRET)")
	fs.DurationVar(&ttl, "ttl", 0, "Token lifetime, 12h when zero")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	if partnerID == "" {
		return errors.New("-partner is required")
	}
	if secret == "" {
		return errors.New("a secret is required, set JWT_SECRET or -secret")
	}

	token, err := auth.NewHMACStrategy(secret, auth.Options{TTL: ttl}).IssueToken(partnerID)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}
