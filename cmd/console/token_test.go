package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/polkiloo/deliverydesk/internal/pkg/auth"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestIssueToken(t *testing.T) {
	cases := []struct {
		name    string
		args    []string
		env     map[string]string
		secret  string
		wantErr bool
	}{
		{"secret from env", []string{"-partner", "p1"}, map[string]string{"JWT_SECRET": "env-secret"}, "env-secret", false},
		{"secret flag wins", []string{"-partner", "p1", "-secret", "flag-secret"}, map[string]string{"JWT_SECRET": "env-secret"}, "flag-secret", false},
		{"missing partner", []string{"-secret", "s"}, nil, "", true},
		{"missing secret", []string{"-partner", "p1"}, nil, "", true},
		{"bad ttl", []string{"-partner", "p1", "-secret", "s", "-ttl", "soon"}, nil, "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			err := issueToken(tc.args, lookupFrom(tc.env), &out)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got token %q", out.String())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			partner, err := auth.NewHMACStrategy(tc.secret, auth.Options{}).ParseToken(strings.TrimSpace(out.String()))
			if err != nil || partner != "p1" {
				t.Fatalf("expected token for p1, got %q %v", partner, err)
			}
		})
	}
}
