package auth

import "time"

// Strategy issues and verifies partner console tokens.
type Strategy interface {
	IssueToken(partnerID string) (string, error)
	ParseToken(token string) (string, error)
	Name() string
}

// Options tunes token issuing. Now defaults to time.Now.
type Options struct {
	TTL time.Duration
	Now func() time.Time
}
