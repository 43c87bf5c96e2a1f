package auth

import "crypto/subtle"

// ServiceToken authenticates console-to-service calls with a static bearer token.
// An empty token disables the check.
type ServiceToken string

// Verify reports whether presented matches the configured token.
func (t ServiceToken) Verify(presented string) bool {
	if t == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(t), []byte(presented)) == 1
}
