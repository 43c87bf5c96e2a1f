package test

import (
	"errors"

	pkgAuth "github.com/polkiloo/deliverydesk/internal/pkg/auth"
)

// HasherStub provides deterministic hashing for tests.
type HasherStub struct {
	HashFn    func(string) (string, error)
	CompareFn func(string, string) error
}

// Hash returns a predictable hash for the supplied secret.
func (h HasherStub) Hash(secret string) (string, error) {
	if h.HashFn != nil {
		return h.HashFn(secret)
	}
	return "hash:" + secret, nil
}

// Compare validates secret against stored hash.
func (h HasherStub) Compare(hash string, secret string) error {
	if h.CompareFn != nil {
		return h.CompareFn(hash, secret)
	}
	if hash != "hash:"+secret {
		return errors.New("mismatch")
	}
	return nil
}

// TokenParserStub implements partner token parsing.
type TokenParserStub struct {
	PartnerID string
	Err       error
	ParseFn   func(string) (string, error)
}

// ParseToken either delegates to override or returns predefined result.
func (s TokenParserStub) ParseToken(token string) (string, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	if s.Err != nil {
		return "", s.Err
	}
	return s.PartnerID, nil
}

// StrategyStub issues tokens equal to the partner id.
type StrategyStub struct{}

// IssueToken returns the partner id as token.
func (StrategyStub) IssueToken(partnerID string) (string, error) { return partnerID, nil }

// ParseToken rejects empty tokens and returns the rest unchanged.
func (StrategyStub) ParseToken(token string) (string, error) {
	if token == "" {
		return "", pkgAuth.ErrInvalidToken
	}
	return token, nil
}

// Name returns the strategy identifier used in tests.
func (StrategyStub) Name() string { return "stub" }

var _ pkgAuth.Strategy = StrategyStub{}
