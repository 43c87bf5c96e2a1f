package auth

import (
	"testing"
	"time"

	"github.com/polkiloo/deliverydesk/internal/config"
	"golang.org/x/crypto/bcrypt"
)

func TestNewOTPHasher(t *testing.T) {
	if newOTPHasher().cost != bcrypt.DefaultCost {
		t.Fatal("unexpected otp hasher cost")
	}
}

func TestNewTokenStrategy(t *testing.T) {
	strategy := newTokenStrategy(strategyParams{Config: &config.Config{JWTSecret: "top-secret"}})
	hmacStrategy, ok := strategy.(*HMACStrategy)
	if !ok {
		t.Fatalf("expected *HMACStrategy, got %T", strategy)
	}
	if string(hmacStrategy.secret) != "top-secret" {
		t.Fatalf("unexpected secret: %q", string(hmacStrategy.secret))
	}
	if hmacStrategy.ttl != 12*time.Hour {
		t.Fatalf("unexpected ttl: %s", hmacStrategy.ttl)
	}
}

func TestNewServiceToken(t *testing.T) {
	if got := newServiceToken(&config.ServiceConfig{ServiceToken: "svc"}); got != ServiceToken("svc") {
		t.Fatalf("unexpected service token %q", got)
	}
}
