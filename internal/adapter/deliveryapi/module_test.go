package deliveryapi

import (
	"testing"
	"time"

	"github.com/polkiloo/deliverydesk/internal/config"
)

func TestNewClientUsesConfig(t *testing.T) {
	cfg := &config.Config{
		DeliveryServiceAddress: "http://deliveries.local",
		DeliveryServiceToken:   "svc",
		RequestTimeout:         3 * time.Second,
	}
	client, err := newClient(clientParams{Config: cfg, Logger: testLogger()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.token != "svc" || client.httpClient.Timeout != 3*time.Second {
		t.Fatalf("config not applied: token=%q timeout=%v", client.token, client.httpClient.Timeout)
	}
	if client.baseURL.Host != "deliveries.local" {
		t.Fatalf("unexpected base url %v", client.baseURL)
	}
}
