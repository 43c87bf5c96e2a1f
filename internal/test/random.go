package test

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/polkiloo/deliverydesk/internal/domain/model"
)

const asciiLetters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var (
	rngMu sync.Mutex
	rng   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// RandomASCIIString returns a pseudo-random ASCII string within the provided bounds.
func RandomASCIIString(minLen, maxLen int) string {
	if minLen <= 0 {
		minLen = 1
	}
	if maxLen < minLen {
		maxLen = minLen
	}
	length := minLen
	if maxLen > minLen {
		length += randomIntn(maxLen - minLen + 1)
	}
	buf := make([]byte, length)
	for i := range buf {
		buf[i] = asciiLetters[randomIntn(len(asciiLetters))]
	}
	return string(buf)
}

// RandomDelivery builds an active delivery for partnerID with random customer data.
func RandomDelivery(partnerID string, status model.DeliveryStatus) model.DeliveryRecord {
	return model.DeliveryRecord{
		OrderID:   fmt.Sprintf("ORD-%s", RandomASCIIString(8, 8)),
		PartnerID: partnerID,
		Status:    status,
		Customer: model.Customer{
			Name:    RandomASCIIString(4, 12),
			Phone:   fmt.Sprintf("+33%09d", randomIntn(1_000_000_000)),
			Address: RandomASCIIString(10, 30),
		},
		Items:         []model.Item{{Name: RandomASCIIString(3, 10), Quantity: 1 + randomIntn(3), UnitPrice: 9.99}},
		PaymentMethod: "card",
		TotalAmount:   float64(10+randomIntn(500)) + 0.5,
		Currency:      "EUR",
		AssignedAt:    time.Now().UTC(),
	}
}

func randomIntn(n int) int {
	rngMu.Lock()
	defer rngMu.Unlock()
	return rng.Intn(n)
}
