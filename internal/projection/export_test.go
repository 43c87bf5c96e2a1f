package projection

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	domainErrors "github.com/polkiloo/deliverydesk/internal/domain/errors"
	"github.com/polkiloo/deliverydesk/internal/domain/model"
)

func TestExportCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	err := ExportCSV(&buf, nil)
	if !errors.Is(err, domainErrors.ErrEmptyExport) {
		t.Fatalf("expected ErrEmptyExport, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected nothing written, got %q", buf.String())
	}
}

func TestExportCSVRoundTrip(t *testing.T) {
	completed := time.Date(2026, 6, 9, 14, 5, 0, 0, time.UTC)
	eta := time.Date(2026, 6, 9, 12, 0, 0, 0, time.UTC)
	entries := []HistoryEntry{
		{
			Label: LabelDelivered,
			Record: model.DeliveryRecord{
				OrderID:           "ORD-1",
				Customer:          model.Customer{Name: `Jean "JJ" Dupont`, Address: "1 Main St, Apt 4"},
				Status:            model.StatusDelivered,
				CompletedAt:       &completed,
				EstimatedDelivery: &eta,
				TotalAmount:       1234.5,
				PaymentMethod:     "card",
				Notes:             "left with\nconcierge",
			},
		},
		{
			Label: LabelFailed,
			Record: model.DeliveryRecord{
				OrderID:       "ORD-2",
				Customer:      model.Customer{Name: "Ann", Address: "2 Side Rd"},
				Status:        model.StatusCancelled,
				TotalAmount:   10,
				PaymentMethod: "cod",
			},
		},
	}

	var buf bytes.Buffer
	if err := ExportCSV(&buf, entries); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("standard reader rejected export: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	for i, col := range CSVHeader {
		if rows[0][i] != col {
			t.Fatalf("header column %d: expected %q, got %q", i, col, rows[0][i])
		}
	}

	want := [][]string{
		{"ORD-1", `Jean "JJ" Dupont`, "1 Main St, Apt 4", "Delivered", "2026-06-09 14:05", "2026-06-09 12:00", "1234.50", "card", "left with\nconcierge"},
		{"ORD-2", "Ann", "2 Side Rd", "Failed", "", "", "10.00", "cod", ""},
	}
	for r, row := range want {
		for c, value := range row {
			if rows[r+1][c] != value {
				t.Fatalf("row %d column %d: expected %q, got %q", r+1, c, value, rows[r+1][c])
			}
		}
	}
}

func TestExportCSVQuotesEveryField(t *testing.T) {
	var buf bytes.Buffer
	entries := []HistoryEntry{{Label: LabelDelivered, Record: model.DeliveryRecord{OrderID: "A", TotalAmount: 1}}}
	if err := ExportCSV(&buf, entries); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\r\n"), "\r\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 CRLF-terminated lines, got %q", buf.String())
	}
	if lines[1] != `"A","","","Delivered","","","1.00","",""` {
		t.Fatalf("unexpected row encoding: %s", lines[1])
	}
}

func TestExportFilename(t *testing.T) {
	got := ExportFilename(time.Date(2026, 1, 2, 23, 0, 0, 0, time.UTC))
	if got != "delivery-history-2026-01-02.csv" {
		t.Fatalf("unexpected filename %q", got)
	}
}
