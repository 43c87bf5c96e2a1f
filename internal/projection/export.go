package projection

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	domainErrors "github.com/polkiloo/deliverydesk/internal/domain/errors"
)

// CSVHeader is the fixed column order of history exports.
var CSVHeader = []string{
	"Order ID",
	"Customer",
	"Address",
	"Status",
	"Completed Date",
	"Expected Delivery",
	"Amount",
	"Payment Method",
	"Notes",
}

const csvTimeLayout = "2006-01-02 15:04"

// ExportCSV writes entries as CSV with every field quoted.
// An empty input writes nothing and returns ErrEmptyExport.
func ExportCSV(w io.Writer, entries []HistoryEntry) error {
	if len(entries) == 0 {
		return domainErrors.ErrEmptyExport
	}

	bw := bufio.NewWriter(w)
	if err := writeQuotedRow(bw, CSVHeader); err != nil {
		return err
	}
	for _, entry := range entries {
		r := entry.Record
		row := []string{
			r.OrderID,
			r.Customer.Name,
			r.Customer.Address,
			string(entry.Label),
			formatTime(r.CompletedAt),
			formatTime(r.EstimatedDelivery),
			FormatAmount(r.TotalAmount),
			r.PaymentMethod,
			r.Notes,
		}
		if err := writeQuotedRow(bw, row); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ExportFilename names an export produced at now.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("delivery-history-%s.csv", now.Format("2006-01-02"))
}

// FormatAmount renders money with two decimals as shown in exports.
func FormatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(csvTimeLayout)
}

func writeQuotedRow(w *bufio.Writer, fields []string) error {
	for i, field := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(`"` + strings.ReplaceAll(field, `"`, `""`) + `"`); err != nil {
			return err
		}
	}
	_, err := w.WriteString("\r\n")
	return err
}
