package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected scrape status %d", rec.Code)
	}
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(body)
}

func TestObserversExposeSeries(t *testing.T) {
	m := New()
	m.ObserveStatusUpdate("delivered", "ok")
	m.ObserveStatusUpdate("delivered", "ok")
	m.ObserveStatusUpdate("", "invalid")
	m.ObserveExport(0)
	m.ObserveExport(3)
	m.ObserveEscalation(nil)
	m.ObserveEscalation(errors.New("boom"))

	body := scrape(t, m)
	for _, want := range []string{
		`deliverydesk_status_updates_total{outcome="ok",status="delivered"} 2`,
		`deliverydesk_status_updates_total{outcome="invalid",status="unknown"} 1`,
		`deliverydesk_history_exports_total{result="empty"} 1`,
		`deliverydesk_history_exports_total{result="ok"} 1`,
		`deliverydesk_escalations_total{outcome="ok"} 1`,
		`deliverydesk_escalations_total{outcome="error"} 1`,
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in scrape output", want)
		}
	}
}

func TestMiddlewareRecordsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/items/:id", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/items/42", nil))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	body := scrape(t, m)
	if !strings.Contains(body, `deliverydesk_http_requests_total{handler="/api/items/:id",method="GET",status="418"} 1`) {
		t.Fatalf("route series missing:\n%s", body)
	}
	if !strings.Contains(body, `deliverydesk_http_requests_total{handler="unmatched",method="GET",status="404"} 1`) {
		t.Fatalf("unmatched series missing:\n%s", body)
	}
	if !strings.Contains(body, `deliverydesk_http_request_duration_seconds_count{handler="/api/items/:id",method="GET"} 1`) {
		t.Fatal("duration histogram missing")
	}
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.ObserveExport(1)
	if strings.Contains(scrape(t, b), "deliverydesk_history_exports_total{") {
		t.Fatal("metrics leaked between registries")
	}
}
