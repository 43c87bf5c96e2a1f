package middleware

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	pkgAuth "github.com/polkiloo/deliverydesk/internal/pkg/auth"
	testhelpers "github.com/polkiloo/deliverydesk/internal/test"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestPartnerAuth(t *testing.T) {
	cases := []struct {
		name   string
		parser TokenParser
		header string
		cookie string
		want   int
	}{
		{"missing token", testhelpers.TokenParserStub{PartnerID: "p1"}, "", "", http.StatusUnauthorized},
		{"invalid token", testhelpers.TokenParserStub{Err: pkgAuth.ErrInvalidToken}, "Bearer token", "", http.StatusUnauthorized},
		{"parser failure", testhelpers.TokenParserStub{Err: context.DeadlineExceeded}, "Bearer token", "", http.StatusInternalServerError},
		{"bearer", testhelpers.TokenParserStub{PartnerID: "p1"}, "Bearer token", "", http.StatusOK},
		{"cookie", testhelpers.TokenParserStub{PartnerID: "p1"}, "", "token", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var stored string
			router := gin.New()
			router.Use(PartnerAuth(tc.parser))
			router.GET("/", func(c *gin.Context) {
				stored = c.GetString(PartnerIDContextKey)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: authCookieName, Value: tc.cookie})
			}
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)

			if resp.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, resp.Code)
			}
			if tc.want == http.StatusOK && stored != "p1" {
				t.Fatalf("expected partner p1 in context, got %q", stored)
			}
		})
	}
}

func TestServiceAuth(t *testing.T) {
	router := gin.New()
	router.Use(ServiceAuth(pkgAuth.ServiceToken("s3cret")))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for header, want := range map[string]int{
		"":              http.StatusUnauthorized,
		"Bearer wrong":  http.StatusUnauthorized,
		"Bearer s3cret": http.StatusOK,
		"bearer s3cret": http.StatusOK,
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != want {
			t.Fatalf("header %q: expected %d, got %d", header, want, resp.Code)
		}
	}

	open := gin.New()
	open.Use(ServiceAuth(""))
	open.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	resp := httptest.NewRecorder()
	open.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected empty service token to disable the check, got %d", resp.Code)
	}
}

func TestPartnerScope(t *testing.T) {
	router := gin.New()
	router.GET("/partners/:partnerID/items", PartnerScope(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(PartnerIDContextKey))
	})
	router.GET("/orders/:orderID", PartnerScope(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(PartnerIDContextKey))
	})

	cases := []struct {
		name    string
		path    string
		partner string
		want    int
	}{
		{"missing header", "/orders/A", "", http.StatusBadRequest},
		{"header only", "/orders/A", "p1", http.StatusOK},
		{"matching path", "/partners/p1/items", "p1", http.StatusOK},
		{"mismatched path", "/partners/p2/items", "p1", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.partner != "" {
				req.Header.Set(PartnerHeader, tc.partner)
			}
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)
			if resp.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, resp.Code)
			}
			if tc.want == http.StatusOK && resp.Body.String() != tc.partner {
				t.Fatalf("expected partner %q in context, got %q", tc.partner, resp.Body.String())
			}
		})
	}
}

func TestExtractToken(t *testing.T) {
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request, _ = http.NewRequest(http.MethodGet, "/", nil)

	if token := extractToken(c); token != "" {
		t.Fatalf("expected empty token, got %q", token)
	}
	c.Request.Header.Set("Authorization", "Bearer abc")
	if token := extractToken(c); token != "abc" {
		t.Fatalf("expected token from header, got %q", token)
	}
	c.Request.Header.Del("Authorization")
	c.Request.AddCookie(&http.Cookie{Name: authCookieName, Value: "cookie"})
	if token := extractToken(c); token != "cookie" {
		t.Fatalf("expected token from cookie, got %q", token)
	}
}

func TestDecompressRequest(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, _ = gz.Write([]byte("payload"))
	_ = gz.Close()

	router := gin.New()
	router.Use(DecompressRequest())
	var body string
	router.POST("/", func(c *gin.Context) {
		data, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		body = string(data)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(buf.Bytes()))
	req.Header.Set("Content-Encoding", "gzip")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if body != "payload" {
		t.Fatalf("expected decompressed payload, got %q", body)
	}

	req = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("plain")))
	resp = httptest.NewRecorder()
	body = ""
	router.ServeHTTP(resp, req)
	if body != "plain" {
		t.Fatalf("expected plain body, got %q", body)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("not gzip"))
	req.Header.Set("Content-Encoding", "gzip")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for corrupt gzip, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(make([]byte, maxRequestBody+1)))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected oversized body to be cut off, got %d", resp.Code)
	}
}

func TestRequestLogger(t *testing.T) {
	var out bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&out, nil))

	router := gin.New()
	router.Use(RequestLogger(logger))
	router.GET("/", func(c *gin.Context) {
		c.Set(PartnerIDContextKey, "p1")
		c.String(http.StatusOK, RequestID(c))
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := resp.Header().Get(RequestIDHeader)
	if generated == "" || resp.Body.String() != generated {
		t.Fatalf("expected generated request id, header=%q body=%q", generated, resp.Body.String())
	}

	var entry map[string]any
	if err := json.Unmarshal(out.Bytes(), &entry); err != nil {
		t.Fatalf("expected one JSON log line: %v", err)
	}
	if entry["msg"] != "http request" || entry["request_id"] != generated || entry["partner"] != "p1" {
		t.Fatalf("unexpected log entry: %v", entry)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "upstream-id")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Header().Get(RequestIDHeader) != "upstream-id" {
		t.Fatal("expected inbound request id to be propagated")
	}
}
