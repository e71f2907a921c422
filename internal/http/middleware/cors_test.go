package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newCORSEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS())
	r.GET("/api/experiments/abc/decision", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/projects", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func doOrigin(r *gin.Engine, method, path, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Origin", origin)
	if method == http.MethodOptions {
		req.Header.Set("Access-Control-Request-Method", "GET")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAgentPathsAllowAnyOrigin(t *testing.T) {
	r := newCORSEngine()

	w := doOrigin(r, http.MethodGet, "/api/experiments/abc/decision", "https://customer-site.example")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from arbitrary origin, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard allow-origin, got %q", got)
	}
}

func TestAgentPreflightAnsweredWithoutRoute(t *testing.T) {
	r := newCORSEngine()

	w := doOrigin(r, http.MethodOptions, "/api/experiments/abc/feedback", "https://customer-site.example")
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected preflight 204, got %d", w.Code)
	}
}

func TestDashboardPathsRejectUnknownOrigin(t *testing.T) {
	r := newCORSEngine()

	w := doOrigin(r, http.MethodGet, "/api/projects", "https://evil.example")
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for unknown dashboard origin, got %d", w.Code)
	}

	w = doOrigin(r, http.MethodGet, "/api/projects", "http://localhost:5173")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for dashboard origin, got %d", w.Code)
	}
}

func TestIsAgentPath(t *testing.T) {
	cases := map[string]bool{
		"/agent.js":                     true,
		"/api/experiments/abc/decision": true,
		"/api/experiments/abc/feedback": true,
		"/api/experiments/abc":          false,
		"/api/experiments/abc/stats":    false,
		"/api/projects":                 false,
		"/health":                       false,
	}
	for path, want := range cases {
		if got := isAgentPath(path); got != want {
			t.Fatalf("isAgentPath(%q) = %v, want %v", path, got, want)
		}
	}
}
