package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	types "github.com/bhanumaheshbs/ab-agent-backend/internal/domain"
	"github.com/bhanumaheshbs/ab-agent-backend/internal/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func testVariations() []types.Variation {
	return []types.Variation{
		{Name: "A", Trials: 10, Successes: 3},
		{Name: "B", Trials: 12, Successes: 5},
	}
}

func newTestClient(t *testing.T, baseURL string) Client {
	t.Helper()
	c, err := New(testLogger(t), Config{
		BaseURL:     baseURL,
		Timeout:     2 * time.Second,
		MaxAttempts: 3,
		BackoffBase: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestDecideSuccess(t *testing.T) {
	var gotBody decisionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/decision" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{"decision": "B"})
	}))
	defer srv.Close()

	got, err := newTestClient(t, srv.URL).Decide(context.Background(), testVariations())
	if err != nil {
		t.Fatalf("Decide returned error: %v", err)
	}
	if got != "B" {
		t.Fatalf("expected B, got %q", got)
	}
	if len(gotBody.Variations) != 2 || gotBody.Variations[0].Name != "A" || gotBody.Variations[0].Trials != 10 {
		t.Fatalf("unexpected request payload: %+v", gotBody)
	}
}

func TestDecideRateLimitedNoRetry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).Decide(context.Background(), testVariations())
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected a single attempt on 429, got %d", n)
	}
}

func TestDecideServerErrorRetriesUpToBudget(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).Decide(context.Background(), testVariations())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Fatalf("expected 3 attempts on persistent 5xx, got %d", n)
	}
}

func TestDecideRecoversAfterTransientServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"decision": "A"})
	}))
	defer srv.Close()

	got, err := newTestClient(t, srv.URL).Decide(context.Background(), testVariations())
	if err != nil {
		t.Fatalf("Decide returned error: %v", err)
	}
	if got != "A" {
		t.Fatalf("expected A, got %q", got)
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Fatalf("expected 3 attempts, got %d", n)
	}
}

func TestDecideClientErrorNoRetry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).Decide(context.Background(), testVariations())
	if err == nil {
		t.Fatalf("expected error on 400")
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected a single attempt on 4xx, got %d", n)
	}
}

func TestDecideUnconfigured(t *testing.T) {
	c, err := New(testLogger(t), Config{})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if c.Configured() {
		t.Fatalf("expected unconfigured client")
	}
	if _, err := c.Decide(context.Background(), testVariations()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestDecideEmptyDecisionRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"decision": "  "})
	}))
	defer srv.Close()

	if _, err := newTestClient(t, srv.URL).Decide(context.Background(), testVariations()); err == nil {
		t.Fatalf("expected error on blank decision")
	}
}
