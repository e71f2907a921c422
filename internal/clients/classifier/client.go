package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	types "github.com/bhanumaheshbs/ab-agent-backend/internal/domain"
	"github.com/bhanumaheshbs/ab-agent-backend/internal/pkg/envutil"
	"github.com/bhanumaheshbs/ab-agent-backend/internal/pkg/httpx"
	"github.com/bhanumaheshbs/ab-agent-backend/internal/pkg/logger"
)

var (
	// ErrNotConfigured means no base URL was supplied; callers go straight to
	// the local fallback without logging an upstream failure.
	ErrNotConfigured = errors.New("classifier not configured")
	// ErrRateLimited is returned on a 429 and is never retried.
	ErrRateLimited = errors.New("classifier rate limited")
	// ErrUnavailable covers 5xx responses that survived the retry budget.
	ErrUnavailable = errors.New("classifier unavailable")
)

// Client asks the external ML service which variation to show next, given the
// current counters for every arm.
type Client interface {
	// Decide returns the recommended variation name. Any error means "use the
	// local fallback"; the distinction between errors only matters for logs.
	Decide(ctx context.Context, variations []types.Variation) (string, error)
	Configured() bool
}

type Config struct {
	BaseURL     string
	Timeout     time.Duration
	MaxAttempts int
	BackoffBase time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		BaseURL:     strings.TrimSpace(os.Getenv("ML_SERVICE_URL")),
		Timeout:     time.Duration(envutil.Int("ML_TIMEOUT_SECONDS", 3)) * time.Second,
		MaxAttempts: envutil.Int("ML_MAX_ATTEMPTS", 3),
		BackoffBase: time.Duration(envutil.Int("ML_BACKOFF_BASE_MS", 250)) * time.Millisecond,
	}
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

func NewFromEnv(log *logger.Logger) (Client, error) {
	return New(log, ConfigFromEnv())
}

// New builds a client. An empty BaseURL is a valid state: the client reports
// unconfigured and every Decide call returns ErrNotConfigured.
func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BackoffBase < 0 {
		cfg.BackoffBase = 0
	}
	return &client{
		log:        log.With("client", "ClassifierClient"),
		cfg:        cfg,
		httpClient: &http.Client{},
	}, nil
}

func (c *client) Configured() bool {
	return c != nil && c.cfg.BaseURL != ""
}

type decisionRequest struct {
	Variations []variationPayload `json:"variations"`
}

type variationPayload struct {
	Name      string `json:"name"`
	Trials    int64  `json:"trials"`
	Successes int64  `json:"successes"`
}

type decisionResponse struct {
	Decision string `json:"decision"`
}

func (c *client) Decide(ctx context.Context, variations []types.Variation) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	payload := decisionRequest{Variations: make([]variationPayload, 0, len(variations))}
	for _, v := range variations {
		payload.Variations = append(payload.Variations, variationPayload{
			Name:      v.Name,
			Trials:    v.Trials,
			Successes: v.Successes,
		})
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal decision request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		name, retryable, err := c.attempt(ctx, body)
		if err == nil {
			return name, nil
		}
		lastErr = err
		if !retryable || attempt == c.cfg.MaxAttempts {
			break
		}
		delay := httpx.LinearBackoff(c.cfg.BackoffBase, attempt)
		c.log.Debug("classifier retry scheduled", "attempt", attempt, "delay", delay, "error", err)
		if serr := httpx.SleepCtx(ctx, delay); serr != nil {
			return "", serr
		}
	}
	return "", lastErr
}

// attempt runs one request with its own timeout. retryable is true only for
// 5xx responses; a 429, any other status, and transport errors all abort the
// retry loop per the degradation policy.
func (c *client) attempt(ctx context.Context, body []byte) (name string, retryable bool, err error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.cfg.BaseURL+"/decision", bytes.NewReader(body))
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", false, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var out decisionResponse
		if derr := json.NewDecoder(resp.Body).Decode(&out); derr != nil {
			return "", false, fmt.Errorf("decode decision response: %w", derr)
		}
		if strings.TrimSpace(out.Decision) == "" {
			return "", false, fmt.Errorf("empty decision in response")
		}
		return out.Decision, false, nil
	case httpx.IsRateLimited(resp.StatusCode):
		io.Copy(io.Discard, resp.Body)
		return "", false, ErrRateLimited
	case httpx.IsServerError(resp.StatusCode):
		io.Copy(io.Discard, resp.Body)
		return "", true, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	default:
		io.Copy(io.Discard, resp.Body)
		return "", false, fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}
}
