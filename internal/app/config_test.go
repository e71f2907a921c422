package app

import (
	"testing"
	"time"

	"github.com/bhanumaheshbs/ab-agent-backend/internal/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func TestLoadConfigDecisionCacheTTLDefault(t *testing.T) {
	t.Setenv("DECISION_CACHE_TTL_MS", "")

	cfg := LoadConfig(testLogger(t))
	if cfg.DecisionCacheTTL != 30*time.Second {
		t.Fatalf("expected default cache TTL of 30s, got %s", cfg.DecisionCacheTTL)
	}
}

func TestLoadConfigDecisionCacheTTLOverride(t *testing.T) {
	t.Setenv("DECISION_CACHE_TTL_MS", "250")

	cfg := LoadConfig(testLogger(t))
	if cfg.DecisionCacheTTL != 250*time.Millisecond {
		t.Fatalf("expected 250ms cache TTL, got %s", cfg.DecisionCacheTTL)
	}
}
