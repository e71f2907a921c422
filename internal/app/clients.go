package app

import (
	"fmt"

	"github.com/bhanumaheshbs/ab-agent-backend/internal/clients/classifier"
	"github.com/bhanumaheshbs/ab-agent-backend/internal/decision"
	"github.com/bhanumaheshbs/ab-agent-backend/internal/pkg/clockutil"
	"github.com/bhanumaheshbs/ab-agent-backend/internal/pkg/logger"
)

type Clients struct {
	Classifier    classifier.Client
	DecisionCache decision.Cache
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	classifierClient, err := classifier.NewFromEnv(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init classifier client: %w", err)
	}
	if !classifierClient.Configured() {
		log.Warn("ML_SERVICE_URL not set, decisions use the local fallback only")
	}

	var cache decision.Cache
	if cfg.RedisAddr != "" {
		cache, err = decision.NewRedisCache(log, cfg.RedisAddr, cfg.DecisionCacheTTL)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis decision cache: %w", err)
		}
	} else {
		cache = decision.NewMemoryCache(cfg.DecisionCacheTTL, clockutil.System())
	}

	return Clients{
		Classifier:    classifierClient,
		DecisionCache: cache,
	}, nil
}
