package app

import (
	"time"

	"github.com/bhanumaheshbs/ab-agent-backend/internal/pkg/envutil"
	"github.com/bhanumaheshbs/ab-agent-backend/internal/pkg/logger"
)

type Config struct {
	JWTSecretKey   string
	AccessTokenTTL time.Duration

	DecisionCacheTTL time.Duration
	RedisAddr        string

	AgentScriptPath string
}

func LoadConfig(log *logger.Logger) Config {
	jwtSecretKey := envutil.Str("JWT_SECRET_KEY", "defaultsecret")
	if jwtSecretKey == "defaultsecret" {
		log.Warn("JWT_SECRET_KEY not set, using insecure default")
	}
	accessTokenTTLSeconds := envutil.Int("ACCESS_TOKEN_TTL", 3600)
	decisionCacheTTLMs := envutil.Int("DECISION_CACHE_TTL_MS", 30000)
	return Config{
		JWTSecretKey:     jwtSecretKey,
		AccessTokenTTL:   time.Duration(accessTokenTTLSeconds) * time.Second,
		DecisionCacheTTL: time.Duration(decisionCacheTTLMs) * time.Millisecond,
		RedisAddr:        envutil.Str("REDIS_ADDR", ""),
		AgentScriptPath:  envutil.Str("AGENT_SCRIPT_PATH", "public/agent.js"),
	}
}
