package decision

import (
	types "github.com/bhanumaheshbs/ab-agent-backend/internal/domain"
)

// Choose is the local fallback used when the classifier is unconfigured,
// rate-limited, or down. It picks the variation with the highest
// Laplace-smoothed success rate (successes+1)/(trials+2). The +1/+2 prior
// keeps fresh variations competitive: an untried arm scores 0.5, which beats
// any arm converting under 50%. Ties keep the earliest variation, so the
// function is deterministic.
func Choose(variations []types.Variation) (string, error) {
	if len(variations) == 0 {
		return "", types.ErrNoVariations
	}
	best := 0
	bestScore := smoothedRate(variations[0])
	for i := 1; i < len(variations); i++ {
		if s := smoothedRate(variations[i]); s > bestScore {
			best = i
			bestScore = s
		}
	}
	return variations[best].Name, nil
}

func smoothedRate(v types.Variation) float64 {
	return (float64(v.Successes) + 1) / (float64(v.Trials) + 2)
}
