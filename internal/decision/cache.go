package decision

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bhanumaheshbs/ab-agent-backend/internal/pkg/clockutil"
)

// Cache holds the most recent decision per experiment for a short window so a
// burst of page loads does not turn into a burst of classifier calls. Entries
// past their TTL are indistinguishable from absent ones.
type Cache interface {
	Get(ctx context.Context, experimentID uuid.UUID) (string, bool)
	Set(ctx context.Context, experimentID uuid.UUID, decision string)
}

type memoryEntry struct {
	decision  string
	expiresAt time.Time
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[uuid.UUID]memoryEntry
	ttl     time.Duration
	clock   clockutil.Clock
}

// NewMemoryCache builds the default process-local cache. A ttl <= 0 disables
// caching entirely: Set becomes a no-op and Get always misses.
func NewMemoryCache(ttl time.Duration, clock clockutil.Clock) Cache {
	if clock == nil {
		clock = clockutil.System()
	}
	return &memoryCache{
		entries: make(map[uuid.UUID]memoryEntry),
		ttl:     ttl,
		clock:   clock,
	}
}

func (c *memoryCache) Get(_ context.Context, experimentID uuid.UUID) (string, bool) {
	if c.ttl <= 0 {
		return "", false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[experimentID]
	if !ok {
		return "", false
	}
	if !c.clock.Now().Before(e.expiresAt) {
		// Stale entries are left in place and overwritten by the next Set.
		return "", false
	}
	return e.decision, true
}

func (c *memoryCache) Set(_ context.Context, experimentID uuid.UUID, decision string) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[experimentID] = memoryEntry{
		decision:  decision,
		expiresAt: c.clock.Now().Add(c.ttl),
	}
}
