package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	apptrace "github.com/supplytrace/backend/internal/application/trace"
	"github.com/supplytrace/backend/internal/domain/trace"
)

type scoreEntry struct {
	scores    trace.Scores
	expiresAt time.Time
}

// MemoryScoreCache is an in-process score cache for single-instance
// deployments and tests. Expired entries are dropped lazily on read.
type MemoryScoreCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]scoreEntry
	now     func() time.Time
}

// NewMemoryScoreCache creates an empty in-memory score cache
func NewMemoryScoreCache() *MemoryScoreCache {
	return &MemoryScoreCache{
		entries: make(map[uuid.UUID]scoreEntry),
		now:     time.Now,
	}
}

// Get returns the cached scores for a PO, or (nil, nil) on a miss
func (c *MemoryScoreCache) Get(_ context.Context, poID uuid.UUID) (*trace.Scores, error) {
	c.mu.RLock()
	entry, ok := c.entries[poID]
	c.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, poID)
		c.mu.Unlock()
		return nil, nil
	}
	scores := entry.scores
	return &scores, nil
}

// Set stores the scores for a PO with the given TTL
func (c *MemoryScoreCache) Set(_ context.Context, poID uuid.UUID, scores trace.Scores, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[poID] = scoreEntry{scores: scores, expiresAt: c.now().Add(ttl)}
	return nil
}

// Invalidate drops the cached scores for a PO
func (c *MemoryScoreCache) Invalidate(_ context.Context, poID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, poID)
	return nil
}

var _ apptrace.ScoreCache = (*MemoryScoreCache)(nil)
