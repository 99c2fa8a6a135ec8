package matchserver

import (
	"sync"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mitchelldurbincs/mobai/internal/game/core"
)

const (
	idempotencyTTL        = 24 * time.Hour
	idempotencyCleanupMin = 1000
)

// idempotencyKey scopes a client key to one side of one match
type idempotencyKey struct {
	MatchID        string
	Side           core.Side
	IdempotencyKey string
}

type idempotencyEntry struct {
	response  *structpb.Struct
	createdAt time.Time
}

// IdempotencyManager caches SubmitOrders responses so a retried request
// does not submit the same batch twice
type IdempotencyManager struct {
	cache map[idempotencyKey]*idempotencyEntry
	mu    sync.RWMutex
	now   func() time.Time
}

// NewIdempotencyManager creates a new idempotency manager
func NewIdempotencyManager() *IdempotencyManager {
	return &IdempotencyManager{
		cache: make(map[idempotencyKey]*idempotencyEntry),
		now:   time.Now,
	}
}

// Check returns the cached response for key, or nil when there is none or
// it has expired
func (im *IdempotencyManager) Check(matchID string, side core.Side, key string) *structpb.Struct {
	if key == "" {
		return nil
	}

	im.mu.RLock()
	defer im.mu.RUnlock()

	entry, exists := im.cache[idempotencyKey{MatchID: matchID, Side: side, IdempotencyKey: key}]
	if !exists {
		return nil
	}
	if im.now().Sub(entry.createdAt) > idempotencyTTL {
		return nil
	}
	return entry.response
}

// Store caches resp under key
func (im *IdempotencyManager) Store(matchID string, side core.Side, key string, resp *structpb.Struct) {
	if key == "" {
		return
	}

	im.mu.Lock()
	defer im.mu.Unlock()

	im.cache[idempotencyKey{MatchID: matchID, Side: side, IdempotencyKey: key}] = &idempotencyEntry{
		response:  resp,
		createdAt: im.now(),
	}

	if len(im.cache) > idempotencyCleanupMin {
		im.cleanupOldEntriesLocked()
	}
}

// Forget drops every entry of a removed match
func (im *IdempotencyManager) Forget(matchID string) {
	im.mu.Lock()
	defer im.mu.Unlock()
	for key := range im.cache {
		if key.MatchID == matchID {
			delete(im.cache, key)
		}
	}
}

// Len reports the number of cached responses
func (im *IdempotencyManager) Len() int {
	im.mu.RLock()
	defer im.mu.RUnlock()
	return len(im.cache)
}

// cleanupOldEntriesLocked removes expired entries. Must be called with mu held.
func (im *IdempotencyManager) cleanupOldEntriesLocked() {
	cutoff := im.now().Add(-idempotencyTTL)
	for key, entry := range im.cache {
		if entry.createdAt.Before(cutoff) {
			delete(im.cache, key)
		}
	}
}
