// ABOUTME: Append-only fact registry with write-once keys and hash identity
// ABOUTME: One registry per session, held as an explicit handle by its owner
package registry

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harper/provenance-standalone/internal/models"
)

// Registry is the session-scoped store of provenance facts. Keys are unique
// and write-once: re-registering identical content is an idempotent no-op,
// conflicting content fails with ErrDuplicateKey and leaves the registry
// untouched. Facts are immutable once inserted, so concurrent readers never
// observe a partially-written entry.
type Registry struct {
	mu        sync.RWMutex
	facts     map[string]models.Fact
	sessionID string
}

// New creates an empty registry with a fresh session identifier
func New() *Registry {
	return &Registry{
		facts:     make(map[string]models.Fact),
		sessionID: generateSessionID(),
	}
}

// SessionID returns the identifier of the session that owns this registry
func (r *Registry) SessionID() string {
	return r.sessionID
}

// RegisterToolFact records a numeric value produced by an external tool
// call, with confidence 1.0 and the current time as the registration
// timestamp. Tools that report their own confidence or timestamp use
// RegisterReading.
func (r *Registry) RegisterToolFact(key string, value float64, unit, sourceTool, rawRef string) (*models.ToolFact, error) {
	return r.RegisterReading(key, models.ToolReading{
		SourceTool:   sourceTool,
		Value:        value,
		Unit:         unit,
		RawOutputRef: rawRef,
	})
}

// RegisterReading records a completed tool reading under the given key.
// Registration is synchronous and in-memory: a fact either lands fully
// formed or not at all, so a cancelled computation can never leave a
// partial entry behind.
func (r *Registry) RegisterReading(key string, reading models.ToolReading) (*models.ToolFact, error) {
	fact, err := models.NewToolFact(key, reading)
	if err != nil {
		return nil, fmt.Errorf("failed to build tool fact: %w", err)
	}
	fact.Nonce = uuid.New().String()
	fact.Hash = ToolFactHash(fact.SourceTool, fact.Value, fact.Unit, fact.CreatedAt, fact.Nonce)

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.facts[key]; ok {
		if prior, isTool := existing.(*models.ToolFact); isTool {
			priorSig := ToolContentSignature(prior.SourceTool, prior.Value, prior.Unit)
			newSig := ToolContentSignature(fact.SourceTool, fact.Value, fact.Unit)
			if priorSig == newSig {
				return prior, nil
			}
		}
		return nil, fmt.Errorf("key %q already registered with different content: %w", key, ErrDuplicateKey)
	}

	r.facts[key] = fact
	return fact, nil
}

// Verify reports whether the registry holds key with exactly claimedHash.
// This is the only way an externally-asserted "I already computed X" claim
// is accepted; anything that does not verify is unprovenanced.
func (r *Registry) Verify(key, claimedHash string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fact, ok := r.facts[key]
	return ok && fact.FactHash() == claimedHash
}

// Get returns the fact registered under key
func (r *Registry) Get(key string) (models.Fact, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fact, ok := r.facts[key]
	return fact, ok
}

// Keys returns all registered keys in sorted order
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.facts))
	for key := range r.facts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Facts returns all registered facts sorted by key
func (r *Registry) Facts() []models.Fact {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.facts))
	for key := range r.facts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	facts := make([]models.Fact, 0, len(keys))
	for _, key := range keys {
		facts = append(facts, r.facts[key])
	}
	return facts
}

// Len returns the number of registered facts
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.facts)
}

// generateSessionID generates a unique session identifier
func generateSessionID() string {
	return fmt.Sprintf("sess_%s_%s", time.Now().Format("20060102_150405"), uuid.New().String()[:8])
}
