// ABOUTME: Derivation engine registering computed facts with lineage checks
// ABOUTME: Parents must already exist, so the provenance graph is acyclic by construction
package registry

import (
	"fmt"
	"sort"
	"time"

	"github.com/harper/provenance-standalone/internal/models"
)

// RegisterDerivedValue records a value computed from already-registered
// facts. The parent existence check and the insert happen under one lock,
// so two concurrent derivations can never both claim the same key. The
// formula is recorded for audit and never evaluated; confidence defaults to
// the minimum over the parents and may not exceed it.
func (r *Registry) RegisterDerivedValue(req models.DerivationRequest) (*models.DerivedFact, error) {
	if len(req.Parents) == 0 {
		return nil, fmt.Errorf("derivation for key %q lists no parents: %w", req.Key, ErrEmptyParents)
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid derivation request: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	minConfidence := 1.0
	parentHashes := make([]string, 0, len(req.Parents))
	for _, parentKey := range req.Parents {
		parent, ok := r.facts[parentKey]
		if !ok {
			return nil, fmt.Errorf("parent key %q is not registered: %w", parentKey, ErrUnknownParent)
		}
		parentHashes = append(parentHashes, parent.FactHash())
		if c := parent.FactConfidence(); c < minConfidence {
			minConfidence = c
		}
	}

	confidence := minConfidence
	if req.Confidence != nil {
		if *req.Confidence > minConfidence {
			return nil, fmt.Errorf("confidence %v exceeds parent minimum %v: %w",
				*req.Confidence, minConfidence, ErrConfidenceOverclaim)
		}
		confidence = *req.Confidence
	}

	sort.Strings(parentHashes)

	fact := &models.DerivedFact{
		FactCore: models.FactCore{
			Key:        req.Key,
			Value:      req.Value,
			Unit:       req.Unit,
			Confidence: confidence,
			CreatedAt:  time.Now().UTC(),
		},
		DerivedFrom:  append([]string(nil), req.Parents...),
		ParentHashes: parentHashes,
		Formula:      req.Formula,
		Method:       req.Method,
		Assumptions:  copyAssumptions(req.Assumptions),
	}
	fact.Hash = DerivedFactHash(fact.Value, fact.Unit, parentHashes, fact.Formula)

	if existing, ok := r.facts[req.Key]; ok {
		if prior, isDerived := existing.(*models.DerivedFact); isDerived && prior.Hash == fact.Hash {
			return prior, nil
		}
		return nil, fmt.Errorf("key %q already registered with different content: %w", req.Key, ErrDuplicateKey)
	}

	r.facts[req.Key] = fact
	return fact, nil
}

func copyAssumptions(assumptions map[string]string) map[string]string {
	if len(assumptions) == 0 {
		return nil
	}
	out := make(map[string]string, len(assumptions))
	for k, v := range assumptions {
		out[k] = v
	}
	return out
}
