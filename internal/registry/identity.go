// ABOUTME: Content-addressed identity for facts via domain-separated SHA-256
// ABOUTME: Hashes are the verify() currency; signatures decide tool-fact idempotence
package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"sort"
	"time"

	"github.com/harper/provenance-standalone/internal/models"
)

// Domain prefixes keep the three encodings from ever colliding with each
// other, and the 0x1f unit separator keeps field boundaries unambiguous.
const (
	toolHashDomain    = "toolfact/v1"
	toolSigDomain     = "toolsig/v1"
	derivedHashDomain = "derivedfact/v1"
)

// ToolFactHash computes the identity hash of a tool fact. The timestamp and
// a per-registration nonce are part of the preimage, so a hash can only be
// produced by an actual registration; an agent cannot guess it from the
// value alone and forge an "already computed" claim.
func ToolFactHash(sourceTool string, value float64, unit string, ts time.Time, nonce string) string {
	return hashFields(toolHashDomain,
		sourceTool,
		models.FormatValue(value),
		unit,
		ts.UTC().Format(time.RFC3339Nano),
		nonce,
	)
}

// ToolContentSignature computes the idempotence identity of a tool fact:
// what the caller semantically asserts, independent of when it was
// registered. Two registrations with equal signatures are the same claim.
func ToolContentSignature(sourceTool string, value float64, unit string) string {
	return hashFields(toolSigDomain,
		sourceTool,
		models.FormatValue(value),
		unit,
	)
}

// DerivedFactHash computes the identity hash of a derived fact over its
// value, unit, sorted parent hashes, and formula. There is no nonce: the
// hash is deterministic, so derived idempotence is plain hash equality, and
// the parent hashes chain the fact to its exact inputs.
func DerivedFactHash(value float64, unit string, parentHashes []string, formula string) string {
	sorted := append([]string(nil), parentHashes...)
	sort.Strings(sorted)

	fields := make([]string, 0, len(sorted)+3)
	fields = append(fields, models.FormatValue(value), unit)
	fields = append(fields, sorted...)
	fields = append(fields, formula)
	return hashFields(derivedHashDomain, fields...)
}

func hashFields(domain string, fields ...string) string {
	h := sha256.New()
	io.WriteString(h, domain)
	for _, f := range fields {
		h.Write([]byte{0x1f})
		io.WriteString(h, f)
	}
	return hex.EncodeToString(h.Sum(nil))
}
