// ABOUTME: Resolves <<T:key>> placeholder tokens against a fact registry
// ABOUTME: Records provenance-safe output spans for the leak scanner
package gate

import (
	"fmt"
	"strings"

	"github.com/harper/provenance-standalone/internal/models"
	"github.com/harper/provenance-standalone/internal/registry"
)

// MalformedPolicy decides what happens when placeholder delimiters are
// present but the key body fails the grammar
type MalformedPolicy string

const (
	// MalformedWarn - pass the broken token through verbatim and record a
	// warning. Anything numeric inside it stays outside every safe span,
	// so the scanner still sees it.
	MalformedWarn MalformedPolicy = "warn"

	// MalformedFatal - fail the render
	MalformedFatal MalformedPolicy = "fatal"
)

const (
	tokenOpen  = "<<T:"
	tokenClose = ">>"
)

// Renderer substitutes registry values into placeholder tokens. It never
// generates text: non-token characters pass through byte for byte.
type Renderer struct {
	registry  *registry.Registry
	malformed MalformedPolicy
}

// NewRenderer creates a renderer over the given registry. An empty policy
// defaults to MalformedWarn.
func NewRenderer(reg *registry.Registry, malformed MalformedPolicy) *Renderer {
	if malformed == "" {
		malformed = MalformedWarn
	}
	return &Renderer{registry: reg, malformed: malformed}
}

// Render resolves every <<T:key>> token left to right. Each substitution's
// output span is recorded as provenance-safe. A placeholder referencing an
// unregistered key fails with ErrUnknownKey; malformed tokens either fail
// with ErrMalformedPlaceholder or pass through with a warning, per policy.
func (rd *Renderer) Render(template string) (*models.RenderResult, error) {
	var out strings.Builder
	result := &models.RenderResult{}

	i := 0
	for i < len(template) {
		rel := strings.Index(template[i:], tokenOpen)
		if rel < 0 {
			out.WriteString(template[i:])
			break
		}
		out.WriteString(template[i : i+rel])
		start := i + rel

		bodyStart := start + len(tokenOpen)
		bodyEnd := bodyStart
		for bodyEnd < len(template) && models.IsKeyByte(template[bodyEnd]) {
			bodyEnd++
		}

		if bodyEnd > bodyStart && strings.HasPrefix(template[bodyEnd:], tokenClose) {
			key := template[bodyStart:bodyEnd]
			fact, ok := rd.registry.Get(key)
			if !ok {
				return nil, fmt.Errorf("placeholder references unregistered key %q: %w", key, ErrUnknownKey)
			}

			spanStart := out.Len()
			out.WriteString(models.FormatValue(fact.FactValue()))
			result.SafeSpans = append(result.SafeSpans, models.Span{Start: spanStart, End: out.Len()})
			result.ResolvedKeys = appendUnique(result.ResolvedKeys, key)

			i = bodyEnd + len(tokenClose)
			continue
		}

		// Malformed: delimiters present but no grammatical key body closes
		// the token. Work out how far the broken token extends.
		tokenEnd, reason := malformedExtent(template, start)
		token := template[start:tokenEnd]

		if rd.malformed == MalformedFatal {
			return nil, fmt.Errorf("malformed placeholder %q at offset %d (%s): %w",
				truncateToken(token), start, reason, ErrMalformedPlaceholder)
		}

		spanStart := out.Len()
		out.WriteString(token)
		result.Warnings = append(result.Warnings, models.RenderWarning{
			Token:  truncateToken(token),
			Span:   models.Span{Start: spanStart, End: out.Len()},
			Reason: reason,
		})
		i = tokenEnd
	}

	result.Text = out.String()
	return result, nil
}

// malformedExtent decides where a broken token ends: at the ">>" that
// closes it, at the next "<<T:" (a dangling opener swallows nothing, so a
// following valid token still resolves), or at the end of the template.
func malformedExtent(template string, start int) (int, string) {
	searchFrom := start + len(tokenOpen)
	closeRel := strings.Index(template[searchFrom:], tokenClose)
	openRel := strings.Index(template[searchFrom:], tokenOpen)

	if closeRel >= 0 && (openRel < 0 || closeRel < openRel) {
		end := searchFrom + closeRel + len(tokenClose)
		if closeRel == 0 {
			return end, "empty key body"
		}
		return end, "key body contains invalid characters"
	}
	if openRel >= 0 {
		return searchFrom + openRel, "unterminated placeholder"
	}
	return len(template), "unterminated placeholder"
}

func truncateToken(token string) string {
	const max = 48
	if len(token) <= max {
		return token
	}
	return token[:max-3] + "..."
}

func appendUnique(keys []string, key string) []string {
	for _, k := range keys {
		if k == key {
			return keys
		}
	}
	return append(keys, key)
}
