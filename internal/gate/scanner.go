// ABOUTME: Numeric-literal tokenizer and provenance-safe span classifier
// ABOUTME: The grammar is fixed here; any filtering beyond it is explicit opt-in
package gate

import (
	"strings"
	"unicode/utf8"

	"github.com/harper/provenance-standalone/internal/models"
)

// The numeric-literal grammar, in full:
//
//	literal  = sign? int-part frac-part? exponent?
//	         | sign? "." digits
//	int-part = digits thousands-group*        (groups only after a 1-3 digit run)
//	thousands-group = "," digit digit digit   (not followed by a fourth digit)
//	frac-part = "." digits                    (a bare trailing dot is punctuation)
//	exponent  = ("e" | "E") sign? digits
//	sign      = "+" | "-"                     (only after start of text,
//	                                           whitespace, or ( [ { )
//
// A literal may not start inside a word: a digit preceded by an ASCII
// letter, digit, or underscore belongs to that word, so LiCoO2, sha256,
// and v2 contain no literals. Trailing unit letters do not suppress
// detection and are not part of the span, so "2.92V" yields "2.92". A sign
// detached by the sign rule is dropped, not the digits: "1.9-2.2" yields
// "1.9" and "2.2". Misfires err toward detection: flagging a harmless
// token is recoverable, missing a fabricated one is not.
type Scanner struct {
	allowLiterals    map[string]struct{}
	allowListMarkers bool
}

// ScanConfig is the caller-configured allow-list. Both knobs default to
// off: with a zero config every literal outside a safe span is a leak.
type ScanConfig struct {
	// AllowLiterals skips candidates whose matched text equals one of
	// these strings exactly, e.g. "1" for list markers in prose.
	AllowLiterals []string

	// AllowListMarkers skips line-leading integer enumerators of the form
	// "1." or "1)" followed by whitespace or end of line.
	AllowListMarkers bool
}

// NewScanner creates a scanner with the given allow-list configuration
func NewScanner(cfg ScanConfig) *Scanner {
	s := &Scanner{allowListMarkers: cfg.AllowListMarkers}
	if len(cfg.AllowLiterals) > 0 {
		s.allowLiterals = make(map[string]struct{}, len(cfg.AllowLiterals))
		for _, lit := range cfg.AllowLiterals {
			s.allowLiterals[lit] = struct{}{}
		}
	}
	return s
}

// Scan tokenizes every numeric literal in text and returns those not fully
// contained in a provenance-safe span and not excused by the allow-list.
func (s *Scanner) Scan(text string, safeSpans []models.Span) []models.LeakCandidate {
	var leaks []models.LeakCandidate
	for _, lit := range tokenizeNumerals(text) {
		if spanCovered(lit.span, safeSpans) {
			continue
		}
		if s.allowed(text, lit) {
			continue
		}
		leaks = append(leaks, models.LeakCandidate{
			Literal: lit.text,
			Span:    lit.span,
			Context: contextWindow(text, lit.span),
		})
	}
	return leaks
}

type numeral struct {
	text string
	span models.Span
}

func tokenizeNumerals(text string) []numeral {
	var found []numeral
	n := len(text)
	i := 0
	for i < n {
		c := text[i]

		// Words absorb their digits; nothing numeric starts mid-word
		if isWordHead(c) {
			i++
			for i < n && isWordByte(text[i]) {
				i++
			}
			continue
		}

		if c == '+' || c == '-' {
			if signAllowed(text, i) && startsNumber(text, i+1) {
				end := consumeNumber(text, i+1)
				found = append(found, numeral{text[i:end], models.Span{Start: i, End: end}})
				i = end
				continue
			}
			i++
			continue
		}

		if startsNumber(text, i) {
			end := consumeNumber(text, i)
			found = append(found, numeral{text[i:end], models.Span{Start: i, End: end}})
			i = end
			continue
		}

		i++
	}
	return found
}

// startsNumber reports whether position p begins a literal body: a digit,
// or a dot directly followed by a digit
func startsNumber(text string, p int) bool {
	if p >= len(text) {
		return false
	}
	if isDigit(text[p]) {
		return true
	}
	return text[p] == '.' && p+1 < len(text) && isDigit(text[p+1])
}

// consumeNumber consumes a literal body starting at p (a digit or leading
// dot) and returns the position just past it
func consumeNumber(text string, p int) int {
	n := len(text)
	j := p

	if text[j] == '.' {
		j++
		for j < n && isDigit(text[j]) {
			j++
		}
		return consumeExponent(text, j)
	}

	intStart := j
	for j < n && isDigit(text[j]) {
		j++
	}

	// Thousands groups attach only to a plausible 1-3 digit leading run
	if run := j - intStart; run >= 1 && run <= 3 {
		for j+3 < n && text[j] == ',' &&
			isDigit(text[j+1]) && isDigit(text[j+2]) && isDigit(text[j+3]) &&
			!(j+4 < n && isDigit(text[j+4])) {
			j += 4
		}
	}

	if j+1 < n && text[j] == '.' && isDigit(text[j+1]) {
		j += 2
		for j < n && isDigit(text[j]) {
			j++
		}
	}

	return consumeExponent(text, j)
}

func consumeExponent(text string, p int) int {
	n := len(text)
	if p >= n || (text[p] != 'e' && text[p] != 'E') {
		return p
	}
	q := p + 1
	if q < n && (text[q] == '+' || text[q] == '-') {
		q++
	}
	if q < n && isDigit(text[q]) {
		for q < n && isDigit(text[q]) {
			q++
		}
		return q
	}
	return p
}

// signAllowed reports whether a sign at position i attaches to a following
// literal: only after start of text, whitespace, or an opening bracket.
// Anything else ("1.9-2.2", "x=-2") detaches the sign; the digits are
// still detected on their own.
func signAllowed(text string, i int) bool {
	if i == 0 {
		return true
	}
	switch text[i-1] {
	case ' ', '\t', '\n', '\r', '(', '[', '{':
		return true
	}
	return false
}

func (s *Scanner) allowed(text string, lit numeral) bool {
	if _, ok := s.allowLiterals[lit.text]; ok {
		return true
	}
	if s.allowListMarkers && isListMarker(text, lit) {
		return true
	}
	return false
}

// isListMarker reports whether lit is a line-leading integer enumerator
// like "1." or "12)" followed by whitespace or end of line
func isListMarker(text string, lit numeral) bool {
	for i := 0; i < len(lit.text); i++ {
		if !isDigit(lit.text[i]) {
			return false
		}
	}
	for i := lit.span.Start - 1; i >= 0; i-- {
		c := text[i]
		if c == '\n' {
			break
		}
		if c != ' ' && c != '\t' {
			return false
		}
	}
	end := lit.span.End
	if end >= len(text) || (text[end] != '.' && text[end] != ')') {
		return false
	}
	after := end + 1
	if after >= len(text) {
		return true
	}
	switch text[after] {
	case ' ', '\t', '\n', '\r':
		return true
	}
	return false
}

func spanCovered(lit models.Span, safeSpans []models.Span) bool {
	for _, safe := range safeSpans {
		if safe.Contains(lit) {
			return true
		}
	}
	return false
}

// contextWindow returns a short excerpt around a span for leak reporting,
// snapped to rune boundaries
func contextWindow(text string, span models.Span) string {
	const pad = 24
	start := span.Start - pad
	if start < 0 {
		start = 0
	}
	end := span.End + pad
	if end > len(text) {
		end = len(text)
	}
	for start > 0 && !utf8.RuneStart(text[start]) {
		start--
	}
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end++
	}
	return strings.TrimSpace(text[start:end])
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isWordHead(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isWordByte(c byte) bool {
	return isWordHead(c) || isDigit(c)
}
