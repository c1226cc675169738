package editcore

import (
	"encoding/json"
	"regexp"
	"strings"
)

// LoadObj salvages raw LLM output into a string-keyed mapping, per spec 4.B.
// It tries, in order: fence stripping + strict parse, balanced-brace
// extraction, lenient key/quote repairs, and finally regex-based content
// salvage for totally broken envelopes. Each step is a total function;
// salvage.go composes them with short-circuiting rather than fusing them,
// per spec §9 ("resist the urge to fuse them").
//
// It always returns a non-nil map: on total failure it synthesizes
// {"content": rawWithoutFences} so callers can fall back to full-replace.
func LoadObj(raw string) map[string]any {
	s := stripControlBytes(stripFence(raw))

	if m, ok := tryStrictParse(s); ok {
		return decodeStringEscapes(m)
	}
	if m, ok := tryBalancedBraceParse(s); ok {
		return decodeStringEscapes(m)
	}
	if m, ok := tryLenientParse(s); ok {
		return decodeStringEscapes(m)
	}
	if m, ok := tryContentSalvage(s); ok {
		return m
	}
	return map[string]any{"content": s}
}

var fenceRe = regexp.MustCompile("(?s)^```[ \\t]*([a-zA-Z0-9_+-]*)[ \\t]*\\r?\\n(.*)\\r?\\n```[ \\t]*$")

// stripFence removes a single outer code fence, tolerating an optional
// language tag on the opening line (e.g. ```json).
func stripFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if m := fenceRe.FindStringSubmatch(trimmed); m != nil {
		return m[2]
	}
	return s
}

// stripControlBytes removes ASCII control bytes other than tab/LF/CR.
func stripControlBytes(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 && r != '\t' && r != '\n' && r != '\r' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// tryStrictParse attempts a strict JSON parse, accepting only object values.
func tryStrictParse(s string) (map[string]any, bool) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

// tryBalancedBraceParse extracts the first balanced {...} substring by
// scanning with a one-pass JSON decoder and parses it.
func tryBalancedBraceParse(s string) (map[string]any, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return nil, false
	}
	dec := json.NewDecoder(strings.NewReader(s[start:]))
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

var (
	unquotedKeyRe   = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)(\s*:)`)
	singleQuotedRe  = regexp.MustCompile(`'((?:[^'\\]|\\.)*)'`)
)

// tryLenientParse repairs unquoted keys and single-quoted keys/values, then
// retries a strict parse.
func tryLenientParse(s string) (map[string]any, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return nil, false
	}
	candidate := s[start:]
	if end := matchBraceEnd(candidate); end >= 0 {
		candidate = candidate[:end]
	}

	repaired := unquotedKeyRe.ReplaceAllString(candidate, `$1"$2"$3`)
	repaired = singleQuotedRe.ReplaceAllStringFunc(repaired, func(m string) string {
		inner := m[1 : len(m)-1]
		inner = strings.ReplaceAll(inner, `"`, `\"`)
		return `"` + inner + `"`
	})

	var v any
	if err := json.Unmarshal([]byte(repaired), &v); err != nil {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

// matchBraceEnd returns the index just past the closing brace that matches
// the opening brace at s[0], or -1 if unbalanced.
func matchBraceEnd(s string) int {
	depth := 0
	inString := false
	escaped := false
	for i, r := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}

// decodeStringEscapes decodes literal backslash escapes (\n, \t, \", \r)
// found under the diff/text/content keys, once, per spec 4.B step 6. This
// handles model output that double-escaped its string payload.
func decodeStringEscapes(m map[string]any) map[string]any {
	for _, key := range []string{"diff", "text", "content"} {
		v, ok := m[key]
		if !ok {
			continue
		}
		str, ok := v.(string)
		if !ok {
			continue
		}
		if strings.Contains(str, `\n`) || strings.Contains(str, `\t`) ||
			strings.Contains(str, `\"`) || strings.Contains(str, `\r`) {
			m[key] = unescapeOnce(str)
		}
	}
	return m
}

func unescapeOnce(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 'n':
				b.WriteByte('\n')
				i++
				continue
			case 't':
				b.WriteByte('\t')
				i++
				continue
			case 'r':
				b.WriteByte('\r')
				i++
				continue
			case '"':
				b.WriteByte('"')
				i++
				continue
			case '\\':
				b.WriteByte('\\')
				i++
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

var trailingContentRe = regexp.MustCompile(`(?s)"content"\s*:\s*"((?:[^"\\]|\\.)*)"\s*[}\]]?\s*$`)
var trailingDiffRe = regexp.MustCompile(`(?s)"diff"\s*:\s*"((?:[^"\\]|\\.)*)"\s*[}\]]?\s*$`)

// tryContentSalvage handles totally broken envelopes of shape
// {"content": "..."} or {"diff": "..."} where JSON is unrecoverable, per
// spec 4.B step 7.
func tryContentSalvage(s string) (map[string]any, bool) {
	if m := trailingContentRe.FindStringSubmatch(s); m != nil {
		return map[string]any{"content": unescapeOnce(m[1])}, true
	}
	if m := trailingDiffRe.FindStringSubmatch(s); m != nil {
		return map[string]any{"diff": unescapeOnce(m[1])}, true
	}

	// Shape: first line "{", second line `"content": "`, remaining lines are
	// body until a line consisting only of `"` or `"}`.
	lines := strings.Split(s, "\n")
	if len(lines) < 3 {
		return nil, false
	}
	if strings.TrimSpace(lines[0]) != "{" {
		return nil, false
	}
	second := strings.TrimLeft(lines[1], " \t")
	var key string
	switch {
	case strings.HasPrefix(second, `"content": "`):
		key = "content"
		second = strings.TrimPrefix(second, `"content": "`)
	case strings.HasPrefix(second, `"diff": "`):
		key = "diff"
		second = strings.TrimPrefix(second, `"diff": "`)
	default:
		return nil, false
	}

	body := []string{second}
	for _, line := range lines[2:] {
		trimmed := strings.TrimSpace(line)
		if trimmed == `"` || trimmed == `"}` {
			return map[string]any{key: strings.Join(body, "\n")}, true
		}
		body = append(body, line)
	}
	return nil, false
}
