package editcore

import "strings"

// AutofixFutureImport implements the idempotent rewrite from spec §9: when
// future-import placement is wrong, remove every matching line from new,
// then splice the unique statements back in immediately after the prelude.
// The first-occurring text of each unique "from __future__ import <names>"
// statement wins, order preserved (spec's resolution of the dedup-by-position
// open question).
//
// It detects disagreeing groups — the same imported feature name appearing
// in more than one distinct future-import statement — and refuses to
// autofix in that case, returning new unchanged with ok=false so the caller
// reverts rather than guesses at a merge.
func AutofixFutureImport(relpath, old, new string) (fixed string, ok bool) {
	if !futureImportApplies(relpath, old) {
		return new, false
	}
	if futureImportInPrelude(new) {
		return new, false
	}

	lines := strings.Split(new, "\n")
	var uniqueStmts []string
	seen := map[string]bool{}
	seenNames := map[string]bool{}
	var kept []string

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !futureImportRe.MatchString(trimmed) {
			kept = append(kept, line)
			continue
		}
		if seen[trimmed] {
			continue
		}
		seen[trimmed] = true
		for _, name := range futureImportNames(trimmed) {
			if seenNames[name] {
				return new, false
			}
			seenNames[name] = true
		}
		uniqueStmts = append(uniqueStmts, trimmed)
	}

	if len(uniqueStmts) == 0 {
		return new, false
	}

	insertAt := preludeEnd(kept)
	result := make([]string, 0, len(kept)+len(uniqueStmts))
	result = append(result, kept[:insertAt]...)
	result = append(result, uniqueStmts...)
	result = append(result, kept[insertAt:]...)

	return strings.Join(result, "\n"), true
}

// futureImportNames extracts the comma-separated feature names from a
// "from __future__ import a, b" statement.
func futureImportNames(stmt string) []string {
	const marker = "import "
	idx := strings.Index(stmt, marker)
	if idx < 0 {
		return nil
	}
	rest := stmt[idx+len(marker):]
	parts := strings.Split(rest, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		names = append(names, strings.TrimSpace(p))
	}
	return names
}

// preludeEnd returns the line index (within lines, which has future-import
// statements already removed) just past the allowed prelude region: blank
// lines and comments, then an optional module docstring, then blank lines.
func preludeEnd(lines []string) int {
	i := 0
	for i < len(lines) {
		t := strings.TrimSpace(lines[i])
		if t == "" || strings.HasPrefix(t, "#") {
			i++
			continue
		}
		break
	}

	if i < len(lines) {
		t := strings.TrimSpace(lines[i])
		for _, quote := range []string{`"""`, `'''`} {
			if strings.HasPrefix(t, quote) {
				rest := t[len(quote):]
				if strings.HasSuffix(rest, quote) && len(rest) >= len(quote) {
					i++
				} else {
					i++
					for i < len(lines) {
						if strings.Contains(lines[i], quote) {
							i++
							break
						}
						i++
					}
				}
				break
			}
		}
	}

	for i < len(lines) {
		if strings.TrimSpace(lines[i]) == "" {
			i++
			continue
		}
		break
	}
	return i
}
