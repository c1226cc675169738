package editcore

import (
	"regexp"
	"strings"
)

// destructiveKeywords are instruction keywords that waive the
// anti-destructive-rewrite and README-protection guards, per spec 4.E.
var destructiveKeywords = []string{
	"rewrite", "refactor", "reformat", "format", "overhaul", "replace",
	"full", "cleanup", "clean up", "modernize",
}

// EnforceGuards runs the ordered content guards of spec 4.E against a
// proposed new file body. relpath is used for the README and Python-suffix
// checks; instruction is scanned for destructive-rewrite keyword overrides.
func EnforceGuards(relpath, instruction, old, new string) error {
	if err := checkControlChars(new); err != nil {
		return err
	}
	if old == new {
		return nil
	}
	if err := checkFutureImportPlacement(relpath, old, new); err != nil {
		return err
	}
	if err := checkAntiDestructive(relpath, instruction, old, new); err != nil {
		return err
	}
	return nil
}

func checkControlChars(s string) error {
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b < 0x20 && b != '\t' && b != '\n' && b != '\r' {
			return Err(KindGuardBlocked, "control_chars")
		}
	}
	return nil
}

func hasDestructiveKeyword(instruction string) bool {
	lower := strings.ToLower(instruction)
	for _, kw := range destructiveKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func checkAntiDestructive(relpath, instruction, old, new string) error {
	override := hasDestructiveKeyword(instruction)
	ratio := SimilarityRatio(normalizeForSimilarity(old), normalizeForSimilarity(new))

	isReadme := strings.EqualFold(basename(relpath), "readme.md")
	if isReadme && !override {
		if ratio < 0.90 {
			return Err(KindGuardBlocked, "README rewrite blocked")
		}
		return nil
	}
	if !override && ratio < 0.20 {
		return Errf(KindGuardBlocked, "rewrite too violent (similarity=%.2f)", ratio)
	}
	return nil
}

func basename(relpath string) string {
	if i := strings.LastIndexAny(relpath, "/\\"); i >= 0 {
		return relpath[i+1:]
	}
	return relpath
}

// normalizeForSimilarity implements spec 4.E's similarity normalization:
// LF-only, right-stripped lines, collapsed blank-line runs, and
// leading/trailing blank-line trimming overall. It is never applied to the
// text being written.
func normalizeForSimilarity(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	raw := strings.Split(s, "\n")

	var lines []string
	prevBlank := false
	for _, l := range raw {
		l = strings.TrimRight(l, " \t")
		blank := l == ""
		if blank && prevBlank {
			continue
		}
		lines = append(lines, l)
		prevBlank = blank
	}
	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// --- future-import placement (spec 4.E item 3) ---

var futureImportRe = regexp.MustCompile(`^from __future__ import .+$`)

// futureImportApplies reports whether the future-import guard should run
// for this edit: the target is a .py file, or the old content already
// contains a future-import line.
func futureImportApplies(relpath, old string) bool {
	if strings.HasSuffix(relpath, ".py") {
		return true
	}
	return containsFutureImportLine(old)
}

func containsFutureImportLine(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		if futureImportRe.MatchString(strings.TrimSpace(line)) {
			return true
		}
	}
	return false
}

func checkFutureImportPlacement(relpath, old, new string) error {
	if !futureImportApplies(relpath, old) {
		return nil
	}
	if !containsFutureImportLine(new) {
		return Err(KindGuardBlocked, "future_import_removed")
	}
	if !futureImportInPrelude(new) {
		return Err(KindGuardBlocked, "future_import_moved")
	}
	return nil
}

// futureImportInPrelude reports whether the first future-import line occurs
// immediately after the allowed prelude: blank lines and "#" comments,
// optionally followed by a single module docstring, optionally followed by
// more blank lines.
func futureImportInPrelude(text string) bool {
	lines := strings.Split(text, "\n")
	i := 0

	// Blank lines and comments.
	for i < len(lines) {
		t := strings.TrimSpace(lines[i])
		if t == "" || strings.HasPrefix(t, "#") {
			i++
			continue
		}
		break
	}

	// Optional module docstring.
	if i < len(lines) {
		t := strings.TrimSpace(lines[i])
		for _, quote := range []string{`"""`, `'''`} {
			if strings.HasPrefix(t, quote) {
				rest := t[len(quote):]
				if strings.HasSuffix(rest, quote) && len(rest) >= len(quote) {
					// Single-line docstring (handles `""""""` as empty string).
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

	// Trailing blank lines after the docstring.
	for i < len(lines) {
		if strings.TrimSpace(lines[i]) == "" {
			i++
			continue
		}
		break
	}

	if i >= len(lines) {
		return false
	}
	return futureImportRe.MatchString(strings.TrimSpace(lines[i]))
}
