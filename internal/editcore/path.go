package editcore

import (
	"os"
	"path/filepath"
	"strings"
)

// ResolvePath resolves an untrusted relative path against root, per spec
// 4.A. It rejects empty, absolute, or "~"-prefixed rel values with
// KindInvalidPath, and rejects any path that escapes root (after symlink
// resolution) with KindPathEscape.
//
// Generalized from internal/tools/sandbox.go's Sandbox.ResolvePath: this
// spec only needs a single allowed root and no deny list, so the broader
// multi-root/deny-list machinery is dropped.
func ResolvePath(root, rel string) (string, error) {
	if rel == "" || strings.HasPrefix(rel, "/") || strings.HasPrefix(rel, "~") {
		return "", Err(KindInvalidPath, "rel must be a non-empty, non-absolute path")
	}

	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", Errf(KindInvalidPath, "resolve root: %v", err)
	}
	rootAbs = filepath.Clean(rootAbs)

	joined := filepath.Join(rootAbs, rel)
	if !isSubpath(rootAbs, joined) {
		return "", Err(KindPathEscape, joined)
	}

	realRoot := canonicalize(rootAbs)
	realTarget := canonicalize(joined)
	if !isSubpath(realRoot, realTarget) {
		return "", Err(KindPathEscape, realTarget)
	}

	return joined, nil
}

// canonicalize resolves symlinks where possible, falling back to the clean
// absolute path for components that don't yet exist (e.g. a file about to
// be created).
func canonicalize(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	// Path (or a component of it) doesn't exist yet; walk up to the nearest
	// existing ancestor, resolve that, and re-append the missing suffix.
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	if dir == path {
		return path
	}
	if _, err := os.Lstat(path); err == nil {
		return path
	}
	return filepath.Join(canonicalize(dir), base)
}

// isSubpath reports whether target is root itself or a descendant of root.
func isSubpath(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && rel != ".."
}
