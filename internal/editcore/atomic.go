package editcore

import (
	"os"
	"path/filepath"
)

// backupSuffix matches the on-disk layout in spec §6.
const backupSuffix = ".shellgeist.bak"

// WriteAtomic commits contents to path via a same-directory temp file plus
// rename, per spec 4.G. When backup is true it best-effort-copies the
// current file contents to a sibling "<path>.shellgeist.bak" first; backup
// failure is ignored, matching the teacher's fileops.go:backupFile idiom.
//
// Generalized directly from internal/tools/edit.go:writeAtomic.
func WriteAtomic(path string, contents []byte, backup bool) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Errf(KindInternalError, "create parent dir: %v", err)
	}

	if backup {
		backupFile(path)
	}

	tmp, err := os.CreateTemp(dir, ".shellgeist-*")
	if err != nil {
		return Errf(KindInternalError, "create temp file: %v", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(contents); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return Errf(KindInternalError, "write temp file: %v", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return Errf(KindInternalError, "close temp file: %v", err)
	}

	if info, statErr := os.Stat(path); statErr == nil {
		_ = os.Chmod(tmpName, info.Mode().Perm())
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return Errf(KindInternalError, "rename temp file: %v", err)
	}
	return nil
}

// backupFile best-effort copies the current contents of path to its
// ".shellgeist.bak" sibling. Any failure (missing source, permission
// denial, ...) is silently ignored, matching spec 4.G step 2.
func backupFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	_ = os.WriteFile(path+backupSuffix, data, 0o644)
}
