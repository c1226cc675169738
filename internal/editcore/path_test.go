package editcore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shellgeist/shellgeist/internal/testutil"
)

func TestResolvePathWithinRoot(testingHandle *testing.T) {
	root := testingHandle.TempDir()
	got, err := ResolvePath(root, "pkg/file.go")
	testutil.RequireNoError(testingHandle, err, "resolve")
	testutil.RequireEqual(testingHandle, got, filepath.Join(root, "pkg/file.go"), "resolved path")
}

func TestResolvePathRejectsAbsolute(testingHandle *testing.T) {
	root := testingHandle.TempDir()
	_, err := ResolvePath(root, "/etc/passwd")
	testutil.RequireTrue(testingHandle, err != nil, "expected rejection")
	testutil.RequireEqual(testingHandle, err.(*Error).Kind, KindInvalidPath, "kind")
}

func TestResolvePathRejectsEscape(testingHandle *testing.T) {
	root := testingHandle.TempDir()
	_, err := ResolvePath(root, "../outside.txt")
	testutil.RequireTrue(testingHandle, err != nil, "expected rejection")
	testutil.RequireEqual(testingHandle, err.(*Error).Kind, KindPathEscape, "kind")
}

func TestResolvePathRejectsSymlinkEscape(testingHandle *testing.T) {
	root := testingHandle.TempDir()
	outside := testingHandle.TempDir()
	testutil.RequireNoError(testingHandle, os.WriteFile(filepath.Join(outside, "secret.txt"), []byte("x"), 0o644), "write outside file")
	testutil.RequireNoError(testingHandle, os.Symlink(filepath.Join(outside, "secret.txt"), filepath.Join(root, "link.txt")), "create symlink")

	_, err := ResolvePath(root, "link.txt")
	testutil.RequireTrue(testingHandle, err != nil, "expected rejection")
	testutil.RequireEqual(testingHandle, err.(*Error).Kind, KindPathEscape, "kind")
}

func TestResolvePathRejectsTildePrefix(testingHandle *testing.T) {
	root := testingHandle.TempDir()
	_, err := ResolvePath(root, "~/file.txt")
	testutil.RequireTrue(testingHandle, err != nil, "expected rejection")
	testutil.RequireEqual(testingHandle, err.(*Error).Kind, KindInvalidPath, "kind")
}
