package editcore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shellgeist/shellgeist/internal/testutil"
)

func TestWriteAtomicCreatesFile(testingHandle *testing.T) {
	dir := testingHandle.TempDir()
	path := filepath.Join(dir, "a.txt")

	testutil.RequireNoError(testingHandle, WriteAtomic(path, []byte("hello"), false), "write atomic")

	got, err := os.ReadFile(path)
	testutil.RequireNoError(testingHandle, err, "read back")
	testutil.RequireEqual(testingHandle, string(got), "hello", "contents match")
}

func TestWriteAtomicCreatesParentDirs(testingHandle *testing.T) {
	dir := testingHandle.TempDir()
	path := filepath.Join(dir, "nested", "a.txt")

	testutil.RequireNoError(testingHandle, WriteAtomic(path, []byte("hello"), false), "write atomic")

	got, err := os.ReadFile(path)
	testutil.RequireNoError(testingHandle, err, "read back")
	testutil.RequireEqual(testingHandle, string(got), "hello", "contents match")
}

func TestWriteAtomicPreservesExistingPermissions(testingHandle *testing.T) {
	dir := testingHandle.TempDir()
	path := filepath.Join(dir, "a.txt")
	testutil.RequireNoError(testingHandle, os.WriteFile(path, []byte("old"), 0o600), "seed file")

	testutil.RequireNoError(testingHandle, WriteAtomic(path, []byte("new"), false), "write atomic")

	info, err := os.Stat(path)
	testutil.RequireNoError(testingHandle, err, "stat")
	testutil.RequireEqual(testingHandle, info.Mode().Perm(), os.FileMode(0o600), "permissions preserved")
}

func TestWriteAtomicWritesBackupOfPriorContents(testingHandle *testing.T) {
	dir := testingHandle.TempDir()
	path := filepath.Join(dir, "a.txt")
	testutil.RequireNoError(testingHandle, os.WriteFile(path, []byte("original"), 0o644), "seed file")

	testutil.RequireNoError(testingHandle, WriteAtomic(path, []byte("updated"), true), "write atomic with backup")

	backup, err := os.ReadFile(path + backupSuffix)
	testutil.RequireNoError(testingHandle, err, "read backup")
	testutil.RequireEqual(testingHandle, string(backup), "original", "backup has pre-write contents")

	current, err := os.ReadFile(path)
	testutil.RequireNoError(testingHandle, err, "read current")
	testutil.RequireEqual(testingHandle, string(current), "updated", "current file updated")
}

func TestWriteAtomicSkipsBackupWhenNoExistingFile(testingHandle *testing.T) {
	dir := testingHandle.TempDir()
	path := filepath.Join(dir, "a.txt")

	testutil.RequireNoError(testingHandle, WriteAtomic(path, []byte("fresh"), true), "write atomic with backup requested")

	_, err := os.Stat(path + backupSuffix)
	testutil.RequireTrue(testingHandle, os.IsNotExist(err), "no backup created when nothing existed before")
}
