package editcore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shellgeist/shellgeist/internal/testutil"
)

// scriptedCompleter returns successive canned responses, one per call.
type scriptedCompleter struct {
	responses []string
	calls     int
}

func (s *scriptedCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	if s.calls >= len(s.responses) {
		return "", errors.New("scriptedCompleter: ran out of responses")
	}
	r := s.responses[s.calls]
	s.calls++
	return r, nil
}

func newDriver(responses []string) *Driver {
	c := &scriptedCompleter{responses: responses}
	return &Driver{NewClient: func(profile string) (Completer, error) { return c, nil }}
}

func writeFile(testingHandle *testing.T, root, rel, content string) {
	path := filepath.Join(root, rel)
	testutil.RequireNoError(testingHandle, os.MkdirAll(filepath.Dir(path), 0o755), "mkdir")
	testutil.RequireNoError(testingHandle, os.WriteFile(path, []byte(content), 0o644), "write")
}

func TestEditPlanSucceedsOnFirstRound(testingHandle *testing.T) {
	root := testingHandle.TempDir()
	writeFile(testingHandle, root, "a.txt", "one\ntwo\nthree\n")

	driver := newDriver([]string{`{"diff": "@@ -2,1 +2,1 @@\n-two\n+TWO\n"}`})
	result := driver.EditPlan(context.Background(), "a.txt", "capitalize two", root)

	testutil.RequireTrue(testingHandle, result.OK, "expected success")
	testutil.RequireStringContains(testingHandle, result.Patch, "+TWO\n", "patch contains fix")
}

func TestEditPlanFallsBackToFullReplaceOnMissingDiff(testingHandle *testing.T) {
	root := testingHandle.TempDir()
	writeFile(testingHandle, root, "a.txt", "one\ntwo\n")

	driver := newDriver([]string{
		`{"explanation": "no diff here"}`,
		`{"explanation": "still no diff"}`,
		`{"content": "one\nTWO\n"}`,
	})
	result := driver.EditPlan(context.Background(), "a.txt", "capitalize two", root)

	testutil.RequireTrue(testingHandle, result.OK, "expected success via fallback")
	testutil.RequireStringContains(testingHandle, result.Patch, "+TWO\n", "fallback patch")
}

func TestEditPlanRewriteTooViolentSurfacesFirstViolationEvenIfRepairSucceeds(testingHandle *testing.T) {
	root := testingHandle.TempDir()
	old := "func helper() int {\n\treturn 1\n}\n"
	writeFile(testingHandle, root, "a.go", old)

	firstDiff := `{"diff": "@@ -1,3 +1,1 @@\n-func helper() int {\n-\treturn 1\n-}\n+totally different content\n"}`
	repairDiff := `{"diff": "@@ -2,1 +2,1 @@\n-\treturn 1\n+\treturn 2\n"}`

	driver := newDriver([]string{firstDiff, repairDiff})
	result := driver.EditPlan(context.Background(), "a.go", "tweak the return value", root)

	testutil.RequireTrue(testingHandle, !result.OK, "expected rejection")
	testutil.RequireStringContains(testingHandle, result.Detail, "rewrite too violent", "first violation surfaced")
}

func TestEditPlanPathEscapeIsRejectedBeforeAnyModelCall(testingHandle *testing.T) {
	root := testingHandle.TempDir()
	driver := newDriver(nil)
	result := driver.EditPlan(context.Background(), "../outside.txt", "anything", root)

	testutil.RequireTrue(testingHandle, !result.OK, "expected rejection")
	testutil.RequireEqual(testingHandle, result.Error, string(KindPathEscape), "error kind")
}

func TestApplyDiffWritesFileAtomically(testingHandle *testing.T) {
	root := testingHandle.TempDir()
	writeFile(testingHandle, root, "a.txt", "one\ntwo\n")

	patch := "@@ -2,1 +2,1 @@\n-two\n+TWO\n"
	result := ApplyDiff("a.txt", patch, root, "capitalize two", false, false)

	testutil.RequireTrue(testingHandle, result.OK, "expected success")
	testutil.RequireTrue(testingHandle, result.Written, "expected written")

	got, err := os.ReadFile(filepath.Join(root, "a.txt"))
	testutil.RequireNoError(testingHandle, err, "read back")
	testutil.RequireEqual(testingHandle, string(got), "one\nTWO\n", "file contents")
}

func TestApplyDiffWritesBackupWhenRequested(testingHandle *testing.T) {
	root := testingHandle.TempDir()
	writeFile(testingHandle, root, "a.txt", "one\ntwo\n")

	patch := "@@ -2,1 +2,1 @@\n-two\n+TWO\n"
	result := ApplyDiff("a.txt", patch, root, "capitalize two", false, true)
	testutil.RequireTrue(testingHandle, result.OK, "expected success")

	backup, err := os.ReadFile(filepath.Join(root, "a.txt.shellgeist.bak"))
	testutil.RequireNoError(testingHandle, err, "read backup")
	testutil.RequireEqual(testingHandle, string(backup), "one\ntwo\n", "backup has pre-edit contents")
}

func TestApplyDiffRejectsPatchWithoutHunks(testingHandle *testing.T) {
	root := testingHandle.TempDir()
	writeFile(testingHandle, root, "a.txt", "one\ntwo\n")

	result := ApplyDiff("a.txt", "no hunks here", root, "capitalize two", false, false)
	testutil.RequireTrue(testingHandle, !result.OK, "expected rejection")
	testutil.RequireEqual(testingHandle, result.Error, string(KindInvalidPatch), "invalid_patch kind")
}

func TestApplyDiffRejectsMissingFile(testingHandle *testing.T) {
	root := testingHandle.TempDir()

	patch := "@@ -1,1 +1,1 @@\n-one\n+ONE\n"
	result := ApplyDiff("missing.txt", patch, root, "capitalize one", false, false)
	testutil.RequireTrue(testingHandle, !result.OK, "expected rejection")
	testutil.RequireEqual(testingHandle, result.Error, string(KindFileNotFound), "file_not_found kind")

	_, statErr := os.Stat(filepath.Join(root, "missing.txt"))
	testutil.RequireTrue(testingHandle, os.IsNotExist(statErr), "file must not have been created")
}

func TestApplyFullReplaceRejectsMissingFile(testingHandle *testing.T) {
	root := testingHandle.TempDir()

	result := ApplyFullReplace("missing.txt", "new content\n", root, "replace content", false, false)
	testutil.RequireTrue(testingHandle, !result.OK, "expected rejection")
	testutil.RequireEqual(testingHandle, result.Error, string(KindFileNotFound), "file_not_found kind")

	_, statErr := os.Stat(filepath.Join(root, "missing.txt"))
	testutil.RequireTrue(testingHandle, os.IsNotExist(statErr), "file must not have been created")
}
