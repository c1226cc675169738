package editcore

import (
	"strings"
	"testing"

	"github.com/shellgeist/shellgeist/internal/testutil"
)

func TestEnforceGuardsNoOpPasses(testingHandle *testing.T) {
	err := EnforceGuards("a.py", "tweak it", "same\n", "same\n")
	testutil.RequireNoError(testingHandle, err, "no-op edit")
}

func TestEnforceGuardsRejectsControlChars(testingHandle *testing.T) {
	err := EnforceGuards("a.py", "tweak it", "old\n", "new\x07\n")
	testutil.RequireTrue(testingHandle, err != nil, "expected rejection")
	testutil.RequireEqual(testingHandle, err.(*Error).Detail, "control_chars", "detail")
}

func TestEnforceGuardsReadmeProtected(testingHandle *testing.T) {
	old := strings.Repeat("Documented line about the project.\n", 20)
	new := "Completely different content.\n"
	err := EnforceGuards("README.md", "tidy up wording", old, new)
	testutil.RequireTrue(testingHandle, err != nil, "expected rejection")
	testutil.RequireStringContains(testingHandle, err.(*Error).Detail, "README rewrite blocked", "detail")
}

func TestEnforceGuardsReadmeWaivedByDestructiveKeyword(testingHandle *testing.T) {
	old := strings.Repeat("Documented line about the project.\n", 20)
	new := "Completely different content.\n"
	err := EnforceGuards("README.md", "rewrite this from scratch", old, new)
	testutil.RequireNoError(testingHandle, err, "waived by destructive keyword")
}

func TestEnforceGuardsAntiDestructiveGeneric(testingHandle *testing.T) {
	old := strings.Repeat("func helper() {}\n", 20)
	new := "totally unrelated content\n"
	err := EnforceGuards("main.go", "small tweak", old, new)
	testutil.RequireTrue(testingHandle, err != nil, "expected rejection")
	testutil.RequireStringContains(testingHandle, err.(*Error).Detail, "rewrite too violent", "detail")
}

func TestEnforceGuardsFutureImportRemoved(testingHandle *testing.T) {
	old := "from __future__ import annotations\n\ndef f():\n    pass\n"
	new := "def f():\n    pass\n"
	err := EnforceGuards("mod.py", "simplify", old, new)
	testutil.RequireTrue(testingHandle, err != nil, "expected rejection")
	testutil.RequireEqual(testingHandle, err.(*Error).Detail, "future_import_removed", "detail")
}

func TestEnforceGuardsFutureImportMoved(testingHandle *testing.T) {
	old := "from __future__ import annotations\n\ndef f():\n    pass\n"
	new := "def f():\n    pass\nfrom __future__ import annotations\n"
	err := EnforceGuards("mod.py", "simplify", old, new)
	testutil.RequireTrue(testingHandle, err != nil, "expected rejection")
	testutil.RequireEqual(testingHandle, err.(*Error).Detail, "future_import_moved", "detail")
}

func TestFutureImportInPreludeAfterDocstring(testingHandle *testing.T) {
	text := "\"\"\"Module docstring.\"\"\"\n\nfrom __future__ import annotations\n\ndef f():\n    pass\n"
	testutil.RequireTrue(testingHandle, futureImportInPrelude(text), "expected prelude placement to be valid")
}
