package editcore

import "testing"

import "github.com/shellgeist/shellgeist/internal/testutil"

func TestAutofixFutureImportMovesStatementToPrelude(testingHandle *testing.T) {
	old := "from __future__ import annotations\n\ndef f():\n    pass\n"
	new := "def f():\n    pass\n\nfrom __future__ import annotations\n"

	fixed, ok := AutofixFutureImport("a.py", old, new)
	testutil.RequireTrue(testingHandle, ok, "expected a fix")
	testutil.RequireEqual(testingHandle, fixed, "from __future__ import annotations\ndef f():\n    pass\n\n", "moved to top")
}

func TestAutofixFutureImportDedupsRepeatedStatement(testingHandle *testing.T) {
	old := "from __future__ import annotations\n\npass\n"
	new := "pass\nfrom __future__ import annotations\nfrom __future__ import annotations\n"

	fixed, ok := AutofixFutureImport("a.py", old, new)
	testutil.RequireTrue(testingHandle, ok, "expected a fix")
	testutil.RequireEqual(testingHandle, countOccurrences(fixed, "from __future__ import annotations"), 1, "deduped to one statement")
}

func TestAutofixFutureImportRefusesOnDisagreeingGroups(testingHandle *testing.T) {
	old := "from __future__ import annotations\n\npass\n"
	new := "pass\nfrom __future__ import annotations, division\nfrom __future__ import annotations\n"

	_, ok := AutofixFutureImport("a.py", old, new)
	testutil.RequireTrue(testingHandle, !ok, "expected refusal on disagreeing groups")
}

func TestAutofixFutureImportNoopWhenAlreadyInPrelude(testingHandle *testing.T) {
	old := "from __future__ import annotations\n\npass\n"
	new := "from __future__ import annotations\n\npass\nmore\n"

	_, ok := AutofixFutureImport("a.py", old, new)
	testutil.RequireTrue(testingHandle, !ok, "already correctly placed, nothing to fix")
}

func TestAutofixFutureImportSkipsNonPythonFiles(testingHandle *testing.T) {
	// A non-.py file is only subject to the placement rule when old already
	// holds a future-import line, so old here has none.
	old := "x\n"
	new := "x\nfrom __future__ import annotations\n"

	fixed, ok := AutofixFutureImport("a.go", old, new)
	testutil.RequireTrue(testingHandle, !ok, "non-python file untouched")
	testutil.RequireEqual(testingHandle, fixed, new, "returned unchanged")
}

func countOccurrences(haystack, needle string) int {
	count := 0
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			count++
			i += len(needle) - 1
		}
	}
	return count
}
