package editcore

import "fmt"

// buildDiffPrompt constructs the round-N diff-request prompt (spec 4.H
// step 1). hint, when non-empty, is either the previous round's failure
// reason ("missing_diff", "bad_diff_empty_old: ...", "patch_apply_failed:
// ...") or a guard-repair hint from repairHintForGuard.
func buildDiffPrompt(relpath, instruction, old, hint string) (system, user string) {
	system = "You edit one file at a time. Reply with a single JSON object " +
		"of the shape {\"diff\": \"<unified diff>\"} and nothing else. The diff " +
		"must use hunks of the form `@@ -OLD_START,OLD_LEN +NEW_START,NEW_LEN @@` " +
		"followed by ' ', '-', and '+' prefixed body lines. Every line must " +
		"reproduce its original trailing newline exactly."

	user = fmt.Sprintf("File: %s\n\nInstruction: %s\n\n", relpath, instruction)
	if old == "" {
		user += "The file is currently empty or does not exist. Emit a single " +
			"hunk whose body is entirely '+' lines (no ' ' context lines, no " +
			"'-' deletions).\n\n"
	} else {
		user += fmt.Sprintf("Current contents:\n%s\n\n", old)
	}
	if containsFutureImportLine(old) {
		user += "The file has a `from __future__ import ...` line. It must " +
			"remain the first statement after any leading comments, blank " +
			"lines, and an optional module docstring.\n\n"
	}
	if hint != "" {
		user += fmt.Sprintf("The previous attempt failed: %s. Try again.\n", hint)
	}
	return system, user
}

// buildFullReplacePrompt constructs the terminal full-replace prompt (spec
// 4.H's fallback path), used once both diff rounds failed to produce an
// applicable patch.
func buildFullReplacePrompt(relpath, instruction, old string) (system, user string) {
	system = "You edit one file at a time. Reply with a single JSON object " +
		"of the shape {\"content\": \"<entire new file contents>\"} and nothing " +
		"else."

	user = fmt.Sprintf("File: %s\n\nInstruction: %s\n\n", relpath, instruction)
	if old == "" {
		user += "The file is currently empty or does not exist.\n"
	} else {
		user += fmt.Sprintf("Current contents:\n%s\n\n", old)
	}
	user += "A diff-based edit could not be produced for this change; reply " +
		"with the complete new file body instead.\n"
	return system, user
}
