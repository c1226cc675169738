// Package editcore implements the safe-edit pipeline: parsing and applying a
// restricted unified-diff dialect, salvaging malformed model output,
// enforcing content-integrity guardrails, and committing changes atomically.
package editcore

import "fmt"

// Kind is a stable error identifier string, as listed in the spec's error
// taxonomy. Callers match on Kind, never on Error() text.
type Kind string

const (
	KindInvalidPath        Kind = "invalid_path"
	KindPathEscape         Kind = "path_escape"
	KindFileNotFound       Kind = "file_not_found"
	KindInvalidPatch       Kind = "invalid_patch"
	KindInvalidContent     Kind = "invalid_content"
	KindBadPatchEmptyOld   Kind = "bad_patch_empty_old"
	KindPatchApplyFailed   Kind = "patch_apply_failed"
	KindGuardBlocked       Kind = "guard_blocked"
	KindHTTPError          Kind = "http_error"
	KindBadJSONResponse    Kind = "bad_json_response"
	KindBadOpenAISchema    Kind = "bad_openai_schema"
	KindGitAddFailed       Kind = "git_add_failed"
	KindGitRestoreFailed   Kind = "git_restore_failed"
	KindInternalError      Kind = "internal_error"
)

// Error is the tagged failure carried by every internal boundary in the
// safe-edit pipeline. Detail holds a human-readable sub-reason (e.g. a
// patch-apply failure message or a guard violation description); it is part
// of the stable contract when Kind is KindPatchApplyFailed or
// KindGuardBlocked (see spec §7).
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Err constructs an *Error.
func Err(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// Errf constructs an *Error with a formatted detail.
func Errf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}
