package editcore

import "fmt"

// finalizeOutcome is the internal result of Finalize (spec 4.H step 2): the
// autofix → syntax probe → content guards → patch rebuild sequence that
// runs on every candidate new file body, whichever path produced it.
type finalizeOutcome struct {
	ok      bool
	errKind Kind
	detail  string
	patch   string
	new     string
}

func (o finalizeOutcome) toResult(relpath string) Result {
	if o.ok {
		return Result{
			OK:    true,
			File:  relpath,
			Patch: o.patch,
			Diff:  WithFileHeaders(relpath, o.patch),
		}
	}
	return Result{OK: false, File: relpath, Patch: o.patch, Error: string(o.errKind), Detail: o.detail}
}

// finalize runs spec 4.H's Finalize procedure against a candidate new body:
//
//  1. if future-import placement is wrong, try AutofixFutureImport; accept
//     the fix only if guards then pass on it, otherwise revert to new.
//  2. run the syntax probe; if it fails and the only remaining guard
//     violation is future-import placement, report that specifically
//     (future_import_moved) rather than the generic syntax error.
//  3. run the content guards; a rejection here is returned with the patch
//     computed against the ORIGINAL new (pre-finalize) body.
//  4. if autofix rewrote the body, rebuild the patch against the fixed body.
func finalize(relpath, instruction, old, new, patch string) finalizeOutcome {
	working := new
	rewritten := false

	if checkFutureImportPlacement(relpath, old, working) != nil {
		if fixed, ok := AutofixFutureImport(relpath, old, working); ok {
			if EnforceGuards(relpath, instruction, old, fixed) == nil {
				working = fixed
				rewritten = true
			}
		}
	}

	if err := ProbeSyntax(relpath, working); err != nil {
		if onlyFutureImportViolation(relpath, instruction, old, working) {
			return finalizeOutcome{errKind: KindGuardBlocked, detail: "future_import_moved", patch: patch}
		}
		return finalizeOutcome{errKind: KindGuardBlocked, detail: "syntax_error_after_edit", patch: patch}
	}

	if err := EnforceGuards(relpath, instruction, old, working); err != nil {
		e := err.(*Error)
		return finalizeOutcome{errKind: e.Kind, detail: e.Detail, patch: patch}
	}

	finalPatch := patch
	if rewritten {
		finalPatch = BuildDiff(old, working)
	}
	return finalizeOutcome{ok: true, patch: finalPatch, new: working}
}

// onlyFutureImportViolation reports whether, of the content guards, only
// future-import placement fails on this body — the other checks (control
// chars, anti-destructive similarity) pass.
func onlyFutureImportViolation(relpath, instruction, old, new string) bool {
	if checkFutureImportPlacement(relpath, old, new) == nil {
		return false
	}
	if checkControlChars(new) != nil {
		return false
	}
	if old == new {
		return true
	}
	if checkAntiDestructive(relpath, instruction, old, new) != nil {
		return false
	}
	return true
}

// repairHintForGuard maps a guard-rejection detail to the hint appended to
// the single guard-repair retry prompt (spec 4.H's repair-hint table).
func repairHintForGuard(detail string) string {
	switch {
	case detail == "syntax_error_after_edit":
		return "syntax_error_after_edit: the previous edit left the file unparsable; produce a diff that keeps it syntactically valid"
	case detail == "future_import_removed" || detail == "future_import_moved":
		return fmt.Sprintf("%s: keep the `from __future__ import ...` line in the file's prelude", detail)
	default:
		return fmt.Sprintf("guard_blocked: %s", detail)
	}
}
