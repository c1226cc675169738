package editcore

import (
	"os"
	"strings"

	"github.com/shellgeist/shellgeist/internal/vcs"
)

// ApplyDiff commits a caller-supplied unified diff against relpath under
// root: normalize, empty-old validation, apply, Finalize (autofix/probe/
// guards), then an atomic write and optional backup/VCS stage (spec 4.I).
// Unlike EditPlan, this path never calls the model — the diff already came
// from a prior edit-plan round.
func ApplyDiff(relpath, patch, root, instruction string, stage, backup bool) Result {
	if !strings.Contains(patch, "@@") {
		return Result{OK: false, File: relpath, Error: string(KindInvalidPatch), Detail: "patch has no hunks"}
	}

	abs, err := ResolvePath(root, relpath)
	if err != nil {
		return resultFromErr(relpath, err)
	}

	if ferr := requireExistingFile(abs); ferr != nil {
		return Result{OK: false, File: relpath, Error: string(KindFileNotFound), Detail: ferr.Error()}
	}

	old, rerr := readFileOrEmpty(abs)
	if rerr != nil {
		return Result{OK: false, File: relpath, Error: string(KindInternalError), Detail: rerr.Error()}
	}

	normalized := Normalize(patch)
	if old == "" {
		if verr := ValidateEmptyOldDiff(normalized); verr != nil {
			e := verr.(*Error)
			return Result{OK: false, File: relpath, Error: string(e.Kind), Detail: e.Detail}
		}
	}

	newText, aerr := Apply(old, normalized)
	if aerr != nil {
		e := aerr.(*Error)
		return Result{OK: false, File: relpath, Error: string(e.Kind), Detail: e.Detail}
	}

	outcome := finalize(relpath, instruction, old, newText, normalized)
	if !outcome.ok {
		return outcome.toResult(relpath)
	}

	return commit(abs, relpath, root, outcome, stage, backup)
}

// ApplyFullReplace commits a caller-supplied full file body against relpath
// under root, running the same Finalize + write + stage sequence as
// ApplyDiff.
func ApplyFullReplace(relpath, content, root, instruction string, stage, backup bool) Result {
	abs, err := ResolvePath(root, relpath)
	if err != nil {
		return resultFromErr(relpath, err)
	}

	if ferr := requireExistingFile(abs); ferr != nil {
		return Result{OK: false, File: relpath, Error: string(KindFileNotFound), Detail: ferr.Error()}
	}

	old, rerr := readFileOrEmpty(abs)
	if rerr != nil {
		return Result{OK: false, File: relpath, Error: string(KindInternalError), Detail: rerr.Error()}
	}

	patch := BuildDiff(old, content)
	outcome := finalize(relpath, instruction, old, content, patch)
	if !outcome.ok {
		return outcome.toResult(relpath)
	}

	return commit(abs, relpath, root, outcome, stage, backup)
}

// requireExistingFile enforces spec 4.I's "require the file to exist"
// precondition for both Apply handlers, rejecting a path before
// readFileOrEmpty's missing-file-as-empty-string fallback would otherwise
// let a commit silently create it.
func requireExistingFile(abs string) error {
	_, err := os.Stat(abs)
	return err
}

// commit writes the finalized body to disk atomically, optionally staging
// it via vcs.Add. A write failure is reported as internal_error. A stage
// failure is not reported as an error: the write is already durable on
// disk and the caller sees OK:true, Written:true, Staged:false.
func commit(abs, relpath, root string, outcome finalizeOutcome, stage, backup bool) Result {
	if err := WriteAtomic(abs, []byte(outcome.new), backup); err != nil {
		return Result{OK: false, File: relpath, Error: string(KindInternalError), Detail: err.Error()}
	}

	result := Result{
		OK:      true,
		File:    relpath,
		Patch:   outcome.patch,
		Diff:    WithFileHeaders(relpath, outcome.patch),
		Written: true,
	}

	if stage {
		if err := vcs.Add(root, relpath); err == nil {
			result.Staged = true
		}
	}

	return result
}
