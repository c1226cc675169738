package editcore

import (
	"os"
	"os/exec"
	"strings"
)

// ProbeSyntax implements the language-specific compilability check of spec
// 4.F. For .py files it shells out to "python3 -m py_compile" against a
// temp file holding new; for every other extension it passes unconditionally
// — this is deliberately the only language-aware gate in the pipeline.
//
// No Go library embeds a Python parser/compiler (see DESIGN.md); shelling
// out to the interpreter is the same os/exec idiom the rest of the pipeline
// already uses for git, just targeting a different binary.
func ProbeSyntax(relpath, new string) error {
	if !strings.HasSuffix(relpath, ".py") {
		return nil
	}

	tmp, err := os.CreateTemp("", "shellgeist-probe-*.py")
	if err != nil {
		return Errf(KindInternalError, "create probe temp file: %v", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.WriteString(new); err != nil {
		tmp.Close()
		return Errf(KindInternalError, "write probe temp file: %v", err)
	}
	if err := tmp.Close(); err != nil {
		return Errf(KindInternalError, "close probe temp file: %v", err)
	}

	cmd := exec.Command("python3", "-m", "py_compile", tmpName)
	if out, err := cmd.CombinedOutput(); err != nil {
		_ = out
		return Err(KindGuardBlocked, "syntax_error_after_edit")
	}
	return nil
}
