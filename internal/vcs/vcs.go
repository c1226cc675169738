// Package vcs wraps the thin git staging operations spec.md §1 names as an
// external collaborator with a named interface only: stage(path) and
// restore(path), plus a status listing used by the "git_status" command.
//
// Grounded on raphaelmansuy-adk-code/code_agent/pkg/workspace/vcs.go's
// exec.Command("git", ...) + cmd.Dir pattern.
package vcs

import (
	"fmt"
	"os/exec"
	"strings"
)

// maxOutputBytes bounds the captured stdout+stderr on a failing git
// invocation, per spec §6 ("truncated to 8000 bytes").
const maxOutputBytes = 8000

// Error wraps a failing git invocation with its combined output.
type Error struct {
	Op     string
	Output string
}

func (e *Error) Error() string {
	return fmt.Sprintf("git %s failed: %s", e.Op, e.Output)
}

// NotARepo reports whether the failure was git refusing to run because root
// isn't inside a git working tree, rather than some other failure (git
// missing, permission denied, ...).
func (e *Error) NotARepo() bool {
	return strings.Contains(e.Output, "not a git repository")
}

// Add stages rel under root via "git -C <root> add -- <rel>".
func Add(root, rel string) error {
	if err := run(root, "add", "--", rel); err != nil {
		return err
	}
	return nil
}

// Restore discards working-tree changes to rel via
// "git -C <root> restore -- <rel>".
func Restore(root, rel string) error {
	return run(root, "restore", "--", rel)
}

// Status lists changed paths via "git -C <root> status --porcelain=v1".
//
// The original daemon this spec was distilled from filters porcelain lines
// with "!= {}", which spec §9 flags as almost certainly a mistyped check
// (an empty-map comparison against a string can never be true, so the
// filter was a no-op); this implementation uses the standard non-empty
// string filter instead (SPEC_FULL.md §12.1).
func Status(root string) ([]string, error) {
	cmd := exec.Command("git", "-C", root, "status", "--porcelain=v1")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, &Error{Op: "status", Output: truncate(string(out))}
	}

	var lines []string
	for _, line := range strings.Split(string(out), "\n") {
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func run(root string, args ...string) error {
	fullArgs := append([]string{"-C", root}, args...)
	cmd := exec.Command("git", fullArgs...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return &Error{Op: strings.Join(args, " "), Output: truncate(string(out))}
	}
	return nil
}

func truncate(s string) string {
	if len(s) <= maxOutputBytes {
		return s
	}
	return s[:maxOutputBytes]
}
