// Package handlers dispatches decoded daemon requests (spec §6) to their
// command implementations: ping, git staging, the safe-edit pipeline, and
// the not-yet-implemented plan/shell stubs.
//
// Command routing by a "command" string field is grounded on
// dm-vev-OpenClaude's cmd/claude/stream_json_input.go
// (handleStreamJSONPayload's switch on payload["type"]); the unimplemented
// stub responses are grounded on internal/tools/unsupported.go's fixed
// "not supported" result shape.
package handlers

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/shellgeist/shellgeist/internal/auditlog"
	"github.com/shellgeist/shellgeist/internal/config"
	"github.com/shellgeist/shellgeist/internal/editcore"
	"github.com/shellgeist/shellgeist/internal/llmclient"
	"github.com/shellgeist/shellgeist/internal/vcs"
)

// Deps bundles everything a Dispatch call needs, built once at daemon
// startup and closed over by the Handle func passed to daemon.Server.
type Deps struct {
	Root     string
	Settings config.Settings
	Profiles map[string]config.ModelProfile
	Audit    *auditlog.Log
	Log      zerolog.Logger
}

// Dispatch routes one decoded request to its command handler.
func Dispatch(ctx context.Context, deps Deps, req map[string]any) map[string]any {
	command, _ := req["command"].(string)
	switch command {
	case "ping":
		return map[string]any{"ok": true, "pong": true}
	case "git_status":
		return handleGitStatus(deps, req)
	case "git_add":
		return handleGitAdd(deps, req)
	case "git_restore":
		return handleGitRestore(deps, req)
	case "edit":
		return handleEdit(ctx, deps, req)
	case "edit_apply":
		return handleEditApply(deps, req)
	case "edit_apply_full":
		return handleEditApplyFull(deps, req)
	case "plan", "shell":
		return map[string]any{"ok": false, "error": "not_implemented"}
	default:
		return map[string]any{"ok": false, "error": "unknown_cmd"}
	}
}

// handleGitStatus mirrors the original daemon's shape (protocol.py:58-59):
// being outside a git working tree is not a failure, just inside_git:false.
func handleGitStatus(deps Deps, req map[string]any) map[string]any {
	lines, err := vcs.Status(deps.Root)
	if err != nil {
		if vcsErr, ok := err.(*vcs.Error); ok && vcsErr.NotARepo() {
			return map[string]any{"ok": true, "inside_git": false}
		}
		return map[string]any{"ok": false, "error": string(editcore.KindInternalError), "detail": err.Error()}
	}
	return map[string]any{"ok": true, "inside_git": true, "lines": lines}
}

func handleGitAdd(deps Deps, req map[string]any) map[string]any {
	path, _ := req["path"].(string)
	if err := vcs.Add(deps.Root, path); err != nil {
		return map[string]any{"ok": false, "error": "git_add_failed", "detail": err.Error()}
	}
	return map[string]any{"ok": true}
}

func handleGitRestore(deps Deps, req map[string]any) map[string]any {
	path, _ := req["path"].(string)
	if err := vcs.Restore(deps.Root, path); err != nil {
		return map[string]any{"ok": false, "error": "git_restore_failed", "detail": err.Error()}
	}
	return map[string]any{"ok": true}
}

// handleEdit runs EditPlan (spec 4.H): a model-backed preview that never
// writes to disk.
func handleEdit(ctx context.Context, deps Deps, req map[string]any) map[string]any {
	path, _ := req["path"].(string)
	instruction, _ := req["instruction"].(string)

	driver := &editcore.Driver{NewClient: clientFactory(deps.Profiles)}
	result := driver.EditPlan(ctx, path, instruction, deps.Root)

	deps.logAudit(result)
	return resultEnvelope(result)
}

// handleEditApply commits a caller-supplied diff (spec 4.I).
func handleEditApply(deps Deps, req map[string]any) map[string]any {
	path, _ := req["path"].(string)
	patch, _ := req["patch"].(string)
	instruction, _ := req["instruction"].(string)
	stage := boolOr(req["stage"], deps.Settings.Stage)
	backup := boolOr(req["backup"], deps.Settings.Backup)

	result := editcore.ApplyDiff(path, patch, deps.Root, instruction, stage, backup)
	deps.logAudit(result)
	return resultEnvelope(result)
}

// handleEditApplyFull commits a caller-supplied full file body (spec 4.I).
func handleEditApplyFull(deps Deps, req map[string]any) map[string]any {
	path, _ := req["path"].(string)
	content, _ := req["content"].(string)
	instruction, _ := req["instruction"].(string)
	stage := boolOr(req["stage"], deps.Settings.Stage)
	backup := boolOr(req["backup"], deps.Settings.Backup)

	result := editcore.ApplyFullReplace(path, content, deps.Root, instruction, stage, backup)
	deps.logAudit(result)
	return resultEnvelope(result)
}

func (d Deps) logAudit(result editcore.Result) {
	if d.Audit == nil {
		return
	}
	entry := auditlog.Entry{
		Time:    time.Now(),
		File:    result.File,
		OK:      result.OK,
		Error:   result.Error,
		Detail:  result.Detail,
		Written: result.Written,
		Staged:  result.Staged,
	}
	if err := d.Audit.Append(entry); err != nil {
		d.Log.Warn().Err(err).Msg("audit log append failed")
	}
}

func resultEnvelope(r editcore.Result) map[string]any {
	if r.OK {
		return map[string]any{
			"ok":      true,
			"file":    r.File,
			"patch":   r.Patch,
			"diff":    r.Diff,
			"written": r.Written,
			"staged":  r.Staged,
		}
	}
	env := map[string]any{"ok": false, "error": r.Error, "file": r.File}
	if r.Detail != "" {
		env["detail"] = r.Detail
	}
	if r.Patch != "" {
		env["patch"] = r.Patch
	}
	return env
}

func boolOr(v any, fallback bool) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return fallback
}

// clientFactory builds an editcore.Completer for a named profile, resolving
// it against the loaded model profiles.
func clientFactory(profiles map[string]config.ModelProfile) editcore.ClientFactory {
	return func(profile string) (editcore.Completer, error) {
		p, ok := profiles[profile]
		if !ok {
			p = profiles[config.ProfileSmart]
		}
		return llmclient.New(p.BaseURL, p.APIKey, p.Model, p.Timeout), nil
	}
}
