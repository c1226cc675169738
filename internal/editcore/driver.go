package editcore

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Completer is the external model-client interface spec.md §1 treats as an
// out-of-scope collaborator: a single synchronous completion call.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// ClientFactory builds a Completer for a named profile ("fast" | "smart").
type ClientFactory func(profile string) (Completer, error)

// Result is the tagged edit-plan outcome surfaced to callers, matching
// spec.md §3's "Edit-plan result": success carries file/patch/diff (and,
// once applied, written/staged); failure carries error/detail.
type Result struct {
	OK      bool
	File    string
	Patch   string
	Diff    string
	Written bool
	Staged  bool
	Error   string
	Detail  string
}

// Driver runs the two-round-diff-plus-full-replace-fallback edit pipeline
// (spec 4.H), generalizing internal/agent/agent.go's Runner.Run turn-loop
// shape (bounded iteration, early return on success) to this fixed protocol.
type Driver struct {
	NewClient ClientFactory
}

// clientCache is the per-invocation model-client cache spec §9's design
// note requires: never a package-level global, handed to every helper that
// may call the model.
type clientCache struct {
	factory ClientFactory
	clients map[string]Completer
}

func newClientCache(factory ClientFactory) *clientCache {
	return &clientCache{factory: factory, clients: map[string]Completer{}}
}

func (c *clientCache) get(profile string) (Completer, error) {
	if client, ok := c.clients[profile]; ok {
		return client, nil
	}
	client, err := c.factory(profile)
	if err != nil {
		return nil, err
	}
	c.clients[profile] = client
	return client, nil
}

// EditPlan resolves path under root, reads it, and runs the full edit
// pipeline, returning a preview Result (it never writes to disk — see
// ApplyDiff/ApplyFullReplace in handlers.go for the committing entry
// points).
func (d *Driver) EditPlan(ctx context.Context, relpath, instruction, root string) Result {
	abs, err := ResolvePath(root, relpath)
	if err != nil {
		return resultFromErr(relpath, err)
	}

	old, err := readFileOrEmpty(abs)
	if err != nil {
		return Result{OK: false, File: relpath, Error: string(KindInternalError), Detail: err.Error()}
	}

	cache := newClientCache(d.NewClient)
	outcome, _ := d.runPipeline(ctx, relpath, instruction, old, cache)
	return outcome.toResult(relpath)
}

// runPipeline executes rounds 1-2 of the diff attempt, then falls back to
// full-replace if neither round produces an applicable diff; it returns the
// finalize outcome plus the new file contents (EditPlan keeps only the
// outcome).
func (d *Driver) runPipeline(ctx context.Context, relpath, instruction, old string, cache *clientCache) (finalizeOutcome, string) {
	reason := ""
	var applied, patch string
	diffSucceeded := false

	for round := 1; round <= 2; round++ {
		client, err := cache.get(profileForDriver)
		if err != nil {
			return finalizeOutcome{ok: false, errKind: KindHTTPError, detail: err.Error()}, ""
		}

		system, user := buildDiffPrompt(relpath, instruction, old, reason)
		raw, err := client.Complete(ctx, system, user)
		if err != nil {
			return finalizeOutcome{ok: false, errKind: KindHTTPError, detail: err.Error()}, ""
		}

		salvaged := LoadObj(raw)
		diffRaw, _ := salvaged["diff"].(string)
		normalized := Normalize(diffRaw)
		if !strings.Contains(normalized, "@@") {
			reason = "missing_diff"
			continue
		}

		if old == "" {
			if verr := ValidateEmptyOldDiff(normalized); verr != nil {
				reason = fmt.Sprintf("bad_diff_empty_old: %s", verr.(*Error).Detail)
				continue
			}
		}

		newText, aerr := Apply(old, normalized)
		if aerr != nil {
			reason = fmt.Sprintf("patch_apply_failed: %s", aerr.(*Error).Detail)
			continue
		}

		applied, patch = newText, normalized
		diffSucceeded = true
		break
	}

	if !diffSucceeded {
		return d.fullReplaceFallback(ctx, relpath, instruction, old, cache)
	}

	outcome := finalize(relpath, instruction, old, applied, patch)
	if outcome.ok || outcome.errKind != KindGuardBlocked {
		return outcome, outcome.new
	}

	return d.guardRepairRetry(ctx, relpath, instruction, old, patch, outcome, cache)
}

// guardRepairRetry implements the one additional "guard repair" model call
// per round (spec 4.H step 6). Per spec §9's noted arguable behavior, a
// "rewrite too violent" first violation is always surfaced verbatim even if
// the repair retry would have produced a passing result.
func (d *Driver) guardRepairRetry(ctx context.Context, relpath, instruction, old, firstPatch string, first finalizeOutcome, cache *clientCache) (finalizeOutcome, string) {
	surfaceFirstRegardless := strings.Contains(first.detail, "rewrite too violent")

	hint := repairHintForGuard(first.detail)
	client, err := cache.get(profileForDriver)
	if err != nil {
		return first, ""
	}
	system, user := buildDiffPrompt(relpath, instruction, old, hint)
	raw, err := client.Complete(ctx, system, user)
	if err != nil {
		return first, ""
	}

	salvaged := LoadObj(raw)
	diffRaw, _ := salvaged["diff"].(string)
	normalized := Normalize(diffRaw)
	if !strings.Contains(normalized, "@@") {
		return first, ""
	}
	if old == "" {
		if verr := ValidateEmptyOldDiff(normalized); verr != nil {
			return first, ""
		}
	}
	newText, aerr := Apply(old, normalized)
	if aerr != nil {
		return first, ""
	}

	retry := finalize(relpath, instruction, old, newText, normalized)
	if surfaceFirstRegardless {
		return first, ""
	}
	if retry.ok {
		return retry, retry.new
	}
	return retry, ""
}

// fullReplaceFallback asks the model for {"content": "<full file>"} and
// finalizes it; this is the terminal path (spec 4.H), its rejection is
// returned verbatim.
func (d *Driver) fullReplaceFallback(ctx context.Context, relpath, instruction, old string, cache *clientCache) (finalizeOutcome, string) {
	client, err := cache.get(profileForDriver)
	if err != nil {
		return finalizeOutcome{ok: false, errKind: KindHTTPError, detail: err.Error()}, ""
	}

	system, user := buildFullReplacePrompt(relpath, instruction, old)
	raw, err := client.Complete(ctx, system, user)
	if err != nil {
		return finalizeOutcome{ok: false, errKind: KindHTTPError, detail: err.Error()}, ""
	}

	salvaged := LoadObj(raw)
	content, _ := salvaged["content"].(string)
	patch := BuildDiff(old, content)

	outcome := finalize(relpath, instruction, old, content, patch)
	return outcome, outcome.new
}

// profileForDriver is the model profile used throughout the edit pipeline.
// Spec 4.H names it the "smart" model explicitly for round 1; ShellGeist
// uses it uniformly for every driver call (repair rounds and full-replace
// fallback alike), since the spec never calls out a different profile for
// those steps. The "fast" profile remains available via ClientFactory for
// other commands (e.g. a future "plan" implementation).
const profileForDriver = "smart"

// readFileOrEmpty reads path, treating a missing file as an empty string
// (the spec's "old == \"\"" case covers both "file doesn't exist yet" and
// "file exists and is empty").
func readFileOrEmpty(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return string(data), nil
}

func resultFromErr(relpath string, err error) Result {
	if e, ok := err.(*Error); ok {
		return Result{OK: false, File: relpath, Error: string(e.Kind), Detail: e.Detail}
	}
	return Result{OK: false, File: relpath, Error: string(KindInternalError), Detail: err.Error()}
}
