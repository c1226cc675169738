// Package auditlog records a JSONL trail of edit outcomes, so a running
// daemon's apply history can be reconstructed after the fact.
//
// Grounded on dm-vev-OpenClaude's internal/session/store.go (AppendEvent's
// open-append-marshal-write-newline shape), narrowed from a general session
// event store down to the single append-only edit trail SPEC_FULL.md §11.5
// names as a supplemented feature (carried over from original_source/, which
// keeps a similar per-edit log the distilled spec.md dropped).
package auditlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Entry is one recorded edit outcome.
type Entry struct {
	Time       time.Time `json:"time"`
	File       string    `json:"file"`
	OK         bool      `json:"ok"`
	Error      string    `json:"error,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	Written    bool      `json:"written,omitempty"`
	Staged     bool      `json:"staged,omitempty"`
}

// Log appends Entry records to a single JSONL file.
type Log struct {
	Path string
}

// New returns a Log writing to <root>/.shellgeist/audit.jsonl.
func New(root string) *Log {
	return &Log{Path: filepath.Join(root, ".shellgeist", "audit.jsonl")}
}

// Append writes one entry, creating the parent directory and file as
// needed. A failure to write the audit trail is never fatal to the caller's
// edit outcome — callers should log it and continue.
func (l *Log) Append(entry Entry) error {
	if err := os.MkdirAll(filepath.Dir(l.Path), 0o755); err != nil {
		return fmt.Errorf("create audit dir: %w", err)
	}
	file, err := os.OpenFile(l.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer file.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}
	if _, err := file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write audit entry: %w", err)
	}
	return nil
}
