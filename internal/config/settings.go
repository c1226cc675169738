package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Settings are the daemon's layered operating defaults (SPEC_FULL.md §10.2),
// generalizing the teacher's Claude-settings merge
// (internal/config/settings.go's LoadClaudeSettings) to ShellGeist's own
// schema.
type Settings struct {
	// Backup controls whether a ".shellgeist.bak" sibling is written before
	// an apply-diff/apply-full-replace commit.
	Backup bool `json:"backup"`
	// Stage controls whether a successful apply stages the file via VCS.
	Stage bool `json:"stage"`
	// SocketPath overrides the default Unix socket path.
	SocketPath string `json:"socketPath"`
}

// DefaultSettings returns the baseline before any settings.json is merged.
func DefaultSettings() Settings {
	return Settings{Backup: true, Stage: false, SocketPath: ""}
}

type settingsSource struct {
	path string
}

// LoadSettings merges user, project, and local settings.json files (in that
// order, each overriding the last), generalizing settingsPaths/mergeSettings
// from the teacher. Missing files are ignored, matching the teacher's
// behavior.
func LoadSettings(cwd string) (Settings, error) {
	merged := DefaultSettings()

	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	projectRoot := findProjectRoot(cwd)

	sources := []settingsSource{
		{filepath.Join(home, ".shellgeist", "settings.json")},
		{filepath.Join(projectRoot, ".shellgeist", "settings.json")},
		{filepath.Join(cwd, ".shellgeist", "settings.json")},
	}

	for _, src := range sources {
		if src.path == "" {
			continue
		}
		overlay, ok, err := readSettingsFile(src.path)
		if err != nil {
			return Settings{}, err
		}
		if !ok {
			continue
		}
		merged = mergeSettings(merged, overlay)
	}

	return merged, nil
}

// partialSettings tracks which fields an overlay file actually set, so a
// missing key in an overlay doesn't clobber an earlier layer's value.
type partialSettings struct {
	Backup     *bool   `json:"backup"`
	Stage      *bool   `json:"stage"`
	SocketPath *string `json:"socketPath"`
}

func readSettingsFile(path string) (partialSettings, bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return partialSettings{}, false, nil
		}
		return partialSettings{}, false, err
	}
	var p partialSettings
	if err := json.Unmarshal(raw, &p); err != nil {
		return partialSettings{}, false, err
	}
	return p, true, nil
}

func mergeSettings(base Settings, overlay partialSettings) Settings {
	if overlay.Backup != nil {
		base.Backup = *overlay.Backup
	}
	if overlay.Stage != nil {
		base.Stage = *overlay.Stage
	}
	if overlay.SocketPath != nil {
		base.SocketPath = *overlay.SocketPath
	}
	return base
}

// findProjectRoot locates the nearest parent directory containing .git,
// falling back to cwd, mirroring the teacher's findProjectRoot.
func findProjectRoot(cwd string) string {
	current := filepath.Clean(cwd)
	for {
		if _, err := os.Stat(filepath.Join(current, ".git")); err == nil {
			return current
		}
		parent := filepath.Dir(current)
		if parent == current {
			return cwd
		}
		current = parent
	}
}
