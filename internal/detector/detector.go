// Package detector proposes location descriptors for known tool
// installations. It scans the filesystem for each tool's skills directory and
// reads tool-native configuration where one exists, so `locations detect` can
// offer ready-made entries instead of making the user type paths.
package detector

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/klauern/skillmirror/internal/logging"
	"github.com/klauern/skillmirror/internal/model"
	"github.com/klauern/skillmirror/internal/util"
)

// Known tool ids.
const (
	ToolClaude = "claude"
	ToolCodex  = "codex"
	ToolCursor = "cursor"
)

// Detected pairs a proposed location with how it was found.
type Detected struct {
	Location model.Location
	// Source describes how the tool was detected: "filesystem" or
	// "tool_config".
	Source string
}

var titleCaser = cases.Title(language.English)

// DetectAll probes every known tool and returns a descriptor for each one
// found. Tools whose skills directory does not exist yet are still proposed
// when their configuration directory is present.
func DetectAll() []Detected {
	var detected []Detected
	for _, id := range []string{ToolClaude, ToolCodex, ToolCursor} {
		if d, found := Detect(id); found {
			detected = append(detected, d)
		}
	}
	return detected
}

// Detect probes a single tool id.
func Detect(id string) (Detected, bool) {
	home := util.HomeDir()

	var configDir, skillsDir string
	switch id {
	case ToolClaude:
		configDir = filepath.Join(home, ".claude")
		skillsDir = filepath.Join(configDir, "skills")
	case ToolCodex:
		configDir = filepath.Join(home, ".codex")
		skillsDir = codexSkillsDir(configDir)
	case ToolCursor:
		configDir = filepath.Join(home, ".cursor")
		skillsDir = filepath.Join(configDir, "skills")
	default:
		return Detected{}, false
	}

	source := "filesystem"
	if id == ToolCodex && skillsDir != filepath.Join(configDir, "skills") {
		source = "tool_config"
	}

	if !pathExists(configDir) {
		return Detected{}, false
	}

	logging.Debug("detected tool",
		logging.Location(id),
		logging.Path(skillsDir),
	)

	return Detected{
		Location: model.Location{
			ID:           id,
			Name:         titleCaser.String(id),
			ActiveRoot:   skillsDir,
			DisabledRoot: skillsDir + "-disabled",
		},
		Source: source,
	}, true
}

// codexConfig is the subset of codex's config.toml we read.
type codexConfig struct {
	Skills struct {
		Path string `toml:"path"`
	} `toml:"skills"`
}

// codexSkillsDir returns codex's skills directory, honoring a `[skills] path`
// override in its config.toml when present.
func codexSkillsDir(configDir string) string {
	fallback := filepath.Join(configDir, "skills")

	var cfg codexConfig
	if _, err := toml.DecodeFile(filepath.Join(configDir, "config.toml"), &cfg); err != nil {
		return fallback
	}
	if cfg.Skills.Path == "" {
		return fallback
	}
	return util.ExpandPath(cfg.Skills.Path)
}

// pathExists checks if a path exists on disk.
func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
