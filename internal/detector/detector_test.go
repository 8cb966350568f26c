package detector

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauern/skillmirror/internal/util"
)

func TestDetectUnknownTool(t *testing.T) {
	if _, found := Detect("vim"); found {
		t.Error("Detect() found an unknown tool")
	}
}

func TestDetectAbsentTool(t *testing.T) {
	home := util.CreateTempDir(t)
	t.Setenv("HOME", home)

	if _, found := Detect(ToolClaude); found {
		t.Error("Detect() found claude without ~/.claude")
	}
}

func TestDetectByConfigDir(t *testing.T) {
	home := util.CreateTempDir(t)
	t.Setenv("HOME", home)
	if err := os.MkdirAll(filepath.Join(home, ".claude"), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	d, found := Detect(ToolClaude)
	if !found {
		t.Fatal("Detect() did not find claude")
	}
	util.AssertEqual(t, d.Location.ID, ToolClaude)
	util.AssertEqual(t, d.Location.Name, "Claude")
	util.AssertEqual(t, d.Location.ActiveRoot, filepath.Join(home, ".claude", "skills"))
	util.AssertEqual(t, d.Location.DisabledRoot, filepath.Join(home, ".claude", "skills")+"-disabled")
	util.AssertEqual(t, d.Source, "filesystem")
}

func TestDetectCodexHonorsConfigOverride(t *testing.T) {
	home := util.CreateTempDir(t)
	t.Setenv("HOME", home)
	util.WriteFile(t, filepath.Join(home, ".codex", "config.toml"), `
[skills]
path = "~/my-skills"
`)

	d, found := Detect(ToolCodex)
	if !found {
		t.Fatal("Detect() did not find codex")
	}
	util.AssertEqual(t, d.Location.ActiveRoot, filepath.Join(home, "my-skills"))
	util.AssertEqual(t, d.Source, "tool_config")
}

func TestCodexSkillsDirFallbacks(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{"no config file", ""},
		{"no skills section", "model = \"gpt\"\n"},
		{"empty path", "[skills]\npath = \"\"\n"},
		{"unparsable", "not toml at all ==="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configDir := util.CreateTempDir(t)
			if tt.toml != "" {
				util.WriteFile(t, filepath.Join(configDir, "config.toml"), tt.toml)
			}

			got := codexSkillsDir(configDir)
			util.AssertEqual(t, got, filepath.Join(configDir, "skills"))
		})
	}
}

func TestDetectAll(t *testing.T) {
	home := util.CreateTempDir(t)
	t.Setenv("HOME", home)
	for _, d := range []string{".claude", ".cursor"} {
		if err := os.MkdirAll(filepath.Join(home, d), 0o750); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}

	detected := DetectAll()
	if len(detected) != 2 {
		t.Fatalf("detected %d tools, want 2", len(detected))
	}
	util.AssertEqual(t, detected[0].Location.ID, ToolClaude)
	util.AssertEqual(t, detected[1].Location.ID, ToolCursor)
}
