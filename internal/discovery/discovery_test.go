package discovery

import (
	"testing"

	"github.com/klauern/skillmirror/internal/fsys"
	"github.com/klauern/skillmirror/internal/manifest"
)

func write(t *testing.T, fs fsys.FS, path, content string) {
	t.Helper()
	if err := fs.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestScanMissingRoot(t *testing.T) {
	fs := fsys.NewMemory()

	skills, err := Scan(fs, "/nowhere")
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if skills != nil {
		t.Errorf("skills = %v, want nil", skills)
	}
}

func TestScanFindsSkillsSortedByName(t *testing.T) {
	fs := fsys.NewMemory()
	write(t, fs, "/library/zeta/SKILL.md", "---\nname: Alpha Helper\ndescription: does alpha things\n---\nbody")
	write(t, fs, "/library/alpha/SKILL.md", "---\nname: Zulu Helper\n---\nbody")
	write(t, fs, "/library/not-a-skill/README.md", "no marker here")

	skills, err := Scan(fs, "/library")
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(skills) != 2 {
		t.Fatalf("found %d skills, want 2", len(skills))
	}

	// Sorted by front-matter name, not directory name
	if skills[0].Name != "Alpha Helper" || skills[1].Name != "Zulu Helper" {
		t.Errorf("names = [%s %s], want [Alpha Helper Zulu Helper]", skills[0].Name, skills[1].Name)
	}
	if skills[0].Dir != "/library/zeta" {
		t.Errorf("dir = %s, want /library/zeta", skills[0].Dir)
	}
	if skills[0].Description != "does alpha things" {
		t.Errorf("description = %q", skills[0].Description)
	}
}

func TestScanNameFallsBackToDirectory(t *testing.T) {
	fs := fsys.NewMemory()
	write(t, fs, "/library/plain/SKILL.md", "no front matter at all")

	skills, err := Scan(fs, "/library")
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(skills) != 1 {
		t.Fatalf("found %d skills, want 1", len(skills))
	}
	if skills[0].Name != "plain" {
		t.Errorf("name = %q, want plain", skills[0].Name)
	}
}

func TestScanIDFromManifestSurvivesRename(t *testing.T) {
	fs := fsys.NewMemory()
	write(t, fs, "/library/demo/SKILL.md", "body")
	if err := manifest.Save(fs, manifest.New("stable-id", manifest.CanonicalTool, true, "h"), "/library/demo"); err != nil {
		t.Fatalf("save: %v", err)
	}

	skills, err := Scan(fs, "/library")
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(skills) != 1 {
		t.Fatalf("found %d skills, want 1", len(skills))
	}
	if skills[0].ID != "stable-id" {
		t.Errorf("id = %q, want stable-id", skills[0].ID)
	}

	// The id follows the manifest when the directory is renamed
	if err := fs.Rename("/library/demo", "/library/renamed"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	skills, err = Scan(fs, "/library")
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if skills[0].ID != "stable-id" {
		t.Errorf("id after rename = %q, want stable-id", skills[0].ID)
	}
}

func TestScanAssignsFreshIDWithoutManifest(t *testing.T) {
	fs := fsys.NewMemory()
	write(t, fs, "/library/a/SKILL.md", "body")
	write(t, fs, "/library/b/SKILL.md", "body")

	skills, err := Scan(fs, "/library")
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(skills) != 2 {
		t.Fatalf("found %d skills, want 2", len(skills))
	}
	if skills[0].ID == "" || skills[1].ID == "" {
		t.Error("assigned ids must be non-empty")
	}
	if skills[0].ID == skills[1].ID {
		t.Error("distinct skills got the same id")
	}
}

func TestParseFrontMatter(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantName string
	}{
		{"well formed", "---\nname: Demo\n---\nbody", "Demo"},
		{"leading whitespace", "\n  ---\nname: Demo\n---\n", "Demo"},
		{"unterminated block", "---\nname: Demo\n", ""},
		{"no block", "just markdown", ""},
		{"malformed yaml", "---\nname: [unclosed\n---\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm := parseFrontMatter([]byte(tt.content))
			if fm.Name != tt.wantName {
				t.Errorf("name = %q, want %q", fm.Name, tt.wantName)
			}
		})
	}
}
