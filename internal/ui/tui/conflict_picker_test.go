package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/klauern/skillmirror/internal/engine"
)

func testConflict() engine.Conflict {
	return engine.Conflict{
		SkillID: "skill-demo",
		Replicas: []engine.ReplicaState{
			{Location: "library", Path: "/library/demo", Hash: "aaaa1111bbbb2222", ChangedFromBaseline: true},
			{Location: "codex", Path: "/tools/codex/skills/demo", Hash: "cccc3333dddd4444", ChangedFromBaseline: true},
			{Location: "cursor", Path: "/tools/cursor/skills/demo", Hash: "unchanged", ChangedFromBaseline: false},
		},
	}
}

func TestPickerOffersOnlyChangedReplicas(t *testing.T) {
	m := NewConflictPicker("demo", testConflict())

	if len(m.replicas) != 2 {
		t.Fatalf("offered %d replicas, want 2", len(m.replicas))
	}
	for _, r := range m.replicas {
		if !r.ChangedFromBaseline {
			t.Errorf("unchanged replica %s offered as winner", r.Location)
		}
	}
}

func TestPickerSelectReturnsCursorRow(t *testing.T) {
	m := NewConflictPicker("demo", testConflict())

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	updated, cmd := updated.(ConflictPickerModel).Update(tea.KeyMsg{Type: tea.KeyEnter})

	picker := updated.(ConflictPickerModel)
	if picker.Choice() != "codex" {
		t.Errorf("choice = %q, want codex", picker.Choice())
	}
	if cmd == nil {
		t.Error("select did not quit the program")
	}
}

func TestPickerCancelReturnsEmptyChoice(t *testing.T) {
	m := NewConflictPicker("demo", testConflict())

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	picker := updated.(ConflictPickerModel)
	if picker.Choice() != "" {
		t.Errorf("choice after cancel = %q, want empty", picker.Choice())
	}
	if cmd == nil {
		t.Error("cancel did not quit the program")
	}
}

func TestPickerViewShowsSkillAndTruncatedHashes(t *testing.T) {
	m := NewConflictPicker("demo", testConflict())

	view := m.View()
	if !strings.Contains(view, "demo") {
		t.Error("view does not name the conflicted skill")
	}
	if !strings.Contains(view, "aaaa1111bbbb") {
		t.Error("view does not show the truncated hash")
	}
	if strings.Contains(view, "aaaa1111bbbb2222") {
		t.Error("view shows the full hash, want 12-char truncation")
	}

	// After selection the view collapses to nothing
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if got := updated.(ConflictPickerModel).View(); got != "" {
		t.Errorf("post-selection view = %q, want empty", got)
	}
}
