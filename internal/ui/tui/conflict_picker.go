package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/klauern/skillmirror/internal/engine"
)

// pickerKeyMap defines the key bindings for the conflict picker.
type pickerKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Quit   key.Binding
}

func defaultPickerKeyMap() pickerKeyMap {
	return pickerKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "choose winner"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q/esc", "cancel"),
		),
	}
}

// ConflictPickerModel lets the user choose the winning replica of a
// conflicted skill. The chosen location id is fed back to the engine as the
// forced source.
type ConflictPickerModel struct {
	skillName string
	replicas  []engine.ReplicaState
	table     table.Model
	keys      pickerKeyMap
	choice    string
	done      bool
}

// NewConflictPicker creates the picker for one conflict snapshot. Only
// replicas that diverged from the baseline are offered as winners.
func NewConflictPicker(skillName string, conflict engine.Conflict) ConflictPickerModel {
	replicas := conflict.Changed()

	rows := make([]table.Row, 0, len(replicas))
	for _, r := range replicas {
		hash := r.Hash
		if len(hash) > 12 {
			hash = hash[:12]
		}
		rows = append(rows, table.Row{r.Location, hash, r.Path})
	}

	columns := []table.Column{
		{Title: "Location", Width: 16},
		{Title: "Hash", Width: 14},
		{Title: "Path", Width: 48},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(len(rows)+1),
	)

	return ConflictPickerModel{
		skillName: skillName,
		replicas:  replicas,
		table:     t,
		keys:      defaultPickerKeyMap(),
	}
}

// Init implements tea.Model.
func (m ConflictPickerModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ConflictPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.keys.Select):
			if cursor := m.table.Cursor(); cursor >= 0 && cursor < len(m.replicas) {
				m.choice = m.replicas[cursor].Location
			}
			m.done = true
			return m, tea.Quit
		case key.Matches(keyMsg, m.keys.Quit):
			m.done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m ConflictPickerModel) View() string {
	if m.done {
		return ""
	}
	title := Styles.Title.Render(fmt.Sprintf("Conflict: %s", m.skillName))
	help := Styles.Help.Render("↑/↓ move · enter choose winner · esc cancel")
	return title + "\n\n" + m.table.View() + "\n" + help + "\n"
}

// Choice returns the selected winning location id, or "" if cancelled.
func (m ConflictPickerModel) Choice() string {
	return m.choice
}
