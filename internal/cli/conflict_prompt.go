package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/klauern/skillmirror/internal/engine"
	"github.com/klauern/skillmirror/internal/model"
	"github.com/klauern/skillmirror/internal/ui"
	"github.com/klauern/skillmirror/internal/ui/tui"
)

// resolveInteractively asks the user to pick the winning replica for a
// conflicted skill and re-syncs with the choice as forced source. On a
// terminal this uses the table picker; otherwise a numbered line prompt.
func (h *host) resolveInteractively(skill model.SkillRef, conflict engine.Conflict) error {
	var winner string
	var err error

	if term.IsTerminal(int(os.Stdout.Fd())) {
		winner, err = pickWinnerTUI(skill.Name, conflict)
	} else {
		winner, err = pickWinnerPrompt(skill.Name, conflict)
	}
	if err != nil {
		return err
	}
	if winner == "" {
		fmt.Println(ui.StatusSkipped(fmt.Sprintf("%s: conflict left unresolved", skill.Name)))
		return nil
	}

	outcome := h.coord.Resolve(skill, winner)
	if outcome.Err != nil {
		return outcome.Err
	}
	printOutcome(outcome)
	return nil
}

// pickWinnerTUI runs the BubbleTea picker.
func pickWinnerTUI(skillName string, conflict engine.Conflict) (string, error) {
	final, err := tui.Run(tui.NewConflictPicker(skillName, conflict))
	if err != nil {
		return "", fmt.Errorf("conflict picker failed: %w", err)
	}
	picker, ok := final.(tui.ConflictPickerModel)
	if !ok {
		return "", nil
	}
	return picker.Choice(), nil
}

// pickWinnerPrompt reads a numbered choice from stdin.
func pickWinnerPrompt(skillName string, conflict engine.Conflict) (string, error) {
	changed := conflict.Changed()

	fmt.Printf("\nConflict: %s\n", skillName)
	for i, r := range changed {
		hash := r.Hash
		if len(hash) > 12 {
			hash = hash[:12]
		}
		fmt.Printf("  %d) %s  %s  %s\n", i+1, r.Location, hash, r.Path)
	}
	fmt.Printf("Choose winner [1-%d], or empty to skip: ", len(changed))

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read choice: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", nil
	}

	n, err := strconv.Atoi(line)
	if err != nil || n < 1 || n > len(changed) {
		return "", fmt.Errorf("invalid choice %q", line)
	}
	return changed[n-1].Location, nil
}
