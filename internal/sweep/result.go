package sweep

import (
	"fmt"
	"strings"

	"github.com/klauern/skillmirror/internal/engine"
	"github.com/klauern/skillmirror/internal/model"
)

// SkillOutcome is the result of syncing a single skill during a sweep.
type SkillOutcome struct {
	// Skill is the skill that was processed.
	Skill model.SkillRef

	// Outcome is the engine's outcome; nil when Err is set.
	Outcome engine.Outcome

	// Err holds the failure when the skill could not be synced. One skill's
	// failure never aborts the sweep.
	Err error
}

// Result contains the complete outcome of one sweep over the library.
type Result struct {
	// Skills contains the per-skill outcomes in processing order.
	Skills []SkillOutcome
}

// UpToDate returns skills whose replicas all matched the baseline.
func (r *Result) UpToDate() []SkillOutcome {
	return r.filter(func(o SkillOutcome) bool {
		_, ok := o.Outcome.(engine.UpToDate)
		return ok
	})
}

// Exported returns skills that received fresh exports.
func (r *Result) Exported() []SkillOutcome {
	return r.filter(func(o SkillOutcome) bool {
		_, ok := o.Outcome.(engine.ExportsCreated)
		return ok
	})
}

// Propagated returns skills whose single diverged replica was propagated.
func (r *Result) Propagated() []SkillOutcome {
	return r.filter(func(o SkillOutcome) bool {
		_, ok := o.Outcome.(engine.Propagated)
		return ok
	})
}

// Conflicted returns skills with unresolved conflicts.
func (r *Result) Conflicted() []SkillOutcome {
	return r.filter(func(o SkillOutcome) bool {
		_, ok := o.Outcome.(engine.Conflict)
		return ok
	})
}

// Failed returns skills whose sync returned an error.
func (r *Result) Failed() []SkillOutcome {
	return r.filter(func(o SkillOutcome) bool { return o.Err != nil })
}

// HasConflicts returns true if any skill is in conflict.
func (r *Result) HasConflicts() bool {
	return len(r.Conflicted()) > 0
}

// Success returns true if no skill failed.
func (r *Result) Success() bool {
	return len(r.Failed()) == 0
}

// filter returns outcomes matching the predicate.
func (r *Result) filter(keep func(SkillOutcome) bool) []SkillOutcome {
	var filtered []SkillOutcome
	for _, o := range r.Skills {
		if keep(o) {
			filtered = append(filtered, o)
		}
	}
	return filtered
}

// Summary returns a human-readable summary of the sweep.
func (r *Result) Summary() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Synced %d skill(s)\n", len(r.Skills)))
	sb.WriteString(fmt.Sprintf("  Up to date: %d\n", len(r.UpToDate())))
	sb.WriteString(fmt.Sprintf("  Exported:   %d\n", len(r.Exported())))
	sb.WriteString(fmt.Sprintf("  Propagated: %d\n", len(r.Propagated())))
	sb.WriteString(fmt.Sprintf("  Conflicts:  %d\n", len(r.Conflicted())))
	sb.WriteString(fmt.Sprintf("  Failed:     %d\n", len(r.Failed())))

	if r.HasConflicts() {
		sb.WriteString("\nConflicts requiring resolution:\n")
		for _, o := range r.Conflicted() {
			sb.WriteString(fmt.Sprintf("  - %s: %s\n", o.Skill.Name, o.Outcome))
		}
	}

	if !r.Success() {
		sb.WriteString("\nErrors:\n")
		for _, o := range r.Failed() {
			sb.WriteString(fmt.Sprintf("  - %s: %v\n", o.Skill.Name, o.Err))
		}
	}

	return sb.String()
}
