package engine

import (
	"fmt"
	"strings"
)

// Outcome is the result of one SyncSkill invocation. It is a closed set:
// UpToDate, ExportsCreated, Propagated, or Conflict.
type Outcome interface {
	outcome()
	String() string
}

// UpToDate means every replica matched the baseline and nothing was missing.
type UpToDate struct{}

// ExportsCreated means no replica had changed but one or more enabled
// locations had no replica; fresh exports were created for them.
type ExportsCreated struct {
	// Locations lists the location ids that received a new export.
	Locations []string
}

// Propagated means exactly one replica (or a forced source) had diverged from
// the baseline and its content now stands everywhere.
type Propagated struct {
	// Source is the winning location id, or the canonical sentinel when the
	// library copy itself won.
	Source string
}

// Conflict means two or more replicas diverged from the baseline
// simultaneously. No filesystem mutation was performed; the snapshot is
// surfaced for a human decision, which comes back as ForceSource on a
// follow-up call.
type Conflict struct {
	// SkillID identifies the conflicted skill.
	SkillID string
	// Replicas snapshots every reachable replica, canonical included.
	Replicas []ReplicaState
}

// ReplicaState is one replica's snapshot inside a Conflict.
type ReplicaState struct {
	// Location is the owning location id, or the canonical sentinel.
	Location string `json:"location"`
	// Path is the replica directory.
	Path string `json:"path"`
	// Hash is the replica's current content digest.
	Hash string `json:"hash"`
	// ChangedFromBaseline reports whether the replica diverged from the
	// baseline recorded at the start of the pass.
	ChangedFromBaseline bool `json:"changedFromBaseline"`
}

func (UpToDate) outcome()       {}
func (ExportsCreated) outcome() {}
func (Propagated) outcome()     {}
func (Conflict) outcome()       {}

func (UpToDate) String() string {
	return "up to date"
}

func (o ExportsCreated) String() string {
	return fmt.Sprintf("exported to %s", strings.Join(o.Locations, ", "))
}

func (o Propagated) String() string {
	return fmt.Sprintf("propagated from %s", o.Source)
}

func (o Conflict) String() string {
	var changed []string
	for _, r := range o.Replicas {
		if r.ChangedFromBaseline {
			changed = append(changed, r.Location)
		}
	}
	return fmt.Sprintf("conflict between %s", strings.Join(changed, ", "))
}

// Changed returns the snapshot entries that diverged from baseline.
func (o Conflict) Changed() []ReplicaState {
	var changed []ReplicaState
	for _, r := range o.Replicas {
		if r.ChangedFromBaseline {
			changed = append(changed, r)
		}
	}
	return changed
}
