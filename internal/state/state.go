// Package state persists the host-side sync state that lives outside the
// engine: which locations each skill is enabled for, and pending conflict
// resolutions awaiting the next sweep.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"github.com/klauern/skillmirror/internal/util"
)

const stateVersion = "1.0"

// State is the versioned on-disk sync state. A corrupted or version-skewed
// file starts fresh rather than failing.
type State struct {
	Version string `json:"version"`
	// Enabled maps skill ids to the location ids the skill is enabled for.
	Enabled map[string][]string `json:"enabled"`
	// Resolutions maps skill ids to the location id a human chose to win a
	// conflict. Consumed (and cleared) by the next sweep.
	Resolutions map[string]string `json:"resolutions,omitempty"`

	path string
}

// Load reads the state from path, defaulting to the standard location when
// path is empty.
func Load(path string) (*State, error) {
	if path == "" {
		path = util.DefaultStateFile()
	}

	st := &State{
		Version:     stateVersion,
		Enabled:     make(map[string][]string),
		Resolutions: make(map[string]string),
		path:        path,
	}

	// #nosec G304 - path is the user's own state file
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return st, nil
		}
		return nil, fmt.Errorf("failed to read state %q: %w", path, err)
	}

	if err := json.Unmarshal(data, st); err != nil || st.Version != stateVersion {
		// Corrupted or incompatible state, start fresh
		st = &State{
			Version:     stateVersion,
			Enabled:     make(map[string][]string),
			Resolutions: make(map[string]string),
			path:        path,
		}
	}
	if st.Enabled == nil {
		st.Enabled = make(map[string][]string)
	}
	if st.Resolutions == nil {
		st.Resolutions = make(map[string]string)
	}
	st.path = path
	return st, nil
}

// Save writes the state back to its file.
func (s *State) Save() error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write state %q: %w", s.path, err)
	}
	return nil
}

// EnabledLocations returns the location ids the skill is enabled for, sorted.
func (s *State) EnabledLocations(skillID string) []string {
	ids := slices.Clone(s.Enabled[skillID])
	sort.Strings(ids)
	return ids
}

// Enable records the skill as enabled for the location. Idempotent.
func (s *State) Enable(skillID, locationID string) {
	if slices.Contains(s.Enabled[skillID], locationID) {
		return
	}
	s.Enabled[skillID] = append(s.Enabled[skillID], locationID)
}

// Disable removes the location from the skill's enabled set. Idempotent.
func (s *State) Disable(skillID, locationID string) {
	ids := slices.DeleteFunc(s.Enabled[skillID], func(id string) bool {
		return id == locationID
	})
	if len(ids) == 0 {
		delete(s.Enabled, skillID)
		return
	}
	s.Enabled[skillID] = ids
}

// SetResolution stores a human's conflict decision for the next sweep.
func (s *State) SetResolution(skillID, winningLocation string) {
	s.Resolutions[skillID] = winningLocation
}

// TakeResolution returns and clears the pending resolution for the skill.
func (s *State) TakeResolution(skillID string) (string, bool) {
	winner, ok := s.Resolutions[skillID]
	if ok {
		delete(s.Resolutions, skillID)
	}
	return winner, ok
}
