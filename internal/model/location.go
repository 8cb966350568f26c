// Package model defines the shared value types for skillmirror: locations,
// skill references, and the filesystem conventions every component agrees on.
package model

import "path/filepath"

const (
	// SidecarDir is the metadata directory placed inside every managed replica.
	SidecarDir = ".skillmirror"

	// ContentMarker is the file whose presence marks a directory as a skill.
	ContentMarker = "SKILL.md"
)

// Location describes one external tool's skills folder: an active root where
// enabled replicas live and a disabled root where retired replicas are parked.
type Location struct {
	ID           string `yaml:"id" json:"id"`
	Name         string `yaml:"name" json:"name"`
	ActiveRoot   string `yaml:"active_root" json:"active_root"`
	DisabledRoot string `yaml:"disabled_root" json:"disabled_root"`
}

// DisplayName returns the human-readable name, falling back to the id.
func (l Location) DisplayName() string {
	if l.Name != "" {
		return l.Name
	}
	return l.ID
}

// ActivePath returns the path a replica with the given directory name would
// occupy under the location's active root.
func (l Location) ActivePath(name string) string {
	return filepath.Join(l.ActiveRoot, name)
}
