// Package manifest reads and writes the sidecar metadata file that marks a
// directory as a managed skill replica. The manifest is the sole persisted
// evidence that a directory belongs to a given skill: it survives arbitrary
// renames of the containing directory, and no destructive operation is
// authorized without it.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauern/skillmirror/internal/fsys"
	"github.com/klauern/skillmirror/internal/model"
)

const (
	// Version is the current manifest schema version.
	Version = 1

	// Marker is the ownership marker. A manifest without it is not ours.
	Marker = "skillmirror"

	// CanonicalTool is the reserved owning-location id of the canonical
	// replica in the skill library.
	CanonicalTool = "library"

	// FileName is the manifest file name inside the sidecar directory.
	FileName = "manifest.json"
)

// Manifest records a replica's identity and sync history. Field order is the
// serialized key order.
type Manifest struct {
	Version        int      `json:"version"`
	SkillID        string   `json:"skillId"`
	ManagedBy      string   `json:"managedBy"`
	Canonical      bool     `json:"canonical"`
	Tool           string   `json:"tool"`
	LastSyncAt     SyncTime `json:"lastSyncAt"`
	LastSyncedHash string   `json:"lastSyncedHash,omitempty"`
}

// New returns a manifest for the given skill and owning tool, stamped now.
func New(skillID, tool string, canonical bool, hash string) *Manifest {
	return &Manifest{
		Version:        Version,
		SkillID:        skillID,
		ManagedBy:      Marker,
		Canonical:      canonical,
		Tool:           tool,
		LastSyncAt:     SyncTime(time.Now().UTC()),
		LastSyncedHash: hash,
	}
}

// Owns reports whether this manifest proves ownership of its directory for
// the given skill id.
func (m *Manifest) Owns(skillID string) bool {
	return m != nil && m.ManagedBy == Marker && m.SkillID == skillID
}

// Touch updates the sync hash and timestamp after a successful sync.
func (m *Manifest) Touch(hash string) {
	m.LastSyncedHash = hash
	m.LastSyncAt = SyncTime(time.Now().UTC())
}

// Path returns the manifest file path inside a replica directory.
func Path(replicaDir string) string {
	return filepath.Join(replicaDir, model.SidecarDir, FileName)
}

// Load reads the manifest from a replica directory. It returns (nil, nil)
// when no manifest exists, and an error when one exists but cannot be parsed.
func Load(fs fsys.FS, replicaDir string) (*Manifest, error) {
	data, err := fs.ReadFile(Path(replicaDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read manifest in %q: %w", replicaDir, err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest in %q: %w", replicaDir, err)
	}
	return &m, nil
}

// Save writes the manifest atomically into the replica's sidecar directory:
// serialized to a temp file first, then renamed into place.
func Save(fs fsys.FS, m *Manifest, replicaDir string) error {
	sidecar := filepath.Join(replicaDir, model.SidecarDir)
	if err := fs.MkdirAll(sidecar, 0o750); err != nil {
		return fmt.Errorf("failed to create sidecar directory %q: %w", sidecar, err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize manifest: %w", err)
	}
	data = append(data, '\n')

	tmp, err := fs.TempFile(sidecar, FileName+".tmp-")
	if err != nil {
		return fmt.Errorf("failed to create temp manifest: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = fs.Remove(tmpName)
		return fmt.Errorf("failed to write temp manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = fs.Remove(tmpName)
		return fmt.Errorf("failed to close temp manifest: %w", err)
	}

	if err := fs.Rename(tmpName, Path(replicaDir)); err != nil {
		_ = fs.Remove(tmpName)
		return fmt.Errorf("failed to place manifest: %w", err)
	}
	return nil
}
