package engine

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauern/skillmirror/internal/digest"
	"github.com/klauern/skillmirror/internal/logging"
	"github.com/klauern/skillmirror/internal/manifest"
	"github.com/klauern/skillmirror/internal/model"
	"github.com/klauern/skillmirror/internal/replica"
)

// Export places a fresh copy of the canonical content into the location's
// active root and writes a non-canonical manifest tagging the location.
//
// The destination is resolved by existing manifest ownership first, falling
// back to a name-derived path. Any disabled copy of the skill at the location
// is removed beforehand, so re-enabling never produces duplicates. A
// destination that exists without proof of ownership is never overwritten.
func (e *Engine) Export(canonicalDir, preferredName, skillID string, loc model.Location) error {
	info, err := e.fs.Stat(canonicalDir)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrCanonicalInvalid, canonicalDir)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrArchiveNotMaterialized, canonicalDir)
	}

	dest, err := replica.Find(e.fs, skillID, loc.ActiveRoot)
	if err != nil {
		return err
	}
	if dest == "" {
		dest = loc.ActivePath(exportName(preferredName, skillID))
	}

	if err := e.removeDisabled(skillID, loc); err != nil {
		return err
	}

	exists, err := e.fs.Exists(dest)
	if err != nil {
		return err
	}
	if exists && !replica.IsManaged(e.fs, dest, skillID) {
		return fmt.Errorf("%w: %s", ErrUnmanagedDestination, dest)
	}

	hash, err := digest.Tree(e.fs, canonicalDir)
	if err != nil {
		return err
	}

	if err := e.fs.RemoveAll(dest); err != nil {
		return fmt.Errorf("failed to clear destination %q: %w", dest, err)
	}
	if err := e.copyTree(canonicalDir, dest); err != nil {
		return err
	}
	if err := manifest.Save(e.fs, manifest.New(skillID, loc.ID, false, hash), dest); err != nil {
		return err
	}

	logging.Debug("exported replica",
		logging.Skill(skillID),
		logging.Location(loc.ID),
		logging.Path(dest),
		logging.Hash(hash),
	)
	return nil
}

// Disable retires the skill's active replica at the location by moving it
// into the disabled root. Content is preserved byte for byte; nothing is
// deleted except a stale disabled copy from an earlier disable.
func (e *Engine) Disable(skillID, preferredName string, loc model.Location) error {
	src, err := replica.Find(e.fs, skillID, loc.ActiveRoot)
	if err != nil {
		return err
	}
	if src == "" {
		return fmt.Errorf("%w: %s", ErrMissingManagedExport, loc.ID)
	}

	if err := e.fs.MkdirAll(loc.DisabledRoot, 0o750); err != nil {
		return fmt.Errorf("failed to create disabled root %q: %w", loc.DisabledRoot, err)
	}

	if err := e.removeDisabled(skillID, loc); err != nil {
		return err
	}

	dest := filepath.Join(loc.DisabledRoot, filepath.Base(src))
	exists, err := e.fs.Exists(dest)
	if err != nil {
		return err
	}
	if exists {
		// Collision with an unmanaged directory of the same name; pick a
		// timestamped name instead of touching it.
		dest += "-" + time.Now().Format("20060102-150405")
	}

	if err := e.fs.Rename(src, dest); err != nil {
		return fmt.Errorf("failed to move replica to disabled root: %w", err)
	}

	logging.Info("disabled replica",
		logging.Skill(skillID),
		logging.Location(loc.ID),
		logging.Path(dest),
	)
	return nil
}

// Remove deletes every manifest-verified replica of the skill at the
// location, in both the active and disabled roots. Used when a skill is
// deleted or a location is un-enabled.
func (e *Engine) Remove(skillID string, loc model.Location) error {
	for _, root := range []string{loc.ActiveRoot, loc.DisabledRoot} {
		matches, err := replica.FindAll(e.fs, skillID, root)
		if err != nil {
			return err
		}
		for _, dir := range matches {
			if err := e.fs.RemoveAll(dir); err != nil {
				return fmt.Errorf("failed to remove replica %q: %w", dir, err)
			}
			logging.Info("removed replica",
				logging.Skill(skillID),
				logging.Location(loc.ID),
				logging.Path(dir),
			)
		}
	}
	return nil
}

// removeDisabled clears any manifest-verified disabled copies of the skill at
// the location.
func (e *Engine) removeDisabled(skillID string, loc model.Location) error {
	stale, err := replica.FindAll(e.fs, skillID, loc.DisabledRoot)
	if err != nil {
		return err
	}
	for _, dir := range stale {
		if err := e.fs.RemoveAll(dir); err != nil {
			return fmt.Errorf("failed to remove stale disabled copy %q: %w", dir, err)
		}
		logging.Debug("removed stale disabled copy", logging.Path(dir))
	}
	return nil
}

// exportName derives a directory name for a new export from the preferred
// name, falling back to the skill id.
func exportName(preferredName, skillID string) string {
	name := filepath.Base(strings.TrimSpace(preferredName))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return skillID
	}
	return name
}
