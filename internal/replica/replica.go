// Package replica locates the managed replica directories of a skill under a
// location root, independent of what the directories are named. Matching goes
// through the sidecar manifest only; directory names are never trusted.
package replica

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauern/skillmirror/internal/fsys"
	"github.com/klauern/skillmirror/internal/logging"
	"github.com/klauern/skillmirror/internal/manifest"
	"github.com/klauern/skillmirror/internal/model"
)

// Find returns the path of the skill's replica under root, or "" when none
// exists. When multiple managed copies exist (which only happens after manual
// tampering), the lexically first one wins.
func Find(fs fsys.FS, skillID, root string) (string, error) {
	matches, err := FindAll(fs, skillID, root)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", nil
	}
	return matches[0], nil
}

// FindAll returns every managed replica of the skill under root, sorted by
// path. A missing root yields no matches rather than an error. Only immediate
// skill-shaped subdirectories are considered, and symlinked entries are
// skipped entirely.
func FindAll(fs fsys.FS, skillID, root string) ([]string, error) {
	exists, err := fs.Exists(root)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	infos, err := fs.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read root %q: %w", root, err)
	}

	var matches []string
	for _, info := range infos {
		dir := filepath.Join(root, info.Name())

		lst, err := fs.Lstat(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %q: %w", dir, err)
		}
		// Symlinked subtrees are pruned: following them could lead the
		// engine to mutate paths outside the location root.
		if lst.Mode()&os.ModeSymlink != 0 {
			logging.Debug("skipping symlinked entry", logging.Path(dir))
			continue
		}
		if !lst.IsDir() {
			continue
		}

		marker, err := fs.Exists(filepath.Join(dir, model.ContentMarker))
		if err != nil {
			return nil, err
		}
		if !marker {
			continue
		}

		if IsManaged(fs, dir, skillID) {
			matches = append(matches, dir)
		}
	}

	sort.Strings(matches)
	return matches, nil
}

// IsManaged reports whether dir carries a manifest that proves ownership for
// the given skill id. This is the single gate authorizing any destructive
// operation on a directory.
func IsManaged(fs fsys.FS, dir, skillID string) bool {
	m, err := manifest.Load(fs, dir)
	if err != nil {
		logging.Debug("unreadable manifest treated as unmanaged",
			logging.Path(dir),
			logging.Err(err),
		)
		return false
	}
	return m.Owns(skillID)
}
