package digest

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/klauern/skillmirror/internal/fsys"
)

// Entry is one regular file yielded by Walk.
type Entry struct {
	// Rel is the slash-separated path relative to the walk root.
	Rel string
	// Path is the full path of the file.
	Path string
	// Info is the file's Lstat result.
	Info os.FileInfo
}

// Walk returns a lazy, restartable sequence of the regular files under root,
// sorted by relative path, with excluded names pruned at every depth. A
// symlink anywhere in the tree yields ErrSymlink and ends the sequence. The
// same listing drives both hashing and copying.
func Walk(fs fsys.FS, root string) func(yield func(Entry, error) bool) {
	return func(yield func(Entry, error) bool) {
		walkDir(fs, root, "", yield)
	}
}

// walkDir recurses into one directory, yielding files in sorted order.
// Returns false when the consumer stopped or an error was yielded.
func walkDir(fs fsys.FS, dir, rel string, yield func(Entry, error) bool) bool {
	infos, err := fs.ReadDir(dir)
	if err != nil {
		return yield(Entry{}, fmt.Errorf("failed to read directory %q: %w", dir, err))
	}

	names := make([]string, 0, len(infos))
	for _, info := range infos {
		if !Excluded(info.Name()) {
			names = append(names, info.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		full := filepath.Join(dir, name)
		childRel := path.Join(rel, name)

		info, err := fs.Lstat(full)
		if err != nil {
			return yield(Entry{}, fmt.Errorf("failed to stat %q: %w", full, err))
		}

		switch {
		case info.Mode()&os.ModeSymlink != 0:
			return yield(Entry{}, fmt.Errorf("%w: %s", ErrSymlink, full))
		case info.IsDir():
			if !walkDir(fs, full, childRel, yield) {
				return false
			}
		case info.Mode().IsRegular():
			if !yield(Entry{Rel: childRel, Path: full, Info: info}, nil) {
				return false
			}
		}
	}

	return true
}
