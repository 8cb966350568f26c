// Package digest computes stable content fingerprints for skill replicas.
// A directory digest covers every regular file in sorted relative-path order,
// so identical content hashes identically regardless of filesystem enumeration
// order, and any content change, addition, removal, or rename changes the
// digest. Symlinks are refused outright: the same walk drives copying, and
// failing closed here guarantees a copy can never be tricked into escaping the
// source tree.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauern/skillmirror/internal/fsys"
	"github.com/klauern/skillmirror/internal/model"
)

// ErrSymlink is returned when a symlink is encountered while hashing or
// walking a tree.
var ErrSymlink = errors.New("symlink encountered")

// chunkSize bounds how much file content is held in memory while hashing.
const chunkSize = 32 * 1024

// osArtifacts are well-known OS droppings excluded from hashing and copying
// at any nesting depth.
var osArtifacts = map[string]struct{}{
	".DS_Store":   {},
	"Thumbs.db":   {},
	"desktop.ini": {},
	"__MACOSX":    {},
}

// Excluded reports whether a directory entry name is ignored by hashing and
// copying. The manifest sidecar directory and OS artifacts never count as
// replica content.
func Excluded(name string) bool {
	if name == model.SidecarDir {
		return true
	}
	if _, ok := osArtifacts[name]; ok {
		return true
	}
	// AppleDouble resource forks
	return strings.HasPrefix(name, "._")
}

// Tree hashes the directory at root. It fails if root is not a directory or
// if any symlink is encountered under it.
func Tree(fs fsys.FS, root string) (string, error) {
	info, err := fs.Stat(root)
	if err != nil {
		return "", fmt.Errorf("failed to stat %q: %w", root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("hash target %q is not a directory", root)
	}

	h := sha256.New()
	buf := make([]byte, chunkSize)

	for entry, err := range Walk(fs, root) {
		if err != nil {
			return "", err
		}
		h.Write([]byte(entry.Rel))
		h.Write([]byte{0})
		if err := hashFile(fs, entry.Path, h, buf); err != nil {
			return "", err
		}
		h.Write([]byte{0})
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// File hashes a single regular file with the same chunked streaming as Tree.
func File(fs fsys.FS, path string) (string, error) {
	info, err := fs.Lstat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat %q: %w", path, err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return "", fmt.Errorf("%w: %s", ErrSymlink, path)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("hash target %q is not a regular file", path)
	}

	h := sha256.New()
	buf := make([]byte, chunkSize)
	if err := hashFile(fs, path, h, buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// hashFile streams one file's content into the running hash.
func hashFile(fs fsys.FS, path string, h io.Writer, buf []byte) error {
	f, err := fs.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %q: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return fmt.Errorf("failed to read %q: %w", path, err)
	}
	return nil
}
