package engine

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/klauern/skillmirror/internal/digest"
	"github.com/klauern/skillmirror/internal/logging"
	"github.com/klauern/skillmirror/internal/model"
)

// copyTree copies every regular file under src into dst, driven by the same
// sorted, exclusion-pruned, symlink-refusing walk that hashing uses. The
// destination is created if absent; existing files are overwritten.
func (e *Engine) copyTree(src, dst string) error {
	if err := e.fs.MkdirAll(dst, 0o750); err != nil {
		return fmt.Errorf("failed to create destination %q: %w", dst, err)
	}

	for entry, err := range digest.Walk(e.fs, src) {
		if err != nil {
			return err
		}
		target := filepath.Join(dst, filepath.FromSlash(entry.Rel))
		if dir := filepath.Dir(target); dir != dst {
			if err := e.fs.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("failed to create directory %q: %w", dir, err)
			}
		}
		if err := e.copyFile(entry.Path, target); err != nil {
			return err
		}
	}

	logging.Debug("copied tree", logging.Path(src))
	return nil
}

// copyFile streams one file from src to dst.
func (e *Engine) copyFile(src, dst string) error {
	in, err := e.fs.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source %q: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	out, err := e.fs.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination %q: %w", dst, err)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy content to %q: %w", dst, err)
	}
	return nil
}

// replaceContent makes dst's non-metadata content identical to src's: every
// entry of dst except the sidecar directory is removed, then src's content is
// copied in. dst's manifest survives untouched.
func (e *Engine) replaceContent(src, dst string) error {
	infos, err := e.fs.ReadDir(dst)
	if err != nil {
		return fmt.Errorf("failed to read destination %q: %w", dst, err)
	}
	for _, info := range infos {
		if info.Name() == model.SidecarDir {
			continue
		}
		if err := e.fs.RemoveAll(filepath.Join(dst, info.Name())); err != nil {
			return fmt.Errorf("failed to clear %q: %w", filepath.Join(dst, info.Name()), err)
		}
	}
	return e.copyTree(src, dst)
}
