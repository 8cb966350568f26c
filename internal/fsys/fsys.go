// Package fsys abstracts filesystem access behind an interface so the sync
// engine can run against the real disk in production and an in-memory
// filesystem in tests. The implementation is backed by go-billy.
package fsys

import (
	"fmt"
	"io"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// File is the open-file surface used for streaming reads and writes.
type File interface {
	io.Reader
	io.Writer
	io.Closer
	Name() string
}

// FS is the filesystem surface the engine and its collaborators operate
// through. All paths are absolute or relative to the process working
// directory, exactly as with the os package.
type FS interface {
	Stat(name string) (os.FileInfo, error)
	Lstat(name string) (os.FileInfo, error)
	ReadDir(name string) ([]os.FileInfo, error)
	Readlink(name string) (string, error)
	Symlink(target, link string) error
	Open(name string) (File, error)
	Create(name string) (File, error)
	TempFile(dir, prefix string) (File, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm os.FileMode) error
	MkdirAll(path string, perm os.FileMode) error
	Rename(oldpath, newpath string) error
	Remove(name string) error
	RemoveAll(path string) error
	Exists(path string) (bool, error)
}

// Billy implements FS on top of a billy.Filesystem.
type Billy struct {
	fs billy.Filesystem
}

// NewOS returns an FS backed by the operating system, rooted at /.
func NewOS() *Billy {
	return &Billy{fs: osfs.New("/")}
}

// NewMemory returns an in-memory FS for tests.
func NewMemory() *Billy {
	return &Billy{fs: memfs.New()}
}

// NewBilly wraps an existing billy filesystem.
func NewBilly(fsys billy.Filesystem) *Billy {
	return &Billy{fs: fsys}
}

// Stat implements FS.Stat.
func (b *Billy) Stat(name string) (os.FileInfo, error) {
	return b.fs.Stat(name)
}

// Lstat implements FS.Lstat. It does not follow symlinks.
func (b *Billy) Lstat(name string) (os.FileInfo, error) {
	return b.fs.Lstat(name)
}

// ReadDir implements FS.ReadDir.
func (b *Billy) ReadDir(name string) ([]os.FileInfo, error) {
	return b.fs.ReadDir(name)
}

// Readlink implements FS.Readlink.
func (b *Billy) Readlink(name string) (string, error) {
	return b.fs.Readlink(name)
}

// Symlink implements FS.Symlink.
func (b *Billy) Symlink(target, link string) error {
	return b.fs.Symlink(target, link)
}

// Open implements FS.Open.
//
//nolint:ireturn // the File interface is the point of the abstraction
func (b *Billy) Open(name string) (File, error) {
	return b.fs.Open(name)
}

// Create implements FS.Create.
//
//nolint:ireturn // the File interface is the point of the abstraction
func (b *Billy) Create(name string) (File, error) {
	return b.fs.Create(name)
}

// TempFile implements FS.TempFile.
//
//nolint:ireturn // the File interface is the point of the abstraction
func (b *Billy) TempFile(dir, prefix string) (File, error) {
	return b.fs.TempFile(dir, prefix)
}

// ReadFile implements FS.ReadFile.
func (b *Billy) ReadFile(name string) ([]byte, error) {
	return util.ReadFile(b.fs, name)
}

// WriteFile implements FS.WriteFile.
func (b *Billy) WriteFile(name string, data []byte, perm os.FileMode) error {
	return util.WriteFile(b.fs, name, data, perm)
}

// MkdirAll implements FS.MkdirAll.
func (b *Billy) MkdirAll(path string, perm os.FileMode) error {
	return b.fs.MkdirAll(path, perm)
}

// Rename implements FS.Rename.
func (b *Billy) Rename(oldpath, newpath string) error {
	return b.fs.Rename(oldpath, newpath)
}

// Remove implements FS.Remove.
func (b *Billy) Remove(name string) error {
	return b.fs.Remove(name)
}

// RemoveAll implements FS.RemoveAll.
func (b *Billy) RemoveAll(path string) error {
	return util.RemoveAll(b.fs, path)
}

// Exists reports whether the path exists, following symlinks.
func (b *Billy) Exists(path string) (bool, error) {
	_, err := b.fs.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, fmt.Errorf("stat %q: %w", path, err)
	}
}
