package fsys

import (
	"os"
	"testing"
)

func TestReadWriteRoundTrip(t *testing.T) {
	fs := NewMemory()

	if err := fs.WriteFile("/a/b/file.txt", []byte("hello"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	data, err := fs.ReadFile("/a/b/file.txt")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("content = %q, want hello", data)
	}
}

func TestReadFileAbsentIsNotExist(t *testing.T) {
	fs := NewMemory()

	_, err := fs.ReadFile("/nope")
	if !os.IsNotExist(err) {
		t.Errorf("error = %v, want IsNotExist", err)
	}
}

func TestExists(t *testing.T) {
	fs := NewMemory()
	if err := fs.WriteFile("/here", []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	tests := []struct {
		path string
		want bool
	}{
		{"/here", true},
		{"/gone", false},
	}
	for _, tt := range tests {
		got, err := fs.Exists(tt.path)
		if err != nil {
			t.Fatalf("Exists(%s) error = %v", tt.path, err)
		}
		if got != tt.want {
			t.Errorf("Exists(%s) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestTempFileAndRename(t *testing.T) {
	fs := NewMemory()
	if err := fs.MkdirAll("/work", 0o750); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	tmp, err := fs.TempFile("/work", "stage-")
	if err != nil {
		t.Fatalf("TempFile() error = %v", err)
	}
	if _, err := tmp.Write([]byte("payload")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := tmp.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if err := fs.Rename(tmp.Name(), "/work/final"); err != nil {
		t.Fatalf("Rename() error = %v", err)
	}
	data, err := fs.ReadFile("/work/final")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("content = %q, want payload", data)
	}
	if exists, _ := fs.Exists(tmp.Name()); exists {
		t.Error("temp file survived rename")
	}
}

func TestRemoveAll(t *testing.T) {
	fs := NewMemory()
	for _, p := range []string{"/tree/a.txt", "/tree/sub/b.txt"} {
		if err := fs.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}

	if err := fs.RemoveAll("/tree"); err != nil {
		t.Fatalf("RemoveAll() error = %v", err)
	}
	if exists, _ := fs.Exists("/tree/sub/b.txt"); exists {
		t.Error("file survived RemoveAll")
	}

	// Removing a missing tree is not an error
	if err := fs.RemoveAll("/tree"); err != nil {
		t.Errorf("RemoveAll() on absent path error = %v", err)
	}
}
