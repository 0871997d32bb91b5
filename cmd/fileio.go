package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/eykd/blockmark/internal/config"
	"github.com/eykd/blockmark/internal/editor"
)

// fileIO implements the document I/O interfaces using the OS file system.
type fileIO struct{}

func newDefaultFileIO() *fileIO {
	return &fileIO{}
}

// ReadFile reads the document at path.
func (f *fileIO) ReadFile(_ context.Context, path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFileAtomic replaces path with data via a temp file rename.
func (f *fileIO) WriteFileAtomic(_ context.Context, path string, data []byte) error {
	return writeFileAtomicImpl(path, data)
}

// LoadConfig reads the editor configuration; an empty path searches the
// default locations.
func (f *fileIO) LoadConfig(path string) (editor.Config, error) {
	return config.Load(path)
}

// writeFileAtomicImpl writes data next to path and renames it into place.
// An existing file keeps its permissions; a read-only file is refused.
func writeFileAtomicImpl(path string, data []byte) error {
	perm := os.FileMode(0o644)
	if fi, statErr := os.Stat(path); statErr == nil {
		if fi.Mode().Perm()&0o200 == 0 {
			return fmt.Errorf("%s is read-only", path)
		}
		perm = fi.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".bmk-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err = os.Chmod(tmpName, perm); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
