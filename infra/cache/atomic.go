package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// renameFile is swapped in tests to simulate a crash before the rename.
var renameFile = os.Rename

// tempPath names the scratch file for path. The pid and nanosecond stamp
// keep concurrent writers from sharing a temp file.
func tempPath(path string) string {
	return fmt.Sprintf("%s.tmp.%d.%d", path, os.Getpid(), time.Now().UnixNano())
}

// atomicWrite writes data to a temp file beside path and renames it over
// path, so readers see either the old file or the new one. A temp file left
// behind by a failed rename is removed by the janitor.
func atomicWrite(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", filepath.Dir(path), err)
	}

	tmp := tempPath(path)
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp %s: %w", tmp, err)
	}

	err := renameFile(tmp, path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("rename %s -> %s: %w", tmp, path, err)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove existing %s: %w", path, err)
	}
	if err := renameFile(tmp, path); err != nil {
		return fmt.Errorf("rename %s -> %s: %w", tmp, path, err)
	}
	return nil
}
