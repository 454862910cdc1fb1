package fsclean

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

type Result int

const (
	Removed Result = iota
	NotFound
)

// Exists reports whether path is present. A stat error other than
// not-exist is returned so callers can tell absence from inaccessibility.
func Exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// RemoveTree deletes path recursively. A missing path yields NotFound and no error.
func RemoveTree(path string) (Result, error) {
	if path == "" {
		return NotFound, fmt.Errorf("refusing to remove empty path")
	}
	clean := filepath.Clean(path)
	if filepath.Dir(clean) == clean {
		return NotFound, fmt.Errorf("refusing to remove filesystem root %s", clean)
	}

	ok, err := Exists(clean)
	if err != nil {
		return NotFound, fmt.Errorf("stat %s: %w", clean, err)
	}
	if !ok {
		return NotFound, nil
	}
	if err := os.RemoveAll(clean); err != nil {
		return Removed, fmt.Errorf("remove %s: %w", clean, err)
	}
	return Removed, nil
}

// Size sums regular file sizes below path, for status output.
func Size(path string) (files int, bytes int64, err error) {
	err = filepath.WalkDir(path, func(_ string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files++
		bytes += info.Size()
		return nil
	})
	return files, bytes, err
}
