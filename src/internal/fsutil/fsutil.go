// Package fsutil holds small filesystem helpers.
package fsutil

import (
	"io/fs"
	"os"
	"sort"

	"github.com/pachyderm/idxconvert/src/internal/errors"
)

// IsDir reports whether path names an accessible directory, following symlinks.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Find works like the UNIX "find" command on an fs.FS, returning every path under the root
// (including "."), sorted.
func Find(f fs.FS) ([]string, error) {
	var result []string
	err := fs.WalkDir(f, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrapf(err, "walk %v", path)
		}
		result = append(result, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(result)
	return result, nil
}

// FindFiles is Find restricted to regular files.
func FindFiles(f fs.FS) ([]string, error) {
	all, err := Find(f)
	if err != nil {
		return nil, err
	}
	var result []string
	for _, path := range all {
		info, err := fs.Stat(f, path)
		if err != nil {
			return nil, errors.Wrapf(err, "stat %v", path)
		}
		if info.Mode().IsRegular() {
			result = append(result, path)
		}
	}
	return result, nil
}
