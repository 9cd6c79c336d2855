package pgm

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pachyderm/idxconvert/src/internal/errors"
)

// DirMode is the permission of label directories.
const DirMode fs.FileMode = 0o755

// EnsureDirectory makes sure path is a directory, creating that one level if nothing exists there.
// Its parent must already exist.  An existing entry that is not a directory is an error.
func EnsureDirectory(path string) error {
	// Stat through a trailing separator reports ENOTDIR for a file, hiding what is there.
	path = filepath.Clean(path)
	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return nil
	case err == nil:
		return newError(ErrDirectoryCreate, path, errors.Errorf("exists and is a %v, not a directory", typeName(info.Mode())))
	case !errors.Is(err, fs.ErrNotExist):
		return newError(ErrDirectoryCreate, path, err)
	}
	if err := os.Mkdir(path, DirMode); err != nil {
		return newError(ErrDirectoryCreate, path, err)
	}
	return nil
}

func typeName(m fs.FileMode) string {
	switch {
	case m.IsRegular():
		return "file"
	case m&fs.ModeSymlink != 0:
		return "symlink"
	case m&fs.ModeNamedPipe != 0:
		return "named pipe"
	case m&fs.ModeSocket != 0:
		return "socket"
	case m&fs.ModeDevice != 0:
		return "device"
	}
	return m.Type().String()
}
