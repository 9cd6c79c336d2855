package pgm

import (
	"path/filepath"
	"strings"

	"github.com/pachyderm/idxconvert/src/internal/errors"
)

// DefaultMaxPath is the longest path, in bytes, the converter will compose.
const DefaultMaxPath = 255

const sep = string(filepath.Separator)

// JoinPath concatenates elems with the path separator, never doubling a separator at a boundary.
// A trailing empty element leaves a trailing separator, which is how directories are spelled:
//
//	JoinPath(255, "out", "7", "") == "out/7/"
//
// If the result is longer than max bytes, JoinPath fails with ErrPathTooLong.  A max of zero or
// less disables the check.
func JoinPath(max int, elems ...string) (string, error) {
	var b strings.Builder
	for i, e := range elems {
		if i > 0 {
			if !strings.HasSuffix(b.String(), sep) {
				b.WriteString(sep)
			}
			e = strings.TrimLeft(e, sep)
		}
		b.WriteString(e)
	}
	p := b.String()
	if max > 0 && len(p) > max {
		return "", newError(ErrPathTooLong, p, errors.Errorf("%d bytes exceeds the limit of %d", len(p), max))
	}
	return p, nil
}
