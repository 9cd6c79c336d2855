package idx

import (
	"os"

	"github.com/pachyderm/idxconvert/src/internal/errors"
)

// Info describes a decoded IDX file.
type Info struct {
	Path string
	Kind Kind
	// Count is the number of labels or images.
	Count int
	// Dimensions is zero for label files.
	Dimensions Dimensions
	// FileSize is the size of the file on disk; PayloadSize is the part of it holding samples.
	FileSize    int64
	PayloadSize int64
}

// Inspect identifies the file at path by its magic number and decodes it fully, so that a nil
// error means the file would be accepted as input.
func Inspect(path string) (*Info, error) {
	kind, magic, err := Detect(path)
	if err != nil {
		return nil, err
	}
	info := &Info{Path: path, Kind: kind}
	switch kind {
	case Labels:
		labels, err := ParseLabelFile(path)
		if err != nil {
			return nil, err
		}
		info.Count = labels.Len()
		info.PayloadSize = int64(labels.Len())
	case Images:
		images, err := ParseImageFile(path)
		if err != nil {
			return nil, err
		}
		info.Count = images.Len()
		info.Dimensions = images.Dimensions
		info.PayloadSize = int64(len(images.Bytes()))
	default:
		return nil, withPath(formatErrorf(ErrBadMagic, "magic number %d is neither %d (labels) nor %d (images)",
			magic, LabelMagic, ImageMagic), path)
	}
	st, err := os.Stat(path)
	if err != nil {
		return nil, errors.EnsureStack(err)
	}
	info.FileSize = st.Size()
	return info, nil
}
