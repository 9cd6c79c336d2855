package idx

import (
	"io"

	"github.com/pachyderm/idxconvert/src/internal/errors"
)

// LabelSet is the decoded content of a label file: one label per sample, in file order.  It is not
// modified after it is read.
type LabelSet struct {
	labels []byte
}

// NewLabelSet wraps labels without copying them.
func NewLabelSet(labels []byte) *LabelSet {
	return &LabelSet{labels: labels}
}

// Len returns the number of labels.
func (s *LabelSet) Len() int { return len(s.labels) }

// Label returns the label of sample i.
func (s *LabelSet) Label(i int) uint8 { return s.labels[i] }

// Bytes returns the raw labels.  Callers must not modify the result.
func (s *LabelSet) Bytes() []byte { return s.labels }

// ReadLabels decodes a label file from r.  A zero count is valid.
func ReadLabels(r io.Reader) (*LabelSet, error) {
	magic, err := ReadUint32(r)
	if err != nil {
		return nil, err
	}
	if magic != LabelMagic {
		return nil, formatErrorf(ErrBadMagic, "not a label file -- magic number %d does not match %d", magic, LabelMagic)
	}
	count, err := ReadUint32(r)
	if err != nil {
		return nil, err
	}
	labels, err := readPayload(r, int64(count), "labels")
	if err != nil {
		return nil, err
	}
	return NewLabelSet(labels), nil
}

// ParseLabelFile reads and decodes the label file at path.
func ParseLabelFile(path string) (_ *LabelSet, retErr error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer errors.Close(&retErr, f, "close %v", path)
	labels, err := ReadLabels(f)
	if err != nil {
		return nil, withPath(err, path)
	}
	return labels, nil
}
