// Package idx decodes the IDX files the MNIST handwritten-digit dataset is distributed in.
//
// A dataset is a pair of files.  The label file is
//
//	[u32 magic=2049][u32 count][count x u8 label]
//
// and the image file is
//
//	[u32 magic=2051][u32 count][u32 height][u32 width][count*height*width x u8 pixel]
//
// with every header field big-endian.  Both files are read whole into memory.
package idx

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/pachyderm/idxconvert/src/internal/errors"
)

// Magic numbers identifying the two file formats.
const (
	LabelMagic uint32 = 2049
	ImageMagic uint32 = 2051
)

// Kind identifies which of the two formats a file is in.
type Kind int

const (
	Unknown Kind = iota
	Labels
	Images
)

func (k Kind) String() string {
	switch k {
	case Labels:
		return "labels"
	case Images:
		return "images"
	}
	return "unknown"
}

// KindOf maps a magic number to the format it identifies.
func KindOf(magic uint32) Kind {
	switch magic {
	case LabelMagic:
		return Labels
	case ImageMagic:
		return Images
	}
	return Unknown
}

// ReadUint32 reads exactly four bytes from r as a big-endian unsigned integer.
func ReadUint32(r io.Reader) (uint32, error) {
	var b [4]byte
	if n, err := io.ReadFull(r, b[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, formatErrorf(ErrTruncatedRead, "read %d of 4 header bytes", n)
		}
		return 0, errors.EnsureStack(err)
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

// Detect reports which format the file at path is in, judging by its magic number alone.
func Detect(path string) (_ Kind, magic uint32, retErr error) {
	f, err := open(path)
	if err != nil {
		return Unknown, 0, err
	}
	defer errors.Close(&retErr, f, "close %v", path)
	magic, err = ReadUint32(f)
	if err != nil {
		return Unknown, 0, withPath(err, path)
	}
	return KindOf(magic), magic, nil
}

func open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(&OpenError{Path: path, Err: err})
	}
	return f, nil
}

// readPayload reads exactly n bytes.  The buffer grows as data arrives, so a header that
// overstates the payload fails with ErrTruncatedRead instead of allocating the claimed size.
func readPayload(r io.Reader, n int64, what string) ([]byte, error) {
	buf := make([]byte, 0, min(n, 1<<26))
	w := &sliceWriter{buf: buf}
	got, err := io.CopyN(w, r, n)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, formatErrorf(ErrTruncatedRead, "read %d %s, expected %d", got, what, n)
		}
		return nil, errors.EnsureStack(err)
	}
	return w.buf, nil
}

type sliceWriter struct{ buf []byte }

func (w *sliceWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}
