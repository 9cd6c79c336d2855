// Package pgm writes grayscale images as binary PGM ("P5") files and lays them out on disk.
//
// A file is a one-line text header, "P5 <width> <height> 255\n", followed by width*height raw
// pixel bytes, row by row, with nothing after them.
package pgm

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pachyderm/idxconvert/src/internal/errors"
	"github.com/pachyderm/idxconvert/src/internal/log"
	"go.uber.org/zap"
)

const (
	// Magic is the header token of a binary graymap.
	Magic = "P5"
	// MaxGray is the maximum gray value written in every header.
	MaxGray = 255
)

// Header returns the header line for an image of the given size.
func Header(width, height int) string {
	return fmt.Sprintf("%s %d %d %d\n", Magic, width, height, MaxGray)
}

// Encode writes pixels as a PGM image to w.  pixels must hold exactly width*height bytes.
func Encode(w io.Writer, pixels []byte, width, height int) error {
	if want := width * height; len(pixels) != want {
		return errors.WithStack(&Error{Kind: ErrImageWrite, Err: errors.Errorf("have %d pixels, expected %d", len(pixels), want)})
	}
	if _, err := io.WriteString(w, Header(width, height)); err != nil {
		return errors.WithStack(&Error{Kind: ErrImageWrite, Err: err})
	}
	n, err := w.Write(pixels)
	if err == nil && n != len(pixels) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return errors.WithStack(&Error{Kind: ErrImageWrite, Err: errors.Wrapf(err, "wrote %d of %d pixels", n, len(pixels))})
	}
	return nil
}

// Writer writes images into label directories.
type Writer struct {
	// MaxPath caps the length of every path the writer composes; zero disables the cap.
	MaxPath int
}

// NewWriter returns a Writer using DefaultMaxPath.
func NewWriter() *Writer {
	return &Writer{MaxPath: DefaultMaxPath}
}

// WriteImage writes pixels as dir/filename, creating dir (one level) first if needed.  dir is used
// as given; a trailing separator is fine.  pixels is only read.
func (w *Writer) WriteImage(ctx context.Context, dir, filename string, pixels []byte, width, height int) (retErr error) {
	if err := EnsureDirectory(dir); err != nil {
		return err
	}
	path, err := JoinPath(w.MaxPath, dir, filename)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return newError(ErrFileOpen, path, err)
	}
	defer func() {
		if err := f.Close(); err != nil && retErr == nil {
			retErr = newError(ErrImageWrite, path, err)
		}
	}()
	bw := bufio.NewWriterSize(f, len(Header(width, height))+len(pixels))
	if err := Encode(bw, pixels, width, height); err != nil {
		var e *Error
		if errors.As(err, &e) {
			e.Path = path
		}
		return err
	}
	if err := bw.Flush(); err != nil {
		return newError(ErrImageWrite, path, err)
	}
	log.Debug(ctx, "wrote image", zap.String("path", path))
	return nil
}
