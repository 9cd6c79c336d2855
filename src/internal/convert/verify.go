package convert

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/pachyderm/idxconvert/src/internal/errors"
	"github.com/pachyderm/idxconvert/src/internal/idx"
	"github.com/pachyderm/idxconvert/src/internal/log"
	"github.com/pachyderm/idxconvert/src/internal/pgm"
	"go.uber.org/zap"
)

// ErrMismatch means a file under the output directory does not hold the sample it should.
var ErrMismatch = errors.New("output does not match input")

// MismatchError describes the first sample whose output file is missing or wrong.
type MismatchError struct {
	Index int
	Path  string
	Msg   string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("sample %d: %s: %s", e.Index, e.Path, e.Msg)
}

func (e *MismatchError) Unwrap() error { return ErrMismatch }

// RunVerify reads both input files and checks an existing output tree against them.
func RunVerify(ctx context.Context, p Params) (retErr error) {
	ctx, end := log.SpanContextL(ctx, "verify", log.InfoLevel, zap.String("out", p.OutputDir))
	defer end(log.Errorp(&retErr))
	labels, err := ReadLabels(ctx, p.LabelsPath)
	if err != nil {
		return err
	}
	images, err := ReadImages(ctx, p.ImagesPath)
	if err != nil {
		return err
	}
	n, err := Verify(ctx, labels, images, p.OutputDir, p.Config.MaxPath)
	if err != nil {
		return err
	}
	if p.Stdout != nil {
		fmt.Fprintf(p.Stdout, "Verified %d images in: %s\n", n, p.OutputDir)
	}
	return nil
}

// Verify decodes the PGM file Convert would have written for every sample and compares it with
// the input.  It returns the number of samples checked.
func Verify(ctx context.Context, labels *idx.LabelSet, images *idx.ImageSet, outputDir string, maxPath int) (int, error) {
	if labels.Len() != images.Len() {
		return 0, errors.Wrapf(ErrConsistency, "%d labels, %d images", labels.Len(), images.Len())
	}
	for i := 0; i < images.Len(); i++ {
		dir, name, err := SamplePath(maxPath, outputDir, i, labels.Label(i))
		if err != nil {
			return i, errors.Wrapf(err, "sample %d", i)
		}
		if err := verifyOne(dir+name, i, images); err != nil {
			return i, err
		}
	}
	log.Debug(ctx, "verified", zap.Int("samples", images.Len()))
	return images.Len(), nil
}

func verifyOne(path string, i int, images *idx.ImageSet) error {
	mismatch := func(format string, args ...any) error {
		return errors.WithStack(&MismatchError{Index: i, Path: path, Msg: fmt.Sprintf(format, args...)})
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return mismatch("%v", err)
	}
	img, err := pgm.Decode(bytes.NewReader(data))
	if err != nil {
		return mismatch("%v", err)
	}
	if img.Width != images.Width || img.Height != images.Height {
		return mismatch("image is %dx%d, want %v", img.Width, img.Height, images.Dimensions)
	}
	if img.MaxGray != pgm.MaxGray {
		return mismatch("maximum gray value is %d, want %d", img.MaxGray, pgm.MaxGray)
	}
	if !bytes.Equal(img.Pixels, images.Image(i)) {
		return mismatch("pixels differ")
	}
	if want := len(pgm.Header(images.Width, images.Height)) + images.Pixels(); len(data) != want {
		return mismatch("file is %d bytes, want %d", len(data), want)
	}
	return nil
}
