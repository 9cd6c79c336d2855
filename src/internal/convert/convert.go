// Package convert turns an IDX label/image file pair into a tree of PGM files, one per sample,
// at <output_dir>/<label>/image<index>.pgm.
package convert

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/pachyderm/idxconvert/src/internal/cmdutil"
	"github.com/pachyderm/idxconvert/src/internal/errors"
	"github.com/pachyderm/idxconvert/src/internal/fsutil"
	"github.com/pachyderm/idxconvert/src/internal/idx"
	"github.com/pachyderm/idxconvert/src/internal/log"
	"github.com/pachyderm/idxconvert/src/internal/pctx"
	"github.com/pachyderm/idxconvert/src/internal/pgm"
	"github.com/pachyderm/idxconvert/src/internal/progress"
	"go.uber.org/zap"
)

var (
	// ErrConsistency means the two input files describe different numbers of samples.
	ErrConsistency = errors.New("number of labels and number of images do not match")
	// ErrMissingOutputDirectory means the output directory is not an existing directory.
	ErrMissingOutputDirectory = errors.New("output directory does not exist")
)

// MissingDirectoryError is returned when the output directory has not been created.
type MissingDirectoryError struct {
	Dir string
}

func (e *MissingDirectoryError) Error() string {
	return fmt.Sprintf("directory %s does not exist, please create it and try again", e.Dir)
}

func (e *MissingDirectoryError) Unwrap() error { return ErrMissingOutputDirectory }

// Config is the part of a conversion's behavior that can be set from the environment.
type Config struct {
	// MaxPath caps the length of composed paths in bytes; zero disables the cap.
	MaxPath int `env:"IDXCONVERT_MAX_PATH,default=255"`
	// Progress enables the progress bar on terminals.
	Progress bool `env:"IDXCONVERT_PROGRESS,default=true"`
	// LogLevel is the minimum level of log records printed to the terminal.
	LogLevel string `env:"IDXCONVERT_LOG_LEVEL,default=warn"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	var c Config
	if err := cmdutil.PopulateDefaults(&c); err != nil {
		panic(err)
	}
	return c
}

// Params describes one run.
type Params struct {
	LabelsPath string
	ImagesPath string
	OutputDir  string
	Config     Config

	// Stdout receives the "Read N ..." lines.  Nil discards them.
	Stdout io.Writer
	// ProgressOut is where the progress bar draws, if it draws at all.
	ProgressOut io.Writer
}

// Summary describes a finished conversion.
type Summary struct {
	Samples int
	// Bytes is the total size of the files written, headers included.
	Bytes    int
	PerLabel map[uint8]int
}

// Run reads both input files (labels first) and converts them.  Nothing is written unless both
// files decode and agree on the number of samples.
func Run(ctx context.Context, p Params) (_ *Summary, retErr error) {
	ctx, end := log.SpanContextL(ctx, "convert", log.InfoLevel,
		zap.String("labels", p.LabelsPath), zap.String("images", p.ImagesPath), zap.String("out", p.OutputDir))
	defer end(log.Errorp(&retErr))
	stdout := p.Stdout
	if stdout == nil {
		stdout = io.Discard
	}

	labels, err := ReadLabels(pctx.Child(ctx, "labels"), p.LabelsPath)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(stdout, "Read %d labels from: %s\n", labels.Len(), p.LabelsPath)

	images, err := ReadImages(pctx.Child(ctx, "images"), p.ImagesPath)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(stdout, "Read %d images from: %s\n", images.Len(), p.ImagesPath)

	return Convert(ctx, labels, images, p.OutputDir, Options{
		MaxPath:     p.Config.MaxPath,
		Progress:    p.Config.Progress,
		ProgressOut: p.ProgressOut,
	})
}

// ReadLabels parses the label file at path.  If the file turns out to be an image file, the error
// says so.
func ReadLabels(ctx context.Context, path string) (_ *idx.LabelSet, retErr error) {
	defer log.Span(ctx, "parseLabelFile", zap.String("path", path))(log.Errorp(&retErr))
	labels, err := idx.ParseLabelFile(path)
	if err != nil {
		return nil, swapHint(err, path, idx.Images)
	}
	log.Debug(ctx, "read labels", zap.Int("count", labels.Len()), log.Size("size", labels.Len()))
	return labels, nil
}

// ReadImages parses the image file at path.  If the file turns out to be a label file, the error
// says so.
func ReadImages(ctx context.Context, path string) (_ *idx.ImageSet, retErr error) {
	defer log.Span(ctx, "parseImageFile", zap.String("path", path))(log.Errorp(&retErr))
	images, err := idx.ParseImageFile(path)
	if err != nil {
		return nil, swapHint(err, path, idx.Labels)
	}
	log.Debug(ctx, "read images", zap.Int("count", images.Len()), zap.Stringer("dimensions", images.Dimensions),
		log.Size("size", len(images.Bytes())))
	return images, nil
}

func swapHint(err error, path string, other idx.Kind) error {
	if !errors.Is(err, idx.ErrBadMagic) {
		return err
	}
	if kind, _, derr := idx.Detect(path); derr == nil && kind == other {
		return errors.Wrapf(err, "%s looks like the %s file; were the arguments swapped?", path, other)
	}
	return err
}

// Options control Convert.
type Options struct {
	// MaxPath caps the length of composed paths in bytes; zero disables the cap.
	MaxPath     int
	Progress    bool
	ProgressOut io.Writer
}

// SamplePath returns the directory (with a trailing separator) and file name for sample i.
func SamplePath(maxPath int, outputDir string, i int, label uint8) (dir, name string, _ error) {
	dir, err := pgm.JoinPath(maxPath, outputDir, strconv.Itoa(int(label)), "")
	if err != nil {
		return "", "", err
	}
	return dir, "image" + strconv.Itoa(i) + ".pgm", nil
}

// Convert writes every sample as <outputDir>/<label>/image<i>.pgm.  The output directory must
// already exist.  The first failure stops the run.
func Convert(ctx context.Context, labels *idx.LabelSet, images *idx.ImageSet, outputDir string, opts Options) (*Summary, error) {
	if labels.Len() != images.Len() {
		return nil, errors.Wrapf(ErrConsistency, "%d labels, %d images", labels.Len(), images.Len())
	}
	if !fsutil.IsDir(outputDir) {
		return nil, errors.WithStack(&MissingDirectoryError{Dir: outputDir})
	}
	w := &pgm.Writer{MaxPath: opts.MaxPath}
	wctx := pctx.Child(ctx, "write", pctx.WithFields(zap.String("dimensions", images.Dimensions.String())))
	bar := progress.New(opts.ProgressOut, "converting", images.Len(), opts.Progress)
	ok := false
	defer func() { bar.Finish(ok) }()

	headerLen := len(pgm.Header(images.Width, images.Height))
	summary := &Summary{PerLabel: make(map[uint8]int)}
	for i := 0; i < images.Len(); i++ {
		label := labels.Label(i)
		dir, name, err := SamplePath(opts.MaxPath, outputDir, i, label)
		if err != nil {
			return nil, errors.Wrapf(err, "sample %d", i)
		}
		if err := w.WriteImage(wctx, dir, name, images.Image(i), images.Width, images.Height); err != nil {
			log.Debug(wctx, "sample failed", log.Sample(i, label), zap.Error(err))
			return nil, errors.Wrapf(err, "sample %d", i)
		}
		summary.Samples++
		summary.Bytes += headerLen + images.Pixels()
		summary.PerLabel[label]++
		bar.Increment()
	}
	ok = true
	log.Info(ctx, "conversion finished", zap.Int("samples", summary.Samples), log.Size("written", summary.Bytes),
		log.LabelCounts("perLabel", summary.PerLabel))
	return summary, nil
}
