package convert

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pachyderm/idxconvert/src/internal/errors"
	"github.com/pachyderm/idxconvert/src/internal/fsutil"
	"github.com/pachyderm/idxconvert/src/internal/idx"
	"github.com/pachyderm/idxconvert/src/internal/log"
	"github.com/pachyderm/idxconvert/src/internal/pgm"
	"github.com/pachyderm/idxconvert/src/internal/testutil"
	"github.com/pachyderm/idxconvert/src/internal/testutil/random"
	"github.com/stretchr/testify/require"
)

var digitPixels = []byte{10, 20, 30, 40, 50, 60, 70, 80}

// setup writes the two-sample dataset used by most tests and returns params pointing at it.
func setup(t *testing.T) (Params, *bytes.Buffer) {
	t.Helper()
	in, out := t.TempDir(), t.TempDir()
	labelPath, imagePath := testutil.Dataset(t, in, []byte{3, 7}, 2, 2, digitPixels)
	stdout := new(bytes.Buffer)
	return Params{
		LabelsPath: labelPath,
		ImagesPath: imagePath,
		OutputDir:  out,
		Config:     DefaultConfig(),
		Stdout:     stdout,
	}, stdout
}

func outputFiles(t *testing.T, dir string) []string {
	t.Helper()
	files, err := fsutil.FindFiles(os.DirFS(dir))
	require.NoError(t, err)
	return files
}

func TestRun(t *testing.T) {
	ctx, h := log.TestWithCapture(t)
	p, stdout := setup(t)

	summary, err := Run(ctx, p)
	require.NoError(t, err)

	wantStdout := "Read 2 labels from: " + p.LabelsPath + "\n" +
		"Read 2 images from: " + p.ImagesPath + "\n"
	require.Equal(t, wantStdout, stdout.String())

	want := map[string][]byte{
		"3/image0.pgm": append([]byte("P5 2 2 255\n"), 10, 20, 30, 40),
		"7/image1.pgm": append([]byte("P5 2 2 255\n"), 50, 60, 70, 80),
	}
	got := make(map[string][]byte)
	for _, f := range outputFiles(t, p.OutputDir) {
		content, err := os.ReadFile(filepath.Join(p.OutputDir, f))
		require.NoError(t, err)
		got[f] = content
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("output tree (-want +got):\n%s", diff)
	}

	require.Equal(t, &Summary{Samples: 2, Bytes: 30, PerLabel: map[uint8]int{3: 1, 7: 1}}, summary)
	require.Contains(t, h.Messages(), "convert: info: conversion finished")
}

func TestRunIsRepeatable(t *testing.T) {
	ctx, _ := log.TestWithCapture(t)
	p, _ := setup(t)
	_, err := Run(ctx, p)
	require.NoError(t, err)
	_, err = Run(ctx, p)
	require.NoError(t, err, "existing label directories and images are reused")
	require.Equal(t, []string{"3/image0.pgm", "7/image1.pgm"}, outputFiles(t, p.OutputDir))
}

func TestRunCountMismatch(t *testing.T) {
	ctx, _ := log.TestWithCapture(t)
	p, stdout := setup(t)
	p.LabelsPath = testutil.WriteFile(t, t.TempDir(), "labels", testutil.LabelFile(3, []byte{1, 2, 3}))

	_, err := Run(ctx, p)
	require.True(t, errors.Is(err, ErrConsistency), "got %v", err)
	require.Equal(t, 2, strings.Count(stdout.String(), "\n"), "both files are read before the check")
	require.Empty(t, outputFiles(t, p.OutputDir))
}

func TestRunMissingOutputDirectory(t *testing.T) {
	ctx, _ := log.TestWithCapture(t)
	p, _ := setup(t)
	p.OutputDir = filepath.Join(p.OutputDir, "nope")

	_, err := Run(ctx, p)
	require.True(t, errors.Is(err, ErrMissingOutputDirectory), "got %v", err)
	require.Equal(t, "directory "+p.OutputDir+" does not exist, please create it and try again", err.Error())
	_, statErr := os.Stat(p.OutputDir)
	require.True(t, errors.Is(statErr, os.ErrNotExist), "the output directory is never created")

	// A file is not a directory either.
	p.OutputDir = testutil.WriteFile(t, t.TempDir(), "file", nil)
	_, err = Run(ctx, p)
	require.True(t, errors.Is(err, ErrMissingOutputDirectory), "got %v", err)
}

func TestRunSwappedArguments(t *testing.T) {
	ctx, _ := log.TestWithCapture(t)
	p, stdout := setup(t)
	p.LabelsPath, p.ImagesPath = p.ImagesPath, p.LabelsPath

	_, err := Run(ctx, p)
	require.True(t, errors.Is(err, idx.ErrBadMagic), "got %v", err)
	require.Contains(t, err.Error(), "were the arguments swapped?")
	require.Empty(t, stdout.String())
	require.Empty(t, outputFiles(t, p.OutputDir))
}

func TestRunBadInputs(t *testing.T) {
	testData := []struct {
		name       string
		labels     []byte
		images     []byte
		wantErr    error
		wantStdout int
	}{
		{
			name:    "truncated labels",
			labels:  testutil.LabelFile(3, []byte{1, 2}),
			images:  testutil.ImageFile(3, 1, 1, []byte{1, 2, 3}),
			wantErr: idx.ErrTruncatedRead,
		},
		{
			name:       "truncated images",
			labels:     testutil.LabelFile(3, []byte{1, 2, 3}),
			images:     testutil.ImageFile(3, 1, 1, []byte{1, 2}),
			wantErr:    idx.ErrTruncatedRead,
			wantStdout: 1,
		},
		{
			name:       "zero-width images",
			labels:     testutil.LabelFile(1, []byte{1}),
			images:     testutil.ImageFile(1, 1, 0, nil),
			wantErr:    idx.ErrInvalidHeader,
			wantStdout: 1,
		},
		{
			name:    "neither format",
			labels:  []byte{0, 0, 0, 1, 0, 0, 0, 0},
			images:  testutil.ImageFile(1, 1, 1, []byte{1}),
			wantErr: idx.ErrBadMagic,
		},
	}
	for _, test := range testData {
		t.Run(test.name, func(t *testing.T) {
			ctx, _ := log.TestWithCapture(t)
			in := t.TempDir()
			stdout := new(bytes.Buffer)
			p := Params{
				LabelsPath: testutil.WriteFile(t, in, "labels", test.labels),
				ImagesPath: testutil.WriteFile(t, in, "images", test.images),
				OutputDir:  t.TempDir(),
				Config:     DefaultConfig(),
				Stdout:     stdout,
			}
			_, err := Run(ctx, p)
			require.True(t, errors.Is(err, test.wantErr), "got %v, want %v", err, test.wantErr)
			require.Equal(t, test.wantStdout, strings.Count(stdout.String(), "\n"))
			require.Empty(t, outputFiles(t, p.OutputDir))
		})
	}
}

func TestRunMissingInput(t *testing.T) {
	ctx, _ := log.TestWithCapture(t)
	p, _ := setup(t)
	p.ImagesPath = filepath.Join(t.TempDir(), "missing")
	_, err := Run(ctx, p)
	require.True(t, errors.Is(err, idx.ErrFileOpen), "got %v", err)
}

func TestRunPathTooLong(t *testing.T) {
	ctx, _ := log.TestWithCapture(t)
	p, _ := setup(t)
	// Room for "<out>/3/" but not for the file name after it.
	p.Config.MaxPath = len(p.OutputDir) + len("/3/") + 2

	_, err := Run(ctx, p)
	require.True(t, errors.Is(err, pgm.ErrPathTooLong), "got %v", err)
	require.Contains(t, err.Error(), "sample 0")
	require.Empty(t, outputFiles(t, p.OutputDir))

	// Too short for the label directory itself.
	p.Config.MaxPath = len(p.OutputDir) + 1
	_, err = Run(ctx, p)
	require.True(t, errors.Is(err, pgm.ErrPathTooLong), "got %v", err)

	// No cap at all.
	p.Config.MaxPath = 0
	_, err = Run(ctx, p)
	require.NoError(t, err)
}

func TestRunStrayFile(t *testing.T) {
	ctx, _ := log.TestWithCapture(t)
	p, _ := setup(t)
	testutil.WriteFile(t, p.OutputDir, "7", []byte("not a directory"))

	_, err := Run(ctx, p)
	require.True(t, errors.Is(err, pgm.ErrDirectoryCreate), "got %v", err)
	require.Contains(t, err.Error(), "sample 1")
	// Sample 0 went out before the failure.
	require.Equal(t, []string{"3/image0.pgm", "7"}, outputFiles(t, p.OutputDir))
}

func TestRunUncheckedLabels(t *testing.T) {
	ctx, _ := log.TestWithCapture(t)
	in, out := t.TempDir(), t.TempDir()
	labelPath, imagePath := testutil.Dataset(t, in, []byte{250}, 1, 1, []byte{9})
	_, err := Run(ctx, Params{LabelsPath: labelPath, ImagesPath: imagePath, OutputDir: out, Config: DefaultConfig()})
	require.NoError(t, err)
	require.Equal(t, []string{"250/image0.pgm"}, outputFiles(t, out))
}

func TestRunRandom(t *testing.T) {
	ctx, _ := log.TestWithCapture(t)
	r, seed := random.New()
	t.Log(seed)
	count, height, width := 50+r.Intn(50), 1+r.Intn(28), 1+r.Intn(28)
	labels := random.Labels(r, count)
	pixels := random.Bytes(r, count*height*width)
	in, out := t.TempDir(), t.TempDir()
	labelPath, imagePath := testutil.Dataset(t, in, labels, uint32(height), uint32(width), pixels)
	p := Params{LabelsPath: labelPath, ImagesPath: imagePath, OutputDir: out, Config: DefaultConfig()}

	summary, err := Run(ctx, p)
	require.NoError(t, err, seed)
	require.Equal(t, count, summary.Samples, seed)
	require.Len(t, outputFiles(t, out), count, seed)
	var total int
	for _, n := range summary.PerLabel {
		total += n
	}
	require.Equal(t, count, total, seed)

	require.NoError(t, RunVerify(ctx, p), seed)
}

func TestVerify(t *testing.T) {
	ctx, _ := log.TestWithCapture(t)
	p, _ := setup(t)
	_, err := Run(ctx, p)
	require.NoError(t, err)

	var stdout bytes.Buffer
	p.Stdout = &stdout
	require.NoError(t, RunVerify(ctx, p))
	require.Equal(t, "Verified 2 images in: "+p.OutputDir+"\n", stdout.String())

	target := filepath.Join(p.OutputDir, "7", "image1.pgm")
	testData := []struct {
		name    string
		content []byte
		wantMsg string
	}{
		{name: "pixels", content: append([]byte("P5 2 2 255\n"), 50, 60, 70, 81), wantMsg: "pixels differ"},
		{name: "dimensions", content: append([]byte("P5 4 1 255\n"), 50, 60, 70, 80), wantMsg: "image is 4x1"},
		{name: "max gray", content: append([]byte("P5 2 2 200\n"), 50, 60, 70, 80), wantMsg: "maximum gray value is 200"},
		{name: "trailing bytes", content: append([]byte("P5 2 2 255\n"), 50, 60, 70, 80, 0), wantMsg: "file is 16 bytes"},
		{name: "not a pgm", content: []byte("hello"), wantMsg: "malformed"},
	}
	for _, test := range testData {
		t.Run(test.name, func(t *testing.T) {
			require.NoError(t, os.WriteFile(target, test.content, 0o644))
			err := RunVerify(ctx, p)
			require.True(t, errors.Is(err, ErrMismatch), "got %v", err)
			var me *MismatchError
			require.True(t, errors.As(err, &me))
			require.Equal(t, 1, me.Index)
			require.Contains(t, me.Msg, test.wantMsg)
		})
	}

	require.NoError(t, os.Remove(target))
	err = RunVerify(ctx, p)
	require.True(t, errors.Is(err, ErrMismatch), "got %v", err)
}

func TestSamplePath(t *testing.T) {
	dir, name, err := SamplePath(pgm.DefaultMaxPath, "out", 12, 4)
	require.NoError(t, err)
	require.Equal(t, filepath.FromSlash("out/4/"), dir)
	require.Equal(t, "image12.pgm", name)
}

func TestConvertInMemory(t *testing.T) {
	ctx, h := log.TestWithCapture(t)
	out := t.TempDir()
	images, err := idx.NewImageSet(idx.Dimensions{Width: 1, Height: 2}, []byte{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)

	_, err = Convert(ctx, idx.NewLabelSet([]byte{0, 1}), images, out, Options{MaxPath: pgm.DefaultMaxPath})
	require.True(t, errors.Is(err, ErrConsistency), "got %v", err)

	summary, err := Convert(ctx, idx.NewLabelSet([]byte{0, 1, 0}), images, out, Options{MaxPath: pgm.DefaultMaxPath})
	require.NoError(t, err)
	require.Equal(t, map[uint8]int{0: 2, 1: 1}, summary.PerLabel)
	require.Equal(t, []string{"0/image0.pgm", "0/image2.pgm", "1/image1.pgm"}, outputFiles(t, out))
	require.Contains(t, h.Messages(), "write: debug: wrote image")
}

func TestDefaultConfig(t *testing.T) {
	require.Equal(t, Config{MaxPath: 255, Progress: true, LogLevel: "warn"}, DefaultConfig())
}
