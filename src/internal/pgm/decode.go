package pgm

import (
	"bytes"
	"io"
	"math"
	"math/bits"

	"github.com/pachyderm/idxconvert/src/internal/errors"
	"github.com/spakin/netpbm"
)

// Image is a decoded graymap.
type Image struct {
	Width   int
	Height  int
	MaxGray int
	Pixels  []byte
}

// Decode reads a binary PGM image with one byte per pixel.  Header tokens may be separated by any
// whitespace and '#' comments, as the netpbm format allows.  Anything after the pixels is ignored.
//
// The whole stream is read before anything is sized from the header, so a header claiming more
// pixels than the stream holds is rejected without allocating for them.
func Decode(r io.Reader) (*Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.EnsureStack(err)
	}
	if !bytes.HasPrefix(data, []byte(Magic)) {
		return nil, malformedf("not a binary graymap (want magic %q)", Magic)
	}
	cfg, err := netpbm.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, malformedf("header: %v", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, malformedf("bad dimensions %dx%d", cfg.Width, cfg.Height)
	}
	hi, n := bits.Mul64(uint64(cfg.Width), uint64(cfg.Height))
	if hi != 0 || n > math.MaxInt {
		return nil, malformedf("%dx%d pixels do not fit in memory", cfg.Width, cfg.Height)
	}
	if n > uint64(len(data)) {
		return nil, malformedf("%dx%d image needs %d pixels but the file is %d bytes", cfg.Width, cfg.Height, n, len(data))
	}
	decoded, err := netpbm.Decode(bytes.NewReader(data), &netpbm.DecodeOptions{Target: netpbm.PGM, Exact: true})
	if err != nil {
		return nil, malformedf("%v", err)
	}
	gray, ok := decoded.(*netpbm.GrayM)
	if !ok {
		return nil, malformedf("max gray %d needs two bytes per pixel", decoded.MaxValue())
	}
	img := &Image{Width: cfg.Width, Height: cfg.Height, MaxGray: int(gray.MaxValue()), Pixels: make([]byte, n)}
	for y := 0; y < img.Height; y++ {
		copy(img.Pixels[y*img.Width:(y+1)*img.Width], gray.Pix[y*gray.Stride:])
	}
	return img, nil
}

func malformedf(format string, args ...any) error {
	return errors.WithStack(&Error{Kind: ErrMalformed, Err: errors.Errorf(format, args...)})
}
