package idx

import (
	"fmt"
	"io"
	"math"
	"math/bits"

	"github.com/pachyderm/idxconvert/src/internal/errors"
)

// Dimensions are the width and height shared by every image in a set.
type Dimensions struct {
	Width  int
	Height int
}

// Pixels returns the number of bytes in one image.
func (d Dimensions) Pixels() int { return d.Width * d.Height }

func (d Dimensions) String() string { return fmt.Sprintf("%dx%d", d.Width, d.Height) }

// ImageSet is the decoded content of an image file: one contiguous buffer holding Len() images of
// Pixels() bytes each, in file order.  It is not modified after it is read.
type ImageSet struct {
	Dimensions
	count  int
	pixels []byte
}

// NewImageSet wraps pixels, which must hold a whole number of images of size dims.
func NewImageSet(dims Dimensions, pixels []byte) (*ImageSet, error) {
	if dims.Width <= 0 || dims.Height <= 0 {
		return nil, formatErrorf(ErrInvalidHeader, "non-positive dimensions %v", dims)
	}
	if len(pixels)%dims.Pixels() != 0 {
		return nil, formatErrorf(ErrInvalidHeader, "%d bytes is not a whole number of %v images", len(pixels), dims)
	}
	return &ImageSet{Dimensions: dims, count: len(pixels) / dims.Pixels(), pixels: pixels}, nil
}

// Len returns the number of images.
func (s *ImageSet) Len() int { return s.count }

// Image returns a read-only view of image i.  The result shares memory with the set.
func (s *ImageSet) Image(i int) []byte {
	n := s.Pixels()
	return s.pixels[i*n : (i+1)*n : (i+1)*n]
}

// Bytes returns every pixel of every image.  Callers must not modify the result.
func (s *ImageSet) Bytes() []byte { return s.pixels }

// ReadImages decodes an image file from r.  The count, height and width must all be positive when
// read as signed 32-bit integers.
func ReadImages(r io.Reader) (*ImageSet, error) {
	magic, err := ReadUint32(r)
	if err != nil {
		return nil, err
	}
	if magic != ImageMagic {
		return nil, formatErrorf(ErrBadMagic, "not an image file -- magic number %d does not match %d", magic, ImageMagic)
	}
	var header [3]uint32 // count, height, width
	for i := range header {
		if header[i], err = ReadUint32(r); err != nil {
			return nil, err
		}
	}
	count, height, width := header[0], header[1], header[2]
	if !positive(count) || !positive(height) || !positive(width) {
		return nil, formatErrorf(ErrInvalidHeader, "error reading image data: num_images=%d, height=%d, width=%d",
			int32(count), int32(height), int32(width))
	}
	size, ok := payloadSize(count, height, width)
	if !ok {
		return nil, formatErrorf(ErrInvalidHeader, "%d images of %dx%d do not fit in memory", count, width, height)
	}
	pixels, err := readPayload(r, size, "bytes from images file")
	if err != nil {
		return nil, err
	}
	return &ImageSet{
		Dimensions: Dimensions{Width: int(width), Height: int(height)},
		count:      int(count),
		pixels:     pixels,
	}, nil
}

// ParseImageFile reads and decodes the image file at path.
func ParseImageFile(path string) (_ *ImageSet, retErr error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer errors.Close(&retErr, f, "close %v", path)
	images, err := ReadImages(f)
	if err != nil {
		return nil, withPath(err, path)
	}
	return images, nil
}

func positive(v uint32) bool { return int32(v) > 0 }

func payloadSize(count, height, width uint32) (int64, bool) {
	hi, pixels := bits.Mul64(uint64(height), uint64(width))
	if hi != 0 {
		return 0, false
	}
	hi, total := bits.Mul64(uint64(count), pixels)
	if hi != 0 || total > math.MaxInt {
		return 0, false
	}
	return int64(total), true
}
