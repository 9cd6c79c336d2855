package log

import (
	"strconv"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Size is a Field holding a byte count, rendered for humans ("47 MB").
func Size(name string, n int) Field {
	if n < 0 {
		return zap.Int(name, n)
	}
	return zap.String(name, humanize.Bytes(uint64(n)))
}

type sample struct {
	index int
	label uint8
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (s sample) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt("sample", s.index)
	enc.AddUint8("label", s.label)
	return nil
}

// Sample is a Field identifying one (label, image) pair by its position in the input files.
func Sample(index int, label uint8) Field {
	return zap.Inline(sample{index: index, label: label})
}

type labelCounts map[uint8]int

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (c labelCounts) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	for label := 0; label < 256; label++ {
		if n, ok := c[uint8(label)]; ok {
			enc.AddInt(strconv.Itoa(label), n)
		}
	}
	return nil
}

// LabelCounts is a Field holding the number of samples per label, in label order.
func LabelCounts(name string, counts map[uint8]int) Field {
	return zap.Object(name, labelCounts(counts))
}
