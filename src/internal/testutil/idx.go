// Package testutil holds helpers shared by the tests of several packages.
package testutil

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// LabelFile returns the bytes of a label file declaring count labels and carrying payload.
func LabelFile(count uint32, payload []byte) []byte {
	b := binary.BigEndian.AppendUint32(nil, 2049)
	b = binary.BigEndian.AppendUint32(b, count)
	return append(b, payload...)
}

// ImageFile returns the bytes of an image file with the given header fields and payload.
func ImageFile(count, height, width uint32, payload []byte) []byte {
	b := binary.BigEndian.AppendUint32(nil, 2051)
	for _, v := range []uint32{count, height, width} {
		b = binary.BigEndian.AppendUint32(b, v)
	}
	return append(b, payload...)
}

// WriteFile writes content to dir/name and returns the path.
func WriteFile(t testing.TB, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %v: %v", path, err)
	}
	return path
}

// Dataset writes a consistent label/image file pair to dir and returns their paths.
func Dataset(t testing.TB, dir string, labels []byte, height, width uint32, pixels []byte) (labelPath, imagePath string) {
	t.Helper()
	labelPath = WriteFile(t, dir, "labels-idx1-ubyte", LabelFile(uint32(len(labels)), labels))
	imagePath = WriteFile(t, dir, "images-idx3-ubyte", ImageFile(uint32(len(labels)), height, width, pixels))
	return labelPath, imagePath
}
