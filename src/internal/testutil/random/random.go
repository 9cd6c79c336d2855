// Package random generates seeded test data.
package random

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"
)

// New returns a generator and a string with its seed embedded in it, for logging.  Passing a
// custom seed reproduces a failing run.
func New(customSeed ...int64) (*rand.Rand, string) {
	seed := time.Now().UTC().UnixNano()
	if len(customSeed) > 0 {
		seed = customSeed[0]
	}
	return rand.New(rand.NewSource(seed)), fmt.Sprint("seed: ", strconv.FormatInt(seed, 10))
}

// Bytes returns n random bytes.
func Bytes(r *rand.Rand, n int) []byte {
	b := make([]byte, n)
	r.Read(b) //nolint:errcheck
	return b
}

// Labels returns n random digit labels (0-9).
func Labels(r *rand.Rand, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(r.Intn(10))
	}
	return b
}
