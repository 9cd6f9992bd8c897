// Record IDs.
//
// The _id field is a 16 hex character hash of the upper-cased pathname, so
// pathnames that differ only in case address the same record.
package store

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/zeebo/xxh3"
	"golang.org/x/crypto/blake2b"
)

// Hash algorithms, selectable with Config.HashAlgorithm.
const (
	AlgXXHash3 = 1
	AlgFNV1a   = 2
	AlgBlake2b = 3
)

func hash(path string, alg int) string {
	key := strings.ToUpper(path)
	switch alg {
	case AlgFNV1a:
		h := fnv.New64a()
		h.Write([]byte(key))
		return fmt.Sprintf("%016x", h.Sum64())
	case AlgBlake2b:
		h, _ := blake2b.New(8, nil)
		h.Write([]byte(key))
		return fmt.Sprintf("%016x", h.Sum(nil))
	default:
		return fmt.Sprintf("%016x", xxh3.HashString(key))
	}
}

func validAlgorithm(alg int) bool {
	return alg == AlgXXHash3 || alg == AlgFNV1a || alg == AlgBlake2b
}
