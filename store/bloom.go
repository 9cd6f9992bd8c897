// Negative lookup filter over the record IDs in the sparse region.
//
// IDs are already 64-bit hashes of the pathname, so bit positions are taken
// from the two halves of the ID instead of hashing it again. The filter is
// sized at open from the sparse records present, with room for as many
// again, and is emptied by squeeze.
package store

import (
	"math"
	"strconv"

	"github.com/zeebo/xxh3"
)

const (
	bloomFalsePositive = 0.01
	bloomK             = 7
	minBloomBits       = 1 << 16
)

type bloom struct {
	words []uint64
	m     uint64 // bits
}

// newBloom returns a filter for about 2n entries.
func newBloom(n int) *bloom {
	want := -float64(2*max(n, 1)) * math.Log(bloomFalsePositive) / (math.Ln2 * math.Ln2)
	m := max(uint64(math.Ceil(want)), minBloomBits)
	m = (m + 63) &^ 63
	return &bloom{words: make([]uint64, m/64), m: m}
}

func (b *bloom) Add(id string) {
	for _, p := range b.positions(id) {
		b.words[p/64] |= 1 << (p % 64)
	}
}

// Contains reports false only when id was never added.
func (b *bloom) Contains(id string) bool {
	for _, p := range b.positions(id) {
		if b.words[p/64]&(1<<(p%64)) == 0 {
			return false
		}
	}
	return true
}

func (b *bloom) Reset() {
	clear(b.words)
}

func (b *bloom) positions(id string) [bloomK]uint64 {
	v, err := strconv.ParseUint(id, 16, 64)
	if err != nil {
		v = xxh3.HashString(id)
	}
	h1, h2 := v&math.MaxUint32, v>>32|1

	var pos [bloomK]uint64
	for i := range pos {
		pos[i] = (h1 + uint64(i)*h2) % b.m
	}
	return pos
}
