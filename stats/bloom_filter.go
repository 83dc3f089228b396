package stats

import (
	"hash/fnv"
	"math"
)

// bloomFilter is a plain bloom filter used by the in-memory view cache. It
// is not safe for concurrent use; the cache serializes access.
type bloomFilter struct {
	bits      []bool
	numBits   uint
	numHashes uint
}

func newBloomFilter(expectedItems uint, falsePositiveRate float64) *bloomFilter {
	if expectedItems == 0 {
		expectedItems = 1
	}

	m := optimalBitCount(expectedItems, falsePositiveRate)
	k := optimalHashCount(m, expectedItems)

	return &bloomFilter{
		bits:      make([]bool, m),
		numBits:   m,
		numHashes: k,
	}
}

func optimalBitCount(n uint, p float64) uint {
	m := -float64(n) * math.Log(p) / (math.Log(2) * math.Log(2))

	return uint(math.Ceil(m))
}

func optimalHashCount(m, n uint) uint {
	k := uint(math.Round(float64(m) / float64(n) * math.Log(2)))
	if k < 1 {
		return 1
	}

	return k
}

func (bf *bloomFilter) hashPositions(item string) []uint {
	// h1: FNV-1a 32-bit
	h1 := fnv.New32a()
	h1.Write([]byte(item))
	v1 := uint(h1.Sum32())

	// h2: FNV-1 32-bit (different variant, forced odd for full coverage)
	h2 := fnv.New32()
	h2.Write([]byte(item))
	v2 := uint(h2.Sum32()) | 1

	positions := make([]uint, bf.numHashes)
	for i := uint(0); i < bf.numHashes; i++ {
		positions[i] = (v1 + i*v2) % bf.numBits
	}

	return positions
}

func (bf *bloomFilter) Add(item string) {
	for _, pos := range bf.hashPositions(item) {
		bf.bits[pos] = true
	}
}

// Test returns false when the item is definitely not in the set and true
// when it might be (false positives are possible).
func (bf *bloomFilter) Test(item string) bool {
	for _, pos := range bf.hashPositions(item) {
		if !bf.bits[pos] {
			return false
		}
	}

	return true
}
