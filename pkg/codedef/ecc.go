package codedef

import (
	"math/bits"

	"github.com/nettlep/deckvision/internal/invariant"
)

// UnassignedIndex is the sentinel stored in an error-correction index table
// for a bit-word whose nearest real card codes tie (spec §4.1).
const UnassignedIndex = -1

// UnassignedCode is the sentinel stored in an error-correction code table
// for a bit-word whose nearest real card codes tie.
const UnassignedCode int64 = -1

// HammingDistance returns popcount(a XOR b).
func HammingDistance(a, b uint32) int {
	return bits.OnesCount32(a ^ b)
}

// eccTables holds the two tables spec §4.1 derives from a format's real
// card codes.
type eccTables struct {
	codeToIndex []int   // len 2^bitCount; UnassignedIndex if tied
	codeToCode  []int64 // len 2^bitCount; UnassignedCode if tied
}

// buildECC computes, for every possible bit-word v in [0, 2^bitCount), the
// unique real card code whose Hamming distance to v is strictly less than
// to every other real card code (spec §4.1). Ties mark both tables
// Unassigned at v. codes[i] is the real card code for card index i;
// indices must be unique bit-words.
func buildECC(codes []uint32, bitCount int) eccTables {
	size := 1 << uint(bitCount)
	t := eccTables{
		codeToIndex: make([]int, size),
		codeToCode:  make([]int64, size),
	}

	for v := 0; v < size; v++ {
		best := -1
		bestIdx := -1
		tie := false
		for idx, c := range codes {
			d := HammingDistance(uint32(v), c)
			switch {
			case best == -1 || d < best:
				best = d
				bestIdx = idx
				tie = false
			case d == best && idx != bestIdx:
				tie = true
			}
		}
		if tie || bestIdx == -1 {
			t.codeToIndex[v] = UnassignedIndex
			t.codeToCode[v] = UnassignedCode
			continue
		}
		t.codeToIndex[v] = bestIdx
		t.codeToCode[v] = int64(codes[bestIdx])
	}

	// Direct-hit assertion (spec §4.1): every real code must map to itself
	// at distance 0.
	for idx, c := range codes {
		invariant.Assert(t.codeToIndex[c] == idx,
			"card code %#x (index %d) does not error-correct to itself (got index %d)",
			c, idx, t.codeToIndex[c])
	}

	return t
}

// minPairwiseDistance returns the minimum Hamming distance between any two
// distinct codes in the slice, or bitCount+1 (an impossible distance) if
// fewer than two codes are given. It is a corpus validation helper (spec
// §4.1: "used for corpus validation, not required each frame"), not called
// on the per-frame hot path.
func minPairwiseDistance(codes []uint32, bitCount int) int {
	if len(codes) < 2 {
		return bitCount + 1
	}
	min := bitCount + 1
	for i := 0; i < len(codes); i++ {
		for j := i + 1; j < len(codes); j++ {
			if d := HammingDistance(codes[i], codes[j]); d < min {
				min = d
			}
		}
	}
	return min
}
