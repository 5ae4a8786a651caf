package resolve

import (
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nettlep/deckvision/pkg/codedef"
)

func mk(kind codedef.MarkKind, bitIndex int, width float64) codedef.MarkDefinition {
	return codedef.MarkDefinition{Type: codedef.MarkType{Kind: kind, BitIndex: bitIndex}, WidthMM: width}
}

// normalMarks is a non-palindromic 4-bit layout (leading landmark wider
// than the trailing one), suitable for CodeType: Normal.
func normalMarks() []codedef.MarkDefinition {
	return []codedef.MarkDefinition{
		mk(codedef.Landmark, 0, 3),
		mk(codedef.Space, 0, 2),
		mk(codedef.Bit, 0, 2),
		mk(codedef.Bit, 1, 2),
		mk(codedef.Bit, 2, 2),
		mk(codedef.Bit, 3, 2),
		mk(codedef.Space, 0, 2),
		mk(codedef.Landmark, 0, 2),
	}
}

// palindromicMarks is a symmetric 8-bit layout (both landmarks width 2),
// suitable for CodeType: Reversible.
func palindromicMarks() []codedef.MarkDefinition {
	return []codedef.MarkDefinition{
		mk(codedef.Landmark, 0, 2),
		mk(codedef.Space, 0, 2),
		mk(codedef.Bit, 0, 2),
		mk(codedef.Bit, 1, 2),
		mk(codedef.Bit, 2, 2),
		mk(codedef.Bit, 3, 2),
		mk(codedef.Bit, 4, 2),
		mk(codedef.Bit, 5, 2),
		mk(codedef.Bit, 6, 2),
		mk(codedef.Bit, 7, 2),
		mk(codedef.Space, 0, 2),
		mk(codedef.Landmark, 0, 2),
	}
}

func newNormalFormat(t *testing.T, minCardCount int) *codedef.DeckFormat {
	t.Helper()
	format, err := codedef.NewDeckFormat(codedef.NewDeckFormatInput{
		ID:           1,
		Name:         "normal-test",
		CodeType:     codedef.Normal,
		MinCardCount: minCardCount,
		CardCodesNdo: []uint32{0b0000, 0b0011, 0b0101, 0b1010, 0b0110, 0b1111},
		Marks:        normalMarks(),
	})
	require.NoError(t, err)
	return format
}

func newReversibleFormat(t *testing.T, maxCardCount int) *codedef.DeckFormat {
	t.Helper()
	// pick 8-bit codes whose bit-reversals are neither themselves nor
	// another picked code, so every forward and reversed code is distinct.
	codes := make([]uint32, 0, maxCardCount)
	used := make(map[uint32]bool)
	for v := uint32(0); len(codes) < maxCardCount; v++ {
		r := uint32(bits.Reverse8(uint8(v)))
		if r == v || used[v] || used[r] {
			continue
		}
		codes = append(codes, v)
		used[v], used[r] = true, true
	}
	format, err := codedef.NewDeckFormat(codedef.NewDeckFormatInput{
		ID:           2,
		Name:         "reversible-test",
		CodeType:     codedef.Reversible,
		MinCardCount: 1,
		CardCodesNdo: codes,
		Marks:        palindromicMarks(),
	})
	require.NoError(t, err)
	return format
}

// TestResolve_S2_Genocide is spec §8 S2.
func TestResolve_S2_Genocide(t *testing.T) {
	format := newNormalFormat(t, 1)
	deck := NewDeck(format)
	deck.AddCard(5, 10, 30, 200)
	deck.AddCard(5, 40, 3, 200)

	deck.Resolve()

	assert.Equal(t, []int{5}, deck.ResolvedIndices)
}

// TestResolve_S3_Revenge is spec §8 S3.
func TestResolve_S3_Revenge(t *testing.T) {
	format := newNormalFormat(t, 1)
	deck := NewDeck(format)
	deck.AddCard(5, 10, 5, 200)
	deck.AddCard(5, 12, 5, 200)

	deck.Resolve()

	assert.Equal(t, []int{5}, deck.ResolvedIndices)
}

// TestResolve_S4_ReversibleMerge is spec §8 S4.
func TestResolve_S4_ReversibleMerge(t *testing.T) {
	format := newReversibleFormat(t, 52)
	deck := NewDeck(format)
	deck.AddCard(3, 20, 8, 200)
	deck.AddCard(3+52, 70, 2, 200)

	deck.Resolve()

	assert.Equal(t, []int{3}, deck.ResolvedIndices)
}

// TestResolve_Idempotence is spec §8 property 5: two freshly built decks
// fed the same decode output resolve to identical ResolvedIndices.
func TestResolve_Idempotence(t *testing.T) {
	format := newNormalFormat(t, 1)
	build := func() *Deck {
		d := NewDeck(format)
		d.AddCard(1, 0, 10, 100)
		d.AddCard(2, 1, 10, 100)
		d.AddCard(2, 2, 10, 100)
		d.AddCard(3, 3, 10, 100)
		return d
	}

	a, b := build(), build()
	a.Resolve()
	b.Resolve()

	assert.Equal(t, a.ResolvedIndices, b.ResolvedIndices)
	assert.Equal(t, a.ResolvedRobustness, b.ResolvedRobustness)
}

// TestResolve_NoAdjacentDuplicates is spec §8 property 6.
func TestResolve_NoAdjacentDuplicates(t *testing.T) {
	format := newNormalFormat(t, 1)
	deck := NewDeck(format)
	deck.AddCard(1, 0, 10, 100)
	deck.AddCard(2, 1, 6, 100)
	deck.AddCard(2, 2, 6, 100)
	deck.AddCard(3, 3, 10, 100)

	deck.Resolve()

	for i := 1; i < len(deck.ResolvedIndices); i++ {
		assert.NotEqual(t, deck.ResolvedIndices[i-1], deck.ResolvedIndices[i])
	}
}

func TestChallengeGenocide_Grades(t *testing.T) {
	champion := &ScannedCard{Count: 30}
	weak := &ScannedCard{Count: 20}
	strong := &ScannedCard{Count: 3}
	tie := &ScannedCard{Count: 30}

	assert.Equal(t, WeakWin, challengeGenocide(champion, weak))
	assert.Equal(t, StrongWin, challengeGenocide(champion, strong))
	assert.Equal(t, Tie, challengeGenocide(champion, tie))
}
