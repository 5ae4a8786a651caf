// Package resolve reduces a noisy matrix of per-row scanned cards into a
// single ordered card sequence by applying the Genocide and Revenge rules
// (spec §4.5).
package resolve

import "github.com/nettlep/deckvision/pkg/codedef"

// ScannedCard is one coalesced run of identical card-index reads produced
// by pkg/decode's grouping step (spec §3).
type ScannedCard struct {
	ID         int
	CardIndex  int
	RowIndex   int
	Count      int
	Robustness int
}

// Deck accumulates ScannedCards during decode and reduces them to an
// ordered, duplicate-free index sequence during Resolve (spec §3). The
// transient byIndex/byRow matrices are re-architected per-instance (not
// process-wide globals) so concurrent scanners over different formats
// never share scratch state; the matrices hold live-length-tracked
// []*ScannedCard rows instead of sentinel-cleared entries, so a removed
// card simply disappears from its row rather than leaving a zero-count
// tombstone behind.
type Deck struct {
	Format *codedef.DeckFormat

	ResolvedIndices    []int
	ResolvedRobustness []int

	byIndex [][]*ScannedCard
	byRow   map[int][]*ScannedCard

	nextID int
}

// NewDeck builds an empty Deck sized for format's full (forward + reversed,
// if applicable) card-index range.
func NewDeck(format *codedef.DeckFormat) *Deck {
	return &Deck{
		Format:  format,
		byIndex: make([][]*ScannedCard, format.MaxCardCountWithReversed()),
		byRow:   make(map[int][]*ScannedCard),
	}
}

// AddCard inserts a scanned run at cardIndex/rowIndex, or, if a card for
// that exact (cardIndex, rowIndex) pair already exists, folds the new
// observation into it by summing count and keeping the greater robustness
// (spec §4.4 "if a card for the same (card_index, row_index) already
// exists, increment counters instead").
func (d *Deck) AddCard(cardIndex, rowIndex, count, robustness int) {
	for _, c := range d.byIndex[cardIndex] {
		if c.RowIndex == rowIndex {
			c.Count += count
			if robustness > c.Robustness {
				c.Robustness = robustness
			}
			return
		}
	}
	card := &ScannedCard{
		ID:         d.nextID,
		CardIndex:  cardIndex,
		RowIndex:   rowIndex,
		Count:      count,
		Robustness: robustness,
	}
	d.nextID++
	d.byIndex[cardIndex] = append(d.byIndex[cardIndex], card)
}

// UniqueCardCount returns the number of card indices with at least one
// scanned occurrence, used for the deck-size check (spec §4.4).
func (d *Deck) UniqueCardCount() int {
	n := 0
	for _, row := range d.byIndex {
		if len(row) > 0 {
			n++
		}
	}
	return n
}
