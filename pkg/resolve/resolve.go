package resolve

import (
	"sort"

	"github.com/nettlep/deckvision/pkg/codedef"
)

// ChallengeResult is challengeGenocide's outcome, re-expressed as an enum
// in place of the source's signed-integer contract (spec §9 design notes)
// so callers never compare against magic numbers.
type ChallengeResult int

const (
	// ChallengeeWins means the card being challenged outscored the
	// champion outright (only possible if champion was chosen incorrectly;
	// kept for completeness).
	ChallengeeWins ChallengeResult = iota
	// Tie means both cards have equal count; neither is cleared.
	Tie
	// WeakWin means the champion outscores the challenger, but by less
	// than the doubling threshold; neither is cleared, left for Revenge.
	WeakWin
	// StrongWin means the champion outscores the challenger by at least
	// 2x; the challenger is cleared.
	StrongWin
)

// challengeGenocide grades champion against other by their run counts
// (spec §4.5 step 1's reference rule: winner = greater count, confidence
// grade = count_winner / count_loser).
func challengeGenocide(champion, other *ScannedCard) ChallengeResult {
	if other.Count > champion.Count {
		return ChallengeeWins
	}
	if other.Count == 0 {
		return StrongWin
	}
	grade := float64(champion.Count) / float64(other.Count)
	switch {
	case grade >= 2:
		return StrongWin
	case champion.Count == other.Count:
		return Tie
	default:
		return WeakWin
	}
}

// Resolve reduces d's scanned-card matrix to an ordered, duplicate-free
// ResolvedIndices/ResolvedRobustness pair (spec §4.5). It performs the
// reversible merge (step 0), Genocide (step 1), Revenge (step 2), and
// Emit (step 3) in order. Calling Resolve again on the same, unmodified
// byIndex matrix reproduces the same result (spec §8 property 5): every
// step here is either idempotent (the reversible merge and Genocide only
// ever remove cards, never reorder survivors) or a pure pivot (Revenge).
func (d *Deck) Resolve() {
	d.reversibleMerge()
	d.genocide()
	d.ResolvedIndices, d.ResolvedRobustness = d.revengeAndEmit()
}

// reversibleMerge implements spec §4.5 step 0: for a reversible format,
// each forward/reversed card-index pair is merged in favor of whichever
// has the greater total scanned count, ties keeping the forward index.
func (d *Deck) reversibleMerge() {
	if d.Format.CodeType != codedef.Reversible {
		return
	}
	maxFwd := d.Format.MaxCardCount()
	for c := 0; c < maxFwd; c++ {
		reversed := c + maxFwd
		if reversed >= len(d.byIndex) {
			continue
		}
		fwdTotal := totalCount(d.byIndex[c])
		revTotal := totalCount(d.byIndex[reversed])
		if revTotal > fwdTotal {
			d.byIndex[c] = nil
		} else {
			d.byIndex[reversed] = nil
		}
	}
}

func totalCount(cards []*ScannedCard) int {
	sum := 0
	for _, c := range cards {
		sum += c.Count
	}
	return sum
}

// genocide implements spec §4.5 step 1: within each card-index row with
// two or more surviving occurrences, the occurrence with the greatest
// count challenges every other; clear losers of a StrongWin challenge,
// leave ties and weak wins for Revenge to sort out.
func (d *Deck) genocide() {
	for idx, row := range d.byIndex {
		if len(row) < 2 {
			continue
		}
		champion := row[0]
		for _, c := range row[1:] {
			if c.Count > champion.Count {
				champion = c
			}
		}

		kept := row[:0:0]
		for _, c := range row {
			if c == champion {
				kept = append(kept, c)
				continue
			}
			if challengeGenocide(champion, c) == StrongWin {
				continue // cleared
			}
			kept = append(kept, c)
		}
		d.byIndex[idx] = kept
	}
}

// revengeAndEmit implements spec §4.5 steps 2-3: pivot the surviving
// cards by row index (within a row, ordered by card index), then walk
// rows in ascending order clearing any occurrence whose card index
// repeats the previous emitted one, emitting what remains.
func (d *Deck) revengeAndEmit() ([]int, []int) {
	byRow := make(map[int][]*ScannedCard)
	for _, row := range d.byIndex {
		for _, c := range row {
			byRow[c.RowIndex] = append(byRow[c.RowIndex], c)
		}
	}
	rows := make([]int, 0, len(byRow))
	for r := range byRow {
		rows = append(rows, r)
	}
	sort.Ints(rows)

	var indices, robustness []int
	lastCardIndex := -1
	haveLast := false
	for _, r := range rows {
		cards := byRow[r]
		sort.Slice(cards, func(i, j int) bool { return cards[i].CardIndex < cards[j].CardIndex })
		for _, c := range cards {
			if haveLast && c.CardIndex == lastCardIndex {
				continue
			}
			indices = append(indices, c.CardIndex)
			robustness = append(robustness, c.Robustness)
			lastCardIndex = c.CardIndex
			haveLast = true
		}
	}
	return indices, robustness
}
