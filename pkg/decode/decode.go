package decode

import (
	"fmt"

	"github.com/nettlep/deckvision/pkg/codedef"
	"github.com/nettlep/deckvision/pkg/resolve"
	"github.com/nettlep/deckvision/pkg/search"
)

// Decode assembles per-row bit words from markLines, gates on sharpness,
// error-corrects each word against format, groups consecutive identical
// card indices into ScannedCard runs, and checks the result against
// format.MinCardCount (spec §4.4).
func Decode(markLines search.MarkLines, format *codedef.DeckFormat, p Params) Result {
	if len(markLines.Columns) != format.Code.BitCount {
		return Result{Kind: GeneralFailure, Reason: fmt.Sprintf("decode: expected %d bit columns, got %d", format.Code.BitCount, len(markLines.Columns))}
	}
	if markLines.Height == 0 {
		return Result{Kind: GeneralFailure, Reason: "decode: empty MarkLines"}
	}

	if p.EnableSharpnessDetection {
		maxSharpness := 0.0
		for _, col := range markLines.Columns {
			if col.MaxSharpnessUnitScalar > maxSharpness {
				maxSharpness = col.MaxSharpnessUnitScalar
			}
		}
		if maxSharpness < p.MinSharpness {
			return Result{Kind: NotSharp}
		}
	}

	thresholds := make([]float64, len(markLines.Columns))
	for k, col := range markLines.Columns {
		thresholds[k] = binarizeThreshold(col.Samples, p.MarkLineAverageOffsetMultiplier)
	}

	deck := resolve.NewDeck(format)
	bitCount := format.Code.BitCount

	runCardIndex := -1
	runStartRow := 0
	runLength := 0
	runRobustness := 0
	flush := func() {
		if runLength == 0 {
			return
		}
		deck.AddCard(runCardIndex, runStartRow, runLength, runRobustness)
	}

	for r := 0; r < markLines.Height; r++ {
		word := uint32(0)
		for k, col := range markLines.Columns {
			if binarizeBit(col.Samples[r], thresholds[k], format.InvertLuma) {
				word |= 1 << uint(k)
			}
		}

		cardIndex := format.ErrorCorrectIndex(word)
		if cardIndex == codedef.UnassignedIndex {
			flush()
			runLength = 0
			runCardIndex = -1
			continue
		}
		robustness := rowRobustness(format, word, cardIndex, bitCount)

		if cardIndex == runCardIndex {
			runLength++
			if robustness > runRobustness {
				runRobustness = robustness
			}
			continue
		}
		flush()
		runCardIndex = cardIndex
		runStartRow = r
		runLength = 1
		runRobustness = robustness
	}
	flush()

	if deck.UniqueCardCount() < format.MinCardCount {
		return Result{Kind: TooFewCards, Deck: deck}
	}
	return Result{Kind: Decoded, Deck: deck}
}

// binarizeThreshold computes a column's binarization cutoff from its full
// min/max range, offset by multiplier*span (spec §9 Open Questions).
func binarizeThreshold(samples []float64, multiplier float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	min, max := samples[0], samples[0]
	for _, v := range samples {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	span := max - min
	return (min+max)/2 + multiplier*span
}

// binarizeBit reports the bit value at one sample: darker-than-threshold
// reads as 1 unless the format inverts luma polarity, in which case
// lighter-than-threshold reads as 1.
func binarizeBit(value, threshold float64, invertLuma bool) bool {
	dark := value < threshold
	if invertLuma {
		return !dark
	}
	return dark
}

// rowRobustness maps the Hamming distance between the raw word and its
// error-corrected code into [0,255] (spec §4.4; aggregation rule pinned
// in DESIGN.md).
func rowRobustness(format *codedef.DeckFormat, word uint32, cardIndex, bitCount int) int {
	code := format.ErrorCorrectCode(word)
	if code == codedef.UnassignedCode {
		return 0
	}
	distance := codedef.HammingDistance(word, uint32(code))
	if bitCount == 0 {
		return 255
	}
	r := 255 - (255*distance)/bitCount
	if r < 0 {
		r = 0
	}
	return r
}
