package codedef

import (
	"fmt"
	"math"
)

// CodeDefinition is the immutable, ordered description of one symbology:
// a left-to-right sequence of Landmark/Space/Bit marks, plus the
// derivations Finalize computes from that sequence (spec §3, §4.1).
//
// A CodeDefinition must start and end with a landmark, and its bit marks'
// BitIndex values must be contiguous from 0. Finalize verifies both.
type CodeDefinition struct {
	Marks []MarkDefinition

	// WidthMM is the sum of every mark's WidthMM, computed by Finalize.
	WidthMM float64

	// StartLandmarks, InteriorLandmarks, and EndLandmarks partition the
	// landmark mark indices (into Marks) relative to the first and last
	// bit mark. Populated by Finalize.
	StartLandmarks    []int
	InteriorLandmarks []int
	EndLandmarks      []int

	// BitCount is the number of distinct BitIndex values across all Bit
	// marks, i.e. the symbology's card-code bit width.
	BitCount int

	// Format back-references the owning DeckFormat. Set by
	// NewDeckFormat, nil until then.
	Format *DeckFormat

	finalized bool
}

// NewCodeDefinition builds a CodeDefinition from marks in left-to-right
// order. PositionIndex is assigned here and need not be pre-populated.
func NewCodeDefinition(marks []MarkDefinition) *CodeDefinition {
	cd := &CodeDefinition{Marks: make([]MarkDefinition, len(marks))}
	copy(cd.Marks, marks)
	for i := range cd.Marks {
		cd.Marks[i].PositionIndex = i
	}
	return cd
}

// Finalized reports whether Finalize has already run successfully.
func (cd *CodeDefinition) Finalized() bool { return cd.finalized }

// Finalize computes every derived field described in spec §4.1: total
// width, normalized start/width per mark, the landmark partitions, and
// each interior landmark's LandmarkMinGapRatio. It is idempotent.
func (cd *CodeDefinition) Finalize() error {
	if len(cd.Marks) < 2 {
		return fmt.Errorf("codedef: CodeDefinition needs at least 2 marks, got %d", len(cd.Marks))
	}
	if !cd.Marks[0].Type.IsLandmark() || !cd.Marks[len(cd.Marks)-1].Type.IsLandmark() {
		return fmt.Errorf("codedef: CodeDefinition must start and end with a landmark")
	}

	firstBit, lastBit := -1, -1
	maxBitIndex := -1
	for i, m := range cd.Marks {
		if m.Type.IsBit() {
			if firstBit == -1 {
				firstBit = i
			}
			lastBit = i
			if m.Type.BitIndex > maxBitIndex {
				maxBitIndex = m.Type.BitIndex
			}
		}
	}
	if firstBit == -1 {
		return fmt.Errorf("codedef: CodeDefinition has no bit marks")
	}
	if err := verifyContiguousBitIndices(cd.Marks, maxBitIndex); err != nil {
		return err
	}
	cd.BitCount = maxBitIndex + 1

	// 1. total width
	var total float64
	for _, m := range cd.Marks {
		total += m.WidthMM
	}
	if total <= 0 {
		return fmt.Errorf("codedef: CodeDefinition total width must be positive, got %v", total)
	}
	cd.WidthMM = total

	// 2. normalize start/width
	var cursor float64
	for i := range cd.Marks {
		cd.Marks[i].NormalizedStart = cursor / total
		cd.Marks[i].NormalizedWidth = cd.Marks[i].WidthMM / total
		cursor += cd.Marks[i].WidthMM
	}

	// 3. partition landmarks
	cd.StartLandmarks = cd.StartLandmarks[:0]
	cd.InteriorLandmarks = cd.InteriorLandmarks[:0]
	cd.EndLandmarks = cd.EndLandmarks[:0]
	for i, m := range cd.Marks {
		if !m.Type.IsLandmark() {
			continue
		}
		switch {
		case i < firstBit:
			cd.StartLandmarks = append(cd.StartLandmarks, i)
		case i > lastBit:
			cd.EndLandmarks = append(cd.EndLandmarks, i)
		default:
			cd.InteriorLandmarks = append(cd.InteriorLandmarks, i)
		}
	}

	// 4. interior landmark gap ratios
	for _, idx := range cd.InteriorLandmarks {
		if idx == 0 || idx == len(cd.Marks)-1 {
			continue
		}
		left, right := cd.Marks[idx-1], cd.Marks[idx+1]
		if !left.Type.IsSpace() || !right.Type.IsSpace() {
			continue
		}
		minSpace := left.WidthMM
		if right.WidthMM < minSpace {
			minSpace = right.WidthMM
		}
		lw := cd.Marks[idx].WidthMM
		if lw > 0 {
			cd.Marks[idx].LandmarkMinGapRatio = minSpace / (2 * lw)
		}
	}

	cd.finalized = true
	return nil
}

func verifyContiguousBitIndices(marks []MarkDefinition, maxBitIndex int) error {
	seen := make([]bool, maxBitIndex+1)
	for _, m := range marks {
		if !m.Type.IsBit() {
			continue
		}
		if m.Type.BitIndex < 0 || m.Type.BitIndex > maxBitIndex {
			return fmt.Errorf("codedef: bit mark index %d out of range [0,%d]", m.Type.BitIndex, maxBitIndex)
		}
		seen[m.Type.BitIndex] = true
	}
	for i, ok := range seen {
		if !ok {
			return fmt.Errorf("codedef: bit indices must be contiguous from 0, missing index %d", i)
		}
	}
	return nil
}

// IsPalindrome reports whether the mark sequence is itself a palindrome in
// both type and width (spec §4.1, §6): the i-th mark from the start must
// have the same Kind and WidthMM as the i-th mark from the end. Bit marks
// compare equal regardless of BitIndex, since a reversed deck re-numbers
// bit positions.
func (cd *CodeDefinition) IsPalindrome() bool {
	n := len(cd.Marks)
	for i := 0; i < n/2; i++ {
		a, b := cd.Marks[i], cd.Marks[n-1-i]
		if a.Type.Kind != b.Type.Kind {
			return false
		}
		if a.WidthMM != b.WidthMM {
			return false
		}
	}
	return true
}

// CalcMinSampleWidth returns the minimum number of image-space samples the
// deck must measure across, given the angle (radians, relative to the scan
// normal) at which it was found, below which DeckSearch reports
// SearchResult::TooSmall (spec §4.3). One sample per millimeter of
// foreshortened width is required, with a floor of 8 samples so extremely
// thin/short decks never pass.
func (cd *CodeDefinition) CalcMinSampleWidth(deckAngleNormalRadians float64) float64 {
	foreshortened := cd.WidthMM * math.Abs(math.Cos(deckAngleNormalRadians))
	if foreshortened < 8 {
		return 8
	}
	return foreshortened
}
