package search

import (
	"math"

	"github.com/nettlep/deckvision/pkg/codedef"
)

// MatchDefinition assigns each detected mark to the CodeDefinition's
// landmark and bit marks (its Space marks carry no ink and produce no
// detectable edge, so they never participate in the alignment) and scores
// the assignment as an RMSD over center positions normalized to the
// candidate window's span, scaled x100
// (spec §4.3 step 4). A detected sequence with fewer marks than the
// definition has landmarks+bits never matches.
func MatchDefinition(detected []MarkLocation, def *codedef.CodeDefinition) (DeckMatchResult, bool) {
	expected, expectedIdx := detectableMarks(def)
	if len(detected) < len(expected) {
		return DeckMatchResult{}, false
	}

	best, bestErr, ok := bestWindow(detected, expected, expectedIdx)
	if !ok {
		return DeckMatchResult{}, false
	}
	return DeckMatchResult{Location: DeckLocation{Marks: best}, Error: bestErr}, true
}

// detectableMarks returns def's Landmark and Bit marks, in layout order,
// along with each one's index into the full def.Marks slice.
func detectableMarks(def *codedef.CodeDefinition) ([]codedef.MarkDefinition, []int) {
	marks := make([]codedef.MarkDefinition, 0, len(def.Marks))
	idx := make([]int, 0, len(def.Marks))
	for i, m := range def.Marks {
		if m.Type.IsSpace() {
			continue
		}
		marks = append(marks, m)
		idx = append(idx, i)
	}
	return marks, idx
}

// bestWindow slides a window of len(expected) detections across detected,
// scoring each alignment, and returns the lowest-error alignment with
// MatchedDefinitionIndex (into the full CodeDefinition.Marks slice) and
// Classification populated.
func bestWindow(detected []MarkLocation, expected []codedef.MarkDefinition, expectedIdx []int) ([]MarkLocation, float64, bool) {
	windowLen := len(expected)
	bestErr := math.MaxFloat64
	var best []MarkLocation
	found := false

	for start := 0; start+windowLen <= len(detected); start++ {
		window := detected[start : start+windowLen]
		if !landmarksAlign(window, expected) {
			continue
		}
		candidate, errScore := scoreWindow(window, expected, expectedIdx)
		if errScore < bestErr {
			bestErr = errScore
			best = candidate
			found = true
		}
	}
	return best, bestErr, found
}

// landmarksAlign rejects a window outright if any definition landmark
// position does not line up with a detected mark of nonzero width (spec
// §4.3 step 4's "landmark anchors").
func landmarksAlign(window []MarkLocation, expected []codedef.MarkDefinition) bool {
	for i, e := range expected {
		if !e.Type.IsLandmark() {
			continue
		}
		d := window[i]
		if d.EndNorm-d.StartNorm <= 0 {
			return false
		}
	}
	return true
}

// scoreWindow re-normalizes the window's detections to the window's own
// span (first mark's start to last mark's end), computes the RMSD (x100)
// between expected and detected normalized centers, and returns a copy of
// window with the re-normalized positions and match metadata filled in.
func scoreWindow(window []MarkLocation, expected []codedef.MarkDefinition, expectedIdx []int) ([]MarkLocation, float64) {
	out := make([]MarkLocation, len(window))
	start := window[0].StartNorm
	span := window[len(window)-1].EndNorm - start
	if span <= 0 {
		return out, math.MaxFloat64
	}
	sumSq := 0.0
	for i, e := range expected {
		d := window[i]
		d.StartNorm = (d.StartNorm - start) / span
		d.EndNorm = (d.EndNorm - start) / span
		diff := d.NormCenter() - e.NormalizedCenter()
		sumSq += diff * diff

		d.MatchedDefinitionIndex = expectedIdx[i]
		d.Classification = e.Type.Kind
		out[i] = d
	}
	rmsd := math.Sqrt(sumSq / float64(len(expected)))
	return out, rmsd * 100
}
