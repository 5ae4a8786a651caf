package search

import (
	"math"

	"github.com/nettlep/deckvision/internal/geom"
	"github.com/nettlep/deckvision/pkg/codedef"
)

// maxDivergentRows is how many consecutive rows may fail to re-match the
// CodeDefinition before tracing in a given direction gives up (spec §4.3
// step 5 "the pattern has diverged").
const maxDivergentRows = 3

// TraceExtents walks perpendicular to base's line, in both directions,
// re-detecting and re-matching marks one sample-row at a time, until the
// deck pattern stops matching, the frame edge is reached, or
// MaxMarkLineHeight rows have been traced. minRows is the smallest
// acceptable traced height (DeckMinSamplesPerCard * format.MinCardCount);
// tracing that never reaches it fails (spec §4.3 step 5).
func TraceExtents(frame *geom.LumaFrame, base DeckLocation, def *codedef.CodeDefinition, sp Params, minRows int) (MarkLines, bool) {
	dir := base.Line.Direction()
	normal := dir.Perp().Normalized()
	vector := base.Line.Vector()
	origin := base.Line.Origin()

	type row struct {
		marks []MarkLocation
	}
	rows := []row{{marks: base.Marks}}
	bounds := geom.NewRect(frame.Width, frame.Height)

	// walk away from the base row (r = +1, +2, ...) until divergence or the
	// frame edge, then the same in the opposite direction.
	for _, sign := range [2]float64{1, -1} {
		misses := 0
		for r := 1; len(rows) < MaxMarkLineHeight; r++ {
			offset := normal.Scale(sign * float64(r))
			p0 := origin.Add(offset)
			p1 := p0.Add(vector)
			if !bounds.Contains(p0) && !bounds.Contains(p1) {
				break
			}
			line := geom.NewSampleLineN(frame, p0, p1, base.Line.SampleCount())
			detected := DetectMarks(line, sp)
			match, ok := MatchDefinition(detected, def)
			if !ok || match.Error > sp.SearchMaxDeckMatchError || landmarkDrifted(def, match.Location.Marks) {
				misses++
				if misses >= maxDivergentRows {
					break
				}
				continue
			}
			misses = 0
			if sign > 0 {
				rows = append(rows, row{marks: match.Location.Marks})
			} else {
				rows = append([]row{{marks: match.Location.Marks}}, rows...)
			}
		}
	}

	if len(rows) < minRows {
		return MarkLines{}, false
	}
	if len(rows) > MaxMarkLineHeight {
		rows = rows[:MaxMarkLineHeight]
	}

	columns := make([]MarkLine, def.BitCount)
	for bitIdx := range columns {
		values := make([]float64, len(rows))
		for r, rw := range rows {
			values[r] = bitSampleValue(frame, def, rw.marks, bitIdx)
		}
		columns[bitIdx] = MarkLine{MaxSharpnessUnitScalar: columnSharpness(values), Samples: values}
	}

	return MarkLines{Height: len(rows), Columns: columns}, true
}

// landmarkDrifted reports whether any interior landmark matched in marks
// has moved past its LandmarkMinGapRatio bound from its definition
// position, normalized by the landmark's own width (spec §4.1, §4.3 step
// 5's landmark-edge-drift stop condition). Landmarks with no gap ratio
// (start/end landmarks, or interior ones not sandwiched between spaces)
// never bound tracing.
func landmarkDrifted(def *codedef.CodeDefinition, marks []MarkLocation) bool {
	for _, idx := range def.InteriorLandmarks {
		defMark := def.Marks[idx]
		if defMark.LandmarkMinGapRatio <= 0 || defMark.NormalizedWidth <= 0 {
			continue
		}
		for _, m := range marks {
			if m.MatchedDefinitionIndex != idx {
				continue
			}
			drift := math.Abs(m.NormCenter()-defMark.NormalizedCenter()) / defMark.NormalizedWidth
			if drift > defMark.LandmarkMinGapRatio {
				return true
			}
			break
		}
	}
	return false
}

// bitSampleValue returns the luma sample at the center of the mark in
// marks matched to def's bitIdx'th bit mark, or, if that bit was not
// matched on this row, the luma sample at the center of the row's middle
// mark.
func bitSampleValue(frame *geom.LumaFrame, def *codedef.CodeDefinition, marks []MarkLocation, bitIdx int) float64 {
	for _, m := range marks {
		if m.Classification != codedef.Bit {
			continue
		}
		if def.Marks[m.MatchedDefinitionIndex].Type.BitIndex == bitIdx {
			center := geom.Lerp(m.StartPos, m.EndPos, 0.5)
			return frame.Bilinear(center)
		}
	}
	if len(marks) == 0 {
		return 0
	}
	mid := marks[len(marks)/2]
	return frame.Bilinear(geom.Lerp(mid.StartPos, mid.EndPos, 0.5))
}

// columnSharpness reports the sharpest row-to-row transition within the
// column's useful region (its outer 1/20 at each end dropped) normalized
// by that region's own min/max amplitude (spec §4.4). A flat region
// (amplitude 0) reports zero sharpness.
func columnSharpness(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	trim := n / 20
	lo, hi := trim, n-trim
	if hi-lo < 2 {
		lo, hi = 0, n
	}
	region := values[lo:hi]

	min, max := region[0], region[0]
	for _, v := range region {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	amplitude := max - min
	if amplitude <= 0 {
		return 0
	}
	sharpest := 0.0
	for i := 1; i < len(region); i++ {
		grad := math.Abs(region[i]-region[i-1]) / amplitude
		if grad > sharpest {
			sharpest = grad
		}
	}
	return sharpest
}
