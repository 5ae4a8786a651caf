package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nettlep/deckvision/pkg/codedef"
)

// interiorLandmarkMarks lays out landmark-space-bit0-bit1-space-landmark-
// space-bit2-bit3-space-landmark, giving the middle landmark a
// LandmarkMinGapRatio bounded by its two flanking width-1 spaces.
func interiorLandmarkMarks() []codedef.MarkDefinition {
	mk := func(kind codedef.MarkKind, bitIndex int, width float64) codedef.MarkDefinition {
		return codedef.MarkDefinition{Type: codedef.MarkType{Kind: kind, BitIndex: bitIndex}, WidthMM: width}
	}
	return []codedef.MarkDefinition{
		mk(codedef.Landmark, 0, 3),
		mk(codedef.Space, 0, 1),
		mk(codedef.Bit, 0, 1),
		mk(codedef.Bit, 1, 1),
		mk(codedef.Space, 0, 1),
		mk(codedef.Landmark, 0, 2),
		mk(codedef.Space, 0, 1),
		mk(codedef.Bit, 2, 1),
		mk(codedef.Bit, 3, 1),
		mk(codedef.Space, 0, 1),
		mk(codedef.Landmark, 0, 3),
	}
}

func newInteriorLandmarkDef(t *testing.T) *codedef.CodeDefinition {
	t.Helper()
	cd := codedef.NewCodeDefinition(interiorLandmarkMarks())
	require.NoError(t, cd.Finalize())
	return cd
}

func TestLandmarkDrifted_FalseWhenRowMatchesDefinitionPosition(t *testing.T) {
	cd := newInteriorLandmarkDef(t)
	require.Len(t, cd.InteriorLandmarks, 1)
	idx := cd.InteriorLandmarks[0]
	defMark := cd.Marks[idx]

	marks := []MarkLocation{
		{MatchedDefinitionIndex: idx, StartNorm: defMark.NormalizedStart, EndNorm: defMark.NormalizedEnd()},
	}
	assert.False(t, landmarkDrifted(cd, marks))
}

func TestLandmarkDrifted_TrueWhenRowPositionExceedsGapRatio(t *testing.T) {
	cd := newInteriorLandmarkDef(t)
	idx := cd.InteriorLandmarks[0]
	defMark := cd.Marks[idx]
	require.Greater(t, defMark.LandmarkMinGapRatio, 0.0)

	// shift the matched mark by (LandmarkMinGapRatio + 1) times its own
	// width, a full width past its LandmarkMinGapRatio bound.
	shift := defMark.NormalizedWidth * (defMark.LandmarkMinGapRatio + 1)
	marks := []MarkLocation{
		{
			MatchedDefinitionIndex: idx,
			StartNorm:              defMark.NormalizedStart + shift,
			EndNorm:                defMark.NormalizedEnd() + shift,
		},
	}
	assert.True(t, landmarkDrifted(cd, marks))
}

func TestLandmarkDrifted_IgnoresLandmarksWithNoGapRatio(t *testing.T) {
	cd := newInteriorLandmarkDef(t)
	// the start landmark (index 0) is never in InteriorLandmarks, so an
	// arbitrarily displaced detection assigned to it never counts as drift.
	marks := []MarkLocation{
		{MatchedDefinitionIndex: 0, StartNorm: 0.9, EndNorm: 0.95},
	}
	assert.False(t, landmarkDrifted(cd, marks))
}
