// Package search implements DeckSearch (spec §4.3): scanning a luma frame
// along prioritized candidate lines (pkg/searchline), detecting marks,
// matching them against a CodeDefinition, and tracing the deck's extents
// into a set of per-bit MarkLines ready for pkg/decode.
package search

import (
	"github.com/nettlep/deckvision/internal/geom"
	"github.com/nettlep/deckvision/pkg/codedef"
)

// MarkLocation is one mark detected along a scan line (spec §3), before or
// after (MatchedDefinitionIndex and Classification set) matching against a
// CodeDefinition.
type MarkLocation struct {
	// ScanIndex is the sample index, along the SampleLine that produced
	// this detection, of the mark's leading edge.
	ScanIndex int

	// StartPos/EndPos are the mark's edges in image space.
	StartPos, EndPos geom.Vec

	// StartNorm/EndNorm are the mark's edges normalized to [0,1] along the
	// scan line (StartNorm = start sample index / (sampleCount-1), etc).
	// In MatchDefinition's output they are re-normalized to [0,1] over the
	// matched marks' span (first mark's start to last mark's end).
	StartNorm, EndNorm float64

	// MatchedDefinitionIndex is the index into CodeDefinition.Marks this
	// detection was assigned to by the matcher, or -1 if unmatched.
	MatchedDefinitionIndex int

	// Classification is the kind of the definition mark this detection was
	// matched to. DetectMarks leaves it at its zero value; only the matcher
	// sets it (landmarks and bit marks both show up as dark/light
	// transitions, so the detector does not tell them apart).
	Classification codedef.MarkKind
}

// NormCenter returns the mark's normalized center position.
func (m MarkLocation) NormCenter() float64 { return (m.StartNorm + m.EndNorm) / 2 }

// DeckLocation is an ordered set of matched MarkLocations for one candidate
// deck match along a specific SampleLine (spec §3).
type DeckLocation struct {
	Line  *geom.SampleLine
	Marks []MarkLocation
}

// DeckMatchResult pairs a DeckLocation with its RMSD match error, scaled
// x100 per spec §4.3.
type DeckMatchResult struct {
	Location DeckLocation
	Error    float64
}

// MarkLine is one bit-mark's raw luma column spanning the deck's traced
// rows (spec §3). Binarizing these samples into card bits is pkg/decode's
// job: it gates by sharpness and normalizes against the column's local
// min/max amplitude (spec §4.4), which requires the raw samples, not a
// pre-thresholded column.
type MarkLine struct {
	// MaxSharpnessUnitScalar is the maximum absolute sample gradient
	// between adjacent rows in this column, divided by the column's
	// min/max amplitude (spec §4.4).
	MaxSharpnessUnitScalar float64

	// Samples holds one raw luma sample per traced row.
	Samples []float64
}

// MarkLines is the result of a successful deck trace (spec §4.3 step 6):
// one raw luma column per bit mark, all the same length.
type MarkLines struct {
	// Height is the number of traced rows (shared length of every
	// column's Samples), capped at MaxMarkLineHeight.
	Height int
	// Columns are indexed in CodeDefinition bit order (0..BitCount-1).
	Columns []MarkLine
}

// MaxMarkLineHeight is the hard cap on traced deck height in samples
// (spec §3).
const MaxMarkLineHeight = 4096

// ResultKind tags which arm of SearchResult is populated.
type ResultKind int

const (
	// NotFound means no candidate line produced an accepted match.
	NotFound ResultKind = iota
	// TooSmall means a match was found but the measured deck width fell
	// below CodeDefinition.CalcMinSampleWidth.
	TooSmall
	// Decodable means MarkLines is populated and ready for pkg/decode.
	Decodable
)

// Result is the outcome of one DeckSearch.Search call (spec §3
// SearchResult).
type Result struct {
	Kind      ResultKind
	MarkLines MarkLines
}
