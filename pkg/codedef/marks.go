package codedef

import "fmt"

// MarkKind identifies the role a MarkDefinition plays in a CodeDefinition's
// layout: Landmark (anchors position), Space (separates marks, carries no
// data), or Bit (carries one bit of the card code).
type MarkKind int

const (
	// Landmark anchors the scanner's position along the deck.
	Landmark MarkKind = iota
	// Space separates marks and carries no data.
	Space
	// Bit carries one bit of the card code.
	Bit
)

// String renders the mark kind for debug output and trace events.
func (k MarkKind) String() string {
	switch k {
	case Landmark:
		return "Landmark"
	case Space:
		return "Space"
	case Bit:
		return "Bit"
	default:
		return fmt.Sprintf("MarkKind(%d)", int(k))
	}
}

// MarkType is the tagged-variant description of one mark's role (spec §3).
// BitIndex and BitCount are only meaningful when Kind == Bit.
type MarkType struct {
	Kind MarkKind

	// BitIndex is this mark's position (0-based, left to right) among all
	// Bit marks in the CodeDefinition.
	BitIndex int

	// BitCount is the number of card-code bits this single physical mark
	// contributes (almost always 1; a format with dual-width bit marks can
	// set it higher).
	BitCount int
}

// IsLandmark reports whether t describes a landmark mark.
func (t MarkType) IsLandmark() bool { return t.Kind == Landmark }

// IsSpace reports whether t describes a space mark.
func (t MarkType) IsSpace() bool { return t.Kind == Space }

// IsBit reports whether t describes a bit mark.
func (t MarkType) IsBit() bool { return t.Kind == Bit }

// MarkDefinition describes one physical mark in a CodeDefinition's
// left-to-right layout. It is immutable once CodeDefinition.Finalize has
// run (spec §3).
type MarkDefinition struct {
	Type MarkType

	// PositionIndex is this mark's 0-based position in the overall,
	// left-to-right mark sequence.
	PositionIndex int

	// StartMM and WidthMM are the mark's physical position and width along
	// the deck, in millimeters, as authored in the deck-formats file.
	StartMM, WidthMM float64

	// NormalizedStart and NormalizedWidth are StartMM/WidthMM divided by
	// the CodeDefinition's total WidthMM. Populated by Finalize.
	NormalizedStart, NormalizedWidth float64

	// LandmarkMinGapRatio bounds edge drift during extents tracing (spec
	// §4.1). Only populated for interior landmarks sandwiched between two
	// spaces; zero otherwise.
	LandmarkMinGapRatio float64
}

// NormalizedCenter returns the mark's center position as a fraction of the
// CodeDefinition's total width.
func (m MarkDefinition) NormalizedCenter() float64 {
	return m.NormalizedStart + m.NormalizedWidth/2
}

// NormalizedEnd returns the mark's trailing edge as a fraction of the
// CodeDefinition's total width.
func (m MarkDefinition) NormalizedEnd() float64 {
	return m.NormalizedStart + m.NormalizedWidth
}
