// Package decode turns a successful search's MarkLines into a Deck of
// scanned cards: per-row bit-word assembly, sharpness gating,
// error-correcting lookup, and grouping of same-card runs (spec §4.4).
package decode

import "github.com/nettlep/deckvision/pkg/resolve"

// ResultKind tags which arm of Result is populated.
type ResultKind int

const (
	// GeneralFailure means decode could not proceed (e.g. a malformed
	// MarkLines); Reason holds a human-readable cause.
	GeneralFailure ResultKind = iota
	// NotSharp means every bit column's sharpness fell below the
	// configured minimum.
	NotSharp
	// TooFewCards means decode finished but collected fewer unique card
	// indices than the format requires.
	TooFewCards
	// Decoded means decode finished and Deck.UniqueCardCount satisfied
	// format.MinCardCount.
	Decoded
)

// Result is the outcome of one Decode call (spec §3 DecodeResult).
type Result struct {
	Kind   ResultKind
	Reason string
	Deck   *resolve.Deck
}

// Params are the spec §6 "Configuration surface" tunables Decode consumes
// directly.
type Params struct {
	// EnableSharpnessDetection gates decoding on MinSharpness when true.
	EnableSharpnessDetection bool

	// MinSharpness is the minimum MaxSharpnessUnitScalar, across all bit
	// columns, required to proceed (spec §4.4).
	MinSharpness float64

	// MarkLineAverageOffsetMultiplier scales the column's min/max span to
	// offset the binarization threshold away from the plain midpoint
	// (spec §9 Open Questions; pinned to apply to the span, not the raw
	// average — see DESIGN.md).
	MarkLineAverageOffsetMultiplier float64
}

// DefaultParams returns reasonable decode defaults.
func DefaultParams() Params {
	return Params{
		EnableSharpnessDetection:        true,
		MinSharpness:                    0.15,
		MarkLineAverageOffsetMultiplier: 0,
	}
}
