package search

// Params are the spec §6 "Configuration surface" tunables DeckSearch
// consumes directly.
type Params struct {
	// EdgeMinimumThreshold is the minimum luma swing (over the windowed
	// min/max) a peak must clear to be considered an edge at all.
	EdgeMinimumThreshold float64

	// SlopeMinimumThreshold is the minimum finite-difference slope
	// magnitude a sample must have to be considered a peak candidate.
	SlopeMinimumThreshold float64

	// SlopeWindow is the half-width, in samples, of the finite-difference
	// window used to estimate local slope.
	SlopeWindow int

	// MinMaxWindow is the half-width, in samples, of the rolling min/max
	// window used to normalize edge thresholds to local contrast.
	MinMaxWindow int

	// SearchMaxDeckMatchError is the RMSD (x100) ceiling above which a
	// candidate match is rejected (spec §4.3 step 4).
	SearchMaxDeckMatchError float64

	// DeckMinSamplesPerCard is the minimum number of traced rows a single
	// card must occupy; used to bound the expected deck height in samples
	// during extents tracing.
	DeckMinSamplesPerCard float64
}

// DefaultParams returns reasonable defaults for 8-bit luma input.
func DefaultParams() Params {
	return Params{
		EdgeMinimumThreshold:    20,
		SlopeMinimumThreshold:   8,
		SlopeWindow:             2,
		MinMaxWindow:            4,
		SearchMaxDeckMatchError: 15,
		DeckMinSamplesPerCard:   3,
	}
}
