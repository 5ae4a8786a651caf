// Package searchline generates and materializes the prioritized list of
// candidate scan-line placements DeckSearch walks each frame (spec §4.2).
package searchline

// Params are the tunables spec §6 calls out under "Configuration surface"
// for search-line generation.
type Params struct {
	// LinearSteps (N_o) and RotationSteps (N_r) are the number of offset
	// and angle samples to generate.
	LinearSteps   int
	RotationSteps int

	// LinearDensity (k_l) and RotationDensity (k_r) bias the distribution
	// of generated offsets/angles toward the origin/horizontal.
	LinearDensity   float64
	RotationDensity float64

	// MinAngleCutoff and MaxAngleCutoff (degrees) bound the angles
	// actually emitted; angles outside this window are skipped.
	MinAngleCutoff float64
	MaxAngleCutoff float64

	// LinearLimitScalar (L) scales the offset range relative to
	// max(imageWidth, imageHeight)/2.
	LinearLimitScalar float64

	// HorizontalWeightAdjustment (h) weights the angle term relative to
	// the offset term when ranking lines by priority.
	HorizontalWeightAdjustment float64

	// Bidirectional, when true and the format is not reversible, also
	// emits each line's +180 degree rotation.
	Bidirectional bool
}

// DefaultParams returns reasonable defaults matching the magnitudes implied
// by spec §4.2 and §8 property 7 (first line is always offset=0, angle=0).
func DefaultParams() Params {
	return Params{
		LinearSteps:                16,
		RotationSteps:              16,
		LinearDensity:              2.0,
		RotationDensity:            2.0,
		MinAngleCutoff:             0,
		MaxAngleCutoff:             90,
		LinearLimitScalar:          1.0,
		HorizontalWeightAdjustment: 0.5,
		Bidirectional:              true,
	}
}
