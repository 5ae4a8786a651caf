package searchline

import (
	"math"
	"sort"

	"github.com/nettlep/deckvision/internal/geom"
)

// Line is one candidate scan-line placement: a signed perpendicular offset
// from the search origin and a signed rotation, ranked by Weight (spec
// §4.2). Smaller Weight is higher priority.
type Line struct {
	OffsetPx     float64
	AngleDegrees float64
	Weight       float64
}

// Materialize rotates a unit scan-normal, offsets perpendicularly from
// origin, and clips to the frame's bounds, returning a SampleLine spanning
// the clipped segment. ok is false if the offset line misses the frame
// entirely (spec §4.2 "getLine").
func (l Line) Materialize(frame *geom.LumaFrame, origin geom.Vec) (line *geom.SampleLine, ok bool) {
	angleRad := l.AngleDegrees * math.Pi / 180
	dir := geom.Vec{X: 1, Y: 0}.Rotated(angleRad)
	normal := dir.Perp()
	linePoint := origin.Add(normal.Scale(l.OffsetPx))

	rect := geom.NewRect(frame.Width, frame.Height)
	tMin, tMax, clipOK := rect.ClipSegment(linePoint, dir)
	if !clipOK {
		return nil, false
	}
	p0 := linePoint.Add(dir.Scale(tMin))
	p1 := linePoint.Add(dir.Scale(tMax))
	return geom.NewSampleLine(frame, p0, p1), true
}

// Generator produces and caches the prioritized Line list for a given
// image size and format reversibility, regenerating only when an input
// actually changes (spec §4.2 "Outdatedness").
type Generator struct {
	params Params

	valid      bool
	width      int
	height     int
	reversible bool
	lines      []Line
}

// NewGenerator builds a Generator with the given parameters. Call Lines
// with the current frame size and format reversibility to get an
// up-to-date, priority-sorted candidate list.
func NewGenerator(params Params) *Generator {
	return &Generator{params: params}
}

// SetParams replaces the generation parameters and marks the cache stale.
func (g *Generator) SetParams(params Params) {
	g.params = params
	g.valid = false
}

// Lines returns the current priority-sorted candidate list for an image of
// the given size and format reversibility, regenerating it if any input
// has changed since the last call.
func (g *Generator) Lines(width, height int, reversible bool) []Line {
	if g.valid && g.width == width && g.height == height && g.reversible == reversible {
		return g.lines
	}
	g.lines = generate(g.params, width, height, reversible)
	g.width, g.height, g.reversible = width, height, reversible
	g.valid = true
	return g.lines
}

func generate(p Params, width, height int, reversible bool) []Line {
	maxDim := float64(width)
	if float64(height) > maxDim {
		maxDim = float64(height)
	}
	offsetRange := (maxDim / 2) * p.LinearLimitScalar

	type raw struct {
		offsetBiased, angleBiased float64
	}
	raws := make([]raw, 0, p.LinearSteps*p.RotationSteps)
	for i := 0; i < p.LinearSteps; i++ {
		t := float64(i) / float64(p.LinearSteps)
		offsetBiased := math.Pow(t, p.LinearDensity)
		for j := 0; j < p.RotationSteps; j++ {
			angleScalar := float64(j) / float64(p.RotationSteps)
			angleBiased := normalizedSigmoid(angleScalar, p.RotationDensity)
			raws = append(raws, raw{offsetBiased, angleBiased})
		}
	}

	lines := make([]Line, 0, len(raws)*8)
	for _, r := range raws {
		offset := r.offsetBiased * offsetRange
		angle := r.angleBiased * 90
		if angle < p.MinAngleCutoff || angle > p.MaxAngleCutoff {
			continue
		}
		weight := r.offsetBiased + r.angleBiased*p.HorizontalWeightAdjustment

		offsets := []float64{offset}
		if offset != 0 {
			offsets = append(offsets, -offset)
		}
		angles := []float64{angle}
		if angle != 0 && angle < 90 {
			// at exactly +/-90 the two angles trace the same physical
			// line in opposite directions (a 180-degree duplicate), so
			// only the +90 variant is kept.
			angles = append(angles, -angle)
		}
		for _, o := range offsets {
			for _, a := range angles {
				lines = append(lines, Line{OffsetPx: o, AngleDegrees: a, Weight: weight})
				if p.Bidirectional && !reversible {
					lines = append(lines, Line{OffsetPx: o, AngleDegrees: a + 180, Weight: weight})
				}
			}
		}
	}

	sort.SliceStable(lines, func(i, j int) bool { return lines[i].Weight < lines[j].Weight })
	return dedupe(lines, width, height)
}

// normalizedSigmoid maps t in [0,1] through a sigmoid of slope k centered
// on [-1,1], then re-normalizes the result back to [0,1] so t=0 -> 0 and
// t approaches 1 -> 1 monotonically (spec §4.2).
func normalizedSigmoid(t, k float64) float64 {
	x := t*2 - 1
	sig := func(x float64) float64 { return 1 / (1 + math.Exp(-k*x)) }
	lo, hi := sig(-1), sig(1)
	if hi == lo {
		return 0
	}
	return (sig(x) - lo) / (hi - lo)
}

// dedupe drops lines whose projected position (relative to the image
// center) nearly coincides with a higher-priority line already kept: same
// angle within 0.5 degrees and center-to-center distance under 10px
// (spec §4.2).
func dedupe(lines []Line, width, height int) []Line {
	center := geom.Vec{X: float64(width) / 2, Y: float64(height) / 2}
	kept := make([]Line, 0, len(lines))
	for _, l := range lines {
		p := projectedCenter(l, center)
		dup := false
		for _, k := range kept {
			if math.Abs(angleDelta(l.AngleDegrees, k.AngleDegrees)) < 0.5 &&
				p.DistanceTo(projectedCenter(k, center)) < 10 {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, l)
		}
	}
	return kept
}

func projectedCenter(l Line, center geom.Vec) geom.Vec {
	angleRad := l.AngleDegrees * math.Pi / 180
	normal := geom.Vec{X: 1, Y: 0}.Rotated(angleRad).Perp()
	return center.Add(normal.Scale(l.OffsetPx))
}

func angleDelta(a, b float64) float64 {
	d := math.Mod(a-b+180, 360) - 180
	if d < -180 {
		d += 360
	}
	return d
}
