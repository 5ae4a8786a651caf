package geom

// SampleLine is an image-space line segment with a precomputed constant
// step between sample points. It is built once per candidate scan line and
// then walked many times (mark detection, extents tracing, bit-column
// extraction), so construction does the division once and every other
// method is a multiply-add — allocation-free on the hot path (spec §9).
type SampleLine struct {
	frame *LumaFrame

	origin Vec // position of sample 0
	dir    Vec // unit direction, increasing sample index
	step   float64
	count  int
}

// NewSampleLine builds a SampleLine over frame from p0 to p1 (inclusive),
// placing approximately one sample per pixel of travel (at least 2 samples).
func NewSampleLine(frame *LumaFrame, p0, p1 Vec) *SampleLine {
	length := p0.DistanceTo(p1)
	count := int(length) + 1
	if count < 2 {
		count = 2
	}
	return NewSampleLineN(frame, p0, p1, count)
}

// NewSampleLineN builds a SampleLine over frame from p0 to p1 with exactly
// count samples (count must be >= 2).
func NewSampleLineN(frame *LumaFrame, p0, p1 Vec, count int) *SampleLine {
	if count < 2 {
		count = 2
	}
	delta := p1.Sub(p0)
	dir := delta.Normalized()
	length := delta.Length()
	return &SampleLine{
		frame:  frame,
		origin: p0,
		dir:    dir,
		step:   length / float64(count-1),
		count:  count,
	}
}

// SampleCount returns the number of discrete sample positions on the line.
func (s *SampleLine) SampleCount() int { return s.count }

// InterpolationPoint returns the image-space position of sample i.
func (s *SampleLine) InterpolationPoint(i int) Vec {
	return s.origin.Add(s.dir.Scale(s.step * float64(i)))
}

// Sample returns the bilinearly-interpolated luma value at sample i.
func (s *SampleLine) Sample(i int) float64 {
	return s.frame.Bilinear(s.InterpolationPoint(i))
}

// Center returns the midpoint of the sampled segment.
func (s *SampleLine) Center() Vec {
	return s.InterpolationPoint((s.count - 1) / 2).Add(s.InterpolationPoint(s.count / 2)).Scale(0.5)
}

// Vector returns the full displacement from the first to the last sample.
func (s *SampleLine) Vector() Vec {
	return s.dir.Scale(s.step * float64(s.count-1))
}

// Direction returns the unit vector along which sample index increases.
func (s *SampleLine) Direction() Vec { return s.dir }

// Step returns the pixel spacing between consecutive samples.
func (s *SampleLine) Step() float64 { return s.step }

// Origin returns the position of sample 0.
func (s *SampleLine) Origin() Vec { return s.origin }
