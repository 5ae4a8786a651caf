package search

import "github.com/nettlep/deckvision/internal/geom"

// DetectMarks walks line end to end, rolling a windowed min/max to
// normalize edge thresholds to local contrast, estimating slope with a
// finite-difference window, and pairing each falling edge (luma dropping
// into a mark) with the next rising edge (luma returning to background)
// into a MarkLocation (spec §4.3 step 3).
//
// Allocation-free beyond the three per-call scratch slices: no
// sub-function allocates.
func DetectMarks(line *geom.SampleLine, p Params) []MarkLocation {
	n := line.SampleCount()
	if n < 2*p.SlopeWindow+2 {
		return nil
	}

	samples := make([]float64, n)
	for i := 0; i < n; i++ {
		samples[i] = line.Sample(i)
	}
	localMin, localMax := rollingMinMax(samples, p.MinMaxWindow)

	var marks []MarkLocation
	inMark := false
	startIdx := 0
	for i := p.SlopeWindow; i < n-p.SlopeWindow; i++ {
		lo := i - p.SlopeWindow
		hi := i + p.SlopeWindow
		slope := samples[hi] - samples[lo]
		swing := localMax[i] - localMin[i]
		if swing < p.EdgeMinimumThreshold {
			continue
		}

		switch {
		case !inMark && slope <= -p.SlopeMinimumThreshold:
			startIdx = i
			inMark = true
		case inMark && slope >= p.SlopeMinimumThreshold:
			marks = append(marks, newMarkLocation(line, startIdx, i, n))
			inMark = false
		}
	}
	return marks
}

func newMarkLocation(line *geom.SampleLine, startIdx, endIdx, n int) MarkLocation {
	return MarkLocation{
		ScanIndex:              startIdx,
		StartPos:               line.InterpolationPoint(startIdx),
		EndPos:                 line.InterpolationPoint(endIdx),
		StartNorm:              float64(startIdx) / float64(n-1),
		EndNorm:                float64(endIdx) / float64(n-1),
		MatchedDefinitionIndex: -1,
	}
}

// rollingMinMax returns, for every index i, the min and max of
// samples[i-window : i+window] (clamped to the slice bounds).
func rollingMinMax(samples []float64, window int) (min, max []float64) {
	n := len(samples)
	min = make([]float64, n)
	max = make([]float64, n)
	for i := 0; i < n; i++ {
		lo := i - window
		if lo < 0 {
			lo = 0
		}
		hi := i + window
		if hi >= n {
			hi = n - 1
		}
		mn, mx := samples[lo], samples[lo]
		for k := lo + 1; k <= hi; k++ {
			if samples[k] < mn {
				mn = samples[k]
			}
			if samples[k] > mx {
				mx = samples[k]
			}
		}
		min[i] = mn
		max[i] = mx
	}
	return min, max
}
