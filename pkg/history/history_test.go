package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func addMany(h *History, formatID int, indices []int, n int, base time.Time) {
	for i := 0; i < n; i++ {
		h.AddEntry(formatID, indices, base.Add(time.Duration(i)*time.Millisecond))
	}
}

// TestHistory_S5_ConfidenceFactor is spec §8 S5.
func TestHistory_S5_ConfidenceFactor(t *testing.T) {
	h := New(100, 0)
	base := time.Unix(1000, 0)

	addMany(h, 1, []int{1, 2, 3}, 8, base)
	addMany(h, 1, []int{1, 2, 4}, 2, base)

	assert.Equal(t, 10, h.CalcTotalHistorySize(1))
	confidence := h.CalcConfidence(1, []int{1, 2, 3})
	assert.InDelta(t, 0.8, confidence, 1e-9)
}

// TestConfidence_Monotonicity is spec §8 property 9: for a fixed winning
// count W, increasing the competitor count C decreases confidenceFactor.
func TestConfidence_Monotonicity(t *testing.T) {
	h := New(1000, 0)
	base := time.Unix(2000, 0)

	addMany(h, 1, []int{1, 2, 3}, 8, base)
	addMany(h, 1, []int{9, 9, 9}, 1, base)
	lowCompetitor := h.CalcConfidence(1, []int{1, 2, 3})

	h2 := New(1000, 0)
	addMany(h2, 1, []int{1, 2, 3}, 8, base)
	addMany(h2, 1, []int{9, 9, 9}, 5, base)
	highCompetitor := h2.CalcConfidence(1, []int{1, 2, 3})

	assert.Greater(t, lowCompetitor, highCompetitor)
}

func TestHistory_AddEntry_EvictsBeyondMaxEntries(t *testing.T) {
	h := New(3, 0)
	base := time.Unix(3000, 0)
	for i := 0; i < 5; i++ {
		h.AddEntry(1, []int{i}, base)
	}
	assert.Equal(t, 3, h.CalcTotalHistorySize(1))
}

func TestHistory_AddEntry_EvictsByAge(t *testing.T) {
	h := New(100, 10*time.Millisecond)
	base := time.Unix(4000, 0)
	h.AddEntry(1, []int{1}, base)
	h.AddEntry(1, []int{2}, base.Add(50*time.Millisecond))
	assert.Equal(t, 1, h.CalcTotalHistorySize(1))
}

func TestHistory_Analyze_PicksWeightedWinner(t *testing.T) {
	h := New(100, 0)
	base := time.Unix(5000, 0)
	// the competitor is added first (older, lower recency weight) so the
	// winner leads on both count and recency, avoiding a confound between
	// the two factors Analyze's weighted vote combines.
	addMany(h, 1, []int{4, 5, 6}, 4, base)
	addMany(h, 1, []int{1, 2, 3}, 6, base)

	indices, ok := h.Analyze(1, 0.5)
	assert.True(t, ok)
	assert.Equal(t, []int{1, 2, 3}, indices)
}

func TestHistory_Analyze_BelowConsensusFails(t *testing.T) {
	h := New(100, 0)
	base := time.Unix(6000, 0)
	addMany(h, 1, []int{1, 2, 3}, 3, base)
	addMany(h, 1, []int{4, 5, 6}, 3, base)

	_, ok := h.Analyze(1, 0.9)
	assert.False(t, ok)
}
