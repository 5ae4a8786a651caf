// Package history keeps a bounded FIFO of recently resolved decks and
// fuses them into a consensus sequence with a confidence score (spec
// §4.6).
package history

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nettlep/deckvision/pkg/util"
)

// decayPerAgeRank is the recency-weighting base used by Analyze's
// consensus vote (spec §9 Open Questions, pinned in DESIGN.md): an
// entry's vote weight is decayPerAgeRank raised to its position from the
// most recent entry of the same format (0-based).
const decayPerAgeRank = 0.85

// Entry is one resolved deck recorded into History (spec §3).
type Entry struct {
	ID        uuid.UUID
	FormatID  int
	Indices   []int
	Timestamp time.Time
}

// History is a per-instance bounded collection of recent Entries,
// injected into ScanManager rather than accessed as a singleton (spec §9
// design notes), so concurrent scanners over different formats and tests
// both get deterministic, isolated state.
type History struct {
	mu sync.Mutex

	maxEntries int
	maxAge     time.Duration

	entries []Entry // head = most recent
}

// New builds an empty History bounded by maxEntries and maxAge.
func New(maxEntries int, maxAge time.Duration) *History {
	return &History{maxEntries: maxEntries, maxAge: maxAge}
}

// AddEntry inserts indices at the head of the history for formatID,
// stamped at now, then evicts anything beyond maxEntries or older than
// maxAge (spec §4.6).
func (h *History) AddEntry(formatID int, indices []int, now time.Time) Entry {
	h.mu.Lock()
	defer h.mu.Unlock()

	entry := Entry{
		ID:        entryID(formatID, indices, now),
		FormatID:  formatID,
		Indices:   append([]int(nil), indices...),
		Timestamp: now,
	}
	h.entries = append([]Entry{entry}, h.entries...)

	if len(h.entries) > h.maxEntries {
		h.entries = h.entries[:h.maxEntries]
	}
	if h.maxAge > 0 {
		cutoff := now.Add(-h.maxAge)
		kept := h.entries[:0:0]
		for _, e := range h.entries {
			if !e.Timestamp.Before(cutoff) {
				kept = append(kept, e)
			}
		}
		h.entries = kept
	}
	return entry
}

// Reset clears every recorded entry (spec §4.7 ScanManager.reset).
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = nil
}

// forFormat returns formatID's entries, most-recent first. Caller must
// hold h.mu.
func (h *History) forFormat(formatID int) []Entry {
	out := make([]Entry, 0, len(h.entries))
	for _, e := range h.entries {
		if e.FormatID == formatID {
			out = append(out, e)
		}
	}
	return out
}

// CalcTotalHistorySize returns the number of entries recorded for
// formatID (spec §4.6).
func (h *History) CalcTotalHistorySize(formatID int) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.forFormat(formatID))
}

// entryID derives a stable correlation id for an entry from its content
// (spec §9 design notes: entries should be cross-referenceable against
// external logs/broadcasts), via util.HashUUID's content-hash pattern; a
// marshal or parse failure falls back to a random id rather than panicking.
func entryID(formatID int, indices []int, now time.Time) uuid.UUID {
	raw := struct {
		FormatID  int
		Indices   []int
		Timestamp time.Time
	}{formatID, indices, now}

	if id, err := uuid.Parse(util.HashUUID(raw)); err == nil {
		return id
	}
	return uuid.New()
}

func sequenceKey(indices []int) string {
	parts := make([]string, len(indices))
	for i, v := range indices {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

// Analyze finds the consensus index sequence among formatID's entries by
// recency-weighted vote (each entry's weight is decayPerAgeRank^ageRank,
// ageRank counted from the most recent entry of that format; ties broken
// by whichever candidate sequence's most recent occurrence is newest).
// It reports ok=false if the winning sequence's share of total weight is
// below minimumConsensus.
func (h *History) Analyze(formatID int, minimumConsensus float64) (indices []int, ok bool) {
	h.mu.Lock()
	entries := h.forFormat(formatID)
	h.mu.Unlock()
	if len(entries) == 0 {
		return nil, false
	}

	type group struct {
		indices      []int
		weight       float64
		mostRecentAt time.Time
	}
	groups := make(map[string]*group)
	var totalWeight float64

	for ageRank, e := range entries {
		w := pow(decayPerAgeRank, ageRank)
		totalWeight += w

		key := sequenceKey(e.Indices)
		g, exists := groups[key]
		if !exists {
			g = &group{indices: e.Indices}
			groups[key] = g
		}
		g.weight += w
		if e.Timestamp.After(g.mostRecentAt) {
			g.mostRecentAt = e.Timestamp
		}
	}

	var winner *group
	for _, g := range groups {
		switch {
		case winner == nil:
			winner = g
		case g.weight > winner.weight:
			winner = g
		case g.weight == winner.weight && g.mostRecentAt.After(winner.mostRecentAt):
			winner = g
		}
	}

	if totalWeight <= 0 || winner.weight/totalWeight < minimumConsensus {
		return nil, false
	}
	return winner.indices, true
}

// CalcConfidence returns the fraction of formatID's entries matching
// winningIndices exactly, divided by that same count plus the strongest
// competing sequence's count (clamped so the divisor is never below 1),
// per spec §4.6 and the literal S5 scenario.
func (h *History) CalcConfidence(formatID int, winningIndices []int) float64 {
	h.mu.Lock()
	entries := h.forFormat(formatID)
	h.mu.Unlock()

	winnerKey := sequenceKey(winningIndices)
	counts := make(map[string]int)
	for _, e := range entries {
		counts[sequenceKey(e.Indices)]++
	}

	winnerCount := counts[winnerKey]
	bestCompetitor := 0
	for key, c := range counts {
		if key == winnerKey {
			continue
		}
		if c > bestCompetitor {
			bestCompetitor = c
		}
	}

	divisor := winnerCount + bestCompetitor
	if divisor < 1 {
		divisor = 1
	}
	return float64(winnerCount) / float64(divisor)
}

func pow(base float64, exp int) float64 {
	result := 1.0
	for i := 0; i < exp; i++ {
		result *= base
	}
	return result
}
