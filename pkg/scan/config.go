// Package scan orchestrates one video frame through search, decode,
// resolve, and history/analyze in sequence, exposing the combined
// AnalysisResult and cumulative ResultStats a collaborator needs to
// drive a UI or broadcast loop (spec §4.7).
package scan

import (
	"time"

	"github.com/nettlep/deckvision/pkg/decode"
	"github.com/nettlep/deckvision/pkg/search"
	"github.com/nettlep/deckvision/pkg/searchline"
)

// Config bundles every spec §6 "Configuration surface" tunable that the
// core consumes. It is a plain struct, not a file format: loading it from
// disk or flags is a collaborator concern (pkg/formats only loads the
// DeckFormat corpus, which is the one piece of config the core itself
// owns).
type Config struct {
	SearchLine searchline.Params
	Search     search.Params
	Decode     decode.Params

	// AnalysisMinHistoryEntries gates InsufficientHistory (spec §4.6).
	AnalysisMinHistoryEntries int
	// AnalysisMinimumConfidenceFactorThreshold gates InsufficientConfidence.
	AnalysisMinimumConfidenceFactorThreshold float64
	// AnalysisHighConfidenceFactorThreshold splits SuccessLowConfidence
	// from SuccessHighConfidence.
	AnalysisHighConfidenceFactorThreshold float64
	// AnalysisEnableLowConfidenceReports, when false, turns a would-be
	// SuccessLowConfidence outcome into InsufficientConfidence (both the
	// result's Kind and the counter incremented).
	AnalysisEnableLowConfidenceReports bool
	// AnalysisMinimumConsensus is the minimum vote share History.Analyze
	// requires before returning a winning sequence.
	AnalysisMinimumConsensus float64

	// HistoryMaxEntries and HistoryMaxAge bound the History FIFO.
	HistoryMaxEntries int
	HistoryMaxAge     time.Duration

	// SearchBatterySaverStartMS is how long, in milliseconds, after first
	// locating a deck ProcessFrame keeps reprocessing every frame before
	// battery-saver throttling begins (spec §5's optional soft wall-clock
	// budget). Zero starts throttling right after the first found deck.
	SearchBatterySaverStartMS int
	// SearchBatterySaverIntervalMS, once throttling has begun, is the
	// minimum spacing between full reprocessing passes; frames requested
	// sooner than this get the last computed AnalysisResult back
	// unchanged instead of re-running search/decode/analyze. Zero disables
	// battery-saver throttling entirely.
	SearchBatterySaverIntervalMS int
}

// DefaultConfig returns reasonable defaults for every tunable.
func DefaultConfig() Config {
	return Config{
		SearchLine:                                searchline.DefaultParams(),
		Search:                                     search.DefaultParams(),
		Decode:                                     decode.DefaultParams(),
		AnalysisMinHistoryEntries:                  5,
		AnalysisMinimumConfidenceFactorThreshold:   0.5,
		AnalysisHighConfidenceFactorThreshold:      0.75,
		AnalysisEnableLowConfidenceReports:         true,
		AnalysisMinimumConsensus:                   0.5,
		HistoryMaxEntries:                          50,
		HistoryMaxAge:                              30 * time.Second,
		// battery-saver throttling is opt-in; zero values disable it.
		SearchBatterySaverStartMS:                  0,
		SearchBatterySaverIntervalMS:               0,
	}
}
