package scan

import (
	"github.com/nettlep/deckvision/pkg/decode"
	"github.com/nettlep/deckvision/pkg/resolve"
	"github.com/nettlep/deckvision/pkg/search"
)

// AnalysisKind tags which arm of AnalysisResult is populated (spec §3).
type AnalysisKind int

const (
	// Fail means search or decode did not succeed (not found, too small,
	// not sharp, too few cards, or a general decode failure). Only the
	// too-few-cards case carries a Deck.
	Fail AnalysisKind = iota
	// Inconclusive means History.Analyze found no consensus sequence.
	Inconclusive
	// InsufficientHistory means too few entries exist yet for this
	// format to trust a consensus.
	InsufficientHistory
	// InsufficientConfidence means the consensus exists but its
	// confidence factor fell below the minimum threshold.
	InsufficientConfidence
	// SuccessLowConfidence means the consensus cleared the minimum
	// threshold but not the high-confidence one.
	SuccessLowConfidence
	// SuccessHighConfidence means the consensus cleared the
	// high-confidence threshold.
	SuccessHighConfidence
)

// String names an AnalysisKind for logging/display.
func (k AnalysisKind) String() string {
	switch k {
	case Fail:
		return "Fail"
	case Inconclusive:
		return "Inconclusive"
	case InsufficientHistory:
		return "InsufficientHistory"
	case InsufficientConfidence:
		return "InsufficientConfidence"
	case SuccessLowConfidence:
		return "SuccessLowConfidence"
	case SuccessHighConfidence:
		return "SuccessHighConfidence"
	default:
		return "Unknown"
	}
}

// AnalysisResult is the outcome of one ProcessFrame call (spec §3), also
// carrying whichever upstream SearchResult/DecodeResult/Deck is relevant
// to the arm it represents.
type AnalysisResult struct {
	Kind AnalysisKind

	Search *search.Result
	Decode *decode.Result
	Deck   *resolve.Deck

	// Confidence is populated for InsufficientConfidence,
	// SuccessLowConfidence and SuccessHighConfidence.
	Confidence float64
}

// TraceEvent is a structured progress notification the core emits instead
// of performing I/O itself (spec §9 "Logging hooks"); a collaborator adapts
// this onto slog, a UI overlay, or a broadcast channel.
type TraceEvent struct {
	Stage   string // "search", "decode", "resolve", "analyze"
	Outcome string
	Detail  string
}

// TraceFunc receives every TraceEvent the Manager emits while processing
// a frame.
type TraceFunc func(event TraceEvent)

// ResultStats are the cumulative per-arm counters spec §6's "Core output
// contract" requires. Validated counters are incremented by a
// collaborator that knows ground truth (the core has no notion of
// "correct"); ProcessFrame only increments the search/decode/analyzer
// groups.
type ResultStats struct {
	SearchFound    int
	SearchNotFound int
	SearchTooSmall int

	DecodeDecoded   int
	DecodeBlurry    int
	DecodeTooFew    int
	DecodeFail      int

	AnalyzerFail                   int
	AnalyzerInconclusive           int
	AnalyzerInsufficientHistory    int
	AnalyzerInsufficientConfidence int
	AnalyzerReportLow              int
	AnalyzerReportHigh             int

	ValidatedCorrect         int
	ValidatedIncorrect       int
	ValidatedMissingCards    int
	ValidatedOutOfOrder      int
	ValidatedReportIncorrect int
	ValidatedReportCorrectLow  int
	ValidatedReportCorrectHigh int
}

// RecordValidation lets a collaborator with ground truth (e.g. a test
// harness scanning a known deck order) fold its verdict into the
// cumulative counters the core itself cannot compute.
func (s *ResultStats) RecordValidation(correct bool, missingCards, outOfOrder bool, reportedLowConfidence, reportedHighConfidence bool) {
	if correct {
		s.ValidatedCorrect++
	} else {
		s.ValidatedIncorrect++
	}
	if missingCards {
		s.ValidatedMissingCards++
	}
	if outOfOrder {
		s.ValidatedOutOfOrder++
	}
	switch {
	case !correct && (reportedLowConfidence || reportedHighConfidence):
		s.ValidatedReportIncorrect++
	case correct && reportedLowConfidence:
		s.ValidatedReportCorrectLow++
	case correct && reportedHighConfidence:
		s.ValidatedReportCorrectHigh++
	}
}
