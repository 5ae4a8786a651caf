package scan

import (
	"sync"
	"time"

	"github.com/nettlep/deckvision/internal/geom"
	"github.com/nettlep/deckvision/pkg/codedef"
	"github.com/nettlep/deckvision/pkg/decode"
	"github.com/nettlep/deckvision/pkg/history"
	"github.com/nettlep/deckvision/pkg/resolve"
	"github.com/nettlep/deckvision/pkg/search"
	"github.com/nettlep/deckvision/pkg/searchline"
)

// Manager orchestrates search -> decode -> resolve -> analyze for one
// DeckFormat at a time (spec §4.7). It owns the processing lock spec §5
// describes: ProcessFrame holds it for the duration of a frame, and
// configuration changes must go through ExecuteWhenNotProcessing so they
// never race a frame in flight.
//
// History is an injected dependency (spec §9 design notes: re-architected
// away from a process-wide singleton) so two Managers over different
// formats, or a test harness, each get deterministic, isolated state.
type Manager struct {
	mu sync.Mutex

	format  *codedef.DeckFormat
	config  Config
	history *history.History

	generator *searchline.Generator
	lastFound geom.Vec
	hasFound  bool

	firstFoundAt time.Time
	lastSearchAt time.Time
	lastResult   AnalysisResult

	Stats ResultStats
	Trace TraceFunc
}

// NewManager builds a Manager scanning for format with config, backed by
// a fresh History sized from config.
func NewManager(format *codedef.DeckFormat, config Config) *Manager {
	return &Manager{
		format:    format,
		config:    config,
		history:   history.New(config.HistoryMaxEntries, config.HistoryMaxAge),
		generator: searchline.NewGenerator(config.SearchLine),
	}
}

// ExecuteWhenNotProcessing runs fn while holding the processing lock,
// blocking until any frame in flight completes (spec §5). Collaborators
// use this to change configuration or swap formats between frames.
func (m *Manager) ExecuteWhenNotProcessing(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn()
}

// SetConfig replaces the active configuration, invalidating the
// search-line generator's cache so the next frame regenerates candidates
// under the new parameters (spec §4.2 "Outdatedness"). Must be called via
// ExecuteWhenNotProcessing by any collaborator driving frames on its own
// goroutine.
func (m *Manager) SetConfig(config Config) {
	m.config = config
	m.generator.SetParams(config.SearchLine)
}

// Reset clears cumulative stats and history (spec §4.7 ScanManager.reset),
// and forgets any remembered search origin.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Stats = ResultStats{}
	m.history.Reset()
	m.hasFound = false
	m.firstFoundAt = time.Time{}
	m.lastSearchAt = time.Time{}
	m.lastResult = AnalysisResult{}
}

func (m *Manager) trace(stage, outcome, detail string) {
	if m.Trace != nil {
		m.Trace(TraceEvent{Stage: stage, Outcome: outcome, Detail: detail})
	}
}

// ProcessFrame runs one frame through search, decode, resolve, and
// analyze, updating Stats and returning the combined AnalysisResult (spec
// §4.7, §6 "Core input/output contract"). If battery-saver throttling is
// active and due, it skips reprocessing and returns the last computed
// AnalysisResult unchanged instead (spec §5).
func (m *Manager) ProcessFrame(frame *geom.LumaFrame, now time.Time) AnalysisResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.searchThrottled(now) {
		m.trace("search", "battery-saver-skip", "")
		return m.lastResult
	}
	m.lastSearchAt = now

	result := m.runPipeline(frame, now)
	m.lastResult = result
	return result
}

// searchThrottled reports whether now falls inside the battery-saver
// throttling window: once a deck has been found, ProcessFrame keeps
// reprocessing every frame for SearchBatterySaverStartMS, then no more
// often than every SearchBatterySaverIntervalMS (spec §5's optional soft
// wall-clock budget). Zero SearchBatterySaverIntervalMS disables
// throttling entirely.
func (m *Manager) searchThrottled(now time.Time) bool {
	if m.config.SearchBatterySaverIntervalMS <= 0 || !m.hasFound {
		return false
	}
	startWindow := time.Duration(m.config.SearchBatterySaverStartMS) * time.Millisecond
	if now.Sub(m.firstFoundAt) < startWindow {
		return false
	}
	interval := time.Duration(m.config.SearchBatterySaverIntervalMS) * time.Millisecond
	return now.Sub(m.lastSearchAt) < interval
}

// runPipeline is ProcessFrame's body, run while holding m.mu.
func (m *Manager) runPipeline(frame *geom.LumaFrame, now time.Time) AnalysisResult {
	origin := geom.Vec{X: float64(frame.Width) / 2, Y: float64(frame.Height) / 2}
	if m.hasFound {
		origin = m.lastFound
	}

	ds := &search.DeckSearch{
		Generator: m.generator,
		Format:    m.format,
		Params:    m.config.Search,
	}
	searchResult := ds.Search(frame, origin)

	switch searchResult.Kind {
	case search.NotFound:
		m.Stats.SearchNotFound++
		m.Stats.AnalyzerFail++
		m.trace("search", "not-found", "")
		return AnalysisResult{Kind: Fail, Search: &searchResult}
	case search.TooSmall:
		m.Stats.SearchTooSmall++
		m.Stats.AnalyzerFail++
		m.trace("search", "too-small", "")
		return AnalysisResult{Kind: Fail, Search: &searchResult}
	}
	m.Stats.SearchFound++
	m.trace("search", "found", "")
	if !m.hasFound {
		m.firstFoundAt = now
	}
	m.hasFound = true
	m.lastFound = origin

	decodeResult := decode.Decode(searchResult.MarkLines, m.format, m.config.Decode)
	switch decodeResult.Kind {
	case decode.NotSharp:
		m.Stats.DecodeBlurry++
		m.Stats.AnalyzerFail++
		m.trace("decode", "not-sharp", "")
		return AnalysisResult{Kind: Fail, Search: &searchResult, Decode: &decodeResult}
	case decode.TooFewCards:
		m.Stats.DecodeTooFew++
		m.Stats.AnalyzerFail++
		m.trace("decode", "too-few-cards", "")
		return AnalysisResult{Kind: Fail, Search: &searchResult, Decode: &decodeResult, Deck: decodeResult.Deck}
	case decode.GeneralFailure:
		m.Stats.DecodeFail++
		m.Stats.AnalyzerFail++
		m.trace("decode", "fail", decodeResult.Reason)
		return AnalysisResult{Kind: Fail, Search: &searchResult, Decode: &decodeResult}
	}
	m.Stats.DecodeDecoded++
	m.trace("decode", "decoded", "")

	deck := decodeResult.Deck
	deck.Resolve()
	m.history.AddEntry(m.format.ID, deck.ResolvedIndices, now)
	m.trace("resolve", "emitted", "")

	return m.analyze(searchResult, decodeResult, deck)
}

func (m *Manager) analyze(searchResult search.Result, decodeResult decode.Result, deck *resolve.Deck) AnalysisResult {
	consensus, ok := m.history.Analyze(m.format.ID, m.config.AnalysisMinimumConsensus)
	if !ok {
		m.Stats.AnalyzerInconclusive++
		m.trace("analyze", "inconclusive", "")
		return AnalysisResult{Kind: Inconclusive, Search: &searchResult, Decode: &decodeResult, Deck: deck}
	}
	deck.ResolvedIndices = consensus

	if m.history.CalcTotalHistorySize(m.format.ID) < m.config.AnalysisMinHistoryEntries {
		m.Stats.AnalyzerInsufficientHistory++
		m.trace("analyze", "insufficient-history", "")
		return AnalysisResult{Kind: InsufficientHistory, Search: &searchResult, Decode: &decodeResult, Deck: deck}
	}

	confidence := m.history.CalcConfidence(m.format.ID, consensus)
	switch {
	case confidence < m.config.AnalysisMinimumConfidenceFactorThreshold:
		m.Stats.AnalyzerInsufficientConfidence++
		m.trace("analyze", "insufficient-confidence", "")
		return AnalysisResult{Kind: InsufficientConfidence, Search: &searchResult, Decode: &decodeResult, Deck: deck, Confidence: confidence}
	case confidence < m.config.AnalysisHighConfidenceFactorThreshold:
		if !m.config.AnalysisEnableLowConfidenceReports {
			m.Stats.AnalyzerInsufficientConfidence++
			m.trace("analyze", "insufficient-confidence", "low-confidence-reports-disabled")
			return AnalysisResult{Kind: InsufficientConfidence, Search: &searchResult, Decode: &decodeResult, Deck: deck, Confidence: confidence}
		}
		m.Stats.AnalyzerReportLow++
		m.trace("analyze", "success-low-confidence", "")
		return AnalysisResult{Kind: SuccessLowConfidence, Search: &searchResult, Decode: &decodeResult, Deck: deck, Confidence: confidence}
	default:
		m.Stats.AnalyzerReportHigh++
		m.trace("analyze", "success-high-confidence", "")
		return AnalysisResult{Kind: SuccessHighConfidence, Search: &searchResult, Decode: &decodeResult, Deck: deck, Confidence: confidence}
	}
}
