package scan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nettlep/deckvision/internal/geom"
	"github.com/nettlep/deckvision/pkg/codedef"
	"github.com/nettlep/deckvision/pkg/decode"
	"github.com/nettlep/deckvision/pkg/resolve"
	"github.com/nettlep/deckvision/pkg/search"
)

func testMarks() []codedef.MarkDefinition {
	mk := func(kind codedef.MarkKind, bitIndex int, width float64) codedef.MarkDefinition {
		return codedef.MarkDefinition{Type: codedef.MarkType{Kind: kind, BitIndex: bitIndex}, WidthMM: width}
	}
	return []codedef.MarkDefinition{
		mk(codedef.Landmark, 0, 10),
		mk(codedef.Space, 0, 8),
		mk(codedef.Bit, 0, 6),
		mk(codedef.Space, 0, 8),
		mk(codedef.Bit, 1, 6),
		mk(codedef.Space, 0, 8),
		mk(codedef.Landmark, 0, 6),
	}
}

func drawBand(frame *geom.LumaFrame, x0, x1, y0, y1 int, value uint8) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			if x >= 0 && x < frame.Width && y >= 0 && y < frame.Height {
				frame.Pixels[y*frame.Width+x] = value
			}
		}
	}
}

// cardBand is a vertical slice of the synthetic frame whose bit marks
// encode one real card code, letting buildDeckFrame simulate several
// distinct cards passing through the same scan line.
type cardBand struct {
	code   uint32
	y0, y1 int
}

// buildDeckFrame paints landmarks (constant, dark) across the full
// [bands[0].y0, bands[len-1].y1) span, and paints each bit mark's color
// per band according to that band's card code, so decode sees a distinct
// bit word (and a sharp transition) at each band boundary.
func buildDeckFrame(width, height, originX int, cd *codedef.CodeDefinition, bands []cardBand) *geom.LumaFrame {
	frame := geom.NewLumaFrame(width, height)
	drawBand(frame, 0, width, 0, height, 220)

	y0, y1 := bands[0].y0, bands[len(bands)-1].y1
	x := originX
	for _, m := range cd.Marks {
		w := int(m.WidthMM)
		if m.Type.IsLandmark() {
			drawBand(frame, x, x+w, y0, y1, 40)
		}
		if m.Type.IsBit() {
			for _, b := range bands {
				value := uint8(200)
				if (b.code>>uint(m.Type.BitIndex))&1 == 1 {
					value = 50
				}
				drawBand(frame, x, x+w, b.y0, b.y1, value)
			}
		}
		x += w
	}
	return frame
}

func newTestFormat(t *testing.T, minCardCount int) *codedef.DeckFormat {
	t.Helper()
	format, err := codedef.NewDeckFormat(codedef.NewDeckFormatInput{
		ID:           1,
		Name:         "scan-test",
		CodeType:     codedef.Normal,
		MinCardCount: minCardCount,
		CardCodesNdo: []uint32{0b01, 0b10},
		Marks:        testMarks(),
	})
	require.NoError(t, err)
	return format
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Search.DeckMinSamplesPerCard = 1
	cfg.AnalysisMinHistoryEntries = 1
	cfg.AnalysisMinimumConsensus = 0
	cfg.AnalysisMinimumConfidenceFactorThreshold = 0.5
	cfg.AnalysisHighConfidenceFactorThreshold = 0.75
	cfg.HistoryMaxEntries = 10
	cfg.HistoryMaxAge = 0
	return cfg
}

func TestManager_ProcessFrame_NotFoundOnBlankFrame(t *testing.T) {
	format := newTestFormat(t, 2)
	mgr := NewManager(format, testConfig())

	frame := geom.NewLumaFrame(200, 80)
	result := mgr.ProcessFrame(frame, time.Unix(0, 0))

	assert.Equal(t, Fail, result.Kind)
	assert.Equal(t, 1, mgr.Stats.SearchNotFound)
}

func TestManager_ProcessFrame_BuildsConsensusOverRepeatedFrames(t *testing.T) {
	format := newTestFormat(t, 2)
	mgr := NewManager(format, testConfig())

	bands := []cardBand{
		{code: 0b01, y0: 20, y1: 40},
		{code: 0b10, y0: 40, y1: 60},
	}
	frame := buildDeckFrame(200, 80, 30, format.Code, bands)

	var last AnalysisResult
	for i := 0; i < 3; i++ {
		last = mgr.ProcessFrame(frame, time.Unix(int64(i), 0))
	}

	assert.Equal(t, 3, mgr.Stats.SearchFound)
	assert.Equal(t, 3, mgr.Stats.DecodeDecoded)
	assert.Contains(t,
		[]AnalysisKind{SuccessLowConfidence, SuccessHighConfidence},
		last.Kind,
	)
	require.NotNil(t, last.Deck)
	assert.NotEmpty(t, last.Deck.ResolvedIndices)
}

func TestManager_Reset_ClearsStatsAndHistory(t *testing.T) {
	format := newTestFormat(t, 2)
	mgr := NewManager(format, testConfig())

	frame := geom.NewLumaFrame(200, 80)
	mgr.ProcessFrame(frame, time.Unix(0, 0))
	require.NotZero(t, mgr.Stats.SearchNotFound)

	mgr.Reset()
	assert.Zero(t, mgr.Stats.SearchNotFound)
	assert.False(t, mgr.hasFound)
}

func TestManager_Analyze_LowConfidenceFoldsIntoInsufficientConfidenceWhenDisabled(t *testing.T) {
	format := newTestFormat(t, 2)
	cfg := testConfig()
	cfg.AnalysisMinimumConfidenceFactorThreshold = 0.3
	cfg.AnalysisHighConfidenceFactorThreshold = 0.9
	cfg.AnalysisEnableLowConfidenceReports = false
	mgr := NewManager(format, cfg)

	now := time.Unix(0, 0)
	mgr.history.AddEntry(format.ID, []int{0, 1}, now)
	mgr.history.AddEntry(format.ID, []int{0, 1}, now)
	mgr.history.AddEntry(format.ID, []int{1, 0}, now)

	deck := resolve.NewDeck(format)
	result := mgr.analyze(search.Result{}, decode.Result{}, deck)

	// with three entries and the above thresholds, confidence (2/3) lands
	// strictly between the two factor thresholds: a SuccessLowConfidence
	// candidate, folded into InsufficientConfidence because reports are
	// disabled.
	assert.Equal(t, InsufficientConfidence, result.Kind)
	assert.Equal(t, 1, mgr.Stats.AnalyzerInsufficientConfidence)
	assert.Equal(t, 0, mgr.Stats.AnalyzerReportLow)
}

func TestManager_Analyze_LowConfidenceReportedWhenEnabled(t *testing.T) {
	format := newTestFormat(t, 2)
	cfg := testConfig()
	cfg.AnalysisMinimumConfidenceFactorThreshold = 0.3
	cfg.AnalysisHighConfidenceFactorThreshold = 0.9
	cfg.AnalysisEnableLowConfidenceReports = true
	mgr := NewManager(format, cfg)

	now := time.Unix(0, 0)
	mgr.history.AddEntry(format.ID, []int{0, 1}, now)
	mgr.history.AddEntry(format.ID, []int{0, 1}, now)
	mgr.history.AddEntry(format.ID, []int{1, 0}, now)

	deck := resolve.NewDeck(format)
	result := mgr.analyze(search.Result{}, decode.Result{}, deck)

	assert.Equal(t, SuccessLowConfidence, result.Kind)
	assert.Equal(t, 1, mgr.Stats.AnalyzerReportLow)
}

func TestManager_ProcessFrame_BatterySaverThrottlesReprocessing(t *testing.T) {
	format := newTestFormat(t, 2)
	cfg := testConfig()
	cfg.SearchBatterySaverStartMS = 0
	cfg.SearchBatterySaverIntervalMS = 5000
	mgr := NewManager(format, cfg)

	bands := []cardBand{
		{code: 0b01, y0: 20, y1: 40},
		{code: 0b10, y0: 40, y1: 60},
	}
	frame := buildDeckFrame(200, 80, 30, format.Code, bands)

	first := mgr.ProcessFrame(frame, time.Unix(0, 0))
	assert.Equal(t, 1, mgr.Stats.SearchFound)

	// within the throttle interval: reprocessing is skipped, and the
	// previous result is returned unchanged rather than a fresh search.
	second := mgr.ProcessFrame(frame, time.Unix(1, 0))
	assert.Equal(t, 1, mgr.Stats.SearchFound)
	assert.Equal(t, first, second)

	// past the throttle interval: ProcessFrame searches again.
	mgr.ProcessFrame(frame, time.Unix(6, 0))
	assert.Equal(t, 2, mgr.Stats.SearchFound)
}

func TestManager_ExecuteWhenNotProcessing_RunsUnderLock(t *testing.T) {
	format := newTestFormat(t, 2)
	mgr := NewManager(format, testConfig())

	ran := false
	mgr.ExecuteWhenNotProcessing(func() {
		ran = true
		mgr.config.AnalysisMinimumConsensus = 0.9
	})
	assert.True(t, ran)
	assert.Equal(t, 0.9, mgr.config.AnalysisMinimumConsensus)
}
