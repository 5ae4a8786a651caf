package search

import (
	"github.com/nettlep/deckvision/internal/geom"
	"github.com/nettlep/deckvision/pkg/codedef"
	"github.com/nettlep/deckvision/pkg/searchline"
)

// DeckSearch scans a luma frame along a Generator's prioritized candidate
// lines, looking for the first that detects and matches def's
// CodeDefinition and traces to a usable deck height (spec §4.3 steps 1-2,
// 7). It returns as soon as one candidate line succeeds; candidates are
// tried in priority order, so the first acceptable hit is also the
// highest-confidence one the generator could offer.
type DeckSearch struct {
	Generator *searchline.Generator
	Format    *codedef.DeckFormat
	Params    Params

	// OnCandidate, if set, is invoked for every candidate line tried
	// (including failures), letting a caller trace search progress without
	// this package performing any I/O itself.
	OnCandidate func(line searchline.Line, result Result)
}

// NewDeckSearch builds a DeckSearch over format using DefaultParams and a
// Generator constructed with searchline.DefaultParams.
func NewDeckSearch(format *codedef.DeckFormat) *DeckSearch {
	return &DeckSearch{
		Generator: searchline.NewGenerator(searchline.DefaultParams()),
		Format:    format,
		Params:    DefaultParams(),
	}
}

// Search tries candidate lines, in priority order, against frame centered
// on origin until one succeeds or the candidate list is exhausted.
func (ds *DeckSearch) Search(frame *geom.LumaFrame, origin geom.Vec) Result {
	reversible := ds.Format.CodeType == codedef.Reversible
	candidates := ds.Generator.Lines(frame.Width, frame.Height, reversible)

	minWidth := ds.Format.Code.CalcMinSampleWidth(0)
	minRows := int(ds.Params.DeckMinSamplesPerCard * float64(ds.Format.MinCardCount))

	for _, cand := range candidates {
		line, ok := cand.Materialize(frame, origin)
		if !ok {
			continue
		}

		result := ds.tryLine(frame, line, minWidth, minRows)
		if ds.OnCandidate != nil {
			ds.OnCandidate(cand, result)
		}
		if result.Kind == Decodable {
			return result
		}
	}
	return Result{Kind: NotFound}
}

func (ds *DeckSearch) tryLine(frame *geom.LumaFrame, line *geom.SampleLine, minWidth float64, minRows int) Result {
	detected := DetectMarks(line, ds.Params)
	match, ok := MatchDefinition(detected, ds.Format.Code)
	if !ok || match.Error > ds.Params.SearchMaxDeckMatchError {
		return Result{Kind: NotFound}
	}

	width := match.Location.Marks[len(match.Location.Marks)-1].EndPos.DistanceTo(match.Location.Marks[0].StartPos)
	if width < minWidth {
		return Result{Kind: TooSmall}
	}

	match.Location.Line = line
	markLines, ok := TraceExtents(frame, match.Location, ds.Format.Code, ds.Params, minRows)
	if !ok {
		return Result{Kind: TooSmall}
	}
	return Result{Kind: Decodable, MarkLines: markLines}
}
