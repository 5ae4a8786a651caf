package codedef

import (
	"fmt"
	"math/bits"
)

// CodeType is the symbology's orientation contract (spec §3).
type CodeType int

const (
	// Normal codes have no special orientation relationship between
	// forward and reverse reads.
	Normal CodeType = iota
	// Palindrome formats have a physically palindromic mark layout but do
	// not define a distinct reversed card-code table.
	Palindrome
	// Reversible formats have a palindromic mark layout AND a distinct,
	// valid reversed card code for every card (the bit-reverse of the
	// forward code), so a card's orientation can be recovered from which
	// table matched.
	Reversible
)

func (t CodeType) String() string {
	switch t {
	case Normal:
		return "normal"
	case Palindrome:
		return "palindrome"
	case Reversible:
		return "reversible"
	default:
		return fmt.Sprintf("CodeType(%d)", int(t))
	}
}

// DeckFormat is the immutable description of one symbology: physical deck
// dimensions, the card-code table, and the derived lookup/error-correction
// tables built from it (spec §3).
type DeckFormat struct {
	ID          int
	Name        string
	Description string
	CodeType    CodeType
	InvertLuma  bool

	PhysicalLengthMM                       float64
	PhysicalWidthMM                        float64
	PrintableMaxWidthMM                    float64
	PhysicalStackHeight52CardsMM           float64
	PhysicalCompressedStackHeight52CardsMM float64

	MinCardCount     int
	CardCodeBitCount int

	// IndexToCode[i] is the card code for card index i, 0 <= i < MaxCardCount.
	IndexToCode []uint32
	// CodeToIndex maps a real card code back to its card index.
	CodeToIndex map[uint32]int

	// FaceCodeToIndex and IndexToFaceCode are the human-readable face-code
	// tables (e.g. "AH" <-> index 0).
	FaceCodeToIndex map[string]int
	IndexToFaceCode []string

	// Reversed tables, populated only when CodeType == Reversible.
	// Reversed card index i (forward index i + MaxCardCount) has card code
	// IndexToReversedCode[i] and face code IndexToReversedFaceCode[i].
	IndexToReversedCode     []uint32
	IndexToReversedFaceCode []string

	Code *CodeDefinition

	eccNormal, eccWithReversed eccTables
}

// MaxCardCount is the number of distinct forward card codes.
func (f *DeckFormat) MaxCardCount() int { return len(f.IndexToCode) }

// MaxCardCountWithReversed is MaxCardCount, doubled when the format is
// reversible (spec §3).
func (f *DeckFormat) MaxCardCountWithReversed() int {
	if f.CodeType == Reversible {
		return 2 * f.MaxCardCount()
	}
	return f.MaxCardCount()
}

// NewDeckFormatInput is the raw, pre-derivation description of a format —
// the shape the deck-formats file's `marks`/`cardCodesNdo`/`faceCodesNdo`
// arrays parse into (spec §6).
type NewDeckFormatInput struct {
	ID          int
	Name        string
	Description string
	CodeType    CodeType
	InvertLuma  bool

	PhysicalLengthMM                       float64
	PhysicalWidthMM                        float64
	PrintableMaxWidthMM                    float64
	PhysicalStackHeight52CardsMM           float64
	PhysicalCompressedStackHeight52CardsMM float64
	MinCardCount                           int

	CardCodesNdo []uint32
	FaceCodesNdo []string
	Marks        []MarkDefinition
}

// NewDeckFormat validates and derives a complete DeckFormat from in,
// including Finalize-ing its CodeDefinition and building the
// error-correction tables (spec §4.1). It returns an error (never panics)
// for any malformed input — this is the one CORE entry point allowed to
// fail on configuration rather than per-frame data.
func NewDeckFormat(in NewDeckFormatInput) (*DeckFormat, error) {
	if len(in.CardCodesNdo) == 0 {
		return nil, fmt.Errorf("codedef: format %q has no card codes", in.Name)
	}
	if len(in.FaceCodesNdo) > len(in.CardCodesNdo) {
		return nil, fmt.Errorf("codedef: format %q has more face codes (%d) than card codes (%d)", in.Name, len(in.FaceCodesNdo), len(in.CardCodesNdo))
	}
	// extra cardCodesNdo entries beyond faceCodesNdo length are truncated
	// (spec §6).
	codes := in.CardCodesNdo
	if len(in.FaceCodesNdo) > 0 && len(codes) > len(in.FaceCodesNdo) {
		codes = codes[:len(in.FaceCodesNdo)]
	}

	code := NewCodeDefinition(in.Marks)
	if err := code.Finalize(); err != nil {
		return nil, fmt.Errorf("codedef: format %q: %w", in.Name, err)
	}
	for idx, c := range codes {
		if code.BitCount < 32 && c >= uint32(1)<<uint(code.BitCount) {
			return nil, fmt.Errorf("codedef: format %q card code %#x at index %d does not fit in %d bits", in.Name, c, idx, code.BitCount)
		}
	}

	if (in.CodeType == Reversible || in.CodeType == Palindrome) && !code.IsPalindrome() {
		return nil, fmt.Errorf("codedef: format %q declares type %s but its mark layout is not a palindrome", in.Name, in.CodeType)
	}
	if in.CodeType == Normal && code.IsPalindrome() {
		return nil, fmt.Errorf("codedef: format %q declares type normal but its mark layout is itself a palindrome", in.Name)
	}

	f := &DeckFormat{
		ID:                                      in.ID,
		Name:                                    in.Name,
		Description:                             in.Description,
		CodeType:                                in.CodeType,
		InvertLuma:                              in.InvertLuma,
		PhysicalLengthMM:                        in.PhysicalLengthMM,
		PhysicalWidthMM:                         in.PhysicalWidthMM,
		PrintableMaxWidthMM:                     in.PrintableMaxWidthMM,
		PhysicalStackHeight52CardsMM:            in.PhysicalStackHeight52CardsMM,
		PhysicalCompressedStackHeight52CardsMM:  in.PhysicalCompressedStackHeight52CardsMM,
		MinCardCount:                            in.MinCardCount,
		CardCodeBitCount:                        code.BitCount,
		IndexToCode:                             append([]uint32(nil), codes...),
		CodeToIndex:                             make(map[uint32]int, len(codes)),
		IndexToFaceCode:                         append([]string(nil), in.FaceCodesNdo...),
		FaceCodeToIndex:                         make(map[string]int, len(in.FaceCodesNdo)),
		Code:                                    code,
	}
	code.Format = f

	for idx, c := range f.IndexToCode {
		if prev, dup := f.CodeToIndex[c]; dup {
			return nil, fmt.Errorf("codedef: format %q has duplicate card code %#x at indices %d and %d", in.Name, c, prev, idx)
		}
		f.CodeToIndex[c] = idx
	}
	for idx, fc := range f.IndexToFaceCode {
		f.FaceCodeToIndex[fc] = idx
	}

	if f.CodeType == Reversible {
		f.IndexToReversedCode = make([]uint32, len(f.IndexToCode))
		f.IndexToReversedFaceCode = make([]string, len(f.IndexToFaceCode))
		for i, c := range f.IndexToCode {
			r := bitReverse(c, f.CardCodeBitCount)
			if other, dup := f.CodeToIndex[r]; dup {
				return nil, fmt.Errorf("codedef: format %q reversed code %#x of card index %d equals the card code of index %d", in.Name, r, i, other)
			}
			f.IndexToReversedCode[i] = r
		}
		for i, fc := range f.IndexToFaceCode {
			f.IndexToReversedFaceCode[i] = "(" + fc + ")"
		}
	}

	f.eccNormal = buildECC(f.IndexToCode, f.CardCodeBitCount)
	if f.CodeType == Reversible {
		all := make([]uint32, 0, 2*len(f.IndexToCode))
		all = append(all, f.IndexToCode...)
		all = append(all, f.IndexToReversedCode...)
		f.eccWithReversed = buildECC(all, f.CardCodeBitCount)
	} else {
		f.eccWithReversed = f.eccNormal
	}

	return f, nil
}

// bitReverse reverses the low bitCount bits of v.
func bitReverse(v uint32, bitCount int) uint32 {
	full := bits.Reverse32(v)
	return full >> uint(32-bitCount)
}

// ErrorCorrectIndex looks up word in the error-correcting index table
// (spec §4.1, §4.4). It consults the forward-plus-reversed table when the
// format is reversible, so a reversed card's code resolves to its
// reversed card index (>= MaxCardCount). Returns UnassignedIndex if the
// nearest real codes tie.
func (f *DeckFormat) ErrorCorrectIndex(word uint32) int {
	return f.eccWithReversed.codeToIndex[word]
}

// ErrorCorrectCode looks up word in the error-correcting code table. See
// ErrorCorrectIndex.
func (f *DeckFormat) ErrorCorrectCode(word uint32) int64 {
	return f.eccWithReversed.codeToCode[word]
}

// MinCodeDistance returns the minimum pairwise Hamming distance across all
// real card codes (including reversed codes when the format is
// reversible). It is a corpus-validation helper (spec §4.1), intended for
// use by pkg/formats at load time and by tests, not on the per-frame hot
// path.
func (f *DeckFormat) MinCodeDistance() int {
	if f.CodeType == Reversible {
		all := make([]uint32, 0, 2*len(f.IndexToCode))
		all = append(all, f.IndexToCode...)
		all = append(all, f.IndexToReversedCode...)
		return minPairwiseDistance(all, f.CardCodeBitCount)
	}
	return minPairwiseDistance(f.IndexToCode, f.CardCodeBitCount)
}

// IsReversedIndex reports whether cardIndex refers to a reversed card
// (only possible for reversible formats).
func (f *DeckFormat) IsReversedIndex(cardIndex int) bool {
	return f.CodeType == Reversible && cardIndex >= f.MaxCardCount()
}

// ForwardIndex maps a (possibly reversed) card index back to its forward
// card index in [0, MaxCardCount).
func (f *DeckFormat) ForwardIndex(cardIndex int) int {
	if f.IsReversedIndex(cardIndex) {
		return cardIndex - f.MaxCardCount()
	}
	return cardIndex
}

// FaceCode returns the human-readable face code for a (possibly reversed)
// card index, or "" if out of range.
func (f *DeckFormat) FaceCode(cardIndex int) string {
	if f.IsReversedIndex(cardIndex) {
		fwd := cardIndex - f.MaxCardCount()
		if fwd < 0 || fwd >= len(f.IndexToReversedFaceCode) {
			return ""
		}
		return f.IndexToReversedFaceCode[fwd]
	}
	if cardIndex < 0 || cardIndex >= len(f.IndexToFaceCode) {
		return ""
	}
	return f.IndexToFaceCode[cardIndex]
}
