// Package formats loads the deck-formats file (spec §6) — the one
// on-disk, JSON-encoded configuration the CORE's own domain owns — into a
// list of immutable codedef.DeckFormat values.
package formats

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nettlep/deckvision/pkg/codedef"
)

// document is the top-level shape of a deck-formats file.
type document struct {
	Formats []formatDoc `json:"formats"`
}

type formatDoc struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
	InvertLuma  bool   `json:"invertLuma"`
	Ignored     bool   `json:"ignored"`

	PhysicalLengthMM                       float64 `json:"physicalLengthMM"`
	PhysicalWidthMM                        float64 `json:"physicalWidthMM"`
	PrintableMaxWidthMM                    float64 `json:"printableMaxWidthMM"`
	PhysicalStackHeight52CardsMM           float64 `json:"physicalStackHeight52CardsMM"`
	PhysicalCompressedStackHeight52CardsMM float64 `json:"physicalCompressedStackHeight52CardsMM"`
	MinCardCount                           int     `json:"minCardCount"`

	CardCodesNdo           []uint32 `json:"cardCodesNdo"`
	FaceCodesNdo           []string `json:"faceCodesNdo"`
	FaceCodesTestDeckOrder []string `json:"faceCodesTestDeckOrder"`

	Marks []markDoc `json:"marks"`
}

type markDoc struct {
	Type    string  `json:"type"`
	WidthMM float64 `json:"widthMM"`
}

// Load reads and parses a deck-formats file from path, returning every
// non-ignored format as a validated, finalized *codedef.DeckFormat.
func Load(path string) ([]*codedef.DeckFormat, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("formats: open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses a deck-formats document from r, returning every
// non-ignored format as a validated, finalized *codedef.DeckFormat.
func Decode(r io.Reader) ([]*codedef.DeckFormat, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("formats: decode: %w", err)
	}

	out := make([]*codedef.DeckFormat, 0, len(doc.Formats))
	for _, fd := range doc.Formats {
		if fd.Ignored {
			continue
		}
		format, err := convert(fd)
		if err != nil {
			return nil, fmt.Errorf("formats: format %q: %w", fd.Name, err)
		}
		out = append(out, format)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("formats: no usable formats in document")
	}
	return out, nil
}

func convert(fd formatDoc) (*codedef.DeckFormat, error) {
	codeType, err := parseCodeType(fd.Type)
	if err != nil {
		return nil, err
	}

	faceLen := len(fd.FaceCodesNdo)
	if len(fd.FaceCodesTestDeckOrder) != 0 && len(fd.FaceCodesTestDeckOrder) != faceLen {
		return nil, fmt.Errorf("faceCodesTestDeckOrder length %d does not match faceCodesNdo length %d", len(fd.FaceCodesTestDeckOrder), faceLen)
	}
	if len(fd.CardCodesNdo) < faceLen {
		return nil, fmt.Errorf("cardCodesNdo length %d is shorter than faceCodesNdo length %d", len(fd.CardCodesNdo), faceLen)
	}

	marks, err := convertMarks(fd.Marks)
	if err != nil {
		return nil, err
	}

	return codedef.NewDeckFormat(codedef.NewDeckFormatInput{
		ID:                                      fd.ID,
		Name:                                    fd.Name,
		Description:                             fd.Description,
		CodeType:                                codeType,
		InvertLuma:                              fd.InvertLuma,
		PhysicalLengthMM:                        fd.PhysicalLengthMM,
		PhysicalWidthMM:                         fd.PhysicalWidthMM,
		PrintableMaxWidthMM:                     fd.PrintableMaxWidthMM,
		PhysicalStackHeight52CardsMM:            fd.PhysicalStackHeight52CardsMM,
		PhysicalCompressedStackHeight52CardsMM:  fd.PhysicalCompressedStackHeight52CardsMM,
		MinCardCount:                            fd.MinCardCount,
		CardCodesNdo:                            fd.CardCodesNdo,
		FaceCodesNdo:                            fd.FaceCodesNdo,
		Marks:                                   marks,
	})
}

func parseCodeType(s string) (codedef.CodeType, error) {
	switch strings.ToLower(s) {
	case "normal", "":
		return codedef.Normal, nil
	case "palindrome":
		return codedef.Palindrome, nil
	case "reversible":
		return codedef.Reversible, nil
	default:
		return 0, fmt.Errorf("unknown format type %q", s)
	}
}

// convertMarks assigns each Bit mark's BitIndex in left-to-right order of
// appearance, since the deck-formats file's `marks` array doesn't encode
// bit index explicitly (spec §6).
func convertMarks(docs []markDoc) ([]codedef.MarkDefinition, error) {
	out := make([]codedef.MarkDefinition, len(docs))
	bitIdx := 0
	for i, m := range docs {
		kind, err := parseMarkKind(m.Type)
		if err != nil {
			return nil, err
		}
		mt := codedef.MarkType{Kind: kind}
		if kind == codedef.Bit {
			mt.BitIndex = bitIdx
			mt.BitCount = 1
			bitIdx++
		}
		out[i] = codedef.MarkDefinition{Type: mt, WidthMM: m.WidthMM}
	}
	return out, nil
}

func parseMarkKind(s string) (codedef.MarkKind, error) {
	switch strings.ToLower(s) {
	case "landmark":
		return codedef.Landmark, nil
	case "space":
		return codedef.Space, nil
	case "bit":
		return codedef.Bit, nil
	default:
		return 0, fmt.Errorf("unknown mark type %q", s)
	}
}
