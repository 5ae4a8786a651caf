package formats

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `{
  "formats": [
    {
      "id": 1,
      "name": "test-normal",
      "description": "a four bit test format",
      "type": "normal",
      "minCardCount": 2,
      "cardCodesNdo": [1, 14, 255],
      "faceCodesNdo": ["A", "B"],
      "marks": [
        {"type": "Landmark", "widthMM": 3},
        {"type": "Space", "widthMM": 1},
        {"type": "Bit", "widthMM": 1},
        {"type": "Bit", "widthMM": 1},
        {"type": "Bit", "widthMM": 1},
        {"type": "Bit", "widthMM": 1},
        {"type": "Space", "widthMM": 1},
        {"type": "Landmark", "widthMM": 2}
      ]
    },
    {
      "id": 2,
      "name": "ignored-format",
      "type": "normal",
      "ignored": true,
      "cardCodesNdo": [0],
      "faceCodesNdo": ["X"],
      "marks": [
        {"type": "Landmark", "widthMM": 1},
        {"type": "Bit", "widthMM": 1},
        {"type": "Landmark", "widthMM": 1}
      ]
    }
  ]
}`

func TestDecode_TruncatesExtraCardCodes(t *testing.T) {
	formats, err := Decode(strings.NewReader(sampleDoc))
	require.NoError(t, err)
	require.Len(t, formats, 1, "ignored format must be skipped")

	f := formats[0]
	assert.Equal(t, "test-normal", f.Name)
	assert.Equal(t, 2, f.MaxCardCount(), "extra cardCodesNdo entry beyond faceCodesNdo length must be truncated")
	assert.Equal(t, 4, f.CardCodeBitCount)
}

func TestDecode_UnknownTypeFails(t *testing.T) {
	doc := `{"formats":[{"id":1,"name":"bad","type":"nonsense","cardCodesNdo":[0],"faceCodesNdo":["A"],"marks":[{"type":"Landmark","widthMM":1},{"type":"Bit","widthMM":1},{"type":"Landmark","widthMM":1}]}]}`
	_, err := Decode(strings.NewReader(doc))
	assert.Error(t, err)
}

func TestDecode_NoUsableFormats(t *testing.T) {
	doc := `{"formats":[]}`
	_, err := Decode(strings.NewReader(doc))
	assert.Error(t, err)
}
