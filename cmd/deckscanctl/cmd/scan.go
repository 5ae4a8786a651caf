package cmd

import (
	"context"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nettlep/deckvision/internal/geom"
	"github.com/nettlep/deckvision/pkg/codedef"
	"github.com/nettlep/deckvision/pkg/formats"
	"github.com/nettlep/deckvision/pkg/scan"
)

// NewScanCmd decodes a PNG luma image and runs it through pkg/scan.Manager
// once, printing the resulting AnalysisResult. It is a thin reference
// collaborator: frame acquisition, preprocessing, and overlay rendering
// stay out of its scope, same as the core's own (spec §1, §6).
func NewScanCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "scan one luma image against a deck format",
		Long:  "Decodes a PNG image to luma, runs one frame through pkg/scan.Manager against the named deck format, and prints the AnalysisResult.",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatsPath, _ := cmd.Flags().GetString("formats")
			imagePath, _ := cmd.Flags().GetString("image")
			formatID, _ := cmd.Flags().GetInt("format-id")

			if formatsPath == "" || imagePath == "" {
				return fmt.Errorf("--formats and --image are required")
			}

			loaded, err := formats.Load(formatsPath)
			if err != nil {
				return fmt.Errorf("load formats: %w", err)
			}
			format, err := selectFormat(loaded, formatID)
			if err != nil {
				return err
			}

			frame, err := loadLumaFrame(imagePath)
			if err != nil {
				return fmt.Errorf("load image: %w", err)
			}

			mgr := scan.NewManager(format, scan.DefaultConfig())
			result := mgr.ProcessFrame(frame, time.Now())

			fmt.Printf("result=%v confidence=%.3f\n", result.Kind, result.Confidence)
			if result.Deck != nil {
				fmt.Printf("resolvedIndices=%v\n", result.Deck.ResolvedIndices)
			}
			fmt.Printf("stats: found=%d notFound=%d tooSmall=%d decoded=%d blurry=%d tooFew=%d\n",
				mgr.Stats.SearchFound, mgr.Stats.SearchNotFound, mgr.Stats.SearchTooSmall,
				mgr.Stats.DecodeDecoded, mgr.Stats.DecodeBlurry, mgr.Stats.DecodeTooFew)
			return nil
		},
	}
	pf := cmd.PersistentFlags()
	pf.String("formats", "", "deck-formats JSON file path")
	pf.String("image", "", "PNG luma image path")
	pf.Int("format-id", 0, "id of the DeckFormat, within --formats, to scan for")
	return cmd
}

func selectFormat(loaded []*codedef.DeckFormat, id int) (*codedef.DeckFormat, error) {
	for _, f := range loaded {
		if f.ID == id {
			return f, nil
		}
	}
	return nil, fmt.Errorf("no format with id %d in loaded formats", id)
}

// loadLumaFrame decodes path as a PNG and converts it to an 8-bit luma
// buffer using the standard Rec. 601 weighting, matching the luma
// preprocessing the CORE explicitly leaves to a collaborator (spec §1).
func loadLumaFrame(path string) (*geom.LumaFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	frame := geom.NewLumaFrame(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			luma := (299*uint32(r>>8) + 587*uint32(g>>8) + 114*uint32(b>>8)) / 1000
			frame.Pixels[y*w+x] = uint8(luma)
		}
	}
	return frame, nil
}
