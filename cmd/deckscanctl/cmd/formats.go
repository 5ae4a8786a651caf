package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nettlep/deckvision/pkg/formats"
)

// NewFormatsCmd loads and validates a deck-formats file, printing a
// summary of each format it accepted.
func NewFormatsCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "formats",
		Short: "load and validate a deck-formats file",
		Long:  "Parses a deck-formats JSON document and reports each format's id, code type, card count, and minimum pairwise code distance.",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")
			if path == "" {
				return fmt.Errorf("--file is required")
			}

			loaded, err := formats.Load(path)
			if err != nil {
				return fmt.Errorf("load formats: %w", err)
			}

			for _, f := range loaded {
				fmt.Printf("id=%d name=%q type=%v cards=%d minCardCount=%d minCodeDistance=%d\n",
					f.ID, f.Name, f.CodeType, f.MaxCardCount(), f.MinCardCount, f.MinCodeDistance())
			}
			return nil
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringP("file", "f", "", "deck-formats JSON file path")
	return cmd
}
