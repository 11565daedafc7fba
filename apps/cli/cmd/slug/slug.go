package slug

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/concoro/concoro-platform/apps/cli/internal/cliutil"
	"github.com/concoro/concoro-platform/domains/bandi/be/repo"
	"github.com/concoro/concoro-platform/domains/bandi/be/service"
	bandislug "github.com/concoro/concoro-platform/domains/bandi/be/slug"
)

// Command groups slug utilities.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slug",
		Short: "Generate and inspect bando slugs",
	}
	cmd.AddCommand(generateCommand())
	cmd.AddCommand(inspectCommand())
	return cmd
}

func generateCommand() *cobra.Command {
	var (
		file   string
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print id, slug and path for every record of a JSON export",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := cliutil.Logger(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			records, err := cliutil.LoadExportFile(file)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			var strictErrs []error
			for _, rec := range records {
				s, buildErr := bandislug.BuildBandoSlug(rec)
				for _, fb := range bandislug.Fallbacks(buildErr) {
					logger.Warn("slug fallback", zap.String("id", rec.ID), zap.String("segment", fb.Segment), zap.Error(fb.Err))
				}
				if buildErr != nil && strict {
					strictErrs = append(strictErrs, fmt.Errorf("record %s: %w", rec.ID, buildErr))
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", rec.ID, s, bandislug.BandoPath(rec))
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			logger.Info("slugs generated", zap.Int("records", len(records)), zap.Int("strict_failures", len(strictErrs)))
			return errors.Join(strictErrs...)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "JSON export of the concorsi collection")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when any segment falls back to its default")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// Inspection is printed by slug inspect.
type Inspection struct {
	Slug       string                `json:"slug"`
	Valid      bool                  `json:"valid"`
	DocumentID bool                  `json:"documentId"`
	Parsed     *bandislug.ParsedSlug `json:"parsed,omitempty"`
}

func inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <slug-or-path>...",
		Short: "Validate and parse slugs or /bandi/ paths",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Inspect never reads storage; an empty repository satisfies the service.
			svc := service.New(repo.NewMemoryRepository(repo.DefaultActiveStatus), nil, nil)

			out := make([]Inspection, 0, len(args))
			for _, raw := range args {
				in := svc.Inspect(raw)
				out = append(out, Inspection(in))
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
