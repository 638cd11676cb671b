package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/usenet-tools/nntpidx/internal/core/domain"
)

var (
	nzbFilter domain.Filter
	nzbConfig domain.NZBConfig
)

var nzbCmd = &cobra.Command{
	Use:   "nzb",
	Short: "Assemble indexed rows matching a filter into NZB files",
	Long: `Queries the index for rows matching the filter, groups them into
complete multipart sets, and writes one NZB file holding every set (or
one per collection, with --group-by-collection) to the configured sink.`,
	RunE: runNZB,
}

func init() {
	nzbCmd.Flags().StringVar(&nzbFilter.GroupName, "group", "", "newsgroup name (required)")
	nzbCmd.Flags().StringVar(&nzbFilter.SubjectLike, "subject-like", "", "case-insensitive subject substring filter")
	nzbCmd.Flags().StringVar(&nzbFilter.FromLike, "from-like", "", "case-insensitive poster substring filter")
	nzbCmd.Flags().BoolVar(&nzbConfig.RequireCompleteSets, "require-complete", true, "skip sets missing parts")
	nzbCmd.Flags().BoolVar(&nzbConfig.GroupByCollection, "group-by-collection", false, "emit one NZB per collection instead of a single NZB")

	_ = nzbCmd.MarkFlagRequired("group")

	rootCmd.AddCommand(nzbCmd)
}

func runNZB(cmd *cobra.Command, _ []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}
	if nzbAssembler == nil {
		return errors.New("nzb assembler not configured")
	}
	if nzbSink == nil {
		return errors.New("nzb sink not configured")
	}

	ctx := context.Background()

	rows, err := queryService.Query(ctx, nzbFilter)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	docs, err := nzbAssembler.Assemble(ctx, rows, nzbConfig)
	if err != nil {
		return fmt.Errorf("assemble failed: %w", err)
	}

	for _, doc := range docs {
		loc, err := nzbSink.Write(ctx, doc.Filename, doc.XML)
		if err != nil {
			return fmt.Errorf("writing %s: %w", doc.Filename, err)
		}
		cmd.Printf("wrote %s\n", loc)
	}

	cmd.Printf("%d NZB file(s) written.\n", len(docs))

	return nil
}
