package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/usenet-tools/nntpidx/internal/core/domain"
)

var fetchOpts domain.FetchOptions

// lastFetchRun records the most recently completed run so main.go can map
// it to the spec's exit codes (0 success, 4 partial failure, 5 cancelled)
// after Execute returns.
var lastFetchRun *domain.FetchRun

// LastFetchRun returns the run recorded by the most recent fetch command,
// including one whose FetchRange returned an error, or nil if no fetch
// reached the orchestrator.
func LastFetchRun() *domain.FetchRun {
	return lastFetchRun
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch article overview metadata for a newsgroup range",
	Long: `Partitions the requested article-number range into chunks,
dispatches them across the connection pool, and writes parsed overview
rows into the index store, printing progress as chunks complete.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchOpts.Group, "group", "", "newsgroup name (required)")
	fetchCmd.Flags().Uint64Var(&fetchOpts.Low, "low", 0, "first article number (required)")
	fetchCmd.Flags().Uint64Var(&fetchOpts.High, "high", 0, "last article number (required)")
	fetchCmd.Flags().Uint64Var(&fetchOpts.ChunkSize, "chunk-size", 5000, "articles per XOVER chunk")
	fetchCmd.Flags().IntVar(&fetchOpts.MaxWorkers, "max-workers", 4, "concurrent pooled connections")
	fetchCmd.Flags().IntVar(&fetchOpts.NRetry, "retry", 3, "retries per chunk before it's marked failed")

	_ = fetchCmd.MarkFlagRequired("group")
	_ = fetchCmd.MarkFlagRequired("low")
	_ = fetchCmd.MarkFlagRequired("high")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, _ []string) error {
	if fetchOrchestrator == nil {
		return errors.New("fetch orchestrator not configured")
	}

	ctx := context.Background()

	cmd.Printf("Fetching %s [%s-%s]...\n",
		fetchOpts.Group, humanize.Comma(int64(fetchOpts.Low)), humanize.Comma(int64(fetchOpts.High)))

	isTTY := term.IsTerminal(int(os.Stdout.Fd()))
	run, err := fetchOrchestrator.FetchRange(ctx, fetchOpts, func(p domain.FetchProgress) {
		if isTTY {
			cmd.Printf("\rchunks %d/%d  rows %s", p.ChunksDone, p.ChunksTotal, humanize.Comma(int64(p.RowsSoFar)))
		} else {
			cmd.Printf("chunks %d/%d  rows %s\n", p.ChunksDone, p.ChunksTotal, humanize.Comma(int64(p.RowsSoFar)))
		}
	})
	lastFetchRun = &run

	cmd.Printf(
		"\nDone: %s rows fetched, %s inserted, %s ignored, %d chunks failed, %d parse errors.\n",
		humanize.Comma(int64(run.RowsFetched)), humanize.Comma(int64(run.Inserted)),
		humanize.Comma(int64(run.Ignored)), len(run.ChunksFailed), run.ParseErrors,
	)

	if run.Cancelled {
		cmd.Println("Run was cancelled.")
	}

	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	return nil
}
