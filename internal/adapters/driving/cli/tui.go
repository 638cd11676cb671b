package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/usenet-tools/nntpidx/internal/adapters/driving/tui"
	"github.com/usenet-tools/nntpidx/internal/core/domain"
)

var tuiOpts domain.FetchOptions

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive fetch-progress dashboard",
	Long: `Launch the terminal dashboard for one fetch run, showing live
chunk/row progress and a final summary panel.

Controls:
  ↑/k, ↓/j - Scroll the failed-chunk list
  ?        - Toggle help
  q        - Quit (cancels the in-flight fetch)`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().StringVar(&tuiOpts.Group, "group", "", "newsgroup name (required)")
	tuiCmd.Flags().Uint64Var(&tuiOpts.Low, "low", 0, "first article number (required)")
	tuiCmd.Flags().Uint64Var(&tuiOpts.High, "high", 0, "last article number (required)")
	tuiCmd.Flags().Uint64Var(&tuiOpts.ChunkSize, "chunk-size", 5000, "articles per XOVER chunk")
	tuiCmd.Flags().IntVar(&tuiOpts.MaxWorkers, "max-workers", 4, "concurrent pooled connections")
	tuiCmd.Flags().IntVar(&tuiOpts.NRetry, "retry", 3, "retries per chunk before it's marked failed")

	_ = tuiCmd.MarkFlagRequired("group")
	_ = tuiCmd.MarkFlagRequired("low")
	_ = tuiCmd.MarkFlagRequired("high")

	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "stack trace:\n%s\n", debug.Stack())
		}
	}()

	if fetchOrchestrator == nil {
		return fmt.Errorf("tui: fetch orchestrator not configured")
	}

	app, err := tui.NewApp(tui.NewPorts(fetchOrchestrator), tuiOpts)
	if err != nil {
		return fmt.Errorf("failed to create tui: %w", err)
	}

	app.WithContext(cmd.Context())

	if err := app.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}

	return nil
}
