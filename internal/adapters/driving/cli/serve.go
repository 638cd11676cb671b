package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduler, fetching each configured group on its own timer",
	Long: `Starts the per-group fetch scheduler and blocks until interrupted.
Each group runs its fetches on the interval configured under its
[group.<name>] section; SIGINT/SIGTERM trigger a graceful stop.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if scheduler == nil {
		return errors.New("scheduler not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Println("Scheduler starting. Press ctrl+c to stop.")

	var httpErrCh chan error
	if httpServer != nil {
		httpErrCh = make(chan error, 1)
		cmd.Println("HTTP query API starting.")
		go func() { httpErrCh <- httpServer.Start(ctx) }()
	}

	err := scheduler.Start(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	if httpErrCh != nil {
		if httpErr := <-httpErrCh; httpErr != nil && !errors.Is(httpErr, context.Canceled) {
			return httpErr
		}
	}

	cmd.Println("Scheduler stopped.")

	return nil
}
