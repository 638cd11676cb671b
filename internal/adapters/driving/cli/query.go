package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/usenet-tools/nntpidx/internal/core/domain"
)

var queryFilter domain.Filter

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query indexed overview rows for a newsgroup",
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryFilter.GroupName, "group", "", "newsgroup name (required)")
	queryCmd.Flags().StringVar(&queryFilter.SubjectLike, "subject-like", "", "case-insensitive subject substring filter")
	queryCmd.Flags().StringVar(&queryFilter.NotSubject, "not-subject", "", "exclude rows whose subject contains this substring")
	queryCmd.Flags().StringVar(&queryFilter.FromLike, "from-like", "", "case-insensitive poster substring filter")
	queryCmd.Flags().IntVar(&queryFilter.Limit, "limit", 0, "maximum rows to return (0 = unbounded)")

	_ = queryCmd.MarkFlagRequired("group")

	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, _ []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	ctx := context.Background()

	rows, err := queryService.Query(ctx, queryFilter)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	for _, row := range rows {
		cmd.Printf("%d\t%s\t%s\t%s\n", row.ArticleNum, row.MessageID, row.FromAddr, row.Subject)
	}

	cmd.Printf("%d rows.\n", len(rows))

	return nil
}
