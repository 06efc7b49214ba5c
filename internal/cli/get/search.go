package get

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aryankumar/esadmin/internal/cli/cmdutil"
	"github.com/aryankumar/esadmin/internal/ops"
)

// searchDefaultSize matches the server default
const searchDefaultSize = 10

// NewSearchCmd creates the search command
func NewSearchCmd() *cobra.Command {
	var (
		query     string
		queryFile string
		size      int
	)

	cmd := &cobra.Command{
		Use:   "search INDEX...",
		Short: "Search documents",
		Long: `Run a query against the indexes of each selected cluster. The query is the
clause under "query" in a search body; without one every document matches.`,
		Example: `  # First ten documents
  esadmin search logs-a

  # Term query, 50 hits, as YAML
  esadmin search logs-a --query '{"term":{"level":"error"}}' --size 50 -o yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, args, query, queryFile, size)
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "query clause as JSON")
	cmd.Flags().StringVar(&queryFile, "query-file", "", "file holding the query clause ('-' for stdin)")
	cmd.Flags().IntVar(&size, "size", searchDefaultSize, "maximum number of hits")

	return cmd
}

func runSearch(cmd *cobra.Command, indexNames []string, query, queryFile string, size int) error {
	body, err := cmdutil.ReadJSON("query", query, queryFile, cmd.InOrStdin())
	if err != nil {
		return err
	}

	ctx, s, cleanup, err := cmdutil.Connect(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	return s.Run(ctx, func(ctx context.Context, admin *ops.Admin) (interface{}, error) {
		res, err := admin.Search(ctx, body, size, indexNames...)
		if err != nil {
			return nil, err
		}
		return cmdutil.SearchView{SearchResult: res}, nil
	})
}
