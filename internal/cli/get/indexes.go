package get

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aryankumar/esadmin/internal/cli/cmdutil"
	"github.com/aryankumar/esadmin/internal/ops"
)

func newGetIndexesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "indexes [INDEX...]",
		Aliases: []string{"indices", "index", "idx"},
		Short:   "List indexes",
		Long: `List the indexes of each selected cluster.

Without arguments the names are read from a cluster health snapshot. With
index names the per-index health is shown instead.`,
		Example: `  # All index names
  esadmin get indexes

  # Shard details for two indexes
  esadmin get indexes logs-a logs-b`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGetIndexes(cmd, args)
		},
	}

	return cmd
}

func runGetIndexes(cmd *cobra.Command, names []string) error {
	ctx, s, cleanup, err := cmdutil.Connect(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	return s.Run(ctx, func(ctx context.Context, admin *ops.Admin) (interface{}, error) {
		if len(names) > 0 {
			info, err := admin.IndexInfo(ctx, names...)
			if err != nil {
				return nil, err
			}
			return cmdutil.IndexInfoView(info), nil
		}

		set, err := admin.ListIndexes(ctx)
		if err != nil {
			return nil, err
		}
		return cmdutil.NewIndexList(set), nil
	})
}
