package get

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aryankumar/esadmin/internal/cli/cmdutil"
	"github.com/aryankumar/esadmin/internal/ops"
)

func newGetHealthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health [INDEX...]",
		Short: "Show cluster and index health",
		Long: `Show a health snapshot of each selected cluster, waiting up to the server
timeout for yellow status. A request the server answers with timed_out is
repeated up to --health-retries more times.`,
		Example: `  # Whole cluster
  esadmin get health

  # Two indexes with a larger retry budget
  esadmin get health logs-a logs-b --health-retries 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGetHealth(cmd, args)
		},
	}

	return cmd
}

func runGetHealth(cmd *cobra.Command, indexNames []string) error {
	ctx, s, cleanup, err := cmdutil.Connect(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	retries := s.Settings.HealthRetries
	return s.Run(ctx, func(ctx context.Context, admin *ops.Admin) (interface{}, error) {
		health, err := admin.Health(ctx, retries, indexNames...)
		if err != nil {
			return nil, err
		}
		return cmdutil.HealthView{ClusterHealth: health}, nil
	})
}
