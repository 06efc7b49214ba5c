package cluster

import (
	"github.com/spf13/cobra"
)

// NewClusterCmd creates the cluster command. Subcommands edit the config
// file; only ping talks to the clusters.
func NewClusterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cluster",
		Aliases: []string{"clusters"},
		Short:   "Manage named clusters",
		Long: `Manage the named clusters in the esadmin config file.

Named clusters are selected with --cluster (or --clusters all) and
--selector on every other command. The current cluster is used when
neither flag nor --url is given.`,
		Example: `  esadmin cluster add logs-prod https://es.prod:9200 --label env=prod
  esadmin cluster use logs-prod
  esadmin cluster ping --clusters all`,
	}

	cmd.AddCommand(
		newListCmd(),
		newAddCmd(),
		newRemoveCmd(),
		newUseCmd(),
		newPingCmd(),
	)
	return cmd
}
