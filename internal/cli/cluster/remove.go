package cluster

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aryankumar/esadmin/internal/cli/cmdutil"
	"github.com/aryankumar/esadmin/internal/util"
)

// newRemoveCmd creates the cluster remove command
func newRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove a cluster from the config file",
		Long: `Remove a named cluster from the esadmin config file.

Nothing on the cluster itself is changed. Removing the current cluster
leaves no cluster selected.`,
		Aliases:           []string{"rm", "delete"},
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: CompleteName,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(cmd, args[0])
		},
	}

	return cmd
}

func runRemove(cmd *cobra.Command, name string) error {
	s, err := cmdutil.NewSession(cmd)
	if err != nil {
		return err
	}
	if !s.Config.RemoveClusterConfig(name) {
		return fmt.Errorf("%w: %s", util.ErrClusterNotFound, name)
	}
	if err := s.Config.Save(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Cluster %q removed\n", name)
	return nil
}
