package cluster

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aryankumar/esadmin/internal/cli/cmdutil"
)

// newUseCmd creates the cluster use command
func newUseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "use NAME",
		Aliases: []string{"switch"},
		Short:   "Select the current cluster",
		Long: `Make NAME the cluster commands run against when no --cluster, --selector
or --url flag is given.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: CompleteName,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUse(cmd, args[0])
		},
	}

	return cmd
}

func runUse(cmd *cobra.Command, name string) error {
	s, err := cmdutil.NewSession(cmd)
	if err != nil {
		return err
	}
	if err := s.Config.SetCurrentCluster(name); err != nil {
		return err
	}
	if err := s.Config.Save(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Switched to cluster %q\n", name)
	return nil
}
