package delete

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aryankumar/esadmin/internal/cli/cmdutil"
	"github.com/aryankumar/esadmin/internal/ops"
	"github.com/aryankumar/esadmin/internal/util"
)

// errAborted is returned when the operator declines the confirmation prompt
var errAborted = fmt.Errorf("%w: deletion aborted", util.ErrCancelled)

// NewDeleteIndexCmd creates the delete-index command
func NewDeleteIndexCmd() *cobra.Command {
	var (
		dryRun           bool
		skipConfirmation bool
	)

	cmd := &cobra.Command{
		Use:     "delete-index NAME...",
		Aliases: []string{"rm-index"},
		Short:   "Delete indexes",
		Long: `Delete indexes from every selected cluster.

Requires confirmation before deletion unless --yes flag is provided.`,
		Example: `  # Delete one index, asking first
  esadmin delete-index scratch

  # Delete from specific clusters without asking
  esadmin delete-index scratch --clusters dev-a,dev-b -y

  # Preview what would be deleted
  esadmin delete-index 'logs-2023-*' --dry-run`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeleteIndex(cmd, args, dryRun, skipConfirmation)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview deletions without deleting")
	cmd.Flags().BoolVarP(&skipConfirmation, "yes", "y", false, "Skip confirmation prompt")

	return cmd
}

func runDeleteIndex(cmd *cobra.Command, names []string, dryRun, skipConfirmation bool) error {
	ctx, s, cleanup, err := cmdutil.Connect(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	clusters := s.ClusterNames()
	if dryRun {
		results := make(cmdutil.WriteResults, 0, len(names)*len(clusters))
		for _, c := range clusters {
			for _, name := range names {
				results = append(results, cmdutil.WriteResult{Kind: "index", Name: c + "/" + name, Result: "would delete"})
			}
		}
		return s.Print(results)
	}

	if !skipConfirmation && !confirmDelete(s.In(), cmd.ErrOrStderr(), names, clusters) {
		return errAborted
	}

	return s.Run(ctx, func(ctx context.Context, admin *ops.Admin) (interface{}, error) {
		results := make(cmdutil.WriteResults, 0, len(names))
		for _, name := range names {
			if err := admin.DeleteIndex(ctx, name); err != nil {
				return results, err
			}
			results = append(results, cmdutil.WriteResult{Kind: "index", Name: name, Result: "deleted"})
		}
		return results, nil
	})
}

func confirmDelete(in io.Reader, out io.Writer, names, clusters []string) bool {
	fmt.Fprintln(out, "WARNING: The following indexes will be DELETED:")
	fmt.Fprintln(out)
	for _, name := range names {
		fmt.Fprintf(out, "  - %s\n", name)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "From %d cluster(s): %s\n", len(clusters), strings.Join(clusters, ", "))
	fmt.Fprintln(out)

	return cmdutil.Confirm(in, out, "Are you sure you want to delete these indexes?")
}
