package get

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aryankumar/esadmin/internal/cli/cmdutil"
	"github.com/aryankumar/esadmin/internal/es"
	"github.com/aryankumar/esadmin/internal/ops"
)

func newGetFieldCapsCmd() *cobra.Command {
	var userDefined bool

	cmd := &cobra.Command{
		Use:     "fieldcaps INDEX...",
		Aliases: []string{"fields"},
		Short:   "Show field capabilities",
		Long: `Show the type, searchability and aggregatability of every field in the
indexes. --user-defined hides metadata fields such as _id and _source.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGetFieldCaps(cmd, args, userDefined)
		},
	}

	cmd.Flags().BoolVar(&userDefined, "user-defined", false, "omit fields whose names start with an underscore")

	return cmd
}

func runGetFieldCaps(cmd *cobra.Command, indexNames []string, userDefined bool) error {
	ctx, s, cleanup, err := cmdutil.Connect(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	return s.Run(ctx, func(ctx context.Context, admin *ops.Admin) (interface{}, error) {
		var (
			caps es.FieldCapabilities
			err  error
		)
		if userDefined {
			caps, err = admin.UserDefinedFieldCapabilities(ctx, indexNames...)
		} else {
			caps, err = admin.FieldCapabilities(ctx, indexNames...)
		}
		if err != nil {
			return nil, err
		}
		return cmdutil.FieldCapsView(caps), nil
	})
}
