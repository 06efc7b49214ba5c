package get

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aryankumar/esadmin/internal/cli/cmdutil"
	"github.com/aryankumar/esadmin/internal/ops"
)

func newGetTemplatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "templates [NAME]",
		Aliases: []string{"template"},
		Short:   "List index templates",
		Long:    `List the legacy index templates whose name matches NAME (wildcards allowed, default all).`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return runGetTemplates(cmd, name)
		},
	}

	return cmd
}

func runGetTemplates(cmd *cobra.Command, name string) error {
	ctx, s, cleanup, err := cmdutil.Connect(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	return s.Run(ctx, func(ctx context.Context, admin *ops.Admin) (interface{}, error) {
		templates, err := admin.GetTemplates(ctx, name)
		if err != nil {
			return nil, err
		}
		return cmdutil.TemplateList(templates), nil
	})
}
