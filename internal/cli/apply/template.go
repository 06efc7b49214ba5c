package apply

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aryankumar/esadmin/internal/cli/cmdutil"
	"github.com/aryankumar/esadmin/internal/ops"
	"github.com/aryankumar/esadmin/internal/util"
)

// NewPutTemplateCmd creates the put-template command
func NewPutTemplateCmd() *cobra.Command {
	var (
		name string
		path string
	)

	cmd := &cobra.Command{
		Use:   "put-template",
		Short: "Create or replace an index template",
		Long: `Store a legacy index template on every selected cluster. The body is read
from --template-json and must contain index_patterns.`,
		Example: `  # Install a template on the current cluster
  esadmin put-template --template-name logs --template-json logs-template.json

  # Install it on every production cluster
  esadmin put-template --template-name logs --template-json logs-template.json -l env=prod`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPutTemplate(cmd, name, path)
		},
	}

	cmd.Flags().StringVar(&name, "template-name", "", "template name (required)")
	cmd.Flags().StringVar(&path, "template-json", "", "file holding the template body, '-' for stdin (required)")
	_ = cmd.MarkFlagRequired("template-name")
	_ = cmd.MarkFlagRequired("template-json")

	return cmd
}

func runPutTemplate(cmd *cobra.Command, name, path string) error {
	if name == "" {
		return util.NewValidationError("template-name", name, "must not be empty")
	}
	body, err := cmdutil.ReadJSON("template-json", "", path, cmd.InOrStdin())
	if err != nil {
		return err
	}

	ctx, s, cleanup, err := cmdutil.Connect(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	return s.Run(ctx, func(ctx context.Context, admin *ops.Admin) (interface{}, error) {
		acked, err := admin.PutTemplate(ctx, name, body)
		if err != nil {
			return nil, err
		}
		result := resultAcknowledged
		if !acked {
			result = resultNotAcknowledged
		}
		return cmdutil.WriteResult{Kind: "template", Name: name, Result: result}, nil
	})
}
