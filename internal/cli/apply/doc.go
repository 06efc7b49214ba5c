package apply

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aryankumar/esadmin/internal/cli/cmdutil"
	"github.com/aryankumar/esadmin/internal/es"
	"github.com/aryankumar/esadmin/internal/ops"
	"github.com/aryankumar/esadmin/internal/util"
)

// NewPutDocCmd creates the put-doc command
func NewPutDocCmd() *cobra.Command {
	var (
		data    string
		file    string
		create  bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "put-doc INDEX ID",
		Short: "Index a single document",
		Long: `Store one document under the given id. With --create the request fails
when the id already exists instead of replacing the document.`,
		Example: `  # Inline body
  esadmin put-doc users 42 --data '{"name":"ada"}'

  # Body from a file, refusing to overwrite
  esadmin put-doc users 42 --file user.json --create`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := cmdutil.ReadJSON("data", data, file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if body == nil {
				return util.NewValidationError("data", nil, "one of --data or --file is required")
			}
			req := es.IndexDocumentRequest{
				Index:   args[0],
				ID:      args[1],
				Body:    body,
				Create:  create,
				Refresh: refresh,
			}
			return runPutDoc(cmd, req)
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "document body as JSON")
	cmd.Flags().StringVarP(&file, "file", "f", "", "file holding the document body, '-' for stdin")
	cmd.Flags().BoolVar(&create, "create", false, "fail if the document already exists")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "make the document searchable before returning")

	return cmd
}

func runPutDoc(cmd *cobra.Command, req es.IndexDocumentRequest) error {
	ctx, s, cleanup, err := cmdutil.Connect(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	return s.Run(ctx, func(ctx context.Context, admin *ops.Admin) (interface{}, error) {
		res, err := admin.PutDocument(ctx, req)
		if err != nil {
			return nil, err
		}
		return cmdutil.WriteResult{Kind: "document", Name: res.Index + "/" + res.ID, Result: res.Result}, nil
	})
}
