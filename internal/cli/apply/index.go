package apply

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aryankumar/esadmin/internal/cli/cmdutil"
	"github.com/aryankumar/esadmin/internal/ops"
	"github.com/aryankumar/esadmin/internal/util"
)

type createIndexOptions struct {
	shards   int
	replicas int
	body     string
	file     string
	recreate bool
}

// NewCreateIndexCmd creates the create-index command
func NewCreateIndexCmd() *cobra.Command {
	var o createIndexOptions

	cmd := &cobra.Command{
		Use:   "create-index NAME...",
		Short: "Create indexes",
		Long: `Create indexes with optional settings and mappings. --shards and --replicas
build the settings; --body or --file give a full creation body instead.
--recreate deletes each index that already exists first.`,
		Example: `  # One primary, no replicas
  esadmin create-index scratch --shards 1 --replicas 0

  # Full body from a file, replacing the existing index
  esadmin create-index logs-v2 --file logs-v2.json --recreate`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := o.creationBody(cmd)
			if err != nil {
				return err
			}
			return runCreateIndex(cmd, args, body, o.recreate)
		},
	}

	cmd.Flags().IntVar(&o.shards, "shards", 1, "number of primary shards")
	cmd.Flags().IntVar(&o.replicas, "replicas", 1, "number of replicas")
	cmd.Flags().StringVar(&o.body, "body", "", "creation body as JSON")
	cmd.Flags().StringVarP(&o.file, "file", "f", "", "file holding the creation body, '-' for stdin")
	cmd.Flags().BoolVar(&o.recreate, "recreate", false, "delete existing indexes before creating them")

	return cmd
}

// creationBody returns the body to send. Nil leaves the server defaults.
func (o createIndexOptions) creationBody(cmd *cobra.Command) ([]byte, error) {
	sized := cmd.Flags().Changed("shards") || cmd.Flags().Changed("replicas")
	if sized && (o.body != "" || o.file != "") {
		return nil, util.NewValidationError("body", nil, "--shards/--replicas cannot be combined with --body or --file")
	}
	if o.shards < 1 {
		return nil, util.NewValidationError("shards", o.shards, "must be at least 1")
	}
	if o.replicas < 0 {
		return nil, util.NewValidationError("replicas", o.replicas, "must not be negative")
	}

	if !sized {
		return cmdutil.ReadJSON("body", o.body, o.file, cmd.InOrStdin())
	}

	body := map[string]any{
		"settings": map[string]any{
			"number_of_shards":   o.shards,
			"number_of_replicas": o.replicas,
		},
	}
	return json.Marshal(body)
}

func runCreateIndex(cmd *cobra.Command, names []string, body []byte, recreate bool) error {
	ctx, s, cleanup, err := cmdutil.Connect(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	return s.Run(ctx, func(ctx context.Context, admin *ops.Admin) (interface{}, error) {
		results := make(cmdutil.WriteResults, 0, len(names))
		for _, name := range names {
			result := resultCreated
			if recreate {
				if err := admin.RecreateIndexes(ctx, body, name); err != nil {
					return results, err
				}
				result = resultRecreated
			} else if err := admin.CreateIndex(ctx, name, body); err != nil {
				return results, err
			}
			results = append(results, cmdutil.WriteResult{Kind: "index", Name: name, Result: result})
		}
		return results, nil
	})
}
