// Package reindex holds the commands that start server-side copy jobs and
// wait for tasks to leave the running task list.
package reindex

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aryankumar/esadmin/internal/cli/cmdutil"
	"github.com/aryankumar/esadmin/internal/es"
	"github.com/aryankumar/esadmin/internal/ops"
	"github.com/aryankumar/esadmin/internal/util"
)

// Task states reported by reindex and wait-task
const (
	statusSubmitted = "submitted"
	statusCompleted = "completed"
)

const defaultScriptLang = "painless"

type reindexOptions struct {
	source      []string
	destination string
	script      string
	scriptFile  string
	scriptLang  string
	params      map[string]string
	maxDocs     int
	noWait      bool
	refresh     bool
}

// NewReindexCmd creates the reindex command
func NewReindexCmd() *cobra.Command {
	var o reindexOptions

	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Copy documents from source indexes into a destination index",
		Long: `Submit a reindex job and, unless --no-wait is given, poll the task list
until the job is no longer running. A script transforms each document on the
way through.`,
		Example: `  # Copy and wait
  esadmin reindex --source logs-v1 --destination logs-v2

  # Rename a field, return the task id at once
  esadmin reindex --source logs-v1 --destination logs-v2 \
    --script 'ctx._source.msg = ctx._source.remove("message")' --no-wait

  # Parameterized script from a file
  esadmin reindex --source a --destination b --script-file bump.painless --script-param factor=2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := o.request()
			if err != nil {
				return err
			}
			return runReindex(cmd, req, o.noWait)
		},
	}

	cmd.Flags().StringSliceVar(&o.source, "source", nil, "source indexes (required)")
	cmd.Flags().StringVar(&o.destination, "destination", "", "destination index (required)")
	cmd.Flags().StringVar(&o.script, "script", "", "inline script source")
	cmd.Flags().StringVar(&o.scriptFile, "script-file", "", "file holding the script source")
	cmd.Flags().StringVar(&o.scriptLang, "script-lang", defaultScriptLang, "script language")
	cmd.Flags().StringToStringVar(&o.params, "script-param", nil, "script parameter as key=value, repeatable")
	cmd.Flags().IntVar(&o.maxDocs, "max-docs", 0, "copy at most this many documents")
	cmd.Flags().BoolVar(&o.noWait, "no-wait", false, "print the task id without waiting")
	cmd.Flags().BoolVar(&o.refresh, "refresh", true, "refresh the destination when the copy completes")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("destination")

	return cmd
}

func (o reindexOptions) request() (es.ReindexRequest, error) {
	if len(o.source) == 0 {
		return es.ReindexRequest{}, util.NewValidationError("source", nil, "at least one source index is required")
	}
	if o.destination == "" {
		return es.ReindexRequest{}, util.NewValidationError("destination", nil, "must not be empty")
	}
	for _, src := range o.source {
		if src == o.destination {
			return es.ReindexRequest{}, util.NewValidationError("destination", o.destination, "must differ from the source")
		}
	}
	if o.maxDocs < 0 {
		return es.ReindexRequest{}, util.NewValidationError("max-docs", o.maxDocs, "must not be negative")
	}
	if o.script != "" && o.scriptFile != "" {
		return es.ReindexRequest{}, util.NewValidationError("script", nil, "use --script or --script-file, not both")
	}

	req := es.ReindexRequest{
		Source:      o.source,
		Destination: o.destination,
		MaxDocs:     o.maxDocs,
		Refresh:     o.refresh,
	}

	source := o.script
	if o.scriptFile != "" {
		b, err := os.ReadFile(o.scriptFile)
		if err != nil {
			return es.ReindexRequest{}, fmt.Errorf("failed to read script: %w", err)
		}
		source = string(b)
	}
	if source != "" {
		req.Script = &es.Script{
			Source: source,
			Lang:   o.scriptLang,
			Params: cmdutil.ParseParams(o.params),
		}
	} else if len(o.params) > 0 {
		return es.ReindexRequest{}, util.NewValidationError("script-param", nil, "parameters need a script")
	}
	return req, nil
}

func runReindex(cmd *cobra.Command, req es.ReindexRequest, noWait bool) error {
	ctx, s, cleanup, err := cmdutil.Connect(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	return s.Run(ctx, func(ctx context.Context, admin *ops.Admin) (interface{}, error) {
		if noWait {
			id, err := admin.AsyncReindex(ctx, req)
			if err != nil {
				return nil, err
			}
			return cmdutil.TaskRef{Task: id.String(), Status: statusSubmitted}, nil
		}

		id, err := admin.Reindex(ctx, req)
		if err != nil {
			if id.IsZero() {
				return nil, err
			}
			s.Logger().Warn("reindex task left running, resume with wait-task",
				"cluster", admin.Client().Name(), "task", id.String(), "error", err)
			return cmdutil.TaskRef{Task: id.String(), Status: statusSubmitted},
				fmt.Errorf("waiting for task %s: %w", id, err)
		}
		ref := cmdutil.TaskRef{Task: id.String(), Status: statusCompleted}
		return ref, checkTaskResult(ctx, admin, id)
	})
}

// checkTaskResult reports a failure stored in the task result. Servers that
// keep no result for the task are not an error.
func checkTaskResult(ctx context.Context, admin *ops.Admin, id es.TaskID) error {
	status, err := admin.GetTask(ctx, id)
	if err != nil {
		if util.IsNotFound(err) {
			return nil
		}
		return err
	}
	if status.Error != nil {
		return fmt.Errorf("task %s failed: %s: %s", id, status.Error.Type, status.Error.Reason)
	}
	return nil
}
