package get

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aryankumar/esadmin/internal/cli/cmdutil"
	"github.com/aryankumar/esadmin/internal/es"
	"github.com/aryankumar/esadmin/internal/ops"
	"github.com/aryankumar/esadmin/internal/util"
)

func newGetTasksCmd() *cobra.Command {
	var actions []string

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List running tasks",
		Long:  `List the tasks currently running on each selected cluster.`,
		Example: `  # Every running task
  esadmin get tasks

  # Only reindex jobs
  esadmin get tasks --actions '*reindex'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGetTasks(cmd, actions)
		},
	}

	cmd.Flags().StringSliceVar(&actions, "actions", nil, "filter by action name, wildcards allowed")

	return cmd
}

func runGetTasks(cmd *cobra.Command, actions []string) error {
	ctx, s, cleanup, err := cmdutil.Connect(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	return s.Run(ctx, func(ctx context.Context, admin *ops.Admin) (interface{}, error) {
		tasks, err := admin.ListTasks(ctx, actions...)
		if err != nil {
			return nil, err
		}
		return cmdutil.TaskList(tasks), nil
	})
}

func newGetTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task TASK_ID",
		Short: "Show one task",
		Long: `Show the live state of a running task, or the stored result of a finished
one. Needs exactly one target cluster.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGetTask(cmd, args[0])
		},
	}

	return cmd
}

func runGetTask(cmd *cobra.Command, rawID string) error {
	id, err := es.ParseTaskID(rawID)
	if err != nil {
		return util.NewValidationError("task", rawID, err.Error())
	}

	ctx, s, cleanup, err := cmdutil.Connect(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	admin, err := s.Single()
	if err != nil {
		return err
	}
	status, err := admin.GetTask(ctx, id)
	if err != nil {
		return err
	}
	return s.Print(cmdutil.TaskView{TaskStatus: status})
}
