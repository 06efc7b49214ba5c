package reindex

import (
	"github.com/spf13/cobra"

	"github.com/aryankumar/esadmin/internal/cli/cmdutil"
	"github.com/aryankumar/esadmin/internal/es"
	"github.com/aryankumar/esadmin/internal/util"
)

// NewWaitTaskCmd creates the wait-task command
func NewWaitTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wait-task TASK_ID",
		Short: "Wait until a task finishes",
		Long: `Poll the task list every --poll-interval until TASK_ID is no longer
running. Bounded by --timeout; Ctrl-C stops waiting without touching the task.`,
		Example: `  esadmin wait-task oTUltX4IQMOUUVeiohTt8A:12345 --timeout 2h`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWaitTask(cmd, args[0])
		},
	}

	return cmd
}

func runWaitTask(cmd *cobra.Command, taskID string) error {
	if _, err := es.ParseTaskID(taskID); err != nil {
		return util.NewValidationError("task", taskID, err.Error())
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
	if err := admin.WaitTask(ctx, taskID); err != nil {
		return err
	}
	return s.Print(cmdutil.TaskRef{Task: taskID, Status: statusCompleted})
}
