package get

import (
	"github.com/spf13/cobra"
)

// NewGetCmd creates the get parent command
// This command aggregates the read-only subcommands (indexes, health, templates, tasks, ...)
func NewGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Read cluster state across one or more clusters",
		Long: `Read indexes, health, templates, tasks, field capabilities and documents.

Commands that do not address a single object by id run against every
selected cluster and merge the results under a CLUSTER column.`,
		Example: `  # List indexes on the current cluster
  esadmin get indexes

  # Health of two indexes in every enabled cluster
  esadmin get health logs-a logs-b --clusters all

  # Templates matching a pattern as JSON
  esadmin get templates 'logs-*' -o json

  # Show a stored reindex task
  esadmin get task oTUltX4IQMOUUVeiohTt8A:12345`,
	}

	cmd.AddCommand(newGetIndexesCmd())
	cmd.AddCommand(newGetHealthCmd())
	cmd.AddCommand(newGetTemplatesCmd())
	cmd.AddCommand(newGetTasksCmd())
	cmd.AddCommand(newGetTaskCmd())
	cmd.AddCommand(newGetFieldCapsCmd())
	cmd.AddCommand(newGetDocCmd())

	return cmd
}
