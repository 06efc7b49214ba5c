package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aryankumar/esadmin/internal/output"
	"github.com/aryankumar/esadmin/pkg/version"
)

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Display detailed version information for the esadmin CLI",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(cmd)
		},
	}

	return cmd
}

// versionView lays version.Info out as a COMPONENT/VALUE table
type versionView struct {
	version.Info
}

func (v versionView) TableHeaders() []string { return []string{"COMPONENT", "VALUE"} }

func (v versionView) TableRows() [][]string {
	fields := v.Fields()
	rows := make([][]string, 0, len(fields))
	for _, f := range fields {
		rows = append(rows, []string{f[0], f[1]})
	}
	return rows
}

func runVersion(cmd *cobra.Command) error {
	info := version.Get()

	// Without -o print the human-readable block
	if viper.GetString("output") == "" {
		fmt.Fprintln(cmd.OutOrStdout(), info.String())
		return nil
	}

	format, err := output.ParseFormat(viper.GetString("output"))
	if err != nil {
		return err
	}
	formatter := output.NewFormatter(format, output.WithNoColor(true))
	if err := formatter.Format(cmd.OutOrStdout(), versionView{info}); err != nil {
		return fmt.Errorf("failed to format version info: %w", err)
	}
	return nil
}
