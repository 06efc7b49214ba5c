package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aryankumar/esadmin/internal/cli/cluster"
)

// shells maps each supported shell to its script generator
var shells = map[string]func(cmd *cobra.Command) error{
	"bash": func(cmd *cobra.Command) error {
		return cmd.Root().GenBashCompletionV2(cmd.OutOrStdout(), true)
	},
	"zsh": func(cmd *cobra.Command) error {
		return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
	},
	"fish": func(cmd *cobra.Command) error {
		return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
	},
	"powershell": func(cmd *cobra.Command) error {
		return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
	},
}

// newCompletionCmd creates the completion command for generating shell completions
func newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for esadmin.

Cluster names for --cluster, cluster use and cluster remove are completed
from the config file.

Bash:
  $ source <(esadmin completion bash)
  $ esadmin completion bash > /etc/bash_completion.d/esadmin

Zsh:
  $ esadmin completion zsh > "${fpath[1]}/_esadmin"

Fish:
  $ esadmin completion fish > ~/.config/fish/completions/esadmin.fish

PowerShell:
  PS> esadmin completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		// Scripts are static, so logging and config are not set up
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, ok := shells[args[0]]
			if !ok {
				return fmt.Errorf("unsupported shell type %q", args[0])
			}
			return gen(cmd)
		},
	}

	return cmd
}

// registerFlagCompletions adds value completion to the root persistent flags
func registerFlagCompletions(root *cobra.Command) {
	fixed := func(values ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return cobra.FixedCompletions(values, cobra.ShellCompDirectiveNoFileComp)
	}

	_ = root.RegisterFlagCompletionFunc("cluster", cluster.CompleteFlag)
	_ = root.RegisterFlagCompletionFunc("output", fixed("table", "json", "yaml"))
	_ = root.RegisterFlagCompletionFunc("engine", fixed("elasticsearch", "opensearch"))
	_ = root.RegisterFlagCompletionFunc("es-scheme", fixed("http", "https"))
	_ = root.RegisterFlagCompletionFunc("log-format", fixed("text", "json"))
}
