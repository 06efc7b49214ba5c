package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/aryankumar/esadmin/internal/cli/apply"
	"github.com/aryankumar/esadmin/internal/cli/cluster"
	"github.com/aryankumar/esadmin/internal/cli/delete"
	"github.com/aryankumar/esadmin/internal/cli/get"
	"github.com/aryankumar/esadmin/internal/cli/reindex"
	"github.com/aryankumar/esadmin/internal/config"
	"github.com/aryankumar/esadmin/pkg/version"
)

// Execute runs the root command with the provided context
func Execute(ctx context.Context) error {
	defer closeLog()
	return newRootCmd().ExecuteContext(ctx)
}

// newRootCmd creates the root command
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "esadmin",
		Short: "esadmin - Elasticsearch and OpenSearch administration tool",
		Long: `esadmin is a CLI for administering Elasticsearch and OpenSearch clusters.

It manages index templates, indexes and documents, runs reindex jobs and
waits for them to finish, and reports cluster health across one or many
configured clusters.`,
		Version:       version.Get().Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()

	// Connection
	flags.String("config", "", "config file (default is $HOME/.esadmin.yaml or $HOME/.esadmin/config.yaml)")
	flags.StringSliceP("cluster", "c", []string{}, "target clusters from the config file (comma-separated, 'all' for every enabled cluster)")
	flags.StringP("selector", "l", "", "select configured clusters by label (e.g. env=prod)")
	flags.String("url", "", "cluster URL, bypasses the config file")
	flags.String("es-hostname", config.DefaultHostname, "cluster hostname")
	flags.Int("es-port", config.DefaultPort, "cluster port")
	flags.String("es-scheme", config.DefaultScheme, "cluster scheme (http or https)")
	flags.String("engine", "", "server product: elasticsearch or opensearch")
	flags.String("username", "", "basic auth username")
	flags.String("password", "", "basic auth password")
	flags.Bool("insecure", false, "skip TLS certificate verification")

	// Output
	flags.StringP("output", "o", "", "output format (table, json, yaml)")
	flags.BoolP("verbose", "v", false, "verbose output with debug logging")
	flags.Bool("no-color", false, "disable colored output")
	flags.String("log-file", "", "write logs to a rotating file instead of stderr")
	flags.String("log-format", "text", "log format (text, json)")

	// Execution
	flags.Duration("timeout", config.DefaultTimeout, "timeout for the whole command")
	flags.IntP("parallel", "p", config.DefaultParallel, "number of clusters contacted in parallel")
	flags.Int("health-retries", config.DefaultHealthRetries, "extra health requests after a server-side timeout")
	flags.Duration("poll-interval", config.DefaultPollInterval, "pause between health and task polls")

	// --clusters is accepted as a spelling of --cluster
	rootCmd.SetGlobalNormalizationFunc(normalizeFlagName)

	flags.VisitAll(func(f *pflag.Flag) {
		_ = viper.BindPFlag(f.Name, f)
	})
	registerFlagCompletions(rootCmd)

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(cluster.NewClusterCmd())
	rootCmd.AddCommand(get.NewGetCmd())
	rootCmd.AddCommand(get.NewSearchCmd())
	rootCmd.AddCommand(apply.NewPutTemplateCmd())
	rootCmd.AddCommand(apply.NewCreateIndexCmd())
	rootCmd.AddCommand(apply.NewPutDocCmd())
	rootCmd.AddCommand(apply.NewBulkCmd())
	rootCmd.AddCommand(delete.NewDeleteIndexCmd())
	rootCmd.AddCommand(reindex.NewReindexCmd())
	rootCmd.AddCommand(reindex.NewWaitTaskCmd())

	return rootCmd
}

func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	if name == "clusters" {
		name = "cluster"
	}
	return pflag.NormalizedName(name)
}

// initConfig wires environment variables and logging. The config file itself
// is read by each command through config.Manager.
func initConfig(cmd *cobra.Command) error {
	viper.SetEnvPrefix("ESADMIN")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	logFile := viper.GetString("log-file")
	if logFile == "" {
		// The config file may name a log file too
		cfg, err := config.NewManager(viper.GetString("config")).Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logFile = cfg.LogFile
	}

	return setupLogging(cmd, logFile)
}
