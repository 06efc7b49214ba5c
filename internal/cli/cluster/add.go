package cluster

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aryankumar/esadmin/internal/cli/cmdutil"
	"github.com/aryankumar/esadmin/internal/config"
	"github.com/aryankumar/esadmin/internal/es"
	"github.com/aryankumar/esadmin/internal/util"
)

type addOptions struct {
	labels   map[string]string
	disabled bool
	current  bool
	force    bool
}

// newAddCmd creates the cluster add command
func newAddCmd() *cobra.Command {
	var o addOptions

	cmd := &cobra.Command{
		Use:   "add NAME URL",
		Short: "Add a cluster to the config file",
		Long: `Add a named cluster to the esadmin config file.

The global --engine, --username, --password and --insecure flags are stored
with the cluster. Labels group clusters for --selector.`,
		Example: `  # A local Elasticsearch node
  esadmin cluster add local http://localhost:9200 --current

  # An OpenSearch domain labelled for selection
  esadmin cluster add logs-prod https://search-logs-prod-abc123.eu-west-1.es.amazonaws.com \
    --engine opensearch --username admin --label env=prod --label team=search`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, args[0], args[1], o)
		},
	}

	cmd.Flags().StringToStringVar(&o.labels, "label", nil, "label as key=value, repeatable")
	cmd.Flags().BoolVar(&o.disabled, "disabled", false, "exclude the cluster from --clusters all and label selection")
	cmd.Flags().BoolVar(&o.current, "current", false, "make this the current cluster")
	cmd.Flags().BoolVar(&o.force, "force", false, "replace an existing cluster with the same name")

	return cmd
}

func runAdd(cmd *cobra.Command, name, rawURL string, o addOptions) error {
	name = strings.TrimSpace(name)
	if name == "" || name == config.AllClusters {
		return util.NewValidationError("name", name, fmt.Sprintf("must not be empty or %q", config.AllClusters))
	}
	if err := validateURL(rawURL); err != nil {
		return err
	}
	engine, err := es.ParseEngine(viper.GetString("engine"))
	if err != nil {
		return util.NewValidationError("engine", viper.GetString("engine"), err.Error())
	}

	s, err := cmdutil.NewSession(cmd)
	if err != nil {
		return err
	}
	if _, exists := s.Config.GetClusterConfig(name); exists && !o.force {
		return fmt.Errorf("cluster %q: %w (use --force to replace it)", name, util.ErrAlreadyExists)
	}

	s.Config.SetClusterConfig(name, config.ClusterConfig{
		URL:      strings.TrimRight(rawURL, "/"),
		Engine:   string(engine),
		Username: viper.GetString("username"),
		Password: viper.GetString("password"),
		Insecure: viper.GetBool("insecure"),
		Labels:   o.labels,
		Disabled: o.disabled,
	})
	if o.current || s.Config.GetConfig().CurrentCluster == "" {
		if err := s.Config.SetCurrentCluster(name); err != nil {
			return err
		}
	}
	if err := s.Config.Save(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Cluster %q added to %s\n", name, s.Config.Path())
	return nil
}

func validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return util.NewValidationError("url", rawURL, err.Error())
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return util.NewValidationError("url", rawURL, "scheme must be http or https")
	}
	if u.Host == "" {
		return util.NewValidationError("url", rawURL, "missing host")
	}
	return nil
}
