package cluster

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aryankumar/esadmin/internal/cli/cmdutil"
	"github.com/aryankumar/esadmin/internal/config"
)

// clusterInfo is one configured cluster as listed
type clusterInfo struct {
	Name     string            `json:"name"`
	Current  bool              `json:"current"`
	URL      string            `json:"url"`
	Engine   string            `json:"engine"`
	Username string            `json:"username,omitempty"`
	Labels   map[string]string `json:"labels,omitempty"`
	Disabled bool              `json:"disabled,omitempty"`
}

// clusterList renders the configured clusters, current cluster first
type clusterList struct {
	Clusters   []clusterInfo `json:"clusters"`
	showLabels bool
}

func (l clusterList) TableHeaders() []string {
	headers := []string{"CURRENT", "NAME", "URL", "ENGINE", "STATUS"}
	if l.showLabels {
		headers = append(headers, "LABELS")
	}
	return headers
}

func (l clusterList) TableRows() [][]string {
	rows := make([][]string, 0, len(l.Clusters))
	for _, c := range l.Clusters {
		current := ""
		if c.Current {
			current = "*"
		}
		status := "enabled"
		if c.Disabled {
			status = "disabled"
		}
		url := c.URL
		if len(url) > 50 {
			url = url[:47] + "..."
		}
		row := []string{current, c.Name, url, c.Engine, status}
		if l.showLabels {
			row = append(row, formatLabels(c.Labels))
		}
		rows = append(rows, row)
	}
	return rows
}

// newListCmd creates the cluster list command
func newListCmd() *cobra.Command {
	var showLabels bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List configured clusters",
		Long: `List the clusters in the esadmin config file, showing the current cluster,
the endpoint, the server product and whether the cluster takes part in
--clusters all and label selection.`,
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, showLabels)
		},
	}

	cmd.Flags().BoolVar(&showLabels, "show-labels", false, "show cluster labels")

	return cmd
}

func runList(cmd *cobra.Command, showLabels bool) error {
	s, err := cmdutil.NewSession(cmd)
	if err != nil {
		return err
	}

	cfg := s.Config.GetConfig()
	names := s.Config.ClusterNames()
	if len(names) == 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "No clusters configured in %s\n", s.Config.Path())
		return nil
	}

	list := clusterList{showLabels: showLabels}
	for _, name := range names {
		list.Clusters = append(list.Clusters, newClusterInfo(name, cfg))
	}

	// Current cluster always comes first
	sort.SliceStable(list.Clusters, func(i, j int) bool {
		return list.Clusters[i].Current && !list.Clusters[j].Current
	})

	return s.Print(list)
}

func newClusterInfo(name string, cfg *config.Config) clusterInfo {
	c := cfg.Clusters[name]
	engine := c.Engine
	if engine == "" {
		engine = "elasticsearch"
	}
	return clusterInfo{
		Name:     name,
		Current:  name == cfg.CurrentCluster,
		URL:      c.URL,
		Engine:   engine,
		Username: c.Username,
		Labels:   c.Labels,
		Disabled: c.Disabled,
	}
}

func formatLabels(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}

	pairs := make([]string, 0, len(labels))
	for k, v := range labels {
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}
