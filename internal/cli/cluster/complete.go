package cluster

import (
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aryankumar/esadmin/internal/config"
)

// configuredNames loads the config file named by --config. Errors yield no names.
func configuredNames() []string {
	mgr := config.NewManager(viper.GetString("config"))
	if _, err := mgr.Load(); err != nil {
		return nil
	}
	return mgr.ClusterNames()
}

// CompleteName completes the single NAME argument of use and remove
func CompleteName(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var out []string
	for _, name := range configuredNames() {
		if strings.HasPrefix(name, toComplete) {
			out = append(out, name)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// CompleteFlag completes --cluster values. The flag is comma separated, so
// only the part after the last comma is completed and names already given
// are skipped.
func CompleteFlag(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	prefix, partial := "", toComplete
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		prefix, partial = toComplete[:i+1], toComplete[i+1:]
	}
	given := strings.Split(strings.TrimSuffix(prefix, ","), ",")

	candidates := configuredNames()
	if prefix == "" {
		candidates = append(candidates, config.AllClusters)
	}

	var out []string
	for _, name := range candidates {
		if strings.HasPrefix(name, partial) && !slices.Contains(given, name) {
			out = append(out, prefix+name)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}
