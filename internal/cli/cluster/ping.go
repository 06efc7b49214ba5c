package cluster

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aryankumar/esadmin/internal/cli/cmdutil"
	escluster "github.com/aryankumar/esadmin/internal/cluster"
)

// pingResults renders connection probes
type pingResults []escluster.HealthStatus

func (p pingResults) TableHeaders() []string {
	return []string{"CLUSTER", "STATUS", "SERVER", "VERSION", "LATENCY", "ERROR"}
}

func (p pingResults) TableRows() [][]string {
	rows := make([][]string, 0, len(p))
	for _, h := range p {
		status := "ok"
		errText := ""
		if !h.Healthy {
			status = "failed"
			if h.Error != nil {
				errText = h.Error.Error()
			}
		}
		version := h.Version
		if h.Distribution != "" {
			version = h.Distribution + " " + version
		}
		rows = append(rows, []string{h.ClusterName, status, h.ServerName, version, h.Latency.Round(time.Millisecond).String(), errText})
	}
	return rows
}

// newPingCmd creates the cluster ping command
func newPingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Check that the selected clusters answer",
		Long: `Send GET / to every selected cluster and report the server name, version
and round trip. Exits non-zero when any cluster fails.`,
		Example: `  # Every enabled cluster
  esadmin cluster ping --clusters all`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPing(cmd)
		},
	}

	return cmd
}

func runPing(cmd *cobra.Command) error {
	ctx, s, cleanup, err := cmdutil.Connect(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	results := pingResults(s.Clusters().HealthCheck(ctx))
	if err := s.Print(results); err != nil {
		return err
	}

	failed := 0
	for _, h := range results {
		if !h.Healthy {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d clusters failed to answer", failed, len(results))
	}
	return nil
}
