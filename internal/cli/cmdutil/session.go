// Package cmdutil holds the plumbing shared by the esadmin commands: reading
// the global flags, connecting to the selected clusters, fanning work out over
// them and printing the results.
package cmdutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aryankumar/esadmin/internal/cluster"
	"github.com/aryankumar/esadmin/internal/config"
	"github.com/aryankumar/esadmin/internal/executor"
	"github.com/aryankumar/esadmin/internal/ops"
	"github.com/aryankumar/esadmin/internal/output"
	"github.com/aryankumar/esadmin/internal/poll"
)

// Settings is the effective value of the global flags after merging the
// command line, ESADMIN_* variables and the config file defaults
type Settings struct {
	Targets       config.TargetOptions
	Output        output.Format
	NoColor       bool
	Timeout       time.Duration
	Parallel      int
	HealthRetries int
	PollInterval  time.Duration
}

// ResolveSettings reads the global flags. Flags and environment variables
// win over the defaults section of the config file.
func ResolveSettings(cfg *config.Config) (Settings, error) {
	d := cfg.Defaults

	s := Settings{
		Targets: config.TargetOptions{
			Clusters:     viper.GetStringSlice("cluster"),
			Selector:     viper.GetString("selector"),
			URL:          viper.GetString("url"),
			Hostname:     viper.GetString("es-hostname"),
			Port:         viper.GetInt("es-port"),
			Scheme:       viper.GetString("es-scheme"),
			HostFlagsSet: viper.IsSet("es-hostname") || viper.IsSet("es-port") || viper.IsSet("es-scheme"),
			Engine:       viper.GetString("engine"),
			Username:     viper.GetString("username"),
			Password:     viper.GetString("password"),
			Insecure:     viper.GetBool("insecure"),
		},
		NoColor:       d.NoColor || viper.GetBool("no-color"),
		Timeout:       d.Timeout,
		Parallel:      d.Parallel,
		HealthRetries: d.HealthRetries,
		PollInterval:  d.PollInterval,
	}

	format := d.OutputFormat
	if viper.IsSet("output") {
		format = viper.GetString("output")
	}
	f, err := output.ParseFormat(format)
	if err != nil {
		return Settings{}, err
	}
	s.Output = f

	if viper.IsSet("timeout") {
		s.Timeout = viper.GetDuration("timeout")
	}
	if viper.IsSet("parallel") {
		s.Parallel = viper.GetInt("parallel")
	}
	if viper.IsSet("health-retries") {
		s.HealthRetries = viper.GetInt("health-retries")
	}
	if viper.IsSet("poll-interval") {
		s.PollInterval = viper.GetDuration("poll-interval")
	}
	return s, nil
}

// ClusterFunc is the per-cluster body of a command
type ClusterFunc func(ctx context.Context, admin *ops.Admin) (interface{}, error)

// Session is one command invocation against the resolved clusters
type Session struct {
	Config    *config.Manager
	Settings  Settings
	Formatter output.Formatter

	out      io.Writer
	in       io.Reader
	logger   *slog.Logger
	clusters *cluster.Manager
	admins   []*ops.Admin
}

// NewSession loads the config file and resolves the global flags. No
// connection is made until Connect.
func NewSession(cmd *cobra.Command) (*Session, error) {
	mgr := config.NewManager(viper.GetString("config"))
	cfg, err := mgr.Load()
	if err != nil {
		return nil, err
	}

	settings, err := ResolveSettings(cfg)
	if err != nil {
		return nil, err
	}

	return &Session{
		Config:    mgr,
		Settings:  settings,
		Formatter: output.NewFormatter(settings.Output, output.WithNoColor(settings.NoColor)),
		out:       cmd.OutOrStdout(),
		in:        cmd.InOrStdin(),
		logger:    slog.Default(),
	}, nil
}

// Out is the command's standard output
func (s *Session) Out() io.Writer { return s.out }

// In is the command's standard input
func (s *Session) In() io.Reader { return s.in }

// Logger returns the session logger
func (s *Session) Logger() *slog.Logger { return s.logger }

// WithTimeout bounds a whole command by --timeout
func (s *Session) WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Settings.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.Settings.Timeout)
}

// Connect builds clients for the selected clusters. Clusters that fail are
// logged and skipped; an error is returned only when none connect.
func (s *Session) Connect(ctx context.Context) error {
	targets, err := s.Config.ResolveTargets(s.Settings.Targets)
	if err != nil {
		return err
	}

	s.clusters = cluster.NewManager(cluster.Options{Parallel: s.Settings.Parallel}, s.logger)
	if err := s.clusters.Connect(ctx, targets); err != nil {
		if s.clusters.Count() == 0 {
			return err
		}
		s.logger.Warn("some cluster connections failed", "error", err)
	}

	s.admins = s.admins[:0]
	for _, client := range s.clusters.GetAllClients() {
		logger := s.logger.With("cluster", client.Name())
		waiter := poll.New(client,
			poll.WithInterval(s.Settings.PollInterval),
			poll.WithLogger(logger))
		s.admins = append(s.admins, ops.New(client, ops.WithWaiter(waiter), ops.WithLogger(s.logger)))
	}
	s.logger.Debug("connected to clusters", "count", len(s.admins))
	return nil
}

// Clusters returns the connection manager, nil before Connect
func (s *Session) Clusters() *cluster.Manager {
	return s.clusters
}

// Admins returns one Admin per connected cluster, sorted by name
func (s *Session) Admins() []*ops.Admin {
	return s.admins
}

// ClusterNames returns the names of the connected clusters
func (s *Session) ClusterNames() []string {
	names := make([]string, 0, len(s.admins))
	for _, a := range s.admins {
		names = append(names, a.Client().Name())
	}
	return names
}

// Single returns the only connected cluster. Commands that address a
// server-side object by id use it.
func (s *Session) Single() (*ops.Admin, error) {
	switch len(s.admins) {
	case 0:
		return nil, fmt.Errorf("no clusters connected")
	case 1:
		return s.admins[0], nil
	default:
		return nil, fmt.Errorf("this command needs exactly one cluster, %d selected (%v)", len(s.admins), s.ClusterNames())
	}
}

// RunAll runs fn against every connected cluster on a bounded pool and
// returns one result per cluster in name order
func (s *Session) RunAll(ctx context.Context, fn ClusterFunc) ([]executor.Result, error) {
	pool := executor.NewPool(s.Settings.Parallel, s.logger)
	for _, admin := range s.admins {
		task := executor.Task{
			ClusterName: admin.Client().Name(),
			Execute: func(ctx context.Context) (interface{}, error) {
				return fn(ctx, admin)
			},
		}
		if err := pool.Submit(task); err != nil {
			return nil, fmt.Errorf("failed to submit task for %s: %w", task.ClusterName, err)
		}
	}
	return pool.Execute(ctx), nil
}

// Run executes fn and prints its result. A single cluster prints the value
// as is; several clusters print a merged table with a CLUSTER column.
func (s *Session) Run(ctx context.Context, fn ClusterFunc) error {
	if len(s.admins) == 1 {
		data, err := fn(ctx, s.admins[0])
		if err != nil {
			return err
		}
		return s.Print(data)
	}

	results, err := s.RunAll(ctx, fn)
	if err != nil {
		return err
	}
	if err := s.Formatter.FormatMultiCluster(s.out, results); err != nil {
		return fmt.Errorf("failed to format results: %w", err)
	}
	return executor.Err(results)
}

// Print formats one value to the command output
func (s *Session) Print(data interface{}) error {
	if err := s.Formatter.Format(s.out, data); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	return nil
}

// Close releases the cluster connections
func (s *Session) Close() {
	if s.clusters != nil {
		s.clusters.Close()
	}
}

// Connect is the common prologue of cluster commands: it creates a session,
// bounds the context by --timeout and connects. The returned cleanup must be
// called when the command finishes.
func Connect(cmd *cobra.Command) (context.Context, *Session, func(), error) {
	s, err := NewSession(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	ctx, cancel := s.WithTimeout(cmd.Context())
	cleanup := func() {
		cancel()
		s.Close()
	}
	if err := s.Connect(ctx); err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	return ctx, s, cleanup, nil
}
