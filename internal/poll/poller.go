package poll

import (
	"context"
	"log/slog"
	"time"

	"k8s.io/utils/clock"

	"github.com/aryankumar/esadmin/internal/es"
	"github.com/aryankumar/esadmin/internal/util"
)

// DefaultInterval is the pause between two polls
const DefaultInterval = 100 * time.Millisecond

// Clock supplies the timer used between polls
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

// HealthChecker is the part of *es.Client used by AwaitClusterHealth
type HealthChecker interface {
	ClusterHealth(ctx context.Context, req es.HealthRequest) (*es.ClusterHealth, error)
}

// TaskLister is the part of *es.Client used by AwaitTaskCompletion
type TaskLister interface {
	ListTasks(ctx context.Context, req es.ListTasksRequest) ([]es.TaskInfo, error)
}

// Client combines both polling dependencies
type Client interface {
	HealthChecker
	TaskLister
}

// Option configures a Poller
type Option func(*Poller)

// WithClock sets the clock used for sleeping between polls
func WithClock(c Clock) Option {
	return func(p *Poller) {
		if c != nil {
			p.clock = c
		}
	}
}

// WithInterval sets the pause between polls
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(p *Poller) {
		if l != nil {
			p.logger = l
		}
	}
}

// Poller waits for cluster health and task completion on one client
type Poller struct {
	client   Client
	clock    Clock
	interval time.Duration
	logger   *slog.Logger
}

// New creates a Poller for client
func New(client Client, opts ...Option) *Poller {
	p := &Poller{
		client:   client,
		clock:    clock.RealClock{},
		interval: DefaultInterval,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Interval returns the configured pause between polls
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// AwaitClusterHealth requests yellow health at indices level until the server
// answers without timing out. Only server-side timeouts consume the budget;
// transport and response errors are returned as is. At most maxRetries+1
// requests are made, a negative budget counts as zero, and there is no sleep
// after the final attempt.
func (p *Poller) AwaitClusterHealth(ctx context.Context, maxRetries int, indexNames ...string) (*es.ClusterHealth, error) {
	if maxRetries < 0 {
		maxRetries = 0
	}
	req := es.HealthRequest{
		Indices:       indexNames,
		WaitForStatus: es.StatusYellow,
		Level:         es.LevelIndices,
	}

	attempts := maxRetries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, cancelled(err)
		}

		health, err := p.client.ClusterHealth(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, cancelled(ctx.Err())
			}
			return nil, err
		}
		if !health.TimedOut {
			p.logger.Debug("cluster health received",
				"cluster", health.ClusterName,
				"status", health.Status,
				"attempt", attempt)
			return health, nil
		}

		p.logger.Warn("cluster health request timed out",
			"attempt", attempt,
			"max_attempts", attempts,
			"indices", indexNames)

		if attempt == attempts {
			break
		}
		if err := p.sleep(ctx); err != nil {
			return nil, err
		}
	}

	return nil, &ClusterUnavailableError{Attempts: attempts, Indices: indexNames}
}

// AwaitTaskCompletion polls the running task list until taskID is absent.
// An empty list also counts as done. Absence does not tell success from
// failure; use es.Client.GetTask to read the stored result.
func (p *Poller) AwaitTaskCompletion(ctx context.Context, taskID string) error {
	id, err := es.ParseTaskID(taskID)
	if err != nil {
		return util.NewValidationError("task", taskID, err.Error())
	}

	req := es.ListTasksRequest{Detailed: true}
	for round := 1; ; round++ {
		if err := ctx.Err(); err != nil {
			return cancelled(err)
		}

		tasks, err := p.client.ListTasks(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return cancelled(ctx.Err())
			}
			return err
		}
		if len(tasks) == 0 {
			p.logger.Debug("no running tasks", "task", id.String(), "poll", round)
			return nil
		}

		found := false
		for _, task := range tasks {
			if task.ID == id {
				found = true
				p.logger.Debug("task still running",
					"task", id.String(),
					"action", task.Action,
					"running", task.Running(),
					"poll", round)
				continue
			}
			p.logger.Debug("other running task", "task", task.ID.String(), "action", task.Action)
		}
		if !found {
			p.logger.Debug("task no longer running", "task", id.String(), "poll", round)
			return nil
		}

		if err := p.sleep(ctx); err != nil {
			return err
		}
	}
}

func (p *Poller) sleep(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return cancelled(ctx.Err())
	case <-p.clock.After(p.interval):
		return nil
	}
}
