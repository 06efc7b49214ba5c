package executor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Task is one unit of work aimed at a single cluster
type Task struct {
	// ClusterName identifies which cluster this task targets
	ClusterName string

	// Execute runs the work. The cluster client is bound by the caller's closure.
	Execute func(ctx context.Context) (interface{}, error)
}

// Result represents the outcome of executing a task
type Result struct {
	// ClusterName identifies which cluster this result is from
	ClusterName string

	// Data contains the successful result data (nil if error occurred)
	Data interface{}

	// Error contains any error that occurred during execution (nil if successful)
	Error error

	// Duration is how long the task took to execute
	Duration time.Duration
}

// Pool runs tasks against many clusters with bounded concurrency
type Pool struct {
	workers int
	logger  *slog.Logger

	mu    sync.Mutex
	tasks []Task

	running atomic.Bool
}

// NewPool creates a pool running at most workers tasks at once.
// workers <= 0 defaults to 1.
func NewPool(workers int, logger *slog.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{
		workers: workers,
		logger:  logger,
	}
}

// Submit queues a task. Tasks cannot be added while the pool is executing.
func (p *Pool) Submit(task Task) error {
	if p.running.Load() {
		return fmt.Errorf("pool is running, cannot submit new tasks")
	}
	if task.ClusterName == "" {
		return fmt.Errorf("task must have a cluster name")
	}
	if task.Execute == nil {
		return fmt.Errorf("task must have an execute function")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.tasks = append(p.tasks, task)
	p.logger.Debug("task submitted", "cluster", task.ClusterName, "total_tasks", len(p.tasks))
	return nil
}

// Execute runs all submitted tasks and returns one result per task in submission order
func (p *Pool) Execute(ctx context.Context) []Result {
	return p.ExecuteWithProgress(ctx, nil)
}

// ExecuteWithProgress is Execute with a callback invoked after each task
// finishes with the completed and total counts. The callback may be called
// from several goroutines.
func (p *Pool) ExecuteWithProgress(ctx context.Context, progressFn func(completed, total int)) []Result {
	if !p.running.CompareAndSwap(false, true) {
		p.logger.Error("pool is already running")
		return []Result{}
	}
	defer p.running.Store(false)

	p.mu.Lock()
	tasks := make([]Task, len(p.tasks))
	copy(tasks, p.tasks)
	p.mu.Unlock()

	if len(tasks) == 0 {
		p.logger.Debug("no tasks to execute")
		return []Result{}
	}

	p.logger.Debug("starting task execution", "workers", p.workers, "tasks", len(tasks))
	start := time.Now()

	results := make([]Result, len(tasks))
	var completed atomic.Int32

	// Task failures are recorded in results, so the group never cancels siblings.
	var g errgroup.Group
	g.SetLimit(p.workers)
	for i, task := range tasks {
		g.Go(func() error {
			results[i] = p.executeTask(ctx, task)
			n := completed.Add(1)
			if progressFn != nil {
				progressFn(int(n), len(tasks))
			}
			return nil
		})
	}
	_ = g.Wait()

	successful := CountSuccessful(results)
	p.logger.Debug("task execution completed",
		"total", len(tasks),
		"successful", successful,
		"failed", len(tasks)-successful,
		"duration", time.Since(start))

	return results
}

func (p *Pool) executeTask(ctx context.Context, task Task) Result {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return Result{
			ClusterName: task.ClusterName,
			Error:       fmt.Errorf("task not executed: %w", err),
		}
	}

	data, err := task.Execute(ctx)
	result := Result{
		ClusterName: task.ClusterName,
		Data:        data,
		Error:       err,
		Duration:    time.Since(start),
	}

	if err != nil {
		p.logger.Warn("task failed", "cluster", task.ClusterName, "error", err, "duration", result.Duration)
	} else {
		p.logger.Debug("task succeeded", "cluster", task.ClusterName, "duration", result.Duration)
	}
	return result
}

// IsRunning returns true if the pool is currently executing tasks
func (p *Pool) IsRunning() bool {
	return p.running.Load()
}

// TaskCount returns the number of tasks currently queued
func (p *Pool) TaskCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.tasks)
}

// WorkerCount returns the concurrency limit
func (p *Pool) WorkerCount() int {
	return p.workers
}
