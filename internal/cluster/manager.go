package cluster

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aryankumar/esadmin/internal/config"
	"github.com/aryankumar/esadmin/internal/es"
	"github.com/aryankumar/esadmin/internal/util"
)

// Manager holds the clients of the clusters a command targets
type Manager struct {
	clients map[string]*es.Client

	// mu protects the maps and closed flag
	mu sync.RWMutex

	opts   Options
	logger *slog.Logger
	closed bool
}

// NewManager creates a new cluster manager
func NewManager(opts Options, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		clients: make(map[string]*es.Client),
		opts:    opts,
		logger:  logger,
	}
}

// Connect builds a client per target. Client construction does not touch the
// network, so an unreachable cluster surfaces on its first request. Every
// target is attempted; failures are returned together.
func (m *Manager) Connect(ctx context.Context, targets []config.Target) error {
	if len(targets) == 0 {
		return fmt.Errorf("no clusters to connect to")
	}

	var errs util.MultiError
	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			errs.Add(util.WrapClusterError(target.Name, err))
			continue
		}

		client, err := NewClient(target, m.opts, m.logger)
		if err != nil {
			m.logger.Error("failed to create client", "cluster", target.Name, "error", err)
			errs.Add(util.WrapClusterError(target.Name, err))
			continue
		}

		m.mu.Lock()
		if m.closed {
			m.mu.Unlock()
			return fmt.Errorf("manager is closed")
		}
		m.clients[target.Name] = client
		m.mu.Unlock()
	}

	if err := errs.ErrorOrNil(); err != nil {
		return fmt.Errorf("failed to connect to %d/%d clusters: %w", len(errs.Errors), len(targets), err)
	}
	m.logger.Debug("connected to clusters", "count", len(targets))
	return nil
}

// GetClient returns the client for a specific cluster
func (m *Manager) GetClient(name string) (*es.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, fmt.Errorf("manager is closed")
	}
	client, ok := m.clients[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q not connected", util.ErrClusterNotFound, name)
	}
	return client, nil
}

// GetAllClients returns the connected clients sorted by name
func (m *Manager) GetAllClients() []*es.Client {
	m.mu.RLock()
	defer m.mu.RUnlock()

	clients := make([]*es.Client, 0, len(m.clients))
	for _, client := range m.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].Name() < clients[j].Name() })
	return clients
}

// GetClientNames returns all connected cluster names, sorted
func (m *Manager) GetClientNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.clients))
	for name := range m.clients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of connected clusters
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// HealthCheck probes every connected cluster with GET / concurrently.
// Results are sorted by cluster name.
func (m *Manager) HealthCheck(ctx context.Context) []HealthStatus {
	clients := m.GetAllClients()
	results := make([]HealthStatus, len(clients))

	var g errgroup.Group
	if m.opts.Parallel > 0 {
		g.SetLimit(m.opts.Parallel)
	}
	for i, c := range clients {
		g.Go(func() error {
			results[i] = m.probe(ctx, c)
			return nil
		})
	}
	_ = g.Wait()

	healthy := 0
	for _, r := range results {
		if r.Healthy {
			healthy++
		}
	}
	m.logger.Debug("health checks completed", "total", len(results), "healthy", healthy)
	return results
}

func (m *Manager) probe(ctx context.Context, c *es.Client) HealthStatus {
	status := HealthStatus{ClusterName: c.Name()}
	if addrs := c.Addresses(); len(addrs) > 0 {
		status.URL = addrs[0]
	}
	if err := ctx.Err(); err != nil {
		status.Error = err
		return status
	}

	start := time.Now()
	info, err := c.Info(ctx)
	status.Latency = time.Since(start)
	if err != nil {
		m.logger.Warn("health check failed", "cluster", c.Name(), "error", err)
		status.Error = err
		return status
	}

	status.Healthy = true
	status.ServerName = info.ClusterName
	status.Version = info.Version.Number
	status.Distribution = info.Version.Distribution
	return status
}

// Close drops all clients
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.clients = make(map[string]*es.Client)
	m.closed = true
	m.logger.Debug("cluster manager closed")
}

// IsClosed returns true if the manager has been closed
func (m *Manager) IsClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}
