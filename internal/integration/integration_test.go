package integration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/aryankumar/esadmin/internal/cluster"
	"github.com/aryankumar/esadmin/internal/config"
	"github.com/aryankumar/esadmin/internal/es"
	"github.com/aryankumar/esadmin/internal/es/estest"
	"github.com/aryankumar/esadmin/internal/executor"
	"github.com/aryankumar/esadmin/internal/ops"
	"github.com/aryankumar/esadmin/internal/poll"
	"github.com/aryankumar/esadmin/internal/util"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// writeConfig saves a config file naming one cluster per URL
func writeConfig(t *testing.T, urls map[string]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	mgr := config.NewManager(path)
	if _, err := mgr.Load(); err != nil {
		t.Fatalf("failed to load empty config: %v", err)
	}
	for name, u := range urls {
		mgr.SetClusterConfig(name, config.ClusterConfig{URL: u, Labels: map[string]string{"env": "test"}})
	}
	if err := mgr.Save(); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}
	return path
}

// connectAll loads path, resolves every enabled cluster and builds an Admin per client
func connectAll(t *testing.T, ctx context.Context, path string) (*cluster.Manager, map[string]*ops.Admin) {
	t.Helper()
	logger := testLogger()

	mgr := config.NewManager(path)
	if _, err := mgr.Load(); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	targets, err := mgr.ResolveTargets(config.TargetOptions{Clusters: []string{"all"}})
	if err != nil {
		t.Fatalf("failed to resolve targets: %v", err)
	}

	manager := cluster.NewManager(cluster.Options{Parallel: 2}, logger)
	if err := manager.Connect(ctx, targets); err != nil {
		t.Fatalf("failed to connect to clusters: %v", err)
	}
	t.Cleanup(manager.Close)

	admins := make(map[string]*ops.Admin, manager.Count())
	for _, client := range manager.GetAllClients() {
		waiter := poll.New(client, poll.WithInterval(time.Millisecond), poll.WithLogger(logger))
		admins[client.Name()] = ops.New(client, ops.WithWaiter(waiter), ops.WithLogger(logger))
	}
	return manager, admins
}

// TestFullWorkflow runs a waited reindex on three clusters from config loading to results
func TestFullWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	servers := map[string]*estest.Server{}
	urls := map[string]string{}
	for i := 1; i <= 3; i++ {
		name := fmt.Sprintf("cluster-%d", i)
		srv := estest.NewServer(t, estest.WithTaskListings(i))
		srv.AddDocument("logs-a", "1", map[string]any{"cluster": name})
		srv.AddDocument("logs-a", "2", map[string]any{"cluster": name})
		servers[name] = srv
		urls[name] = srv.URL
	}
	path := writeConfig(t, urls)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	manager, admins := connectAll(t, ctx, path)
	if manager.Count() != 3 {
		t.Fatalf("expected 3 connected clusters, got %d", manager.Count())
	}

	pool := executor.NewPool(3, testLogger())
	for name, admin := range admins {
		err := pool.Submit(executor.Task{
			ClusterName: name,
			Execute: func(ctx context.Context) (interface{}, error) {
				return admin.Reindex(ctx, es.ReindexRequest{Source: []string{"logs-a"}, Destination: "logs-b"})
			},
		})
		if err != nil {
			t.Fatalf("failed to submit task: %v", err)
		}
	}

	results := pool.Execute(ctx)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if n := executor.CountSuccessful(results); n != 3 {
		t.Fatalf("expected 3 successful results, got %d: %v", n, executor.Err(results))
	}

	for _, r := range results {
		if r.Duration <= 0 {
			t.Errorf("expected positive duration, got %v", r.Duration)
		}
		srv := servers[r.ClusterName]
		if got := srv.DocumentCount("logs-b"); got != 2 {
			t.Errorf("%s: destination has %d documents, want 2", r.ClusterName, got)
		}
	}

	// cluster-N keeps its task for N listings, then one more poll sees it gone
	for i := 1; i <= 3; i++ {
		name := fmt.Sprintf("cluster-%d", i)
		if got := servers[name].TaskListCalls(); got != i+1 {
			t.Errorf("%s: task list calls = %d, want %d", name, got, i+1)
		}
	}
}

// TestUnreachableClusterIsolated checks that one dead cluster fails alone
func TestUnreachableClusterIsolated(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	srv := estest.NewServer(t)
	srv.CreateIndex("logs-a", 1, 0)
	path := writeConfig(t, map[string]string{
		"alive": srv.URL,
		"dead":  "http://127.0.0.1:1",
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	manager, admins := connectAll(t, ctx, path)

	statuses := manager.HealthCheck(ctx)
	if len(statuses) != 2 {
		t.Fatalf("expected 2 status results, got %d", len(statuses))
	}
	for _, s := range statuses {
		switch s.ClusterName {
		case "alive":
			if !s.Healthy || s.Version == "" {
				t.Errorf("alive cluster status = %+v", s)
			}
		case "dead":
			if s.Healthy || !es.IsTransport(s.Error) {
				t.Errorf("dead cluster status = %+v", s)
			}
		}
	}

	pool := executor.NewPool(2, testLogger())
	for name, admin := range admins {
		_ = pool.Submit(executor.Task{
			ClusterName: name,
			Execute: func(ctx context.Context) (interface{}, error) {
				return admin.ListIndexes(ctx)
			},
		})
	}
	results := pool.Execute(ctx)

	failed := executor.FilterFailed(results)
	if len(failed) != 1 || failed[0].ClusterName != "dead" {
		t.Fatalf("failed results = %+v", failed)
	}
	// a transport error is not a server timeout and is not retried
	if errors.Is(failed[0].Error, util.ErrClusterUnavailable) {
		t.Errorf("transport failure reported as unavailable: %v", failed[0].Error)
	}
	if executor.Err(results) == nil {
		t.Error("expected aggregate error")
	}
	if srv.HealthCalls() != 1 {
		t.Errorf("alive health calls = %d, want 1", srv.HealthCalls())
	}
}

// TestContextCancellation checks that a waited reindex stops when the context ends
func TestContextCancellation(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	srv := estest.NewServer(t, estest.WithTaskListings(1<<20))
	srv.AddDocument("logs-a", "1", map[string]any{"msg": "slow"})
	path := writeConfig(t, map[string]string{"slow": srv.URL})

	_, admins := connectAll(t, context.Background(), path)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	id, err := admins["slow"].Reindex(ctx, es.ReindexRequest{Source: []string{"logs-a"}, Destination: "logs-b"})
	if !errors.Is(err, util.ErrCancelled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if id.Node != estest.NodeID {
		t.Errorf("expected the submitted task id to be returned, got %v", id)
	}
	if srv.TaskListCalls() == 0 {
		t.Error("expected at least one task poll")
	}
}

// TestExecutorProgressReporting tests progress callbacks across clusters
func TestExecutorProgressReporting(t *testing.T) {
	urls := map[string]string{}
	for i := 0; i < 4; i++ {
		srv := estest.NewServer(t)
		urls[fmt.Sprintf("cluster-%d", i)] = srv.URL
	}
	path := writeConfig(t, urls)

	ctx := context.Background()
	_, admins := connectAll(t, ctx, path)

	pool := executor.NewPool(2, testLogger())
	for name, admin := range admins {
		_ = pool.Submit(executor.Task{
			ClusterName: name,
			Execute: func(ctx context.Context) (interface{}, error) {
				return admin.Health(ctx, 0)
			},
		})
	}

	var mu sync.Mutex
	var calls []int
	results := pool.ExecuteWithProgress(ctx, func(completed, total int) {
		mu.Lock()
		defer mu.Unlock()
		if total != 4 {
			t.Errorf("total = %d, want 4", total)
		}
		calls = append(calls, completed)
	})

	if executor.CountSuccessful(results) != 4 {
		t.Fatalf("expected 4 successful results: %v", executor.Err(results))
	}
	mu.Lock()
	defer mu.Unlock()
	sort.Ints(calls)
	if len(calls) != 4 || calls[0] != 1 || calls[3] != 4 {
		t.Errorf("progress calls = %v", calls)
	}
}

// TestRaceConditions exercises the manager from many goroutines while it closes
func TestRaceConditions(t *testing.T) {
	srv := estest.NewServer(t)
	path := writeConfig(t, map[string]string{"a": srv.URL, "b": srv.URL})

	ctx := context.Background()
	manager, _ := connectAll(t, ctx, path)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			switch i % 4 {
			case 0:
				_, _ = manager.GetClient("a")
			case 1:
				_ = manager.GetClientNames()
			case 2:
				_ = manager.HealthCheck(ctx)
			case 3:
				_ = manager.Count()
			}
		}(i)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		manager.Close()
	}()
	wg.Wait()

	if !manager.IsClosed() {
		t.Error("expected manager to be closed")
	}
	manager.Close()
	if _, err := manager.GetClient("a"); err == nil {
		t.Error("expected error from closed manager")
	}
}
