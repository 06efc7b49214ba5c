package cli

import (
	"bytes"
	"context"
	stdjson "encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aryankumar/esadmin/internal/es"
	"github.com/aryankumar/esadmin/internal/es/estest"
	"github.com/aryankumar/esadmin/internal/util"
	"github.com/aryankumar/esadmin/pkg/version"
)

// runCLI executes esadmin with a config file under dir and returns stdout
func runCLI(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	return runCLIWithInput(t, dir, "", args...)
}

func runCLIWithInput(t *testing.T, dir, input string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetIn(strings.NewReader(input))

	args = append(args, "--config", filepath.Join(dir, "config.yaml"), "--no-color")
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	closeLog()
	if err != nil {
		t.Logf("stderr:\n%s", stderr.String())
	}
	return stdout.String(), err
}

func decodeJSON(t *testing.T, data string, v interface{}) {
	t.Helper()
	if err := stdjson.Unmarshal([]byte(data), v); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, data)
	}
}

func TestGetIndexes(t *testing.T) {
	srv := estest.NewServer(t)
	srv.AddDocument("logs-a", "1", map[string]any{"msg": "hello"})
	srv.CreateIndex("logs-b", 1, 0)

	out, err := runCLI(t, t.TempDir(), "get", "indexes", "--url", srv.URL, "-o", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var names []string
	decodeJSON(t, out, &names)
	if len(names) != 2 || names[0] != "logs-a" || names[1] != "logs-b" {
		t.Errorf("indexes = %v, want [logs-a logs-b]", names)
	}

	ids := srv.OpaqueIDs()
	if ids[version.Get().OpaqueID()] == 0 || ids[""] != 0 {
		t.Errorf("requests by opaque id = %v", ids)
	}
}

func TestGetIndexesWithNames(t *testing.T) {
	srv := estest.NewServer(t)
	srv.CreateIndex("logs-a", 2, 0)
	srv.CreateIndex("logs-b", 1, 1)

	out, err := runCLI(t, t.TempDir(), "get", "indexes", "logs-a", "--url", srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "logs-a") || strings.Contains(out, "logs-b") {
		t.Errorf("expected only logs-a in output:\n%s", out)
	}
	if strings.Contains(out, "<cluster>") {
		t.Errorf("index info should not carry the cluster row:\n%s", out)
	}
}

func TestGetHealth(t *testing.T) {
	t.Run("table", func(t *testing.T) {
		srv := estest.NewServer(t)
		srv.CreateIndex("logs-a", 1, 0)

		out, err := runCLI(t, t.TempDir(), "get", "health", "--url", srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"INDEX", "HEALTH", "<cluster>", "logs-a", "green"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q:\n%s", want, out)
			}
		}
	})

	t.Run("retry budget exhausted", func(t *testing.T) {
		srv := estest.NewServer(t, estest.WithHealthTimeouts(10))

		_, err := runCLI(t, t.TempDir(), "get", "health", "--url", srv.URL, "--health-retries", "2", "--poll-interval", "1ms")
		if !errors.Is(err, util.ErrClusterUnavailable) {
			t.Fatalf("expected cluster unavailable, got %v", err)
		}
		if got := srv.HealthCalls(); got != 3 {
			t.Errorf("health calls = %d, want 3", got)
		}
	})

	t.Run("recovers within budget", func(t *testing.T) {
		srv := estest.NewServer(t, estest.WithHealthTimeouts(2))

		_, err := runCLI(t, t.TempDir(), "get", "health", "--url", srv.URL, "--health-retries", "2", "--poll-interval", "1ms")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := srv.HealthCalls(); got != 3 {
			t.Errorf("health calls = %d, want 3", got)
		}
	})
}

func TestTemplates(t *testing.T) {
	srv := estest.NewServer(t)
	dir := t.TempDir()

	path := filepath.Join(dir, "logs-template.json")
	body := `{"index_patterns":["logs-*"],"settings":{"number_of_shards":1}}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, dir, "put-template", "--template-name", "logs", "--template-json", path, "--url", srv.URL)
	if err != nil {
		t.Fatalf("put-template: %v", err)
	}
	if !strings.Contains(out, "acknowledged") {
		t.Errorf("expected acknowledged in output:\n%s", out)
	}
	if _, ok := srv.Template("logs"); !ok {
		t.Fatal("template was not stored")
	}

	out, err = runCLI(t, dir, "get", "templates", "log*", "--url", srv.URL, "-o", "json")
	if err != nil {
		t.Fatalf("get templates: %v", err)
	}
	var templates []es.IndexTemplate
	decodeJSON(t, out, &templates)
	if len(templates) != 1 || templates[0].Name != "logs" {
		t.Fatalf("templates = %+v", templates)
	}
	if len(templates[0].IndexPatterns) != 1 || templates[0].IndexPatterns[0] != "logs-*" {
		t.Errorf("patterns = %v", templates[0].IndexPatterns)
	}

	t.Run("invalid json", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		if err := os.WriteFile(bad, []byte(`{"index_patterns":`), 0644); err != nil {
			t.Fatal(err)
		}
		_, err := runCLI(t, dir, "put-template", "--template-name", "bad", "--template-json", bad, "--url", srv.URL)
		if !errors.Is(err, util.ErrInvalidInput) {
			t.Errorf("expected invalid input, got %v", err)
		}
	})
}

func TestCreateAndDeleteIndex(t *testing.T) {
	srv := estest.NewServer(t)
	dir := t.TempDir()

	if _, err := runCLI(t, dir, "create-index", "scratch", "--shards", "2", "--replicas", "0", "--url", srv.URL); err != nil {
		t.Fatalf("create-index: %v", err)
	}
	if !srv.HasIndex("scratch") {
		t.Fatal("index was not created")
	}

	if _, err := runCLI(t, dir, "create-index", "scratch", "--url", srv.URL); err == nil {
		t.Error("expected error creating an existing index")
	}

	srv.AddDocument("scratch", "1", map[string]any{"a": 1})
	out, err := runCLI(t, dir, "create-index", "scratch", "--recreate", "--url", srv.URL)
	if err != nil {
		t.Fatalf("recreate: %v", err)
	}
	if !strings.Contains(out, "recreated") {
		t.Errorf("expected recreated in output:\n%s", out)
	}
	if n := srv.DocumentCount("scratch"); n != 0 {
		t.Errorf("recreated index has %d documents", n)
	}

	t.Run("sizing conflicts with body", func(t *testing.T) {
		_, err := runCLI(t, dir, "create-index", "other", "--shards", "1", "--body", `{}`, "--url", srv.URL)
		if !errors.Is(err, util.ErrInvalidInput) {
			t.Errorf("expected invalid input, got %v", err)
		}
	})

	t.Run("declined confirmation", func(t *testing.T) {
		_, err := runCLIWithInput(t, dir, "n\n", "delete-index", "scratch", "--url", srv.URL)
		if !errors.Is(err, util.ErrCancelled) {
			t.Errorf("expected cancelled, got %v", err)
		}
		if !srv.HasIndex("scratch") {
			t.Error("index deleted without confirmation")
		}
	})

	t.Run("dry run", func(t *testing.T) {
		out, err := runCLI(t, dir, "delete-index", "scratch", "--dry-run", "--url", srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "would delete") || !srv.HasIndex("scratch") {
			t.Errorf("dry run output:\n%s", out)
		}
	})

	t.Run("confirmed", func(t *testing.T) {
		if _, err := runCLIWithInput(t, dir, "yes\n", "delete-index", "scratch", "--url", srv.URL); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if srv.HasIndex("scratch") {
			t.Error("index still exists")
		}
	})

	t.Run("missing index", func(t *testing.T) {
		_, err := runCLI(t, dir, "delete-index", "scratch", "-y", "--url", srv.URL)
		if !es.IsNotFound(err) {
			t.Errorf("expected not found, got %v", err)
		}
	})
}

func TestDocuments(t *testing.T) {
	srv := estest.NewServer(t)
	srv.CreateIndex("users", 1, 0)
	dir := t.TempDir()

	out, err := runCLI(t, dir, "put-doc", "users", "42", "--data", `{"name":"ada","level":"admin"}`, "--refresh", "--url", srv.URL)
	if err != nil {
		t.Fatalf("put-doc: %v", err)
	}
	if !strings.Contains(out, "users/42") || !strings.Contains(out, "created") {
		t.Errorf("put-doc output:\n%s", out)
	}

	out, err = runCLI(t, dir, "get", "doc", "users", "42", "--url", srv.URL, "-o", "json")
	if err != nil {
		t.Fatalf("get doc: %v", err)
	}
	var doc es.Document
	decodeJSON(t, out, &doc)
	if doc.ID != "42" || doc.Source["name"] != "ada" {
		t.Errorf("document = %+v", doc)
	}

	t.Run("missing id", func(t *testing.T) {
		_, err := runCLI(t, dir, "get", "doc", "users", "7", "--url", srv.URL)
		if err == nil || !strings.Contains(err.Error(), "document not found") {
			t.Errorf("expected document not found, got %v", err)
		}
	})

	t.Run("create refuses existing", func(t *testing.T) {
		_, err := runCLI(t, dir, "put-doc", "users", "42", "--data", `{"name":"bob"}`, "--create", "--url", srv.URL)
		if err == nil {
			t.Error("expected conflict error")
		}
	})

	t.Run("body required", func(t *testing.T) {
		_, err := runCLI(t, dir, "put-doc", "users", "43", "--url", srv.URL)
		if !errors.Is(err, util.ErrInvalidInput) {
			t.Errorf("expected invalid input, got %v", err)
		}
	})

	t.Run("search", func(t *testing.T) {
		out, err := runCLI(t, dir, "search", "users", "--query", `{"term":{"level":"admin"}}`, "--url", srv.URL, "-o", "json")
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		var res es.SearchResult
		decodeJSON(t, out, &res)
		if res.Total != 1 || len(res.Hits) != 1 || res.Hits[0].ID != "42" {
			t.Errorf("search result = %+v", res)
		}
	})

	t.Run("fieldcaps", func(t *testing.T) {
		out, err := runCLI(t, dir, "get", "fieldcaps", "users", "--user-defined", "--url", srv.URL)
		if err != nil {
			t.Fatalf("fieldcaps: %v", err)
		}
		if !strings.Contains(out, "name") || strings.Contains(out, "_source") {
			t.Errorf("fieldcaps output:\n%s", out)
		}
	})
}

func TestBulk(t *testing.T) {
	srv := estest.NewServer(t)
	srv.CreateIndex("users", 1, 0)
	dir := t.TempDir()

	data := filepath.Join(dir, "data")
	if err := os.MkdirAll(filepath.Join(data, "nested"), 0755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"a.ndjson":        "{\"uid\":\"u1\",\"name\":\"ada\"}\n{\"uid\":\"u2\",\"name\":\"bob\"}\n",
		"b.json":          `[{"uid":3,"name":"cy"}]`,
		"notes.txt":       "ignored",
		"nested/c.ndjson": "{\"uid\":\"u4\",\"name\":\"dee\"}\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(data, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	out, err := runCLI(t, dir, "bulk", "users", "-f", data, "--id-field", "uid", "--refresh", "--url", srv.URL, "-o", "json")
	if err != nil {
		t.Fatalf("bulk: %v", err)
	}
	var stats struct {
		Index   string `json:"index"`
		Indexed uint64 `json:"indexed"`
		Failed  uint64 `json:"failed"`
	}
	decodeJSON(t, out, &stats)
	if stats.Index != "users" || stats.Indexed != 3 || stats.Failed != 0 {
		t.Errorf("stats = %+v", stats)
	}
	if _, ok := srv.Document("users", "3"); !ok {
		t.Error("expected numeric id 3 to be stored")
	}
	if _, ok := srv.Document("users", "u4"); ok {
		t.Error("nested file loaded without -R")
	}

	if _, err := runCLI(t, dir, "bulk", "users", "-f", data, "-R", "--id-field", "uid", "--url", srv.URL); err != nil {
		t.Fatalf("recursive bulk: %v", err)
	}
	if _, ok := srv.Document("users", "u4"); !ok {
		t.Error("expected nested document with -R")
	}
}

func TestReindex(t *testing.T) {
	t.Run("waits for the task", func(t *testing.T) {
		srv := estest.NewServer(t, estest.WithTaskListings(2))
		srv.AddDocument("logs-a", "doc-1", map[string]any{"msg": "hello"})
		srv.CreateIndex("logs-b", 1, 0)

		out, err := runCLI(t, t.TempDir(), "reindex", "--source", "logs-a", "--destination", "logs-b",
			"--poll-interval", "1ms", "--url", srv.URL, "-o", "json")
		if err != nil {
			t.Fatalf("reindex: %v", err)
		}

		var ref struct {
			Task   string `json:"task"`
			Status string `json:"status"`
		}
		decodeJSON(t, out, &ref)
		if ref.Status != "completed" || !strings.HasPrefix(ref.Task, estest.NodeID+":") {
			t.Errorf("result = %+v", ref)
		}
		if got := srv.TaskListCalls(); got != 3 {
			t.Errorf("task list calls = %d, want 3", got)
		}
		if _, ok := srv.Document("logs-b", "doc-1"); !ok || srv.DocumentCount("logs-b") != 1 {
			t.Errorf("destination has %d documents", srv.DocumentCount("logs-b"))
		}
		if q := srv.ReindexQueries(); len(q) != 1 || q[0].Get("refresh") != "true" {
			t.Errorf("reindex query = %v, want refresh=true", q)
		}
	})

	t.Run("refresh opt out", func(t *testing.T) {
		srv := estest.NewServer(t)
		srv.AddDocument("logs-a", "doc-1", map[string]any{"msg": "hello"})

		if _, err := runCLI(t, t.TempDir(), "reindex", "--source", "logs-a", "--destination", "logs-b",
			"--refresh=false", "--no-wait", "--url", srv.URL); err != nil {
			t.Fatalf("reindex: %v", err)
		}
		if q := srv.ReindexQueries(); len(q) != 1 || q[0].Get("refresh") != "false" {
			t.Errorf("reindex query = %v, want refresh=false", q)
		}
	})

	t.Run("cancelled wait keeps the task id", func(t *testing.T) {
		srv := estest.NewServer(t, estest.WithTaskListings(1000000))
		srv.AddDocument("logs-a", "doc-1", map[string]any{"msg": "hello"})

		_, err := runCLI(t, t.TempDir(), "reindex", "--source", "logs-a", "--destination", "logs-b",
			"--poll-interval", "5ms", "--timeout", "100ms", "--url", srv.URL)
		if !errors.Is(err, util.ErrCancelled) {
			t.Fatalf("expected cancellation, got %v", err)
		}
		if !strings.Contains(err.Error(), estest.NodeID+":") {
			t.Errorf("error does not name the task: %v", err)
		}
	})

	t.Run("no wait with script", func(t *testing.T) {
		srv := estest.NewServer(t, estest.WithTaskListings(5))
		srv.AddDocument("logs-a", "doc-1", map[string]any{"n": 1})

		out, err := runCLI(t, t.TempDir(), "reindex", "--source", "logs-a", "--destination", "logs-b",
			"--script", "ctx._source.n *= params.factor", "--script-param", "factor=2",
			"--no-wait", "--url", srv.URL)
		if err != nil {
			t.Fatalf("reindex: %v", err)
		}
		if !strings.Contains(out, "submitted") {
			t.Errorf("expected submitted in output:\n%s", out)
		}
		if srv.TaskListCalls() != 0 {
			t.Error("--no-wait polled the task list")
		}

		reqs := srv.Reindexes()
		if len(reqs) != 1 {
			t.Fatalf("reindex requests = %d", len(reqs))
		}
		script, _ := reqs[0]["script"].(map[string]any)
		params, _ := script["params"].(map[string]any)
		if script["lang"] != "painless" || params["factor"] != float64(2) {
			t.Errorf("script = %v", script)
		}
	})

	t.Run("validation", func(t *testing.T) {
		tests := [][]string{
			{"reindex", "--source", "a", "--destination", "a"},
			{"reindex", "--source", "a", "--destination", "b", "--script-param", "x=1"},
			{"reindex", "--source", "a", "--destination", "b", "--max-docs", "-1"},
		}
		for _, args := range tests {
			_, err := runCLI(t, t.TempDir(), append(args, "--url", "http://127.0.0.1:1")...)
			if !errors.Is(err, util.ErrInvalidInput) {
				t.Errorf("%v: expected invalid input, got %v", args, err)
			}
		}
	})
}

func TestWaitTask(t *testing.T) {
	srv := estest.NewServer(t, estest.WithBackgroundTask(7, "cluster:monitor/nodes/stats"))

	out, err := runCLI(t, t.TempDir(), "wait-task", estest.NodeID+":99", "--url", srv.URL, "-o", "json")
	if err != nil {
		t.Fatalf("wait-task: %v", err)
	}
	if !strings.Contains(out, `"completed"`) {
		t.Errorf("output:\n%s", out)
	}
	if got := srv.TaskListCalls(); got != 1 {
		t.Errorf("task list calls = %d, want 1", got)
	}

	_, err = runCLI(t, t.TempDir(), "wait-task", "not-a-task", "--url", srv.URL)
	if !errors.Is(err, util.ErrInvalidInput) {
		t.Errorf("expected invalid input, got %v", err)
	}

	out, err = runCLI(t, t.TempDir(), "get", "tasks", "--url", srv.URL)
	if err != nil {
		t.Fatalf("get tasks: %v", err)
	}
	if !strings.Contains(out, estest.NodeID+":7") {
		t.Errorf("expected background task in output:\n%s", out)
	}
}

func TestClusterCommands(t *testing.T) {
	dir := t.TempDir()
	srvA := estest.NewServer(t)
	srvA.CreateIndex("only-a", 1, 0)
	srvB := estest.NewServer(t, estest.WithEngine(es.EngineOpenSearch))
	srvB.CreateIndex("only-b", 1, 0)

	if _, err := runCLI(t, dir, "cluster", "add", "alpha", srvA.URL, "--label", "env=dev"); err != nil {
		t.Fatalf("add alpha: %v", err)
	}
	if _, err := runCLI(t, dir, "cluster", "add", "beta", srvB.URL, "--engine", "opensearch", "--label", "env=prod"); err != nil {
		t.Fatalf("add beta: %v", err)
	}

	t.Run("duplicate", func(t *testing.T) {
		_, err := runCLI(t, dir, "cluster", "add", "alpha", srvA.URL)
		if !errors.Is(err, util.ErrAlreadyExists) {
			t.Errorf("expected already exists, got %v", err)
		}
	})

	t.Run("list", func(t *testing.T) {
		out, err := runCLI(t, dir, "cluster", "list", "-o", "json")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		var list struct {
			Clusters []struct {
				Name    string `json:"name"`
				Current bool   `json:"current"`
				Engine  string `json:"engine"`
			} `json:"clusters"`
		}
		decodeJSON(t, out, &list)
		if len(list.Clusters) != 2 {
			t.Fatalf("clusters = %+v", list.Clusters)
		}
		// first added cluster becomes current and is listed first
		if list.Clusters[0].Name != "alpha" || !list.Clusters[0].Current {
			t.Errorf("first cluster = %+v", list.Clusters[0])
		}
		if list.Clusters[1].Engine != "opensearch" {
			t.Errorf("beta engine = %q", list.Clusters[1].Engine)
		}
	})

	t.Run("current cluster is the default target", func(t *testing.T) {
		out, err := runCLI(t, dir, "get", "indexes", "-o", "json")
		if err != nil {
			t.Fatalf("get indexes: %v", err)
		}
		if !strings.Contains(out, "only-a") || strings.Contains(out, "only-b") {
			t.Errorf("output:\n%s", out)
		}
	})

	t.Run("all clusters", func(t *testing.T) {
		out, err := runCLI(t, dir, "get", "indexes", "--clusters", "all", "-o", "json")
		if err != nil {
			t.Fatalf("get indexes: %v", err)
		}
		var docs []struct {
			Cluster string   `json:"cluster"`
			Status  string   `json:"status"`
			Data    []string `json:"data"`
		}
		decodeJSON(t, out, &docs)
		if len(docs) != 2 || docs[0].Cluster != "alpha" || docs[1].Cluster != "beta" {
			t.Fatalf("results = %+v", docs)
		}
		if docs[1].Status != "success" || len(docs[1].Data) != 1 || docs[1].Data[0] != "only-b" {
			t.Errorf("beta result = %+v", docs[1])
		}
	})

	t.Run("selector", func(t *testing.T) {
		out, err := runCLI(t, dir, "get", "indexes", "-l", "env=prod")
		if err != nil {
			t.Fatalf("get indexes: %v", err)
		}
		if !strings.Contains(out, "only-b") || strings.Contains(out, "only-a") {
			t.Errorf("output:\n%s", out)
		}
	})

	t.Run("ping", func(t *testing.T) {
		out, err := runCLI(t, dir, "cluster", "ping", "--clusters", "all")
		if err != nil {
			t.Fatalf("ping: %v", err)
		}
		for _, want := range []string{"alpha", "beta", "opensearch 2.11.0", "7.17.10"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output:\n%s", want, out)
			}
		}
	})

	t.Run("use and remove", func(t *testing.T) {
		if _, err := runCLI(t, dir, "cluster", "use", "beta"); err != nil {
			t.Fatalf("use: %v", err)
		}
		if _, err := runCLI(t, dir, "cluster", "use", "gamma"); !errors.Is(err, util.ErrClusterNotFound) {
			t.Errorf("expected cluster not found, got %v", err)
		}

		out, err := runCLI(t, dir, "get", "indexes")
		if err != nil {
			t.Fatalf("get indexes: %v", err)
		}
		if !strings.Contains(out, "only-b") {
			t.Errorf("expected beta to be current:\n%s", out)
		}

		if _, err := runCLI(t, dir, "cluster", "remove", "beta"); err != nil {
			t.Fatalf("remove: %v", err)
		}
		if _, err := runCLI(t, dir, "cluster", "remove", "beta"); !errors.Is(err, util.ErrClusterNotFound) {
			t.Errorf("expected cluster not found, got %v", err)
		}
	})
}
