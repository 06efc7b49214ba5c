// Package estest provides an in-memory emulation of the Elasticsearch REST API
// for tests. It understands the subset of endpoints esadmin calls and can be
// scripted to time out health requests or keep reindex tasks running for a
// number of task listings.
package estest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/aryankumar/esadmin/internal/es"
)

// NodeID is the id of the single emulated node
const NodeID = "node-1"

const reindexAction = "indices:data/write/reindex"

// Option configures a Server
type Option func(*Server)

// WithEngine selects which product the server claims to be
func WithEngine(engine es.Engine) Option {
	return func(s *Server) { s.engine = engine }
}

// WithHealthTimeouts makes the first n cluster health requests report timed_out
func WithHealthTimeouts(n int) Option {
	return func(s *Server) { s.healthTimeouts = n }
}

// WithTaskListings keeps each submitted reindex task in the task list for n listings.
// Zero completes reindexes on submission.
func WithTaskListings(n int) Option {
	return func(s *Server) { s.taskListings = n }
}

// WithBackgroundTask adds a task that is listed forever
func WithBackgroundTask(number int64, action string) Option {
	return func(s *Server) {
		s.background = append(s.background, es.TaskInfo{
			ID:     es.TaskID{Node: NodeID, Number: number},
			Type:   "transport",
			Action: action,
		})
	}
}

type index struct {
	shards   int
	replicas int
	ids      []string
	docs     map[string]map[string]any
	versions map[string]int64
}

type runningTask struct {
	info      es.TaskInfo
	remaining int
	finish    func() map[string]any
}

// Server is an httptest server emulating one cluster
type Server struct {
	*httptest.Server

	engine         es.Engine
	healthTimeouts int
	taskListings   int
	background     []es.TaskInfo

	mu          sync.Mutex
	indexes     map[string]*index
	templates   map[string]map[string]any
	running     []*runningTask
	completed   map[string]map[string]any
	nextTask    int64
	nextDocID   int
	healthCalls int
	listCalls   int
	reindexes   []map[string]any
	reindexArgs []url.Values
	opaqueIDs   map[string]int
}

// NewServer starts a server and registers its shutdown with t
func NewServer(t testing.TB, opts ...Option) *Server {
	t.Helper()
	s := &Server{
		engine:    es.EngineElasticsearch,
		indexes:   make(map[string]*index),
		templates: make(map[string]map[string]any),
		completed: make(map[string]map[string]any),
		opaqueIDs: make(map[string]int),
		nextTask:  100,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// NewClient returns a client for this server using the server's engine
func (s *Server) NewClient(t testing.TB) *es.Client {
	t.Helper()
	client, err := es.New(es.Config{
		Name:      "test",
		Addresses: []string{s.URL},
		Engine:    s.engine,
	})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return client
}

// CreateIndex seeds an index
func (s *Server) CreateIndex(name string, shards, replicas int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createIndexLocked(name, shards, replicas)
}

// AddDocument seeds a document, creating the index when needed. The source
// is stored as it would arrive over the wire, so Go ints become float64.
func (s *Server) AddDocument(indexName, id string, source map[string]any) {
	if data, err := json.Marshal(source); err == nil {
		var wire map[string]any
		if json.Unmarshal(data, &wire) == nil {
			source = wire
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.indexes[indexName]
	if !ok {
		idx = s.createIndexLocked(indexName, 1, 0)
	}
	idx.put(id, source)
}

// DocumentCount returns the number of documents stored in an index
func (s *Server) DocumentCount(indexName string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx, ok := s.indexes[indexName]; ok {
		return len(idx.ids)
	}
	return 0
}

// Document returns a stored document source
func (s *Server) Document(indexName, id string) (map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx, ok := s.indexes[indexName]; ok {
		doc, found := idx.docs[id]
		return doc, found
	}
	return nil, false
}

// HasIndex reports whether the index exists
func (s *Server) HasIndex(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.indexes[name]
	return ok
}

// Template returns a stored template body
func (s *Server) Template(name string) (map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.templates[name]
	return t, ok
}

// HealthCalls returns the number of cluster health requests served
func (s *Server) HealthCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.healthCalls
}

// TaskListCalls returns the number of task list requests served
func (s *Server) TaskListCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}

// OpaqueIDs counts requests by their X-Opaque-Id header. Requests without
// the header are counted under "".
func (s *Server) OpaqueIDs() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.opaqueIDs))
	for id, n := range s.opaqueIDs {
		out[id] = n
	}
	return out
}

// Reindexes returns the bodies of all reindex requests received
func (s *Server) Reindexes() []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, len(s.reindexes))
	copy(out, s.reindexes)
	return out
}

// ReindexQueries returns the query strings of all reindex requests received
func (s *Server) ReindexQueries() []url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]url.Values, len(s.reindexArgs))
	copy(out, s.reindexArgs)
	return out
}

func (s *Server) createIndexLocked(name string, shards, replicas int) *index {
	if shards <= 0 {
		shards = 1
	}
	idx := &index{
		shards:   shards,
		replicas: replicas,
		docs:     make(map[string]map[string]any),
		versions: make(map[string]int64),
	}
	s.indexes[name] = idx
	return idx
}

func (idx *index) put(id string, source map[string]any) int64 {
	if _, ok := idx.docs[id]; !ok {
		idx.ids = append(idx.ids, id)
	}
	idx.docs[id] = source
	idx.versions[id]++
	return idx.versions[id]
}

func (idx *index) status() es.HealthStatus {
	if idx.replicas > 0 {
		return es.StatusYellow
	}
	return es.StatusGreen
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.opaqueIDs[r.Header.Get(es.OpaqueIDHeader)]++
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if s.engine != es.EngineOpenSearch {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
	}

	path := strings.Trim(r.URL.Path, "/")
	if path == "" {
		s.info(w)
		return
	}
	segs := strings.Split(path, "/")

	s.mu.Lock()
	defer s.mu.Unlock()

	switch segs[0] {
	case "_cluster":
		if len(segs) >= 2 && segs[1] == "health" {
			var names []string
			if len(segs) > 2 {
				names = splitNames(segs[2])
			}
			s.health(w, r, names)
			return
		}
	case "_tasks":
		if len(segs) == 1 {
			s.listTasks(w, r)
			return
		}
		s.getTask(w, segs[1])
		return
	case "_template":
		name := ""
		if len(segs) > 1 {
			name = segs[1]
		}
		s.template(w, r, name)
		return
	case "_reindex":
		s.reindex(w, r)
		return
	case "_bulk":
		s.bulk(w, r, "")
		return
	case "_search":
		s.search(w, r, nil)
		return
	case "_count":
		s.count(w, nil)
		return
	case "_field_caps":
		s.fieldCaps(w, nil)
		return
	default:
		names := splitNames(segs[0])
		if len(segs) == 1 {
			s.indexOp(w, r, segs[0])
			return
		}
		switch segs[1] {
		case "_doc", "_create":
			if len(segs) == 3 {
				s.doc(w, r, segs[0], segs[2])
				return
			}
			if r.Method == http.MethodPost {
				s.doc(w, r, segs[0], "")
				return
			}
		case "_search":
			s.search(w, r, names)
			return
		case "_count":
			s.count(w, names)
			return
		case "_field_caps":
			s.fieldCaps(w, names)
			return
		case "_bulk":
			s.bulk(w, r, segs[0])
			return
		}
	}
	writeError(w, http.StatusBadRequest, "illegal_argument_exception", "unsupported path "+r.URL.Path)
}

func (s *Server) info(w http.ResponseWriter) {
	body := map[string]any{
		"name":         NodeID,
		"cluster_name": "estest",
		"cluster_uuid": "estest-uuid",
		"tagline":      "You Know, for Search",
	}
	if s.engine == es.EngineOpenSearch {
		body["version"] = map[string]any{"number": "2.11.0", "distribution": "opensearch"}
		body["tagline"] = "The OpenSearch Project: https://opensearch.org/"
	} else {
		body["version"] = map[string]any{"number": "7.17.10", "build_flavor": "default"}
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request, names []string) {
	s.healthCalls++

	resolved := s.resolve(names)
	status := es.StatusGreen
	unassigned, active := 0, 0
	indices := make(map[string]any, len(resolved))
	for _, name := range resolved {
		idx := s.indexes[name]
		if idx.status().Rank() < status.Rank() {
			status = idx.status()
		}
		u := idx.shards * idx.replicas
		unassigned += u
		active += idx.shards
		indices[name] = map[string]any{
			"status":                idx.status(),
			"number_of_shards":      idx.shards,
			"number_of_replicas":    idx.replicas,
			"active_primary_shards": idx.shards,
			"active_shards":         idx.shards,
			"unassigned_shards":     u,
		}
	}

	timedOut := s.healthCalls <= s.healthTimeouts
	if want := es.HealthStatus(r.URL.Query().Get("wait_for_status")); want != "" && !status.AtLeast(want) {
		timedOut = true
	}

	body := map[string]any{
		"cluster_name":          "estest",
		"status":                status,
		"timed_out":             timedOut,
		"number_of_nodes":       1,
		"number_of_data_nodes":  1,
		"active_primary_shards": active,
		"active_shards":         active,
		"unassigned_shards":     unassigned,
	}
	if r.URL.Query().Get("level") == es.LevelIndices || r.URL.Query().Get("level") == es.LevelShards {
		body["indices"] = indices
	}

	code := http.StatusOK
	if timedOut {
		code = http.StatusRequestTimeout
	}
	writeJSON(w, code, body)
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	s.listCalls++
	actions := splitNames(r.URL.Query().Get("actions"))

	tasks := make(map[string]any)
	add := func(t es.TaskInfo) {
		if !matchesAny(actions, t.Action) {
			return
		}
		tasks[t.ID.String()] = map[string]any{
			"node":                  t.ID.Node,
			"id":                    t.ID.Number,
			"type":                  t.Type,
			"action":                t.Action,
			"description":           t.Description,
			"start_time_in_millis":  int64(1700000000000),
			"running_time_in_nanos": int64(1000000),
			"cancellable":           true,
		}
	}
	for _, t := range s.background {
		add(t)
	}

	still := s.running[:0]
	for _, rt := range s.running {
		add(rt.info)
		rt.remaining--
		if rt.remaining > 0 {
			still = append(still, rt)
			continue
		}
		s.completed[rt.info.ID.String()] = rt.finish()
	}
	s.running = still

	nodes := map[string]any{}
	if len(tasks) > 0 {
		nodes[NodeID] = map[string]any{"name": NodeID, "tasks": tasks}
	}
	writeJSON(w, http.StatusOK, map[string]any{"nodes": nodes})
}

func (s *Server) getTask(w http.ResponseWriter, id string) {
	for _, rt := range s.running {
		if rt.info.ID.String() == id {
			writeJSON(w, http.StatusOK, map[string]any{
				"completed": false,
				"task":      map[string]any{"node": rt.info.ID.Node, "id": rt.info.ID.Number, "action": rt.info.Action},
			})
			return
		}
	}
	if res, ok := s.completed[id]; ok {
		parsed, _ := es.ParseTaskID(id)
		writeJSON(w, http.StatusOK, map[string]any{
			"completed": true,
			"task":      map[string]any{"node": parsed.Node, "id": parsed.Number, "action": reindexAction},
			"response":  res,
		})
		return
	}
	writeError(w, http.StatusNotFound, "resource_not_found_exception", "task ["+id+"] isn't running and hasn't stored its results")
}

func (s *Server) template(w http.ResponseWriter, r *http.Request, name string) {
	switch r.Method {
	case http.MethodPut, http.MethodPost:
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "parse_exception", err.Error())
			return
		}
		if _, ok := body["index_patterns"]; !ok {
			writeError(w, http.StatusBadRequest, "action_request_validation_exception", "Validation Failed: 1: index patterns are missing;")
			return
		}
		s.templates[name] = body
		writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true})
	case http.MethodGet:
		out := make(map[string]any)
		for n, t := range s.templates {
			if name == "" || matchName(name, n) {
				entry := map[string]any{"order": 0, "aliases": map[string]any{}}
				for k, v := range t {
					entry[k] = v
				}
				out[n] = entry
			}
		}
		if len(out) == 0 && name != "" {
			writeJSON(w, http.StatusNotFound, map[string]any{})
			return
		}
		writeJSON(w, http.StatusOK, out)
	case http.MethodDelete:
		delete(s.templates, name)
		writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", r.Method)
	}
}

func (s *Server) indexOp(w http.ResponseWriter, r *http.Request, name string) {
	switch r.Method {
	case http.MethodHead:
		if _, ok := s.indexes[name]; ok {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	case http.MethodPut:
		if _, ok := s.indexes[name]; ok {
			writeError(w, http.StatusBadRequest, "resource_already_exists_exception", "index ["+name+"] already exists")
			return
		}
		shards, replicas := 1, 1
		var body struct {
			Settings map[string]any `json:"settings"`
		}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			if err := json.Unmarshal(data, &body); err != nil {
				writeError(w, http.StatusBadRequest, "parse_exception", err.Error())
				return
			}
		}
		settings := body.Settings
		if nested, ok := settings["index"].(map[string]any); ok {
			settings = nested
		}
		if v, ok := intSetting(settings, "number_of_shards"); ok {
			shards = v
		}
		if v, ok := intSetting(settings, "number_of_replicas"); ok {
			replicas = v
		}
		s.createIndexLocked(name, shards, replicas)
		writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true, "shards_acknowledged": true, "index": name})
	case http.MethodDelete:
		names := splitNames(name)
		for _, n := range names {
			if _, ok := s.indexes[n]; !ok {
				writeIndexNotFound(w, n)
				return
			}
		}
		for _, n := range names {
			delete(s.indexes, n)
		}
		writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", r.Method)
	}
}

func (s *Server) doc(w http.ResponseWriter, r *http.Request, indexName, id string) {
	idx, ok := s.indexes[indexName]
	if r.Method == http.MethodGet {
		if !ok {
			writeIndexNotFound(w, indexName)
			return
		}
		source, found := idx.docs[id]
		if !found {
			writeJSON(w, http.StatusNotFound, map[string]any{"_index": indexName, "_type": "_doc", "_id": id, "found": false})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"_index": indexName, "_type": "_doc", "_id": id,
			"_version": idx.versions[id], "found": true, "_source": source,
		})
		return
	}

	var source map[string]any
	if err := json.NewDecoder(r.Body).Decode(&source); err != nil {
		writeError(w, http.StatusBadRequest, "mapper_parsing_exception", "failed to parse: "+err.Error())
		return
	}
	if !ok {
		idx = s.createIndexLocked(indexName, 1, 1)
	}
	if id == "" {
		s.nextDocID++
		id = "auto-" + strconv.Itoa(s.nextDocID)
	}
	_, exists := idx.docs[id]
	if exists && (r.URL.Query().Get("op_type") == "create" || strings.Contains(r.URL.Path, "/_create/")) {
		writeError(w, http.StatusConflict, "version_conflict_engine_exception", "["+id+"]: version conflict, document already exists")
		return
	}
	version := idx.put(id, source)
	result, code := "created", http.StatusCreated
	if exists {
		result, code = "updated", http.StatusOK
	}
	writeJSON(w, code, map[string]any{"_index": indexName, "_type": "_doc", "_id": id, "_version": version, "result": result})
}

func (s *Server) search(w http.ResponseWriter, r *http.Request, names []string) {
	var body struct {
		Query map[string]map[string]any `json:"query"`
	}
	if data, _ := io.ReadAll(r.Body); len(data) > 0 {
		if err := json.Unmarshal(data, &body); err != nil {
			writeError(w, http.StatusBadRequest, "parsing_exception", err.Error())
			return
		}
	}
	size := 10
	if v, err := strconv.Atoi(r.URL.Query().Get("size")); err == nil {
		size = v
	}

	hits := make([]any, 0)
	total := 0
	for _, name := range s.resolve(names) {
		idx := s.indexes[name]
		for _, id := range idx.ids {
			if !matchesQuery(body.Query, idx.docs[id]) {
				continue
			}
			total++
			if len(hits) < size {
				hits = append(hits, map[string]any{"_index": name, "_id": id, "_score": 1.0, "_source": idx.docs[id]})
			}
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"took":      1,
		"timed_out": false,
		"hits": map[string]any{
			"total": map[string]any{"value": total, "relation": "eq"},
			"hits":  hits,
		},
	})
}

func (s *Server) count(w http.ResponseWriter, names []string) {
	for _, n := range names {
		if _, ok := s.indexes[n]; !ok && !strings.Contains(n, "*") && n != "_all" {
			writeIndexNotFound(w, n)
			return
		}
	}
	total := 0
	for _, name := range s.resolve(names) {
		total += len(s.indexes[name].ids)
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": total})
}

func (s *Server) fieldCaps(w http.ResponseWriter, names []string) {
	resolved := s.resolve(names)
	fields := map[string]any{}
	for _, meta := range []string{"_id", "_index", "_source", "_version", "_seq_no"} {
		fields[meta] = map[string]any{meta: map[string]any{"type": meta, "searchable": meta == "_id" || meta == "_index", "aggregatable": meta != "_source"}}
	}

	types := map[string]map[string][]string{}
	for _, name := range resolved {
		for _, doc := range s.indexes[name].docs {
			for field, v := range doc {
				t := fieldType(v)
				if types[field] == nil {
					types[field] = map[string][]string{}
				}
				if !contains(types[field][t], name) {
					types[field][t] = append(types[field][t], name)
				}
			}
		}
	}
	for field, byType := range types {
		caps := map[string]any{}
		for t, idxs := range byType {
			entry := map[string]any{"type": t, "searchable": true, "aggregatable": t != "text"}
			if len(byType) > 1 {
				sort.Strings(idxs)
				entry["indices"] = idxs
			}
			caps[t] = entry
		}
		fields[field] = caps
	}
	writeJSON(w, http.StatusOK, map[string]any{"indices": resolved, "fields": fields})
}

func (s *Server) reindex(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Source struct {
			Index any `json:"index"`
		} `json:"source"`
		Dest struct {
			Index       string `json:"index"`
			VersionType string `json:"version_type"`
			OpType      string `json:"op_type"`
		} `json:"dest"`
		MaxDocs int `json:"max_docs"`
	}
	data, _ := io.ReadAll(r.Body)
	if err := json.Unmarshal(data, &body); err != nil {
		writeError(w, http.StatusBadRequest, "parse_exception", err.Error())
		return
	}
	var raw map[string]any
	_ = json.Unmarshal(data, &raw)
	s.reindexes = append(s.reindexes, raw)
	s.reindexArgs = append(s.reindexArgs, r.URL.Query())

	var sources []string
	switch v := body.Source.Index.(type) {
	case string:
		sources = splitNames(v)
	case []any:
		for _, n := range v {
			if str, ok := n.(string); ok {
				sources = append(sources, str)
			}
		}
	}
	for _, n := range sources {
		if _, ok := s.indexes[n]; !ok {
			writeIndexNotFound(w, n)
			return
		}
	}
	if body.Dest.Index == "" {
		writeError(w, http.StatusBadRequest, "action_request_validation_exception", "Validation Failed: 1: use _reindex API with a destination index;")
		return
	}

	dest, maxDocs := body.Dest.Index, body.MaxDocs
	finish := func() map[string]any {
		idx, ok := s.indexes[dest]
		if !ok {
			idx = s.createIndexLocked(dest, 1, 1)
		}
		copied, created := 0, 0
		for _, src := range sources {
			from, ok := s.indexes[src]
			if !ok {
				continue
			}
			for _, id := range from.ids {
				if maxDocs > 0 && copied >= maxDocs {
					break
				}
				if _, exists := idx.docs[id]; !exists {
					created++
				}
				idx.put(id, from.docs[id])
				copied++
			}
		}
		return map[string]any{"total": copied, "created": created, "updated": copied - created, "failures": []any{}}
	}

	s.nextTask++
	id := es.TaskID{Node: NodeID, Number: s.nextTask}
	if s.taskListings <= 0 {
		s.completed[id.String()] = finish()
	} else {
		s.running = append(s.running, &runningTask{
			info: es.TaskInfo{
				ID:          id,
				Type:        "transport",
				Action:      reindexAction,
				Description: fmt.Sprintf("reindex from %v to [%s]", sources, dest),
			},
			remaining: s.taskListings,
			finish:    finish,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"task": id.String()})
}

func (s *Server) bulk(w http.ResponseWriter, r *http.Request, defaultIndex string) {
	scanner := bufio.NewScanner(r.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	items := make([]any, 0)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var action map[string]struct {
			Index string `json:"_index"`
			ID    string `json:"_id"`
		}
		if err := json.Unmarshal([]byte(line), &action); err != nil {
			writeError(w, http.StatusBadRequest, "illegal_argument_exception", "malformed action line: "+err.Error())
			return
		}
		if !scanner.Scan() {
			writeError(w, http.StatusBadRequest, "illegal_argument_exception", "missing source line")
			return
		}
		for op, meta := range action {
			name := meta.Index
			if name == "" {
				name = defaultIndex
			}
			var source map[string]any
			if err := json.Unmarshal(scanner.Bytes(), &source); err != nil {
				items = append(items, map[string]any{op: map[string]any{
					"_index": name, "_id": meta.ID, "status": http.StatusBadRequest,
					"error": map[string]any{"type": "mapper_parsing_exception", "reason": "failed to parse"},
				}})
				continue
			}
			idx, ok := s.indexes[name]
			if !ok {
				idx = s.createIndexLocked(name, 1, 1)
			}
			id := meta.ID
			if id == "" {
				s.nextDocID++
				id = "auto-" + strconv.Itoa(s.nextDocID)
			}
			_, exists := idx.docs[id]
			version := idx.put(id, source)
			result, code := "created", http.StatusCreated
			if exists {
				result, code = "updated", http.StatusOK
			}
			items = append(items, map[string]any{op: map[string]any{
				"_index": name, "_id": id, "_version": version, "result": result, "status": code,
			}})
		}
	}

	errors := false
	for _, item := range items {
		for _, v := range item.(map[string]any) {
			if _, failed := v.(map[string]any)["error"]; failed {
				errors = true
			}
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"took": 1, "errors": errors, "items": items})
}

// resolve expands index expressions to existing index names, skipping missing ones
func (s *Server) resolve(names []string) []string {
	var out []string
	if len(names) == 0 {
		names = []string{"_all"}
	}
	for name := range s.indexes {
		for _, expr := range names {
			if expr == "_all" || matchName(expr, name) {
				out = append(out, name)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

func splitNames(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func matchName(pattern, name string) bool {
	if pattern == "*" {
		return true
	}
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(name, strings.TrimSuffix(pattern, "*"))
	}
	return pattern == name
}

func matchesAny(patterns []string, action string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, p := range patterns {
		switch {
		case strings.HasPrefix(p, "*"):
			if strings.HasSuffix(action, strings.TrimPrefix(p, "*")) {
				return true
			}
		case strings.HasSuffix(p, "*"):
			if strings.HasPrefix(action, strings.TrimSuffix(p, "*")) {
				return true
			}
		case p == action:
			return true
		}
	}
	return false
}

// matchesQuery supports match_all and single-field term/match equality
func matchesQuery(query map[string]map[string]any, doc map[string]any) bool {
	if len(query) == 0 {
		return true
	}
	for kind, clause := range query {
		switch kind {
		case "match_all":
			return true
		case "term", "match":
			for field, want := range clause {
				if m, ok := want.(map[string]any); ok {
					if v, ok := m["value"]; ok {
						want = v
					} else {
						want = m["query"]
					}
				}
				if fmt.Sprint(doc[field]) != fmt.Sprint(want) {
					return false
				}
			}
			return true
		}
	}
	return false
}

func fieldType(v any) string {
	switch n := v.(type) {
	case string:
		return "text"
	case bool:
		return "boolean"
	case int, int32, int64:
		return "long"
	case json.Number:
		if _, err := n.Int64(); err == nil {
			return "long"
		}
		return "float"
	case float64:
		if n == float64(int64(n)) {
			return "long"
		}
		return "float"
	case map[string]any:
		return "object"
	default:
		return "keyword"
	}
}

func intSetting(settings map[string]any, key string) (int, bool) {
	switch v := settings[key].(type) {
	case float64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	}
	return 0, false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, code int, errType, reason string) {
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"root_cause": []any{map[string]any{"type": errType, "reason": reason}},
			"type":       errType,
			"reason":     reason,
		},
		"status": code,
	})
}

func writeIndexNotFound(w http.ResponseWriter, name string) {
	writeError(w, http.StatusNotFound, "index_not_found_exception", "no such index ["+name+"]")
}
