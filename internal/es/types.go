package es

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// HealthStatus is the traffic-light status reported by the cluster health API
type HealthStatus string

const (
	StatusRed    HealthStatus = "red"
	StatusYellow HealthStatus = "yellow"
	StatusGreen  HealthStatus = "green"
)

// Rank orders statuses red < yellow < green. Unknown statuses rank below red.
func (s HealthStatus) Rank() int {
	switch HealthStatus(strings.ToLower(string(s))) {
	case StatusGreen:
		return 3
	case StatusYellow:
		return 2
	case StatusRed:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether s is the same as or better than other
func (s HealthStatus) AtLeast(other HealthStatus) bool {
	return s.Rank() >= other.Rank()
}

// ParseHealthStatus validates a status string
func ParseHealthStatus(s string) (HealthStatus, error) {
	status := HealthStatus(strings.ToLower(strings.TrimSpace(s)))
	if status.Rank() == 0 {
		return "", fmt.Errorf("unknown health status %q (expected green, yellow or red)", s)
	}
	return status, nil
}

// Health report levels
const (
	LevelCluster = "cluster"
	LevelIndices = "indices"
	LevelShards  = "shards"
)

// HealthRequest selects what the cluster health API reports and waits for
type HealthRequest struct {
	// Indices restricts the report to these indexes. Empty means all.
	Indices []string

	// WaitForStatus makes the server hold the request until the status is reached or it times out
	WaitForStatus HealthStatus

	// Level is one of cluster, indices or shards
	Level string

	// Timeout is the server-side wait. Zero leaves the server default (30s).
	Timeout time.Duration
}

// ClusterHealth is a snapshot returned by the cluster health API
type ClusterHealth struct {
	ClusterName         string                 `json:"cluster_name"`
	Status              HealthStatus           `json:"status"`
	TimedOut            bool                   `json:"timed_out"`
	NumberOfNodes       int                    `json:"number_of_nodes"`
	NumberOfDataNodes   int                    `json:"number_of_data_nodes"`
	ActivePrimaryShards int                    `json:"active_primary_shards"`
	ActiveShards        int                    `json:"active_shards"`
	RelocatingShards    int                    `json:"relocating_shards"`
	InitializingShards  int                    `json:"initializing_shards"`
	UnassignedShards    int                    `json:"unassigned_shards"`
	Indices             map[string]IndexHealth `json:"indices,omitempty"`
}

// IndexHealth is the per-index section of a health snapshot
type IndexHealth struct {
	Status              HealthStatus `json:"status"`
	NumberOfShards      int          `json:"number_of_shards"`
	NumberOfReplicas    int          `json:"number_of_replicas"`
	ActivePrimaryShards int          `json:"active_primary_shards"`
	ActiveShards        int          `json:"active_shards"`
	RelocatingShards    int          `json:"relocating_shards"`
	InitializingShards  int          `json:"initializing_shards"`
	UnassignedShards    int          `json:"unassigned_shards"`
}

// TaskID addresses a task on the server as node:number
type TaskID struct {
	Node   string
	Number int64
}

// ParseTaskID parses the "node:number" form returned by the task APIs
func ParseTaskID(s string) (TaskID, error) {
	node, num, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || node == "" || num == "" {
		return TaskID{}, fmt.Errorf("invalid task id %q: expected node:number", s)
	}
	n, err := strconv.ParseInt(num, 10, 64)
	if err != nil || n < 0 {
		return TaskID{}, fmt.Errorf("invalid task id %q: task number must be a non-negative integer", s)
	}
	return TaskID{Node: node, Number: n}, nil
}

// String returns the node:number form
func (id TaskID) String() string {
	return id.Node + ":" + strconv.FormatInt(id.Number, 10)
}

// IsZero reports whether the id is unset
func (id TaskID) IsZero() bool {
	return id.Node == "" && id.Number == 0
}

// MarshalJSON encodes the id as its string form
func (id TaskID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// UnmarshalJSON accepts the string form
func (id *TaskID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseTaskID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ListTasksRequest filters the task management API
type ListTasksRequest struct {
	// Detailed asks the server for task descriptions
	Detailed bool

	// Actions filters by action name, wildcards allowed (e.g. "*reindex")
	Actions []string

	// Nodes restricts the listing to these node ids
	Nodes []string
}

// TaskInfo is one running task
type TaskInfo struct {
	ID           TaskID `json:"id"`
	Type         string `json:"type"`
	Action       string `json:"action"`
	Description  string `json:"description,omitempty"`
	StartTime    int64  `json:"start_time_in_millis"`
	RunningTime  int64  `json:"running_time_in_nanos"`
	Cancellable  bool   `json:"cancellable"`
	ParentTaskID string `json:"parent_task_id,omitempty"`
}

// Running returns the elapsed run time
func (t TaskInfo) Running() time.Duration {
	return time.Duration(t.RunningTime)
}

// TaskStatus is the stored or live state of a single task
type TaskStatus struct {
	Completed bool            `json:"completed"`
	Task      TaskInfo        `json:"task"`
	Response  json.RawMessage `json:"response,omitempty"`
	Error     *ErrorCause     `json:"error,omitempty"`
}

// ErrorCause is the server's structured error description
type ErrorCause struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// IndexTemplate is a legacy index template
type IndexTemplate struct {
	Name          string         `json:"name"`
	Order         int            `json:"order"`
	Version       *int           `json:"version,omitempty"`
	IndexPatterns []string       `json:"index_patterns"`
	Settings      map[string]any `json:"settings,omitempty"`
	Mappings      map[string]any `json:"mappings,omitempty"`
	Aliases       map[string]any `json:"aliases,omitempty"`
}

// FieldCapability describes one field under one mapping type
type FieldCapability struct {
	Type         string   `json:"type"`
	Searchable   bool     `json:"searchable"`
	Aggregatable bool     `json:"aggregatable"`
	Indices      []string `json:"indices,omitempty"`
}

// FieldCapabilities maps field name to mapping type to capability
type FieldCapabilities map[string]map[string]FieldCapability

// Fields returns the field names in sorted order
func (f FieldCapabilities) Fields() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Document is a single stored document
type Document struct {
	Index   string         `json:"_index"`
	ID      string         `json:"_id"`
	Version int64          `json:"_version,omitempty"`
	Found   bool           `json:"found"`
	Source  map[string]any `json:"_source,omitempty"`
}

// IndexDocumentRequest stores one document
type IndexDocumentRequest struct {
	Index string
	ID    string
	Body  []byte

	// Create fails the request when the id already exists
	Create bool

	// Refresh makes the document visible to search before returning
	Refresh bool
}

// IndexDocumentResult is the server's answer to an index request
type IndexDocumentResult struct {
	Index   string `json:"_index"`
	ID      string `json:"_id"`
	Version int64  `json:"_version"`
	Result  string `json:"result"`
}

// SearchRequest runs a query against one or more indexes
type SearchRequest struct {
	Indices []string

	// Query is the raw query clause. Nil means match_all.
	Query json.RawMessage

	// Size limits the number of hits. Zero leaves the server default.
	Size int
}

// SearchResult is the decoded search response
type SearchResult struct {
	Took     int64       `json:"took"`
	TimedOut bool        `json:"timed_out"`
	Total    int64       `json:"total"`
	Hits     []SearchHit `json:"hits"`
}

// SearchHit is one matching document
type SearchHit struct {
	Index  string         `json:"_index"`
	ID     string         `json:"_id"`
	Score  *float64       `json:"_score"`
	Source map[string]any `json:"_source"`
}

// Script transforms documents during a reindex
type Script struct {
	Source string         `json:"source"`
	Lang   string         `json:"lang,omitempty"`
	Params map[string]any `json:"params,omitempty"`
}

// ReindexRequest copies documents from the source indexes to the destination
type ReindexRequest struct {
	Source      []string
	Destination string
	Script      *Script

	// MaxDocs caps the number of copied documents. Zero copies all.
	MaxDocs int

	// Refresh refreshes the destination when the copy completes
	Refresh bool
}

// ServerInfo is the root endpoint response
type ServerInfo struct {
	Name        string `json:"name"`
	ClusterName string `json:"cluster_name"`
	ClusterUUID string `json:"cluster_uuid"`
	Version     struct {
		Number       string `json:"number"`
		Distribution string `json:"distribution,omitempty"`
	} `json:"version"`
	Tagline string `json:"tagline"`
}

// BulkDocument is one document for a bulk load
type BulkDocument struct {
	// ID is optional; the server generates one when empty
	ID   string
	Body []byte
}

// BulkRequest loads documents into an index through the bulk API
type BulkRequest struct {
	Index     string
	Documents []BulkDocument

	// Workers is the number of concurrent bulk requests. Zero uses the library default.
	Workers int

	// FlushBytes is the request size threshold. Zero uses the library default.
	FlushBytes int

	Refresh bool
}

// BulkStats summarizes a bulk load
type BulkStats struct {
	Added    uint64 `json:"added"`
	Indexed  uint64 `json:"indexed"`
	Created  uint64 `json:"created"`
	Failed   uint64 `json:"failed"`
	Requests uint64 `json:"requests"`
}

func sortTasks(tasks []TaskInfo) {
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].ID.Node != tasks[j].ID.Node {
			return tasks[i].ID.Node < tasks[j].ID.Node
		}
		return tasks[i].ID.Number < tasks[j].ID.Number
	})
}

func sortTemplates(templates []IndexTemplate) {
	sort.Slice(templates, func(i, j int) bool {
		return templates[i].Name < templates[j].Name
	})
}
