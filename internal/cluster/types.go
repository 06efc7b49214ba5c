package cluster

import (
	"net/http"
	"time"
)

// HealthStatus is the result of probing one cluster
type HealthStatus struct {
	// ClusterName is the configured or derived cluster name
	ClusterName string `json:"cluster"`

	// URL is the endpoint that was probed
	URL string `json:"url"`

	// Healthy indicates the cluster answered GET /
	Healthy bool `json:"healthy"`

	// Error contains any failure
	Error error `json:"-"`

	// ServerName is the cluster_name reported by the server
	ServerName string `json:"serverName,omitempty"`

	// Version is the server version number
	Version string `json:"version,omitempty"`

	// Distribution is "opensearch" for OpenSearch servers and empty for Elasticsearch
	Distribution string `json:"distribution,omitempty"`

	// Latency is the round trip of the probe
	Latency time.Duration `json:"latency"`
}

// Options configures the clients built by a Manager
type Options struct {
	// MaxRetries is the transport retry count for 429/502/503/504 responses.
	// Zero leaves transport retries off.
	MaxRetries int

	// Transport overrides the HTTP transport, mainly for tests
	Transport http.RoundTripper

	// Parallel bounds concurrent probes; zero means unbounded
	Parallel int
}
