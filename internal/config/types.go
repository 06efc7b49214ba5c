package config

import "time"

// Config represents the esadmin configuration file structure
type Config struct {
	// CurrentCluster is the cluster used when no --cluster or --url flag is given
	CurrentCluster string `yaml:"currentCluster,omitempty" json:"currentCluster,omitempty"`

	// Clusters maps cluster names to their connection settings
	Clusters map[string]ClusterConfig `yaml:"clusters,omitempty" json:"clusters,omitempty"`

	// Defaults contains default settings for operations
	Defaults DefaultsConfig `yaml:"defaults,omitempty" json:"defaults,omitempty"`

	// LogFile routes logs to a rotating file instead of stderr
	LogFile string `yaml:"logFile,omitempty" json:"logFile,omitempty"`
}

// ClusterConfig represents connection settings for a single cluster
type ClusterConfig struct {
	// URL is the HTTP endpoint, for example https://es.example.com:9200
	URL string `yaml:"url" json:"url"`

	// Engine is elasticsearch (default) or opensearch
	Engine string `yaml:"engine,omitempty" json:"engine,omitempty"`

	Username string `yaml:"username,omitempty" json:"username,omitempty"`
	Password string `yaml:"password,omitempty" json:"-"`

	// Insecure skips TLS certificate verification
	Insecure bool `yaml:"insecure,omitempty" json:"insecure,omitempty"`

	// Labels for selecting groups of clusters
	Labels map[string]string `yaml:"labels,omitempty" json:"labels,omitempty"`

	// Disabled excludes the cluster from --clusters all and label selection
	Disabled bool `yaml:"disabled,omitempty" json:"disabled,omitempty"`
}

// DefaultsConfig contains default configuration values
type DefaultsConfig struct {
	// Timeout bounds one whole command
	Timeout time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`

	// Parallel is the number of clusters contacted concurrently
	Parallel int `yaml:"parallel,omitempty" json:"parallel,omitempty"`

	// OutputFormat is the default output format (table, json, yaml)
	OutputFormat string `yaml:"outputFormat,omitempty" json:"outputFormat,omitempty"`

	// NoColor disables colored output
	NoColor bool `yaml:"noColor,omitempty" json:"noColor,omitempty"`

	// HealthRetries is the retry budget of the get health command
	HealthRetries int `yaml:"healthRetries" json:"healthRetries"`

	// PollInterval is the pause between health and task polls
	PollInterval time.Duration `yaml:"pollInterval,omitempty" json:"pollInterval,omitempty"`
}

// Target is a resolved cluster to run a command against
type Target struct {
	Name     string
	URL      string
	Engine   string
	Username string
	Password string
	Insecure bool
	Labels   map[string]string
}
