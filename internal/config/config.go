package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/aryankumar/esadmin/internal/util"
)

const (
	defaultConfigName = ".esadmin"
	defaultConfigDir  = ".esadmin"
	envPrefix         = "ESADMIN"
)

// Default values applied when the file and environment leave them unset
const (
	DefaultTimeout       = 5 * time.Minute
	DefaultParallel      = 5
	DefaultOutputFormat  = "table"
	DefaultHealthRetries = 6
	DefaultPollInterval  = 100 * time.Millisecond
)

// keys that can be set from ESADMIN_* environment variables without a config file
var envKeys = []string{
	"currentCluster",
	"logFile",
	"defaults.timeout",
	"defaults.parallel",
	"defaults.outputFormat",
	"defaults.noColor",
	"defaults.healthRetries",
	"defaults.pollInterval",
}

// Manager handles esadmin configuration
type Manager struct {
	configPath string
	config     *Config
	viper      *viper.Viper
}

// NewManager creates a new configuration manager. An empty path searches
// ~/.esadmin.yaml and ~/.esadmin/config.yaml.
func NewManager(configPath string) *Manager {
	return &Manager{
		configPath: configPath,
		viper:      viper.New(),
		config:     &Config{},
	}
}

// Path returns the file the configuration was read from or will be saved to
func (m *Manager) Path() string {
	if m.configPath != "" {
		return m.configPath
	}
	if used := m.viper.ConfigFileUsed(); used != "" {
		return used
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, defaultConfigDir, "config.yaml")
}

// Load loads the configuration from file and environment
func (m *Manager) Load() (*Config, error) {
	if m.configPath != "" {
		m.viper.SetConfigFile(m.configPath)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		m.viper.AddConfigPath(filepath.Join(home, defaultConfigDir))
		m.viper.AddConfigPath(home)
		m.viper.SetConfigName(defaultConfigName)
		m.viper.SetConfigType("yaml")
	}

	m.viper.SetEnvPrefix(envPrefix)
	m.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	m.viper.AutomaticEnv()
	for _, key := range envKeys {
		if err := m.viper.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	m.config = &Config{}

	if err := m.viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := m.viper.Unmarshal(m.config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	m.applyDefaults()
	return m.config, nil
}

// Save writes the configuration as YAML, readable only by the owner
func (m *Manager) Save() error {
	path := m.Path()
	if path == "" {
		return fmt.Errorf("failed to determine config file path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(m.config)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	m.configPath = path
	return nil
}

// GetConfig returns the current configuration
func (m *Manager) GetConfig() *Config {
	return m.config
}

// GetClusterConfig returns configuration for a specific cluster
func (m *Manager) GetClusterConfig(name string) (*ClusterConfig, bool) {
	cluster, ok := m.config.Clusters[name]
	if !ok {
		return nil, false
	}
	return &cluster, true
}

// SetClusterConfig sets or updates configuration for a cluster
func (m *Manager) SetClusterConfig(name string, cluster ClusterConfig) {
	if m.config.Clusters == nil {
		m.config.Clusters = make(map[string]ClusterConfig)
	}
	m.config.Clusters[name] = cluster
}

// RemoveClusterConfig removes a cluster and clears it as current cluster
func (m *Manager) RemoveClusterConfig(name string) bool {
	if _, ok := m.config.Clusters[name]; !ok {
		return false
	}
	delete(m.config.Clusters, name)
	if m.config.CurrentCluster == name {
		m.config.CurrentCluster = ""
	}
	return true
}

// SetCurrentCluster selects the default cluster
func (m *Manager) SetCurrentCluster(name string) error {
	if _, ok := m.config.Clusters[name]; !ok {
		return fmt.Errorf("%w: %s", util.ErrClusterNotFound, name)
	}
	m.config.CurrentCluster = name
	return nil
}

// ClusterNames returns all configured cluster names, sorted
func (m *Manager) ClusterNames() []string {
	names := make([]string, 0, len(m.config.Clusters))
	for name := range m.config.Clusters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetEnabledClusters returns the sorted names of clusters not marked disabled
func (m *Manager) GetEnabledClusters() []string {
	enabled := make([]string, 0, len(m.config.Clusters))
	for _, name := range m.ClusterNames() {
		if !m.config.Clusters[name].Disabled {
			enabled = append(enabled, name)
		}
	}
	return enabled
}

// GetClustersByLabel returns enabled clusters matching all the given labels
func (m *Manager) GetClustersByLabel(labels map[string]string) []string {
	matching := make([]string, 0)
	for _, name := range m.GetEnabledClusters() {
		if matchesLabels(m.config.Clusters[name].Labels, labels) {
			matching = append(matching, name)
		}
	}
	return matching
}

// applyDefaults sets default values for configuration
func (m *Manager) applyDefaults() {
	if m.config == nil {
		return
	}
	if m.config.Defaults.Timeout == 0 {
		m.config.Defaults.Timeout = DefaultTimeout
	}
	if m.config.Defaults.Parallel == 0 {
		m.config.Defaults.Parallel = DefaultParallel
	}
	if m.config.Defaults.OutputFormat == "" {
		m.config.Defaults.OutputFormat = DefaultOutputFormat
	}
	// healthRetries: 0 is a valid budget, so only a missing key gets the default
	if !m.viper.IsSet("defaults.healthRetries") {
		m.config.Defaults.HealthRetries = DefaultHealthRetries
	}
	if m.config.Defaults.PollInterval == 0 {
		m.config.Defaults.PollInterval = DefaultPollInterval
	}
}

// matchesLabels checks if cluster labels match the required labels
func matchesLabels(clusterLabels, requiredLabels map[string]string) bool {
	for key, value := range requiredLabels {
		clusterValue, exists := clusterLabels[key]
		if !exists || clusterValue != value {
			return false
		}
	}
	return true
}

// ParseLabelSelector parses "k=v,k2=v2" into a label map
func ParseLabelSelector(selector string) (map[string]string, error) {
	labels := make(map[string]string)
	if strings.TrimSpace(selector) == "" {
		return labels, nil
	}
	for _, pair := range strings.Split(selector, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid label selector %q: expected key=value", pair)
		}
		labels[key] = value
	}
	return labels, nil
}
