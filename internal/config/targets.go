package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/aryankumar/esadmin/internal/util"
)

// AllClusters selects every enabled cluster
const AllClusters = "all"

// Ad-hoc connection defaults
const (
	DefaultHostname = "localhost"
	DefaultPort     = 9200
	DefaultScheme   = "http"
)

// TargetOptions carries the connection flags of one invocation
type TargetOptions struct {
	// Clusters names configured clusters, or "all"
	Clusters []string

	// Selector picks enabled clusters by label, e.g. env=prod
	Selector string

	// URL is an ad-hoc endpoint that bypasses the config file
	URL string

	// Hostname, Port and Scheme build an ad-hoc endpoint when HostFlagsSet is true
	Hostname     string
	Port         int
	Scheme       string
	HostFlagsSet bool

	// Overrides applied to every resolved target when non-empty
	Engine   string
	Username string
	Password string
	Insecure bool
}

// ResolveTargets turns connection flags into targets. Precedence: named
// clusters or a label selector, then --url, then the hostname/port/scheme
// flags, then the current cluster, then http://localhost:9200.
func (m *Manager) ResolveTargets(opts TargetOptions) ([]Target, error) {
	var targets []Target

	switch {
	case len(opts.Clusters) > 0 || opts.Selector != "":
		names, err := m.selectClusters(opts)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			targets = append(targets, m.target(name))
		}

	case opts.URL != "":
		targets = append(targets, adHocTarget(opts.URL))

	case opts.HostFlagsSet:
		u, err := BuildURL(opts.Scheme, opts.Hostname, opts.Port)
		if err != nil {
			return nil, err
		}
		targets = append(targets, adHocTarget(u))

	case m.config.CurrentCluster != "":
		if _, ok := m.config.Clusters[m.config.CurrentCluster]; !ok {
			return nil, fmt.Errorf("%w: current cluster %q is not configured", util.ErrClusterNotFound, m.config.CurrentCluster)
		}
		targets = append(targets, m.target(m.config.CurrentCluster))

	default:
		u, _ := BuildURL(DefaultScheme, DefaultHostname, DefaultPort)
		targets = append(targets, adHocTarget(u))
	}

	for i := range targets {
		applyOverrides(&targets[i], opts)
	}
	return targets, nil
}

func (m *Manager) selectClusters(opts TargetOptions) ([]string, error) {
	var names []string
	seen := make(map[string]bool)
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	for _, name := range opts.Clusters {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if name == AllClusters {
			for _, n := range m.GetEnabledClusters() {
				add(n)
			}
			continue
		}
		if _, ok := m.config.Clusters[name]; !ok {
			return nil, fmt.Errorf("%w: %s", util.ErrClusterNotFound, name)
		}
		add(name)
	}

	if opts.Selector != "" {
		labels, err := ParseLabelSelector(opts.Selector)
		if err != nil {
			return nil, util.NewValidationError("selector", opts.Selector, err.Error())
		}
		for _, n := range m.GetClustersByLabel(labels) {
			add(n)
		}
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no clusters matched", util.ErrClusterNotFound)
	}
	return names, nil
}

func (m *Manager) target(name string) Target {
	c := m.config.Clusters[name]
	return Target{
		Name:     name,
		URL:      c.URL,
		Engine:   c.Engine,
		Username: c.Username,
		Password: c.Password,
		Insecure: c.Insecure,
		Labels:   c.Labels,
	}
}

func adHocTarget(u string) Target {
	return Target{Name: util.ShortClusterName(u), URL: u}
}

func applyOverrides(t *Target, opts TargetOptions) {
	if opts.Engine != "" {
		t.Engine = opts.Engine
	}
	if opts.Username != "" {
		t.Username = opts.Username
	}
	if opts.Password != "" {
		t.Password = opts.Password
	}
	if opts.Insecure {
		t.Insecure = true
	}
}

// BuildURL joins scheme, hostname and port into an endpoint URL
func BuildURL(scheme, hostname string, port int) (string, error) {
	if scheme == "" {
		scheme = DefaultScheme
	}
	if scheme != "http" && scheme != "https" {
		return "", util.NewValidationError("es-scheme", scheme, "must be http or https")
	}
	if hostname == "" {
		hostname = DefaultHostname
	}
	if port == 0 {
		port = DefaultPort
	}
	if port < 0 || port > 65535 {
		return "", util.NewValidationError("es-port", port, "port out of range")
	}
	return scheme + "://" + net.JoinHostPort(hostname, strconv.Itoa(port)), nil
}
