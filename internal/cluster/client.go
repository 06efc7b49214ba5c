package cluster

import (
	"fmt"
	"log/slog"

	"github.com/aryankumar/esadmin/internal/config"
	"github.com/aryankumar/esadmin/internal/es"
	"github.com/aryankumar/esadmin/pkg/version"
)

// NewClient builds a client for one target. No request is made.
func NewClient(target config.Target, opts Options, logger *slog.Logger) (*es.Client, error) {
	if target.URL == "" {
		return nil, fmt.Errorf("cluster %q has no url", target.Name)
	}

	client, err := es.New(es.Config{
		Name:       target.Name,
		Addresses:  []string{target.URL},
		Engine:     es.Engine(target.Engine),
		Username:   target.Username,
		Password:   target.Password,
		Insecure:   target.Insecure,
		MaxRetries: opts.MaxRetries,
		Transport:  opts.Transport,
		OpaqueID:   version.Get().OpaqueID(),
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	logger.Debug("created cluster client",
		"cluster", target.Name,
		"url", target.URL,
		"engine", client.Engine())
	return client, nil
}
