package qdrant

import (
	"context"
	"fmt"
	"time"

	qdrant "github.com/qdrant/go-client/qdrant"
)

// Logger defines the interface for logging operations in the qdrant package.
// This interface allows the package to use any logging implementation that
// conforms to these methods.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
	Fatal(msg string, err error, fields ...map[string]interface{})
}

// Client wraps the official Qdrant Go client and provides connection
// lifecycle management for the store adapter built on top of it.
type Client struct {
	api     *qdrant.Client
	cfg     *Config
	log     Logger
	started bool
}

// NewClient constructs a new Client and validates connectivity via a health
// check. The Qdrant Go SDK creates lightweight gRPC connections, so this
// performs an immediate health check to fail fast if the service is
// unreachable.
func NewClient(cfg *Config, log Logger) (*Client, error) {
	port := cfg.Port
	if port == 0 {
		port = 6334
	}

	log.Info("connecting to qdrant", nil, map[string]interface{}{
		"endpoint": cfg.Endpoint,
		"port":     port,
	})

	api, err := qdrant.NewClient(&qdrant.Config{
		Host:                   cfg.Endpoint,
		Port:                   port,
		APIKey:                 cfg.ApiKey,
		SkipCompatibilityCheck: !cfg.CheckCompatibility,
	})
	if err != nil {
		return nil, fmt.Errorf("[Qdrant] failed to initialize client: %w", err)
	}

	c := &Client{
		api:     api,
		cfg:     cfg,
		log:     log,
		started: true,
	}

	if err := c.healthCheck(); err != nil {
		return nil, fmt.Errorf("[Qdrant] health check failed: %w", err)
	}

	return c, nil
}

// healthCheck verifies the availability of the Qdrant service.
// It is lightweight and fast, suitable for startup or readiness probes.
func (c *Client) healthCheck() error {
	if !c.started || c.api == nil {
		return fmt.Errorf("[Qdrant] client not initialized")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	resp, err := c.api.HealthCheck(ctx)
	if err != nil {
		return err
	}

	c.log.Debug("qdrant health check passed", nil, map[string]interface{}{
		"title":   resp.GetTitle(),
		"version": resp.GetVersion(),
	})
	return nil
}

// Api returns the underlying Qdrant SDK client for low-level access.
func (c *Client) Api() *qdrant.Client {
	return c.api
}

// Close gracefully shuts down the Qdrant client. The SDK does not maintain
// persistent connections, so this exists for lifecycle symmetry.
func (c *Client) Close() error {
	if !c.started {
		return nil
	}
	c.started = false
	return nil
}
