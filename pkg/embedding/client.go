package embedding

import (
	"context"
)

// Client is a thin facade that delegates all requests to the underlying Provider.
type Client struct {
	provider Provider
	model    string
}

// NewClient constructs a Client from an already-instantiated Provider.
func NewClient(p Provider, cfg *Config) *Client {
	return &Client{provider: p, model: cfg.Model}
}

// CreateEmbeddings embeds texts with the client's default model.
func (c *Client) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	return c.provider.CreateEmbeddings(ctx, texts, c.model)
}

// CreateEmbeddingsWithModel embeds texts with an explicit model, overriding
// the default. Used when a collection's vectorizer names its own model.
func (c *Client) CreateEmbeddingsWithModel(ctx context.Context, texts []string, model string) ([][]float32, error) {
	if model == "" {
		model = c.model
	}
	return c.provider.CreateEmbeddings(ctx, texts, model)
}
