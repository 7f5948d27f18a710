package qdrant

import (
	"context"
	"log"
	"sync"

	"go.uber.org/fx"

	"github.com/oraculum-ai/oraculum-go/pkg/store"
)

// FXModule defines the Fx module for the Qdrant-backed store.
//
// This module integrates the Qdrant client into an Fx-based application by
// providing the client factory and the store.Service adapter built on it, and
// registering lifecycle hooks for shutdown.
//
// The module:
//  1. Provides the NewClient factory function to the dependency injection
//     container, making the raw client available to other components.
//  2. Provides NewAdapter, which wraps the client into the store.Service
//     abstraction consumed by the rest of the application.
//  3. Invokes RegisterQdrantLifecycle to handle startup/shutdown of the
//     client.
//
// Usage:
//
//	app := fx.New(
//	    qdrant.FXModule,
//	    // other modules...
//	)
//
// Dependencies required by this module:
// - A qdrant.Config instance must be available in the dependency injection container.
// - A qdrant.Logger implementation.
// - An *embedding.Client (may be nil when no collection is vectorized).
var FXModule = fx.Module("qdrant",
	fx.Provide(
		NewClient,
		NewAdapter,
		func(a *Adapter) store.Service { return a },
	),
	fx.Invoke(RegisterQdrantLifecycle),
)

// RegisterQdrantLifecycle handles startup/shutdown of the Qdrant client.
// It ensures proper resource cleanup and logging.
func RegisterQdrantLifecycle(lc fx.Lifecycle, client *Client) {
	var once sync.Once

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Println("[Qdrant] client initialized successfully")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			once.Do(func() {
				client.Close()
				log.Println("[Qdrant] client connection closed")
			})
			return nil
		},
	})
}
