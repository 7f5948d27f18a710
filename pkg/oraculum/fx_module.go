package oraculum

import (
	"context"
	"log"

	"go.uber.org/fx"
)

// FXModule defines the Fx module for the fact store.
//
// The module provides the Oraculum facade to the dependency injection
// container and connects it on startup, which validates the store schema and
// migrates it if it is behind.
//
// Usage:
//
//	app := fx.New(
//	    logger.FXModule,
//	    qdrant.FXModule,
//	    oraculum.FXModule,
//	    // other modules...
//	)
//
// Dependencies required by this module:
// - An oraculum.Configuration instance.
// - A store.Service implementation (e.g. the qdrant module's adapter).
// - An oraculum.Logger implementation.
// - Optional *metrics.Metrics and *tracer.Tracer (may be nil).
var FXModule = fx.Module("oraculum",
	fx.Provide(New),
	fx.Invoke(RegisterOraculumLifecycle),
)

// RegisterOraculumLifecycle connects the fact store on application start.
func RegisterOraculumLifecycle(lc fx.Lifecycle, o *Oraculum) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := o.Connect(ctx); err != nil {
				return err
			}
			log.Println("[Oraculum] connected to fact store")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return nil
		},
	})
}
