package embedding

import (
	"go.uber.org/fx"
)

// FXModule wires the embedding system into Fx.
//
// It provides:
//   - *Config    (NewConfig)
//   - Provider   (NewOpenAIProvider)
//   - *Client    (NewClient)
var FXModule = fx.Module(
	"embedding",

	fx.Provide(
		NewConfig,
		func(cfg *Config) (Provider, error) { return NewOpenAIProvider(cfg) },
		NewClient,
	),
)
