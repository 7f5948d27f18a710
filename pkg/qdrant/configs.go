package qdrant

// Config holds the connection settings for the Qdrant client.
type Config struct {
	// Endpoint is the Qdrant host name (without scheme).
	Endpoint string `yaml:"endpoint" envconfig:"QDRANT_ENDPOINT"`

	// Port is the gRPC port (default 6334).
	Port int `yaml:"port" envconfig:"QDRANT_PORT"`

	// ApiKey authenticates against a secured instance. Empty for local use.
	ApiKey string `yaml:"api_key" envconfig:"QDRANT_API_KEY"`

	// CheckCompatibility verifies client/server version compatibility on
	// connect.
	CheckCompatibility bool `yaml:"check_compatibility" envconfig:"QDRANT_CHECK_COMPATIBILITY"`
}
