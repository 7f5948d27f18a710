package logger

const (
	Debug   = "debug"
	Info    = "info"
	Warning = "warning"
	Error   = "error"
)

type Config struct {
	// Level selects the minimum level that is emitted.
	// Unknown values fall back to "info".
	Level string `yaml:"level" envconfig:"ZAP_LOGGER_LEVEL"`
}
