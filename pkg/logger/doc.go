// Package logger provides structured logging for the Oraculum client library.
//
// It wraps Uber's Zap with a small field-map API so callers don't depend on
// zap types directly:
//
//	log := logger.NewLoggerClient(logger.Config{Level: "info"})
//
//	log.Info("schema migrated", nil, map[string]interface{}{
//	    "from": "1.1",
//	    "to":   "1.2",
//	})
//
// Configuration:
//
//	ZAP_LOGGER_LEVEL=debug   # debug, info, warning, error
//
// All methods are safe for concurrent use.
package logger
