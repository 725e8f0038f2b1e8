// Package logger provides structured logging for the gateway using zerolog.
//
// It supports JSON and console output, level configuration, component-scoped
// loggers and the redaction helpers used whenever credentials or signed URLs
// would otherwise reach a log line.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("gateway")
//	log.Info("job submitted", logger.Fields(logger.FieldProvider, "tencent", logger.FieldJobID, id))
package logger
