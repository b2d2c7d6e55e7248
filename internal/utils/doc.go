// Package utils exposes reusable helpers consumed by the headwatch commands.
//
// It houses the ConfigurationLoader and LoggerFactory abstractions that integrate Viper, environment
// variables, and zap logging, plus a FlushingWriter for line-oriented output streams.
package utils
