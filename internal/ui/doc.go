// Package ui provides helpers for formatting human-readable console output.
//
// ConsoleCommandEventLogger translates execshell lifecycle events into concise
// log messages, and ReportPalette colors the check report written to stdout
// while structured telemetry continues to flow through zap.
package ui
