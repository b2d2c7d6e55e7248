// Package commitdate looks up commit timestamps through the GitHub REST API.
//
// Lookups are best effort: every failure is logged at debug level and reported as unresolved so callers
// can substitute their own timestamp.
package commitdate
