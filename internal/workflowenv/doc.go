// Package workflowenv abstracts the CI runner surface headwatch talks to.
//
// Environment reads inputs such as GITHUB_EVENT_NAME and SHA_<NAME> values,
// OutputSink publishes step outputs either to the GITHUB_OUTPUT file or to a
// writer as OUTPUT: lines, and the naming helpers derive both keys from a
// tracked repository name. Tests substitute MapEnvironment and in-memory sinks
// for the process environment and files.
package workflowenv
