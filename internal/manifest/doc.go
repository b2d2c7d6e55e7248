// Package manifest loads and persists the upstream version manifest.
//
// The manifest is a JSON document with a last_run_utc timestamp and a
// repositories object keyed by component name. Decoding keeps the order in
// which repositories and members appear, and encoding writes them back in
// that order so rewrites produce minimal diffs. Members headwatch does not
// understand are carried through untouched.
package manifest
