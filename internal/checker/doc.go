// Package checker implements `headwatch check`, which compares the HEAD advertised by each tracked
// upstream repository against the manifest and tells downstream workflow steps whether to run.
//
// The manifest is never modified. Outputs are written only after every repository has been queried,
// so a failed query leaves the workflow output file untouched.
package checker
