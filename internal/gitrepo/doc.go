// Package gitrepo contains helpers for interpreting Git remote URLs.
//
// ParseRemoteURL turns https, http, ssh, and scp-like remotes into owner and
// repository coordinates, and the link helpers derive the web and commit URLs
// shown in release notes.
package gitrepo
