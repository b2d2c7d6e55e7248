// Package githubauth locates GitHub API credentials supplied by the workflow environment.
package githubauth
