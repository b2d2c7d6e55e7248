// Package releasenotes renders the component version table published with each release.
package releasenotes
