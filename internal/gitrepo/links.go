package gitrepo

import "strings"

const (
	shortHashLengthConstant    = 7
	commitPathSegmentConstant  = "/commit/"
	trailingSeparatorsConstant = "/"
)

// StripGitSuffix removes a trailing .git (and any trailing slash) from a remote URL.
func StripGitSuffix(remote string) string {
	trimmedRemote := strings.TrimRight(strings.TrimSpace(remote), trailingSeparatorsConstant)
	return strings.TrimSuffix(trimmedRemote, gitSuffixConstant)
}

// ShortHash returns the first seven characters of a commit hash, or the whole hash when shorter.
func ShortHash(commitHash string) string {
	if len(commitHash) < shortHashLengthConstant {
		return commitHash
	}
	return commitHash[:shortHashLengthConstant]
}

// CommitURL links to a commit page under the repository web URL.
func CommitURL(remote string, commitHash string) string {
	return StripGitSuffix(remote) + commitPathSegmentConstant + commitHash
}
