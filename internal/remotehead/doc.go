// Package remotehead resolves the commit a remote repository currently advertises as HEAD.
//
// Two resolvers are available: GitCommandResolver shells out to `git ls-remote <url> HEAD`, and
// NativeResolver speaks the Git wire protocol in-process through go-git. Neither applies a timeout.
package remotehead
