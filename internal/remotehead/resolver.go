package remotehead

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/headwatch/internal/execshell"
)

const (
	// ResolverKindGit selects the git command line resolver.
	ResolverKindGit = "git"
	// ResolverKindNative selects the in-process go-git resolver.
	ResolverKindNative = "native"

	gitLSRemoteSubcommandConstant        = "ls-remote"
	gitHeadReferenceConstant             = "HEAD"
	emptyOutputMessageConstant           = "remote did not advertise HEAD"
	unsupportedKindTemplateConstant      = "unsupported resolver %q (expected %s or %s)"
	executorNotConfiguredMessageConstant = "git resolver requires a shell executor"
)

var (
	// ErrHeadNotAdvertised indicates the remote answered without a HEAD reference.
	ErrHeadNotAdvertised = errors.New(emptyOutputMessageConstant)
	// ErrExecutorNotConfigured indicates the git resolver was requested without an executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
)

// Resolver reports the commit hash a remote advertises for HEAD.
type Resolver interface {
	ResolveHead(executionContext context.Context, remoteURL string) (string, error)
}

// GitExecutor runs git commands.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// GitCommandResolver queries remotes with `git ls-remote`.
type GitCommandResolver struct {
	executor GitExecutor
}

// NewGitCommandResolver constructs a GitCommandResolver.
func NewGitCommandResolver(executor GitExecutor) *GitCommandResolver {
	return &GitCommandResolver{executor: executor}
}

// ResolveHead runs `git ls-remote <url> HEAD` and returns the first field of the first output line.
func (resolver *GitCommandResolver) ResolveHead(executionContext context.Context, remoteURL string) (string, error) {
	if resolver.executor == nil {
		return "", ErrExecutorNotConfigured
	}
	result, executionError := resolver.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments: []string{gitLSRemoteSubcommandConstant, remoteURL, gitHeadReferenceConstant},
	})
	if executionError != nil {
		return "", executionError
	}
	return parseLSRemoteOutput(result.StandardOutput)
}

func parseLSRemoteOutput(output string) (string, error) {
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		return fields[0], nil
	}
	return "", ErrHeadNotAdvertised
}

// NewResolver selects a resolver by kind. A blank kind selects the git resolver.
func NewResolver(kind string, executor GitExecutor) (Resolver, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", ResolverKindGit:
		if executor == nil {
			return nil, ErrExecutorNotConfigured
		}
		return NewGitCommandResolver(executor), nil
	case ResolverKindNative:
		return NewNativeResolver(), nil
	default:
		return nil, fmt.Errorf(unsupportedKindTemplateConstant, kind, ResolverKindGit, ResolverKindNative)
	}
}
