package githubauth

import (
	"github.com/temirov/headwatch/internal/workflowenv"
)

// Environment variable names used by GitHub authentication helpers.
const (
	EnvGitHubToken    = "GITHUB_TOKEN"
	EnvGitHubCLIToken = "GH_TOKEN"
	EnvGitHubAPIToken = "GITHUB_API_TOKEN"
)

var tokenPreference = []string{
	EnvGitHubToken,
	EnvGitHubCLIToken,
	EnvGitHubAPIToken,
}

// ResolveToken returns the first non-blank GitHub token observed in the environment.
func ResolveToken(environment workflowenv.Environment) (string, bool) {
	for _, key := range tokenPreference {
		if value, found := workflowenv.LookupNonEmpty(environment, key); found {
			return value, true
		}
	}
	return "", false
}
