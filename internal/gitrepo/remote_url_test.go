package gitrepo_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/headwatch/internal/gitrepo"
)

func TestParseRemoteURL(testInstance *testing.T) {
	testCases := []struct {
		name        string
		input       string
		expected    gitrepo.RemoteURL
		expectError bool
	}{
		{
			name:     "https_with_git_suffix",
			input:    "https://github.com/owner/repo.git",
			expected: gitrepo.RemoteURL{Protocol: gitrepo.RemoteProtocolHTTPS, Host: "github.com", Owner: "owner", Repository: "repo"},
		},
		{
			name:     "https_without_suffix",
			input:    "https://github.com/owner/repo",
			expected: gitrepo.RemoteURL{Protocol: gitrepo.RemoteProtocolHTTPS, Host: "github.com", Owner: "owner", Repository: "repo"},
		},
		{
			name:     "http_with_credentials",
			input:    "http://user@git.example.org/group/tool/",
			expected: gitrepo.RemoteURL{Protocol: gitrepo.RemoteProtocolHTTP, Host: "git.example.org", Owner: "group", Repository: "tool"},
		},
		{
			name:     "scp_like_ssh",
			input:    "git@github.com:owner/repo.git",
			expected: gitrepo.RemoteURL{Protocol: gitrepo.RemoteProtocolSSH, Host: "github.com", Owner: "owner", Repository: "repo"},
		},
		{
			name:     "ssh_url_with_port",
			input:    "ssh://git@github.com:22/owner/repo.git",
			expected: gitrepo.RemoteURL{Protocol: gitrepo.RemoteProtocolSSH, Host: "github.com", Owner: "owner", Repository: "repo"},
		},
		{
			name:        "empty",
			input:       "  ",
			expectError: true,
		},
		{
			name:        "missing_repository",
			input:       "https://github.com/owner",
			expectError: true,
		},
		{
			name:        "unsupported_scheme",
			input:       "file:///srv/git/repo.git",
			expectError: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			parsed, parseError := gitrepo.ParseRemoteURL(testCase.input)
			if testCase.expectError {
				require.Error(testInstance, parseError)
				require.IsType(testInstance, gitrepo.RemoteURLParseError{}, parseError)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expected, parsed)
		})
	}
}

func TestRemoteURLMatchesHost(testInstance *testing.T) {
	parsed, parseError := gitrepo.ParseRemoteURL("https://GitHub.com:443/owner/repo")
	require.NoError(testInstance, parseError)

	require.True(testInstance, parsed.MatchesHost("github.com"))
	require.False(testInstance, parsed.MatchesHost("gitlab.com"))
	require.False(testInstance, parsed.MatchesHost(""))
	require.Equal(testInstance, "owner/repo", parsed.Slug())
}

func TestLinkHelpers(testInstance *testing.T) {
	require.Equal(testInstance, "https://github.com/x/y", gitrepo.StripGitSuffix("https://github.com/x/y.git"))
	require.Equal(testInstance, "https://github.com/x/y", gitrepo.StripGitSuffix("https://github.com/x/y/"))
	require.Equal(testInstance, "https://github.com/x/y.github.io", gitrepo.StripGitSuffix("https://github.com/x/y.github.io"))
	require.Equal(testInstance, "abc1234", gitrepo.ShortHash("abc1234def5678"))
	require.Equal(testInstance, "abc", gitrepo.ShortHash("abc"))
	require.Equal(testInstance, "https://github.com/x/y/commit/abc1234def", gitrepo.CommitURL("https://github.com/x/y.git", "abc1234def"))
}
