package gitrepo

import (
	"fmt"
	"strings"
)

const (
	sshProtocolPrefixConstant           = "ssh://"
	sshUserDelimiterConstant            = "@"
	sshPathDelimiterConstant            = ":"
	httpsProtocolPrefixConstant         = "https://"
	httpProtocolPrefixConstant          = "http://"
	gitUserPrefixConstant               = "git@"
	pathSeparatorConstant               = "/"
	gitSuffixConstant                   = ".git"
	remoteURLParseErrorTemplateConstant = "%s: %s"
	invalidRemoteURLMessageConstant     = "invalid remote url"
	requiredValueMessageConstant        = "value required"
)

// RemoteProtocol enumerates supported git remote protocols.
type RemoteProtocol string

// Supported remote protocols.
const (
	RemoteProtocolSSH   RemoteProtocol = RemoteProtocol("ssh")
	RemoteProtocolHTTPS RemoteProtocol = RemoteProtocol("https")
	RemoteProtocolHTTP  RemoteProtocol = RemoteProtocol("http")
)

// RemoteURL represents a structured git remote URL.
type RemoteURL struct {
	Protocol   RemoteProtocol
	Host       string
	Owner      string
	Repository string
}

// RemoteURLParseError indicates a remote string could not be parsed.
type RemoteURLParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError RemoteURLParseError) Error() string {
	return fmt.Sprintf(remoteURLParseErrorTemplateConstant, parseError.Input, parseError.Message)
}

// ParseRemoteURL converts a textual remote URL into a structured representation.
func ParseRemoteURL(remote string) (RemoteURL, error) {
	trimmedRemote := strings.TrimSpace(remote)
	if len(trimmedRemote) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: requiredValueMessageConstant}
	}

	lowerRemote := strings.ToLower(trimmedRemote)
	switch {
	case strings.HasPrefix(lowerRemote, sshProtocolPrefixConstant):
		return parseSSHRemote(trimmedRemote[len(sshProtocolPrefixConstant):], true)
	case strings.HasPrefix(lowerRemote, gitUserPrefixConstant):
		return parseSSHRemote(trimmedRemote, false)
	case strings.HasPrefix(lowerRemote, httpsProtocolPrefixConstant):
		return parseHTTPRemote(trimmedRemote[len(httpsProtocolPrefixConstant):], RemoteProtocolHTTPS)
	case strings.HasPrefix(lowerRemote, httpProtocolPrefixConstant):
		return parseHTTPRemote(trimmedRemote[len(httpProtocolPrefixConstant):], RemoteProtocolHTTP)
	}

	return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
}

// MatchesHost reports whether the remote is hosted on the provided host, ignoring case and ports.
func (remote RemoteURL) MatchesHost(host string) bool {
	remoteHost := remote.Host
	if portIndex := strings.LastIndex(remoteHost, sshPathDelimiterConstant); portIndex != -1 {
		remoteHost = remoteHost[:portIndex]
	}
	return len(strings.TrimSpace(host)) > 0 && strings.EqualFold(remoteHost, strings.TrimSpace(host))
}

// Slug returns the owner/repository path segment.
func (remote RemoteURL) Slug() string {
	return remote.Owner + pathSeparatorConstant + remote.Repository
}

// parseSSHRemote accepts user@host:owner/repo, or user@host[:port]/owner/repo when urlForm is set.
func parseSSHRemote(remote string, urlForm bool) (RemoteURL, error) {
	userSplitIndex := strings.Index(remote, sshUserDelimiterConstant)
	if userSplitIndex == -1 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
	}
	hostAndPath := remote[userSplitIndex+1:]
	var host string
	var path string
	slashIndex := strings.Index(hostAndPath, pathSeparatorConstant)
	pathSplitIndex := strings.Index(hostAndPath, sshPathDelimiterConstant)
	if urlForm || pathSplitIndex == -1 {
		if slashIndex == -1 {
			return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
		}
		host = hostAndPath[:slashIndex]
		if portIndex := strings.Index(host, sshPathDelimiterConstant); portIndex != -1 {
			host = host[:portIndex]
		}
		path = hostAndPath[slashIndex+1:]
	} else {
		host = hostAndPath[:pathSplitIndex]
		path = hostAndPath[pathSplitIndex+1:]
	}
	owner, repository, parseError := splitOwnerAndRepository(path)
	if parseError != nil {
		return RemoteURL{}, parseError
	}
	return RemoteURL{Protocol: RemoteProtocolSSH, Host: host, Owner: owner, Repository: repository}, nil
}

func parseHTTPRemote(remote string, protocol RemoteProtocol) (RemoteURL, error) {
	pathComponents := strings.Split(strings.TrimSuffix(remote, pathSeparatorConstant), pathSeparatorConstant)
	if len(pathComponents) < 3 || len(pathComponents[0]) == 0 || len(pathComponents[1]) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
	}
	host := pathComponents[0]
	if userSplitIndex := strings.LastIndex(host, sshUserDelimiterConstant); userSplitIndex != -1 {
		host = host[userSplitIndex+1:]
	}
	owner := pathComponents[1]
	repository, parseError := normalizeRepositoryName(strings.Join(pathComponents[2:], pathSeparatorConstant))
	if parseError != nil {
		return RemoteURL{}, parseError
	}
	return RemoteURL{Protocol: protocol, Host: host, Owner: owner, Repository: repository}, nil
}

func splitOwnerAndRepository(path string) (string, string, error) {
	segments := strings.Split(strings.TrimPrefix(path, pathSeparatorConstant), pathSeparatorConstant)
	if len(segments) != 2 || len(segments[0]) == 0 {
		return "", "", RemoteURLParseError{Input: path, Message: invalidRemoteURLMessageConstant}
	}
	repository, parseError := normalizeRepositoryName(segments[1])
	if parseError != nil {
		return "", "", parseError
	}
	return segments[0], repository, nil
}

func normalizeRepositoryName(repository string) (string, error) {
	trimmed := strings.TrimSuffix(repository, gitSuffixConstant)
	if len(trimmed) == 0 {
		return "", RemoteURLParseError{Input: repository, Message: invalidRemoteURLMessageConstant}
	}
	return trimmed, nil
}
