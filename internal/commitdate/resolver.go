package commitdate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/headwatch/internal/gitrepo"
)

const (
	// DefaultForgeHost is the host whose repositories have their commit dates looked up.
	DefaultForgeHost = "github.com"
	// DefaultAPIBaseURL is the REST API root used for lookups.
	DefaultAPIBaseURL = "https://api.github.com"
	// DefaultRequestTimeout bounds a single lookup.
	DefaultRequestTimeout = 10 * time.Second

	commitEndpointTemplateConstant   = "%s/repos/%s/commits/%s"
	acceptHeaderNameConstant         = "Accept"
	acceptHeaderValueConstant        = "application/vnd.github+json"
	authorizationHeaderNameConstant  = "Authorization"
	bearerTokenTemplateConstant      = "Bearer %s"
	httpErrorStatusThresholdConstant = 400

	unsupportedHostMessageConstant    = "Skipping commit date lookup for remote outside the forge"
	unparsableRemoteMessageConstant   = "Skipping commit date lookup for unparsable remote"
	requestBuildFailedMessageConstant = "Unable to build commit date request"
	requestFailedMessageConstant      = "Commit date request failed"
	unexpectedStatusMessageConstant   = "Commit date request returned an error status"
	decodeFailedMessageConstant       = "Unable to decode commit date response"
	missingDateMessageConstant        = "Commit date response did not include a committer date"
	resolvedMessageConstant           = "Resolved commit date"

	logFieldRemoteConstant   = "remote"
	logFieldCommitConstant   = "commit"
	logFieldEndpointConstant = "endpoint"
	logFieldStatusConstant   = "status"
	logFieldDateConstant     = "date"
	logFieldHostConstant     = "forge_host"
)

// HTTPClient issues HTTP requests.
type HTTPClient interface {
	Do(request *http.Request) (*http.Response, error)
}

// Configuration describes where and how commit dates are looked up.
type Configuration struct {
	ForgeHost      string
	APIBaseURL     string
	RequestTimeout time.Duration
	Token          string
}

// Resolver performs commit date lookups.
type Resolver struct {
	logger        *zap.Logger
	client        HTTPClient
	configuration Configuration
}

type commitResponse struct {
	Commit struct {
		Committer struct {
			Date string `json:"date"`
		} `json:"committer"`
	} `json:"commit"`
}

// NewResolver constructs a Resolver. Blank configuration values fall back to the package defaults.
func NewResolver(logger *zap.Logger, client HTTPClient, configuration Configuration) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if client == nil {
		client = http.DefaultClient
	}
	if len(strings.TrimSpace(configuration.ForgeHost)) == 0 {
		configuration.ForgeHost = DefaultForgeHost
	}
	if len(strings.TrimSpace(configuration.APIBaseURL)) == 0 {
		configuration.APIBaseURL = DefaultAPIBaseURL
	}
	if configuration.RequestTimeout <= 0 {
		configuration.RequestTimeout = DefaultRequestTimeout
	}
	configuration.APIBaseURL = strings.TrimRight(strings.TrimSpace(configuration.APIBaseURL), "/")
	configuration.Token = strings.TrimSpace(configuration.Token)
	return &Resolver{logger: logger, client: client, configuration: configuration}
}

// ResolveCommitDate returns the committer date of the commit, or false when it cannot be determined.
func (resolver *Resolver) ResolveCommitDate(executionContext context.Context, remoteURL string, commitHash string) (string, bool) {
	logFields := []zap.Field{zap.String(logFieldRemoteConstant, remoteURL), zap.String(logFieldCommitConstant, commitHash)}

	remote, parseError := gitrepo.ParseRemoteURL(remoteURL)
	if parseError != nil {
		resolver.logger.Debug(unparsableRemoteMessageConstant, append(logFields, zap.Error(parseError))...)
		return "", false
	}
	if !remote.MatchesHost(resolver.configuration.ForgeHost) {
		resolver.logger.Debug(unsupportedHostMessageConstant, append(logFields, zap.String(logFieldHostConstant, resolver.configuration.ForgeHost))...)
		return "", false
	}

	endpoint := fmt.Sprintf(commitEndpointTemplateConstant, resolver.configuration.APIBaseURL, remote.Slug(), strings.TrimSpace(commitHash))
	logFields = append(logFields, zap.String(logFieldEndpointConstant, endpoint))

	requestContext, cancel := context.WithTimeout(executionContext, resolver.configuration.RequestTimeout)
	defer cancel()

	request, requestError := http.NewRequestWithContext(requestContext, http.MethodGet, endpoint, nil)
	if requestError != nil {
		resolver.logger.Debug(requestBuildFailedMessageConstant, append(logFields, zap.Error(requestError))...)
		return "", false
	}
	request.Header.Set(acceptHeaderNameConstant, acceptHeaderValueConstant)
	if len(resolver.configuration.Token) > 0 {
		request.Header.Set(authorizationHeaderNameConstant, fmt.Sprintf(bearerTokenTemplateConstant, resolver.configuration.Token))
	}

	response, responseError := resolver.client.Do(request)
	if responseError != nil {
		resolver.logger.Debug(requestFailedMessageConstant, append(logFields, zap.Error(responseError))...)
		return "", false
	}
	defer response.Body.Close()

	if response.StatusCode >= httpErrorStatusThresholdConstant {
		resolver.logger.Debug(unexpectedStatusMessageConstant, append(logFields, zap.Int(logFieldStatusConstant, response.StatusCode))...)
		return "", false
	}

	var payload commitResponse
	if decodeError := json.NewDecoder(response.Body).Decode(&payload); decodeError != nil {
		resolver.logger.Debug(decodeFailedMessageConstant, append(logFields, zap.Error(decodeError))...)
		return "", false
	}

	committerDate := strings.TrimSpace(payload.Commit.Committer.Date)
	if len(committerDate) == 0 {
		resolver.logger.Debug(missingDateMessageConstant, logFields...)
		return "", false
	}

	resolver.logger.Debug(resolvedMessageConstant, append(logFields, zap.String(logFieldDateConstant, committerDate))...)
	return committerDate, true
}
