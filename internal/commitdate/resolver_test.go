package commitdate_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/headwatch/internal/commitdate"
)

const (
	testRemoteURLConstant             = "https://github.com/owner/repo.git"
	testCommitHashConstant            = "deadbeefdeadbeefdeadbeefdeadbeefdeadbeef"
	testCommitterDateConstant         = "2024-05-30T08:00:00Z"
	testTokenConstant                 = "secret-token"
	testCommitPayloadTemplateConstant = `{"sha":"x","commit":{"author":{"date":"2024-01-01T00:00:00Z"},"committer":{"date":"%s"}}}`
)

type recordingHTTPClient struct {
	requests []*http.Request
	response *http.Response
	err      error
}

func (client *recordingHTTPClient) Do(request *http.Request) (*http.Response, error) {
	client.requests = append(client.requests, request)
	return client.response, client.err
}

func jsonResponse(statusCode int, body string) *http.Response {
	return &http.Response{StatusCode: statusCode, Body: io.NopCloser(strings.NewReader(body)), Header: http.Header{}}
}

func TestResolveCommitDateBuildsRequest(testInstance *testing.T) {
	testCases := []struct {
		name                  string
		token                 string
		expectedAuthorization string
	}{
		{name: "with_token", token: testTokenConstant, expectedAuthorization: "Bearer " + testTokenConstant},
		{name: "without_token"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			client := &recordingHTTPClient{response: jsonResponse(http.StatusOK, fmt.Sprintf(testCommitPayloadTemplateConstant, testCommitterDateConstant))}
			resolver := commitdate.NewResolver(zap.NewNop(), client, commitdate.Configuration{Token: testCase.token})

			date, resolved := resolver.ResolveCommitDate(context.Background(), testRemoteURLConstant, testCommitHashConstant)

			require.True(subtest, resolved)
			require.Equal(subtest, testCommitterDateConstant, date)
			require.Len(subtest, client.requests, 1)
			request := client.requests[0]
			require.Equal(subtest, http.MethodGet, request.Method)
			require.Equal(subtest, "https://api.github.com/repos/owner/repo/commits/"+testCommitHashConstant, request.URL.String())
			require.Equal(subtest, "application/vnd.github+json", request.Header.Get("Accept"))
			require.Equal(subtest, testCase.expectedAuthorization, request.Header.Get("Authorization"))
		})
	}
}

func TestResolveCommitDateSkipsForeignHosts(testInstance *testing.T) {
	testCases := []struct {
		name      string
		remoteURL string
	}{
		{name: "gitlab", remoteURL: "https://gitlab.com/group/project.git"},
		{name: "unparsable", remoteURL: "/srv/git/project.git"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			client := &recordingHTTPClient{err: errors.New("must not be called")}
			resolver := commitdate.NewResolver(zap.NewNop(), client, commitdate.Configuration{})

			date, resolved := resolver.ResolveCommitDate(context.Background(), testCase.remoteURL, testCommitHashConstant)

			require.False(subtest, resolved)
			require.Empty(subtest, date)
			require.Empty(subtest, client.requests)
		})
	}
}

func TestResolveCommitDateAcceptsSSHRemotesOnForge(testInstance *testing.T) {
	client := &recordingHTTPClient{response: jsonResponse(http.StatusOK, fmt.Sprintf(testCommitPayloadTemplateConstant, testCommitterDateConstant))}
	resolver := commitdate.NewResolver(zap.NewNop(), client, commitdate.Configuration{})

	date, resolved := resolver.ResolveCommitDate(context.Background(), "git@GitHub.com:owner/repo.git", testCommitHashConstant)

	require.True(testInstance, resolved)
	require.Equal(testInstance, testCommitterDateConstant, date)
	require.Equal(testInstance, "https://api.github.com/repos/owner/repo/commits/"+testCommitHashConstant, client.requests[0].URL.String())
}

func TestResolveCommitDateFailuresAreUnresolved(testInstance *testing.T) {
	testCases := []struct {
		name       string
		response   *http.Response
		clientErr  error
		logMessage string
	}{
		{name: "not_found", response: jsonResponse(http.StatusNotFound, `{"message":"Not Found"}`), logMessage: "Commit date request returned an error status"},
		{name: "rate_limited", response: jsonResponse(http.StatusForbidden, `{}`), logMessage: "Commit date request returned an error status"},
		{name: "network_error", clientErr: errors.New("connection refused"), logMessage: "Commit date request failed"},
		{name: "malformed_json", response: jsonResponse(http.StatusOK, `{"commit":`), logMessage: "Unable to decode commit date response"},
		{name: "missing_date", response: jsonResponse(http.StatusOK, `{"commit":{"committer":{}}}`), logMessage: "Commit date response did not include a committer date"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			core, observedLogs := observer.New(zapcore.DebugLevel)
			client := &recordingHTTPClient{response: testCase.response, err: testCase.clientErr}
			resolver := commitdate.NewResolver(zap.New(core), client, commitdate.Configuration{})

			date, resolved := resolver.ResolveCommitDate(context.Background(), testRemoteURLConstant, testCommitHashConstant)

			require.False(subtest, resolved)
			require.Empty(subtest, date)
			require.Equal(subtest, 1, observedLogs.FilterMessage(testCase.logMessage).Len())
		})
	}
}

func TestResolveCommitDateAgainstServer(testInstance *testing.T) {
	var observedPath string
	var observedAuthorization string
	server := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		observedPath = request.URL.Path
		observedAuthorization = request.Header.Get("Authorization")
		responseWriter.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(responseWriter, fmt.Sprintf(testCommitPayloadTemplateConstant, testCommitterDateConstant))
	}))
	defer server.Close()

	resolver := commitdate.NewResolver(zap.NewNop(), server.Client(), commitdate.Configuration{
		APIBaseURL: server.URL + "/",
		Token:      testTokenConstant,
	})

	date, resolved := resolver.ResolveCommitDate(context.Background(), testRemoteURLConstant, testCommitHashConstant)

	require.True(testInstance, resolved)
	require.Equal(testInstance, testCommitterDateConstant, date)
	require.Equal(testInstance, "/repos/owner/repo/commits/"+testCommitHashConstant, observedPath)
	require.Equal(testInstance, "Bearer "+testTokenConstant, observedAuthorization)
}

func TestResolveCommitDateTimesOut(testInstance *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		select {
		case <-request.Context().Done():
		case <-release:
		}
	}))
	defer server.Close()
	defer close(release)

	resolver := commitdate.NewResolver(zap.NewNop(), server.Client(), commitdate.Configuration{
		APIBaseURL:     server.URL,
		RequestTimeout: 50 * time.Millisecond,
	})

	startedAt := time.Now()
	date, resolved := resolver.ResolveCommitDate(context.Background(), testRemoteURLConstant, testCommitHashConstant)

	require.False(testInstance, resolved)
	require.Empty(testInstance, date)
	require.Less(testInstance, time.Since(startedAt), 5*time.Second)
}
