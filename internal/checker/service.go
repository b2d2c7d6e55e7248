package checker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"go.uber.org/zap"

	"github.com/temirov/headwatch/internal/gitrepo"
	"github.com/temirov/headwatch/internal/manifest"
	"github.com/temirov/headwatch/internal/remotehead"
	"github.com/temirov/headwatch/internal/ui"
	"github.com/temirov/headwatch/internal/workflowenv"
)

const (
	shouldRunOutputKeyConstant = "should_run"

	reportHeadingConstant          = "Checking for updates..."
	reportCheckingTemplateConstant = "Checking %s (%s)..."
	reportUpdateTemplateConstant   = "  UPDATE FOUND: %s %s -> %s"
	reportCurrentTemplateConstant  = "  Up to date: %s"
	reportSummaryTemplateConstant  = "Summary: Manual=%s, Updates=%s => Run=%s"
	reportLineTemplateConstant     = "%s\n"
	summaryTrueLiteralConstant     = "True"
	summaryFalseLiteralConstant    = "False"

	manifestLoadErrorTemplateConstant = "unable to load manifest: %w"
	outputSinkErrorTemplateConstant   = "unable to open workflow outputs: %w"
	outputWriteErrorTemplateConstant  = "unable to write workflow outputs: %w"
	remoteQueryErrorTemplateConstant  = "unable to query HEAD of repository %q: %v"

	resolverMissingMessageConstant    = "checker requires a remote head resolver"
	environmentMissingMessageConstant = "checker requires an environment"

	checkStartedMessageConstant      = "Checking tracked repositories"
	repositoryCheckedMessageConstant = "Checked repository"
	checkCompletedMessageConstant    = "Update check completed"

	logFieldManifestConstant        = "manifest"
	logFieldRepositoryConstant      = "repository"
	logFieldRemoteConstant          = "remote"
	logFieldStoredCommitConstant    = "stored_commit"
	logFieldRemoteCommitConstant    = "remote_commit"
	logFieldChangedConstant         = "changed"
	logFieldRepositoryCountConstant = "repository_count"
	logFieldUpdatesFoundConstant    = "updates_found"
	logFieldManualConstant          = "manual"
	logFieldShouldRunConstant       = "should_run"
)

var (
	// ErrResolverNotConfigured indicates the service was built without a resolver.
	ErrResolverNotConfigured = errors.New(resolverMissingMessageConstant)
	// ErrEnvironmentNotConfigured indicates the service was built without an environment.
	ErrEnvironmentNotConfigured = errors.New(environmentMissingMessageConstant)
)

// RemoteQueryError reports the repository whose HEAD could not be resolved.
type RemoteQueryError struct {
	Repository string
	Cause      error
}

// Error describes the failed query.
func (queryError RemoteQueryError) Error() string {
	return fmt.Sprintf(remoteQueryErrorTemplateConstant, queryError.Repository, queryError.Cause)
}

// Unwrap exposes the resolver failure.
func (queryError RemoteQueryError) Unwrap() error {
	return queryError.Cause
}

// Options configures a single check run.
type Options struct {
	ManifestPath      string
	EventNameVariable string
	ManualEvents      []string
	OutputVariable    string
	ForceManual       bool
}

// RepositoryStatus describes one tracked repository after its HEAD was queried.
type RepositoryStatus struct {
	Name         string
	URL          string
	StoredCommit string
	RemoteCommit string
	Changed      bool
}

// Result summarizes a check run.
type Result struct {
	Repositories     []RepositoryStatus
	UpdatesFound     bool
	ManualInvocation bool
	ShouldRun        bool
}

// Dependencies groups the collaborators of Service.
type Dependencies struct {
	Logger       *zap.Logger
	Resolver     remotehead.Resolver
	Environment  workflowenv.Environment
	ReportWriter io.Writer
	ColorEnabled bool
}

// Service runs update checks.
type Service struct {
	logger       *zap.Logger
	resolver     remotehead.Resolver
	environment  workflowenv.Environment
	reportWriter io.Writer
	palette      ui.ReportPalette
}

// NewService validates dependencies and constructs a Service.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.Resolver == nil {
		return nil, ErrResolverNotConfigured
	}
	if dependencies.Environment == nil {
		return nil, ErrEnvironmentNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	reportWriter := dependencies.ReportWriter
	if reportWriter == nil {
		reportWriter = io.Discard
	}
	return &Service{
		logger:       logger,
		resolver:     dependencies.Resolver,
		environment:  dependencies.Environment,
		reportWriter: reportWriter,
		palette:      ui.NewReportPalette(dependencies.ColorEnabled),
	}, nil
}

// Run queries every tracked repository in manifest order and publishes the outputs.
func (service *Service) Run(executionContext context.Context, options Options) (Result, error) {
	trackedVersions, loadError := manifest.Load(options.ManifestPath)
	if loadError != nil {
		return Result{}, fmt.Errorf(manifestLoadErrorTemplateConstant, loadError)
	}

	service.logger.Info(checkStartedMessageConstant,
		zap.String(logFieldManifestConstant, options.ManifestPath),
		zap.Int(logFieldRepositoryCountConstant, len(trackedVersions.Repositories)),
	)
	service.report(service.palette.Heading(reportHeadingConstant))

	result := Result{Repositories: make([]RepositoryStatus, 0, len(trackedVersions.Repositories))}
	for _, repository := range trackedVersions.Repositories {
		service.report(service.palette.Muted(fmt.Sprintf(reportCheckingTemplateConstant, repository.Name, repository.URL)))

		remoteCommit, resolveError := service.resolver.ResolveHead(executionContext, repository.URL)
		if resolveError != nil {
			return Result{}, RemoteQueryError{Repository: repository.Name, Cause: resolveError}
		}

		status := RepositoryStatus{
			Name:         repository.Name,
			URL:          repository.URL,
			StoredCommit: repository.Commit,
			RemoteCommit: remoteCommit,
			Changed:      remoteCommit != repository.Commit,
		}
		result.Repositories = append(result.Repositories, status)

		if status.Changed {
			result.UpdatesFound = true
			service.report(service.palette.Update(fmt.Sprintf(reportUpdateTemplateConstant, status.Name, gitrepo.ShortHash(status.StoredCommit), gitrepo.ShortHash(status.RemoteCommit))))
		} else {
			service.report(service.palette.Current(fmt.Sprintf(reportCurrentTemplateConstant, gitrepo.ShortHash(status.RemoteCommit))))
		}

		service.logger.Debug(repositoryCheckedMessageConstant,
			zap.String(logFieldRepositoryConstant, status.Name),
			zap.String(logFieldRemoteConstant, status.URL),
			zap.String(logFieldStoredCommitConstant, status.StoredCommit),
			zap.String(logFieldRemoteCommitConstant, status.RemoteCommit),
			zap.Bool(logFieldChangedConstant, status.Changed),
		)
	}

	result.ManualInvocation = options.ForceManual || service.isManualEvent(options)
	result.ShouldRun = result.ManualInvocation || result.UpdatesFound

	service.report(service.palette.Heading(fmt.Sprintf(reportSummaryTemplateConstant,
		formatReportBoolean(result.ManualInvocation),
		formatReportBoolean(result.UpdatesFound),
		formatReportBoolean(result.ShouldRun),
	)))

	if publishError := service.publishOutputs(options, result); publishError != nil {
		return Result{}, publishError
	}

	service.logger.Info(checkCompletedMessageConstant,
		zap.Bool(logFieldUpdatesFoundConstant, result.UpdatesFound),
		zap.Bool(logFieldManualConstant, result.ManualInvocation),
		zap.Bool(logFieldShouldRunConstant, result.ShouldRun),
	)
	return result, nil
}

func (service *Service) isManualEvent(options Options) bool {
	eventName, present := workflowenv.LookupNonEmpty(service.environment, options.EventNameVariable)
	if !present {
		return false
	}
	for _, manualEvent := range options.ManualEvents {
		if eventName == manualEvent {
			return true
		}
	}
	return false
}

func (service *Service) publishOutputs(options Options, result Result) (publishError error) {
	sink, sinkError := workflowenv.ResolveOutputSink(service.environment, options.OutputVariable, service.reportWriter)
	if sinkError != nil {
		return fmt.Errorf(outputSinkErrorTemplateConstant, sinkError)
	}
	defer func() {
		if closeError := sink.Close(); closeError != nil && publishError == nil {
			publishError = fmt.Errorf(outputWriteErrorTemplateConstant, closeError)
		}
	}()

	for _, status := range result.Repositories {
		if writeError := sink.WriteOutput(workflowenv.OutputKey(status.Name), status.RemoteCommit); writeError != nil {
			return fmt.Errorf(outputWriteErrorTemplateConstant, writeError)
		}
	}
	if writeError := sink.WriteOutput(shouldRunOutputKeyConstant, strconv.FormatBool(result.ShouldRun)); writeError != nil {
		return fmt.Errorf(outputWriteErrorTemplateConstant, writeError)
	}
	return nil
}

func (service *Service) report(line string) {
	fmt.Fprintf(service.reportWriter, reportLineTemplateConstant, line)
}

func formatReportBoolean(value bool) string {
	if value {
		return summaryTrueLiteralConstant
	}
	return summaryFalseLiteralConstant
}
