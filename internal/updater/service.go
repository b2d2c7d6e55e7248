package updater

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/headwatch/internal/gitrepo"
	"github.com/temirov/headwatch/internal/manifest"
	"github.com/temirov/headwatch/internal/releasenotes"
	"github.com/temirov/headwatch/internal/workflowenv"
)

const (
	manifestLoadErrorTemplateConstant  = "unable to load manifest: %w"
	manifestSaveErrorTemplateConstant  = "unable to save manifest %s: %w"
	releaseNotesErrorTemplateConstant  = "unable to write release notes %s: %w"
	dateResolverMissingMessageConstant = "updater requires a commit date resolver"
	environmentMissingMessageConstant  = "updater requires an environment"
	repositoryUpdatedMessageConstant   = "Recorded new commit"
	repositoryUnchangedMessageConstant = "No new commit supplied; keeping recorded commit"
	dateFallbackMessageConstant        = "Commit date unavailable; using current time"
	manifestSavedMessageConstant       = "Manifest updated"
	releaseNotesWrittenMessageConstant = "Release notes written"
	logFieldRepositoryConstant         = "repository"
	logFieldVariableConstant           = "variable"
	logFieldCommitConstant             = "commit"
	logFieldShortCommitConstant        = "short_commit"
	logFieldDateConstant               = "date"
	logFieldPathConstant               = "path"
	logFieldUpdatedCountConstant       = "updated"
	logFieldUnchangedCountConstant     = "unchanged"
	logFieldLastRunConstant            = "last_run_utc"
)

var (
	// ErrDateResolverNotConfigured indicates the service was built without a commit date resolver.
	ErrDateResolverNotConfigured = errors.New(dateResolverMissingMessageConstant)
	// ErrEnvironmentNotConfigured indicates the service was built without an environment.
	ErrEnvironmentNotConfigured = errors.New(environmentMissingMessageConstant)
)

// CommitDateResolver resolves the timestamp of a commit on a remote.
type CommitDateResolver interface {
	ResolveCommitDate(executionContext context.Context, remoteURL string, commitHash string) (string, bool)
}

// Clock returns the current time.
type Clock func() time.Time

// Options configures a single update run.
type Options struct {
	ManifestPath     string
	ReleaseNotesPath string
}

// Result lists repository names by outcome, in manifest order.
type Result struct {
	Updated   []string
	Unchanged []string
}

// Dependencies groups the collaborators of Service.
type Dependencies struct {
	Logger       *zap.Logger
	DateResolver CommitDateResolver
	Environment  workflowenv.Environment
	Clock        Clock
}

// Service records new upstream commits.
type Service struct {
	logger       *zap.Logger
	dateResolver CommitDateResolver
	environment  workflowenv.Environment
	clock        Clock
}

// NewService validates dependencies and constructs a Service.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.DateResolver == nil {
		return nil, ErrDateResolverNotConfigured
	}
	if dependencies.Environment == nil {
		return nil, ErrEnvironmentNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := dependencies.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Service{logger: logger, dateResolver: dependencies.DateResolver, environment: dependencies.Environment, clock: clock}, nil
}

// Run applies the SHA_<NAME> values from the environment, stamps last_run_utc, saves the manifest,
// and regenerates the release notes.
func (service *Service) Run(executionContext context.Context, options Options) (Result, error) {
	trackedVersions, loadError := manifest.Load(options.ManifestPath)
	if loadError != nil {
		return Result{}, fmt.Errorf(manifestLoadErrorTemplateConstant, loadError)
	}

	result := Result{}
	for _, repository := range trackedVersions.Repositories {
		variableName := workflowenv.EnvironmentKey(repository.Name)

		newCommit, supplied := workflowenv.LookupNonEmpty(service.environment, variableName)
		if !supplied {
			service.logger.Info(repositoryUnchangedMessageConstant,
				zap.String(logFieldRepositoryConstant, repository.Name),
				zap.String(logFieldVariableConstant, variableName),
			)
			result.Unchanged = append(result.Unchanged, repository.Name)
			continue
		}

		repository.Commit = newCommit
		committedAt, resolved := service.dateResolver.ResolveCommitDate(executionContext, repository.URL, newCommit)
		if !resolved {
			committedAt = manifest.FormatTimestamp(service.clock())
			service.logger.Debug(dateFallbackMessageConstant,
				zap.String(logFieldRepositoryConstant, repository.Name),
				zap.String(logFieldDateConstant, committedAt),
			)
		}
		repository.Date = committedAt

		service.logger.Info(repositoryUpdatedMessageConstant,
			zap.String(logFieldRepositoryConstant, repository.Name),
			zap.String(logFieldCommitConstant, newCommit),
			zap.String(logFieldShortCommitConstant, gitrepo.ShortHash(newCommit)),
			zap.String(logFieldDateConstant, committedAt),
		)
		if replaceError := trackedVersions.ReplaceRepository(repository); replaceError != nil {
			return Result{}, replaceError
		}
		result.Updated = append(result.Updated, repository.Name)
	}

	trackedVersions.LastRunUTC = manifest.FormatTimestamp(service.clock())

	renderedNotes, renderError := releasenotes.RenderBytes(trackedVersions)
	if renderError != nil {
		return Result{}, fmt.Errorf(releaseNotesErrorTemplateConstant, options.ReleaseNotesPath, renderError)
	}

	if saveError := manifest.Save(options.ManifestPath, trackedVersions); saveError != nil {
		return Result{}, fmt.Errorf(manifestSaveErrorTemplateConstant, options.ManifestPath, saveError)
	}
	service.logger.Info(manifestSavedMessageConstant,
		zap.String(logFieldPathConstant, options.ManifestPath),
		zap.String(logFieldLastRunConstant, trackedVersions.LastRunUTC),
		zap.Int(logFieldUpdatedCountConstant, len(result.Updated)),
		zap.Int(logFieldUnchangedCountConstant, len(result.Unchanged)),
	)

	if writeError := releasenotes.WriteRendered(options.ReleaseNotesPath, renderedNotes); writeError != nil {
		return Result{}, writeError
	}
	service.logger.Info(releaseNotesWrittenMessageConstant, zap.String(logFieldPathConstant, options.ReleaseNotesPath))

	return result, nil
}
