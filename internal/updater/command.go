package updater

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/headwatch/internal/commitdate"
	"github.com/temirov/headwatch/internal/githubauth"
	"github.com/temirov/headwatch/internal/workflowenv"
)

const (
	commandUseConstant                    = "update"
	commandShortDescriptionConstant       = "Record new upstream commits and regenerate release notes"
	commandLongDescriptionConstant        = "update reads SHA_<NAME> variables produced by the check step, records the new commits and their dates in the version manifest, and rewrites the release notes table."
	commandExecutionErrorTemplateConstant = "manifest update failed: %w"
	unexpectedArgumentsMessageConstant    = "update does not accept positional arguments"
	flagManifestNameConstant              = "manifest"
	flagManifestDescriptionConstant       = "Path to the version manifest"
	flagReleaseNotesNameConstant          = "release-notes"
	flagReleaseNotesDescriptionConstant   = "Path of the generated release notes"
	updateSummaryMessageConstant          = "Manifest update finished"
	logFieldUpdatedRepositoriesConstant   = "updated_repositories"
	logFieldUnchangedRepositoriesConstant = "unchanged_repositories"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current update configuration.
type ConfigurationProvider func() CommandConfiguration

// EnvironmentProvider returns the environment the workflow supplied.
type EnvironmentProvider func() workflowenv.Environment

// CommandBuilder assembles the Cobra command for manifest updates.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	EnvironmentProvider   EnvironmentProvider
	HTTPClient            commitdate.HTTPClient
	DateResolver          CommitDateResolver
	Clock                 Clock
}

// Build constructs the update command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(flagManifestNameConstant, "", flagManifestDescriptionConstant)
	command.Flags().String(flagReleaseNotesNameConstant, "", flagReleaseNotesDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	configuration := builder.resolveConfiguration()
	manifestFlagValue, _ := command.Flags().GetString(flagManifestNameConstant)
	releaseNotesFlagValue, _ := command.Flags().GetString(flagReleaseNotesNameConstant)
	options := Options{
		ManifestPath:     selectStringValue(manifestFlagValue, configuration.ManifestPath),
		ReleaseNotesPath: selectStringValue(releaseNotesFlagValue, configuration.ReleaseNotesPath),
	}

	logger := builder.resolveLogger()
	environment := builder.resolveEnvironment()
	service, serviceError := NewService(Dependencies{
		Logger:       logger,
		DateResolver: builder.resolveDateResolver(logger, environment, configuration),
		Environment:  environment,
		Clock:        builder.Clock,
	})
	if serviceError != nil {
		return serviceError
	}

	result, runError := service.Run(command.Context(), options)
	if runError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, runError)
	}

	logger.Info(updateSummaryMessageConstant,
		zap.Strings(logFieldUpdatedRepositoriesConstant, result.Updated),
		zap.Strings(logFieldUnchangedRepositoriesConstant, result.Unchanged),
	)
	return nil
}

func (builder *CommandBuilder) resolveDateResolver(logger *zap.Logger, environment workflowenv.Environment, configuration CommandConfiguration) CommitDateResolver {
	if builder.DateResolver != nil {
		return builder.DateResolver
	}
	var client commitdate.HTTPClient = http.DefaultClient
	if builder.HTTPClient != nil {
		client = builder.HTTPClient
	}
	token, _ := githubauth.ResolveToken(environment)
	return commitdate.NewResolver(logger, client, commitdate.Configuration{
		ForgeHost:      configuration.ForgeHost,
		APIBaseURL:     configuration.APIBaseURL,
		RequestTimeout: configuration.RequestTimeout,
		Token:          token,
	})
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().sanitize()
}

func (builder *CommandBuilder) resolveEnvironment() workflowenv.Environment {
	if builder.EnvironmentProvider != nil {
		if environment := builder.EnvironmentProvider(); environment != nil {
			return environment
		}
	}
	return workflowenv.ProcessEnvironment{}
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
