package checker

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/headwatch/internal/execshell"
	"github.com/temirov/headwatch/internal/remotehead"
	"github.com/temirov/headwatch/internal/ui"
	"github.com/temirov/headwatch/internal/utils/flags"
	"github.com/temirov/headwatch/internal/workflowenv"
)

const (
	commandUseConstant                    = "check"
	commandShortDescriptionConstant       = "Detect upstream repositories whose HEAD moved"
	commandLongDescriptionConstant        = "check queries the HEAD of every repository in the version manifest, reports which ones advanced, and publishes sha_<name> and should_run workflow outputs."
	commandExecutionErrorTemplateConstant = "update check failed: %w"
	unexpectedArgumentsMessageConstant    = "check does not accept positional arguments"
	flagManifestNameConstant              = "manifest"
	flagManifestDescriptionConstant       = "Path to the version manifest"
	flagResolverNameConstant              = "resolver"
	flagResolverDescriptionConstant       = "How remote HEADs are resolved"
	flagManualNameConstant                = "manual"
	flagManualDescriptionConstant         = "Treat the run as manually triggered so should_run is always true"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current check configuration.
type ConfigurationProvider func() CommandConfiguration

// EnvironmentProvider returns the environment the workflow supplied.
type EnvironmentProvider func() workflowenv.Environment

// CommandBuilder assembles the Cobra command for update checks.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        ConfigurationProvider
	EnvironmentProvider          EnvironmentProvider
	HumanReadableLoggingProvider func() bool
	Resolver                     remotehead.Resolver
	Executor                     remotehead.GitExecutor
}

type commandFlagValues struct {
	resolver string
	manual   bool
}

// Build constructs the check command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	flagValues := &commandFlagValues{}

	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, arguments, flagValues)
		},
	}

	command.Flags().String(flagManifestNameConstant, "", flagManifestDescriptionConstant)
	flags.AddChoiceFlag(command.Flags(), &flagValues.resolver, flagResolverNameConstant, remotehead.ResolverKindGit, []string{remotehead.ResolverKindGit, remotehead.ResolverKindNative}, flagResolverDescriptionConstant)
	flags.AddToggleFlag(command.Flags(), &flagValues.manual, flagManualNameConstant, false, flagManualDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string, flagValues *commandFlagValues) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	configuration := builder.resolveConfiguration()
	manifestFlagValue, _ := command.Flags().GetString(flagManifestNameConstant)
	if command.Flags().Changed(flagResolverNameConstant) {
		configuration.Resolver = flagValues.resolver
	}

	options := Options{
		ManifestPath:      selectStringValue(manifestFlagValue, configuration.ManifestPath),
		EventNameVariable: configuration.EventNameVariable,
		ManualEvents:      configuration.ManualEvents,
		OutputVariable:    configuration.OutputVariable,
		ForceManual:       flagValues.manual,
	}

	logger := builder.resolveLogger()
	resolver, resolverError := builder.resolveResolver(logger, configuration.Resolver)
	if resolverError != nil {
		return resolverError
	}

	reportWriter := command.OutOrStdout()
	service, serviceError := NewService(Dependencies{
		Logger:       logger,
		Resolver:     resolver,
		Environment:  builder.resolveEnvironment(),
		ReportWriter: reportWriter,
		ColorEnabled: ui.ColorEnabledFor(reportWriter),
	})
	if serviceError != nil {
		return serviceError
	}

	if _, runError := service.Run(command.Context(), options); runError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, runError)
	}
	return nil
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

func (builder *CommandBuilder) resolveResolver(logger *zap.Logger, kind string) (remotehead.Resolver, error) {
	if builder.Resolver != nil {
		return builder.Resolver, nil
	}
	if kind == remotehead.ResolverKindNative {
		return remotehead.NewResolver(kind, nil)
	}

	executor := builder.Executor
	if executor == nil {
		var observer execshell.CommandEventObserver
		if builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider() {
			observer = ui.NewConsoleCommandEventLogger(logger)
		}
		shellExecutor, executorError := execshell.NewShellExecutorWithObserver(logger, execshell.NewOSCommandRunner(), observer)
		if executorError != nil {
			return nil, executorError
		}
		executor = shellExecutor
	}
	return remotehead.NewResolver(kind, executor)
}
