package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	fallbackUnknownValueLabelConstant       = "unknown"
	flagPrefixConstant                      = "-"
)

const (
	gitLSRemoteSubcommandNameConstant = "ls-remote"
	gitHeadReferenceConstant          = "HEAD"
)

const (
	gitLSRemoteHeadStartTemplateConstant               = "Querying HEAD of %s"
	gitLSRemoteHeadSuccessTemplateConstant             = "Resolved HEAD of %s to %s"
	gitLSRemoteHeadEmptySuccessTemplateConstant        = "%s did not advertise HEAD"
	gitLSRemoteHeadFailureTemplateConstant             = "Failed to query HEAD of %s (exit code %d%s)"
	gitLSRemoteHeadExecutionFailureTemplateConstant    = "Unable to query HEAD of %s: %s"
	gitLSRemoteGenericStartTemplateConstant            = "Querying remote references on %s"
	gitLSRemoteGenericSuccessTemplateConstant          = "Queried remote references on %s"
	gitLSRemoteGenericFailureTemplateConstant          = "Failed to query remote references on %s (exit code %d%s)"
	gitLSRemoteGenericExecutionFailureTemplateConstant = "Unable to query remote references on %s: %s"
)

// CommandMessageFormatter builds human-readable descriptions of command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage describes a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage describes a command that finished with a zero exit code using its captured output.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageSuccess)
}

// BuildFailureMessage describes a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage describes a command that could not be executed.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if command.Name == CommandGit && len(command.Details.Arguments) > 0 && command.Details.Arguments[0] == gitLSRemoteSubcommandNameConstant {
		return formatter.describeGitLSRemoteMessage(command, result, failure, stage)
	}
	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) describeGitLSRemoteMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	lsRemoteArguments := command.Details.Arguments[1:]
	remote := formatter.ensureValue(formatter.extractFirstNonFlagArgument(lsRemoteArguments))
	queriesHead := containsArgument(lsRemoteArguments, gitHeadReferenceConstant)

	if !queriesHead {
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitLSRemoteGenericStartTemplateConstant, remote)
		case messageStageSuccess:
			return fmt.Sprintf(gitLSRemoteGenericSuccessTemplateConstant, remote)
		case messageStageFailure:
			return fmt.Sprintf(gitLSRemoteGenericFailureTemplateConstant, remote, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(gitLSRemoteGenericExecutionFailureTemplateConstant, remote, formatter.describeFailure(failure))
		default:
			return formatter.buildGenericMessage(command, result, failure, stage)
		}
	}

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitLSRemoteHeadStartTemplateConstant, remote)
	case messageStageSuccess:
		fields := strings.Fields(result.StandardOutput)
		if len(fields) == 0 {
			return fmt.Sprintf(gitLSRemoteHeadEmptySuccessTemplateConstant, remote)
		}
		return fmt.Sprintf(gitLSRemoteHeadSuccessTemplateConstant, remote, fields[0])
	case messageStageFailure:
		return fmt.Sprintf(gitLSRemoteHeadFailureTemplateConstant, remote, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitLSRemoteHeadExecutionFailureTemplateConstant, remote, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel(command), formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmed
}

func (formatter CommandMessageFormatter) extractFirstNonFlagArgument(arguments []string) string {
	for _, argument := range arguments {
		trimmed := strings.TrimSpace(argument)
		if len(trimmed) == 0 {
			continue
		}
		if strings.HasPrefix(trimmed, flagPrefixConstant) {
			continue
		}
		return trimmed
	}
	return emptyStringConstant
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}
