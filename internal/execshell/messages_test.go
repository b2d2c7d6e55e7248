package execshell

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommandMessageFormatterDescribesHeadQueries(testInstance *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name:    CommandGit,
		Details: CommandDetails{Arguments: []string{"ls-remote", "https://github.com/example/project.git", "HEAD"}},
	}

	testCases := []struct {
		name     string
		build    func() string
		expected string
	}{
		{
			name:     "started",
			build:    func() string { return formatter.BuildStartedMessage(command) },
			expected: "Querying HEAD of https://github.com/example/project.git",
		},
		{
			name: "success",
			build: func() string {
				return formatter.BuildSuccessMessage(command, ExecutionResult{StandardOutput: "abc123\tHEAD\n"})
			},
			expected: "Resolved HEAD of https://github.com/example/project.git to abc123",
		},
		{
			name:     "success_without_output",
			build:    func() string { return formatter.BuildSuccessMessage(command, ExecutionResult{}) },
			expected: "https://github.com/example/project.git did not advertise HEAD",
		},
		{
			name: "failure",
			build: func() string {
				return formatter.BuildFailureMessage(command, ExecutionResult{ExitCode: 128, StandardError: "fatal: not found\n"})
			},
			expected: "Failed to query HEAD of https://github.com/example/project.git (exit code 128: fatal: not found)",
		},
		{
			name:     "execution_failure",
			build:    func() string { return formatter.BuildExecutionFailureMessage(command, errors.New("exec: not found")) },
			expected: "Unable to query HEAD of https://github.com/example/project.git: exec: not found",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, testCase.build())
		})
	}
}

func TestCommandMessageFormatterFallsBackToGenericMessages(testInstance *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name:    CommandGit,
		Details: CommandDetails{Arguments: []string{"--version"}, WorkingDirectory: "/workspace"},
	}

	require.Equal(testInstance, "Running git --version (in /workspace)", formatter.BuildStartedMessage(command))
	require.Equal(testInstance, "Completed git --version (in /workspace)", formatter.BuildSuccessMessage(command, ExecutionResult{}))
	require.Equal(testInstance, "git --version (in /workspace) failed with exit code 1", formatter.BuildFailureMessage(command, ExecutionResult{ExitCode: 1}))
}
