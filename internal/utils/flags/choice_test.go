package flags

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestFormatChoiceUsage(testInstance *testing.T) {
	testCases := []struct {
		name           string
		defaultChoice  string
		choices        []string
		description    string
		expectedOutput string
	}{
		{
			name:           "default_first_choice",
			defaultChoice:  "git",
			choices:        []string{"git", "native"},
			description:    "Remote HEAD resolver.",
			expectedOutput: "`<GIT|native>` Remote HEAD resolver.",
		},
		{
			name:           "default_second_choice",
			defaultChoice:  "console",
			choices:        []string{"structured", "console"},
			description:    "Log output format.",
			expectedOutput: "`<structured|CONSOLE>` Log output format.",
		},
		{
			name:           "empty_description",
			defaultChoice:  "alpha",
			choices:        []string{"alpha", "beta"},
			expectedOutput: "`<ALPHA|beta>`",
		},
		{
			name:           "duplicate_choices_ignored",
			defaultChoice:  "beta",
			choices:        []string{"beta", "beta", "alpha", "alpha"},
			description:    "Select between options.",
			expectedOutput: "`<BETA|alpha>` Select between options.",
		},
		{
			name:           "whitespace_trimmed",
			defaultChoice:  "primary",
			choices:        []string{" primary ", " secondary "},
			description:    "Pick a palette.",
			expectedOutput: "`<PRIMARY|secondary>` Pick a palette.",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			require.Equal(subtest, testCase.expectedOutput, FormatChoiceUsage(testCase.defaultChoice, testCase.choices, testCase.description))
		})
	}
}

func TestAddChoiceFlag(testInstance *testing.T) {
	testCases := []struct {
		name          string
		arguments     []string
		expectedValue string
		expectError   bool
	}{
		{name: "default_kept", arguments: []string{}, expectedValue: "git"},
		{name: "choice_selected", arguments: []string{"--resolver", "native"}, expectedValue: "native"},
		{name: "choice_normalized", arguments: []string{"--resolver=NATIVE"}, expectedValue: "native"},
		{name: "unknown_choice_rejected", arguments: []string{"--resolver", "svn"}, expectedValue: "git", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			command := &cobra.Command{}
			var selected string
			AddChoiceFlag(command.Flags(), &selected, "resolver", "git", []string{"git", "native"}, "Remote HEAD resolver.")

			parseError := command.ParseFlags(testCase.arguments)
			if testCase.expectError {
				require.Error(subtest, parseError)
			} else {
				require.NoError(subtest, parseError)
			}
			require.Equal(subtest, testCase.expectedValue, selected)
		})
	}
}
