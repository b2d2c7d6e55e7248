package workflowenv_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/headwatch/internal/workflowenv"
)

const (
	testOutputVariableConstant = "GITHUB_OUTPUT"
	testOutputFileNameConstant = "github_output"
)

func TestResolveOutputSinkAppendsToOutputFile(testInstance *testing.T) {
	outputPath := filepath.Join(testInstance.TempDir(), testOutputFileNameConstant)
	require.NoError(testInstance, os.WriteFile(outputPath, []byte("existing=1\n"), 0o600))

	fallbackBuffer := &bytes.Buffer{}
	sink, resolveError := workflowenv.ResolveOutputSink(workflowenv.MapEnvironment{testOutputVariableConstant: outputPath}, testOutputVariableConstant, fallbackBuffer)
	require.NoError(testInstance, resolveError)

	require.NoError(testInstance, sink.WriteOutput("sha_A", "abc1234"))
	require.NoError(testInstance, sink.WriteOutput("should_run", "false"))
	require.NoError(testInstance, sink.Close())

	contents, readError := os.ReadFile(outputPath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, "existing=1\nsha_A=abc1234\nshould_run=false\n", string(contents))
	require.Empty(testInstance, fallbackBuffer.String())
}

func TestResolveOutputSinkFallsBackToWriter(testInstance *testing.T) {
	testCases := []struct {
		name        string
		environment workflowenv.MapEnvironment
	}{
		{name: "variable_absent", environment: workflowenv.MapEnvironment{}},
		{name: "variable_blank", environment: workflowenv.MapEnvironment{testOutputVariableConstant: " "}},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			fallbackBuffer := &bytes.Buffer{}
			sink, resolveError := workflowenv.ResolveOutputSink(testCase.environment, testOutputVariableConstant, fallbackBuffer)
			require.NoError(testInstance, resolveError)

			require.NoError(testInstance, sink.WriteOutput("sha_A", "abc1234"))
			require.NoError(testInstance, sink.Close())
			require.Equal(testInstance, "OUTPUT: sha_A=abc1234\n", fallbackBuffer.String())
		})
	}
}

func TestOutputSinkRejectsLineBreaks(testInstance *testing.T) {
	sink := workflowenv.NewWriterOutputSink(&bytes.Buffer{})
	require.Error(testInstance, sink.WriteOutput("sha_A", "abc\nshould_run=true"))
}
