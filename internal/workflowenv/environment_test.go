package workflowenv_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/headwatch/internal/workflowenv"
)

const (
	testDotEnvFileNameConstant = "runner.env"
	testDotEnvContentConstant  = "SHA_A=deadbeef\nGITHUB_EVENT_NAME=schedule\n# comment\nEMPTY=\n"
)

func TestLayeredEnvironmentReturnsFirstHit(testInstance *testing.T) {
	environment := workflowenv.LayeredEnvironment{
		workflowenv.MapEnvironment{"KEY": "primary"},
		nil,
		workflowenv.MapEnvironment{"KEY": "secondary", "OTHER": "fallback"},
	}

	value, exists := environment.Lookup("KEY")
	require.True(testInstance, exists)
	require.Equal(testInstance, "primary", value)

	value, exists = environment.Lookup("OTHER")
	require.True(testInstance, exists)
	require.Equal(testInstance, "fallback", value)

	_, exists = environment.Lookup("MISSING")
	require.False(testInstance, exists)
}

func TestLayeredEnvironmentSkipsBlankValues(testInstance *testing.T) {
	environment := workflowenv.LayeredEnvironment{
		workflowenv.MapEnvironment{"SHA_A": "", "SHA_B": " ", "SHA_C": "process"},
		workflowenv.MapEnvironment{"SHA_A": "deadbeef", "SHA_C": "file"},
	}

	value, exists := workflowenv.LookupNonEmpty(environment, "SHA_A")
	require.True(testInstance, exists)
	require.Equal(testInstance, "deadbeef", value)

	value, exists = workflowenv.LookupNonEmpty(environment, "SHA_C")
	require.True(testInstance, exists)
	require.Equal(testInstance, "process", value)

	value, exists = environment.Lookup("SHA_B")
	require.True(testInstance, exists)
	require.Equal(testInstance, " ", value)
	_, exists = workflowenv.LookupNonEmpty(environment, "SHA_B")
	require.False(testInstance, exists)
}

func TestLookupNonEmptyTreatsBlankAsMissing(testInstance *testing.T) {
	environment := workflowenv.MapEnvironment{"BLANK": "   ", "SET": " value "}

	_, exists := workflowenv.LookupNonEmpty(environment, "BLANK")
	require.False(testInstance, exists)

	value, exists := workflowenv.LookupNonEmpty(environment, "SET")
	require.True(testInstance, exists)
	require.Equal(testInstance, "value", value)

	_, exists = workflowenv.LookupNonEmpty(nil, "SET")
	require.False(testInstance, exists)
}

func TestLoadDotEnvReadsFileWithoutMutatingProcess(testInstance *testing.T) {
	dotEnvPath := filepath.Join(testInstance.TempDir(), testDotEnvFileNameConstant)
	require.NoError(testInstance, os.WriteFile(dotEnvPath, []byte(testDotEnvContentConstant), 0o600))

	environment, loadError := workflowenv.LoadDotEnv(dotEnvPath)
	require.NoError(testInstance, loadError)

	value, exists := environment.Lookup("SHA_A")
	require.True(testInstance, exists)
	require.Equal(testInstance, "deadbeef", value)

	_, processHasValue := os.LookupEnv("SHA_A")
	require.False(testInstance, processHasValue)
}

func TestNewEnvironmentWithBasePrefersProcessValues(testInstance *testing.T) {
	dotEnvPath := filepath.Join(testInstance.TempDir(), testDotEnvFileNameConstant)
	require.NoError(testInstance, os.WriteFile(dotEnvPath, []byte(testDotEnvContentConstant), 0o600))
	testInstance.Setenv("GITHUB_EVENT_NAME", "workflow_dispatch")

	environment, creationError := workflowenv.NewEnvironmentWithBase(workflowenv.ProcessEnvironment{}, dotEnvPath)
	require.NoError(testInstance, creationError)

	eventName, exists := environment.Lookup("GITHUB_EVENT_NAME")
	require.True(testInstance, exists)
	require.Equal(testInstance, "workflow_dispatch", eventName)

	hash, exists := environment.Lookup("SHA_A")
	require.True(testInstance, exists)
	require.Equal(testInstance, "deadbeef", hash)
}

func TestNewEnvironmentWithBaseReportsMissingFile(testInstance *testing.T) {
	_, creationError := workflowenv.NewEnvironmentWithBase(workflowenv.ProcessEnvironment{}, filepath.Join(testInstance.TempDir(), "absent.env"))
	require.Error(testInstance, creationError)

	environment, creationError := workflowenv.NewEnvironmentWithBase(workflowenv.ProcessEnvironment{}, "  ")
	require.NoError(testInstance, creationError)
	require.IsType(testInstance, workflowenv.ProcessEnvironment{}, environment)
}
