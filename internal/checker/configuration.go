package checker

import "strings"

const (
	defaultManifestPathConstant      = ".github/upstream-version.json"
	defaultResolverConstant          = "git"
	defaultEventNameVariableConstant = "GITHUB_EVENT_NAME"
	defaultManualEventConstant       = "workflow_dispatch"
	defaultOutputVariableConstant    = "GITHUB_OUTPUT"
)

// CommandConfiguration captures configuration values for the check command.
type CommandConfiguration struct {
	ManifestPath      string   `mapstructure:"manifest_path"`
	Resolver          string   `mapstructure:"resolver"`
	EventNameVariable string   `mapstructure:"event_name_variable"`
	ManualEvents      []string `mapstructure:"manual_events"`
	OutputVariable    string   `mapstructure:"output_variable"`
}

// DefaultCommandConfiguration provides baseline configuration values for the check command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		ManifestPath:      defaultManifestPathConstant,
		Resolver:          defaultResolverConstant,
		EventNameVariable: defaultEventNameVariableConstant,
		ManualEvents:      []string{defaultManualEventConstant},
		OutputVariable:    defaultOutputVariableConstant,
	}
}

// DefaultConfigurationValues returns the defaults keyed for the configuration loader under prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		prefix + ".manifest_path":       defaults.ManifestPath,
		prefix + ".resolver":            defaults.Resolver,
		prefix + ".event_name_variable": defaults.EventNameVariable,
		prefix + ".manual_events":       defaults.ManualEvents,
		prefix + ".output_variable":     defaults.OutputVariable,
	}
}

// sanitize trims values and restores defaults for blank entries.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := CommandConfiguration{
		ManifestPath:      selectStringValue(configuration.ManifestPath, defaults.ManifestPath),
		Resolver:          strings.ToLower(selectStringValue(configuration.Resolver, defaults.Resolver)),
		EventNameVariable: selectStringValue(configuration.EventNameVariable, defaults.EventNameVariable),
		OutputVariable:    selectStringValue(configuration.OutputVariable, defaults.OutputVariable),
	}
	for _, manualEvent := range configuration.ManualEvents {
		trimmedEvent := strings.TrimSpace(manualEvent)
		if len(trimmedEvent) == 0 {
			continue
		}
		sanitized.ManualEvents = append(sanitized.ManualEvents, trimmedEvent)
	}
	if len(sanitized.ManualEvents) == 0 {
		sanitized.ManualEvents = defaults.ManualEvents
	}
	return sanitized
}

func selectStringValue(primary string, fallback string) string {
	trimmedPrimary := strings.TrimSpace(primary)
	if len(trimmedPrimary) > 0 {
		return trimmedPrimary
	}
	return strings.TrimSpace(fallback)
}
