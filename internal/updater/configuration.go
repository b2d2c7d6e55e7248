package updater

import (
	"strings"
	"time"

	"github.com/temirov/headwatch/internal/commitdate"
)

const (
	defaultManifestPathConstant     = ".github/upstream-version.json"
	defaultReleaseNotesPathConstant = "release_notes.md"
)

// CommandConfiguration captures configuration values for the update command.
type CommandConfiguration struct {
	ManifestPath     string        `mapstructure:"manifest_path"`
	ReleaseNotesPath string        `mapstructure:"release_notes_path"`
	ForgeHost        string        `mapstructure:"forge_host"`
	APIBaseURL       string        `mapstructure:"api_base_url"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout"`
}

// DefaultCommandConfiguration provides baseline configuration values for the update command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		ManifestPath:     defaultManifestPathConstant,
		ReleaseNotesPath: defaultReleaseNotesPathConstant,
		ForgeHost:        commitdate.DefaultForgeHost,
		APIBaseURL:       commitdate.DefaultAPIBaseURL,
		RequestTimeout:   commitdate.DefaultRequestTimeout,
	}
}

// DefaultConfigurationValues returns the defaults keyed for the configuration loader under prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		prefix + ".manifest_path":      defaults.ManifestPath,
		prefix + ".release_notes_path": defaults.ReleaseNotesPath,
		prefix + ".forge_host":         defaults.ForgeHost,
		prefix + ".api_base_url":       defaults.APIBaseURL,
		prefix + ".request_timeout":    defaults.RequestTimeout.String(),
	}
}

func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := CommandConfiguration{
		ManifestPath:     selectStringValue(configuration.ManifestPath, defaults.ManifestPath),
		ReleaseNotesPath: selectStringValue(configuration.ReleaseNotesPath, defaults.ReleaseNotesPath),
		ForgeHost:        selectStringValue(configuration.ForgeHost, defaults.ForgeHost),
		APIBaseURL:       selectStringValue(configuration.APIBaseURL, defaults.APIBaseURL),
		RequestTimeout:   configuration.RequestTimeout,
	}
	if sanitized.RequestTimeout <= 0 {
		sanitized.RequestTimeout = defaults.RequestTimeout
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
