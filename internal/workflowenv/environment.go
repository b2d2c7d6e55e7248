package workflowenv

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	dotEnvReadErrorTemplateConstant = "unable to read environment file %s: %w"
)

// Environment resolves named values supplied by the calling environment.
type Environment interface {
	Lookup(key string) (string, bool)
}

// ProcessEnvironment reads the operating system environment.
type ProcessEnvironment struct{}

// Lookup implements Environment using os.LookupEnv.
func (ProcessEnvironment) Lookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// MapEnvironment serves values from an in-memory map.
type MapEnvironment map[string]string

// Lookup implements Environment for MapEnvironment.
func (environment MapEnvironment) Lookup(key string) (string, bool) {
	if environment == nil {
		return "", false
	}
	value, exists := environment[key]
	return value, exists
}

// LayeredEnvironment consults each layer in order and returns the first non-blank value.
// A blank value is returned only when no layer holds a non-blank one.
type LayeredEnvironment []Environment

// Lookup implements Environment for LayeredEnvironment.
func (layers LayeredEnvironment) Lookup(key string) (string, bool) {
	blankValue, blankFound := "", false
	for _, layer := range layers {
		if layer == nil {
			continue
		}
		value, exists := layer.Lookup(key)
		if !exists {
			continue
		}
		if len(strings.TrimSpace(value)) > 0 {
			return value, true
		}
		if !blankFound {
			blankValue, blankFound = value, true
		}
	}
	return blankValue, blankFound
}

// LoadDotEnv reads a dotenv file into a MapEnvironment without touching the process environment.
func LoadDotEnv(path string) (MapEnvironment, error) {
	values, readError := godotenv.Read(path)
	if readError != nil {
		return nil, fmt.Errorf(dotEnvReadErrorTemplateConstant, path, readError)
	}
	return MapEnvironment(values), nil
}

// NewEnvironmentWithBase returns base, backed by the dotenv file when a path is given.
// Non-blank base values take precedence over file values.
func NewEnvironmentWithBase(base Environment, dotEnvPath string) (Environment, error) {
	trimmedPath := strings.TrimSpace(dotEnvPath)
	if len(trimmedPath) == 0 {
		return base, nil
	}
	fileEnvironment, loadError := LoadDotEnv(trimmedPath)
	if loadError != nil {
		return nil, loadError
	}
	return LayeredEnvironment{base, fileEnvironment}, nil
}

// LookupNonEmpty returns a trimmed value and reports false for missing or blank values.
func LookupNonEmpty(environment Environment, key string) (string, bool) {
	if environment == nil {
		return "", false
	}
	value, exists := environment.Lookup(key)
	if !exists {
		return "", false
	}
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return "", false
	}
	return trimmedValue, true
}
