package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/temirov/headwatch/internal/workflowenv"
)

const (
	lastRunMemberKeyConstant              = "last_run_utc"
	repositoriesMemberKeyConstant         = "repositories"
	urlMemberKeyConstant                  = "url"
	commitMemberKeyConstant               = "commit"
	dateMemberKeyConstant                 = "date"
	timestampLayoutConstant               = "2006-01-02T15:04:05Z"
	manifestNotFoundMessageConstant       = "manifest file not found"
	duplicateRepositoryTemplateConstant   = "repository %q is declared more than once"
	conflictingKeyTemplateConstant        = "repositories %q and %q both map to variable %s"
	memberDecodeErrorTemplateConstant     = "invalid %s: %w"
	repositoryDecodeErrorTemplateConstant = "invalid repository %q: %w"
	repositoryNotFoundTemplateConstant    = "repository %q is not tracked"
)

// ErrManifestNotFound indicates the manifest file does not exist.
var ErrManifestNotFound = errors.New(manifestNotFoundMessageConstant)

// DuplicateRepositoryError reports a repository name that appears twice in the repositories object.
type DuplicateRepositoryError struct {
	Name string
}

// Error describes the duplicate.
func (duplicateError DuplicateRepositoryError) Error() string {
	return fmt.Sprintf(duplicateRepositoryTemplateConstant, duplicateError.Name)
}

// ConflictingRepositoryKeyError reports two repository names that normalize to the same workflow variable.
type ConflictingRepositoryKeyError struct {
	Name            string
	ConflictingName string
	Key             string
}

// Error describes the conflict.
func (conflictError ConflictingRepositoryKeyError) Error() string {
	return fmt.Sprintf(conflictingKeyTemplateConstant, conflictError.ConflictingName, conflictError.Name, conflictError.Key)
}

// RepositoryNotFoundError reports a lookup of a name the manifest does not track.
type RepositoryNotFoundError struct {
	Name string
}

// Error describes the missing repository.
func (notFoundError RepositoryNotFoundError) Error() string {
	return fmt.Sprintf(repositoryNotFoundTemplateConstant, notFoundError.Name)
}

// TrackedRepository is one upstream dependency and the last commit recorded for it.
type TrackedRepository struct {
	Name   string
	URL    string
	Commit string
	Date   string

	members []objectMember
}

// Manifest is the persisted record of tracked repositories.
type Manifest struct {
	LastRunUTC   string
	Repositories []TrackedRepository

	members []objectMember
}

// FormatTimestamp renders a time as a UTC timestamp with second precision, e.g. 2024-05-01T12:00:00Z.
func FormatTimestamp(moment time.Time) string {
	return moment.UTC().Format(timestampLayoutConstant)
}

// Repository returns the tracked repository with the provided name.
func (manifest *Manifest) Repository(name string) (TrackedRepository, bool) {
	for _, repository := range manifest.Repositories {
		if repository.Name == name {
			return repository, true
		}
	}
	return TrackedRepository{}, false
}

// ReplaceRepository overwrites the tracked repository with the same name, keeping its position.
func (manifest *Manifest) ReplaceRepository(updated TrackedRepository) error {
	for repositoryIndex := range manifest.Repositories {
		if manifest.Repositories[repositoryIndex].Name == updated.Name {
			manifest.Repositories[repositoryIndex] = updated
			return nil
		}
	}
	return RepositoryNotFoundError{Name: updated.Name}
}

// Parse decodes manifest JSON.
func Parse(data []byte) (Manifest, error) {
	members, decodeError := decodeObject(data)
	if decodeError != nil {
		return Manifest{}, decodeError
	}

	parsed := Manifest{members: members}
	for _, member := range members {
		switch member.Key {
		case lastRunMemberKeyConstant:
			lastRun, stringError := decodeOptionalString(member.Value)
			if stringError != nil {
				return Manifest{}, fmt.Errorf(memberDecodeErrorTemplateConstant, lastRunMemberKeyConstant, stringError)
			}
			parsed.LastRunUTC = lastRun
		case repositoriesMemberKeyConstant:
			repositories, repositoriesError := parseRepositories(member.Value)
			if repositoriesError != nil {
				return Manifest{}, repositoriesError
			}
			parsed.Repositories = repositories
		}
	}

	return parsed, nil
}

// Marshal encodes the manifest as indented JSON, keeping the original member order.
func (manifest Manifest) Marshal() ([]byte, error) {
	encodedLastRun, lastRunError := encodeJSONValue(manifest.LastRunUTC)
	if lastRunError != nil {
		return nil, lastRunError
	}
	encodedRepositories, repositoriesError := encodeRepositories(manifest.Repositories)
	if repositoriesError != nil {
		return nil, repositoriesError
	}

	members := mergeMembers(manifest.members, []objectMember{
		{Key: lastRunMemberKeyConstant, Value: encodedLastRun},
		{Key: repositoriesMemberKeyConstant, Value: encodedRepositories},
	})

	compact, encodeError := encodeObject(members)
	if encodeError != nil {
		return nil, encodeError
	}
	return indentJSON(compact)
}

func parseRepositories(data json.RawMessage) ([]TrackedRepository, error) {
	repositoryMembers, decodeError := decodeObject(data)
	if decodeError != nil {
		return nil, fmt.Errorf(memberDecodeErrorTemplateConstant, repositoriesMemberKeyConstant, decodeError)
	}

	seenNames := make(map[string]struct{}, len(repositoryMembers))
	namesByKey := make(map[string]string, len(repositoryMembers))
	repositories := make([]TrackedRepository, 0, len(repositoryMembers))
	for _, repositoryMember := range repositoryMembers {
		if _, seen := seenNames[repositoryMember.Key]; seen {
			return nil, DuplicateRepositoryError{Name: repositoryMember.Key}
		}
		seenNames[repositoryMember.Key] = struct{}{}

		variableKey := workflowenv.EnvironmentKey(repositoryMember.Key)
		if earlierName, taken := namesByKey[variableKey]; taken {
			return nil, ConflictingRepositoryKeyError{Name: repositoryMember.Key, ConflictingName: earlierName, Key: variableKey}
		}
		namesByKey[variableKey] = repositoryMember.Key

		repository, repositoryError := parseRepository(repositoryMember.Key, repositoryMember.Value)
		if repositoryError != nil {
			return nil, fmt.Errorf(repositoryDecodeErrorTemplateConstant, repositoryMember.Key, repositoryError)
		}
		repositories = append(repositories, repository)
	}
	return repositories, nil
}

func parseRepository(name string, data json.RawMessage) (TrackedRepository, error) {
	members, decodeError := decodeObject(data)
	if decodeError != nil {
		return TrackedRepository{}, decodeError
	}

	repository := TrackedRepository{Name: name, members: members}
	for _, member := range members {
		var target *string
		switch member.Key {
		case urlMemberKeyConstant:
			target = &repository.URL
		case commitMemberKeyConstant:
			target = &repository.Commit
		case dateMemberKeyConstant:
			target = &repository.Date
		default:
			continue
		}
		value, stringError := decodeOptionalString(member.Value)
		if stringError != nil {
			return TrackedRepository{}, fmt.Errorf(memberDecodeErrorTemplateConstant, member.Key, stringError)
		}
		*target = value
	}
	return repository, nil
}

func encodeRepositories(repositories []TrackedRepository) (json.RawMessage, error) {
	repositoryMembers := make([]objectMember, 0, len(repositories))
	for _, repository := range repositories {
		encodedRepository, encodeError := encodeRepository(repository)
		if encodeError != nil {
			return nil, encodeError
		}
		repositoryMembers = append(repositoryMembers, objectMember{Key: repository.Name, Value: encodedRepository})
	}
	return encodeObject(repositoryMembers)
}

func encodeRepository(repository TrackedRepository) (json.RawMessage, error) {
	knownMembers := make([]objectMember, 0, 3)
	for _, field := range []struct {
		key   string
		value string
	}{
		{key: urlMemberKeyConstant, value: repository.URL},
		{key: commitMemberKeyConstant, value: repository.Commit},
		{key: dateMemberKeyConstant, value: repository.Date},
	} {
		encodedValue, encodeError := encodeJSONValue(field.value)
		if encodeError != nil {
			return nil, encodeError
		}
		knownMembers = append(knownMembers, objectMember{Key: field.key, Value: encodedValue})
	}
	return encodeObject(mergeMembers(repository.members, knownMembers))
}

// mergeMembers replaces known members in their original positions and appends the ones not seen before.
func mergeMembers(originalMembers []objectMember, knownMembers []objectMember) []objectMember {
	knownByKey := make(map[string]json.RawMessage, len(knownMembers))
	for _, knownMember := range knownMembers {
		knownByKey[knownMember.Key] = knownMember.Value
	}

	merged := make([]objectMember, 0, len(originalMembers)+len(knownMembers))
	emitted := make(map[string]struct{}, len(knownMembers))
	for _, originalMember := range originalMembers {
		if replacement, known := knownByKey[originalMember.Key]; known {
			merged = append(merged, objectMember{Key: originalMember.Key, Value: replacement})
			emitted[originalMember.Key] = struct{}{}
			continue
		}
		merged = append(merged, originalMember)
	}
	for _, knownMember := range knownMembers {
		if _, alreadyEmitted := emitted[knownMember.Key]; alreadyEmitted {
			continue
		}
		merged = append(merged, knownMember)
	}
	return merged
}

func decodeOptionalString(data json.RawMessage) (string, error) {
	var value *string
	if unmarshalError := json.Unmarshal(data, &value); unmarshalError != nil {
		return "", unmarshalError
	}
	if value == nil {
		return "", nil
	}
	return *value, nil
}
