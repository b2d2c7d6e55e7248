package workflowenv

import "strings"

const (
	outputKeyPrefixConstant      = "sha_"
	environmentKeyPrefixConstant = "SHA_"
	normalizedSeparatorConstant  = '_'
)

// NormalizeName replaces every character outside [A-Za-z0-9_] with an underscore.
func NormalizeName(name string) string {
	return strings.Map(func(character rune) rune {
		switch {
		case character >= 'a' && character <= 'z':
			return character
		case character >= 'A' && character <= 'Z':
			return character
		case character >= '0' && character <= '9':
			return character
		default:
			return normalizedSeparatorConstant
		}
	}, name)
}

// OutputKey names the step output carrying a repository's latest hash, e.g. sha_my_lib.
func OutputKey(repositoryName string) string {
	return outputKeyPrefixConstant + NormalizeName(repositoryName)
}

// EnvironmentKey names the variable the updater reads a repository's new hash from, e.g. SHA_MY_LIB.
func EnvironmentKey(repositoryName string) string {
	return environmentKeyPrefixConstant + strings.ToUpper(NormalizeName(repositoryName))
}
