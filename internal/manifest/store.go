package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	manifestNotFoundTemplateConstant     = "%w: %s"
	manifestReadErrorTemplateConstant    = "unable to read manifest %s: %w"
	manifestParseErrorTemplateConstant   = "unable to parse manifest %s: %w"
	manifestEncodeErrorTemplateConstant  = "unable to encode manifest: %w"
	manifestWriteErrorTemplateConstant   = "unable to write manifest %s: %w"
	temporaryFilePatternTemplateConstant = ".%s.tmp-*"
	defaultFilePermissionsConstant       = 0o644
)

// Load reads and parses the manifest at path. A missing file yields an error wrapping ErrManifestNotFound.
func Load(path string) (Manifest, error) {
	contents, readError := os.ReadFile(path)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return Manifest{}, fmt.Errorf(manifestNotFoundTemplateConstant, ErrManifestNotFound, path)
		}
		return Manifest{}, fmt.Errorf(manifestReadErrorTemplateConstant, path, readError)
	}

	parsed, parseError := Parse(contents)
	if parseError != nil {
		return Manifest{}, fmt.Errorf(manifestParseErrorTemplateConstant, path, parseError)
	}
	return parsed, nil
}

// Save encodes the manifest and replaces the file at path atomically.
func Save(path string, manifest Manifest) error {
	encoded, encodeError := manifest.Marshal()
	if encodeError != nil {
		return fmt.Errorf(manifestEncodeErrorTemplateConstant, encodeError)
	}
	if writeError := WriteFileAtomically(path, encoded); writeError != nil {
		return fmt.Errorf(manifestWriteErrorTemplateConstant, path, writeError)
	}
	return nil
}

// WriteFileAtomically writes contents to a sibling temporary file and renames it over path,
// keeping the permissions of an existing file.
func WriteFileAtomically(path string, contents []byte) error {
	permissions := os.FileMode(defaultFilePermissionsConstant)
	if existingInfo, statError := os.Stat(path); statError == nil {
		permissions = existingInfo.Mode().Perm()
	}

	temporaryFile, createError := os.CreateTemp(filepath.Dir(path), fmt.Sprintf(temporaryFilePatternTemplateConstant, filepath.Base(path)))
	if createError != nil {
		return createError
	}
	temporaryPath := temporaryFile.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(temporaryPath)
		}
	}()

	if _, writeError := temporaryFile.Write(contents); writeError != nil {
		_ = temporaryFile.Close()
		return writeError
	}
	if syncError := temporaryFile.Sync(); syncError != nil {
		_ = temporaryFile.Close()
		return syncError
	}
	if closeError := temporaryFile.Close(); closeError != nil {
		return closeError
	}
	if chmodError := os.Chmod(temporaryPath, permissions); chmodError != nil {
		return chmodError
	}
	if renameError := os.Rename(temporaryPath, path); renameError != nil {
		return renameError
	}
	committed = true
	return nil
}
