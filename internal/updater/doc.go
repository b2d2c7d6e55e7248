// Package updater implements `headwatch update`, which records the commits published by the check step
// into the version manifest and regenerates the release notes table.
package updater
