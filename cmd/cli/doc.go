// Package cli constructs the headwatch command-line interface, wiring the Cobra command hierarchy,
// configuration loader, workflow environment, and structured logging.
package cli
