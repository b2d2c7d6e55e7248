package ui

import (
	"io"
	"os"

	"github.com/fatih/color"
)

// ReportPalette colors the human-readable check report.
type ReportPalette struct {
	heading *color.Color
	update  *color.Color
	current *color.Color
	muted   *color.Color
}

// NewReportPalette builds a palette. When enabled is false every style renders plain text.
func NewReportPalette(enabled bool) ReportPalette {
	palette := ReportPalette{
		heading: color.New(color.Bold),
		update:  color.New(color.FgYellow, color.Bold),
		current: color.New(color.FgGreen),
		muted:   color.New(color.FgHiBlack),
	}
	if !enabled {
		palette.heading.DisableColor()
		palette.update.DisableColor()
		palette.current.DisableColor()
		palette.muted.DisableColor()
	} else {
		palette.heading.EnableColor()
		palette.update.EnableColor()
		palette.current.EnableColor()
		palette.muted.EnableColor()
	}
	return palette
}

// Heading renders section headings and summaries.
func (palette ReportPalette) Heading(text string) string {
	return palette.heading.Sprint(text)
}

// Update renders lines announcing a changed upstream head.
func (palette ReportPalette) Update(text string) string {
	return palette.update.Sprint(text)
}

// Current renders lines confirming an unchanged upstream head.
func (palette ReportPalette) Current(text string) string {
	return palette.current.Sprint(text)
}

// Muted renders secondary details such as remote URLs.
func (palette ReportPalette) Muted(text string) string {
	return palette.muted.Sprint(text)
}

// ColorEnabledFor reports whether colored output suits the writer: only the process standard output
// qualifies, and only when it is a terminal and NO_COLOR is unset.
func ColorEnabledFor(writer io.Writer) bool {
	outputFile, isFile := writer.(*os.File)
	if !isFile || outputFile != os.Stdout {
		return false
	}
	return !color.NoColor
}
