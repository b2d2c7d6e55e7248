package releasenotes

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/temirov/headwatch/internal/gitrepo"
	"github.com/temirov/headwatch/internal/manifest"
)

const (
	titleConstant                      = "## Component Versions\n\n"
	componentHeaderConstant            = "Component"
	commitHeaderConstant               = "Commit"
	dateHeaderConstant                 = "Date (UTC)"
	markdownLinkTemplateConstant       = "[%s](%s)"
	cellSeparatorConstant              = "|"
	escapedCellSeparatorConstant       = `\|`
	releaseNotesFilePermissionConstant = 0o644
	renderErrorTemplateConstant        = "unable to render release notes: %w"
	writeErrorTemplateConstant         = "unable to write release notes %s: %w"
)

// Render writes the title and one table row per repository, in manifest order.
func Render(writer io.Writer, versions manifest.Manifest) error {
	if _, titleError := io.WriteString(writer, titleConstant); titleError != nil {
		return titleError
	}

	table := tablewriter.NewTable(writer, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Configure(func(configuration *tablewriter.Config) {
		configuration.Header.Formatting.AutoFormat = tw.Off
		configuration.Header.Alignment.Global = tw.AlignLeft
		configuration.Row.Alignment.Global = tw.AlignLeft
	})
	table.Header(componentHeaderConstant, commitHeaderConstant, dateHeaderConstant)

	rows := make([][]string, 0, len(versions.Repositories))
	for _, repository := range versions.Repositories {
		rows = append(rows, buildRow(repository))
	}
	if bulkError := table.Bulk(rows); bulkError != nil {
		return bulkError
	}
	return table.Render()
}

// WriteRendered overwrites path with release notes produced by RenderBytes.
func WriteRendered(path string, contents []byte) error {
	if writeError := os.WriteFile(path, contents, releaseNotesFilePermissionConstant); writeError != nil {
		return fmt.Errorf(writeErrorTemplateConstant, path, writeError)
	}
	return nil
}

// RenderBytes returns the rendered release notes.
func RenderBytes(versions manifest.Manifest) ([]byte, error) {
	buffer := &bytes.Buffer{}
	if renderError := Render(buffer, versions); renderError != nil {
		return nil, fmt.Errorf(renderErrorTemplateConstant, renderError)
	}
	return buffer.Bytes(), nil
}

func buildRow(repository manifest.TrackedRepository) []string {
	webURL := gitrepo.StripGitSuffix(repository.URL)
	return []string{
		fmt.Sprintf(markdownLinkTemplateConstant, escapeCell(repository.Name), webURL),
		fmt.Sprintf(markdownLinkTemplateConstant, gitrepo.ShortHash(repository.Commit), gitrepo.CommitURL(repository.URL, repository.Commit)),
		repository.Date,
	}
}

func escapeCell(text string) string {
	return strings.ReplaceAll(text, cellSeparatorConstant, escapedCellSeparatorConstant)
}
