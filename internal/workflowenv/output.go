package workflowenv

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/temirov/headwatch/internal/utils"
)

const (
	outputLineTemplateConstant           = "%s=%s\n"
	stdoutOutputLineTemplateConstant     = "OUTPUT: %s=%s\n"
	outputFileOpenErrorTemplateConstant  = "unable to open output file %s: %w"
	outputWriteErrorTemplateConstant     = "unable to write output %s: %w"
	multilineOutputErrorTemplateConstant = "output %s must not contain line breaks"
	outputFilePermissionsConstant        = 0o644
	lineBreakCharactersConstant          = "\r\n"
)

// OutputSink receives step outputs as key/value pairs.
type OutputSink interface {
	WriteOutput(key string, value string) error
	Close() error
}

// FileOutputSink appends key=value lines to a file such as the one named by GITHUB_OUTPUT.
type FileOutputSink struct {
	path string
	file *os.File
}

// NewFileOutputSink opens the output file for appending, creating it when needed.
func NewFileOutputSink(path string) (*FileOutputSink, error) {
	outputFile, openError := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, outputFilePermissionsConstant)
	if openError != nil {
		return nil, fmt.Errorf(outputFileOpenErrorTemplateConstant, path, openError)
	}
	return &FileOutputSink{path: path, file: outputFile}, nil
}

// WriteOutput implements OutputSink.
func (sink *FileOutputSink) WriteOutput(key string, value string) error {
	if validationError := validateOutput(key, value); validationError != nil {
		return validationError
	}
	if _, writeError := fmt.Fprintf(sink.file, outputLineTemplateConstant, key, value); writeError != nil {
		return fmt.Errorf(outputWriteErrorTemplateConstant, key, writeError)
	}
	return nil
}

// Close implements OutputSink.
func (sink *FileOutputSink) Close() error {
	if sink == nil || sink.file == nil {
		return nil
	}
	closeError := sink.file.Close()
	sink.file = nil
	return closeError
}

// WriterOutputSink prints OUTPUT: key=value lines for runs outside a CI runner.
type WriterOutputSink struct {
	writer io.Writer
}

// NewWriterOutputSink wraps the writer so each line is flushed as soon as it is written.
func NewWriterOutputSink(writer io.Writer) *WriterOutputSink {
	return &WriterOutputSink{writer: utils.NewFlushingWriter(writer)}
}

// WriteOutput implements OutputSink.
func (sink *WriterOutputSink) WriteOutput(key string, value string) error {
	if validationError := validateOutput(key, value); validationError != nil {
		return validationError
	}
	if sink.writer == nil {
		return nil
	}
	if _, writeError := fmt.Fprintf(sink.writer, stdoutOutputLineTemplateConstant, key, value); writeError != nil {
		return fmt.Errorf(outputWriteErrorTemplateConstant, key, writeError)
	}
	return nil
}

// Close implements OutputSink.
func (sink *WriterOutputSink) Close() error {
	return nil
}

// ResolveOutputSink writes to the file named by outputVariable when it is set, and to fallbackWriter otherwise.
func ResolveOutputSink(environment Environment, outputVariable string, fallbackWriter io.Writer) (OutputSink, error) {
	if outputPath, exists := LookupNonEmpty(environment, outputVariable); exists {
		return NewFileOutputSink(outputPath)
	}
	return NewWriterOutputSink(fallbackWriter), nil
}

func validateOutput(key string, value string) error {
	if strings.ContainsAny(key, lineBreakCharactersConstant) || strings.ContainsAny(value, lineBreakCharactersConstant) {
		return fmt.Errorf(multilineOutputErrorTemplateConstant, key)
	}
	return nil
}
