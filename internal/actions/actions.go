// Package actions emits step outputs and error annotations in the form
// the invoking CI pipeline consumes (GitHub Actions workflow commands
// and the GITHUB_OUTPUT file protocol).
package actions

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Emitter publishes key/value outputs and error annotations for the
// invoking pipeline.
type Emitter interface {
	// SetOutput publishes a key/value pair, exactly once per key.
	SetOutput(key, value string) error
	// Error prints an error annotation before a failing exit.
	Error(msg string)
}

// WorkflowEmitter implements Emitter against a real pipeline: outputs
// are appended to the GITHUB_OUTPUT file when the environment provides
// one, and fall back to the legacy ::set-output workflow command
// otherwise. Annotations always go to the command stream.
type WorkflowEmitter struct {
	out        io.Writer
	outputPath string
}

// NewEmitter creates an emitter wired to the process environment:
// commands to stdout, outputs to $GITHUB_OUTPUT when set.
func NewEmitter() *WorkflowEmitter {
	return &WorkflowEmitter{out: os.Stdout, outputPath: os.Getenv("GITHUB_OUTPUT")}
}

// NewEmitterWithWriter creates an emitter with an explicit command
// stream and output file path, for tests and dry runs.
func NewEmitterWithWriter(w io.Writer, outputPath string) *WorkflowEmitter {
	return &WorkflowEmitter{out: w, outputPath: outputPath}
}

// SetOutput publishes a key/value pair to the pipeline.
func (e *WorkflowEmitter) SetOutput(key, value string) error {
	if e.outputPath == "" {
		_, err := fmt.Fprintf(e.out, "::set-output name=%s::%s\n", key, escapeData(value))
		return err
	}

	f, err := os.OpenFile(e.outputPath, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(formatFileOutput(key, value)); err != nil {
		return fmt.Errorf("write output %s: %w", key, err)
	}
	return nil
}

// Error prints an ::error:: annotation.
func (e *WorkflowEmitter) Error(msg string) {
	fmt.Fprintf(e.out, "::error::%s\n", escapeData(msg))
}

// formatFileOutput renders a GITHUB_OUTPUT entry. Single-line values use
// the key=value form; anything containing a newline gets a heredoc with
// a delimiter guaranteed not to collide with the value.
func formatFileOutput(key, value string) string {
	if !strings.Contains(value, "\n") {
		return fmt.Sprintf("%s=%s\n", key, value)
	}

	delimiter := "ghadelimiter_" + uuid.New().String()
	for strings.Contains(value, delimiter) {
		delimiter = "ghadelimiter_" + uuid.New().String()
	}
	return fmt.Sprintf("%s<<%s\n%s\n%s\n", key, delimiter, value, delimiter)
}

// escapeData escapes a workflow command data section; the runner
// reverses this when it parses the command.
func escapeData(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	s = strings.ReplaceAll(s, "\n", "%0A")
	return s
}

// JSONString serializes s as a JSON string literal. HTML characters are
// left unescaped so the consumer recovers the original text
// byte-for-byte after unquoting.
func JSONString(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}

// Verify WorkflowEmitter implements Emitter at compile time.
var _ Emitter = (*WorkflowEmitter)(nil)
