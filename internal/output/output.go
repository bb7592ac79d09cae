// Package output formats command results as text, JSON or YAML, and reports
// errors on stderr.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is an output format.
type Format int

const (
	FormatText Format = iota
	FormatJSON
	FormatYAML
)

// String returns the string representation of the format
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return "text"
	}
}

// ParseFormat parses a --format value.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return FormatText, fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
}

// Result is a command result that can be rendered as text or as data.
type Result interface {
	Text(w io.Writer) error
	Data() any
}

// Formatter handles output formatting for commands
type Formatter struct {
	format Format
	writer io.Writer
}

// Option is a functional option for Formatter
type Option func(*Formatter)

// WithFormat sets the output format
func WithFormat(format Format) Option {
	return func(f *Formatter) {
		f.format = format
	}
}

// WithWriter sets the output writer
func WithWriter(w io.Writer) Option {
	return func(f *Formatter) {
		f.writer = w
	}
}

// New creates a new Formatter with the given options
func New(opts ...Option) *Formatter {
	f := &Formatter{format: FormatText, writer: os.Stdout}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format returns the configured format.
func (f *Formatter) Format() Format {
	return f.format
}

// Output writes r in the configured format.
func (f *Formatter) Output(r Result) error {
	switch f.format {
	case FormatJSON:
		return WriteJSON(f.writer, r.Data())
	case FormatYAML:
		return WriteYAML(f.writer, r.Data())
	default:
		return r.Text(f.writer)
	}
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// WriteYAML writes v as YAML.
func WriteYAML(w io.Writer, v any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return err
	}
	return encoder.Close()
}
