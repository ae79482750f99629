package converter

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/james-see/svsbridge/pkg/merge"
	"github.com/james-see/svsbridge/pkg/model"
)

// Format represents a file format
type Format string

const (
	FormatMIDI    Format = "midi"
	FormatYAML    Format = "yaml"
	FormatUnknown Format = "unknown"
)

// ErrUnsupportedFormat is matched by every UnsupportedFormatError
var ErrUnsupportedFormat = errors.New("unsupported format")

// UnsupportedFormatError reports a format no plugin handles
type UnsupportedFormatError struct {
	Format Format
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format: %s", e.Format)
}

func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

// DetectFormat detects the format of a file based on its extension
func DetectFormat(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".mid", ".midi", ".smf":
		return FormatMIDI
	case ".yaml", ".yml", ".svsb":
		return FormatYAML
	default:
		return FormatUnknown
	}
}

// DetectFormatFromContent detects format from file content
func DetectFormatFromContent(data []byte) Format {
	if len(data) < 4 {
		return FormatUnknown
	}

	// Check for MIDI file signature "MThd"
	if string(data[:4]) == "MThd" {
		return FormatMIDI
	}

	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if bytes.HasPrefix(trimmed, []byte("---")) ||
		bytes.HasPrefix(trimmed, []byte("format:")) ||
		bytes.Contains(data, []byte("\ntracks:")) {
		return FormatYAML
	}

	return FormatUnknown
}

// Load decodes data, applies tempo and meter defaults and validates notes
func (c *Converter) Load(data []byte, format Format, w *model.Warnings) (*model.Project, error) {
	plugin, err := c.Plugin(format)
	if err != nil {
		return nil, err
	}
	project, err := plugin.Load(data, w)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", format, err)
	}
	project.Normalize()
	if err := model.CheckNoteOverlaps(project); err != nil {
		return nil, err
	}
	return project, nil
}

// Dump encodes project with the plugin for format
func (c *Converter) Dump(project *model.Project, format Format, w *model.Warnings) ([]byte, error) {
	plugin, err := c.Plugin(format)
	if err != nil {
		return nil, err
	}
	data, err := plugin.Dump(project, w)
	if err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", format, err)
	}
	return data, nil
}

// Convert converts data from one format to another
func (c *Converter) Convert(data []byte, from, to Format) (*Result, error) {
	var w model.Warnings
	project, err := c.Load(data, from, &w)
	if err != nil {
		return nil, err
	}
	out, err := c.Dump(project, to, &w)
	if err != nil {
		return nil, err
	}
	return &Result{Data: out, Format: to, Project: project, Warnings: w.List()}, nil
}

// Merge loads every input and merges them into one project written as to
func (c *Converter) Merge(inputs []Input, to Format) (*Result, error) {
	var w model.Warnings
	projects := make([]*model.Project, 0, len(inputs))
	for _, in := range inputs {
		project, err := c.Load(in.Data, in.Format, &w)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", in.Name, err)
		}
		projects = append(projects, project)
	}
	merged, err := merge.Projects(projects, &w)
	if err != nil {
		return nil, err
	}
	out, err := c.Dump(merged, to, &w)
	if err != nil {
		return nil, err
	}
	return &Result{Data: out, Format: to, Project: merged, Warnings: w.List()}, nil
}

// ReadInput reads a file and resolves its format by extension, then content
func (c *Converter) ReadInput(path string) (Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Input{}, fmt.Errorf("failed to read input file: %w", err)
	}
	format := DetectFormat(path)
	if format == FormatUnknown {
		format = DetectFormatFromContent(data)
	}
	if format == FormatUnknown {
		return Input{}, fmt.Errorf("%s: cannot determine input format", path)
	}
	return Input{Name: path, Data: data, Format: format}, nil
}

// LoadFile reads and loads a single project file
func (c *Converter) LoadFile(path string) (*model.Project, []model.Warning, error) {
	in, err := c.ReadInput(path)
	if err != nil {
		return nil, nil, err
	}
	var w model.Warnings
	project, err := c.Load(in.Data, in.Format, &w)
	if err != nil {
		return nil, nil, err
	}
	return project, w.List(), nil
}

// ConvertFile converts a file from one format to another
func (c *Converter) ConvertFile(inputPath, outputPath string) (*Result, error) {
	outputFormat := DetectFormat(outputPath)
	if outputFormat == FormatUnknown {
		return nil, errors.New("cannot determine output format from filename")
	}

	in, err := c.ReadInput(inputPath)
	if err != nil {
		return nil, err
	}

	result, err := c.Convert(in.Data, in.Format, outputFormat)
	if err != nil {
		return nil, fmt.Errorf("conversion failed: %w", err)
	}

	if err := os.WriteFile(outputPath, result.Data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write output file: %w", err)
	}

	return result, nil
}

// MergeFiles merges several project files into outputPath
func (c *Converter) MergeFiles(inputPaths []string, outputPath string) (*Result, error) {
	outputFormat := DetectFormat(outputPath)
	if outputFormat == FormatUnknown {
		return nil, errors.New("cannot determine output format from filename")
	}

	inputs := make([]Input, 0, len(inputPaths))
	for _, path := range inputPaths {
		in, err := c.ReadInput(path)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}

	result, err := c.Merge(inputs, outputFormat)
	if err != nil {
		return nil, fmt.Errorf("merge failed: %w", err)
	}

	if err := os.WriteFile(outputPath, result.Data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write output file: %w", err)
	}

	return result, nil
}

// SupportedConversions returns a list of supported conversion paths
func (c *Converter) SupportedConversions() []string {
	var out []string
	for _, from := range c.order {
		for _, to := range c.order {
			out = append(out, fmt.Sprintf("%s -> %s", from, to))
		}
	}
	return out
}
