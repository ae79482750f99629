package formats

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/james-see/svsbridge/pkg/converter"
	"github.com/james-see/svsbridge/pkg/model"
)

const (
	yamlSource   = "yaml"
	yamlFormatID = "svsbridge"
	yamlVersion  = 1
)

// ErrNewerVersion is returned for documents written by a newer release.
var ErrNewerVersion = errors.New("document version is newer than supported")

type yamlDocument struct {
	Format        string `yaml:"format"`
	Version       int    `yaml:"version"`
	model.Project `yaml:",inline"`
}

// YAML stores the canonical project as a human-editable YAML document.
type YAML struct{}

// NewYAML creates a YAML plugin
func NewYAML() *YAML {
	return &YAML{}
}

func (y *YAML) Name() string             { return "svsbridge YAML" }
func (y *YAML) Format() converter.Format { return converter.FormatYAML }
func (y *YAML) Extensions() []string     { return []string{".yaml", ".yml", ".svsb"} }

// Load decodes a YAML document. Unknown keys are rejected.
func (y *YAML) Load(data []byte, w *model.Warnings) (*model.Project, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc yamlDocument
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty document")
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	switch {
	case doc.Format == "":
		w.Add(yamlSource, "document has no format marker; assuming %s", yamlFormatID)
	case doc.Format != yamlFormatID:
		return nil, fmt.Errorf("unexpected document format %q", doc.Format)
	}
	if doc.Version > yamlVersion {
		return nil, fmt.Errorf("version %d: %w", doc.Version, ErrNewerVersion)
	}

	project := doc.Project
	for i := range project.TrackList {
		t := &project.TrackList[i]
		if t.Kind == "" {
			t.Kind = model.TrackSinging
			if t.AudioFilePath != "" {
				t.Kind = model.TrackInstrumental
			}
		}
	}
	return &project, nil
}

// Dump encodes project as a YAML document
func (y *YAML) Dump(project *model.Project, w *model.Warnings) ([]byte, error) {
	if project == nil {
		return nil, errors.New("nil project")
	}
	doc := yamlDocument{Format: yamlFormatID, Version: yamlVersion, Project: *project}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	return buf.Bytes(), nil
}
