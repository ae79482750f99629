// Package converter moves singing voice synthesis projects between file
// formats through the canonical model.
package converter

import (
	"github.com/james-see/svsbridge/pkg/model"
)

// Plugin reads and writes one file format
type Plugin interface {
	Name() string
	Format() Format
	Extensions() []string
	Load(data []byte, w *model.Warnings) (*model.Project, error)
	Dump(project *model.Project, w *model.Warnings) ([]byte, error)
}

// Result holds the result of a conversion
type Result struct {
	Data     []byte
	Format   Format
	Project  *model.Project
	Warnings []model.Warning
}

// Input is one encoded project handed to Merge
type Input struct {
	Name   string
	Data   []byte
	Format Format
}

// Converter handles format conversions between registered plugins
type Converter struct {
	plugins map[Format]Plugin
	order   []Format
}

// New creates a new Converter with the given plugins
func New(plugins ...Plugin) *Converter {
	c := &Converter{plugins: make(map[Format]Plugin)}
	for _, p := range plugins {
		c.Register(p)
	}
	return c
}

// Register adds a plugin, replacing any plugin for the same format
func (c *Converter) Register(p Plugin) {
	if _, ok := c.plugins[p.Format()]; !ok {
		c.order = append(c.order, p.Format())
	}
	c.plugins[p.Format()] = p
}

// Plugin returns the plugin handling format
func (c *Converter) Plugin(format Format) (Plugin, error) {
	p, ok := c.plugins[format]
	if !ok {
		return nil, &UnsupportedFormatError{Format: format}
	}
	return p, nil
}

// Formats returns the registered formats in registration order
func (c *Converter) Formats() []Format {
	return append([]Format(nil), c.order...)
}
