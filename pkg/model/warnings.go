package model

import "fmt"

// Warning is a recoverable condition met during one conversion.
type Warning struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Source, w.Message)
}

// Warnings accumulates the warnings of a single conversion. A nil *Warnings
// discards everything, so pure helpers can take one unconditionally.
type Warnings struct {
	items []Warning
}

// Add records a warning.
func (w *Warnings) Add(source, format string, args ...any) {
	if w == nil {
		return
	}
	w.items = append(w.items, Warning{Source: source, Message: fmt.Sprintf(format, args...)})
}

// List returns the recorded warnings in order.
func (w *Warnings) List() []Warning {
	if w == nil {
		return nil
	}
	return w.items
}

// Len returns the number of recorded warnings.
func (w *Warnings) Len() int {
	if w == nil {
		return 0
	}
	return len(w.items)
}
