// Package render turns the aggregate outcome sequence into the report
// formats: plain text, JSON and KML.
package render

import (
	"fmt"
	"io"

	"github.com/klanec/pic2pin/pkg/models"
)

// Format names a report output format.
type Format string

const (
	FormatPlain Format = "plain"
	FormatJSON  Format = "json"
	FormatKML   Format = "kml"
)

// Renderer writes a report for an ordered outcome sequence.
type Renderer interface {
	Render(w io.Writer, outcomes []models.Outcome) error
}

// New returns the renderer for a format.
func New(format Format) (Renderer, error) {
	switch format {
	case FormatPlain:
		return &plainRenderer{}, nil
	case FormatJSON:
		return &jsonRenderer{}, nil
	case FormatKML:
		return &kmlRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// Extension returns the file extension conventionally used for a format.
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatKML:
		return ".kml"
	default:
		return ".txt"
	}
}
