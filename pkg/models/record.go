package models

import (
	"time"

	"github.com/klanec/pic2pin/internal/geo"
)

// SkipReason classifies why a discovered file produced no record.
type SkipReason string

const (
	SkipNone                 SkipReason = ""
	SkipPathNotFound         SkipReason = "path-not-found"
	SkipPathUnreadable       SkipReason = "path-unreadable"
	SkipNoMetadataContainer  SkipReason = "no-metadata-container"
	SkipNoGPSGroup           SkipReason = "no-gps-group"
	SkipCorruptedMetadata    SkipReason = "corrupted-metadata"
	SkipInvalidReference     SkipReason = "invalid-gps-reference"
	SkipCoordinateOutOfRange SkipReason = "coordinate-out-of-range"
)

// FileRecord is one output-ready entry in the final report. Address is an
// enrichment slot filled by the reverse-geocoding collaborator, never by
// the extraction pipeline itself.
type FileRecord struct {
	Path        string
	Fingerprint string
	Coordinate  geo.Coordinate
	Taken       *time.Time
	CameraMake  string
	CameraModel string
	Address     string
}

// Outcome is the per-file processing result: a record, or a skip reason.
// Fingerprint is set whenever the file bytes could be read, regardless of
// whether they yielded a coordinate.
type Outcome struct {
	Path        string
	Fingerprint string
	Record      *FileRecord
	Skip        SkipReason
	Detail      string
}

// Skipped reports whether the file yielded no record.
func (o Outcome) Skipped() bool {
	return o.Record == nil
}
