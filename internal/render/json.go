package render

import (
	"encoding/json"
	"io"
	"time"

	"github.com/klanec/pic2pin/pkg/models"
)

type jsonRenderer struct{}

// jsonEntry is one element of the output array. Records carry coordinates;
// skipped files carry their skip reason so the report never hides data
// loss.
type jsonEntry struct {
	Path        string   `json:"path"`
	Fingerprint string   `json:"fingerprint,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Altitude    *float64 `json:"altitude,omitempty"`
	Address     string   `json:"address,omitempty"`
	Taken       string   `json:"taken,omitempty"`
	Skipped     string   `json:"skipped,omitempty"`
	Detail      string   `json:"detail,omitempty"`
}

func (r *jsonRenderer) Render(w io.Writer, outcomes []models.Outcome) error {
	entries := make([]jsonEntry, 0, len(outcomes))

	for _, o := range outcomes {
		entry := jsonEntry{
			Path:        o.Path,
			Fingerprint: o.Fingerprint,
		}
		if o.Skipped() {
			entry.Skipped = string(o.Skip)
			entry.Detail = o.Detail
		} else {
			rec := o.Record
			lat, lon := rec.Coordinate.Latitude, rec.Coordinate.Longitude
			entry.Latitude = &lat
			entry.Longitude = &lon
			entry.Altitude = rec.Coordinate.Altitude
			entry.Address = rec.Address
			if rec.Taken != nil {
				entry.Taken = rec.Taken.Format(time.RFC3339)
			}
		}
		entries = append(entries, entry)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}
