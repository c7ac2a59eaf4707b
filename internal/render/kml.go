package render

import (
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klanec/pic2pin/pkg/models"
)

type kmlRenderer struct{}

// KML structure per the OGC schema. Point coordinates are ordered
// longitude,latitude[,altitude].
type kmlDocument struct {
	XMLName   xml.Name       `xml:"kml"`
	Xmlns     string         `xml:"xmlns,attr"`
	Name      string         `xml:"Document>name"`
	Placemark []kmlPlacemark `xml:"Document>Placemark"`
}

type kmlPlacemark struct {
	Name        string   `xml:"name"`
	Description string   `xml:"description,omitempty"`
	Point       kmlPoint `xml:"Point"`
}

type kmlPoint struct {
	Coordinates string `xml:"coordinates"`
}

func (r *kmlRenderer) Render(w io.Writer, outcomes []models.Outcome) error {
	doc := kmlDocument{
		Xmlns: "http://www.opengis.net/kml/2.2",
		Name:  "pic2pin photo locations",
	}

	// Skipped files carry no geometry; they stay in the plain/JSON reports
	// and the scan log.
	for _, o := range outcomes {
		if o.Skipped() {
			continue
		}
		rec := o.Record

		coords := fmt.Sprintf("%f,%f", rec.Coordinate.Longitude, rec.Coordinate.Latitude)
		if rec.Coordinate.Altitude != nil {
			coords += fmt.Sprintf(",%f", *rec.Coordinate.Altitude)
		}

		doc.Placemark = append(doc.Placemark, kmlPlacemark{
			Name:        filepath.Base(rec.Path),
			Description: placemarkDescription(rec),
			Point:       kmlPoint{Coordinates: coords},
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func placemarkDescription(rec *models.FileRecord) string {
	parts := []string{"sha256: " + rec.Fingerprint}
	if rec.Taken != nil {
		parts = append(parts, "taken: "+rec.Taken.Format("2006-01-02 15:04:05"))
	}
	if rec.CameraMake != "" || rec.CameraModel != "" {
		parts = append(parts, strings.TrimSpace(rec.CameraMake+" "+rec.CameraModel))
	}
	if rec.Address != "" {
		parts = append(parts, rec.Address)
	}
	return strings.Join(parts, "\n")
}
