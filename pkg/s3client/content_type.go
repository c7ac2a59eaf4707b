package s3client

import (
	"path/filepath"
	"strings"
)

// DetectContentType returns the MIME type for a report file based on its
// extension.
func DetectContentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".kml":
		return "application/vnd.google-earth.kml+xml"
	case ".json":
		return "application/json"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
