package metadata

import (
	"io"
	"time"

	goexif "github.com/rwcarlsen/goexif/exif"
)

// CameraInfo holds descriptive metadata used in report descriptions. All
// fields are optional.
type CameraInfo struct {
	Taken *time.Time
	Make  string
	Model string
}

// ReadCamera extracts descriptive tags from a reader. It is best-effort:
// any decode failure simply yields nil, since a record without camera
// details is still a complete record.
func ReadCamera(r io.Reader) *CameraInfo {
	x, err := goexif.Decode(r)
	if err != nil {
		return nil
	}

	info := &CameraInfo{}

	if dt, err := x.DateTime(); err == nil {
		info.Taken = &dt
	}

	if mk, err := x.Get(goexif.Make); err == nil {
		if str, err := mk.StringVal(); err == nil {
			info.Make = str
		}
	}

	if model, err := x.Get(goexif.Model); err == nil {
		if str, err := model.StringVal(); err == nil {
			info.Model = str
		}
	}

	if info.Taken == nil && info.Make == "" && info.Model == "" {
		return nil
	}
	return info
}
