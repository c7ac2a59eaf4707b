// internal/geo/geo.go
package geo

import (
	"fmt"

	"github.com/klanec/pic2pin/internal/metadata"
)

// Coordinate is an immutable decimal-degree position. Latitude is within
// [-90, 90], longitude within [-180, 180]; southern and western hemispheres
// are negative. Altitude is meters relative to sea level when present.
type Coordinate struct {
	Latitude  float64
	Longitude float64
	Altitude  *float64
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f, %.6f", c.Latitude, c.Longitude)
}

// InvalidReferenceError indicates a hemisphere reference byte that is none
// of N/S/E/W.
type InvalidReferenceError struct {
	Axis string
	Ref  byte
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("invalid %s reference %q", e.Axis, string(e.Ref))
}

// OutOfRangeError indicates a normalized value outside the legal range for
// its axis, which can only come from numerically corrupt components.
type OutOfRangeError struct {
	Axis  string
	Value float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s %f out of range", e.Axis, e.Value)
}

// Normalize converts a raw GPS tag set into a Coordinate. Out-of-range
// results are errors, never clamped; display precision is left to the
// renderers.
func Normalize(ts *metadata.RawGPSTagSet) (Coordinate, error) {
	var c Coordinate

	lat, err := DMSToDecimal(ts.Latitude)
	if err != nil {
		return c, err
	}
	switch ts.LatitudeRef {
	case 'N':
	case 'S':
		lat = -lat
	default:
		return c, &InvalidReferenceError{Axis: "latitude", Ref: ts.LatitudeRef}
	}
	if lat < -90 || lat > 90 {
		return c, &OutOfRangeError{Axis: "latitude", Value: lat}
	}

	lon, err := DMSToDecimal(ts.Longitude)
	if err != nil {
		return c, err
	}
	switch ts.LongitudeRef {
	case 'E':
	case 'W':
		lon = -lon
	default:
		return c, &InvalidReferenceError{Axis: "longitude", Ref: ts.LongitudeRef}
	}
	if lon < -180 || lon > 180 {
		return c, &OutOfRangeError{Axis: "longitude", Value: lon}
	}

	c.Latitude = lat
	c.Longitude = lon

	if ts.Altitude != nil {
		if alt, err := ts.Altitude.Float(); err == nil {
			if ts.AltitudeRef == 1 {
				alt = -alt
			}
			c.Altitude = &alt
		}
	}

	return c, nil
}

// DMSToDecimal computes degrees + minutes/60 + seconds/3600 from rational
// components in double precision.
func DMSToDecimal(dms [3]metadata.Rational) (float64, error) {
	deg, err := dms[0].Float()
	if err != nil {
		return 0, err
	}
	min, err := dms[1].Float()
	if err != nil {
		return 0, err
	}
	sec, err := dms[2].Float()
	if err != nil {
		return 0, err
	}
	return deg + min/60 + sec/3600, nil
}
