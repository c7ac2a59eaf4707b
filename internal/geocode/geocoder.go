// Package geocode resolves coordinates to street addresses. It is an
// optional enrichment stage: it runs after the scan aggregate is complete
// and its failures are logged, never fatal.
package geocode

import (
	"context"

	"github.com/klanec/pic2pin/internal/geo"
)

// Address is a resolved reverse-geocoding result.
type Address struct {
	DisplayName string
	Country     string
	City        string
	Provider    string
}

// Geocoder resolves a coordinate to an address.
type Geocoder interface {
	Reverse(ctx context.Context, c geo.Coordinate) (Address, error)
}
