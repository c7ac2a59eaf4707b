package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/klanec/pic2pin/internal/geo"
)

// DefaultEndpoint is the public Nominatim instance. Its usage policy allows
// at most one request per second; Enricher enforces that.
const DefaultEndpoint = "https://nominatim.openstreetmap.org"

// Nominatim resolves coordinates through a Nominatim reverse-geocoding
// endpoint.
type Nominatim struct {
	endpoint   string
	userAgent  string
	httpClient *http.Client
	retry      RetryConfig
}

// NewNominatim creates a Nominatim geocoder. The contact email goes into
// the User-Agent, as the public instance's policy requires.
func NewNominatim(endpoint, email, version string) *Nominatim {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	ua := fmt.Sprintf("pic2pin/%s", version)
	if email != "" {
		ua += fmt.Sprintf(" (%s)", email)
	}
	return &Nominatim{
		endpoint:  endpoint,
		userAgent: ua,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		retry: DefaultRetryConfig(),
	}
}

type nominatimResponse struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
	Address     struct {
		Country string `json:"country"`
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
	} `json:"address"`
}

// Reverse resolves a coordinate to an address.
func (n *Nominatim) Reverse(ctx context.Context, c geo.Coordinate) (Address, error) {
	params := url.Values{}
	params.Set("format", "jsonv2")
	params.Set("lat", strconv.FormatFloat(c.Latitude, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(c.Longitude, 'f', -1, 64))

	reqURL := n.endpoint + "/reverse?" + params.Encode()

	var nr nominatimResponse
	lookup := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", n.userAgent)

		resp, err := n.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("reverse geocoding request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return &StatusError{Code: resp.StatusCode}
		}

		nr = nominatimResponse{}
		if err := json.NewDecoder(resp.Body).Decode(&nr); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
		return nil
	}

	op := fmt.Sprintf("reverse geocode %s", c)
	if err := RetryWithBackoff(ctx, op, lookup, n.retry); err != nil {
		return Address{}, err
	}

	if nr.Error != "" {
		return Address{}, fmt.Errorf("nominatim: %s", nr.Error)
	}
	if nr.DisplayName == "" {
		return Address{}, fmt.Errorf("no address found for %s", c)
	}

	city := nr.Address.City
	if city == "" {
		city = nr.Address.Town
	}
	if city == "" {
		city = nr.Address.Village
	}

	return Address{
		DisplayName: nr.DisplayName,
		Country:     nr.Address.Country,
		City:        city,
		Provider:    "nominatim",
	}, nil
}
