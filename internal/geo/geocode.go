package geo

import (
	"context"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"

	"visits/internal/model"
)

// Geocoder resolves a coordinate into a street-level and a full formatted
// address. Implementations must treat failure as "no address", never as a
// reason to fail the batch they are called from.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, c model.Coordinate) (model.Address, error)
}

// NoopGeocoder resolves nothing. Used when no maps API key is configured.
type NoopGeocoder struct{}

func (NoopGeocoder) ReverseGeocode(context.Context, model.Coordinate) (model.Address, error) {
	return model.Address{}, nil
}

// GoogleGeocoder resolves addresses via the Google Maps Geocoding API.
type GoogleGeocoder struct {
	client *maps.Client
}

// NewGoogleGeocoder creates a GoogleGeocoder with the given API key.
func NewGoogleGeocoder(apiKey string) (*GoogleGeocoder, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleGeocoder{client: client}, nil
}

func (g *GoogleGeocoder) ReverseGeocode(ctx context.Context, c model.Coordinate) (model.Address, error) {
	results, err := g.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: c.Lat, Lng: c.Lng},
	})
	if err != nil {
		return model.Address{}, fmt.Errorf("reverse geocode: %w", err)
	}
	if len(results) == 0 {
		return model.Address{}, nil
	}
	first := results[0]
	full := first.FormattedAddress
	street := streetFrom(first)
	if street == "" {
		street = full
	}
	return model.Address{Street: street, Full: full}, nil
}

func streetFrom(r maps.GeocodingResult) string {
	var route, number string
	for _, comp := range r.AddressComponents {
		for _, t := range comp.Types {
			switch t {
			case "route":
				route = comp.LongName
			case "street_number":
				number = comp.LongName
			}
		}
	}
	return strings.TrimSpace(route + " " + number)
}
