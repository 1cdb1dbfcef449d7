package util

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/traincamp/traincamp-backend/database"
)

// Miles to meters, used when translating a radius into a GEO_DISTANCE bound
const MetersPerMile = 1609.34

// GeoPoint is a geocoded location
type GeoPoint struct {
	Lat float64
	Lng float64
}

type geocodeResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// GeocodeZip resolves a postal code to coordinates through the configured
// geocoding endpoint (Nominatim-compatible query interface).
func GeocodeZip(ctx context.Context, zipcode string) (*GeoPoint, error) {
	params := url.Values{}
	params.Set("postalcode", zipcode)
	params.Set("countrycodes", database.GetEnvDefault("GEOCODER_COUNTRY", "us"))
	return geocode(ctx, params, zipcode)
}

// GeocodeAddress resolves a free-form address to coordinates
func GeocodeAddress(ctx context.Context, address string) (*GeoPoint, error) {
	params := url.Values{}
	params.Set("q", address)
	return geocode(ctx, params, address)
}

func geocode(ctx context.Context, params url.Values, query string) (*GeoPoint, error) {
	base := database.GetEnvDefault("GEOCODER_URL", "https://nominatim.openstreetmap.org/search")

	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "traincamp-backend")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	var results []geocodeResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no location found for %q", query)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("geocoder returned invalid latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("geocoder returned invalid longitude: %w", err)
	}

	return &GeoPoint{Lat: lat, Lng: lng}, nil
}
