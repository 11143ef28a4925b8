package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"
)

// DefaultGeocoderURL is the public Nominatim instance
const DefaultGeocoderURL = "https://nominatim.openstreetmap.org"

// MinLocationQuery is the shortest location query worth searching for
const MinLocationQuery = 3

// ErrLocationNotFound is returned when a search has no results
var ErrLocationNotFound = errors.New("location not found")

// Place is a geocoded location
type Place struct {
	Name string
	Lat  float64
	Lon  float64
}

type nominatimResult struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Geocode resolves a free-text location such as "Tegal" through the
// Nominatim search API at geocoderURL. The first match wins.
func (c *Client) Geocode(ctx context.Context, geocoderURL, query string) (*Place, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinLocationQuery {
		return nil, &ValidationError{Fields: []FieldError{{Field: "location", Rule: "min"}}}
	}
	if geocoderURL == "" {
		geocoderURL = DefaultGeocoderURL
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	endpoint := strings.TrimSuffix(geocoderURL, "/") + "/search?" + url.Values{
		"format": {"json"},
		"q":      {query},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	// Nominatim rejects anonymous clients
	req.Header.Set("User-Agent", "tanami-cli")

	var results []nominatimResult
	if err := c.execute(req, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrLocationNotFound, query)
	}

	first := results[0]
	lat, err := strconv.ParseFloat(first.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude %q: %w", first.Lat, err)
	}
	lon, err := strconv.ParseFloat(first.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude %q: %w", first.Lon, err)
	}

	return &Place{Name: first.DisplayName, Lat: lat, Lon: lon}, nil
}

// Crop is a crop the planting recommender knows about
type Crop struct {
	ID   string
	Name string
}

// Crops lists the crop IDs accepted by PlantingRecommendations, AllCrops
// first
var Crops = []Crop{
	{AllCrops, "Semua Tanaman"},
	{"padi", "Padi"},
	{"jagung", "Jagung"},
	{"kedelai", "Kedelai"},
	{"cabai", "Cabai"},
	{"tomat", "Tomat"},
	{"bawang_merah", "Bawang Merah"},
	{"bawang_putih", "Bawang Putih"},
	{"kentang", "Kentang"},
	{"wortel", "Wortel"},
	{"bayam", "Bayam"},
	{"kangkung", "Kangkung"},
	{"sawi", "Sawi"},
	{"terong", "Terong"},
	{"timun", "Timun"},
	{"labu", "Labu"},
	{"kacang_tanah", "Kacang Tanah"},
	{"kacang_panjang", "Kacang Panjang"},
	{"singkong", "Singkong"},
	{"ubi_jalar", "Ubi Jalar"},
	{"buncis", "Buncis"},
}

// CropIDs returns the IDs in Crops
func CropIDs() []string {
	ids := make([]string, len(Crops))
	for i, crop := range Crops {
		ids[i] = crop.ID
	}
	return ids
}
