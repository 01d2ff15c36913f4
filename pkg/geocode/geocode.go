// Package geocode resolves a free-text location into a lat/lon bounding
// rectangle used to bias place searches.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// ErrLocationUnresolvable means the geocoder returned no usable match.
// Collection cannot proceed without a rectangle, so callers treat this as
// fatal for the whole request.
var ErrLocationUnresolvable = errors.New("geocode: location could not be resolved")

// fallbackSpan pads a point result into a rectangle when the geocoder
// returns no bounding box, roughly a city-sized area.
const fallbackSpan = 0.2

type LatLng struct {
	Lat float64
	Lon float64
}

// Rect is a bounding rectangle with Low as the south-west corner and High
// as the north-east corner.
type Rect struct {
	Low  LatLng
	High LatLng
}

type Resolver interface {
	Resolve(ctx context.Context, location string) (Rect, error)
}

// GeoapifyResolver resolves locations through the Geoapify forward
// geocoding API. Results are cached in-process; locations rarely move.
type GeoapifyResolver struct {
	apiKey  string
	baseURL string
	cache   *gocache.Cache
}

func NewGeoapifyResolver(apiKey string) *GeoapifyResolver {
	return &GeoapifyResolver{
		apiKey:  apiKey,
		baseURL: "https://api.geoapify.com/v1/geocode/search",
		cache:   gocache.New(24*time.Hour, 1*time.Hour),
	}
}

type geoapifyResult struct {
	Results []struct {
		Lat  float64 `json:"lat"`
		Lon  float64 `json:"lon"`
		BBox *struct {
			Lon1 float64 `json:"lon1"`
			Lat1 float64 `json:"lat1"`
			Lon2 float64 `json:"lon2"`
			Lat2 float64 `json:"lat2"`
		} `json:"bbox"`
	} `json:"results"`
}

func (r *GeoapifyResolver) Resolve(ctx context.Context, location string) (Rect, error) {
	cacheKey := fmt.Sprintf("geocode:%s", strings.ToLower(strings.TrimSpace(location)))
	if val, ok := r.cache.Get(cacheKey); ok {
		return val.(Rect), nil
	}

	params := url.Values{}
	params.Add("text", location)
	params.Add("format", "json")
	params.Add("limit", "1")
	params.Add("apiKey", r.apiKey)

	req, err := http.NewRequestWithContext(ctx, "GET", r.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return Rect{}, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return Rect{}, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return Rect{}, fmt.Errorf("geocode api error (status %d): %s", resp.StatusCode, string(body))
	}

	var result geoapifyResult
	if err := json.Unmarshal(body, &result); err != nil {
		return Rect{}, fmt.Errorf("failed to decode geocode response: %w", err)
	}

	if len(result.Results) == 0 {
		return Rect{}, fmt.Errorf("%w: %q", ErrLocationUnresolvable, location)
	}

	match := result.Results[0]
	rect := Rect{
		Low:  LatLng{Lat: match.Lat - fallbackSpan, Lon: match.Lon - fallbackSpan},
		High: LatLng{Lat: match.Lat + fallbackSpan, Lon: match.Lon + fallbackSpan},
	}
	if match.BBox != nil {
		rect = Rect{
			Low:  LatLng{Lat: match.BBox.Lat1, Lon: match.BBox.Lon1},
			High: LatLng{Lat: match.BBox.Lat2, Lon: match.BBox.Lon2},
		}
	}

	r.cache.Set(cacheKey, rect, gocache.DefaultExpiration)
	return rect, nil
}
