// internal/pkg/geo/client.go
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/marketplace-backend/internal/config"
)

// Route describes a driving route between two coordinate pairs.
type Route struct {
	DistanceMeters  float64     `json:"distance_m"`
	DurationSeconds float64     `json:"duration_s"`
	Coordinates     [][]float64 `json:"coordinates"` // [lon, lat] pairs as returned by the provider
}

// Geocoder resolves free-text addresses to coordinates. A nil result with
// a nil error means the provider had no match.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*Coordinates, error)
}

// Router computes driving routes. A nil result with a nil error means no
// route could be found between the two points.
type Router interface {
	Directions(ctx context.Context, origin, destination Coordinates) (*Route, error)
}

// Client calls the OpenRouteService geocoding and directions APIs.
// Geocoding results are cached in Redis keyed by the address text.
type Client struct {
	config     *config.Config
	httpClient *retryablehttp.Client
	redis      *redis.Client
	logger     *logrus.Entry
}

// NewClient creates a new geo provider client. redisClient may be nil, in
// which case geocoding results are not cached.
func NewClient(cfg *config.Config, redisClient *redis.Client, logger *logrus.Entry) *Client {
	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = 2
	httpClient.HTTPClient.Timeout = cfg.Geo.RequestTimeout
	httpClient.Logger = nil

	return &Client{
		config:     cfg,
		httpClient: httpClient,
		redis:      redisClient,
		logger:     logger,
	}
}

// geoJSON is the subset of the provider's GeoJSON response we consume.
type geoJSON struct {
	Features []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Segments []struct {
				Distance float64 `json:"distance"`
				Duration float64 `json:"duration"`
			} `json:"segments"`
		} `json:"properties"`
	} `json:"features"`
}

// geocodeJSON differs from geoJSON in that point geometries carry a flat
// coordinate pair instead of a list of pairs.
type geocodeJSON struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// Geocode resolves a free-text address to coordinates.
func (c *Client) Geocode(ctx context.Context, address string) (*Coordinates, error) {
	cacheKey := "geo:geocode:" + address

	if c.redis != nil {
		if cached, err := c.redis.Get(ctx, cacheKey).Result(); err == nil {
			var coords Coordinates
			if err := json.Unmarshal([]byte(cached), &coords); err == nil {
				return &coords, nil
			}
		}
	}

	endpoint := fmt.Sprintf("%s/geocode/search?api_key=%s&text=%s",
		c.config.Geo.BaseURL, c.config.Geo.APIKey, url.QueryEscape(address))

	var result geocodeJSON
	if err := c.getJSON(ctx, endpoint, &result); err != nil {
		return nil, fmt.Errorf("geocoding request failed: %w", err)
	}

	if len(result.Features) == 0 || len(result.Features[0].Geometry.Coordinates) < 2 {
		c.logger.WithField("address", address).Warn("no geocoding results")
		return nil, nil
	}

	// The provider returns [longitude, latitude].
	pair := result.Features[0].Geometry.Coordinates
	coords := &Coordinates{Latitude: pair[1], Longitude: pair[0]}

	if c.redis != nil {
		if payload, err := json.Marshal(coords); err == nil {
			if err := c.redis.Set(ctx, cacheKey, payload, c.config.Geo.CacheTTL).Err(); err != nil {
				c.logger.WithError(err).Debug("failed to cache geocoding result")
			}
		}
	}

	return coords, nil
}

// Directions computes a driving route between two coordinate pairs.
func (c *Client) Directions(ctx context.Context, origin, destination Coordinates) (*Route, error) {
	endpoint := fmt.Sprintf("%s/v2/directions/driving-car?api_key=%s&start=%f,%f&end=%f,%f",
		c.config.Geo.BaseURL, c.config.Geo.APIKey,
		origin.Longitude, origin.Latitude,
		destination.Longitude, destination.Latitude)

	var result geoJSON
	if err := c.getJSON(ctx, endpoint, &result); err != nil {
		return nil, fmt.Errorf("directions request failed: %w", err)
	}

	if len(result.Features) == 0 {
		return nil, nil
	}

	feature := result.Features[0]
	route := &Route{Coordinates: feature.Geometry.Coordinates}
	if len(feature.Properties.Segments) > 0 {
		route.DistanceMeters = feature.Properties.Segments[0].Distance
		route.DurationSeconds = feature.Properties.Segments[0].Duration
	}

	return route, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json, application/geo+json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"latency": time.Since(start),
	}).Debug("geo provider call completed")

	return nil
}
