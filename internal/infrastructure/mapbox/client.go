package mapbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/daroutes-wiki/internal/config"
	"github.com/daroutes-wiki/internal/domain"
	"github.com/daroutes-wiki/internal/domain/repository"
	"go.uber.org/zap"
)

// placeTypes requested from the geocoder, finest first
const placeTypes = "neighborhood,locality,district,place"

type client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
	logger      *zap.Logger
}

// NewGeocodingClient creates a reverse geocoder backed by the Mapbox
// Geocoding API.
func NewGeocodingClient(cfg *config.MapboxConfig, logger *zap.Logger) repository.GeocodingRepository {
	return &client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		accessToken: cfg.AccessToken,
		logger:      logger,
	}
}

type geocodeResponse struct {
	Features []feature `json:"features"`
}

type feature struct {
	PlaceType []string `json:"place_type"`
	Text      string   `json:"text"`
	PlaceName string   `json:"place_name"`
}

func (f feature) is(kind string) bool {
	for _, t := range f.PlaceType {
		if t == kind {
			return true
		}
	}
	return false
}

// ReverseGeocode returns the neighbourhood (ward) and district containing p.
func (c *client) ReverseGeocode(ctx context.Context, p domain.Point) (*domain.Place, error) {
	endpoint := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%f,%f.json?%s",
		c.baseURL, p.Lng, p.Lat,
		url.Values{
			"types":        {placeTypes},
			"access_token": {c.accessToken},
		}.Encode(),
	)

	c.logger.Debug("Calling Mapbox Geocoding API",
		zap.Float64("lat", p.Lat),
		zap.Float64("lng", p.Lng))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.logger.Error("Failed to create request", zap.Error(err))
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to execute request", zap.Error(err))
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.logger.Error("Mapbox API returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)))
		return nil, fmt.Errorf("mapbox API error: status %d", resp.StatusCode)
	}

	var geo geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&geo); err != nil {
		c.logger.Error("Failed to decode response", zap.Error(err))
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	place := &domain.Place{}
	for _, f := range geo.Features {
		switch {
		case place.Ward == "" && (f.is("neighborhood") || f.is("locality")):
			place.Ward = f.Text
			place.PlaceName = f.PlaceName
		case place.District == "" && (f.is("district") || f.is("place")):
			place.District = f.Text
			if place.PlaceName == "" {
				place.PlaceName = f.PlaceName
			}
		}
	}

	c.logger.Debug("Mapbox Geocoding API call successful",
		zap.String("ward", place.Ward),
		zap.String("district", place.District))

	return place, nil
}
