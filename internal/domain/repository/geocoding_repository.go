package repository

import (
	"context"

	"github.com/daroutes-wiki/internal/domain"
)

// GeocodingRepository resolves coordinates to administrative labels
type GeocodingRepository interface {
	// ReverseGeocode returns the place containing p. An unknown location is
	// reported as a Place with an empty Ward, not an error.
	ReverseGeocode(ctx context.Context, p domain.Point) (*domain.Place, error)
}
