package usecase

import (
	"context"
	"time"

	"github.com/daroutes-wiki/internal/domain"
	"github.com/daroutes-wiki/internal/domain/repository"
	"go.uber.org/zap"
)

// WardResolver fills the ward of new stops from reverse geocoding. A nil
// resolver or a nil geocoder leaves stops untouched.
type WardResolver struct {
	geocoder repository.GeocodingRepository
	timeout  time.Duration
	logger   *zap.Logger
}

func NewWardResolver(geocoder repository.GeocodingRepository, timeout time.Duration, logger *zap.Logger) *WardResolver {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &WardResolver{geocoder: geocoder, timeout: timeout, logger: logger}
}

// Enrich returns a copy of stops where pending entries with coordinates and
// no ward carry the geocoded ward. Lookup failures are logged and skipped.
func (r *WardResolver) Enrich(ctx context.Context, stops []domain.StopRef) []domain.StopRef {
	out := make([]domain.StopRef, len(stops))
	copy(out, stops)
	if r == nil || r.geocoder == nil {
		return out
	}

	for i, ref := range out {
		attrs, pending := ref.Attrs()
		if !pending || attrs.Ward != nil || attrs.Lat == nil || attrs.Lng == nil {
			continue
		}
		ward, ok := r.lookup(ctx, domain.Point{Lat: *attrs.Lat, Lng: *attrs.Lng})
		if !ok {
			continue
		}
		attrs.Ward = &ward
		out[i] = ref.WithAttrs(attrs)
	}
	return out
}

// WardFor resolves a single coordinate; ok is false when nothing was found.
func (r *WardResolver) WardFor(ctx context.Context, lat, lng *float64) (string, bool) {
	if r == nil || r.geocoder == nil || lat == nil || lng == nil {
		return "", false
	}
	return r.lookup(ctx, domain.Point{Lat: *lat, Lng: *lng})
}

func (r *WardResolver) lookup(ctx context.Context, p domain.Point) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	place, err := r.geocoder.ReverseGeocode(ctx, p)
	if err != nil {
		r.logger.Warn("Ward lookup failed",
			zap.Float64("lat", p.Lat),
			zap.Float64("lng", p.Lng),
			zap.Error(err),
		)
		return "", false
	}
	if place == nil || place.Ward == "" {
		return "", false
	}
	return place.Ward, true
}
