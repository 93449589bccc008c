// Package geo builds the geometry served with route details and stored on
// stop rows.
package geo

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/daroutes-wiki/internal/domain"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkbhex"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// SRID4326 - WGS84
const SRID4326 = 4326

const earthRadiusKm = 6371.0

// StopFeature - one stop placed on the route map
type StopFeature struct {
	Seq   int
	Slug  string
	Name  string
	Ward  *string
	Point domain.Point
}

func point(p domain.Point) *geom.Point {
	return geom.NewPoint(geom.XY).MustSetCoords(geom.Coord{p.Lng, p.Lat})
}

// Line joins points in order. Fewer than two points make no line.
func Line(points []domain.Point) *geom.LineString {
	if len(points) < 2 {
		return nil
	}
	coords := make([]geom.Coord, len(points))
	for i, p := range points {
		coords[i] = geom.Coord{p.Lng, p.Lat}
	}
	return geom.NewLineString(geom.XY).MustSetCoords(coords)
}

// DistanceKm is the great-circle distance between a and b.
func DistanceKm(a, b domain.Point) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180.0
	dLng := (b.Lng - a.Lng) * math.Pi / 180.0

	lat1 := a.Lat * math.Pi / 180.0
	lat2 := b.Lat * math.Pi / 180.0

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLng/2)*math.Sin(dLng/2)*math.Cos(lat1)*math.Cos(lat2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// PathLengthKm sums the legs between consecutive points, rounded to 0.1 km.
func PathLengthKm(points []domain.Point) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += DistanceKm(points[i-1], points[i])
	}
	return math.Round(total*10) / 10
}

// Bounds returns [[minLng, minLat], [maxLng, maxLat]], or nil for no points.
func Bounds(points []domain.Point) *[2][2]float64 {
	if len(points) == 0 {
		return nil
	}
	b := geom.NewBounds(geom.XY)
	for _, p := range points {
		b.Extend(point(p))
	}
	return &[2][2]float64{
		{b.Min(0), b.Min(1)},
		{b.Max(0), b.Max(1)},
	}
}

// RouteFeatureCollection renders stops as Point features in order plus a
// LineString through them when there are at least two.
func RouteFeatureCollection(stops []StopFeature) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(stops)+1)}
	points := make([]domain.Point, 0, len(stops))

	for _, s := range stops {
		props := map[string]interface{}{
			"seq":  s.Seq,
			"slug": s.Slug,
			"name": s.Name,
		}
		if s.Ward != nil {
			props["ward"] = *s.Ward
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         s.Slug,
			Geometry:   point(s.Point),
			Properties: props,
		})
		points = append(points, s.Point)
	}

	if line := Line(points); line != nil {
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         "route-line",
			Geometry:   line,
			Properties: map[string]interface{}{"kind": "route_line"},
		})
		fc.BBox = line.Bounds()
	}
	return fc
}

// PointEWKB encodes p as hex EWKB with SRID 4326, the text form PostGIS
// accepts for geometry columns.
func PointEWKB(p domain.Point) (string, error) {
	g := point(p).SetSRID(SRID4326)
	s, err := ewkbhex.Encode(g, binary.LittleEndian)
	if err != nil {
		return "", fmt.Errorf("encode point: %w", err)
	}
	return s, nil
}

// ParsePointEWKB decodes a hex EWKB point.
func ParsePointEWKB(s string) (domain.Point, error) {
	g, err := ewkbhex.Decode(s)
	if err != nil {
		return domain.Point{}, fmt.Errorf("decode point: %w", err)
	}
	p, ok := g.(*geom.Point)
	if !ok {
		return domain.Point{}, fmt.Errorf("decode point: got %T", g)
	}
	return domain.Point{Lat: p.Y(), Lng: p.X()}, nil
}
