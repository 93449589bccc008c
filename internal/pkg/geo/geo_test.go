package geo

import (
	"encoding/json"
	"testing"

	"github.com/daroutes-wiki/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	kariakoo = domain.Point{Lat: -6.8162, Lng: 39.2750}
	posta    = domain.Point{Lat: -6.8150, Lng: 39.2910}
	ubungo   = domain.Point{Lat: -6.7900, Lng: 39.2070}
)

func TestBounds(t *testing.T) {
	assert.Nil(t, Bounds(nil))

	b := Bounds([]domain.Point{kariakoo, posta, ubungo})
	require.NotNil(t, b)
	assert.Equal(t, [2][2]float64{{39.2070, -6.8162}, {39.2910, -6.7900}}, *b)
}

func TestLine_NeedsTwoPoints(t *testing.T) {
	assert.Nil(t, Line([]domain.Point{kariakoo}))

	line := Line([]domain.Point{kariakoo, posta})
	require.NotNil(t, line)
	assert.Equal(t, 2, line.NumCoords())
	assert.Equal(t, 39.2750, line.Coord(0).X())
}

func TestRouteFeatureCollection_MarshalsGeoJSON(t *testing.T) {
	ward := "Kariakoo"
	fc := RouteFeatureCollection([]StopFeature{
		{Seq: 1, Slug: "kariakoo-1a2b3c4d", Name: "Kariakoo", Ward: &ward, Point: kariakoo},
		{Seq: 2, Slug: "posta-5e6f7a8b", Name: "Posta", Point: posta},
	})
	require.Len(t, fc.Features, 3)

	raw, err := json.Marshal(fc)
	require.NoError(t, err)

	var decoded struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type string `json:"type"`
			} `json:"geometry"`
			Properties map[string]interface{} `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "FeatureCollection", decoded.Type)
	assert.Equal(t, "Point", decoded.Features[0].Geometry.Type)
	assert.Equal(t, "Kariakoo", decoded.Features[0].Properties["ward"])
	assert.Equal(t, "LineString", decoded.Features[2].Geometry.Type)
}

func TestRouteFeatureCollection_SingleStopHasNoLine(t *testing.T) {
	fc := RouteFeatureCollection([]StopFeature{{Seq: 1, Slug: "a", Name: "A", Point: kariakoo}})
	assert.Len(t, fc.Features, 1)
	assert.Nil(t, fc.BBox)
}

func TestPointEWKB_RoundTrip(t *testing.T) {
	hex, err := PointEWKB(posta)
	require.NoError(t, err)
	assert.NotEmpty(t, hex)

	p, err := ParsePointEWKB(hex)
	require.NoError(t, err)
	assert.InDelta(t, posta.Lat, p.Lat, 1e-12)
	assert.InDelta(t, posta.Lng, p.Lng, 1e-12)
}

func TestPathLengthKm(t *testing.T) {
	assert.Zero(t, PathLengthKm([]domain.Point{kariakoo}))
	assert.InDelta(t, 1.8, PathLengthKm([]domain.Point{kariakoo, posta}), 0.05)
	assert.InDelta(t, DistanceKm(kariakoo, posta)+DistanceKm(posta, ubungo),
		PathLengthKm([]domain.Point{kariakoo, posta, ubungo}), 0.05)
}
