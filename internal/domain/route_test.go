package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/daroutes-wiki/internal/pkg/errors"
)

func TestRoute_CheckPublishable(t *testing.T) {
	a, b, c := "a", "b", "c"

	tests := []struct {
		name  string
		route Route
		stops []RouteStop
		ok    bool
	}{
		{
			name:  "consistent route",
			route: Route{StartStopID: &a, EndStopID: &c},
			stops: SequenceStops("r", []string{a, b, c}),
			ok:    true,
		},
		{
			name:  "stored out of order",
			route: Route{StartStopID: &a, EndStopID: &c},
			stops: []RouteStop{{StopID: c, Seq: 3}, {StopID: a, Seq: 1}, {StopID: b, Seq: 2}},
			ok:    true,
		},
		{
			name:  "single stop",
			route: Route{StartStopID: &a, EndStopID: &a},
			stops: SequenceStops("r", []string{a}),
		},
		{
			name:  "unresolved start",
			route: Route{EndStopID: &b},
			stops: SequenceStops("r", []string{a, b}),
		},
		{
			name:  "end does not match",
			route: Route{StartStopID: &a, EndStopID: &b},
			stops: SequenceStops("r", []string{a, b, c}),
		},
		{
			name:  "gap in sequence",
			route: Route{StartStopID: &a, EndStopID: &c},
			stops: []RouteStop{{StopID: a, Seq: 1}, {StopID: c, Seq: 3}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.route.CheckPublishable(tt.stops)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, errors.ErrValidationFailed)
			}
		})
	}
}

func TestSequenceStops(t *testing.T) {
	got := SequenceStops("r1", []string{"x", "y", "z"})
	assert.Equal(t, []RouteStop{
		{RouteID: "r1", StopID: "x", Seq: 1},
		{RouteID: "r1", StopID: "y", Seq: 2},
		{RouteID: "r1", StopID: "z", Seq: 3},
	}, got)
}

func TestStop_CheckPublishable(t *testing.T) {
	s := &Stop{Name: "Ubungo"}
	assert.ErrorIs(t, s.CheckPublishable(), errors.ErrValidationFailed)

	lat, lng := -6.79, 39.21
	s.Lat, s.Lng = &lat, &lng
	assert.NoError(t, s.CheckPublishable())

	bad := 200.0
	term := &Terminal{Lat: &lat, Lng: &bad}
	assert.ErrorIs(t, term.CheckPublishable(), errors.ErrValidationFailed)
}
