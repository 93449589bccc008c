package validator

import (
	"testing"

	"github.com/daroutes-wiki/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stopInput struct {
	Name string   `json:"name" validate:"required"`
	Lat  *float64 `json:"lat" validate:"omitempty,gte=-90,lte=90"`
}

type routeInput struct {
	Slug  string      `json:"slug" validate:"required,slug"`
	Color string      `json:"color" validate:"omitempty,hexcolor6"`
	Stops []stopInput `json:"stops" validate:"min=2,dive"`
}

func TestValidate_Passes(t *testing.T) {
	err := Validate(routeInput{
		Slug:  "ubungo-posta",
		Color: "#1d4ed8",
		Stops: []stopInput{{Name: "Ubungo"}, {Name: "Posta"}},
	})
	assert.NoError(t, err)
}

func TestValidate_ReportsEveryField(t *testing.T) {
	lat := 120.0
	err := Validate(routeInput{
		Slug:  "Ubungo Posta",
		Color: "blue",
		Stops: []stopInput{{Name: ""}, {Name: "Posta", Lat: &lat}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrValidationFailed)

	appErr, ok := errors.As(err)
	require.True(t, ok)
	violations, ok := appErr.Details["violations"].([]errors.Violation)
	require.True(t, ok)

	fields := make(map[string]string)
	for _, v := range violations {
		fields[v.Field] = v.Message
	}
	assert.Contains(t, fields, "slug")
	assert.Contains(t, fields, "color")
	assert.Equal(t, "is required", fields["stops[0].name"])
	assert.Equal(t, "must be less than or equal to 90", fields["stops[1].lat"])
}

func TestValidate_MinStops(t *testing.T) {
	err := Validate(routeInput{Slug: "r", Stops: []stopInput{{Name: "A"}}})
	require.Error(t, err)

	appErr, _ := errors.As(err)
	assert.Equal(t, "stops: must be at least 2", appErr.Message)
}
