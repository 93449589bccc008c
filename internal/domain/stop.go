package domain

import (
	"time"

	"github.com/daroutes-wiki/internal/pkg/errors"
)

// Stop - a physical boarding location shared across routes
type Stop struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Name        string     `json:"name"`
	NameAliases []string   `json:"name_aliases"`
	Lat         *float64   `json:"lat"`
	Lng         *float64   `json:"lng"`
	Ward        *string    `json:"ward"`
	Description *string    `json:"description"`
	Status      Status     `json:"status"`
	CreatedBy   *string    `json:"created_by"`
	UpdatedBy   *string    `json:"updated_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	PublishedAt *time.Time `json:"published_at"`
}

func (s *Stop) HasCoordinates() bool {
	return s.Lat != nil && s.Lng != nil
}

func (s *Stop) Point() (Point, bool) {
	if !s.HasCoordinates() {
		return Point{}, false
	}
	return Point{Lat: *s.Lat, Lng: *s.Lng}, true
}

// CheckPublishable requires resolved coordinates.
func (s *Stop) CheckPublishable() error {
	return checkCoordinates(s.Lat, s.Lng)
}

// Terminal - a hub that can serve as origin, terminus or through point
type Terminal struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Name        string     `json:"name"`
	NameAliases []string   `json:"name_aliases"`
	Lat         *float64   `json:"lat"`
	Lng         *float64   `json:"lng"`
	Ward        *string    `json:"ward"`
	Description *string    `json:"description"`
	Amenities   []string   `json:"amenities"`
	Status      Status     `json:"status"`
	CreatedBy   *string    `json:"created_by"`
	UpdatedBy   *string    `json:"updated_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	PublishedAt *time.Time `json:"published_at"`
}

func (t *Terminal) HasCoordinates() bool {
	return t.Lat != nil && t.Lng != nil
}

func (t *Terminal) CheckPublishable() error {
	return checkCoordinates(t.Lat, t.Lng)
}

func checkCoordinates(lat, lng *float64) error {
	if lat == nil || lng == nil {
		return errors.Validation(errors.Violation{Field: "coordinates", Message: "lat and lng must be set before publishing"})
	}
	if *lat < -90 || *lat > 90 || *lng < -180 || *lng > 180 {
		return errors.Validation(errors.Violation{Field: "coordinates", Message: "out of range"})
	}
	return nil
}

// StopAttrs - attributes of a stop created through a route save or the stop editor
type StopAttrs struct {
	Name        string
	NameAliases []string
	Lat         *float64
	Lng         *float64
	Ward        *string
	Description *string
}

// TerminalAttrs - attributes written by the terminal editor
type TerminalAttrs struct {
	StopAttrs
	Amenities []string
}

// NewStop - a stop row ready for insert
type NewStop struct {
	Slug string
	StopAttrs
	Status    Status
	CreatedBy *string
}

// NewTerminal - a terminal row ready for insert
type NewTerminal struct {
	Slug string
	TerminalAttrs
	Status    Status
	CreatedBy *string
}

// Operator - a company operating routes, read-only for the core
type Operator struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Notes *string `json:"notes"`
}
