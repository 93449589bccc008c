package domain

import "time"

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type BoundingBox struct {
	MinLat float64 `json:"min_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLat float64 `json:"max_lat"`
	MaxLng float64 `json:"max_lng"`
}

// Statistics - content counters for the dashboard and the public stats endpoint
type Statistics struct {
	Routes      StatusCounts `json:"routes"`
	Stops       StatusCounts `json:"stops"`
	Terminals   StatusCounts `json:"terminals"`
	LastUpdated time.Time    `json:"last_updated"`
}

// StatusCounts - number of rows of one entity type per workflow status
type StatusCounts struct {
	Total    int            `json:"total"`
	ByStatus map[Status]int `json:"by_status"`
}

func NewStatusCounts() StatusCounts {
	return StatusCounts{ByStatus: make(map[Status]int)}
}

// Add records n rows in status s.
func (c *StatusCounts) Add(s Status, n int) {
	if c.ByStatus == nil {
		c.ByStatus = make(map[Status]int)
	}
	c.ByStatus[s] += n
	c.Total += n
}

func (c StatusCounts) Published() int {
	return c.ByStatus[StatusPublished]
}

func StringPtr(s string) *string {
	return &s
}

// NullableString maps "" to nil and trims nothing else.
func NullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Place - reverse geocoding result for a coordinate
type Place struct {
	Ward      string `json:"ward"`
	District  string `json:"district,omitempty"`
	PlaceName string `json:"place_name,omitempty"`
}
