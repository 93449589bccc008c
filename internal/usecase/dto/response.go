package dto

import (
	"time"

	"github.com/daroutes-wiki/internal/domain"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// RouteSummary - public list entry of a published route
type RouteSummary struct {
	Slug        string    `json:"slug"`
	DisplayName string    `json:"display_name"`
	Color       string    `json:"color"`
	Corridors   []string  `json:"corridors"`
	EstBuses    *int      `json:"est_buses"`
	Hours       *string   `json:"hours"`
	Start       *string   `json:"start"`
	End         *string   `json:"end"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PublicStop - a stop as shown on a route page
type PublicStop struct {
	Seq         int      `json:"seq"`
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	NameAliases []string `json:"name_aliases"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	Ward        *string  `json:"ward"`
}

type FareView struct {
	FromStop string  `json:"from_stop"`
	ToStop   string  `json:"to_stop"`
	FromSeq  int     `json:"from_seq"`
	ToSeq    int     `json:"to_seq"`
	Price    int64   `json:"price_tzs"`
	Note     *string `json:"note,omitempty"`
}

type TerminalLink struct {
	Role  domain.TerminalRole `json:"role"`
	Slug  string              `json:"slug"`
	Name  string              `json:"name"`
	Notes *string             `json:"notes,omitempty"`
}

type AttachmentView struct {
	FilePath string  `json:"file_path"`
	Kind     string  `json:"kind"`
	Caption  *string `json:"caption"`
}

// RouteDetail - public route page
type RouteDetail struct {
	RouteSummary
	Notes       *string                    `json:"notes"`
	PublishedAt *time.Time                 `json:"published_at"`
	Operators   []domain.Operator          `json:"operators"`
	Stops       []PublicStop               `json:"stops"`
	Terminals   []TerminalLink             `json:"terminals"`
	Geometry    *geojson.FeatureCollection `json:"geometry"`
	Bounds      *[2][2]float64             `json:"bounds"`
	DistanceKm  float64                    `json:"distance_km"`
	Fares       map[string][]FareView      `json:"fares"`
	Attachments []AttachmentView           `json:"attachments"`
}

// StopSummary - list entry and stop picker result
type StopSummary struct {
	Slug   string        `json:"slug"`
	Name   string        `json:"name"`
	Ward   *string       `json:"ward"`
	Lat    *float64      `json:"lat"`
	Lng    *float64      `json:"lng"`
	Status domain.Status `json:"status,omitempty"`
}

type StopDetail struct {
	Slug        string         `json:"slug"`
	Name        string         `json:"name"`
	NameAliases []string       `json:"name_aliases"`
	Lat         *float64       `json:"lat"`
	Lng         *float64       `json:"lng"`
	Ward        *string        `json:"ward"`
	Description *string        `json:"description"`
	Routes      []RouteSummary `json:"routes"`
}

// RoutesByRole - routes of a terminal grouped by the terminal's role on them
type RoutesByRole struct {
	Origin   []RouteSummary `json:"origin"`
	Terminus []RouteSummary `json:"terminus"`
	Through  []RouteSummary `json:"through"`
}

type TerminalDetail struct {
	Slug        string       `json:"slug"`
	Name        string       `json:"name"`
	NameAliases []string     `json:"name_aliases"`
	Lat         *float64     `json:"lat"`
	Lng         *float64     `json:"lng"`
	Ward        *string      `json:"ward"`
	Description *string      `json:"description"`
	Amenities   []string     `json:"amenities"`
	Routes      RoutesByRole `json:"routes"`
}

type FareQuote struct {
	RouteSlug     string  `json:"route_slug"`
	From          int     `json:"from"`
	To            int     `json:"to"`
	FromStop      string  `json:"from_stop"`
	ToStop        string  `json:"to_stop"`
	PassengerType string  `json:"passenger_type"`
	Peak          bool    `json:"peak"`
	Multiplier    float64 `json:"multiplier"`
	Price         int64   `json:"price_tzs"`
}

// RouteEditorView - everything the dashboard route editor loads
type RouteEditorView struct {
	Route        domain.Route           `json:"route"`
	Stops        []domain.OrderedStop   `json:"stops"`
	Fares        []domain.Fare          `json:"fares"`
	Terminals    []domain.RouteTerminal `json:"terminals"`
	Attachments  []domain.Attachment    `json:"attachments"`
	Operators    []domain.Operator      `json:"operators"`
	NextStatuses []domain.Status        `json:"next_statuses"`
}

type StopEditorView struct {
	Stop         domain.Stop     `json:"stop"`
	Routes       []domain.Route  `json:"routes"`
	NextStatuses []domain.Status `json:"next_statuses"`
}

type TerminalEditorView struct {
	Terminal     domain.Terminal        `json:"terminal"`
	Routes       []domain.TerminalRoute `json:"routes"`
	NextStatuses []domain.Status        `json:"next_statuses"`
}

// SaveResult - id of the saved entity
type SaveResult struct {
	ID string `json:"id"`
}

// DashboardCounters - headline numbers of the editor dashboard
type DashboardCounters struct {
	RoutesTotal     int       `json:"routes_total"`
	RoutesPublished int       `json:"routes_published"`
	RoutesInReview  int       `json:"routes_in_review"`
	StopsTotal      int       `json:"stops_total"`
	TerminalsTotal  int       `json:"terminals_total"`
	LastUpdated     time.Time `json:"last_updated"`
}

func NewRouteSummary(r domain.Route, start, end *string) RouteSummary {
	corridors := r.Corridors
	if corridors == nil {
		corridors = []string{}
	}
	return RouteSummary{
		Slug:        r.Slug,
		DisplayName: r.DisplayName,
		Color:       r.Color,
		Corridors:   corridors,
		EstBuses:    r.EstBuses,
		Hours:       r.Hours,
		Start:       start,
		End:         end,
		UpdatedAt:   r.UpdatedAt,
	}
}

func NewStopSummary(s domain.Stop) StopSummary {
	return StopSummary{Slug: s.Slug, Name: s.Name, Ward: s.Ward, Lat: s.Lat, Lng: s.Lng, Status: s.Status}
}

func NewTerminalSummary(t domain.Terminal) StopSummary {
	return StopSummary{Slug: t.Slug, Name: t.Name, Ward: t.Ward, Lat: t.Lat, Lng: t.Lng, Status: t.Status}
}
