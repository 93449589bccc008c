package domain

import (
	"sort"
	"time"

	"github.com/daroutes-wiki/internal/pkg/errors"
)

// Route - a documented transit service
type Route struct {
	ID                    string     `json:"id"`
	Slug                  string     `json:"slug"`
	DisplayName           string     `json:"display_name"`
	Color                 string     `json:"color"`
	Corridors             []string   `json:"corridors"`
	OperatorIDs           []string   `json:"operator_ids"`
	EstBuses              *int       `json:"est_buses"`
	Hours                 *string    `json:"hours"`
	Notes                 *string    `json:"notes"`
	Status                Status     `json:"status"`
	ReviewNotes           *string    `json:"review_notes"`
	StartStopID           *string    `json:"start_stop_id"`
	EndStopID             *string    `json:"end_stop_id"`
	OriginTerminalID      *string    `json:"origin_terminal_id"`
	DestinationTerminalID *string    `json:"destination_terminal_id"`
	CreatedBy             *string    `json:"created_by"`
	UpdatedBy             *string    `json:"updated_by"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
	PublishedAt           *time.Time `json:"published_at"`
}

// RouteStop - position of a stop within a route, seq is 1-based
type RouteStop struct {
	RouteID string `json:"route_id"`
	StopID  string `json:"stop_id"`
	Seq     int    `json:"seq"`
}

type TerminalRole string

const (
	TerminalOrigin   TerminalRole = "origin"
	TerminalTerminus TerminalRole = "terminus"
	TerminalThrough  TerminalRole = "through"
)

func (r TerminalRole) Valid() bool {
	switch r {
	case TerminalOrigin, TerminalTerminus, TerminalThrough:
		return true
	}
	return false
}

// RouteTerminal - link between a route and a terminal in a given role
type RouteTerminal struct {
	RouteID    string       `json:"route_id"`
	TerminalID string       `json:"terminal_id"`
	Role       TerminalRole `json:"role"`
	Notes      *string      `json:"notes,omitempty"`
}

// RouteFields - route metadata written by a save
type RouteFields struct {
	Slug                  string
	DisplayName           string
	Color                 string
	Corridors             []string
	OperatorIDs           []string
	EstBuses              *int
	Hours                 *string
	Notes                 *string
	ReviewNotes           *string
	StartStopID           *string
	EndStopID             *string
	OriginTerminalID      *string
	DestinationTerminalID *string
}

// SequenceStops builds the ordered link rows for stopIDs.
func SequenceStops(routeID string, stopIDs []string) []RouteStop {
	out := make([]RouteStop, len(stopIDs))
	for i, id := range stopIDs {
		out[i] = RouteStop{RouteID: routeID, StopID: id, Seq: i + 1}
	}
	return out
}

// SortBySeq orders link rows by seq in place.
func SortBySeq(stops []RouteStop) {
	sort.SliceStable(stops, func(i, j int) bool { return stops[i].Seq < stops[j].Seq })
}

// CheckPublishable verifies a route can enter published: at least two stops,
// contiguous seq from 1, and start/end pointing at the first and last stop.
func (r *Route) CheckPublishable(stops []RouteStop) error {
	var violations []errors.Violation

	ordered := make([]RouteStop, len(stops))
	copy(ordered, stops)
	SortBySeq(ordered)

	if len(ordered) < 2 {
		violations = append(violations, errors.Violation{Field: "stops", Message: "a published route needs at least 2 stops"})
	}
	for i, s := range ordered {
		if s.Seq != i+1 {
			violations = append(violations, errors.Violation{Field: "stops", Message: "stop sequence is not contiguous"})
			break
		}
	}
	if r.StartStopID == nil || r.EndStopID == nil {
		violations = append(violations, errors.Violation{Field: "start_stop_id", Message: "start and end stops must be resolved"})
	} else if len(ordered) > 0 {
		if *r.StartStopID != ordered[0].StopID {
			violations = append(violations, errors.Violation{Field: "start_stop_id", Message: "does not match the first stop"})
		}
		if *r.EndStopID != ordered[len(ordered)-1].StopID {
			violations = append(violations, errors.Violation{Field: "end_stop_id", Message: "does not match the last stop"})
		}
	}

	if len(violations) > 0 {
		return errors.Validation(violations...)
	}
	return nil
}

// OrderedStop - a stop together with its position on one route
type OrderedStop struct {
	Seq  int  `json:"seq"`
	Stop Stop `json:"stop"`
}

// TerminalRoute - a route linked to a terminal in a role
type TerminalRoute struct {
	Role  TerminalRole `json:"role"`
	Route Route        `json:"route"`
}
