package memory

import (
	"strings"

	"github.com/daroutes-wiki/internal/domain"
)

// state is the whole dataset. Transactions work on a deep copy and swap it
// in on commit.
type state struct {
	routes         map[string]domain.Route
	stops          map[string]domain.Stop
	terminals      map[string]domain.Terminal
	routeStops     map[string][]domain.RouteStop
	routeTerminals map[string][]domain.RouteTerminal
	fares          map[string][]domain.Fare
	attachments    map[string]domain.Attachment
	events         []domain.WorkflowEvent
	operators      map[string]domain.Operator
}

func newState() *state {
	return &state{
		routes:         map[string]domain.Route{},
		stops:          map[string]domain.Stop{},
		terminals:      map[string]domain.Terminal{},
		routeStops:     map[string][]domain.RouteStop{},
		routeTerminals: map[string][]domain.RouteTerminal{},
		fares:          map[string][]domain.Fare{},
		attachments:    map[string]domain.Attachment{},
		operators:      map[string]domain.Operator{},
	}
}

func (s *state) clone() *state {
	c := &state{
		routes:         make(map[string]domain.Route, len(s.routes)),
		stops:          make(map[string]domain.Stop, len(s.stops)),
		terminals:      make(map[string]domain.Terminal, len(s.terminals)),
		routeStops:     make(map[string][]domain.RouteStop, len(s.routeStops)),
		routeTerminals: make(map[string][]domain.RouteTerminal, len(s.routeTerminals)),
		fares:          make(map[string][]domain.Fare, len(s.fares)),
		attachments:    make(map[string]domain.Attachment, len(s.attachments)),
		events:         append([]domain.WorkflowEvent(nil), s.events...),
		operators:      make(map[string]domain.Operator, len(s.operators)),
	}
	for k, v := range s.routes {
		c.routes[k] = cloneRoute(v)
	}
	for k, v := range s.stops {
		c.stops[k] = cloneStop(v)
	}
	for k, v := range s.terminals {
		c.terminals[k] = cloneTerminal(v)
	}
	for k, v := range s.routeStops {
		c.routeStops[k] = append([]domain.RouteStop(nil), v...)
	}
	for k, v := range s.routeTerminals {
		c.routeTerminals[k] = append([]domain.RouteTerminal(nil), v...)
	}
	for k, v := range s.fares {
		c.fares[k] = append([]domain.Fare(nil), v...)
	}
	for k, v := range s.attachments {
		c.attachments[k] = v
	}
	for k, v := range s.operators {
		c.operators[k] = v
	}
	return c
}

// Pointer fields are never mutated in place, so copying the slices is enough.
func cloneRoute(r domain.Route) domain.Route {
	r.Corridors = append([]string{}, r.Corridors...)
	r.OperatorIDs = append([]string{}, r.OperatorIDs...)
	return r
}

func cloneStop(s domain.Stop) domain.Stop {
	s.NameAliases = append([]string{}, s.NameAliases...)
	return s
}

func cloneTerminal(t domain.Terminal) domain.Terminal {
	t.NameAliases = append([]string{}, t.NameAliases...)
	t.Amenities = append([]string{}, t.Amenities...)
	return t
}

// routeKey returns the stored id for routeID, so map keys never alias a
// caller's buffer.
func (s *state) routeKey(routeID string) string {
	if route, ok := s.routes[routeID]; ok {
		return route.ID
	}
	return strings.Clone(routeID)
}

func (s *state) routeSlugTaken(slug, exceptID string) bool {
	for id, r := range s.routes {
		if r.Slug == slug && id != exceptID {
			return true
		}
	}
	return false
}

func (s *state) stopSlugTaken(slug string) bool {
	for _, st := range s.stops {
		if st.Slug == slug {
			return true
		}
	}
	return false
}

func (s *state) terminalSlugTaken(slug string) bool {
	for _, t := range s.terminals {
		if t.Slug == slug {
			return true
		}
	}
	return false
}

func (s *state) stopReferenced(stopID string) bool {
	for _, links := range s.routeStops {
		for _, l := range links {
			if l.StopID == stopID {
				return true
			}
		}
	}
	for _, fares := range s.fares {
		for _, f := range fares {
			if f.FromStopID == stopID || f.ToStopID == stopID {
				return true
			}
		}
	}
	for _, r := range s.routes {
		if (r.StartStopID != nil && *r.StartStopID == stopID) || (r.EndStopID != nil && *r.EndStopID == stopID) {
			return true
		}
	}
	return false
}
