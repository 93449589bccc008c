package dto

import (
	"strings"

	"github.com/daroutes-wiki/internal/domain"
	"github.com/daroutes-wiki/internal/domain/repository"
)

// SaveRouteRequest - full route edit submitted by the dashboard editor
type SaveRouteRequest struct {
	Slug                  string            `json:"slug" validate:"required,max=120,slug"`
	DisplayName           string            `json:"display_name" validate:"required,min=2,max=120"`
	Color                 string            `json:"color" validate:"required,hexcolor6"`
	Corridors             []string          `json:"corridors" validate:"omitempty,max=20,dive,max=80"`
	OperatorIDs           []string          `json:"operator_ids" validate:"omitempty,dive,uuid"`
	EstBuses              *int              `json:"est_buses" validate:"omitempty,gte=0"`
	Hours                 *string           `json:"hours" validate:"omitempty,max=200"`
	Notes                 *string           `json:"notes" validate:"omitempty,max=4000"`
	ReviewNotes           *string           `json:"review_notes" validate:"omitempty,max=2000"`
	Stops                 []RouteStopEntry  `json:"stops" validate:"required,min=2,dive"`
	Fares                 []FareEntry       `json:"fares" validate:"omitempty,dive"`
	OriginTerminalID      string            `json:"origin_terminal_id" validate:"omitempty,uuid"`
	DestinationTerminalID string            `json:"destination_terminal_id" validate:"omitempty,uuid"`
	Attachments           []AttachmentEntry `json:"attachments" validate:"omitempty,dive"`
}

// RouteStopEntry - one position of the stop list. An entry with an id points
// at a stored stop; an entry without one creates a stop from its attributes.
type RouteStopEntry struct {
	ID          string   `json:"id" validate:"omitempty,uuid"`
	LocalKey    string   `json:"local_key" validate:"required_without=ID,max=64"`
	Name        string   `json:"name" validate:"required_without=ID,max=120"`
	NameAliases []string `json:"name_aliases" validate:"omitempty,dive,max=120"`
	Lat         *float64 `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lng         *float64 `json:"lng" validate:"omitempty,gte=-180,lte=180"`
	Ward        *string  `json:"ward" validate:"omitempty,max=120"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
}

// FareEntry - fare between two entries of the stop list, each referenced by
// local key or stop id
type FareEntry struct {
	From          string  `json:"from" validate:"required"`
	To            string  `json:"to" validate:"required"`
	PassengerType string  `json:"passenger_type" validate:"omitempty,max=40"`
	Price         int64   `json:"price_tzs" validate:"gte=0"`
	Note          *string `json:"note" validate:"omitempty,max=500"`
}

type AttachmentEntry struct {
	ID                string  `json:"id" validate:"omitempty,uuid"`
	FilePath          string  `json:"file_path" validate:"omitempty,max=500"`
	Kind              string  `json:"kind" validate:"omitempty,oneof=ticket vehicle map document"`
	Caption           *string `json:"caption" validate:"omitempty,max=500"`
	Status            string  `json:"status" validate:"required,oneof=new persisted"`
	MarkedForDeletion bool    `json:"marked_for_deletion"`
}

// ToDraft converts the request into the immutable draft a save consumes.
// A fare without a passenger type is an adult fare.
func (r SaveRouteRequest) ToDraft() domain.RouteDraft {
	d := domain.RouteDraft{
		Slug:                  r.Slug,
		DisplayName:           r.DisplayName,
		Color:                 r.Color,
		Corridors:             r.Corridors,
		OperatorIDs:           r.OperatorIDs,
		EstBuses:              r.EstBuses,
		Hours:                 r.Hours,
		Notes:                 r.Notes,
		ReviewNotes:           r.ReviewNotes,
		OriginTerminalID:      r.OriginTerminalID,
		DestinationTerminalID: r.DestinationTerminalID,
		Stops:                 make([]domain.StopRef, len(r.Stops)),
		Fares:                 make([]domain.FareDraft, len(r.Fares)),
		Attachments:           make([]domain.AttachmentDraft, len(r.Attachments)),
	}

	for i, s := range r.Stops {
		if s.ID != "" {
			d.Stops[i] = domain.PersistedStopRef(s.LocalKey, s.ID)
			continue
		}
		d.Stops[i] = domain.PendingStopRef(s.LocalKey, domain.StopAttrs{
			Name:        strings.TrimSpace(s.Name),
			NameAliases: s.NameAliases,
			Lat:         s.Lat,
			Lng:         s.Lng,
			Ward:        s.Ward,
			Description: s.Description,
		})
	}

	for i, f := range r.Fares {
		pt := strings.TrimSpace(f.PassengerType)
		if pt == "" {
			pt = domain.PassengerAdult
		}
		d.Fares[i] = domain.FareDraft{
			FromRef:       f.From,
			ToRef:         f.To,
			PassengerType: pt,
			Price:         f.Price,
			Note:          f.Note,
		}
	}

	for i, a := range r.Attachments {
		d.Attachments[i] = domain.AttachmentDraft{
			ID:                a.ID,
			FilePath:          a.FilePath,
			Kind:              a.Kind,
			Caption:           a.Caption,
			State:             domain.AttachmentState(a.Status),
			MarkedForDeletion: a.MarkedForDeletion,
		}
	}
	return d
}

// TransitionRequest - workflow move of a route, stop or terminal
type TransitionRequest struct {
	To    string  `json:"to" validate:"required,status"`
	Notes *string `json:"notes" validate:"omitempty,max=2000"`
	// ReviewNotes replaces the route's review notes when present. Ignored
	// for stops and terminals.
	ReviewNotes *string `json:"review_notes" validate:"omitempty,max=2000"`
}

type ThroughTerminalsRequest struct {
	Terminals []ThroughTerminalEntry `json:"terminals" validate:"omitempty,max=20,dive"`
}

type ThroughTerminalEntry struct {
	TerminalID string  `json:"terminal_id" validate:"required,uuid"`
	Notes      *string `json:"notes" validate:"omitempty,max=500"`
}

// StopRequest - stop editor form
type StopRequest struct {
	Slug        string   `json:"slug" validate:"omitempty,max=120,slug"`
	Name        string   `json:"name" validate:"required,min=2,max=120"`
	NameAliases []string `json:"name_aliases" validate:"omitempty,dive,max=120"`
	Lat         *float64 `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lng         *float64 `json:"lng" validate:"omitempty,gte=-180,lte=180"`
	Ward        *string  `json:"ward" validate:"omitempty,max=120"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
}

func (r StopRequest) Attrs() domain.StopAttrs {
	return domain.StopAttrs{
		Name:        strings.TrimSpace(r.Name),
		NameAliases: r.NameAliases,
		Lat:         r.Lat,
		Lng:         r.Lng,
		Ward:        r.Ward,
		Description: r.Description,
	}
}

// TerminalRequest - terminal editor form
type TerminalRequest struct {
	StopRequest
	Amenities []string `json:"amenities" validate:"omitempty,max=30,dive,max=80"`
}

func (r TerminalRequest) Attrs() domain.TerminalAttrs {
	return domain.TerminalAttrs{StopAttrs: r.StopRequest.Attrs(), Amenities: r.Amenities}
}

// ListQuery - query string of list endpoints
type ListQuery struct {
	Query  string `query:"q" validate:"omitempty,max=120"`
	Status string `query:"status" validate:"omitempty,status"`
	Mine   bool   `query:"mine"`
	Sort   string `query:"sort" validate:"omitempty,oneof=name updated"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=200"`
	Offset int    `query:"offset" validate:"omitempty,min=0"`
}

// Filter builds the store filter. Mine narrows to rows created by actor.
func (q ListQuery) Filter(actor domain.Actor) repository.ContentFilter {
	f := repository.ContentFilter{
		Query:  strings.TrimSpace(q.Query),
		Sort:   repository.SortOrder(q.Sort),
		Limit:  q.Limit,
		Offset: q.Offset,
	}
	if q.Status != "" {
		s := domain.Status(q.Status)
		f.Status = &s
	}
	if q.Mine {
		f.CreatedBy = actor.UserID
	}
	return f
}

// FareQuoteQuery - positions are 1-based and may come in either order
type FareQuoteQuery struct {
	From          int    `query:"from" validate:"required,min=1"`
	To            int    `query:"to" validate:"required,min=1"`
	Peak          bool   `query:"peak"`
	PassengerType string `query:"passenger_type" validate:"omitempty,max=40"`
}
