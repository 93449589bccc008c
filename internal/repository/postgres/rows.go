package postgres

import (
	"database/sql"
	"time"

	"github.com/daroutes-wiki/internal/domain"
	"github.com/lib/pq"
)

const routeColumns = `
	r.id, r.slug, r.display_name, r.color, r.corridors, r.operator_ids,
	r.est_buses, r.hours, r.notes, r.status, r.review_notes,
	r.start_stop_id, r.end_stop_id, r.origin_terminal_id, r.destination_terminal_id,
	r.created_by, r.updated_by, r.created_at, r.updated_at, r.published_at`

type routeRow struct {
	ID                    string         `db:"id"`
	Slug                  string         `db:"slug"`
	DisplayName           string         `db:"display_name"`
	Color                 string         `db:"color"`
	Corridors             pq.StringArray `db:"corridors"`
	OperatorIDs           pq.StringArray `db:"operator_ids"`
	EstBuses              sql.NullInt32  `db:"est_buses"`
	Hours                 *string        `db:"hours"`
	Notes                 *string        `db:"notes"`
	Status                string         `db:"status"`
	ReviewNotes           *string        `db:"review_notes"`
	StartStopID           *string        `db:"start_stop_id"`
	EndStopID             *string        `db:"end_stop_id"`
	OriginTerminalID      *string        `db:"origin_terminal_id"`
	DestinationTerminalID *string        `db:"destination_terminal_id"`
	CreatedBy             *string        `db:"created_by"`
	UpdatedBy             *string        `db:"updated_by"`
	CreatedAt             time.Time      `db:"created_at"`
	UpdatedAt             time.Time      `db:"updated_at"`
	PublishedAt           *time.Time     `db:"published_at"`
}

func (r routeRow) toDomain() domain.Route {
	route := domain.Route{
		ID:                    r.ID,
		Slug:                  r.Slug,
		DisplayName:           r.DisplayName,
		Color:                 r.Color,
		Corridors:             nonNil(r.Corridors),
		OperatorIDs:           nonNil(r.OperatorIDs),
		Hours:                 r.Hours,
		Notes:                 r.Notes,
		Status:                domain.Status(r.Status),
		ReviewNotes:           r.ReviewNotes,
		StartStopID:           r.StartStopID,
		EndStopID:             r.EndStopID,
		OriginTerminalID:      r.OriginTerminalID,
		DestinationTerminalID: r.DestinationTerminalID,
		CreatedBy:             r.CreatedBy,
		UpdatedBy:             r.UpdatedBy,
		CreatedAt:             r.CreatedAt,
		UpdatedAt:             r.UpdatedAt,
		PublishedAt:           r.PublishedAt,
	}
	if r.EstBuses.Valid {
		n := int(r.EstBuses.Int32)
		route.EstBuses = &n
	}
	return route
}

const stopColumns = `
	s.id, s.slug, s.name, s.name_aliases, s.lat, s.lng, s.ward, s.description,
	s.status, s.created_by, s.updated_by, s.created_at, s.updated_at, s.published_at`

type stopRow struct {
	ID          string         `db:"id"`
	Slug        string         `db:"slug"`
	Name        string         `db:"name"`
	NameAliases pq.StringArray `db:"name_aliases"`
	Lat         *float64       `db:"lat"`
	Lng         *float64       `db:"lng"`
	Ward        *string        `db:"ward"`
	Description *string        `db:"description"`
	Status      string         `db:"status"`
	CreatedBy   *string        `db:"created_by"`
	UpdatedBy   *string        `db:"updated_by"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
	PublishedAt *time.Time     `db:"published_at"`
}

func (r stopRow) toDomain() domain.Stop {
	return domain.Stop{
		ID:          r.ID,
		Slug:        r.Slug,
		Name:        r.Name,
		NameAliases: nonNil(r.NameAliases),
		Lat:         r.Lat,
		Lng:         r.Lng,
		Ward:        r.Ward,
		Description: r.Description,
		Status:      domain.Status(r.Status),
		CreatedBy:   r.CreatedBy,
		UpdatedBy:   r.UpdatedBy,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		PublishedAt: r.PublishedAt,
	}
}

const terminalColumns = `
	t.id, t.slug, t.name, t.name_aliases, t.lat, t.lng, t.ward, t.description, t.amenities,
	t.status, t.created_by, t.updated_by, t.created_at, t.updated_at, t.published_at`

type terminalRow struct {
	stopRow
	Amenities pq.StringArray `db:"amenities"`
}

func (r terminalRow) toDomain() domain.Terminal {
	s := r.stopRow.toDomain()
	return domain.Terminal{
		ID:          s.ID,
		Slug:        s.Slug,
		Name:        s.Name,
		NameAliases: s.NameAliases,
		Lat:         s.Lat,
		Lng:         s.Lng,
		Ward:        s.Ward,
		Description: s.Description,
		Amenities:   nonNil(r.Amenities),
		Status:      s.Status,
		CreatedBy:   s.CreatedBy,
		UpdatedBy:   s.UpdatedBy,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
		PublishedAt: s.PublishedAt,
	}
}

type attachmentRow struct {
	ID         string    `db:"id"`
	RouteID    string    `db:"route_id"`
	FilePath   string    `db:"file_path"`
	Kind       string    `db:"kind"`
	Caption    *string   `db:"caption"`
	UploadedBy *string   `db:"uploaded_by"`
	CreatedAt  time.Time `db:"created_at"`
}

type workflowEventRow struct {
	ID         string    `db:"id"`
	EntityType string    `db:"entity_type"`
	EntityID   string    `db:"entity_id"`
	FromStatus *string   `db:"from_status"`
	ToStatus   string    `db:"to_status"`
	Actor      *string   `db:"actor"`
	Notes      *string   `db:"notes"`
	CreatedAt  time.Time `db:"created_at"`
}

func (r workflowEventRow) toDomain() domain.WorkflowEvent {
	e := domain.WorkflowEvent{
		ID:         r.ID,
		EntityType: domain.EntityType(r.EntityType),
		EntityID:   r.EntityID,
		ToStatus:   domain.Status(r.ToStatus),
		Actor:      r.Actor,
		Notes:      r.Notes,
		CreatedAt:  r.CreatedAt,
	}
	if r.FromStatus != nil {
		from := domain.Status(*r.FromStatus)
		e.FromStatus = &from
	}
	return e
}

func nonNil(a pq.StringArray) []string {
	if a == nil {
		return []string{}
	}
	return []string(a)
}

func nullableInt(n *int) sql.NullInt32 {
	if n == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*n), Valid: true}
}
