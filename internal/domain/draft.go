package domain

import (
	"fmt"
	"strings"

	"github.com/daroutes-wiki/internal/pkg/errors"
	"github.com/google/uuid"
)

// MinRouteStops is the smallest stop list a route save accepts.
const MinRouteStops = 2

// StopRef - one entry of a draft's ordered stop list. It either points at a
// persisted stop or carries the attributes of a stop to be created, keyed by
// a client-local reference.
type StopRef struct {
	localKey string
	id       string
	attrs    *StopAttrs
}

// PersistedStopRef references an existing stop. localKey may be empty.
func PersistedStopRef(localKey, id string) StopRef {
	return StopRef{localKey: localKey, id: id}
}

// PendingStopRef describes a stop that does not exist yet.
func PendingStopRef(localKey string, attrs StopAttrs) StopRef {
	a := attrs
	return StopRef{localKey: localKey, attrs: &a}
}

func (r StopRef) IsPending() bool {
	return r.attrs != nil
}

func (r StopRef) LocalKey() string {
	return r.localKey
}

func (r StopRef) PersistedID() (string, bool) {
	if r.IsPending() {
		return "", false
	}
	return r.id, true
}

func (r StopRef) Attrs() (StopAttrs, bool) {
	if r.attrs == nil {
		return StopAttrs{}, false
	}
	return *r.attrs, true
}

// WithAttrs returns a copy of a pending ref with replaced attributes.
func (r StopRef) WithAttrs(attrs StopAttrs) StopRef {
	if !r.IsPending() {
		return r
	}
	return PendingStopRef(r.localKey, attrs)
}

// Key is the reference fares use for this entry.
func (r StopRef) Key() string {
	if r.localKey != "" {
		return r.localKey
	}
	return r.id
}

// FareDraft - a fare whose endpoints reference stop entries by local key or persisted id
type FareDraft struct {
	FromRef       string
	ToRef         string
	PassengerType string
	Price         int64
	Note          *string
}

// RouteDraft - an immutable edit submitted to a route save
type RouteDraft struct {
	Slug                  string
	DisplayName           string
	Color                 string
	Corridors             []string
	OperatorIDs           []string
	EstBuses              *int
	Hours                 *string
	Notes                 *string
	ReviewNotes           *string
	Stops                 []StopRef
	Fares                 []FareDraft
	OriginTerminalID      string
	DestinationTerminalID string
	Attachments           []AttachmentDraft
}

// Normalize trims text fields, prefixes the colour with '#', drops empty
// corridor tags and turns blank review notes into nil. A fare without a
// passenger type becomes an adult fare.
func (d RouteDraft) Normalize() RouteDraft {
	out := d
	out.Slug = strings.TrimSpace(d.Slug)
	out.DisplayName = strings.TrimSpace(d.DisplayName)
	out.Color = NormalizeColor(d.Color)
	out.OriginTerminalID = strings.TrimSpace(d.OriginTerminalID)
	out.DestinationTerminalID = strings.TrimSpace(d.DestinationTerminalID)

	out.Corridors = make([]string, 0, len(d.Corridors))
	for _, c := range d.Corridors {
		if c = strings.TrimSpace(c); c != "" {
			out.Corridors = append(out.Corridors, c)
		}
	}
	if d.OperatorIDs == nil {
		out.OperatorIDs = []string{}
	}
	out.Fares = make([]FareDraft, len(d.Fares))
	for i, f := range d.Fares {
		f.PassengerType = strings.TrimSpace(f.PassengerType)
		if f.PassengerType == "" {
			f.PassengerType = PassengerAdult
		}
		out.Fares[i] = f
	}
	out.ReviewNotes = trimmedOrNil(d.ReviewNotes)
	out.Hours = trimmedOrNil(d.Hours)
	out.Notes = trimmedOrNil(d.Notes)
	return out
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

// Validate checks shape and range rules that need no store access.
func (d RouteDraft) Validate() error {
	var v []errors.Violation
	add := func(field, format string, args ...interface{}) {
		v = append(v, errors.Violation{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if len([]rune(d.DisplayName)) < 2 {
		add("display_name", "must be at least 2 characters")
	}
	if !IsValidSlug(d.Slug) {
		add("slug", "must contain only lowercase letters, digits and dashes")
	}
	if !IsValidColor(d.Color) {
		add("color", "must be a 6 digit hex colour")
	}
	if d.EstBuses != nil && *d.EstBuses < 0 {
		add("est_buses", "must not be negative")
	}
	for i, id := range []string{d.OriginTerminalID, d.DestinationTerminalID} {
		if id == "" {
			continue
		}
		if _, err := uuid.Parse(id); err != nil {
			field := "origin_terminal_id"
			if i == 1 {
				field = "destination_terminal_id"
			}
			add(field, "must be a terminal id")
		}
	}

	if len(d.Stops) < MinRouteStops {
		add("stops", "a route needs at least %d stops", MinRouteStops)
	}
	keys := make(map[string]int, len(d.Stops))
	ids := make(map[string]int, len(d.Stops))
	for i, s := range d.Stops {
		field := fmt.Sprintf("stops[%d]", i)
		if s.IsPending() {
			attrs, _ := s.Attrs()
			if s.LocalKey() == "" {
				add(field, "a new stop needs a local reference")
			}
			if strings.TrimSpace(attrs.Name) == "" {
				add(field+".name", "is required")
			}
			if attrs.Lat == nil || attrs.Lng == nil {
				add(field, "a new stop needs coordinates")
			} else if *attrs.Lat < -90 || *attrs.Lat > 90 || *attrs.Lng < -180 || *attrs.Lng > 180 {
				add(field, "coordinates out of range")
			}
		} else {
			id, _ := s.PersistedID()
			if id == "" {
				add(field, "stop id is required")
			} else if prev, dup := ids[id]; dup {
				add(field, "stop already listed at position %d", prev+1)
			} else {
				ids[id] = i
			}
		}
		if k := s.LocalKey(); k != "" {
			if prev, dup := keys[k]; dup {
				add(field, "local reference %q already used at position %d", k, prev+1)
			} else {
				keys[k] = i
			}
		}
	}

	for i, f := range d.Fares {
		field := fmt.Sprintf("fares[%d]", i)
		if f.FromRef == "" || f.ToRef == "" {
			add(field, "from and to stops are required")
		}
		if f.Price < 0 {
			add(field+".price_tzs", "must not be negative")
		}
	}

	for i, a := range d.Attachments {
		field := fmt.Sprintf("attachments[%d]", i)
		switch a.State {
		case AttachmentNew:
			if !a.MarkedForDeletion && strings.TrimSpace(a.FilePath) == "" {
				add(field+".file_path", "is required for a new attachment")
			}
		case AttachmentPersisted:
			if a.ID == "" {
				add(field+".id", "is required for a stored attachment")
			}
		default:
			add(field+".status", "must be new or persisted")
		}
	}

	if len(v) > 0 {
		return errors.Validation(v...)
	}
	return nil
}

// StopResolution maps draft stop references to persisted stop ids.
type StopResolution struct {
	byKey     map[string]string
	persisted map[string]bool
	created   map[string]bool
}

// NewStopResolution seeds the mapping with the draft's persisted entries.
func NewStopResolution(stops []StopRef) *StopResolution {
	r := &StopResolution{
		byKey:     make(map[string]string, len(stops)),
		persisted: make(map[string]bool, len(stops)),
		created:   make(map[string]bool),
	}
	for _, s := range stops {
		if id, ok := s.PersistedID(); ok {
			r.persisted[id] = true
			if s.LocalKey() != "" {
				r.byKey[s.LocalKey()] = id
			}
		}
	}
	return r
}

// Bind records the id assigned to a pending stop.
func (r *StopResolution) Bind(localKey, id string) {
	r.byKey[localKey] = id
	r.created[id] = true
}

// ResolveAll returns one persisted id per entry, in order. A pending entry
// without a bound id is an UnresolvedReference, never skipped.
func (r *StopResolution) ResolveAll(stops []StopRef) ([]string, error) {
	out := make([]string, len(stops))
	for i, s := range stops {
		if id, ok := s.PersistedID(); ok {
			out[i] = id
			continue
		}
		id, ok := r.byKey[s.LocalKey()]
		if !ok || id == "" {
			return nil, errors.UnresolvedReference("stop", s.LocalKey())
		}
		out[i] = id
	}
	return out, nil
}

// ResolveFareRef translates a fare endpoint. Local keys go through the
// mapping; a stop id must belong to the route's own stop list.
func (r *StopResolution) ResolveFareRef(ref string) (string, error) {
	if id, ok := r.byKey[ref]; ok {
		return id, nil
	}
	if r.persisted[ref] || r.created[ref] {
		return ref, nil
	}
	return "", errors.UnresolvedReference("fare stop", ref)
}
