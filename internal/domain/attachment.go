package domain

import "time"

const (
	AttachmentKindTicket   = "ticket"
	AttachmentKindVehicle  = "vehicle"
	AttachmentKindMap      = "map"
	AttachmentKindDocument = "document"
)

// Attachment - a stored media object linked to a route. FilePath is immutable.
type Attachment struct {
	ID         string    `json:"id"`
	RouteID    string    `json:"route_id"`
	FilePath   string    `json:"file_path"`
	Kind       string    `json:"kind"`
	Caption    *string   `json:"caption"`
	UploadedBy *string   `json:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// AttachmentState - draft-side lifecycle tag
type AttachmentState string

const (
	AttachmentNew       AttachmentState = "new"
	AttachmentPersisted AttachmentState = "persisted"
)

// AttachmentDraft - one attachment as submitted with a route save
type AttachmentDraft struct {
	ID                string
	FilePath          string
	Kind              string
	Caption           *string
	State             AttachmentState
	MarkedForDeletion bool
}

type NewAttachment struct {
	RouteID    string
	FilePath   string
	Kind       string
	Caption    *string
	UploadedBy *string
}

// AttachmentUpdate - metadata edit of a stored attachment. A nil Kind keeps
// the stored kind.
type AttachmentUpdate struct {
	ID      string
	Kind    *string
	Caption *string
}

// AttachmentPlan - the writes needed to reconcile the stored attachment set
type AttachmentPlan struct {
	Delete []string
	Insert []NewAttachment
	Update []AttachmentUpdate
}

func (p AttachmentPlan) Empty() bool {
	return len(p.Delete) == 0 && len(p.Insert) == 0 && len(p.Update) == 0
}

// PlanAttachments splits drafts into deletes, inserts and metadata updates.
// A new draft marked for deletion was never stored and is dropped.
func PlanAttachments(routeID string, drafts []AttachmentDraft, uploader *string) AttachmentPlan {
	var plan AttachmentPlan
	for _, d := range drafts {
		switch {
		case d.MarkedForDeletion:
			if d.State == AttachmentPersisted && d.ID != "" {
				plan.Delete = append(plan.Delete, d.ID)
			}
		case d.State == AttachmentNew:
			plan.Insert = append(plan.Insert, NewAttachment{
				RouteID:    routeID,
				FilePath:   d.FilePath,
				Kind:       kindOrDefault(d.Kind),
				Caption:    d.Caption,
				UploadedBy: uploader,
			})
		case d.State == AttachmentPersisted:
			u := AttachmentUpdate{ID: d.ID, Caption: d.Caption}
			if d.Kind != "" {
				kind := d.Kind
				u.Kind = &kind
			}
			plan.Update = append(plan.Update, u)
		}
	}
	return plan
}

func kindOrDefault(kind string) string {
	if kind == "" {
		return AttachmentKindTicket
	}
	return kind
}
