package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlanAttachments(t *testing.T) {
	caption := "Front of the bus"
	uploader := "user-1"

	plan := PlanAttachments("route-1", []AttachmentDraft{
		{ID: "att-1", FilePath: "routes/r/1.png", State: AttachmentPersisted, MarkedForDeletion: true},
		{FilePath: "routes/r/2.png", Kind: AttachmentKindVehicle, State: AttachmentNew},
		{ID: "att-3", FilePath: "routes/r/3.png", Caption: &caption, State: AttachmentPersisted},
		{ID: "att-5", Kind: AttachmentKindMap, State: AttachmentPersisted},
		{FilePath: "routes/r/4.png", State: AttachmentNew, MarkedForDeletion: true},
	}, &uploader)

	assert.Equal(t, []string{"att-1"}, plan.Delete)
	assert.Equal(t, []NewAttachment{{
		RouteID:    "route-1",
		FilePath:   "routes/r/2.png",
		Kind:       AttachmentKindVehicle,
		UploadedBy: &uploader,
	}}, plan.Insert)
	kind := AttachmentKindMap
	assert.Equal(t, []AttachmentUpdate{
		{ID: "att-3", Caption: &caption},
		{ID: "att-5", Kind: &kind},
	}, plan.Update, "an update without a kind keeps the stored one")
	assert.False(t, plan.Empty())

	assert.True(t, PlanAttachments("route-1", nil, nil).Empty())
}
