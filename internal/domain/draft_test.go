package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daroutes-wiki/internal/pkg/errors"
)

func floatPtr(f float64) *float64 { return &f }

func pendingStop(key, name string) StopRef {
	return PendingStopRef(key, StopAttrs{Name: name, Lat: floatPtr(-6.8), Lng: floatPtr(39.27)})
}

func validDraft() RouteDraft {
	return RouteDraft{
		Slug:        "kimara-kivukoni",
		DisplayName: "Kimara - Kivukoni",
		Color:       "#1f77b4",
		Stops: []StopRef{
			PersistedStopRef("", uuid.NewString()),
			pendingStop("tmp-1", "Magomeni"),
		},
	}
}

func violationFields(t *testing.T, err error) []string {
	t.Helper()
	appErr, ok := errors.As(err)
	require.True(t, ok)
	require.Equal(t, errors.ErrValidationFailed.Code, appErr.Code)
	vs, ok := appErr.Details["violations"].([]errors.Violation)
	require.True(t, ok)
	fields := make([]string, len(vs))
	for i, v := range vs {
		fields[i] = v.Field
	}
	return fields
}

func TestRouteDraft_Validate(t *testing.T) {
	t.Run("valid draft", func(t *testing.T) {
		assert.NoError(t, validDraft().Validate())
	})

	tests := []struct {
		name   string
		mutate func(d *RouteDraft)
		field  string
	}{
		{"short display name", func(d *RouteDraft) { d.DisplayName = "K" }, "display_name"},
		{"uppercase slug", func(d *RouteDraft) { d.Slug = "Kimara" }, "slug"},
		{"slug with spaces", func(d *RouteDraft) { d.Slug = "kimara kivukoni" }, "slug"},
		{"bad colour", func(d *RouteDraft) { d.Color = "#12345" }, "color"},
		{"single stop", func(d *RouteDraft) { d.Stops = d.Stops[:1] }, "stops"},
		{"negative price", func(d *RouteDraft) {
			d.Fares = []FareDraft{{FromRef: "tmp-1", ToRef: "tmp-1", PassengerType: PassengerAdult, Price: -1}}
		}, "fares[0].price_tzs"},
		{"duplicate local key", func(d *RouteDraft) {
			d.Stops = append(d.Stops, pendingStop("tmp-1", "Kariakoo"))
		}, "stops[2]"},
		{"duplicate persisted stop", func(d *RouteDraft) {
			d.Stops = append(d.Stops, d.Stops[0])
		}, "stops[2]"},
		{"pending stop without coordinates", func(d *RouteDraft) {
			d.Stops[1] = PendingStopRef("tmp-1", StopAttrs{Name: "Magomeni"})
		}, "stops[1]"},
		{"pending stop without name", func(d *RouteDraft) {
			d.Stops[1] = PendingStopRef("tmp-1", StopAttrs{Lat: floatPtr(1), Lng: floatPtr(1)})
		}, "stops[1].name"},
		{"new attachment without path", func(d *RouteDraft) {
			d.Attachments = []AttachmentDraft{{State: AttachmentNew}}
		}, "attachments[0].file_path"},
		{"persisted attachment without id", func(d *RouteDraft) {
			d.Attachments = []AttachmentDraft{{State: AttachmentPersisted, FilePath: "routes/x.png"}}
		}, "attachments[0].id"},
		{"terminal id not an id", func(d *RouteDraft) { d.OriginTerminalID = "ubungo" }, "origin_terminal_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.mutate(&d)
			err := d.Validate()
			require.Error(t, err)
			assert.Contains(t, violationFields(t, err), tt.field)
		})
	}
}

func TestRouteDraft_Normalize(t *testing.T) {
	blank := "   "
	d := RouteDraft{
		Slug:             " kimara ",
		DisplayName:      "  Kimara  ",
		Color:            "1f77b4",
		Corridors:        []string{" Morogoro Rd ", "", "  "},
		ReviewNotes:      &blank,
		OriginTerminalID: "  ",
		Fares: []FareDraft{
			{FromRef: "a", ToRef: "b", Price: 500},
			{FromRef: "a", ToRef: "b", PassengerType: " student ", Price: 200},
		},
	}

	n := d.Normalize()
	assert.Equal(t, "kimara", n.Slug)
	assert.Equal(t, "Kimara", n.DisplayName)
	assert.Equal(t, "#1f77b4", n.Color)
	assert.Equal(t, []string{"Morogoro Rd"}, n.Corridors)
	assert.Nil(t, n.ReviewNotes)
	assert.Equal(t, "", n.OriginTerminalID)
	assert.NotNil(t, n.OperatorIDs)
	assert.Equal(t, PassengerAdult, n.Fares[0].PassengerType)
	assert.Equal(t, PassengerStudent, n.Fares[1].PassengerType)

	assert.Equal(t, " kimara ", d.Slug, "original draft is untouched")
	assert.Empty(t, d.Fares[0].PassengerType)
}

func TestStopResolution(t *testing.T) {
	existing := uuid.NewString()
	stops := []StopRef{
		PersistedStopRef("row-a", existing),
		pendingStop("tmp-b", "Magomeni"),
	}

	r := NewStopResolution(stops)

	_, err := r.ResolveAll(stops)
	assert.ErrorIs(t, err, errors.ErrUnresolvedReference, "pending stop must not be skipped")

	created := uuid.NewString()
	r.Bind("tmp-b", created)

	ids, err := r.ResolveAll(stops)
	require.NoError(t, err)
	assert.Equal(t, []string{existing, created}, ids)

	got, err := r.ResolveFareRef("tmp-b")
	require.NoError(t, err)
	assert.Equal(t, created, got)

	got, err = r.ResolveFareRef("row-a")
	require.NoError(t, err)
	assert.Equal(t, existing, got)

	got, err = r.ResolveFareRef(existing)
	require.NoError(t, err)
	assert.Equal(t, existing, got)

	got, err = r.ResolveFareRef(created)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = r.ResolveFareRef(uuid.NewString())
	assert.ErrorIs(t, err, errors.ErrUnresolvedReference, "a stop off the route is not a fare endpoint")

	_, err = r.ResolveFareRef("tmp-missing")
	assert.ErrorIs(t, err, errors.ErrUnresolvedReference)
}

func TestStopRef(t *testing.T) {
	p := PersistedStopRef("", "abc")
	id, ok := p.PersistedID()
	assert.True(t, ok)
	assert.Equal(t, "abc", id)
	assert.Equal(t, "abc", p.Key())
	assert.False(t, p.IsPending())

	n := pendingStop("tmp", "Ubungo")
	_, ok = n.PersistedID()
	assert.False(t, ok)
	attrs, ok := n.Attrs()
	assert.True(t, ok)
	assert.Equal(t, "Ubungo", attrs.Name)
	assert.Equal(t, "tmp", n.Key())

	ward := "Ubungo"
	attrs.Ward = &ward
	n2 := n.WithAttrs(attrs)
	a2, _ := n2.Attrs()
	assert.Equal(t, "Ubungo", *a2.Ward)
	a1, _ := n.Attrs()
	assert.Nil(t, a1.Ward)
}
