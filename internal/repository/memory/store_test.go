package memory

import (
	"context"
	"fmt"
	"testing"
	"time"
	"unsafe"

	"github.com/daroutes-wiki/internal/domain"
	"github.com/daroutes-wiki/internal/domain/repository"
	"github.com/daroutes-wiki/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var editor = domain.Actor{UserID: "u-editor", Role: domain.RoleEditor}

func floatPtr(f float64) *float64 { return &f }

func newStore(t *testing.T) *Store {
	t.Helper()
	s := New(zap.NewNop())
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time {
		now = now.Add(time.Second)
		return now
	})
	return s
}

func insertStops(t *testing.T, s *Store, names ...string) []string {
	t.Helper()
	var ids []string
	err := s.WithinTx(context.Background(), editor, func(tx repository.Tx) error {
		rows := make([]domain.NewStop, len(names))
		for i, n := range names {
			rows[i] = domain.NewStop{
				Slug:      domain.NewStopSlug(n),
				StopAttrs: domain.StopAttrs{Name: n, Lat: floatPtr(-6.8), Lng: floatPtr(39.28)},
				Status:    domain.StatusDraft,
			}
		}
		var err error
		ids, err = tx.Stops().InsertMany(context.Background(), rows)
		return err
	})
	require.NoError(t, err)
	return ids
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	err := s.WithinTx(ctx, editor, func(tx repository.Tx) error {
		if _, err := tx.Routes().Insert(ctx, domain.RouteFields{Slug: "r1", DisplayName: "Route 1", Color: "#000000"}, editor.UserRef()); err != nil {
			return err
		}
		return fmt.Errorf("boom")
	})
	require.Error(t, err)

	err = s.View(ctx, domain.Anonymous(), func(tx repository.Tx) error {
		_, err := tx.Routes().GetBySlug(ctx, "r1")
		return err
	})
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestWithinTx_AnonymousWriteDenied(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	err := s.WithinTx(ctx, domain.Anonymous(), func(tx repository.Tx) error {
		_, err := tx.Routes().Insert(ctx, domain.RouteFields{Slug: "r1", DisplayName: "Route 1"}, nil)
		return err
	})
	assert.ErrorIs(t, err, errors.ErrAccessDenied)

	viewer := domain.Actor{UserID: "u-viewer", Role: domain.RoleViewer}
	err = s.WithinTx(ctx, viewer, func(tx repository.Tx) error {
		_, err := tx.Stops().InsertMany(ctx, []domain.NewStop{{Slug: "a", StopAttrs: domain.StopAttrs{Name: "A"}}})
		return err
	})
	assert.ErrorIs(t, err, errors.ErrAccessDenied)
}

func TestView_RejectsWrites(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	err := s.View(ctx, editor, func(tx repository.Tx) error {
		_, err := tx.Routes().Insert(ctx, domain.RouteFields{Slug: "r1", DisplayName: "Route 1"}, nil)
		return err
	})
	assert.ErrorIs(t, err, errors.ErrDatabaseError)
}

func TestRoutes_SlugUniqueAndForeignKeys(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	stops := insertStops(t, s, "Kariakoo", "Posta")

	err := s.WithinTx(ctx, editor, func(tx repository.Tx) error {
		_, err := tx.Routes().Insert(ctx, domain.RouteFields{Slug: "r1", DisplayName: "Route 1", StartStopID: &stops[0], EndStopID: &stops[1]}, nil)
		return err
	})
	require.NoError(t, err)

	err = s.WithinTx(ctx, editor, func(tx repository.Tx) error {
		_, err := tx.Routes().Insert(ctx, domain.RouteFields{Slug: "r1", DisplayName: "Other"}, nil)
		return err
	})
	assert.ErrorIs(t, err, errors.ErrConflict)

	missing := "00000000-0000-0000-0000-000000000000"
	err = s.WithinTx(ctx, editor, func(tx repository.Tx) error {
		_, err := tx.Routes().Insert(ctx, domain.RouteFields{Slug: "r2", DisplayName: "Route 2", OriginTerminalID: &missing}, nil)
		return err
	})
	assert.ErrorIs(t, err, errors.ErrUnresolvedReference)
}

func TestRouteStops_UniqueSeqAndStop(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	stops := insertStops(t, s, "A", "B")

	var routeID string
	require.NoError(t, s.WithinTx(ctx, editor, func(tx repository.Tx) error {
		var err error
		routeID, err = tx.Routes().Insert(ctx, domain.RouteFields{Slug: "r1", DisplayName: "Route 1"}, nil)
		if err != nil {
			return err
		}
		return tx.RouteStops().InsertMany(ctx, domain.SequenceStops(routeID, stops))
	}))

	err := s.WithinTx(ctx, editor, func(tx repository.Tx) error {
		return tx.RouteStops().InsertMany(ctx, []domain.RouteStop{{RouteID: routeID, StopID: stops[0], Seq: 3}})
	})
	assert.ErrorIs(t, err, errors.ErrConflict)

	require.NoError(t, s.View(ctx, editor, func(tx repository.Tx) error {
		links, err := tx.RouteStops().ListByRoute(ctx, routeID)
		require.NoError(t, err)
		assert.Len(t, links, 2)
		assert.Equal(t, 1, links[0].Seq)
		return nil
	}))
}

func TestStops_DeleteReferencedConflicts(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	stops := insertStops(t, s, "A", "B", "C")

	require.NoError(t, s.WithinTx(ctx, editor, func(tx repository.Tx) error {
		id, err := tx.Routes().Insert(ctx, domain.RouteFields{Slug: "r1", DisplayName: "Route 1"}, nil)
		if err != nil {
			return err
		}
		return tx.RouteStops().InsertMany(ctx, domain.SequenceStops(id, stops[:2]))
	}))

	err := s.WithinTx(ctx, editor, func(tx repository.Tx) error {
		return tx.Stops().Delete(ctx, stops[0])
	})
	assert.ErrorIs(t, err, errors.ErrConflict)

	err = s.WithinTx(ctx, editor, func(tx repository.Tx) error {
		return tx.Stops().Delete(ctx, stops[2])
	})
	assert.NoError(t, err)
}

func TestRoutes_DeleteCascades(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	stops := insertStops(t, s, "A", "B")

	var routeID string
	require.NoError(t, s.WithinTx(ctx, editor, func(tx repository.Tx) error {
		var err error
		routeID, err = tx.Routes().Insert(ctx, domain.RouteFields{Slug: "r1", DisplayName: "Route 1"}, nil)
		if err != nil {
			return err
		}
		if err := tx.RouteStops().InsertMany(ctx, domain.SequenceStops(routeID, stops)); err != nil {
			return err
		}
		if err := tx.Fares().InsertMany(ctx, []domain.Fare{{RouteID: routeID, FromStopID: stops[0], ToStopID: stops[1], PassengerType: domain.PassengerAdult, Price: 500}}); err != nil {
			return err
		}
		_, err = tx.Attachments().InsertMany(ctx, []domain.NewAttachment{{RouteID: routeID, FilePath: "tickets/a.jpg", Kind: domain.AttachmentKindTicket}})
		return err
	}))

	require.NoError(t, s.WithinTx(ctx, editor, func(tx repository.Tx) error {
		return tx.Routes().Delete(ctx, routeID)
	}))

	require.NoError(t, s.View(ctx, editor, func(tx repository.Tx) error {
		fares, _ := tx.Fares().ListByRoute(ctx, routeID)
		atts, _ := tx.Attachments().ListByRoute(ctx, routeID)
		assert.Empty(t, fares)
		assert.Empty(t, atts)
		return nil
	}))

	assert.NoError(t, s.WithinTx(ctx, editor, func(tx repository.Tx) error {
		return tx.Stops().Delete(ctx, stops[0])
	}))
}

func TestRouteTerminals_OneOriginPerRoute(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.WithinTx(ctx, editor, func(tx repository.Tx) error {
		t1, err := tx.Terminals().Insert(ctx, domain.NewTerminal{Slug: "t1", TerminalAttrs: domain.TerminalAttrs{StopAttrs: domain.StopAttrs{Name: "T1"}}})
		if err != nil {
			return err
		}
		t2, err := tx.Terminals().Insert(ctx, domain.NewTerminal{Slug: "t2", TerminalAttrs: domain.TerminalAttrs{StopAttrs: domain.StopAttrs{Name: "T2"}}})
		if err != nil {
			return err
		}
		routeID, err := tx.Routes().Insert(ctx, domain.RouteFields{Slug: "r1", DisplayName: "Route 1"}, nil)
		if err != nil {
			return err
		}
		require.NoError(t, tx.RouteTerminals().InsertMany(ctx, []domain.RouteTerminal{
			{RouteID: routeID, TerminalID: t1, Role: domain.TerminalOrigin},
			{RouteID: routeID, TerminalID: t2, Role: domain.TerminalThrough},
		}))
		err = tx.RouteTerminals().InsertMany(ctx, []domain.RouteTerminal{{RouteID: routeID, TerminalID: t2, Role: domain.TerminalOrigin}})
		assert.ErrorIs(t, err, errors.ErrConflict)

		require.NoError(t, tx.RouteTerminals().DeleteByRoute(ctx, routeID, domain.TerminalThrough))
		links, err := tx.RouteTerminals().ListByRoute(ctx, routeID)
		require.NoError(t, err)
		require.Len(t, links, 1)
		assert.Equal(t, domain.TerminalOrigin, links[0].Role)
		return nil
	}))
}

func TestList_FilterSortAndPage(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	for _, name := range []string{"Ubungo - Posta", "Kimara - Kivukoni", "Mbezi - Posta"} {
		require.NoError(t, s.WithinTx(ctx, editor, func(tx repository.Tx) error {
			_, err := tx.Routes().Insert(ctx, domain.RouteFields{Slug: domain.Slugify(name), DisplayName: name}, nil)
			return err
		}))
	}

	require.NoError(t, s.View(ctx, domain.Anonymous(), func(tx repository.Tx) error {
		routes, err := tx.Routes().List(ctx, repository.ContentFilter{Query: "posta"})
		require.NoError(t, err)
		require.Len(t, routes, 2)
		assert.Equal(t, "Mbezi - Posta", routes[0].DisplayName)

		routes, err = tx.Routes().List(ctx, repository.ContentFilter{Sort: repository.SortByUpdated, Limit: 1})
		require.NoError(t, err)
		require.Len(t, routes, 1)
		assert.Equal(t, "Mbezi - Posta", routes[0].DisplayName)

		routes, err = tx.Routes().List(ctx, repository.ContentFilter{}.Published())
		require.NoError(t, err)
		assert.Empty(t, routes)
		return nil
	}))
}

func TestStats_CountsByStatus(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	stops := insertStops(t, s, "A", "B")

	require.NoError(t, s.WithinTx(ctx, editor, func(tx repository.Tx) error {
		return tx.Stops().SetStatus(ctx, stops[0], domain.StatusChange{Status: domain.StatusInReview})
	}))

	require.NoError(t, s.View(ctx, domain.Anonymous(), func(tx repository.Tx) error {
		stats, err := tx.Stats().GetStatistics(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.Stops.Total)
		assert.Equal(t, 1, stats.Stops.ByStatus[domain.StatusDraft])
		assert.Equal(t, 1, stats.Stops.ByStatus[domain.StatusInReview])
		assert.Equal(t, 0, stats.Routes.Total)
		return nil
	}))
}

// HTTP frameworks hand out ids backed by reused request buffers. Updates
// must not let such a string become a map key.
func TestSetStatus_IgnoresCallerBuffer(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	ids := insertStops(t, s, "Kimara", "Posta")

	buf := []byte(ids[0])
	borrowed := unsafe.String(&buf[0], len(buf))
	require.NoError(t, s.WithinTx(ctx, editor, func(tx repository.Tx) error {
		return tx.Stops().SetStatus(ctx, borrowed, domain.StatusChange{Status: domain.StatusInReview})
	}))
	copy(buf, ids[1])

	require.NoError(t, s.View(ctx, editor, func(tx repository.Tx) error {
		first, err := tx.Stops().GetByID(ctx, ids[0])
		require.NoError(t, err)
		assert.Equal(t, domain.StatusInReview, first.Status)

		second, err := tx.Stops().GetByID(ctx, ids[1])
		require.NoError(t, err)
		assert.Equal(t, domain.StatusDraft, second.Status)
		return nil
	}))
}
