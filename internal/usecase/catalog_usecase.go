package usecase

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/daroutes-wiki/internal/domain"
	"github.com/daroutes-wiki/internal/domain/repository"
	"github.com/daroutes-wiki/internal/pkg/errors"
	"github.com/daroutes-wiki/internal/pkg/geo"
	"github.com/daroutes-wiki/internal/pkg/metrics"
	"github.com/daroutes-wiki/internal/usecase/dto"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CatalogTTL - lifetimes of cached public views
type CatalogTTL struct {
	List   time.Duration
	Detail time.Duration
}

// CatalogUseCase builds the public read models. Only published content is
// visible and every read runs as the anonymous caller.
type CatalogUseCase struct {
	store       repository.Store
	cache       repository.CacheRepository
	metrics     *metrics.Registry
	multipliers domain.Multipliers
	ttl         CatalogTTL
	logger      *zap.Logger
}

func NewCatalogUseCase(
	store repository.Store,
	cache repository.CacheRepository,
	metrics *metrics.Registry,
	multipliers domain.Multipliers,
	ttl CatalogTTL,
	logger *zap.Logger,
) *CatalogUseCase {
	return &CatalogUseCase{
		store:       store,
		cache:       cache,
		metrics:     metrics,
		multipliers: multipliers,
		ttl:         ttl,
		logger:      logger,
	}
}

// ListRoutes returns published routes by display name. The unfiltered list
// is served from the cache.
func (uc *CatalogUseCase) ListRoutes(ctx context.Context, query string) ([]dto.RouteSummary, error) {
	load := func(ctx context.Context) ([]dto.RouteSummary, error) {
		return uc.loadRouteSummaries(ctx, repository.ContentFilter{Query: query, Sort: repository.SortByName}.Published())
	}
	if query != "" {
		return load(ctx)
	}
	return cached(ctx, uc, "routes", RouteListKey, uc.ttl.List, load)
}

func (uc *CatalogUseCase) loadRouteSummaries(ctx context.Context, filter repository.ContentFilter) ([]dto.RouteSummary, error) {
	var (
		routes []domain.Route
		names  map[string]string
	)
	err := uc.store.View(ctx, domain.Anonymous(), func(tx repository.Tx) error {
		var err error
		if routes, err = tx.Routes().List(ctx, filter); err != nil {
			return err
		}
		names, err = endpointNames(ctx, tx, routes)
		return err
	})
	if err != nil {
		return nil, err
	}
	return summarize(routes, names), nil
}

// GetRoute returns the public route page. Draft and in-review routes are
// reported as not found.
func (uc *CatalogUseCase) GetRoute(ctx context.Context, slug string) (*dto.RouteDetail, error) {
	return cached(ctx, uc, "route_detail", RouteDetailKey(slug), uc.ttl.Detail, func(ctx context.Context) (*dto.RouteDetail, error) {
		return uc.loadRouteDetail(ctx, slug)
	})
}

type routeParts struct {
	stops       []domain.OrderedStop
	links       []domain.RouteStop
	fares       []domain.Fare
	attachments []domain.Attachment
	operators   []domain.Operator
	terminals   []dto.TerminalLink
	endpoints   map[string]string
}

func (uc *CatalogUseCase) loadRouteDetail(ctx context.Context, slug string) (*dto.RouteDetail, error) {
	route, err := uc.publishedRoute(ctx, slug)
	if err != nil {
		return nil, err
	}

	// Each part reads in its own read-only transaction; one transaction
	// cannot serve concurrent queries.
	var parts routeParts
	g, gctx := errgroup.WithContext(ctx)
	view := func(fn func(tx repository.Tx) error) func() error {
		return func() error { return uc.store.View(gctx, domain.Anonymous(), fn) }
	}
	g.Go(view(func(tx repository.Tx) error {
		var err error
		if parts.stops, err = tx.Stops().ListByRoute(gctx, route.ID); err != nil {
			return err
		}
		parts.links, err = tx.RouteStops().ListByRoute(gctx, route.ID)
		return err
	}))
	g.Go(view(func(tx repository.Tx) error {
		var err error
		parts.fares, err = tx.Fares().ListByRoute(gctx, route.ID)
		return err
	}))
	g.Go(view(func(tx repository.Tx) error {
		var err error
		parts.attachments, err = tx.Attachments().ListByRoute(gctx, route.ID)
		return err
	}))
	g.Go(view(func(tx repository.Tx) error {
		var err error
		parts.operators, err = tx.Operators().ListByIDs(gctx, route.OperatorIDs)
		return err
	}))
	g.Go(view(func(tx repository.Tx) error {
		var err error
		if parts.terminals, err = publishedTerminalLinks(gctx, tx, route.ID); err != nil {
			return err
		}
		parts.endpoints, err = endpointNames(gctx, tx, []domain.Route{*route})
		return err
	}))
	if err := g.Wait(); err != nil {
		uc.logger.Error("Failed to load route detail", zap.String("slug", slug), zap.Error(err))
		return nil, err
	}

	return buildRouteDetail(*route, parts), nil
}

func (uc *CatalogUseCase) publishedRoute(ctx context.Context, slug string) (*domain.Route, error) {
	var route *domain.Route
	err := uc.store.View(ctx, domain.Anonymous(), func(tx repository.Tx) error {
		var err error
		route, err = tx.Routes().GetBySlug(ctx, slug)
		return err
	})
	if err != nil {
		return nil, err
	}
	if route.Status != domain.StatusPublished {
		return nil, errors.NotFound("route", slug)
	}
	return route, nil
}

func buildRouteDetail(route domain.Route, parts routeParts) *dto.RouteDetail {
	detail := &dto.RouteDetail{
		RouteSummary: dto.NewRouteSummary(route, lookup(parts.endpoints, route.StartStopID), lookup(parts.endpoints, route.EndStopID)),
		Notes:        route.Notes,
		PublishedAt:  route.PublishedAt,
		Operators:    nonNil(parts.operators),
		Stops:        []dto.PublicStop{},
		Terminals:    nonNil(parts.terminals),
		Fares:        map[string][]dto.FareView{},
		Attachments:  make([]dto.AttachmentView, 0, len(parts.attachments)),
	}

	names := make(map[string]string, len(parts.stops))
	features := make([]geo.StopFeature, 0, len(parts.stops))
	points := make([]domain.Point, 0, len(parts.stops))
	for _, os := range parts.stops {
		if os.Stop.Status != domain.StatusPublished {
			continue
		}
		s := os.Stop
		names[s.ID] = s.Name
		detail.Stops = append(detail.Stops, dto.PublicStop{
			Seq:         os.Seq,
			Slug:        s.Slug,
			Name:        s.Name,
			NameAliases: nonNil(s.NameAliases),
			Lat:         s.Lat,
			Lng:         s.Lng,
			Ward:        s.Ward,
		})
		if p, ok := s.Point(); ok {
			features = append(features, geo.StopFeature{Seq: os.Seq, Slug: s.Slug, Name: s.Name, Ward: s.Ward, Point: p})
			points = append(points, p)
		}
	}
	detail.Geometry = geo.RouteFeatureCollection(features)
	detail.Bounds = geo.Bounds(points)
	detail.DistanceKm = geo.PathLengthKm(points)

	seq := make(map[string]int, len(parts.links))
	for _, l := range parts.links {
		seq[l.StopID] = l.Seq
	}
	for passenger, fares := range domain.GroupFaresByPassenger(parts.fares) {
		views := make([]dto.FareView, 0, len(fares))
		for _, f := range fares {
			from, okFrom := names[f.FromStopID]
			to, okTo := names[f.ToStopID]
			if !okFrom || !okTo {
				continue
			}
			views = append(views, dto.FareView{
				FromStop: from,
				ToStop:   to,
				FromSeq:  seq[f.FromStopID],
				ToSeq:    seq[f.ToStopID],
				Price:    f.Price,
				Note:     f.Note,
			})
		}
		sort.SliceStable(views, func(i, j int) bool {
			if views[i].FromSeq != views[j].FromSeq {
				return views[i].FromSeq < views[j].FromSeq
			}
			return views[i].ToSeq < views[j].ToSeq
		})
		if len(views) > 0 {
			detail.Fares[passenger] = views
		}
	}

	for _, a := range parts.attachments {
		detail.Attachments = append(detail.Attachments, dto.AttachmentView{FilePath: a.FilePath, Kind: a.Kind, Caption: a.Caption})
	}
	return detail
}

// QuoteFare prices a trip between two 1-based stop positions of a published
// route.
func (uc *CatalogUseCase) QuoteFare(ctx context.Context, slug string, q dto.FareQuoteQuery) (*dto.FareQuote, error) {
	passenger := q.PassengerType
	if passenger == "" {
		passenger = domain.PassengerAdult
	}
	route, err := uc.publishedRoute(ctx, slug)
	if err != nil {
		return nil, err
	}

	var (
		links []domain.RouteStop
		fares []domain.Fare
		stops []domain.OrderedStop
	)
	err = uc.store.View(ctx, domain.Anonymous(), func(tx repository.Tx) error {
		var err error
		if links, err = tx.RouteStops().ListByRoute(ctx, route.ID); err != nil {
			return err
		}
		if stops, err = tx.Stops().ListByRoute(ctx, route.ID); err != nil {
			return err
		}
		fares, err = tx.Fares().ListByRoute(ctx, route.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	for _, pos := range []struct {
		field string
		value int
	}{{"from", q.From}, {"to", q.To}} {
		if pos.value < 1 || pos.value > len(links) {
			return nil, errors.Validation(errors.Violation{Field: pos.field, Message: "is not a stop position on this route"})
		}
	}

	table := domain.FareTableFromRoute(links, fares, passenger)
	quote := &dto.FareQuote{
		RouteSlug:     slug,
		From:          q.From,
		To:            q.To,
		PassengerType: passenger,
		Peak:          q.Peak,
		Multiplier:    uc.multipliers.For(q.Peak),
		Price:         domain.CalculateFare(q.From, q.To, table, q.Peak, uc.multipliers),
	}
	for _, os := range stops {
		switch os.Seq {
		case q.From:
			quote.FromStop = os.Stop.Name
		case q.To:
			quote.ToStop = os.Stop.Name
		}
	}
	return quote, nil
}

// GetStop returns a published stop with the published routes through it.
func (uc *CatalogUseCase) GetStop(ctx context.Context, slug string) (*dto.StopDetail, error) {
	return cached(ctx, uc, "stop_detail", StopDetailKey(slug), uc.ttl.Detail, func(ctx context.Context) (*dto.StopDetail, error) {
		var (
			stop   *domain.Stop
			routes []domain.Route
			names  map[string]string
		)
		published := domain.StatusPublished
		err := uc.store.View(ctx, domain.Anonymous(), func(tx repository.Tx) error {
			var err error
			if stop, err = tx.Stops().GetBySlug(ctx, slug); err != nil {
				return err
			}
			if stop.Status != domain.StatusPublished {
				return errors.NotFound("stop", slug)
			}
			if routes, err = tx.Stops().RoutesForStop(ctx, stop.ID, &published); err != nil {
				return err
			}
			names, err = endpointNames(ctx, tx, routes)
			return err
		})
		if err != nil {
			return nil, err
		}
		return &dto.StopDetail{
			Slug:        stop.Slug,
			Name:        stop.Name,
			NameAliases: nonNil(stop.NameAliases),
			Lat:         stop.Lat,
			Lng:         stop.Lng,
			Ward:        stop.Ward,
			Description: stop.Description,
			Routes:      summarize(routes, names),
		}, nil
	})
}

// GetTerminal returns a published terminal with its published routes
// grouped by the terminal's role on each.
func (uc *CatalogUseCase) GetTerminal(ctx context.Context, slug string) (*dto.TerminalDetail, error) {
	return cached(ctx, uc, "terminal_detail", TerminalDetailKey(slug), uc.ttl.Detail, func(ctx context.Context) (*dto.TerminalDetail, error) {
		var (
			terminal *domain.Terminal
			links    []domain.TerminalRoute
			names    map[string]string
		)
		published := domain.StatusPublished
		err := uc.store.View(ctx, domain.Anonymous(), func(tx repository.Tx) error {
			var err error
			if terminal, err = tx.Terminals().GetBySlug(ctx, slug); err != nil {
				return err
			}
			if terminal.Status != domain.StatusPublished {
				return errors.NotFound("terminal", slug)
			}
			if links, err = tx.Terminals().RoutesForTerminal(ctx, terminal.ID, &published); err != nil {
				return err
			}
			routes := make([]domain.Route, len(links))
			for i, l := range links {
				routes[i] = l.Route
			}
			names, err = endpointNames(ctx, tx, routes)
			return err
		})
		if err != nil {
			return nil, err
		}

		detail := &dto.TerminalDetail{
			Slug:        terminal.Slug,
			Name:        terminal.Name,
			NameAliases: nonNil(terminal.NameAliases),
			Lat:         terminal.Lat,
			Lng:         terminal.Lng,
			Ward:        terminal.Ward,
			Description: terminal.Description,
			Amenities:   nonNil(terminal.Amenities),
			Routes: dto.RoutesByRole{
				Origin:   []dto.RouteSummary{},
				Terminus: []dto.RouteSummary{},
				Through:  []dto.RouteSummary{},
			},
		}
		for _, l := range links {
			s := dto.NewRouteSummary(l.Route, lookup(names, l.Route.StartStopID), lookup(names, l.Route.EndStopID))
			switch l.Role {
			case domain.TerminalOrigin:
				detail.Routes.Origin = append(detail.Routes.Origin, s)
			case domain.TerminalTerminus:
				detail.Routes.Terminus = append(detail.Routes.Terminus, s)
			case domain.TerminalThrough:
				detail.Routes.Through = append(detail.Routes.Through, s)
			}
		}
		return detail, nil
	})
}

// ListStops returns published stops by name. The unfiltered list is cached.
func (uc *CatalogUseCase) ListStops(ctx context.Context, query string) ([]dto.StopSummary, error) {
	load := func(ctx context.Context) ([]dto.StopSummary, error) {
		var stops []domain.Stop
		err := uc.store.View(ctx, domain.Anonymous(), func(tx repository.Tx) error {
			var err error
			stops, err = tx.Stops().List(ctx, repository.ContentFilter{Query: query, Sort: repository.SortByName}.Published())
			return err
		})
		if err != nil {
			return nil, err
		}
		out := make([]dto.StopSummary, len(stops))
		for i, s := range stops {
			out[i] = dto.NewStopSummary(s)
			out[i].Status = ""
		}
		return out, nil
	}
	if query != "" {
		return load(ctx)
	}
	return cached(ctx, uc, "stops", StopListKey, uc.ttl.List, load)
}

func (uc *CatalogUseCase) ListTerminals(ctx context.Context, query string) ([]dto.StopSummary, error) {
	load := func(ctx context.Context) ([]dto.StopSummary, error) {
		var terminals []domain.Terminal
		err := uc.store.View(ctx, domain.Anonymous(), func(tx repository.Tx) error {
			var err error
			terminals, err = tx.Terminals().List(ctx, repository.ContentFilter{Query: query, Sort: repository.SortByName}.Published())
			return err
		})
		if err != nil {
			return nil, err
		}
		out := make([]dto.StopSummary, len(terminals))
		for i, t := range terminals {
			out[i] = dto.NewTerminalSummary(t)
			out[i].Status = ""
		}
		return out, nil
	}
	if query != "" {
		return load(ctx)
	}
	return cached(ctx, uc, "terminals", TerminalListKey, uc.ttl.List, load)
}

// cached serves key from the cache or loads and stores it. Cache failures
// are logged and fall through to the store.
func cached[T any](ctx context.Context, uc *CatalogUseCase, view, key string, ttl time.Duration, load func(ctx context.Context) (T, error)) (T, error) {
	if uc.cache != nil {
		data, err := uc.cache.Get(ctx, key)
		if err != nil {
			uc.logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		}
		if data != nil {
			var v T
			if err := json.Unmarshal(data, &v); err == nil {
				uc.metrics.ObserveCache(view, true)
				return v, nil
			}
			uc.logger.Warn("Discarding undecodable cache entry", zap.String("key", key))
		}
		uc.metrics.ObserveCache(view, false)
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}

	if uc.cache != nil {
		data, err := json.Marshal(v)
		if err == nil {
			err = uc.cache.Set(ctx, key, data, ttl)
		}
		if err != nil {
			uc.logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return v, nil
}

// endpointNames maps the start and end stop ids of routes to stop names.
func endpointNames(ctx context.Context, tx repository.Tx, routes []domain.Route) (map[string]string, error) {
	seen := make(map[string]bool)
	var ids []string
	for _, r := range routes {
		for _, id := range []*string{r.StartStopID, r.EndStopID} {
			if id != nil && !seen[*id] {
				seen[*id] = true
				ids = append(ids, *id)
			}
		}
	}
	stops, err := tx.Stops().ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(stops))
	for _, s := range stops {
		names[s.ID] = s.Name
	}
	return names, nil
}

// publishedTerminalLinks renders the route's links to published terminals
// in origin, through, terminus order.
func publishedTerminalLinks(ctx context.Context, tx repository.Tx, routeID string) ([]dto.TerminalLink, error) {
	links, err := tx.RouteTerminals().ListByRoute(ctx, routeID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TerminalLink, 0, len(links))
	for _, l := range links {
		t, err := tx.Terminals().GetByID(ctx, l.TerminalID)
		if errors.Is(err, errors.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if t.Status != domain.StatusPublished {
			continue
		}
		out = append(out, dto.TerminalLink{Role: l.Role, Slug: t.Slug, Name: t.Name, Notes: l.Notes})
	}
	return out, nil
}

func summarize(routes []domain.Route, names map[string]string) []dto.RouteSummary {
	out := make([]dto.RouteSummary, len(routes))
	for i, r := range routes {
		out[i] = dto.NewRouteSummary(r, lookup(names, r.StartStopID), lookup(names, r.EndStopID))
	}
	return out
}

func lookup(names map[string]string, id *string) *string {
	if id == nil {
		return nil
	}
	name, ok := names[*id]
	if !ok {
		return nil
	}
	return &name
}
