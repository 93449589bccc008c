package usecase

import (
	"github.com/daroutes-wiki/internal/domain"
)

// Cache keys of the public read models
const (
	RouteListKey    = "routes:list"
	StopListKey     = "stops:list"
	TerminalListKey = "terminals:list"
	StatsKey        = "stats:current"
)

func RouteDetailKey(slug string) string {
	return "routes:detail:" + slug
}

func StopDetailKey(slug string) string {
	return "stops:detail:" + slug
}

func TerminalDetailKey(slug string) string {
	return "terminals:detail:" + slug
}

// KeysForChange lists the keys a committed change makes stale. Lists and
// stats always go; detail views go for the entity and for the related
// entities whose views embed it.
func KeysForChange(e domain.ContentChangedEvent) []string {
	keys := []string{StatsKey}

	var (
		detail  func(string) string
		related []func(string) string
	)
	switch e.EntityType {
	case domain.EntityRoute:
		keys = append(keys, RouteListKey)
		detail = RouteDetailKey
		// stop and terminal pages list the routes serving them
		related = []func(string) string{StopDetailKey, TerminalDetailKey}
	case domain.EntityStop:
		keys = append(keys, StopListKey, RouteListKey)
		detail = StopDetailKey
		related = []func(string) string{RouteDetailKey}
	case domain.EntityTerminal:
		keys = append(keys, TerminalListKey)
		detail = TerminalDetailKey
		related = []func(string) string{RouteDetailKey}
	default:
		return keys
	}

	for _, slug := range []string{e.Slug, e.PreviousSlug} {
		if slug != "" {
			keys = append(keys, detail(slug))
		}
	}
	for _, slug := range e.Related {
		if slug == "" {
			continue
		}
		for _, key := range related {
			keys = append(keys, key(slug))
		}
	}
	return keys
}
