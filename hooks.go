package signal

import "context"

// OnMatchFunc is called after trie descent with the number of structurally
// matched candidates, before guards are evaluated.
type OnMatchFunc func(ctx context.Context, s *Signal, candidateCount int)

// OnRouteFunc is called after a successful Route, with the final ordered
// handler list.
type OnRouteFunc func(ctx context.Context, s *Signal, handlers []Handler)

// OnNoMatchFunc is called when guard evaluation leaves no matched route
// (including when there were zero structural candidates to begin with).
type OnNoMatchFunc func(ctx context.Context, s *Signal)

// routerHooks holds every hook configured on a Router. Multiple hooks of
// the same kind run in registration order, mirroring the teacher's hooks
// design: instrumentation is opt-in and additive, never required to make
// Route itself work.
type routerHooks struct {
	onMatch   []OnMatchFunc
	onRoute   []OnRouteFunc
	onNoMatch []OnNoMatchFunc
}

// WithOnMatch adds a hook called after trie descent, before guards run.
func WithOnMatch(fn OnMatchFunc) RouterOption {
	return func(r *Router) { r.hooks.onMatch = append(r.hooks.onMatch, fn) }
}

// WithOnRoute adds a hook called after a successful Route with the final
// ordered handler list.
func WithOnRoute(fn OnRouteFunc) RouterOption {
	return func(r *Router) { r.hooks.onRoute = append(r.hooks.onRoute, fn) }
}

// WithOnNoMatch adds a hook called when Route finds no matching handler.
func WithOnNoMatch(fn OnNoMatchFunc) RouterOption {
	return func(r *Router) { r.hooks.onNoMatch = append(r.hooks.onNoMatch, fn) }
}

func (r *Router) callOnMatch(ctx context.Context, s *Signal, count int) {
	for _, fn := range r.hooks.onMatch {
		fn(ctx, s, count)
	}
}

func (r *Router) callOnRoute(ctx context.Context, s *Signal, handlers []Handler) {
	for _, fn := range r.hooks.onRoute {
		fn(ctx, s, handlers)
	}
}

func (r *Router) callOnNoMatch(ctx context.Context, s *Signal) {
	for _, fn := range r.hooks.onNoMatch {
		fn(ctx, s)
	}
}
