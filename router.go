package signal

import (
	"context"
	"reflect"
)

// Router maps a Signal's dotted type to an ordered list of Handlers via a
// trie match (spec §4.3). A Router is a persistent value: New/Add/Remove
// never mutate the Router they're given, they return a new one sharing
// untouched trie structure with it. Route is the only read path and is
// referentially transparent — safe to call concurrently against the same
// Router value with no synchronization (spec §5).
type Router struct {
	root      *trieNode
	nextIndex uint64
	hooks     routerHooks
}

// RouterOption configures a Router's observability hooks at construction.
type RouterOption func(*Router)

// New builds a Router from zero or more already-validated Routes,
// assigning each a monotonic insertion index in the order given.
func New(routes []*Route, opts ...RouterOption) (*Router, error) {
	r := &Router{root: emptyTrieNode()}
	for _, opt := range opts {
		opt(r)
	}
	return Add(r, routes...)
}

// Add returns a new Router equal to r with routes inserted, each assigned
// the next monotonic insertion index after r's highest so far. Per spec
// §9 open question (a), duplicate (pattern, handler, priority) tuples are
// not deduplicated — they are retained, matching the reference behavior.
func Add(r *Router, routes ...*Route) (*Router, error) {
	root := r.root
	next := r.nextIndex

	for _, route := range routes {
		if route.Priority < MinPriority || route.Priority > MaxPriority {
			return nil, newRoutingErrorf("priority %d out of range [%d, %d]", route.Priority, MinPriority, MaxPriority)
		}
		assigned := *route
		assigned.insertionIndex = next
		next++
		root = insert(root, assigned.compiled.segments, &assigned)
	}

	return &Router{root: root, nextIndex: next, hooks: r.hooks}, nil
}

// Remove returns a new Router equal to r with every route at pattern
// removed. If handler is supplied, only routes whose Handler deep-equals
// it are removed; otherwise every route at that pattern is removed, per
// spec §9 open question (b). A pattern with no registered routes is a
// no-op: Remove never errors.
func Remove(r *Router, pattern string, handler ...Handler) *Router {
	compiled, err := compilePattern(pattern)
	if err != nil {
		return r
	}

	var target Handler
	filterByHandler := len(handler) > 0
	if filterByHandler {
		target = handler[0]
	}

	keep := func(route *Route) bool {
		if !filterByHandler {
			return false
		}
		return !reflect.DeepEqual(route.Handler, target)
	}

	root := removeRoutes(r.root, compiled.segments, keep)
	if root == nil {
		root = emptyTrieNode()
	}
	return &Router{root: root, nextIndex: r.nextIndex, hooks: r.hooks}
}

// Route matches s.Type against r's trie (spec §4.3.3), evaluates each
// candidate's guard, and returns the ordered handler list (spec §4.3.4).
// It fails with a routing_error if s.Type is structurally invalid, if a
// guard panics, or if no handler matches.
func (r *Router) Route(ctx context.Context, s *Signal) ([]Handler, error) {
	segs, err := splitSignalType(s.Type)
	if err != nil {
		return nil, err
	}

	candidates := collectMatches(r.root, segs)
	r.callOnMatch(ctx, s, len(candidates))

	matched := make([]*Route, 0, len(candidates))
	for _, route := range candidates {
		pass, err := evalGuard(route, s)
		if err != nil {
			return nil, err
		}
		if pass {
			matched = append(matched, route)
		}
	}

	if len(matched) == 0 {
		r.callOnNoMatch(ctx, s)
		return nil, newRoutingError("No matching handlers found for signal")
	}

	handlers := orderRoutes(matched)
	r.callOnRoute(ctx, s, handlers)
	return handlers, nil
}
