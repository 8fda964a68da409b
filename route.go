package signal

const (
	// MinPriority and MaxPriority bound a Route's Priority (spec §4.3.5).
	MinPriority = -100
	MaxPriority = 100
)

// Guard is a pure, non-blocking predicate over a Signal, evaluated after a
// Route's pattern structurally matches (spec §3, §5). A guard must not
// block; the router does not enforce this but a blocking guard is a
// defect, never a router deadlock.
type Guard func(s *Signal) bool

// Route is a compiled routing entry: a pattern, an optional guard, a
// handler, a priority, and the insertion index assigned when it was added
// to a Router (spec §3 "Route").
type Route struct {
	Pattern        string
	Guard          Guard
	Handler        Handler
	Priority       int
	insertionIndex uint64
	compiled       compiledPattern
}

// RouteOption configures optional Route fields.
type RouteOption func(*Route)

// WithGuard attaches a predicate that must also pass for the route to
// match, evaluated after the structural pattern match succeeds.
func WithGuard(g Guard) RouteOption {
	return func(r *Route) { r.Guard = g }
}

// WithPriority sets the route's priority, which must fall in
// [MinPriority, MaxPriority]. Default is 0.
func WithPriority(p int) RouteOption {
	return func(r *Route) { r.Priority = p }
}

// NewRoute compiles pattern and constructs a Route bound to handler. It
// validates the pattern (spec §4.3.1) and the priority range (spec
// §4.3.5) at registration time, returning a routing_error on failure.
func NewRoute(pattern string, handler Handler, opts ...RouteOption) (*Route, error) {
	r := &Route{Pattern: pattern, Handler: handler}
	for _, opt := range opts {
		opt(r)
	}

	compiled, err := compilePattern(pattern)
	if err != nil {
		return nil, err
	}
	r.compiled = compiled

	if r.Priority < MinPriority || r.Priority > MaxPriority {
		return nil, newRoutingErrorf("priority %d out of range [%d, %d]", r.Priority, MinPriority, MaxPriority)
	}

	return r, nil
}
