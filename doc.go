// Package signal implements a CloudEvents-shaped signal envelope, a
// trie-based router, and a pluggable dispatch adapter registry for agent
// systems.
//
// A Signal is a CloudEvents v1.0.2-style event: specversion, id, source,
// type, optional subject/time/datacontenttype/dataschema, an opaque data
// payload, and an optional dispatch extension field describing where the
// signal should be delivered once routed. The package validates, routes,
// and dispatches signals; it does not define what a handler does with one.
//
// # Quick Start
//
// Build a Signal and a Router, then route it:
//
//	sig, err := signal.New(signal.Fields{
//	    "type":   "user.created",
//	    "source": "accounts-service",
//	    "data":   map[string]any{"user_id": "u_123"},
//	})
//
//	route, err := signal.NewRoute("user.*", signal.Dispatch{
//	    Target: signal.Target{Tag: "bus", Options: map[string]any{"target": "events"}},
//	})
//
//	router, err := signal.New([]*signal.Route{route})
//	handlers, err := router.Route(ctx, sig)
//
// Wire a Router to a Dispatcher through a Pipeline to go straight from
// Signal to delivered result:
//
//	registry := signal.NewRegistry(signal.Collaborators{Buses: busRegistry})
//	dispatcher := signal.NewDispatcher(registry)
//	pipeline := signal.NewPipeline(router, dispatcher, nil)
//	result, err := pipeline.Handle(ctx, sig)
//
// # Design Philosophy
//
// The package separates concerns into four layers:
//
//   - Signal: the validated, immutable envelope
//   - Router: matches a signal's dotted type to an ordered handler list
//   - Adapters: deliver a signal to one mechanism (process, bus, pub/sub,
//     logger, ...) behind a uniform Validate/Deliver interface
//   - Dispatcher/Pipeline: binds routing output to adapter delivery with
//     best-effort fan-out
//
// This separation keeps routing policy (what matches what, in what order)
// independent of delivery mechanism (how a match actually reaches its
// destination), and keeps both independent of wire format (how bytes
// became a Signal in the first place).
//
// # Routing Patterns
//
// Routes match against a signal's dotted Type using three segment kinds:
//
//   - A literal segment matches exactly: "user" matches "user" only.
//   - "*" matches exactly one segment.
//   - "**" matches zero or more segments, and may appear at most once per
//     pattern.
//
// Multiple routes can match the same signal; the ordered handler list is
// produced by priority (descending), then pattern specificity (descending:
// compared segment by segment from the left, literal beats "*" beats "**",
// and the first differing segment decides), then insertion order
// (ascending) as the final stable tie-break.
//
//	signal.NewRoute("user.created", h1, signal.WithPriority(10))
//	signal.NewRoute("user.*", h2)
//	signal.NewRoute("**", h3, signal.WithGuard(func(s *signal.Signal) bool {
//	    return s.Subject != ""
//	}))
//
// A Router is a persistent value: New, Add, and Remove never mutate the
// Router they are given — they return a new Router sharing untouched trie
// structure with the old one, so a Route call against a prior handle never
// observes a partial update.
//
// # Shape Matching (Ingest)
//
// Producers that hand the module raw bytes in more than one wire shape use
// an Ingestor, which picks among registered Decoders before committing to
// a parse, the same two-phase strategy the Router's ancestor used for its
// sources:
//
//  1. Shape: cheap field presence/value checks over a WireView
//  2. Decode: full parse into Fields, only after the shape matches
//
//	ingestor := signal.NewIngestor(signal.WithDecoder(myLegacyDecoder))
//	sig, err := ingestor.Decode(rawBytes)
//
// Composable shape matchers are provided: HasFields, FieldEquals, And, Or.
// The built-in CloudEventsDecoder and LegacyFlatDecoder cover native
// CloudEvents JSON and a flat {"type", "payload"} shape respectively; any
// Decoder's output still passes through full Signal validation, so a
// Decoder can never bypass the envelope invariants.
//
// # WireInspector and WireView
//
// The WireInspector/WireView abstraction gives ShapeMatchers format-agnostic
// field access without committing to a full decode:
//
//	type WireInspector interface {
//	    Inspect(raw []byte) (WireView, error)
//	}
//
//	type WireView interface {
//	    HasField(path string) bool
//	    GetString(path string) (string, bool)
//	    GetBytes(path string) ([]byte, bool)
//	}
//
// JSONWireInspector, backed by gjson, is the Ingestor's default and the
// only WireInspector the package ships.
//
// # Adapters
//
// An Adapter delivers a Signal to one mechanism. The package registers
// seven built-in adapters against a Registry: pid/direct, named, bus,
// pubsub, logger, console, noop. Each validates its own options bag before
// any signal reaches Deliver:
//
//	type Adapter interface {
//	    Validate(options map[string]any) (map[string]any, error)
//	    Deliver(ctx context.Context, s *Signal, options map[string]any) error
//	}
//
// Register a custom adapter the same way:
//
//	registry.Register("webhook", myWebhookAdapter)
//
// # Hooks
//
// Router and Dispatcher each expose functional-option hooks for
// observability, without coupling the package to a specific logging or
// metrics stack:
//
//	router, err := signal.New(routes,
//	    signal.WithOnNoMatch(func(ctx context.Context, s *signal.Signal) {
//	        logger.Warn("no route matched", "type", s.Type)
//	    }),
//	)
//
//	dispatcher := signal.NewDispatcher(registry,
//	    signal.WithOnDeliverFailure(func(ctx context.Context, s *signal.Signal, t signal.Target, err error) {
//	        metrics.Incr("dispatch.failure", "tag:"+t.Tag)
//	    }),
//	)
//
// Available Router hooks: WithOnMatch, WithOnRoute, WithOnNoMatch.
// Available Dispatcher hooks: WithOnDeliver, WithOnDeliverSuccess,
// WithOnDeliverFailure. Multiple hooks of the same kind run in
// registration order.
//
// # Error Handling
//
// Every error this package produces is, or wraps, one of the concrete types
// *ParseError, *RoutingError, *ProcessNotFoundError, *BusNotFoundError or
// *DispatchError, each implementing Kind() Kind. Recover it via errors.As
// or via the package-level ErrorKind helper for logging, which also looks
// through wrapping (Decode, for example, wraps a failing array element's
// error with its index):
//
//	if signal.ErrorKind(err) == signal.KindProcessNotFound {
//	    // handle missing target
//	}
//
// # Thread Safety
//
// Signal values are immutable after construction. Router.Route is
// referentially transparent and safe for concurrent use against a single
// Router value with no synchronization; Add and Remove return a new Router
// rather than mutating the one they're called on. Registry is safe for
// concurrent Lookup once registration is complete. Dispatcher holds no
// per-call state and is safe for concurrent Dispatch calls.
package signal
