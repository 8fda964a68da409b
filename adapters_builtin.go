package signal

import (
	"context"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/rs/zerolog"
)

// Collaborators groups the external collaborators the built-in adapters
// resolve dispatch targets against (spec §1 "Out of scope: external
// collaborators", spec §4.4). A nil Processes or Buses makes pid/named or
// bus Deliver return *ProcessNotFoundError or *BusNotFoundError; a nil
// PubSub makes pubsub Deliver return a *DispatchError; a nil Logs makes the
// logger adapter use the built-in zerolog sink.
type Collaborators struct {
	Processes ProcessRegistry
	Buses     BusRegistry
	PubSub    PubSubRegistry
	Logs      LogSink
}

var optionValidator = validator.New()

// decodeOptions decodes a loosely-typed options map into dst (a pointer to
// a struct with `mapstructure`/`validate` tags) via mapstructure, rejecting
// any key dst's tags don't recognize, then runs struct-tag validation.
// This keeps each built-in adapter's Validate to one call instead of
// hand-rolled type assertions per option (spec §4.4 "per-adapter option
// validation").
func decodeOptions(options map[string]any, dst any, known map[string]bool) (map[string]any, error) {
	for k := range options {
		if !known[k] {
			return nil, newRoutingErrorf("unrecognized option %q", k)
		}
	}

	if err := mapstructure.Decode(options, dst); err != nil {
		return nil, newRoutingErrorf("invalid options: %v", err)
	}
	if err := optionValidator.Struct(dst); err != nil {
		return nil, newRoutingErrorf("invalid options: %v", err)
	}

	var out map[string]any
	if err := mapstructure.Decode(dst, &out); err != nil {
		return nil, newRoutingErrorf("invalid options: %v", err)
	}
	return out, nil
}

func registerBuiltins(r *Registry, c Collaborators) {
	r.Register("pid", &pidAdapter{processes: c.Processes})
	r.Register("direct", &pidAdapter{processes: c.Processes})
	r.Register("named", &namedAdapter{processes: c.Processes})
	r.Register("bus", &busAdapter{buses: c.Buses})
	r.Register("pubsub", &pubsubAdapter{brokers: c.PubSub})
	r.Register("logger", &loggerAdapter{sink: c.Logs})
	r.Register("console", consoleAdapter{})
	r.Register("noop", noopAdapter{})
}

// --- pid / direct ---------------------------------------------------------

// PidOptions are the recognized options for the "pid"/"direct" adapter.
type PidOptions struct {
	Target       string `mapstructure:"target" validate:"required"`
	DeliveryMode string `mapstructure:"delivery_mode,omitempty" validate:"omitempty,oneof=sync async"`
}

var pidKnownKeys = map[string]bool{"target": true, "delivery_mode": true}

type pidAdapter struct {
	processes ProcessRegistry
}

func (a *pidAdapter) Validate(options map[string]any) (map[string]any, error) {
	var o PidOptions
	out, err := decodeOptions(options, &o, pidKnownKeys)
	if err != nil {
		return nil, err
	}
	if o.DeliveryMode == "" {
		out["delivery_mode"] = "sync"
	}
	return out, nil
}

func (a *pidAdapter) Deliver(ctx context.Context, s *Signal, options map[string]any) error {
	target, _ := options["target"].(string)
	if a.processes == nil {
		return &ProcessNotFoundError{Target: target}
	}
	endpoint, ok := a.processes.Lookup(target)
	if !ok {
		return &ProcessNotFoundError{Target: target}
	}

	async := options["delivery_mode"] == "async"
	if async {
		go func() { _ = endpoint.Send(context.WithoutCancel(ctx), s) }()
		return nil
	}
	return endpoint.Send(ctx, s)
}

// --- named -----------------------------------------------------------------

// NamedOptions are the recognized options for the "named" adapter.
type NamedOptions struct {
	Target string `mapstructure:"target" validate:"required"`
}

var namedKnownKeys = map[string]bool{"target": true}

type namedAdapter struct {
	processes ProcessRegistry
}

func (a *namedAdapter) Validate(options map[string]any) (map[string]any, error) {
	var o NamedOptions
	return decodeOptions(options, &o, namedKnownKeys)
}

func (a *namedAdapter) Deliver(ctx context.Context, s *Signal, options map[string]any) error {
	target, _ := options["target"].(string)
	if a.processes == nil {
		return &ProcessNotFoundError{Target: target}
	}
	endpoint, ok := a.processes.Lookup(target)
	if !ok {
		return &ProcessNotFoundError{Target: target}
	}
	return endpoint.Send(ctx, s)
}

// --- bus ---------------------------------------------------------------

// BusOptions are the recognized options for the "bus" adapter.
type BusOptions struct {
	Target string `mapstructure:"target" validate:"required"`
	Stream string `mapstructure:"stream,omitempty"`
}

var busKnownKeys = map[string]bool{"target": true, "stream": true}

const defaultStream = "default"

type busAdapter struct {
	buses BusRegistry
}

func (a *busAdapter) Validate(options map[string]any) (map[string]any, error) {
	var o BusOptions
	out, err := decodeOptions(options, &o, busKnownKeys)
	if err != nil {
		return nil, err
	}
	if o.Stream == "" {
		out["stream"] = defaultStream
	}
	return out, nil
}

func (a *busAdapter) Deliver(ctx context.Context, s *Signal, options map[string]any) error {
	target, _ := options["target"].(string)
	stream, _ := options["stream"].(string)
	if stream == "" {
		stream = defaultStream
	}
	if a.buses == nil {
		return &BusNotFoundError{Target: target}
	}
	bus, ok := a.buses.Lookup(target)
	if !ok {
		return &BusNotFoundError{Target: target}
	}
	return bus.Enqueue(ctx, stream, s)
}

// --- pubsub ------------------------------------------------------------

// PubSubOptions are the recognized options for the "pubsub" adapter.
type PubSubOptions struct {
	Target string `mapstructure:"target" validate:"required"`
	Topic  string `mapstructure:"topic" validate:"required"`
}

var pubsubKnownKeys = map[string]bool{"target": true, "topic": true}

type pubsubAdapter struct {
	brokers PubSubRegistry
}

func (a *pubsubAdapter) Validate(options map[string]any) (map[string]any, error) {
	var o PubSubOptions
	return decodeOptions(options, &o, pubsubKnownKeys)
}

func (a *pubsubAdapter) Deliver(ctx context.Context, s *Signal, options map[string]any) error {
	target, _ := options["target"].(string)
	topic, _ := options["topic"].(string)
	if a.brokers == nil {
		return &DispatchError{Tag: "pubsub", Reason: fmt.Errorf("no broker registry configured")}
	}
	broker, ok := a.brokers.Lookup(target)
	if !ok {
		return &DispatchError{Tag: "pubsub", Reason: fmt.Errorf("broker %q not found", target)}
	}
	return broker.Publish(ctx, topic, s)
}

// --- logger ------------------------------------------------------------

// LoggerOptions are the recognized options for the "logger" adapter.
type LoggerOptions struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

var loggerKnownKeys = map[string]bool{"level": true}

type loggerAdapter struct {
	sink LogSink
}

func (a *loggerAdapter) Validate(options map[string]any) (map[string]any, error) {
	var o LoggerOptions
	return decodeOptions(options, &o, loggerKnownKeys)
}

func (a *loggerAdapter) Deliver(ctx context.Context, s *Signal, options map[string]any) error {
	level, _ := options["level"].(string)
	sink := a.sink
	if sink == nil {
		sink = defaultZerologSink
	}
	sink.Log(ctx, level, fmt.Sprintf("signal %s (%s)", s.ID, s.Type), s)
	return nil
}

// zerologSink is the built-in LogSink, backing the "logger" adapter's
// default behavior with a structured zerolog.Logger.
type zerologSink struct {
	log zerolog.Logger
}

// NewZerologSink wraps an existing zerolog.Logger as a LogSink.
func NewZerologSink(log zerolog.Logger) LogSink {
	return zerologSink{log: log}
}

func (s zerologSink) Log(_ context.Context, level, msg string, sig *Signal) {
	var event *zerolog.Event
	switch level {
	case "debug":
		event = s.log.Debug()
	case "warn":
		event = s.log.Warn()
	case "error":
		event = s.log.Error()
	default:
		event = s.log.Info()
	}
	event.Str("signal_id", sig.ID).Str("signal_type", sig.Type).Msg(msg)
}

var defaultZerologSink = NewZerologSink(zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger())

// --- console -------------------------------------------------------------

// consoleAdapter accepts no options (spec §4.4 "console: none") and prints
// a human-readable line per signal.
type consoleAdapter struct{}

func (consoleAdapter) Validate(options map[string]any) (map[string]any, error) {
	if len(options) > 0 {
		return nil, newRoutingError("console adapter accepts no options")
	}
	return options, nil
}

func (consoleAdapter) Deliver(_ context.Context, s *Signal, _ map[string]any) error {
	fmt.Printf("[%s] %s %s\n", s.Time, s.Type, s.ID)
	return nil
}

// --- noop ----------------------------------------------------------------

// noopAdapter accepts arbitrary options and discards every signal; used in
// testing (spec §4.4).
type noopAdapter struct{}

func (noopAdapter) Validate(options map[string]any) (map[string]any, error) {
	return options, nil
}

func (noopAdapter) Deliver(context.Context, *Signal, map[string]any) error {
	return nil
}
