package signal

import (
	"encoding/json"
	"errors"

	"github.com/tidwall/gjson"
)

// ErrInvalidJSON is returned when raw ingest bytes are not valid JSON.
var ErrInvalidJSON = errors.New("invalid JSON")

// WireInspector examines raw ingest bytes and returns a WireView for cheap
// field queries, without committing to a full decode. An Ingestor uses one
// to let its Decoders pick a wire shape before parsing.
type WireInspector interface {
	Inspect(raw []byte) (WireView, error)
}

// WireView provides format-agnostic field access for ShapeMatcher checks
// over one ingest message.
type WireView interface {
	// HasField returns true if the path exists in the message.
	HasField(path string) bool

	// GetString returns the string value at path, or false if not found
	// or not a string.
	GetString(path string) (string, bool)

	// GetBytes returns the raw bytes at path, or false if not found.
	// For JSON, this returns the raw JSON value (including quotes for strings).
	GetBytes(path string) ([]byte, bool)
}

// JSONWireInspector returns a WireInspector that uses gjson for field
// access. Every built-in Decoder is JSON, so this is the Ingestor's default.
func JSONWireInspector() WireInspector {
	return jsonWireInspector{}
}

type jsonWireInspector struct{}

func (jsonWireInspector) Inspect(raw []byte) (WireView, error) {
	if !gjson.ValidBytes(raw) {
		return nil, ErrInvalidJSON
	}
	return jsonWireView{raw: raw}, nil
}

type jsonWireView struct {
	raw []byte
}

func (v jsonWireView) HasField(path string) bool {
	return gjson.GetBytes(v.raw, path).Exists()
}

func (v jsonWireView) GetString(path string) (string, bool) {
	r := gjson.GetBytes(v.raw, path)
	if !r.Exists() {
		return "", false
	}
	if r.Type != gjson.String {
		return "", false
	}
	return r.String(), true
}

func (v jsonWireView) GetBytes(path string) ([]byte, bool) {
	r := gjson.GetBytes(v.raw, path)
	if !r.Exists() {
		return nil, false
	}
	return []byte(r.Raw), true
}

// ShapeMatcher determines whether a Decoder should attempt to parse a raw
// ingest message, based on cheap field presence/value checks evaluated over
// a WireView. This avoids running every registered Decoder's full parse
// logic against every message.
type ShapeMatcher interface {
	Match(v WireView) bool
}

// HasFields returns a ShapeMatcher that matches when all paths exist.
func HasFields(paths ...string) ShapeMatcher {
	return hasFields{paths: paths}
}

type hasFields struct {
	paths []string
}

func (m hasFields) Match(v WireView) bool {
	for _, p := range m.paths {
		if !v.HasField(p) {
			return false
		}
	}
	return true
}

// FieldEquals returns a ShapeMatcher that matches when the path exists and
// equals the given string value.
func FieldEquals(path, value string) ShapeMatcher {
	return fieldEquals{path: path, value: value}
}

type fieldEquals struct {
	path  string
	value string
}

func (m fieldEquals) Match(v WireView) bool {
	s, ok := v.GetString(m.path)
	return ok && s == m.value
}

// And returns a ShapeMatcher that matches when every matcher matches.
func And(matchers ...ShapeMatcher) ShapeMatcher {
	return and{matchers: matchers}
}

type and struct {
	matchers []ShapeMatcher
}

func (m and) Match(v WireView) bool {
	for _, sub := range m.matchers {
		if !sub.Match(v) {
			return false
		}
	}
	return true
}

// Or returns a ShapeMatcher that matches when any matcher matches.
func Or(matchers ...ShapeMatcher) ShapeMatcher {
	return or{matchers: matchers}
}

type or struct {
	matchers []ShapeMatcher
}

func (m or) Match(v WireView) bool {
	for _, sub := range m.matchers {
		if sub.Match(v) {
			return true
		}
	}
	return false
}

// notField returns a ShapeMatcher matching when path is absent, used to
// keep LegacyFlatDecoder from also claiming native CloudEvents messages
// that happen to carry both a type and (coincidentally) a payload field.
func notField(path string) ShapeMatcher {
	return fieldAbsent{path: path}
}

type fieldAbsent struct {
	path string
}

func (m fieldAbsent) Match(v WireView) bool {
	return !v.HasField(m.path)
}

// Decoder normalizes one upstream wire shape into Fields for Signal
// construction. Decoders are registered on an Ingestor and matched by
// their Shape before Decode is attempted, mirroring the teacher's
// Source/Discriminator/Inspector split, renamed to this package's wire/
// shape vocabulary (doc.go "Shape Matching (Ingest)").
type Decoder interface {
	// Name identifies the decoder for logging/diagnostics.
	Name() string

	// Shape returns the cheap match check run against the Ingestor's
	// WireView before this Decoder's Decode is tried.
	Shape() ShapeMatcher

	// Decode parses raw into a Fields bag suitable for New. It does not
	// need to validate the result; Ingestor.Decode always re-validates
	// through New regardless of which Decoder produced the Fields.
	Decode(raw []byte) (Fields, error)
}

// DecoderFunc builds a Decoder from a name, shape matcher, and decode
// function, for decoders too simple to need their own type.
func DecoderFunc(name string, shape ShapeMatcher, decode func([]byte) (Fields, error)) Decoder {
	return &decoderFunc{name: name, shape: shape, decode: decode}
}

type decoderFunc struct {
	name   string
	shape  ShapeMatcher
	decode func([]byte) (Fields, error)
}

func (d *decoderFunc) Name() string                      { return d.name }
func (d *decoderFunc) Shape() ShapeMatcher                { return d.shape }
func (d *decoderFunc) Decode(raw []byte) (Fields, error)  { return d.decode(raw) }

// Ingestor discriminates among registered wire shapes and normalizes raw
// bytes to a validated Signal (spec §1 "Ingest boundary", §4.7). A zero
// Ingestor (no registered Decoders, default JSONWireInspector) hands every
// well-formed JSON message to DecodeOne.
type Ingestor struct {
	inspector WireInspector
	decoders  []Decoder
	signalOpt []SignalOption
}

// IngestorOption configures an Ingestor at construction.
type IngestorOption func(*Ingestor)

// WithDecoder appends d to the Ingestor's ordered decoder list. Decoders
// are tried in registration order; the first whose Shape matches wins.
func WithDecoder(d Decoder) IngestorOption {
	return func(i *Ingestor) { i.decoders = append(i.decoders, d) }
}

// WithIngestSignalOptions applies opts to every Signal the Ingestor
// constructs, e.g. WithDefaultSource.
func WithIngestSignalOptions(opts ...SignalOption) IngestorOption {
	return func(i *Ingestor) { i.signalOpt = append(i.signalOpt, opts...) }
}

// NewIngestor builds an Ingestor with the CloudEventsDecoder and
// LegacyFlatDecoder registered ahead of any caller-supplied decoders, then
// applies opts. Callers needing only the built-ins can call NewIngestor()
// with no options.
func NewIngestor(opts ...IngestorOption) *Ingestor {
	ing := &Ingestor{
		inspector: JSONWireInspector(),
		decoders:  []Decoder{CloudEventsDecoder(), LegacyFlatDecoder()},
	}
	for _, opt := range opts {
		opt(ing)
	}
	return ing
}

// Decode inspects raw, finds the first registered Decoder whose Shape
// matches, normalizes it to Fields, and constructs a Signal through New —
// so no Decoder can bypass envelope validation (spec §4.7 step 4). If no
// Decoder matches, raw falls back to native CloudEvents JSON via DecodeOne.
func (i *Ingestor) Decode(raw []byte) (*Signal, error) {
	inspector := i.inspector
	if inspector == nil {
		inspector = JSONWireInspector()
	}
	view, err := inspector.Inspect(raw)
	if err != nil {
		return nil, newParseError("", err.Error())
	}

	for _, dec := range i.decoders {
		if !dec.Shape().Match(view) {
			continue
		}
		fields, err := dec.Decode(raw)
		if err != nil {
			return nil, err
		}
		return New(fields, i.signalOpt...)
	}

	return DecodeOne(raw)
}

// CloudEventsDecoder recognizes native CloudEvents JSON — a top-level
// object already carrying specversion, type, and source — and decodes it
// the same way the serializer does.
func CloudEventsDecoder() Decoder {
	return DecoderFunc(
		"cloudevents",
		HasFields("specversion", "type", "source"),
		func(raw []byte) (Fields, error) {
			var w wireSignal
			if err := json.Unmarshal(raw, &w); err != nil {
				return nil, newParseError("", "invalid JSON object")
			}
			return fieldsFromWire(w), nil
		},
	)
}

// LegacyFlatDecoder recognizes a pre-CloudEvents-migration flat envelope
// of the shape `{"type": "...", "payload": {...}}` and maps payload to
// data, grounded in the teacher's own simpleSource/completionSource
// example shapes.
func LegacyFlatDecoder() Decoder {
	return DecoderFunc(
		"legacy-flat",
		And(HasFields("type", "payload"), notField("specversion")),
		func(raw []byte) (Fields, error) {
			var env struct {
				Type    string          `json:"type"`
				Source  string          `json:"source"`
				Payload json.RawMessage `json:"payload"`
			}
			if err := json.Unmarshal(raw, &env); err != nil {
				return nil, newParseError("", "invalid JSON object")
			}
			fields := Fields{"type": env.Type}
			if env.Source != "" {
				fields["source"] = env.Source
			}
			if len(env.Payload) > 0 {
				var data any
				if err := json.Unmarshal(env.Payload, &data); err != nil {
					return nil, newParseError("payload", "payload must be valid JSON")
				}
				fields["data"] = data
			}
			return fields, nil
		},
	)
}
