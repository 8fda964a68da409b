package signal

import "fmt"

// SpecVersion is the only CloudEvents spec version this package accepts.
const SpecVersion = "1.0.2"

// DefaultDataContentType is filled in when data is present but
// datacontenttype is absent.
const DefaultDataContentType = "application/json"

// Signal is an immutable CloudEvents v1.0.2-shaped event envelope, carrying
// an opaque payload and an optional dispatch extension. Construct one with
// New or Must; do not build the struct literal directly, since that skips
// validation and default population.
type Signal struct {
	SpecVersion     string        `json:"specversion"`
	ID              string        `json:"id"`
	Source          string        `json:"source"`
	Type            string        `json:"type"`
	Subject         string        `json:"subject,omitempty"`
	Time            string        `json:"time,omitempty"`
	DataContentType string        `json:"datacontenttype,omitempty"`
	DataSchema      string        `json:"dataschema,omitempty"`
	Data            any           `json:"data,omitempty"`
	Dispatch        *DispatchSpec `json:"-"`
}

// Fields is the attribute bag a Signal is built from. Keys are the
// CloudEvents field names (specversion, id, source, type, subject, time,
// datacontenttype, dataschema, data, dispatch); any other key is ignored.
// A Go map has no symbol/string key duality, so unlike the reference
// implementation no key-normalization pass is needed here — callers pass
// plain strings directly.
type Fields map[string]any

// SignalOption configures how New fills defaults during construction (for
// example the default source). Options are applied before any field is
// read.
type SignalOption func(*signalOpts)

type signalOpts struct {
	defaultSource string
}

// WithDefaultSource supplies the source value used when Fields omits
// "source". Per spec design notes, a language-neutral implementation must
// not rely on call-stack introspection to invent one; the caller configures
// it explicitly (e.g. its own service/component name).
func WithDefaultSource(source string) SignalOption {
	return func(o *signalOpts) { o.defaultSource = source }
}

// stringField reads an optional string-typed key from Fields. present
// reports whether the key was present at all (regardless of value), so
// callers can tell a present empty string, which rule 5 of §4.1 treats as
// a distinct failure, from absence. A non-string value is a parse error.
func stringField(fields Fields, key string) (value string, present bool, err error) {
	v, ok := fields[key]
	if !ok {
		return "", false, nil
	}
	str, isStr := v.(string)
	if !isStr {
		return "", true, newParseError(key, fmt.Sprintf("%s must be a string", key))
	}
	return str, true, nil
}

// New constructs a Signal from fields, injecting defaults for any absent
// optional field and failing on the first validation error, in the order
// spec §4.1 specifies. This is the safe constructor: errors are returned,
// never panicked.
func New(fields Fields, opts ...SignalOption) (*Signal, error) {
	var o signalOpts
	for _, opt := range opts {
		opt(&o)
	}

	specVersion, specPresent, err := stringField(fields, "specversion")
	if err != nil {
		return nil, err
	}
	if !specPresent {
		specVersion = SpecVersion
	}
	if specVersion != SpecVersion {
		return nil, newParseError("specversion", fmt.Sprintf("specversion must be %q, got %q", SpecVersion, specVersion))
	}

	typ, _, err := stringField(fields, "type")
	if err != nil {
		return nil, err
	}
	if typ == "" {
		return nil, newParseError("type", "type is required")
	}

	source, sourcePresent, err := stringField(fields, "source")
	if err != nil {
		return nil, err
	}
	if !sourcePresent || source == "" {
		if o.defaultSource == "" {
			return nil, newParseError("source", "source is required")
		}
		source = o.defaultSource
	}

	id, idPresent, err := stringField(fields, "id")
	if err != nil {
		return nil, err
	}
	if idPresent && id == "" {
		return nil, newParseError("id", "id must not be empty")
	}
	if !idPresent {
		id = NewID()
	}

	subject, subjectPresent, err := stringField(fields, "subject")
	if err != nil {
		return nil, err
	}
	if subjectPresent && subject == "" {
		return nil, newParseError("subject", "subject must not be empty when present")
	}

	ts, tsPresent, err := stringField(fields, "time")
	if err != nil {
		return nil, err
	}
	if tsPresent && ts == "" {
		return nil, newParseError("time", "time must not be empty when present")
	}
	if !tsPresent {
		ts = Now()
	}

	dct, dctPresent, err := stringField(fields, "datacontenttype")
	if err != nil {
		return nil, err
	}
	if dctPresent && dct == "" {
		return nil, newParseError("datacontenttype", "datacontenttype must not be empty when present")
	}

	schema, schemaPresent, err := stringField(fields, "dataschema")
	if err != nil {
		return nil, err
	}
	if schemaPresent && schema == "" {
		return nil, newParseError("dataschema", "dataschema must not be empty when present")
	}

	data, dataPresent := fields["data"]
	if dataPresent {
		if str, isStr := data.(string); isStr && str == "" {
			return nil, newParseError("data", "data must not be an empty string")
		}
	}
	if dataPresent && !dctPresent && data != nil {
		dct = DefaultDataContentType
	}

	var spec *DispatchSpec
	if v, ok := fields["dispatch"]; ok && v != nil {
		spec, err = coerceDispatchSpec(v)
		if err != nil {
			return nil, err
		}
	}

	s := &Signal{
		SpecVersion:     specVersion,
		ID:              id,
		Source:          source,
		Type:            typ,
		Subject:         subject,
		Time:            ts,
		DataContentType: dct,
		DataSchema:      schema,
		Dispatch:        spec,
	}
	if dataPresent {
		s.Data = data
	}
	return s, nil
}

// Must is the strict constructor: it calls New and panics on error. Use
// only where a construction failure represents a programmer error (e.g.
// building constant test fixtures), never on a path fed by external input.
func Must(fields Fields, opts ...SignalOption) *Signal {
	s, err := New(fields, opts...)
	if err != nil {
		panic(err)
	}
	return s
}
