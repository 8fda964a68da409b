package signal

// Target is a single (adapter tag, options) dispatch pair: a reference to a
// built-in or user-registered Adapter plus the options bag it should
// deliver with.
type Target struct {
	Tag     string
	Options map[string]any
}

// DispatchSpec is the dispatch extension field of a Signal: one or more
// ordered Targets. A single Target and a one-element DispatchSpec are
// equivalent; DispatchSpec always stores its Targets in declared order.
type DispatchSpec struct {
	Targets []Target
}

// NewTarget constructs a single-pair DispatchSpec.
func NewTarget(tag string, options map[string]any) *DispatchSpec {
	return &DispatchSpec{Targets: []Target{{Tag: tag, Options: options}}}
}

// NewDispatchSpec constructs an ordered multi-target DispatchSpec.
func NewDispatchSpec(targets ...Target) *DispatchSpec {
	return &DispatchSpec{Targets: targets}
}

// coerceDispatchSpec implements validation rule 7 of spec §4.1: dispatch
// must be nil, a single (tag, options) pair, or an ordered sequence of such
// pairs. Anything else fails with "invalid dispatch config". In addition to
// the package's own typed values, a dynamically built map/slice shape
// (e.g. assembled from decoded JSON before being handed to New) is also
// accepted, since Fields is meant to be usable straight from loosely-typed
// callers, not only from Go literals.
func coerceDispatchSpec(v any) (*DispatchSpec, error) {
	switch val := v.(type) {
	case *DispatchSpec:
		return validateDispatchSpec(val)
	case DispatchSpec:
		return validateDispatchSpec(&val)
	case Target:
		return validateDispatchSpec(&DispatchSpec{Targets: []Target{val}})
	case []Target:
		return validateDispatchSpec(&DispatchSpec{Targets: val})
	case map[string]any:
		t, err := coerceTarget(val)
		if err != nil {
			return nil, err
		}
		return validateDispatchSpec(&DispatchSpec{Targets: []Target{t}})
	case []any:
		targets := make([]Target, 0, len(val))
		for _, item := range val {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, newParseError("dispatch", "invalid dispatch config")
			}
			t, err := coerceTarget(m)
			if err != nil {
				return nil, err
			}
			targets = append(targets, t)
		}
		return validateDispatchSpec(&DispatchSpec{Targets: targets})
	default:
		return nil, newParseError("dispatch", "invalid dispatch config")
	}
}

func coerceTarget(m map[string]any) (Target, error) {
	tagVal, ok := m["tag"]
	if !ok {
		tagVal, ok = m["adapter"]
	}
	tag, isStr := tagVal.(string)
	if !ok || !isStr || tag == "" {
		return Target{}, newParseError("dispatch", "invalid dispatch config")
	}

	options := map[string]any{}
	if raw, ok := m["options"]; ok {
		opts, isMap := raw.(map[string]any)
		if !isMap {
			return Target{}, newParseError("dispatch", "invalid dispatch config")
		}
		options = opts
	}

	return Target{Tag: tag, Options: options}, nil
}

func validateDispatchSpec(spec *DispatchSpec) (*DispatchSpec, error) {
	if len(spec.Targets) == 0 {
		return nil, newParseError("dispatch", "invalid dispatch config")
	}
	for _, t := range spec.Targets {
		if t.Tag == "" {
			return nil, newParseError("dispatch", "invalid dispatch config")
		}
	}
	return spec, nil
}

// Handler is the tagged union a Route's handler variants implement (spec
// §9 "Handler polymorphism"): Instruction, a single Dispatch target, or a
// DispatchGroup of targets flattened in declared order during routing.
type Handler interface {
	isHandler()
}

// Instruction is an opaque handler payload naming an action and its
// arguments, executed by an external collaborator outside this package.
type Instruction struct {
	Action string
	Args   map[string]any
}

func (Instruction) isHandler() {}

// Dispatch is a Handler variant wrapping a single dispatch Target.
type Dispatch struct {
	Target Target
}

func (Dispatch) isHandler() {}

// DispatchGroup is a Handler variant wrapping an ordered sequence of
// dispatch Targets, all contributed at the owning Route's position in the
// routing result.
type DispatchGroup struct {
	Targets []Target
}

func (DispatchGroup) isHandler() {}

// flattenHandler expands a Handler into zero or more leaf handlers in
// declared order: Instruction and Dispatch each yield themselves,
// DispatchGroup yields one Dispatch per Target.
func flattenHandler(h Handler) []Handler {
	switch v := h.(type) {
	case DispatchGroup:
		out := make([]Handler, 0, len(v.Targets))
		for _, t := range v.Targets {
			out = append(out, Dispatch{Target: t})
		}
		return out
	default:
		return []Handler{h}
	}
}

