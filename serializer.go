package signal

import (
	"encoding/json"
	"fmt"
)

// wireSignal is the JSON shape of a Signal on the wire (spec §6): the
// CloudEvents-standard fields plus data. dispatch is transport-side routing
// metadata, not part of the event payload contract, and is never emitted.
type wireSignal struct {
	SpecVersion     string `json:"specversion"`
	ID              string `json:"id"`
	Source          string `json:"source"`
	Type            string `json:"type"`
	Subject         string `json:"subject,omitempty"`
	Time            string `json:"time,omitempty"`
	DataContentType string `json:"datacontenttype,omitempty"`
	DataSchema      string `json:"dataschema,omitempty"`
	Data            any    `json:"data,omitempty"`
}

func toWire(s *Signal) wireSignal {
	return wireSignal{
		SpecVersion:     s.SpecVersion,
		ID:              s.ID,
		Source:          s.Source,
		Type:            s.Type,
		Subject:         s.Subject,
		Time:            s.Time,
		DataContentType: s.DataContentType,
		DataSchema:      s.DataSchema,
		Data:            s.Data,
	}
}

// Encode serializes a single Signal to its CloudEvents JSON form.
func Encode(s *Signal) ([]byte, error) {
	return json.Marshal(toWire(s))
}

// EncodeAll serializes a sequence of Signals as a JSON array.
func EncodeAll(signals []*Signal) ([]byte, error) {
	wire := make([]wireSignal, len(signals))
	for i, s := range signals {
		wire[i] = toWire(s)
	}
	return json.Marshal(wire)
}

// fieldsFromWire turns a decoded wireSignal back into a Fields bag so it
// can be re-validated through the same rules New applies to any other
// construction path.
func fieldsFromWire(w wireSignal) Fields {
	f := Fields{
		"specversion": w.SpecVersion,
		"source":      w.Source,
		"type":        w.Type,
	}
	if w.ID != "" {
		f["id"] = w.ID
	}
	if w.Subject != "" {
		f["subject"] = w.Subject
	}
	if w.Time != "" {
		f["time"] = w.Time
	}
	if w.DataContentType != "" {
		f["datacontenttype"] = w.DataContentType
	}
	if w.DataSchema != "" {
		f["dataschema"] = w.DataSchema
	}
	if w.Data != nil {
		f["data"] = w.Data
	}
	return f
}

// Decode parses a JSON string containing either a single Signal object or
// an array of Signals, dispatching on the top-level JSON kind. Every
// element passes through the same validation as New; any element's failure
// aborts the entire decode.
func Decode(raw []byte) ([]*Signal, error) {
	trimmed := skipSpace(raw)
	if len(trimmed) == 0 {
		return nil, newParseError("", "empty input")
	}

	switch trimmed[0] {
	case '[':
		var wire []wireSignal
		if err := json.Unmarshal(raw, &wire); err != nil {
			return nil, newParseError("", fmt.Sprintf("invalid JSON array: %v", err))
		}
		out := make([]*Signal, 0, len(wire))
		for i, w := range wire {
			s, err := New(fieldsFromWire(w))
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out = append(out, s)
		}
		return out, nil
	case '{':
		var w wireSignal
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, newParseError("", fmt.Sprintf("invalid JSON object: %v", err))
		}
		s, err := New(fieldsFromWire(w))
		if err != nil {
			return nil, err
		}
		return []*Signal{s}, nil
	default:
		return nil, newParseError("", "top-level JSON value must be an object or array")
	}
}

// DecodeOne decodes a JSON string expected to contain exactly one Signal
// object (not an array), returning a parse error if it contains an array.
func DecodeOne(raw []byte) (*Signal, error) {
	trimmed := skipSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return nil, newParseError("", "expected a single signal, got an array")
	}
	signals, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	return signals[0], nil
}

func skipSpace(raw []byte) []byte {
	i := 0
	for i < len(raw) {
		switch raw[i] {
		case ' ', '\t', '\n', '\r':
			i++
			continue
		}
		break
	}
	return raw[i:]
}
