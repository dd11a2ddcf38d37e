package tika

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
)

// MetadataValue is either a single string or an ordered sequence of strings.
// A key seen once in a recursive response is a scalar; a key seen again is
// promoted to a sequence holding every occurrence in part order.
type MetadataValue struct {
	values []string
	seq    bool
}

// Scalar builds a single-valued entry.
func Scalar(s string) MetadataValue {
	return MetadataValue{values: []string{s}}
}

// Sequence builds a multi-valued entry.
func Sequence(values ...string) MetadataValue {
	out := make([]string, len(values))
	copy(out, values)
	return MetadataValue{values: out, seq: true}
}

// IsSequence reports whether the value holds a sequence.
func (v MetadataValue) IsSequence() bool {
	return v.seq
}

// String returns the scalar value, or the sequence joined with ", ".
func (v MetadataValue) String() string {
	if !v.seq {
		if len(v.values) == 0 {
			return ""
		}
		return v.values[0]
	}
	return strings.Join(v.values, ", ")
}

// Values returns a copy of the held strings. A scalar yields one element.
func (v MetadataValue) Values() []string {
	out := make([]string, len(v.values))
	copy(out, v.values)
	return out
}

// promote appends next to v, turning a scalar into a sequence.
func (v MetadataValue) promote(next MetadataValue) MetadataValue {
	merged := make([]string, 0, len(v.values)+len(next.values))
	merged = append(merged, v.values...)
	merged = append(merged, next.values...)
	return MetadataValue{values: merged, seq: true}
}

func (v MetadataValue) MarshalJSON() ([]byte, error) {
	if v.seq {
		if v.values == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.values)
	}
	return json.Marshal(v.String())
}

func (v *MetadataValue) UnmarshalJSON(data []byte) error {
	parsed, err := decodeValue(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Metadata maps metadata keys to their values.
type Metadata map[string]MetadataValue

// Keys returns the metadata keys in sorted order.
func (m Metadata) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// set stores v under key, replacing any previous value.
func (m Metadata) set(key string, v MetadataValue) {
	m[key] = v
}

// merge stores v under key, promoting an existing value to a sequence.
func (m Metadata) merge(key string, v MetadataValue) {
	if prev, ok := m[key]; ok {
		m[key] = prev.promote(v)
		return
	}
	m[key] = v
}

// decodeValue turns one JSON part value into a MetadataValue. Strings become
// scalars and arrays become sequences; anything else keeps its JSON text.
func decodeValue(raw json.RawMessage) (MetadataValue, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Scalar(""), nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return MetadataValue{}, err
		}
		return Scalar(s), nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return MetadataValue{}, err
		}
		values := make([]string, 0, len(items))
		for _, item := range items {
			elem, err := decodeValue(item)
			if err != nil {
				return MetadataValue{}, err
			}
			values = append(values, elem.values...)
		}
		return MetadataValue{values: values, seq: true}, nil
	default:
		return Scalar(string(trimmed)), nil
	}
}
