package subtitle

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// Well-known entry fields. Only index and timestamp are required;
// everything else is convention.
const (
	KeyIndex       = "index"
	KeyTimestamp   = "timestamp"
	KeyEnglishText = "english_text"
	KeyChineseText = "chinese_text"
	KeyHasAnalysis = "has_analysis"
	KeyAnalysis    = "analysis"
)

// Entry is one subtitle record: an ordered set of JSON fields. Values are
// kept as raw JSON so unknown fields and their exact representation survive
// a read-modify-write cycle.
type Entry struct {
	keys   []string
	values map[string]json.RawMessage
}

func NewEntry() *Entry {
	return &Entry{values: make(map[string]json.RawMessage)}
}

func (e *Entry) Len() int {
	return len(e.keys)
}

// Keys returns the field names in their original order.
func (e *Entry) Keys() []string {
	out := make([]string, len(e.keys))
	copy(out, e.keys)
	return out
}

func (e *Entry) Has(key string) bool {
	_, ok := e.values[key]
	return ok
}

func (e *Entry) Get(key string) (json.RawMessage, bool) {
	raw, ok := e.values[key]
	return raw, ok
}

// GetString returns the field as a string. JSON numbers are formatted,
// other value kinds report false.
func (e *Entry) GetString(key string) (string, bool) {
	raw, ok := e.values[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true
	}
	return "", false
}

func (e *Entry) GetBool(key string) (bool, bool) {
	raw, ok := e.values[key]
	if !ok {
		return false, false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false, false
	}
	return b, true
}

// Index returns the entry's index as a string regardless of whether it was
// stored as a number or a string.
func (e *Entry) Index() string {
	s, _ := e.GetString(KeyIndex)
	return s
}

// IndexInt returns the index as an integer when it parses as one.
func (e *Entry) IndexInt() (int, bool) {
	s, ok := e.GetString(KeyIndex)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (e *Entry) Timestamp() string {
	s, _ := e.GetString(KeyTimestamp)
	return s
}

// HasRequiredFields reports whether the entry carries both index and
// timestamp. Entries without them are not valid subtitle records.
func (e *Entry) HasRequiredFields() bool {
	return e.Has(KeyIndex) && e.Has(KeyTimestamp)
}

// Set marshals value and stores it under key. New keys append to the field
// order; existing keys keep their position.
func (e *Entry) Set(key string, value any) error {
	raw, err := marshalValue(value)
	if err != nil {
		return fmt.Errorf("failed to encode field %q: %w", key, err)
	}
	e.SetRaw(key, raw)
	return nil
}

func (e *Entry) SetRaw(key string, raw json.RawMessage) {
	if e.values == nil {
		e.values = make(map[string]json.RawMessage)
	}
	if _, exists := e.values[key]; !exists {
		e.keys = append(e.keys, key)
	}
	e.values[key] = raw
}

// UnmarshalJSON decodes a JSON object while remembering field order.
// Non-object values are rejected.
func (e *Entry) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("entry must be a JSON object, got %s", tokenKind(tok))
	}

	e.keys = nil
	e.values = make(map[string]json.RawMessage)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected key token %v", keyTok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		e.SetRaw(key, raw)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("trailing data after JSON object")
	}
	return nil
}

// MarshalJSON emits the fields in their original order with compact
// separators. Non-ASCII text stays literal.
func (e *Entry) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range e.keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		keyJSON, err := marshalValue(key)
		if err != nil {
			return nil, fmt.Errorf("failed to encode key %q: %w", key, err)
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')

		var compacted bytes.Buffer
		if err := json.Compact(&compacted, e.values[key]); err != nil {
			return nil, fmt.Errorf("invalid value for field %q: %w", key, err)
		}
		buf.Write(compacted.Bytes())
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalValue encodes without HTML escaping so CJK and other non-ASCII
// text round-trips byte for byte.
func marshalValue(value any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return nil, err
	}
	return json.RawMessage(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

func tokenKind(tok json.Token) string {
	switch tok.(type) {
	case json.Delim:
		return "array"
	case string:
		return "string"
	case float64, json.Number:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	default:
		return "unknown"
	}
}
