package wink

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Property is a single member of a JSON object.
type Property struct {
	Key   string
	Value json.RawMessage
}

// RawObject is a JSON object that keeps its members in wire order.
//
// Order matters for device classification, which picks the first member
// whose name ends in "_id". A Go map would randomize that choice.
type RawObject []Property

var errNotObject = errors.New("not a JSON object")

// UnmarshalJSON decodes a JSON object, preserving member order.
// Duplicate keys are kept; Get returns the last occurrence.
func (o *RawObject) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errNotObject
	}

	props := RawObject{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected object key %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return err
		}
		props = append(props, Property{Key: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*o = props
	return nil
}

// MarshalJSON encodes the object with members in their stored order.
func (o RawObject) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(p.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if len(p.Value) == 0 {
			buf.WriteString("null")
			continue
		}
		if err := json.Compact(&buf, p.Value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Keys returns the member names in wire order.
func (o RawObject) Keys() []string {
	keys := make([]string, len(o))
	for i, p := range o {
		keys[i] = p.Key
	}
	return keys
}

// Get returns the raw value for key.
func (o RawObject) Get(key string) (json.RawMessage, bool) {
	for i := len(o) - 1; i >= 0; i-- {
		if o[i].Key == key {
			return o[i].Value, true
		}
	}
	return nil, false
}

// Has reports whether key is present.
func (o RawObject) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// String returns the value for key if it is a JSON string.
func (o RawObject) String(key string) (string, bool) {
	raw, ok := o.Get(key)
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// Float returns the value for key if it is a JSON number.
func (o RawObject) Float(key string) (float64, bool) {
	raw, ok := o.Get(key)
	if !ok {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	return f, true
}

// Bool returns the value for key if it is a JSON boolean.
func (o RawObject) Bool(key string) (bool, bool) {
	raw, ok := o.Get(key)
	if !ok {
		return false, false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false, false
	}
	return b, true
}

// Object returns the value for key if it is a JSON object.
func (o RawObject) Object(key string) (RawObject, bool) {
	raw, ok := o.Get(key)
	if !ok {
		return nil, false
	}
	var obj RawObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// Text renders a scalar value the way it would appear when concatenated into
// a string: strings unquoted, numbers and booleans verbatim.
func (o RawObject) Text(key string) string {
	raw, ok := o.Get(key)
	if !ok {
		return ""
	}
	return scalarText(raw)
}

func scalarText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	if bytes.Equal(raw, []byte("null")) {
		return ""
	}
	return string(raw)
}

// isFalsy reports whether a JSON value is absent, null, false, zero or the
// empty string. Empty arrays and objects are truthy.
func isFalsy(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return true
	}
	switch raw[0] {
	case 'n', 'f':
		return true
	case '"':
		return len(raw) == 2
	case '{', '[', 't':
		return false
	}
	f, err := strconv.ParseFloat(string(raw), 64)
	return err == nil && f == 0
}

// compactJSON renders raw JSON on a single line for error messages.
func compactJSON(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// truncatePreview returns a truncated string for error messages.
func truncatePreview(data []byte) string {
	s := string(data)
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
