package wink

import (
	"bytes"
	"encoding/json"
)

// Envelope is the top-level structure of a Wink API response.
type Envelope struct {
	// Data is the payload, nil when absent.
	Data json.RawMessage
	// Errors is the raw errors member, nil when absent.
	Errors json.RawMessage
	// Body is the whole response body.
	Body json.RawMessage
}

// ParseEnvelope splits a JSON body into its data and errors members.
// Bodies that are not JSON objects have neither.
func ParseEnvelope(body []byte) *Envelope {
	env := &Envelope{Body: body}
	var obj RawObject
	if err := json.Unmarshal(body, &obj); err != nil {
		return env
	}
	if raw, ok := obj.Get("data"); ok {
		env.Data = raw
	}
	if raw, ok := obj.Get("errors"); ok {
		env.Errors = raw
	}
	return env
}

// ErrorList returns the errors member when it is a non-empty array.
func (e *Envelope) ErrorList() []json.RawMessage {
	raw := bytes.TrimSpace(e.Errors)
	if len(raw) == 0 || raw[0] != '[' {
		return nil
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil
	}
	return list
}

// OK reports whether the envelope carries a usable payload.
func (e *Envelope) OK() bool {
	return len(e.ErrorList()) == 0 && !isFalsy(e.Data)
}

// Err returns nil for a successful envelope, otherwise an *EnvelopeError of
// the given kind.
func (e *Envelope) Err(kind error) error {
	if e.OK() {
		return nil
	}
	return e.failure(kind)
}

func (e *Envelope) failure(kind error) *EnvelopeError {
	ee := &EnvelopeError{Kind: kind, Body: e.Body}
	if len(e.ErrorList()) > 0 {
		ee.Errors = e.Errors
		ee.Detail = compactJSON(e.Errors)
	} else {
		ee.Detail = compactJSON(e.Body)
	}
	return ee
}
