package wink

import (
	"encoding/json"
	"testing"
)

// FuzzRawObjectUnmarshal fuzzes ordered object decoding.
// Run with: go test -fuzz=FuzzRawObjectUnmarshal
func FuzzRawObjectUnmarshal(f *testing.F) {
	f.Add([]byte(`{"a":1,"b":"x"}`))
	f.Add([]byte(`{}`))
	f.Add([]byte(`null`))
	f.Add([]byte(`{"a":1,"a":2}`))
	f.Add([]byte(`{"nested":{"deep":[1,{"x":null}]}}`))
	f.Add([]byte(`[1,2]`))

	f.Fuzz(func(t *testing.T, data []byte) {
		var obj RawObject
		if err := json.Unmarshal(data, &obj); err != nil {
			return // Invalid input is acceptable
		}

		// Round trip must keep member order
		out, err := json.Marshal(obj)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var again RawObject
		if err := json.Unmarshal(out, &again); err != nil {
			t.Fatalf("re-unmarshal %s: %v", out, err)
		}
		if len(again) != len(obj) {
			t.Fatalf("member count changed: %d != %d", len(again), len(obj))
		}
		for i := range obj {
			if obj[i].Key != again[i].Key {
				t.Fatalf("key %d changed: %q != %q", i, obj[i].Key, again[i].Key)
			}
		}

		for _, k := range obj.Keys() {
			_ = obj.Text(k)
			_, _ = obj.Float(k)
			_, _ = obj.Bool(k)
			_, _ = obj.Object(k)
		}
	})
}

// FuzzParseEnvelope fuzzes envelope classification.
// Run with: go test -fuzz=FuzzParseEnvelope
func FuzzParseEnvelope(f *testing.F) {
	f.Add([]byte(`{"data":{"a":1}}`))
	f.Add([]byte(`{"data":{},"errors":[]}`))
	f.Add([]byte(`{"data":{},"errors":["x"]}`))
	f.Add([]byte(`{"data":0}`))
	f.Add([]byte(`{}`))
	f.Add([]byte(`"text"`))

	f.Fuzz(func(t *testing.T, body []byte) {
		data, err := Unwrap(&Response{StatusCode: 200, Body: body})
		if err == nil && data == nil {
			t.Fatal("success without data")
		}
		if err != nil && !IsEnvelope(err) {
			t.Fatalf("unexpected error type %T", err)
		}
	})
}

// FuzzNormalizeDevice fuzzes device classification.
// Run with: go test -fuzz=FuzzNormalizeDevice
func FuzzNormalizeDevice(f *testing.F) {
	f.Add([]byte(`{"air_conditioner_id":"1234","name":"Fan"}`))
	f.Add([]byte(`{"light_bulb_id":42}`))
	f.Add([]byte(`{"_id":"x"}`))
	f.Add([]byte(`{"name":"no id"}`))

	f.Fuzz(func(t *testing.T, data []byte) {
		var raw RawObject
		if err := json.Unmarshal(data, &raw); err != nil {
			return
		}
		d := NormalizeDevice(raw)
		if d == nil {
			return
		}
		if d.Path != "/"+d.Type+"s/"+d.ID {
			t.Fatalf("path %q does not match type %q and id %q", d.Path, d.Type, d.ID)
		}
		if !raw.Has(d.Type + "_id") {
			t.Fatalf("type %q has no matching key", d.Type)
		}
	})
}
