package wink

import (
	"context"
	"encoding/json"
	"iter"
	"net/http"
)

// DevicesPath lists the account's devices.
const DevicesPath = "/users/me/wink_devices"

// GetDevices returns every classifiable device on the account.
// Records without an "_id" member are skipped.
func (c *Client) GetDevices(ctx context.Context) ([]Device, error) {
	resp, err := c.Invoke(ctx, http.MethodGet, DevicesPath, nil)
	if err != nil {
		return nil, err
	}

	env := resp.Envelope()
	if err := env.Err(ErrInvalidResponse); err != nil {
		return nil, err
	}

	var records []json.RawMessage
	if err := json.Unmarshal(env.Data, &records); err != nil {
		return nil, env.failure(ErrInvalidShape)
	}

	devices := make([]Device, 0, len(records))
	for _, rec := range records {
		var raw RawObject
		if err := json.Unmarshal(rec, &raw); err != nil || raw == nil {
			continue
		}
		if d := NormalizeDevice(raw); d != nil {
			devices = append(devices, *d)
		}
	}
	return devices, nil
}

// GetDevice fetches a fresh copy of device. It returns a nil device and a
// nil error when the returned record cannot be classified.
func (c *Client) GetDevice(ctx context.Context, device *Device) (*Device, error) {
	if device == nil || device.Path == "" {
		return nil, ErrEmptyDevicePath
	}
	data, err := c.Roundtrip(ctx, http.MethodGet, device.Path, nil)
	if err != nil {
		return nil, err
	}

	var raw RawObject
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil
	}
	return NormalizeDevice(raw), nil
}

// SetDevice updates device with props and returns the updated record.
func (c *Client) SetDevice(ctx context.Context, device *Device, props any) (RawObject, error) {
	if device == nil || device.Path == "" {
		return nil, ErrEmptyDevicePath
	}
	return c.roundtripObject(ctx, http.MethodPut, device.Path, props)
}

// Devices returns an iterator over the account's devices.
//
// Example:
//
//	for device, err := range client.Devices(ctx) {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(device.Name, device.Path)
//	}
func (c *Client) Devices(ctx context.Context) iter.Seq2[Device, error] {
	return func(yield func(Device, error) bool) {
		devices, err := c.GetDevices(ctx)
		if err != nil {
			yield(Device{}, err)
			return
		}
		for _, d := range devices {
			if !yield(d, nil) {
				return
			}
		}
	}
}
