package wink

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// Resource paths.
const (
	UserPath           = "/users/me"
	IconsPath          = "/icons"
	ChannelsPath       = "/channels"
	LinkedServicesPath = "/users/me/linked_services"
	TriggersPath       = "/triggers"
	DialTemplatesPath  = "/dial_templates"
)

// GetUser returns the authenticated user's profile.
func (c *Client) GetUser(ctx context.Context) (RawObject, error) {
	return c.roundtripObject(ctx, http.MethodGet, UserPath, nil)
}

// SetUser updates the user's profile with props.
func (c *Client) SetUser(ctx context.Context, props any) (RawObject, error) {
	return c.roundtripObject(ctx, http.MethodPut, UserPath, props)
}

// GetIcons returns the device icon catalogue.
func (c *Client) GetIcons(ctx context.Context) ([]RawObject, error) {
	return c.roundtripList(ctx, http.MethodGet, IconsPath, nil)
}

// GetChannels returns the available channels.
func (c *Client) GetChannels(ctx context.Context) ([]RawObject, error) {
	return c.roundtripList(ctx, http.MethodGet, ChannelsPath, nil)
}

// GetServices returns the services linked to the user's account.
func (c *Client) GetServices(ctx context.Context) ([]RawObject, error) {
	return c.roundtripList(ctx, http.MethodGet, LinkedServicesPath, nil)
}

// NewService links a new service to the user's account.
func (c *Client) NewService(ctx context.Context, props any) (RawObject, error) {
	return c.roundtripObject(ctx, http.MethodPost, LinkedServicesPath, props)
}

// GetTrigger returns a trigger by ID.
func (c *Client) GetTrigger(ctx context.Context, triggerID string) (RawObject, error) {
	if triggerID == "" {
		return nil, ErrEmptyTriggerID
	}
	return c.roundtripObject(ctx, http.MethodGet, triggerPath(triggerID), nil)
}

// SetTrigger updates a trigger with props.
func (c *Client) SetTrigger(ctx context.Context, triggerID string, props any) (RawObject, error) {
	if triggerID == "" {
		return nil, ErrEmptyTriggerID
	}
	return c.roundtripObject(ctx, http.MethodPut, triggerPath(triggerID), props)
}

// GetDialTemplates returns the dial templates.
func (c *Client) GetDialTemplates(ctx context.Context) ([]RawObject, error) {
	return c.roundtripList(ctx, http.MethodGet, DialTemplatesPath, nil)
}

func triggerPath(id string) string {
	return TriggersPath + "/" + url.PathEscape(id)
}

// roundtripObject performs a roundtrip whose data must be a JSON object.
func (c *Client) roundtripObject(ctx context.Context, method, path string, payload any) (RawObject, error) {
	data, err := c.Roundtrip(ctx, method, path, payload)
	if err != nil {
		return nil, err
	}
	return decodeData[RawObject](data)
}

// roundtripList performs a roundtrip whose data must be a JSON array of objects.
func (c *Client) roundtripList(ctx context.Context, method, path string, payload any) ([]RawObject, error) {
	data, err := c.Roundtrip(ctx, method, path, payload)
	if err != nil {
		return nil, err
	}
	return decodeData[[]RawObject](data)
}

// decodeData decodes a data member into T, reporting a mismatch as an
// invalid-shape envelope error.
func decodeData[T any](data json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		var zero T
		return zero, &EnvelopeError{Kind: ErrInvalidShape, Detail: compactJSON(data)}
	}
	return v, nil
}
