package wink

import (
	"context"
	"encoding/json"
	"iter"

	"golang.org/x/oauth2"
)

// API defines the Wink operations implemented by Client, enabling mocking
// in tests.
type API interface {
	// ============================================================================
	// Transport
	// ============================================================================

	Invoke(ctx context.Context, method, path string, payload any) (*Response, error)
	InvokeAsync(ctx context.Context, method, path string, payload any, done InvokeFunc) <-chan struct{}
	Fire(ctx context.Context, method, path string, payload any) <-chan struct{}
	Roundtrip(ctx context.Context, method, path string, payload any) (json.RawMessage, error)
	RoundtripAsync(ctx context.Context, method, path string, payload any, done RoundtripFunc) <-chan struct{}

	// ============================================================================
	// Session
	// ============================================================================

	Login(ctx context.Context, username, passphrase string) error
	LoginAsync(ctx context.Context, username, passphrase string, done func(error)) <-chan struct{}
	Refresh(ctx context.Context) error
	RefreshAsync(ctx context.Context, done func(error)) <-chan struct{}

	// ============================================================================
	// User
	// ============================================================================

	GetUser(ctx context.Context) (RawObject, error)
	SetUser(ctx context.Context, props any) (RawObject, error)

	// ============================================================================
	// Devices
	// ============================================================================

	GetDevices(ctx context.Context) ([]Device, error)
	GetDevice(ctx context.Context, device *Device) (*Device, error)
	SetDevice(ctx context.Context, device *Device, props any) (RawObject, error)
	GetDevicesBatch(ctx context.Context, devices []Device, cfg *BatchConfig) []BatchResult
	Devices(ctx context.Context) iter.Seq2[Device, error]

	// ============================================================================
	// Catalogue, services and triggers
	// ============================================================================

	GetIcons(ctx context.Context) ([]RawObject, error)
	GetChannels(ctx context.Context) ([]RawObject, error)
	GetServices(ctx context.Context) ([]RawObject, error)
	NewService(ctx context.Context, props any) (RawObject, error)
	GetTrigger(ctx context.Context, triggerID string) (RawObject, error)
	SetTrigger(ctx context.Context, triggerID string, props any) (RawObject, error)
	GetDialTemplates(ctx context.Context) ([]RawObject, error)
}

// TokenHolder is implemented by types exposing the current OAuth token.
type TokenHolder interface {
	Token() *oauth2.Token
	Authenticated() bool
}

// Compile-time interface checks.
var (
	_ API         = (*Client)(nil)
	_ TokenHolder = (*Session)(nil)
)
