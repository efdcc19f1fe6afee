package wink

import (
	"errors"
	"fmt"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

// Sentinel errors returned by the Wink client.
// All errors are defined here for easy discovery and consistent organization.
var (
	// Envelope errors. These are the Kind of an *EnvelopeError.
	ErrInvalidResponse    = errors.New("wink: invalid response")
	ErrInvalidShape       = errors.New("wink: invalid response shape")
	ErrInvalidCredentials = errors.New("wink: invalid credentials")

	// Session errors
	ErrNotAuthenticated = errors.New("wink: no OAuth token held (login first)")
	ErrNilCallback      = errors.New("wink: completion callback is mandatory")

	// Request validation errors
	ErrUnsupportedMethod = errors.New("wink: unsupported HTTP method")
	ErrEmptyDevicePath   = errors.New("wink: device path cannot be empty")
	ErrEmptyTriggerID    = errors.New("wink: trigger ID cannot be empty")

	// ErrPrematureEOF is wrapped by a *TransportError when the connection
	// closes before the response body is complete.
	ErrPrematureEOF = errors.New("premature end-of-file")
)

// Text codes attached to service errors.
const (
	TextCodeTransport          = "WINK_TRANSPORT"
	TextCodeParse              = "WINK_PARSE"
	TextCodeHTTPStatus         = "WINK_HTTP_STATUS"
	TextCodeInvalidResponse    = "WINK_INVALID_RESPONSE"
	TextCodeInvalidShape       = "WINK_INVALID_SHAPE"
	TextCodeInvalidCredentials = "WINK_INVALID_CREDENTIALS"
)

// TransportError is returned when the request never produced a complete
// response: dial failures, TLS errors, resets, or a body cut short.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("wink: %s %s: %v", e.Method, e.Path, e.Err)
}

// Unwrap returns the underlying network error.
func (e *TransportError) Unwrap() error { return e.Err }

// ToServiceError converts the error into a go-errors service error.
func (e *TransportError) ToServiceError() *goerrors.Error {
	return goerrors.New(e.Error(), goerrors.CategoryExternal).
		WithCode(http.StatusBadGateway).
		WithTextCode(TextCodeTransport).
		WithMetadata(map[string]any{
			"method": e.Method,
			"path":   e.Path,
		})
}

// ParseError is returned when the response body is not valid JSON.
type ParseError struct {
	Path       string
	StatusCode int
	Body       string
	Err        error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("wink: %s: invalid JSON in response (status %d): %v", e.Path, e.StatusCode, e.Err)
}

// Unwrap returns the decoder error.
func (e *ParseError) Unwrap() error { return e.Err }

// Diagnostic returns the decoder's message.
func (e *ParseError) Diagnostic() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// ToServiceError converts the error into a go-errors service error.
func (e *ParseError) ToServiceError() *goerrors.Error {
	return goerrors.New(e.Error(), goerrors.CategoryExternal).
		WithCode(http.StatusBadGateway).
		WithTextCode(TextCodeParse).
		WithMetadata(map[string]any{
			"path":        e.Path,
			"status_code": e.StatusCode,
			"body":        truncatePreview([]byte(e.Body)),
		})
}

// HTTPStatusError is returned when the status code is outside the set
// expected for the request method. The parsed body is kept for inspection.
type HTTPStatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
}

// Error implements the error interface.
func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("wink: HTTP response %d", e.StatusCode)
}

// ToServiceError converts the error into a go-errors service error.
func (e *HTTPStatusError) ToServiceError() *goerrors.Error {
	category := goerrors.CategoryExternal
	switch e.StatusCode {
	case http.StatusUnauthorized:
		category = goerrors.CategoryAuth
	case http.StatusForbidden:
		category = goerrors.CategoryAuthz
	case http.StatusNotFound:
		category = goerrors.CategoryNotFound
	case http.StatusTooManyRequests:
		category = goerrors.CategoryRateLimit
	}
	return goerrors.New(e.Error(), category).
		WithCode(e.StatusCode).
		WithTextCode(TextCodeHTTPStatus).
		WithMetadata(map[string]any{
			"method": e.Method,
			"path":   e.Path,
			"body":   truncatePreview(e.Body),
		})
}

// EnvelopeError is returned when a well-formed response does not carry a
// usable payload: a non-empty errors array, a missing data member, or data of
// the wrong shape. Kind is one of ErrInvalidResponse, ErrInvalidShape or
// ErrInvalidCredentials.
type EnvelopeError struct {
	Kind error
	// Detail is the compact JSON of the errors array when present, otherwise
	// of the whole response body.
	Detail string
	Errors []byte
	Body   []byte
	// Cause is the transport-level failure that came with the envelope,
	// such as the *HTTPStatusError of a rejected grant.
	Cause error
}

// Error implements the error interface.
func (e *EnvelopeError) Error() string {
	kind := e.Kind
	if kind == nil {
		kind = ErrInvalidResponse
	}
	return kind.Error() + ": " + e.Detail
}

// Unwrap allows errors.Is to match the Kind sentinel and errors.As to reach
// the Cause.
func (e *EnvelopeError) Unwrap() []error {
	kind := e.Kind
	if kind == nil {
		kind = ErrInvalidResponse
	}
	if e.Cause == nil {
		return []error{kind}
	}
	return []error{kind, e.Cause}
}

// ToServiceError converts the error into a go-errors service error.
func (e *EnvelopeError) ToServiceError() *goerrors.Error {
	category := goerrors.CategoryExternal
	code := http.StatusBadGateway
	textCode := TextCodeInvalidResponse
	switch {
	case errors.Is(e.Kind, ErrInvalidCredentials):
		category = goerrors.CategoryAuth
		code = http.StatusUnauthorized
		textCode = TextCodeInvalidCredentials
	case errors.Is(e.Kind, ErrInvalidShape):
		textCode = TextCodeInvalidShape
	}
	return goerrors.New(e.Error(), category).
		WithCode(code).
		WithTextCode(textCode).
		WithMetadata(map[string]any{"detail": e.Detail})
}

// ServiceError converts any error produced by this package into a go-errors
// service error. Errors from elsewhere are reported as internal.
func ServiceError(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	var converter interface{ ToServiceError() *goerrors.Error }
	if errors.As(err, &converter) {
		return converter.ToServiceError()
	}
	return goerrors.New(err.Error(), goerrors.CategoryInternal)
}

// IsTransport returns true if the request failed before a response arrived.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsParse returns true if the response body was not valid JSON.
func IsParse(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsHTTPStatus returns true if the status code was unexpected for the method.
func IsHTTPStatus(err error) bool {
	var he *HTTPStatusError
	return errors.As(err, &he)
}

// IsEnvelope returns true if the response envelope reported a failure.
func IsEnvelope(err error) bool {
	var ee *EnvelopeError
	return errors.As(err, &ee)
}

// IsInvalidShape returns true if the payload was not of the expected shape.
func IsInvalidShape(err error) bool {
	return errors.Is(err, ErrInvalidShape)
}

// IsInvalidCredentials returns true if a grant request was rejected.
func IsInvalidCredentials(err error) bool {
	return errors.Is(err, ErrInvalidCredentials)
}

// IsUnauthorized returns true if the error indicates an authentication failure.
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrInvalidCredentials) || errors.Is(err, ErrNotAuthenticated) {
		return true
	}
	var he *HTTPStatusError
	if errors.As(err, &he) {
		return he.StatusCode == http.StatusUnauthorized
	}
	return false
}

// IsTimeout returns true if the error indicates a timeout.
func IsTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
